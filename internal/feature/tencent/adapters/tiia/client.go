package tiia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"vision_backend/internal/feature/tencent/adapters/tiia/dto"
	"vision_backend/internal/platform/keys"
)

const (
	defaultHost = "tiia.tencentcloudapi.com"
	service     = "tiia"
	apiVersion  = "2019-05-29"
)

// APIError はテンセントクラウドAPIのエラーレスポンスです。
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tencent api error %s: %s", e.Code, e.Message)
}

// Client はTIIA APIへの署名付きリクエストを実行します。
type Client struct {
	creds   keys.TencentCredentials
	client  *http.Client
	host    string
	baseURL string
	now     func() time.Time
}

// NewClient はClientの新しいインスタンスを生成します。
func NewClient(creds keys.TencentCredentials, client *http.Client) *Client {
	return &Client{
		creds:   creds,
		client:  client,
		host:    defaultHost,
		baseURL: "https://" + defaultHost,
		now:     time.Now,
	}
}

// WithBaseURL はエンドポイントの向き先を差し替えたClientを返します。テスト用です。
func (c *Client) WithBaseURL(baseURL, host string) *Client {
	clone := *c
	clone.baseURL = baseURL
	clone.host = host
	return &clone
}

// responseEnvelope はテンセントクラウド共通の{"Response": ...}包みです。
type responseEnvelope struct {
	Response json.RawMessage `json:"Response"`
}

// errorEnvelope はResponse内のエラー判定用フィールドです。
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Error"`
}

// call はTC3署名付きでアクションを呼び出し、Responseをoutへデコードします。
func (c *Client) call(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	now := c.now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Host = c.host
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-TC-Action", action)
	req.Header.Set("X-TC-Version", apiVersion)
	req.Header.Set("X-TC-Region", c.creds.Region)
	req.Header.Set("X-TC-Timestamp", strconv.FormatInt(now.Unix(), 10))
	req.Header.Set("Authorization", sign(c.creds.SecretID, c.creds.SecretKey, c.host, service, action, body, now))

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tencent request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("tencent http %d", res.StatusCode)
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode tencent response: %w", err)
	}

	var apiErr errorEnvelope
	if err := json.Unmarshal(envelope.Response, &apiErr); err == nil && apiErr.Error != nil {
		return &APIError{Code: apiErr.Error.Code, Message: apiErr.Error.Message}
	}
	return json.Unmarshal(envelope.Response, out)
}

// DetectLabel はカメラシーン向けのラベル検出を実行します。
func (c *Client) DetectLabel(ctx context.Context, imageBase64 string) (*dto.DetectLabelResponse, error) {
	payload := map[string]any{
		"ImageBase64": imageBase64,
		"Scenes":      []string{"CAMERA"},
	}
	var body dto.DetectLabelResponse
	if err := c.call(ctx, "DetectLabel", payload, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// DetectLabelPro は高精度版のラベル検出を実行します。
func (c *Client) DetectLabelPro(ctx context.Context, imageBase64 string) (*dto.DetectLabelResponse, error) {
	payload := map[string]any{"ImageBase64": imageBase64}
	var body dto.DetectLabelResponse
	if err := c.call(ctx, "DetectLabelPro", payload, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// RecognizeCar は車両認識を実行します。
func (c *Client) RecognizeCar(ctx context.Context, imageBase64 string) (*dto.RecognizeCarResponse, error) {
	payload := map[string]any{"ImageBase64": imageBase64}
	var body dto.RecognizeCarResponse
	if err := c.call(ctx, "RecognizeCar", payload, &body); err != nil {
		return nil, err
	}
	return &body, nil
}
