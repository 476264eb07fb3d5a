// Package hyperlpr はHyperLPR互換のナンバープレート認識HTTPサービスのクライアントを提供します。
package hyperlpr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"time"

	"vision_backend/internal/feature/lpr/domain/entity"
	"vision_backend/internal/feature/lpr/usecase"
	"vision_backend/internal/platform/imaging"
)

// Config はHyperLPRクライアントの設定を保持します。
type Config struct {
	BaseURL string        // 認識サービスのベースURL（例: "http://localhost:8600"）
	Timeout time.Duration // HTTPリクエストタイムアウト
}

// LoadConfig は環境変数からHyperLPRの設定を読み込みます。
func LoadConfig() Config {
	base := os.Getenv("HYPERLPR_BASE_URL")
	if base == "" {
		base = "http://localhost:8600"
	}
	return Config{
		BaseURL: base,
		Timeout: 30 * time.Second,
	}
}

// Client はHyperLPR互換サービスへのPlateRecognizer実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがPlateRecognizerを実装していることをコンパイル時に検証します。
var _ usecase.PlateRecognizer = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// recognizeResponse は認識サービスからのJSONレスポンスを表します。
type recognizeResponse struct {
	Error  string `json:"error,omitempty"`
	Plates []struct {
		PlateNumber string     `json:"plate_number"`
		Confidence  float64    `json:"confidence"`
		PlateTypeID int        `json:"plate_type_id"`
		BBox        [4]float64 `json:"bbox"`
	} `json:"plates"`
}

// Recognize は画像を認識サービスへ送信し、生のプレート結果を返します。
func (c *Client) Recognize(ctx context.Context, img image.Image) ([]entity.RawPlate, error) {
	encoded, err := imaging.EncodeJPEGBase64(img)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"image_base64": encoded})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/recognize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hyperlpr request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("hyperlpr http %d", res.StatusCode)
	}

	var body recognizeResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode hyperlpr response: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("hyperlpr: %s", body.Error)
	}

	plates := make([]entity.RawPlate, 0, len(body.Plates))
	for _, p := range body.Plates {
		plates = append(plates, entity.RawPlate{
			PlateNumber: p.PlateNumber,
			Confidence:  p.Confidence,
			PlateTypeID: p.PlateTypeID,
			BBox:        entity.BBox{X1: p.BBox[0], Y1: p.BBox[1], X2: p.BBox[2], Y2: p.BBox[3]},
		})
	}
	return plates, nil
}

// Available は認識サービスのヘルスチェックを行います。
func (c *Client) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	res, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()
	return res.StatusCode == http.StatusOK
}
