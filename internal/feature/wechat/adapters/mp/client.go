// Package mp は微信公众号（WeChat公式アカウント）APIのクライアントを提供します。
package mp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"vision_backend/internal/platform/keys"
)

const (
	// DefaultBaseURL は微信公众号APIのエンドポイントです。
	DefaultBaseURL = "https://api.weixin.qq.com"

	tokenPath  = "/cgi-bin/token"
	ticketPath = "/cgi-bin/ticket/getticket"
	mediaPath  = "/cgi-bin/media/get"

	// アクセストークンとjsapi_ticketの有効期限は7200秒。期限の5分前に更新します。
	defaultTTL    = 7200 * time.Second
	refreshMargin = 5 * time.Minute
)

// APIError は微信APIのエラーレスポンスです。
type APIError struct {
	Code int64
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat api error %d: %s", e.Code, e.Msg)
}

// Client はアクセストークンとjsapi_ticketをキャッシュしつつ微信APIを呼び出します。
type Client struct {
	creds   keys.WeChatCredentials
	client  *http.Client
	baseURL string
	now     func() time.Time

	mu              sync.Mutex
	accessToken     string
	tokenExpiresAt  time.Time
	ticket          string
	ticketExpiresAt time.Time
}

// NewClient はClientの新しいインスタンスを生成します。
func NewClient(creds keys.WeChatCredentials, client *http.Client) *Client {
	return &Client{
		creds:   creds,
		client:  client,
		baseURL: DefaultBaseURL,
		now:     time.Now,
	}
}

// WithBaseURL はエンドポイントの向き先を差し替えたClientを返します。テスト用です。
func (c *Client) WithBaseURL(baseURL string) *Client {
	clone := &Client{
		creds:   c.creds,
		client:  c.client,
		baseURL: baseURL,
		now:     c.now,
	}
	return clone
}

// tokenResponse は/cgi-bin/tokenのレスポンスです。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ErrCode     int64  `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

// ticketResponse は/cgi-bin/ticket/getticketのレスポンスです。
type ticketResponse struct {
	Ticket    string `json:"ticket"`
	ExpiresIn int64  `json:"expires_in"`
	ErrCode   int64  `json:"errcode"`
	ErrMsg    string `json:"errmsg"`
}

// get はクエリ付きGETを実行しレスポンスボディを返します。
func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wechat request failed: %w", err)
	}
	return res, nil
}

// AccessToken はキャッシュ済みトークンを返し、期限5分前を切っていれば再取得します。
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessTokenLocked(ctx)
}

func (c *Client) accessTokenLocked(ctx context.Context) (string, error) {
	now := c.now()
	if c.accessToken != "" && c.tokenExpiresAt.After(now.Add(refreshMargin)) {
		return c.accessToken, nil
	}

	query := url.Values{}
	query.Set("grant_type", "client_credential")
	query.Set("appid", c.creds.AppID)
	query.Set("secret", c.creds.AppSecret)

	res, err := c.get(ctx, tokenPath, query)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	var body tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode wechat token response: %w", err)
	}
	if body.ErrCode != 0 {
		return "", &APIError{Code: body.ErrCode, Msg: body.ErrMsg}
	}

	ttl := defaultTTL
	if body.ExpiresIn > 0 {
		ttl = time.Duration(body.ExpiresIn) * time.Second
	}
	c.accessToken = body.AccessToken
	c.tokenExpiresAt = now.Add(ttl)
	slog.Info("微信アクセストークンを取得しました")
	return c.accessToken, nil
}

// JSAPITicket はキャッシュ済みjsapi_ticketを返し、期限5分前を切っていれば再取得します。
func (c *Client) JSAPITicket(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.ticket != "" && c.ticketExpiresAt.After(now.Add(refreshMargin)) {
		return c.ticket, nil
	}

	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("access_token", token)
	query.Set("type", "jsapi")

	res, err := c.get(ctx, ticketPath, query)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	var body ticketResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode wechat ticket response: %w", err)
	}
	if body.ErrCode != 0 {
		return "", &APIError{Code: body.ErrCode, Msg: body.ErrMsg}
	}

	ttl := defaultTTL
	if body.ExpiresIn > 0 {
		ttl = time.Duration(body.ExpiresIn) * time.Second
	}
	c.ticket = body.Ticket
	c.ticketExpiresAt = now.Add(ttl)
	slog.Info("微信jsapi_ticketを取得しました")
	return c.ticket, nil
}

// DownloadMedia は微信サーバーからメディアファイルを取得し生バイト列を返します。
// JSON/テキストのContent-Typeはエラーレスポンスを意味します。
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("access_token", token)
	query.Set("media_id", mediaID)

	res, err := c.get(ctx, mediaPath, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	contentType := res.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") || strings.Contains(contentType, "text/plain") {
		var body struct {
			ErrCode int64  `json:"errcode"`
			ErrMsg  string `json:"errmsg"`
		}
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode wechat media error: %w", err)
		}
		return nil, &APIError{Code: body.ErrCode, Msg: body.ErrMsg}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read wechat media: %w", err)
	}
	return data, nil
}

// AppID は署名レスポンスへ含めるAppIDを返します。
func (c *Client) AppID() string {
	return c.creds.AppID
}
