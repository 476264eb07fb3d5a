// Package aip は百度AIオープンプラットフォーム（AIP）REST APIのクライアントを提供します。
package aip

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"vision_backend/internal/platform/keys"
)

const (
	tokenEndpoint = "https://aip.baidubce.com/oauth/2.0/token"
	// tokenMargin は有効期限より早めに再取得するための余裕です。
	tokenMargin = 5 * time.Minute
)

// TokenProvider はOAuthクライアントクレデンシャルのアクセストークンを取得・キャッシュします。
// Redisが利用可能な場合はプロセス間で共有し、なければプロセス内キャッシュのみ使用します。
type TokenProvider struct {
	creds    keys.Credentials
	client   *http.Client
	rdb      *redis.Client // nilの場合はプロセス内キャッシュのみ
	endpoint string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenProvider はTokenProviderの新しいインスタンスを生成します。rdbはnil可です。
func NewTokenProvider(creds keys.Credentials, client *http.Client, rdb *redis.Client) *TokenProvider {
	return &TokenProvider{creds: creds, client: client, rdb: rdb, endpoint: tokenEndpoint}
}

// WithEndpoint はトークンエンドポイントを差し替えたTokenProviderを返します。テスト用です。
func (p *TokenProvider) WithEndpoint(endpoint string) *TokenProvider {
	p.endpoint = endpoint
	return p
}

// cacheKey はAPIキーごとに一意なRedisキーを返します。
func (p *TokenProvider) cacheKey() string {
	sum := sha1.Sum([]byte(p.creds.APIKey))
	return "baidu:token:" + hex.EncodeToString(sum[:])
}

// tokenResponse はOAuthトークンエンドポイントのレスポンスです。
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Token は有効なアクセストークンを返します。キャッシュが切れている場合のみ再取得します。
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expiresAt) {
		return p.token, nil
	}

	if p.rdb != nil {
		if token, err := p.rdb.Get(ctx, p.cacheKey()).Result(); err == nil && token != "" {
			ttl, err := p.rdb.TTL(ctx, p.cacheKey()).Result()
			if err == nil && ttl > 0 {
				p.token = token
				p.expiresAt = time.Now().Add(ttl)
				return token, nil
			}
		}
	}

	token, expiresIn, err := p.fetch(ctx)
	if err != nil {
		return "", err
	}

	ttl := time.Duration(expiresIn)*time.Second - tokenMargin
	if ttl <= 0 {
		ttl = time.Duration(expiresIn) * time.Second
	}
	p.token = token
	p.expiresAt = time.Now().Add(ttl)

	if p.rdb != nil {
		if err := p.rdb.Set(ctx, p.cacheKey(), token, ttl).Err(); err != nil {
			slog.Warn("アクセストークンのRedis保存に失敗", "error", err)
		}
	}
	return token, nil
}

// fetch はトークンエンドポイントから新しいアクセストークンを取得します。
func (p *TokenProvider) fetch(ctx context.Context) (string, int64, error) {
	q := url.Values{}
	q.Set("grant_type", "client_credentials")
	q.Set("client_id", p.creds.APIKey)
	q.Set("client_secret", p.creds.SecretKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"?"+q.Encode(), strings.NewReader(""))
	if err != nil {
		return "", 0, err
	}

	res, err := p.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	var body tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", 0, fmt.Errorf("token request rejected: %s (%s)", body.Error, body.ErrorDescription)
	}
	return body.AccessToken, body.ExpiresIn, nil
}
