// Package usecase は微信公众号連携のビジネスロジックを実装します。
package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"vision_backend/internal/feature/wechat/domain/entity"
)

// MPClient は微信公众号APIクライアントです。
type MPClient interface {
	JSAPITicket(ctx context.Context) (string, error)
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, error)
	AppID() string
}

// ErrNotConfigured は微信公众号の認証情報が未設定であることを示します。
var ErrNotConfigured = errors.New("wechat credentials not configured")

const nonceLength = 16

// nonceChars はノンス文字列に使う英数字です。
const nonceChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// wechatUsecase はJS-SDK署名と音声取得のオーケストレーションを提供します。
type wechatUsecase struct {
	client MPClient // 未設定の場合nil
	now    func() time.Time
	nonce  func() (string, error)
}

// NewWeChatUsecase はwechatUsecaseの新しいインスタンスを生成します。
func NewWeChatUsecase(client MPClient) *wechatUsecase {
	return &wechatUsecase{
		client: client,
		now:    time.Now,
		nonce:  newNonce,
	}
}

// newNonce は16文字の英数字ランダム文字列を生成します。
func newNonce() (string, error) {
	buf := make([]byte, nonceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	for i, b := range buf {
		buf[i] = nonceChars[int(b)%len(nonceChars)]
	}
	return string(buf), nil
}

// signJSAPI はJS-SDK署名を計算します。
// 署名対象はキーの辞書順に連結した
// jsapi_ticket=...&noncestr=...&timestamp=...&url=... のSHA-1です。
func signJSAPI(ticket, nonceStr string, timestamp int64, pageURL string) string {
	stringToSign := fmt.Sprintf("jsapi_ticket=%s&noncestr=%s&timestamp=%d&url=%s",
		ticket, nonceStr, timestamp, pageURL)
	sum := sha1.Sum([]byte(stringToSign))
	return hex.EncodeToString(sum[:])
}

// Signature は指定ページURLに対するJS-SDK署名パラメータを生成します。
// URLは#以降を含めないものを受け取ります。
func (u *wechatUsecase) Signature(ctx context.Context, pageURL string) (*entity.Signature, error) {
	if u.client == nil {
		return nil, ErrNotConfigured
	}

	ticket, err := u.client.JSAPITicket(ctx)
	if err != nil {
		return nil, fmt.Errorf("jsapi_ticketの取得に失敗: %w", err)
	}

	nonceStr, err := u.nonce()
	if err != nil {
		return nil, err
	}
	timestamp := u.now().Unix()

	return &entity.Signature{
		AppID:     u.client.AppID(),
		Timestamp: timestamp,
		NonceStr:  nonceStr,
		Signature: signJSAPI(ticket, nonceStr, timestamp, pageURL),
	}, nil
}

// VoiceDownload は微信サーバーから音声ファイルを取得しbase64で返します。
// 微信の音声は既定でAMR形式です。
func (u *wechatUsecase) VoiceDownload(ctx context.Context, serverID string) (*entity.Voice, error) {
	if u.client == nil {
		return nil, ErrNotConfigured
	}

	data, err := u.client.DownloadMedia(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("音声ファイルの取得に失敗: %w", err)
	}

	return &entity.Voice{
		Format: "amr",
		Audio:  base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Status は微信公众号APIの設定状態を返します。AppIDは先頭8文字のみ開示します。
func (u *wechatUsecase) Status() entity.Status {
	if u.client == nil {
		return entity.Status{Configured: false, AppID: ""}
	}
	return entity.Status{Configured: true, AppID: maskAppID(u.client.AppID())}
}

// maskAppID はAppIDの先頭8文字以外を伏せます。
func maskAppID(appID string) string {
	if appID == "" {
		return ""
	}
	runes := []rune(appID)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return string(runes) + "***"
}
