// Package entity は微信公众号連携のドメインエンティティを定義します。
package entity

// Signature はJS-SDKのwx.config()へ渡す署名パラメータ一式です。
type Signature struct {
	AppID     string `json:"appId"`
	Timestamp int64  `json:"timestamp"`
	NonceStr  string `json:"nonceStr"`
	Signature string `json:"signature"`
}

// Voice は微信サーバーから取得した音声ファイルです。
type Voice struct {
	Format string `json:"format"`
	Audio  string `json:"audio"`
}

// Status は微信公众号APIの設定状態です。AppIDはマスクされます。
type Status struct {
	Configured bool   `json:"configured"`
	AppID      string `json:"app_id"`
}
