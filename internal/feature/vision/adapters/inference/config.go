// Package inference は推論サーバー（YOLO系モデルをホストするHTTPサービス）のクライアントを提供します。
package inference

import (
	"os"
	"time"
)

// Config は推論サーバークライアントの設定を保持します。
type Config struct {
	BaseURL string        // 推論サーバーのベースURL（例: "http://localhost:8500"）
	Timeout time.Duration // HTTPリクエストタイムアウト
}

// LoadConfig は環境変数から推論サーバーの設定を読み込みます。
func LoadConfig() Config {
	base := os.Getenv("INFERENCE_BASE_URL")
	if base == "" {
		base = "http://localhost:8500"
	}
	return Config{
		BaseURL: base,
		Timeout: 60 * time.Second,
	}
}
