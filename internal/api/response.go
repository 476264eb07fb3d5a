// Package api はAPI全体で共有されるレスポンス型を定義します。
package api

// APIResponse はすべてのビジョンエンドポイントが返す統一エンベロープです。
// Dataの中身はエンドポイントごとに異なります。
type APIResponse struct {
	Success bool   `json:"success"`
	Task    string `json:"task"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse はエラー時のレスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse は各ベンダーの設定状態エンドポイントが返すボディです。
type StatusResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}
