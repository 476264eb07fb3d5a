// Package entity は利用実績のドメインエンティティを定義します。
package entity

import "time"

// Record はベンダー・モデル呼び出し1件の利用実績です。
type Record struct {
	Task       string    `json:"task"`
	Vendor     string    `json:"vendor"`
	DurationMS int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	CreatedAt  time.Time `json:"created_at"`
}

// Counter はタスク単位の集計値です。
type Counter struct {
	Task          string  `json:"task"`
	Vendor        string  `json:"vendor"`
	Total         int64   `json:"total"`
	Succeeded     int64   `json:"succeeded"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}
