// Package dto はvisionフィーチャーのHTTPリクエストボディを定義します。
package dto

// DetectRequest は目標検出・姿勢推定・セグメンテーションのリクエストです。
// 省略されたパラメータはハンドラー側でデフォルト値が適用されます。
type DetectRequest struct {
	ImageBase64 string   `json:"image_base64" binding:"required"`
	Conf        *float64 `json:"conf"`
	IoU         *float64 `json:"iou"`
	ReturnImage *bool    `json:"return_image"`
}

// ClassifyRequest は画像分類のリクエストです。
type ClassifyRequest struct {
	ImageBase64  string   `json:"image_base64" binding:"required"`
	Conf         *float64 `json:"conf"`
	TopK         *int     `json:"top_k"`
	AnalyzeScene *bool    `json:"analyze_scene"`
}
