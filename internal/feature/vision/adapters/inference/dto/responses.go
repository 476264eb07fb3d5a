// Package dto は推論サーバーレスポンスのデータ転送オブジェクトを定義します。
package dto

// DetectionResponse は/detectエンドポイントからのJSONレスポンスを表します。
type DetectionResponse struct {
	Error      string `json:"error,omitempty"`
	Detections []struct {
		ClassID    int        `json:"class_id"`
		ClassName  string     `json:"class_name"`
		Confidence float64    `json:"confidence"`
		BBox       [4]float64 `json:"bbox"` // [x1, y1, x2, y2]
	} `json:"detections"`
}

// ClassificationResponse は/classifyエンドポイントからのJSONレスポンスを表します。
type ClassificationResponse struct {
	Error           string `json:"error,omitempty"`
	Classifications []struct {
		ClassID    int     `json:"class_id"`
		ClassName  string  `json:"class_name"`
		Confidence float64 `json:"confidence"`
	} `json:"classifications"`
}

// PoseResponse は/poseエンドポイントからのJSONレスポンスを表します。
type PoseResponse struct {
	Error string `json:"error,omitempty"`
	Poses []struct {
		BBox      *[4]float64  `json:"bbox"`
		Keypoints [][3]float64 `json:"keypoints"` // [x, y, confidence] x 17
	} `json:"poses"`
}

// SegmentResponse は/segmentエンドポイントからのJSONレスポンスを表します。
type SegmentResponse struct {
	Error    string `json:"error,omitempty"`
	Segments []struct {
		ClassID    int        `json:"class_id"`
		ClassName  string     `json:"class_name"`
		Confidence float64    `json:"confidence"`
		BBox       [4]float64 `json:"bbox"`
	} `json:"segments"`
}
