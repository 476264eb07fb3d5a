// Package entity はvisionフィーチャーのドメインエンティティを定義します。
package entity

// BBox は画像座標系のバウンディングボックスです。
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Detection は目標検出の1件の結果です。
type Detection struct {
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

// Classification は画像分類の1件の結果です。
type Classification struct {
	ClassID     int     `json:"class_id"`
	ClassName   string  `json:"class_name"`
	ClassNameJA string  `json:"class_name_ja"`
	Confidence  float64 `json:"confidence"`
}

// Keypoint は姿勢推定の1つの関節点です。
type Keypoint struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Pose は1人分の姿勢推定結果です。BBoxは検出できなかった場合nilです。
type Pose struct {
	PersonID  int        `json:"person_id"`
	BBox      *BBox      `json:"bbox"`
	Keypoints []Keypoint `json:"keypoints"`
}

// Segment はインスタンスセグメンテーションの1件の結果です。
// マスク自体は返さず、外接矩形とクラスのみを保持します。
type Segment struct {
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

// KeypointNames はCOCO形式の17関節点の名前です（インデックス順）。
var KeypointNames = []string{
	"nose", "left_eye", "right_eye", "left_ear", "right_ear",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_hip", "right_hip",
	"left_knee", "right_knee", "left_ankle", "right_ankle",
}
