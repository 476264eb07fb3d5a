// Package entity はテンセントクラウド連携のドメインエンティティを定義します。
package entity

// BBox は画像座標系のバウンディングボックスです。
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// DetectLabel はカメラシーン検出の1件のラベルです。
type DetectLabel struct {
	Name       string  `json:"name"`
	NameEn     string  `json:"name_en"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
}

// ProLabel は高精度ラベル検出の1件のラベルです。
type ProLabel struct {
	Name           string  `json:"name"`
	Confidence     float64 `json:"confidence"`
	FirstCategory  string  `json:"first_category"`
	SecondCategory string  `json:"second_category"`
}

// Car は車両認識の1台分の結果です。
type Car struct {
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	Color      string  `json:"color"`
	Year       string  `json:"year"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

// Status はテンセントクラウドAPIの設定状態です。
type Status struct {
	Configured bool   `json:"configured"`
	Region     string `json:"region"`
	Message    string `json:"message"`
}
