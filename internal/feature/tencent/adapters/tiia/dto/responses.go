// Package dto はTIIA APIレスポンスのデータ転送オブジェクトを定義します。
package dto

// Label はラベル検出の1件の結果です。
type Label struct {
	Name           string  `json:"Name"`
	Confidence     float64 `json:"Confidence"`
	FirstCategory  string  `json:"FirstCategory"`
	SecondCategory string  `json:"SecondCategory"`
}

// DetectLabelResponse はDetectLabel / DetectLabelProのレスポンスです。
type DetectLabelResponse struct {
	Labels    []Label `json:"Labels"`
	RequestID string  `json:"RequestId"`
}

// CarCoord は車両の矩形座標（X/Y/幅/高さ）です。
type CarCoord struct {
	X      float64 `json:"X"`
	Y      float64 `json:"Y"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

// CarTag は車両の属性情報です。
type CarTag struct {
	Brand      string  `json:"Brand"`
	Type       string  `json:"Type"`
	Color      string  `json:"Color"`
	Year       int     `json:"Year"`
	Confidence float64 `json:"Confidence"`
}

// RecognizeCarResponse はRecognizeCarのレスポンスです。
type RecognizeCarResponse struct {
	CarCoords []CarCoord `json:"CarCoords"`
	CarTags   []CarTag   `json:"CarTags"`
	RequestID string     `json:"RequestId"`
}
