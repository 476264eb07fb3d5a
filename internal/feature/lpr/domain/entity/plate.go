// Package entity はナンバープレート認識のドメインエンティティを定義します。
package entity

// BBox は画像座標系のバウンディングボックスです。
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// RawPlate は認識サービスから返される生の結果です。
// 種別はIDのまま保持し、表示名への変換はユースケースで行います。
type RawPlate struct {
	PlateNumber string
	Confidence  float64
	PlateTypeID int
	BBox        BBox
}

// Plate は表示名へ変換済みの1枚のナンバープレートです。
type Plate struct {
	PlateNumber string  `json:"plate_number"`
	PlateType   string  `json:"plate_type"`
	PlateColor  string  `json:"plate_color"`
	Confidence  float64 `json:"confidence"`
	BBox        BBox    `json:"bbox"`
}

// plateTypeNames はプレート種別IDの表示名です。
var plateTypeNames = map[int]string{
	0: "不明",
	1: "青ナンバー",
	2: "黄ナンバー",
	3: "緑ナンバー",
	4: "白ナンバー",
	5: "黒ナンバー",
	6: "緑ナンバー（小型新エネルギー）",
	7: "黄緑ナンバー（大型新エネルギー）",
}

// plateColorNames はプレート種別IDに対応する地色の表示名です。
var plateColorNames = map[int]string{
	0: "不明",
	1: "青色",
	2: "黄色",
	3: "緑色",
	4: "白色",
	5: "黒色",
	6: "グラデーション緑",
	7: "黄緑グラデーション",
}

// PlateTypeName は種別IDの表示名を返します。未知のIDは「不明」です。
func PlateTypeName(id int) string {
	if name, ok := plateTypeNames[id]; ok {
		return name
	}
	return plateTypeNames[0]
}

// PlateColorName は種別IDに対応する地色の表示名を返します。
func PlateColorName(id int) string {
	if name, ok := plateColorNames[id]; ok {
		return name
	}
	return plateColorNames[0]
}

// SupportedPlateTypes はステータス表示用に全種別の表示名をID順で返します。
func SupportedPlateTypes() []string {
	names := make([]string, 0, len(plateTypeNames))
	for id := 0; id < len(plateTypeNames); id++ {
		names = append(names, plateTypeNames[id])
	}
	return names
}
