// Package usecase はシーン判定のビジネスロジック（特徴抽出・スコアリング）を実装します。
package usecase

import "vision_backend/internal/feature/scene/domain/entity"

// SceneUnknown は判定不能時のシーン種別です。
const SceneUnknown = "unknown"

// Taxonomy は固定12種のシーンタクソノミーです。
// スコアの同点時は先頭に近いエントリが勝つため、順序は固定です。変更しないこと。
var Taxonomy = []entity.TaxonomyEntry{
	{
		Type:        "portrait",
		Name:        "人物写真",
		Icon:        "👤",
		Description: "人物を含む写真",
		Keywords:    []string{"person", "face", "portrait", "people", "human", "man", "woman", "child", "baby"},
	},
	{
		Type:        "animal",
		Name:        "動物",
		Icon:        "🐾",
		Description: "動物の写真",
		Keywords:    []string{"dog", "cat", "bird", "fish", "horse", "elephant", "bear", "zebra", "giraffe", "cow", "sheep", "tiger", "lion", "monkey", "rabbit", "hamster", "pet"},
	},
	{
		Type:        "cityscape",
		Name:        "都市風景",
		Icon:        "🏙️",
		Description: "都市の建築物や街並み",
		Keywords:    []string{"skyscraper", "building", "tower", "bridge", "street", "road", "traffic", "car", "bus", "train", "architecture", "city", "urban", "downtown", "office"},
	},
	{
		Type:        "nature",
		Name:        "自然風景",
		Icon:        "🏞️",
		Description: "自然の風景や屋外シーン",
		Keywords:    []string{"mountain", "lake", "river", "ocean", "sea", "beach", "forest", "tree", "flower", "garden", "sky", "cloud", "sunset", "sunrise", "landscape", "grass", "field", "valley"},
	},
	{
		Type:        "food",
		Name:        "料理",
		Icon:        "🍽️",
		Description: "食べ物や飲み物",
		Keywords:    []string{"food", "pizza", "burger", "cake", "fruit", "vegetable", "bread", "coffee", "drink", "meal", "dinner", "breakfast", "lunch", "restaurant", "dish", "cuisine"},
	},
	{
		Type:        "vehicle",
		Name:        "乗り物",
		Icon:        "🚗",
		Description: "車両や交通機関",
		Keywords:    []string{"car", "truck", "bus", "motorcycle", "bicycle", "airplane", "boat", "ship", "train", "vehicle", "automobile", "van"},
	},
	{
		Type:        "indoor",
		Name:        "室内",
		Icon:        "🏠",
		Description: "室内環境や家具",
		Keywords:    []string{"room", "furniture", "sofa", "chair", "table", "bed", "lamp", "desk", "kitchen", "bathroom", "bedroom", "living", "office", "interior"},
	},
	{
		Type:        "sports",
		Name:        "スポーツ",
		Icon:        "⚽",
		Description: "スポーツ関連",
		Keywords:    []string{"ball", "football", "basketball", "tennis", "golf", "baseball", "soccer", "swimming", "running", "sport", "gym", "stadium", "athlete"},
	},
	{
		Type:        "electronics",
		Name:        "電子機器",
		Icon:        "📱",
		Description: "電子製品やデバイス",
		Keywords:    []string{"phone", "computer", "laptop", "keyboard", "mouse", "screen", "monitor", "television", "camera", "electronic", "device", "gadget"},
	},
	{
		Type:        "art",
		Name:        "アート/アニメ",
		Icon:        "🎨",
		Description: "芸術作品、イラスト、アニメ風の画像",
		Keywords:    []string{"painting", "art", "drawing", "illustration", "cartoon", "comic", "animation", "poster", "design", "graphic"},
	},
	{
		Type:        "text",
		Name:        "テキスト/文書",
		Icon:        "📄",
		Description: "文字を含む画像",
		Keywords:    []string{"document", "paper", "book", "newspaper", "magazine", "text", "letter", "sign", "poster", "menu", "envelope", "notebook"},
	},
	{
		Type:        SceneUnknown,
		Name:        "その他",
		Icon:        "❓",
		Description: "判定できないシーン",
		Keywords:    []string{},
	},
}

// taxonomyIndex はType→Taxonomyインデックスの逆引きです。
var taxonomyIndex = func() map[string]int {
	m := make(map[string]int, len(Taxonomy))
	for i, e := range Taxonomy {
		m[e.Type] = i
	}
	return m
}()
