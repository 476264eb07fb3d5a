// Package entity はsceneフィーチャーのドメインエンティティを定義します。
package entity

// TaxonomyEntry はシーン分類タクソノミーの1エントリです。
// 起動時に一度構築され、以後不変です。
type TaxonomyEntry struct {
	Type        string   // タクソノミー上の識別子（例: "portrait"）
	Name        string   // 表示名
	Icon        string   // 表示用アイコン
	Description string   // 説明文
	Keywords    []string // キーワードマッチングに使う語彙
}

// ClassificationItem は外部分類器が返す（ラベル, 信頼度）のペアです。
type ClassificationItem struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

// DetectionItem は外部検出器が返す（ラベル, 信頼度）のペアです。
// バウンディングボックスはシーン判定では使用しません。
type DetectionItem struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

// ImageFeatures は1枚の画像から導出される単純なピクセル統計です。
// リクエストごとに計算され、永続化されません。
type ImageFeatures struct {
	Saturation   float64 // HSVのS平均 / 255（0〜1）
	Brightness   float64 // HSVのV平均 / 255（0〜1）
	EdgeRatio    float64 // エッジ画素の割合（0〜1）
	UniqueColors int     // 64x64に縮小・量子化した後の色数
	IsAnimeStyle bool    // アニメ/イラスト風かどうかのヒューリスティック
}

// PrimaryScene は最も可能性の高いシーン種別です。
// Confidenceはベストスコアを1.0でクランプした値であり、
// SceneDistributionの正規化済み値とはスケールが異なります（既存クライアント互換のため）。
type PrimaryScene struct {
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// DistributionEntry はシーン種別ごとの正規化済みスコアです。
type DistributionEntry struct {
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Confidence float64 `json:"confidence"`
}

// MatchedKeyword は分類ラベルとタクソノミーキーワードのマッチ記録です。
type MatchedKeyword struct {
	Keyword    string  `json:"keyword"`
	Class      string  `json:"class"`
	Scene      string  `json:"scene"`
	Confidence float64 `json:"confidence"`
}

// FeatureSummary はレスポンスに含める画像特徴の要約です。
// SaturationとBrightnessは小数第2位に丸められます。
type FeatureSummary struct {
	IsAnimeStyle bool    `json:"is_anime_style"`
	Saturation   float64 `json:"saturation"`
	Brightness   float64 `json:"brightness"`
}

// SceneAnalysis はシーン判定の最終結果です。
type SceneAnalysis struct {
	PrimaryScene      PrimaryScene        `json:"primary_scene"`
	SceneDistribution []DistributionEntry `json:"scene_distribution"`
	MatchedKeywords   []MatchedKeyword    `json:"matched_keywords"`
	ImageFeatures     FeatureSummary      `json:"image_features"`
}
