package usecase

import (
	"math"
	"sort"
	"strings"

	"vision_backend/internal/feature/scene/domain/entity"
)

const (
	// minPrimaryScore を下回るベストスコアは "unknown" 扱いになります。
	minPrimaryScore = 0.1
	// personWeight は検出ラベル "person" のポートレート加点係数です。
	personWeight = 1.5
	// detectionWeight は検出ラベルのキーワードマッチ加点係数です。
	detectionWeight = 0.8
	// animeArtBonus はアニメ風画像のアート加点です。
	animeArtBonus = 0.5
	// saturationBonus は高彩度画像のフード/アート加点です。
	saturationBonus = 0.1
	// totalEpsilon はゼロ除算を避けるための加算項です。
	totalEpsilon = 0.001

	maxDistribution    = 5
	maxMatchedKeywords = 10
)

// ClassifyScene は分類結果・画像特徴・検出結果からシーン種別の分布を推定します。
// 純粋関数であり、同じ入力に対して常に同じ結果を返します。失敗することはなく、
// シグナルが不足している場合は "unknown" に縮退します。
//
// マッチングの仕様:
//   - 分類ラベルは双方向の部分文字列マッチ（keyword⊂name または name⊂keyword）。
//     意図的に緩い仕様で、"cat" が "category" にマッチする等の誤検出も仕様の一部です。
//   - 検出ラベルは一方向（keyword⊂name）のみ。分類側との非対称は元仕様の挙動を
//     そのまま保存しています（統一しないこと）。
func ClassifyScene(classifications []entity.ClassificationItem, features *entity.ImageFeatures, detections []entity.DetectionItem) entity.SceneAnalysis {
	scores := make([]float64, len(Taxonomy))
	matched := make([]entity.MatchedKeyword, 0, maxMatchedKeywords)

	// 分類結果のキーワードマッチ
	for _, item := range classifications {
		className := strings.ToLower(item.ClassName)
		for i, tax := range Taxonomy {
			for _, keyword := range tax.Keywords {
				if strings.Contains(className, keyword) || strings.Contains(keyword, className) {
					scores[i] += item.Confidence
					matched = append(matched, entity.MatchedKeyword{
						Keyword:    keyword,
						Class:      className,
						Scene:      tax.Type,
						Confidence: item.Confidence,
					})
				}
			}
		}
	}

	// 検出結果の加点
	for _, obj := range detections {
		objName := strings.ToLower(obj.ClassName)

		// 人物検出はポートレートへの加点重みを上げる
		if objName == "person" {
			scores[taxonomyIndex["portrait"]] += obj.Confidence * personWeight
		}

		for i, tax := range Taxonomy {
			for _, keyword := range tax.Keywords {
				if strings.Contains(objName, keyword) {
					scores[i] += obj.Confidence * detectionWeight
				}
			}
		}
	}

	// 画像特徴による加点
	if features != nil {
		if features.IsAnimeStyle {
			scores[taxonomyIndex["art"]] += animeArtBonus
		}
		if features.Saturation > 0.5 {
			scores[taxonomyIndex["food"]] += saturationBonus
			scores[taxonomyIndex["art"]] += saturationBonus
		}
	}

	// ベストシーン決定。同点はタクソノミー順で先のエントリが勝ちます。
	bestIdx := 0
	for i, s := range scores {
		if s > scores[bestIdx] {
			bestIdx = i
		}
	}
	bestScore := scores[bestIdx]

	// スコアが低すぎる場合はunknown扱い。信頼度は上書き前のベストスコアのまま。
	if bestScore < minPrimaryScore {
		bestIdx = taxonomyIndex[SceneUnknown]
	}
	best := Taxonomy[bestIdx]

	// 正規化済みのシーン分布（上位5件、スコア0は除外）
	total := totalEpsilon
	for _, s := range scores {
		total += s
	}
	order := make([]int, len(Taxonomy))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	distribution := make([]entity.DistributionEntry, 0, maxDistribution)
	for _, i := range order {
		if scores[i] <= 0 || len(distribution) >= maxDistribution {
			break
		}
		distribution = append(distribution, entity.DistributionEntry{
			Type:       Taxonomy[i].Type,
			Name:       Taxonomy[i].Name,
			Icon:       Taxonomy[i].Icon,
			Confidence: scores[i] / total,
		})
	}

	if len(matched) > maxMatchedKeywords {
		matched = matched[:maxMatchedKeywords]
	}

	return entity.SceneAnalysis{
		PrimaryScene: entity.PrimaryScene{
			Type:        best.Type,
			Name:        best.Name,
			Icon:        best.Icon,
			Description: best.Description,
			Confidence:  math.Min(bestScore, 1.0),
		},
		SceneDistribution: distribution,
		MatchedKeywords:   matched,
		ImageFeatures:     summarize(features),
	}
}

// summarize はレスポンス用に画像特徴を要約します。featuresがnilの場合はゼロ値です。
func summarize(features *entity.ImageFeatures) entity.FeatureSummary {
	if features == nil {
		return entity.FeatureSummary{}
	}
	return entity.FeatureSummary{
		IsAnimeStyle: features.IsAnimeStyle,
		Saturation:   round2(features.Saturation),
		Brightness:   round2(features.Brightness),
	}
}

// round2 は小数第2位に丸めます。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
