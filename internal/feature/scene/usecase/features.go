package usecase

import (
	"image"

	"github.com/nfnt/resize"

	"vision_backend/internal/feature/scene/domain/entity"
)

const (
	// animeSaturation / animeEdgeRatio / animeMaxColors はアニメ風判定の閾値です。
	// 学習は介在しない調整可能な定数です。
	animeSaturation = 0.6
	animeEdgeRatio  = 0.15
	animeMaxColors  = 500

	// edgeLowThreshold / edgeHighThreshold は勾配強度の二値化閾値です
	// （Canny相当のエッジ検出。0〜255スケール）。
	edgeLowThreshold  = 100
	edgeHighThreshold = 200

	// quantizedSize / quantizeStep は色数カウント時の縮小サイズと量子化幅です
	// （各チャネルを8段階に量子化）。
	quantizedSize = 64
	quantizeStep  = 32
)

// ExtractFeatures はデコード済みの画像からピクセル統計を計算します。
// 副作用のない純粋関数です。チャネル順はRGB（stdlib image の規約）で一貫しています。
func ExtractFeatures(img image.Image) entity.ImageFeatures {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return entity.ImageFeatures{}
	}

	gray := make([]float64, w*h)
	var satSum, valSum float64

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r16, g16, b16, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r := float64(r16 >> 8)
			g := float64(g16 >> 8)
			b := float64(b16 >> 8)

			// HSVのS・V成分（OpenCVと同じ定義: V=max, S=(max-min)/max）
			maxc := max3(r, g, b)
			minc := min3(r, g, b)
			if maxc > 0 {
				satSum += (maxc - minc) / maxc
			}
			valSum += maxc / 255.0

			// グレースケール（BT.601係数）
			gray[y*w+x] = 0.299*r + 0.587*g + 0.114*b
		}
	}

	n := float64(w * h)
	saturation := satSum / n
	brightness := valSum / n
	edgeRatio := edgeRatioOf(gray, w, h)
	uniqueColors := countQuantizedColors(img)

	return entity.ImageFeatures{
		Saturation:   saturation,
		Brightness:   brightness,
		EdgeRatio:    edgeRatio,
		UniqueColors: uniqueColors,
		IsAnimeStyle: saturation > animeSaturation &&
			edgeRatio > animeEdgeRatio &&
			uniqueColors < animeMaxColors,
	}
}

// edgeRatioOf はSobel勾配の二値化によるエッジ画素の割合を返します。
// 勾配強度がedgeHighThreshold以上、またはedgeLowThreshold以上で強エッジに
// 隣接する画素をエッジとみなします（ヒステリシスの1パス近似）。
func edgeRatioOf(gray []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}

	mag := make([]float64, w*h)
	strong := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			gx := -gray[i-w-1] - 2*gray[i-1] - gray[i+w-1] +
				gray[i-w+1] + 2*gray[i+1] + gray[i+w+1]
			gy := -gray[i-w-1] - 2*gray[i-w] - gray[i-w+1] +
				gray[i+w-1] + 2*gray[i+w] + gray[i+w+1]
			m := abs(gx) + abs(gy)
			mag[i] = m
			strong[i] = m >= edgeHighThreshold
		}
	}

	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if strong[i] {
				edges++
				continue
			}
			if mag[i] < edgeLowThreshold {
				continue
			}
			// 弱エッジは8近傍に強エッジがある場合のみ採用
			if strong[i-w-1] || strong[i-w] || strong[i-w+1] ||
				strong[i-1] || strong[i+1] ||
				strong[i+w-1] || strong[i+w] || strong[i+w+1] {
				edges++
			}
		}
	}

	return float64(edges) / float64(w*h)
}

// countQuantizedColors は64x64に縮小した画像の各チャネルを8段階に量子化し、
// 異なる色の数を数えます。
func countQuantizedColors(img image.Image) int {
	small := resize.Resize(quantizedSize, quantizedSize, img, resize.Bilinear)
	bounds := small.Bounds()

	seen := make(map[[3]uint8]struct{}, 512)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := small.At(x, y).RGBA()
			q := [3]uint8{
				uint8(r16>>8) / quantizeStep * quantizeStep,
				uint8(g16>>8) / quantizeStep * quantizeStep,
				uint8(b16>>8) / quantizeStep * quantizeStep,
			}
			seen[q] = struct{}{}
		}
	}
	return len(seen)
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
