package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Box は注釈として描画する1つの検出結果です。
type Box struct {
	Rect       image.Rectangle
	Label      string
	Confidence float64
}

// boxColor は枠線とラベル背景の色です。
var boxColor = color.RGBA{0, 255, 0, 255}

// lineWidth は枠線の太さ（ピクセル）です。
const lineWidth = 2

// Annotate は画像のコピーに検出枠とラベルを描画して返します。元画像は変更しません。
func Annotate(src image.Image, boxes []Box) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)

	for _, b := range boxes {
		rect := b.Rect.Intersect(bounds)
		if rect.Empty() {
			continue
		}
		drawRectOutline(dst, rect)
		drawLabel(dst, rect, b)
	}
	return dst
}

// drawRectOutline は枠線を描画します。
func drawRectOutline(dst *image.RGBA, rect image.Rectangle) {
	fill := image.NewUniform(boxColor)
	// 上下
	draw.Draw(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+lineWidth), fill, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(rect.Min.X, rect.Max.Y-lineWidth, rect.Max.X, rect.Max.Y), fill, image.Point{}, draw.Src)
	// 左右
	draw.Draw(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+lineWidth, rect.Max.Y), fill, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(rect.Max.X-lineWidth, rect.Min.Y, rect.Max.X, rect.Max.Y), fill, image.Point{}, draw.Src)
}

// drawLabel は枠の上にラベル背景と文字を描画します。
func drawLabel(dst *image.RGBA, rect image.Rectangle, b Box) {
	if b.Label == "" {
		return
	}
	text := b.Label
	if b.Confidence > 0 {
		text = fmt.Sprintf("%s: %.2f", b.Label, b.Confidence)
	}

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Metrics().Height.Ceil()

	bg := image.Rect(rect.Min.X, rect.Min.Y-textHeight-4, rect.Min.X+textWidth+8, rect.Min.Y)
	bg = bg.Intersect(dst.Bounds())
	if bg.Empty() {
		// 画像上端の枠はラベルを枠内に描く
		bg = image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+textWidth+8, rect.Min.Y+textHeight+4).Intersect(dst.Bounds())
	}
	draw.Draw(dst, bg, image.NewUniform(boxColor), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{0, 0, 0, 255}),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(bg.Min.X + 4),
			Y: fixed.I(bg.Max.Y - 3),
		},
	}
	d.DrawString(text)
}
