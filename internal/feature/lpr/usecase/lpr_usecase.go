// Package usecase はナンバープレート認識のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"image"

	"vision_backend/internal/feature/lpr/domain/entity"
	"vision_backend/internal/platform/imaging"
)

// PlateRecognizer はナンバープレートを認識する外部コラボレーターです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PlateRecognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]entity.RawPlate, error)
	Available(ctx context.Context) bool
}

// RecognizeResult はナンバープレート認識の結果です。
type RecognizeResult struct {
	Plates         []entity.Plate
	AnnotatedImage string // ReturnImage指定時かつ1枚以上認識した場合のみ。
}

// Status はナンバープレート認識サービスの状態です。
type Status struct {
	Available      bool     `json:"available"`
	ModelLoaded    bool     `json:"model_loaded"`
	SupportedTypes []string `json:"supported_types"`
	Message        string   `json:"message"`
}

// lprUsecase はナンバープレート認識のオーケストレーションを提供します。
type lprUsecase struct {
	recognizer PlateRecognizer
}

// NewLPRUsecase はlprUsecaseの新しいインスタンスを生成します。
func NewLPRUsecase(recognizer PlateRecognizer) *lprUsecase {
	return &lprUsecase{recognizer: recognizer}
}

// Recognize は画像からナンバープレートを認識し、種別・地色の表示名へ変換します。
func (u *lprUsecase) Recognize(ctx context.Context, img image.Image, returnImage bool) (*RecognizeResult, error) {
	raws, err := u.recognizer.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("plate recognizer failed: %w", err)
	}

	plates := make([]entity.Plate, 0, len(raws))
	for _, raw := range raws {
		plates = append(plates, entity.Plate{
			PlateNumber: raw.PlateNumber,
			PlateType:   entity.PlateTypeName(raw.PlateTypeID),
			PlateColor:  entity.PlateColorName(raw.PlateTypeID),
			Confidence:  raw.Confidence,
			BBox:        raw.BBox,
		})
	}

	result := &RecognizeResult{Plates: plates}
	if returnImage && len(plates) > 0 {
		boxes := make([]imaging.Box, 0, len(plates))
		for _, p := range plates {
			boxes = append(boxes, imaging.Box{
				Rect:       image.Rect(int(p.BBox.X1), int(p.BBox.Y1), int(p.BBox.X2), int(p.BBox.Y2)),
				Label:      p.PlateNumber,
				Confidence: p.Confidence,
			})
		}
		result.AnnotatedImage, err = imaging.EncodeJPEGBase64(imaging.Annotate(img, boxes))
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Status は認識サービスの稼働状態を返します。
func (u *lprUsecase) Status(ctx context.Context) Status {
	available := u.recognizer.Available(ctx)
	message := "ナンバープレート認識APIは利用可能です"
	if !available {
		message = "ナンバープレート認識サービスに接続できません"
	}
	return Status{
		Available:      available,
		ModelLoaded:    available,
		SupportedTypes: entity.SupportedPlateTypes(),
		Message:        message,
	}
}
