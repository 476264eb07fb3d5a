// Package usecase はテンセントクラウド画像分析連携のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"strconv"

	"vision_backend/internal/feature/tencent/adapters/tiia/dto"
	"vision_backend/internal/feature/tencent/domain/entity"
)

// TIIAClient はテンセントクラウド画像分析APIクライアントです。
type TIIAClient interface {
	DetectLabel(ctx context.Context, imageBase64 string) (*dto.DetectLabelResponse, error)
	DetectLabelPro(ctx context.Context, imageBase64 string) (*dto.DetectLabelResponse, error)
	RecognizeCar(ctx context.Context, imageBase64 string) (*dto.RecognizeCarResponse, error)
}

// ErrNotConfigured はテンセントクラウドの認証情報が未設定であることを示します。
var ErrNotConfigured = errors.New("tencent credentials not configured")

// tencentUsecase はテンセントクラウド連携のオーケストレーションを提供します。
type tencentUsecase struct {
	client TIIAClient // 未設定の場合nil
	region string
}

// NewTencentUsecase はtencentUsecaseの新しいインスタンスを生成します。
func NewTencentUsecase(client TIIAClient, region string) *tencentUsecase {
	return &tencentUsecase{client: client, region: region}
}

// Detect はカメラシーン向けのラベル検出を実行します。信頼度は0〜1へ正規化します。
func (u *tencentUsecase) Detect(ctx context.Context, imageBase64 string) ([]entity.DetectLabel, error) {
	if u.client == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.client.DetectLabel(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	labels := make([]entity.DetectLabel, 0, len(res.Labels))
	for _, label := range res.Labels {
		labels = append(labels, entity.DetectLabel{
			Name:       label.Name,
			NameEn:     label.FirstCategory,
			Confidence: label.Confidence / 100,
			Category:   label.SecondCategory,
		})
	}
	return labels, nil
}

// Label は高精度ラベル検出を実行します。
func (u *tencentUsecase) Label(ctx context.Context, imageBase64 string) ([]entity.ProLabel, error) {
	if u.client == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.client.DetectLabelPro(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	labels := make([]entity.ProLabel, 0, len(res.Labels))
	for _, label := range res.Labels {
		labels = append(labels, entity.ProLabel{
			Name:           label.Name,
			Confidence:     label.Confidence / 100,
			FirstCategory:  label.FirstCategory,
			SecondCategory: label.SecondCategory,
		})
	}
	return labels, nil
}

// Car は車両認識を実行します。座標はX/Y/幅/高さからx1y1x2y2へ変換します。
// タグが座標より少ない場合、不足分は「不明」で埋めます。
func (u *tencentUsecase) Car(ctx context.Context, imageBase64 string) ([]entity.Car, error) {
	if u.client == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.client.RecognizeCar(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	cars := make([]entity.Car, 0, len(res.CarCoords))
	for i, coord := range res.CarCoords {
		car := entity.Car{
			Brand: "不明",
			Model: "不明",
			Color: "不明",
			Year:  "不明",
			BBox: entity.BBox{
				X1: coord.X,
				Y1: coord.Y,
				X2: coord.X + coord.Width,
				Y2: coord.Y + coord.Height,
			},
		}
		if i < len(res.CarTags) {
			tag := res.CarTags[i]
			if tag.Brand != "" {
				car.Brand = tag.Brand
			}
			if tag.Type != "" {
				car.Model = tag.Type
			}
			if tag.Color != "" {
				car.Color = tag.Color
			}
			if tag.Year != 0 {
				car.Year = strconv.Itoa(tag.Year)
			}
			car.Confidence = tag.Confidence / 100
		}
		cars = append(cars, car)
	}
	return cars, nil
}

// Status はテンセントクラウドAPIの設定状態を返します。
func (u *tencentUsecase) Status() entity.Status {
	configured := u.client != nil
	message := "テンセントクラウドAPIは利用可能です"
	if !configured {
		message = "テンセントクラウドの認証情報を設定してください"
	}
	return entity.Status{
		Configured: configured,
		Region:     u.region,
		Message:    message,
	}
}
