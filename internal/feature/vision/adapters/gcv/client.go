// Package gcv はGoogle Cloud Vision APIを使用したModelRunner実装を提供します。
// ラベル検出とオブジェクトローカライゼーションのみ対応し、
// 姿勢推定・セグメンテーションはサポートしません。
package gcv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"vision_backend/internal/feature/vision/domain/entity"
	"vision_backend/internal/feature/vision/usecase"
)

// ErrUnsupportedTask はGoogle Cloud Visionが対応しないタスクを示します。
var ErrUnsupportedTask = errors.New("task not supported by cloud vision backend")

// Runner はGoogle Cloud Vision APIで検出・分類を実行します。
type Runner struct {
	client *gvision.ImageAnnotatorClient
}

// RunnerがModelRunnerを実装していることをコンパイル時に検証します。
var _ usecase.ModelRunner = (*Runner)(nil)

// NewRunner はADCを使用してRunnerの新しいインスタンスを生成します。
func NewRunner(ctx context.Context) (*Runner, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &Runner{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (r *Runner) Close() error {
	return r.client.Close()
}

// annotate は1画像・1フィーチャーのリクエストを実行します。
func (r *Runner) annotate(ctx context.Context, img image.Image, feature visionpb.Feature_Type, maxResults int32) (*visionpb.AnnotateImageResponse, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: buf.Bytes()},
				Features: []*visionpb.Feature{
					{Type: feature, MaxResults: maxResults},
				},
			},
		},
	}

	resp, err := r.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, nil
	}
	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}
	return resp.Responses[0], nil
}

// Detect はオブジェクトローカライゼーションの結果を目標検出として返します。
// 正規化座標はピクセル座標に変換します。
func (r *Runner) Detect(ctx context.Context, img image.Image, conf, _ float64) ([]entity.Detection, error) {
	resp, err := r.annotate(ctx, img, visionpb.Feature_OBJECT_LOCALIZATION, 50)
	if err != nil || resp == nil {
		return nil, err
	}

	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	detections := make([]entity.Detection, 0, len(resp.LocalizedObjectAnnotations))
	for _, obj := range resp.LocalizedObjectAnnotations {
		if float64(obj.Score) < conf {
			continue
		}
		box := normalizedBBox(obj.BoundingPoly, w, h)
		detections = append(detections, entity.Detection{
			ClassName:  obj.Name,
			Confidence: float64(obj.Score),
			BBox:       box,
		})
	}
	return detections, nil
}

// Classify はラベル検出の結果を分類として返します。
func (r *Runner) Classify(ctx context.Context, img image.Image, conf float64, topK int) ([]entity.Classification, error) {
	resp, err := r.annotate(ctx, img, visionpb.Feature_LABEL_DETECTION, int32(topK))
	if err != nil || resp == nil {
		return nil, err
	}

	classifications := make([]entity.Classification, 0, len(resp.LabelAnnotations))
	for i, label := range resp.LabelAnnotations {
		if float64(label.Score) < conf || len(classifications) >= topK {
			break
		}
		classifications = append(classifications, entity.Classification{
			ClassID:    i,
			ClassName:  label.Description,
			Confidence: float64(label.Score),
		})
	}
	return classifications, nil
}

// Pose はサポートされません。
func (r *Runner) Pose(_ context.Context, _ image.Image, _, _ float64) ([]entity.Pose, error) {
	return nil, fmt.Errorf("%w: pose", ErrUnsupportedTask)
}

// Segment はサポートされません。
func (r *Runner) Segment(_ context.Context, _ image.Image, _, _ float64) ([]entity.Segment, error) {
	return nil, fmt.Errorf("%w: segment", ErrUnsupportedTask)
}

// normalizedBBox は正規化された頂点列からピクセル座標の外接矩形を計算します。
func normalizedBBox(poly *visionpb.BoundingPoly, w, h float64) entity.BBox {
	if poly == nil || len(poly.NormalizedVertices) == 0 {
		return entity.BBox{}
	}
	minX, minY := 1.0, 1.0
	maxX, maxY := 0.0, 0.0
	for _, v := range poly.NormalizedVertices {
		x := float64(v.X)
		y := float64(v.Y)
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}
	return entity.BBox{X1: minX * w, Y1: minY * h, X2: maxX * w, Y2: maxY * h}
}
