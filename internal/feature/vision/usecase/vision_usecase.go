// Package usecase はvisionフィーチャー（検出・分類・姿勢推定・分割）のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	sceneentity "vision_backend/internal/feature/scene/domain/entity"
	sceneusecase "vision_backend/internal/feature/scene/usecase"
	"vision_backend/internal/feature/vision/domain/entity"
	"vision_backend/internal/platform/imaging"
)

const (
	// DefaultConf / DefaultIoU / DefaultTopK はリクエストで省略された場合の推論パラメータです。
	DefaultConf = 0.25
	DefaultIoU  = 0.45
	DefaultTopK = 5

	// auxDetectConf はシーン分析の補助検出に使う信頼度閾値です。
	auxDetectConf = 0.3
	// maxAuxObjects はレスポンスに含める補助検出結果の上限です。
	maxAuxObjects = 10
)

// ErrInvalidParams は推論パラメータが範囲外であることを示します。
var ErrInvalidParams = errors.New("invalid inference parameters")

// ModelRunner は学習済みモデルによる推論を実行する外部コラボレーターです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ModelRunner interface {
	Detect(ctx context.Context, img image.Image, conf, iou float64) ([]entity.Detection, error)
	Classify(ctx context.Context, img image.Image, conf float64, topK int) ([]entity.Classification, error)
	Pose(ctx context.Context, img image.Image, conf, iou float64) ([]entity.Pose, error)
	Segment(ctx context.Context, img image.Image, conf, iou float64) ([]entity.Segment, error)
}

// DetectOptions は検出系タスクのパラメータです。
type DetectOptions struct {
	Conf        float64
	IoU         float64
	ReturnImage bool
}

// ClassifyOptions は分類タスクのパラメータです。
type ClassifyOptions struct {
	Conf         float64
	TopK         int
	AnalyzeScene bool
}

// DetectResult は検出タスクの結果です。
type DetectResult struct {
	Detections     []entity.Detection
	AnnotatedImage string // ReturnImage指定時のみ。Base64 JPEG。
}

// ClassifyResult は分類タスクの結果です。シーン分析はAnalyzeScene指定時のみ設定されます。
type ClassifyResult struct {
	Classifications []entity.Classification
	SceneAnalysis   *sceneentity.SceneAnalysis
	DetectedObjects []sceneentity.DetectionItem
}

// PoseResult は姿勢推定タスクの結果です。
type PoseResult struct {
	Poses          []entity.Pose
	AnnotatedImage string
}

// SegmentResult はセグメンテーションタスクの結果です。
type SegmentResult struct {
	Segments       []entity.Segment
	AnnotatedImage string
}

// visionUsecase は推論タスクのオーケストレーションを提供します。
type visionUsecase struct {
	runner ModelRunner
}

// NewVisionUsecase はvisionUsecaseの新しいインスタンスを生成します。
func NewVisionUsecase(runner ModelRunner) *visionUsecase {
	return &visionUsecase{runner: runner}
}

// validateThresholds は信頼度・IoU閾値の範囲を検証します。
func validateThresholds(conf, iou float64) error {
	if conf < 0 || conf > 1 {
		return fmt.Errorf("%w: conf=%v", ErrInvalidParams, conf)
	}
	if iou < 0 || iou > 1 {
		return fmt.Errorf("%w: iou=%v", ErrInvalidParams, iou)
	}
	return nil
}

// Detect は目標検出を実行します。
func (u *visionUsecase) Detect(ctx context.Context, img image.Image, opts DetectOptions) (*DetectResult, error) {
	if err := validateThresholds(opts.Conf, opts.IoU); err != nil {
		return nil, err
	}

	detections, err := u.runner.Detect(ctx, img, opts.Conf, opts.IoU)
	if err != nil {
		return nil, fmt.Errorf("model runner detect failed: %w", err)
	}

	result := &DetectResult{Detections: detections}
	if opts.ReturnImage {
		boxes := make([]imaging.Box, 0, len(detections))
		for _, d := range detections {
			boxes = append(boxes, detectionBox(d.ClassName, d.Confidence, d.BBox))
		}
		result.AnnotatedImage, err = imaging.EncodeJPEGBase64(imaging.Annotate(img, boxes))
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Classify は画像分類を実行し、オプションでシーン分析を付加します。
func (u *visionUsecase) Classify(ctx context.Context, img image.Image, opts ClassifyOptions) (*ClassifyResult, error) {
	if err := validateThresholds(opts.Conf, 0); err != nil {
		return nil, err
	}
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("%w: top_k=%d", ErrInvalidParams, opts.TopK)
	}

	classifications, err := u.runner.Classify(ctx, img, opts.Conf, opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("model runner classify failed: %w", err)
	}
	for i := range classifications {
		classifications[i].ClassNameJA = TranslateClassName(classifications[i].ClassName)
	}

	result := &ClassifyResult{Classifications: classifications}
	if !opts.AnalyzeScene {
		return result, nil
	}

	features := sceneusecase.ExtractFeatures(img)

	// 補助検出はベストエフォート。失敗してもシーン分析自体は続行します。
	var detectedObjects []sceneentity.DetectionItem
	if detections, err := u.runner.Detect(ctx, img, auxDetectConf, DefaultIoU); err != nil {
		slog.Warn("シーン分析の補助検出に失敗", "error", err)
	} else {
		detectedObjects = make([]sceneentity.DetectionItem, 0, len(detections))
		for _, d := range detections {
			detectedObjects = append(detectedObjects, sceneentity.DetectionItem{
				ClassName:  d.ClassName,
				Confidence: d.Confidence,
			})
		}
	}

	sceneItems := make([]sceneentity.ClassificationItem, 0, len(classifications))
	for _, c := range classifications {
		sceneItems = append(sceneItems, sceneentity.ClassificationItem{
			ClassName:  c.ClassName,
			Confidence: c.Confidence,
		})
	}

	analysis := sceneusecase.ClassifyScene(sceneItems, &features, detectedObjects)
	result.SceneAnalysis = &analysis
	if len(detectedObjects) > maxAuxObjects {
		detectedObjects = detectedObjects[:maxAuxObjects]
	}
	result.DetectedObjects = detectedObjects
	return result, nil
}

// Pose は姿勢推定を実行します。
func (u *visionUsecase) Pose(ctx context.Context, img image.Image, opts DetectOptions) (*PoseResult, error) {
	if err := validateThresholds(opts.Conf, opts.IoU); err != nil {
		return nil, err
	}

	poses, err := u.runner.Pose(ctx, img, opts.Conf, opts.IoU)
	if err != nil {
		return nil, fmt.Errorf("model runner pose failed: %w", err)
	}

	result := &PoseResult{Poses: poses}
	if opts.ReturnImage {
		boxes := make([]imaging.Box, 0, len(poses))
		for _, p := range poses {
			if p.BBox == nil {
				continue
			}
			boxes = append(boxes, detectionBox("person", 0, *p.BBox))
		}
		result.AnnotatedImage, err = imaging.EncodeJPEGBase64(imaging.Annotate(img, boxes))
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Segment はインスタンスセグメンテーションを実行します。
func (u *visionUsecase) Segment(ctx context.Context, img image.Image, opts DetectOptions) (*SegmentResult, error) {
	if err := validateThresholds(opts.Conf, opts.IoU); err != nil {
		return nil, err
	}

	segments, err := u.runner.Segment(ctx, img, opts.Conf, opts.IoU)
	if err != nil {
		return nil, fmt.Errorf("model runner segment failed: %w", err)
	}

	result := &SegmentResult{Segments: segments}
	if opts.ReturnImage {
		boxes := make([]imaging.Box, 0, len(segments))
		for _, s := range segments {
			boxes = append(boxes, detectionBox(s.ClassName, s.Confidence, s.BBox))
		}
		result.AnnotatedImage, err = imaging.EncodeJPEGBase64(imaging.Annotate(img, boxes))
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// detectionBox はドメインのBBoxを描画用Boxへ変換します。
func detectionBox(label string, conf float64, b entity.BBox) imaging.Box {
	return imaging.Box{
		Rect:       image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)),
		Label:      label,
		Confidence: conf,
	}
}
