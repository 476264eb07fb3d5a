// Package handler はvisionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vision_backend/internal/api"
	"vision_backend/internal/feature/vision/transport/http/dto"
	"vision_backend/internal/feature/vision/usecase"
	"vision_backend/internal/platform/imaging"
)

// VisionUsecase は推論タスクのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type VisionUsecase interface {
	Detect(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.DetectResult, error)
	Classify(ctx context.Context, img image.Image, opts usecase.ClassifyOptions) (*usecase.ClassifyResult, error)
	Pose(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.PoseResult, error)
	Segment(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.SegmentResult, error)
}

// VisionHandler は検出・分類・姿勢推定・分割のHTTPリクエストを処理します。
type VisionHandler struct {
	uc VisionUsecase
}

// NewVisionHandler はVisionHandlerの新しいインスタンスを生成します。
func NewVisionHandler(uc VisionUsecase) *VisionHandler {
	return &VisionHandler{uc: uc}
}

// decodeImage はリクエストのBase64ペイロードを画像にデコードします。
// 失敗した場合は400を書き込んでfalseを返します。
func decodeImage(c *gin.Context, payload string) (image.Image, bool) {
	img, err := imaging.DecodeImage(payload)
	if err != nil {
		slog.Warn("画像のデコードに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("画像データを読み取れません: %v", err)})
		return nil, false
	}
	return img, true
}

// detectOptions はDetectRequestにデフォルト値を適用します。
func detectOptions(req dto.DetectRequest) usecase.DetectOptions {
	opts := usecase.DetectOptions{
		Conf:        usecase.DefaultConf,
		IoU:         usecase.DefaultIoU,
		ReturnImage: true,
	}
	if req.Conf != nil {
		opts.Conf = *req.Conf
	}
	if req.IoU != nil {
		opts.IoU = *req.IoU
	}
	if req.ReturnImage != nil {
		opts.ReturnImage = *req.ReturnImage
	}
	return opts
}

// Detect は目標検出を実行します。
//
// エンドポイント: POST /api/detect
func (h *VisionHandler) Detect(c *gin.Context) {
	var req dto.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image_base64が必要です"})
		return
	}

	img, ok := decodeImage(c, req.ImageBase64)
	if !ok {
		return
	}

	result, err := h.uc.Detect(c.Request.Context(), img, detectOptions(req))
	if err != nil {
		h.writeTaskError(c, "detection", "検出に失敗しました", err)
		return
	}

	data := gin.H{
		"detections": result.Detections,
		"count":      len(result.Detections),
	}
	if result.AnnotatedImage != "" {
		data["annotated_image"] = result.AnnotatedImage
	}
	c.JSON(http.StatusOK, api.APIResponse{
		Success: true,
		Task:    "detection",
		Message: fmt.Sprintf("%d件の目標を検出しました", len(result.Detections)),
		Data:    data,
	})
}

// Classify は画像分類を実行します。analyze_scene指定時（デフォルト有効）は
// シーン分析結果も返します。
//
// エンドポイント: POST /api/classify
func (h *VisionHandler) Classify(c *gin.Context) {
	var req dto.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image_base64が必要です"})
		return
	}

	img, ok := decodeImage(c, req.ImageBase64)
	if !ok {
		return
	}

	opts := usecase.ClassifyOptions{
		Conf:         usecase.DefaultConf,
		TopK:         usecase.DefaultTopK,
		AnalyzeScene: true,
	}
	if req.Conf != nil {
		opts.Conf = *req.Conf
	}
	if req.TopK != nil {
		opts.TopK = *req.TopK
	}
	if req.AnalyzeScene != nil {
		opts.AnalyzeScene = *req.AnalyzeScene
	}

	result, err := h.uc.Classify(c.Request.Context(), img, opts)
	if err != nil {
		h.writeTaskError(c, "classification", "分類に失敗しました", err)
		return
	}

	data := gin.H{"classifications": result.Classifications}
	message := fmt.Sprintf("分類完了、Top-%d件", len(result.Classifications))
	if result.SceneAnalysis != nil {
		data["scene_analysis"] = result.SceneAnalysis
		data["detected_objects"] = result.DetectedObjects
		message = fmt.Sprintf("分類完了：%s", result.SceneAnalysis.PrimaryScene.Name)
	}
	c.JSON(http.StatusOK, api.APIResponse{
		Success: true,
		Task:    "classification",
		Message: message,
		Data:    data,
	})
}

// Pose は姿勢推定を実行します。
//
// エンドポイント: POST /api/pose
func (h *VisionHandler) Pose(c *gin.Context) {
	var req dto.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image_base64が必要です"})
		return
	}

	img, ok := decodeImage(c, req.ImageBase64)
	if !ok {
		return
	}

	result, err := h.uc.Pose(c.Request.Context(), img, detectOptions(req))
	if err != nil {
		h.writeTaskError(c, "pose_estimation", "姿勢推定に失敗しました", err)
		return
	}

	data := gin.H{
		"poses": result.Poses,
		"count": len(result.Poses),
	}
	if result.AnnotatedImage != "" {
		data["annotated_image"] = result.AnnotatedImage
	}
	c.JSON(http.StatusOK, api.APIResponse{
		Success: true,
		Task:    "pose_estimation",
		Message: fmt.Sprintf("%d人を検出しました", len(result.Poses)),
		Data:    data,
	})
}

// Segment はインスタンスセグメンテーションを実行します。
//
// エンドポイント: POST /api/segment
func (h *VisionHandler) Segment(c *gin.Context) {
	var req dto.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image_base64が必要です"})
		return
	}

	img, ok := decodeImage(c, req.ImageBase64)
	if !ok {
		return
	}

	result, err := h.uc.Segment(c.Request.Context(), img, detectOptions(req))
	if err != nil {
		h.writeTaskError(c, "segmentation", "セグメンテーションに失敗しました", err)
		return
	}

	data := gin.H{
		"segments": result.Segments,
		"count":    len(result.Segments),
	}
	if result.AnnotatedImage != "" {
		data["annotated_image"] = result.AnnotatedImage
	}
	c.JSON(http.StatusOK, api.APIResponse{
		Success: true,
		Task:    "segmentation",
		Message: fmt.Sprintf("%d件を分割しました", len(result.Segments)),
		Data:    data,
	})
}

// writeTaskError はユースケースのエラーをHTTPステータスへ変換します。
// パラメータ検証エラーは400、モデルランナー失敗は502です。
func (h *VisionHandler) writeTaskError(c *gin.Context, task, message string, err error) {
	slog.Error("推論タスクに失敗", "task", task, "error", err)

	status := http.StatusBadGateway
	if errors.Is(err, usecase.ErrInvalidParams) {
		status = http.StatusBadRequest
	}
	c.JSON(status, api.ErrorResponse{Error: fmt.Sprintf("%s: %v", message, err)})
}
