// Package handler はナンバープレート認識のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vision_backend/internal/api"
	"vision_backend/internal/feature/lpr/usecase"
	"vision_backend/internal/platform/imaging"
)

// LPRUsecase はナンバープレート認識のユースケースインターフェースを定義します。
type LPRUsecase interface {
	Recognize(ctx context.Context, img image.Image, returnImage bool) (*usecase.RecognizeResult, error)
	Status(ctx context.Context) usecase.Status
}

// LPRHandler はナンバープレート認識のHTTPリクエストを処理します。
type LPRHandler struct {
	uc LPRUsecase
}

// NewLPRHandler はLPRHandlerの新しいインスタンスを生成します。
func NewLPRHandler(uc LPRUsecase) *LPRHandler {
	return &LPRHandler{uc: uc}
}

// lprRequest はナンバープレート認識のリクエストボディです。
type lprRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	ReturnImage *bool  `json:"return_image"`
}

// Recognize はナンバープレート認識を実行します。
//
// エンドポイント: POST /api/lpr
func (h *LPRHandler) Recognize(c *gin.Context) {
	var req lprRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image_base64が必要です"})
		return
	}

	img, err := imaging.DecodeImage(req.ImageBase64)
	if err != nil {
		slog.Warn("画像のデコードに失敗", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("画像データを読み取れません: %v", err)})
		return
	}

	returnImage := true
	if req.ReturnImage != nil {
		returnImage = *req.ReturnImage
	}

	result, err := h.uc.Recognize(c.Request.Context(), img, returnImage)
	if err != nil {
		slog.Error("ナンバープレート認識に失敗", "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: fmt.Sprintf("ナンバープレート認識に失敗しました: %v", err)})
		return
	}

	data := gin.H{
		"plates": result.Plates,
		"count":  len(result.Plates),
	}
	if result.AnnotatedImage != "" {
		data["annotated_image"] = result.AnnotatedImage
	}
	c.JSON(http.StatusOK, api.APIResponse{
		Success: true,
		Task:    "license_plate_recognition",
		Message: fmt.Sprintf("%d枚のナンバープレートを認識しました", len(result.Plates)),
		Data:    data,
	})
}

// Status は認識サービスの状態を返します。常に200です。
//
// エンドポイント: GET /api/lpr/status
func (h *LPRHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, api.StatusResponse{
		Success: true,
		Data:    h.uc.Status(c.Request.Context()),
	})
}
