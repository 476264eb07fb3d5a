// Package handler はテンセントクラウド連携のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vision_backend/internal/api"
	"vision_backend/internal/feature/tencent/domain/entity"
	"vision_backend/internal/feature/tencent/usecase"
	"vision_backend/internal/platform/imaging"
)

// TencentUsecase はテンセントクラウド連携のユースケースインターフェースを定義します。
type TencentUsecase interface {
	Detect(ctx context.Context, imageBase64 string) ([]entity.DetectLabel, error)
	Label(ctx context.Context, imageBase64 string) ([]entity.ProLabel, error)
	Car(ctx context.Context, imageBase64 string) ([]entity.Car, error)
	Status() entity.Status
}

// TencentHandler はテンセントクラウド連携のHTTPリクエストを処理します。
type TencentHandler struct {
	uc TencentUsecase
}

// NewTencentHandler はTencentHandlerの新しいインスタンスを生成します。
func NewTencentHandler(uc TencentUsecase) *TencentHandler {
	return &TencentHandler{uc: uc}
}

// detectRequest は/api/tencent/detectのリクエストボディです。
type detectRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	APIType     string `json:"api_type" binding:"required"`
}

// writeVendorError はベンダーエラーをHTTPステータスへ変換します。
// 認証情報未設定は500、ベンダー側の失敗は502です。
func writeVendorError(c *gin.Context, prefix string, err error) {
	slog.Error("テンセントクラウドAPIの呼び出しに失敗", "error", err)
	status := http.StatusBadGateway
	if errors.Is(err, usecase.ErrNotConfigured) {
		status = http.StatusInternalServerError
	}
	c.JSON(status, api.ErrorResponse{Error: fmt.Sprintf("%s: %v", prefix, err)})
}

// Detect は画像分析（detect/label/car）を実行します。
//
// エンドポイント: POST /api/tencent/detect
func (h *TencentHandler) Detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image_base64とapi_typeが必要です"})
		return
	}

	imageBase64, err := imaging.StripBase64Prefix(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("画像データを読み取れません: %v", err)})
		return
	}

	ctx := c.Request.Context()
	switch req.APIType {
	case "detect":
		labels, err := h.uc.Detect(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "テンセントラベル検出に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "tencent_detect",
			Message: fmt.Sprintf("テンセントラベル検出完了、%d件を認識しました", len(labels)),
			Data: gin.H{
				"labels": labels,
				"count":  len(labels),
				"source": "tencent_cloud",
			},
		})

	case "label":
		labels, err := h.uc.Label(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "テンセント高精度ラベル検出に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "tencent_label",
			Message: fmt.Sprintf("テンセント高精度ラベル検出完了、%d件を認識しました", len(labels)),
			Data: gin.H{
				"labels": labels,
				"count":  len(labels),
				"source": "tencent_cloud",
			},
		})

	case "car":
		cars, err := h.uc.Car(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "テンセント車両認識に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "tencent_car",
			Message: fmt.Sprintf("テンセント車両認識完了、%d台を検出しました", len(cars)),
			Data: gin.H{
				"cars":   cars,
				"count":  len(cars),
				"source": "tencent_cloud",
			},
		})

	default:
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("未対応のAPI種別です: %s", req.APIType)})
	}
}

// Status はテンセントクラウドAPIの設定状態を返します。常に200です。
//
// エンドポイント: GET /api/tencent/status
func (h *TencentHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, api.StatusResponse{Success: true, Data: h.uc.Status()})
}
