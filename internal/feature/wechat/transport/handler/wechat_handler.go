// Package handler は微信公众号連携のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vision_backend/internal/api"
	"vision_backend/internal/feature/wechat/domain/entity"
	"vision_backend/internal/feature/wechat/usecase"
)

// WeChatUsecase は微信公众号連携のユースケースインターフェースを定義します。
type WeChatUsecase interface {
	Signature(ctx context.Context, pageURL string) (*entity.Signature, error)
	VoiceDownload(ctx context.Context, serverID string) (*entity.Voice, error)
	Status() entity.Status
}

// WeChatHandler は微信公众号連携のHTTPリクエストを処理します。
type WeChatHandler struct {
	uc WeChatUsecase
}

// NewWeChatHandler はWeChatHandlerの新しいインスタンスを生成します。
func NewWeChatHandler(uc WeChatUsecase) *WeChatHandler {
	return &WeChatHandler{uc: uc}
}

// signatureRequest は/api/wechat/signatureのリクエストボディです。
// URLは#以降を含めない現在ページのURLです。
type signatureRequest struct {
	URL string `json:"url" binding:"required"`
}

// voiceDownloadRequest は/api/wechat/voice/downloadのリクエストボディです。
type voiceDownloadRequest struct {
	ServerID string `json:"server_id" binding:"required"`
}

// writeVendorError はベンダーエラーをHTTPステータスへ変換します。
// 認証情報未設定は500、ベンダー側の失敗は502です。
func writeVendorError(c *gin.Context, prefix string, err error) {
	slog.Error("微信APIの呼び出しに失敗", "error", err)
	status := http.StatusBadGateway
	if errors.Is(err, usecase.ErrNotConfigured) {
		status = http.StatusInternalServerError
	}
	c.JSON(status, api.ErrorResponse{Error: fmt.Sprintf("%s: %v", prefix, err)})
}

// Signature はJS-SDK署名パラメータを返します。
//
// エンドポイント: POST /api/wechat/signature
func (h *WeChatHandler) Signature(c *gin.Context) {
	var req signatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "urlが必要です"})
		return
	}

	sig, err := h.uc.Signature(c.Request.Context(), req.URL)
	if err != nil {
		writeVendorError(c, "微信署名の生成に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, api.StatusResponse{Success: true, Data: sig})
}

// VoiceDownload は微信サーバーから音声ファイルを取得します。
//
// エンドポイント: POST /api/wechat/voice/download
func (h *WeChatHandler) VoiceDownload(c *gin.Context) {
	var req voiceDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "server_idが必要です"})
		return
	}

	voice, err := h.uc.VoiceDownload(c.Request.Context(), req.ServerID)
	if err != nil {
		writeVendorError(c, "音声のダウンロードに失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, api.StatusResponse{Success: true, Data: voice})
}

// Status は微信公众号APIの設定状態を返します。常に200です。
//
// エンドポイント: GET /api/wechat/status
func (h *WeChatHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, api.StatusResponse{Success: true, Data: h.uc.Status()})
}
