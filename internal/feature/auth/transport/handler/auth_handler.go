// Package handler は管理者認証のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vision_backend/internal/api"
	"vision_backend/internal/feature/auth/usecase"
)

// AuthUsecase は管理者認証のユースケースインターフェースを定義します。
type AuthUsecase interface {
	Login(ctx context.Context, password string) (string, error)
}

// AuthHandler は管理者認証のHTTPリクエストを処理します。
type AuthHandler struct {
	uc AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(uc AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// loginRequest は/api/loginのリクエストボディです。
type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login は管理者パスワードを検証しJWTトークンを発行します。
//
// エンドポイント: POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "passwordが必要です"})
		return
	}

	token, err := h.uc.Login(c.Request.Context(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "パスワードが正しくありません"})
		case errors.Is(err, usecase.ErrNotConfigured):
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "管理者パスワードが設定されていません"})
		default:
			slog.Error("ログイン処理に失敗", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "ログインに失敗しました"})
		}
		return
	}

	c.JSON(http.StatusOK, api.StatusResponse{Success: true, Data: gin.H{"token": token}})
}
