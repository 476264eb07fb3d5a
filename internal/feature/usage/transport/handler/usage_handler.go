// Package handler は利用実績のHTTPハンドラーと記録ミドルウェアを提供します。
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vision_backend/internal/api"
	"vision_backend/internal/feature/usage/domain/entity"
)

// UsageUsecase は利用実績のユースケースインターフェースを定義します。
type UsageUsecase interface {
	Record(ctx context.Context, record entity.Record)
	Summary(ctx context.Context) ([]entity.Counter, error)
}

// UsageHandler は利用実績のHTTPリクエストを処理します。
type UsageHandler struct {
	uc UsageUsecase
}

// NewUsageHandler はUsageHandlerの新しいインスタンスを生成します。
func NewUsageHandler(uc UsageUsecase) *UsageHandler {
	return &UsageHandler{uc: uc}
}

// Summary はタスク単位の利用集計を返します。管理者専用です。
//
// エンドポイント: GET /api/usage
func (h *UsageHandler) Summary(c *gin.Context) {
	counters, err := h.uc.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fmt.Sprintf("利用実績の取得に失敗しました: %v", err)})
		return
	}
	c.JSON(http.StatusOK, api.StatusResponse{
		Success: true,
		Data:    gin.H{"counters": counters, "count": len(counters)},
	})
}

// vendorNames はパスの先頭セグメントからベンダー名を引きます。
var vendorNames = map[string]string{
	"baidu":      "baidu",
	"baidu-free": "baidu_free",
	"tencent":    "tencent",
	"wechat":     "wechat",
	"lpr":        "hyperlpr",
}

// taskForPath は/api/以下のパスからタスク名とベンダー名を導出します。
func taskForPath(path string) (task, vendor string) {
	trimmed := strings.TrimPrefix(path, "/api/")
	segments := strings.Split(trimmed, "/")
	vendor = "local_model"
	if v, ok := vendorNames[segments[0]]; ok {
		vendor = v
	}
	task = strings.ReplaceAll(strings.ReplaceAll(trimmed, "/", "_"), "-", "_")
	return task, vendor
}

// recordTimeout は記録用goroutineのタイムアウトです。
const recordTimeout = 5 * time.Second

// RecordingMiddleware は/api/以下のPOST呼び出しを記録するミドルウェアを返します。
// 記録は応答後に非同期で行い、リクエストの成否に影響しません。
func RecordingMiddleware(uc UsageUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodPost || !strings.HasPrefix(path, "/api/") || path == "/api/login" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		task, vendor := taskForPath(path)
		record := entity.Record{
			Task:       task,
			Vendor:     vendor,
			DurationMS: time.Since(start).Milliseconds(),
			Success:    c.Writer.Status() < http.StatusBadRequest,
			CreatedAt:  start,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			uc.Record(ctx, record)
		}()
	}
}
