package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vision_backend/internal/feature/usage/domain/entity"
)

type mockUsageUsecase struct {
	recorded  chan entity.Record
	summaryFn func(ctx context.Context) ([]entity.Counter, error)
}

func (m *mockUsageUsecase) Record(_ context.Context, record entity.Record) {
	if m.recorded != nil {
		m.recorded <- record
	}
}

func (m *mockUsageUsecase) Summary(ctx context.Context) ([]entity.Counter, error) {
	return m.summaryFn(ctx)
}

func TestUsageHandler_Summary(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("正常系: 集計を返す", func(t *testing.T) {
		mock := &mockUsageUsecase{
			summaryFn: func(context.Context) ([]entity.Counter, error) {
				return []entity.Counter{
					{Task: "detect", Vendor: "local_model", Total: 3, Succeeded: 2, AvgDurationMS: 200},
				}, nil
			},
		}
		r := gin.New()
		r.GET("/api/usage", NewUsageHandler(mock).Summary)

		req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]any)
		assert.Equal(t, float64(1), data["count"])
		counters := data["counters"].([]any)
		assert.Equal(t, "detect", counters[0].(map[string]any)["task"])
	})

	t.Run("異常系: 集計失敗で500", func(t *testing.T) {
		mock := &mockUsageUsecase{
			summaryFn: func(context.Context) ([]entity.Counter, error) {
				return nil, errors.New("db down")
			},
		}
		r := gin.New()
		r.GET("/api/usage", NewUsageHandler(mock).Summary)

		req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestTaskForPath(t *testing.T) {
	tests := []struct {
		path   string
		task   string
		vendor string
	}{
		{"/api/detect", "detect", "local_model"},
		{"/api/baidu/detect", "baidu_detect", "baidu"},
		{"/api/baidu-free/ocr", "baidu_free_ocr", "baidu_free"},
		{"/api/tencent/detect", "tencent_detect", "tencent"},
		{"/api/wechat/voice/download", "wechat_voice_download", "wechat"},
		{"/api/lpr", "lpr", "hyperlpr"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			task, vendor := taskForPath(tt.path)
			assert.Equal(t, tt.task, task)
			assert.Equal(t, tt.vendor, vendor)
		})
	}
}

func waitForRecord(t *testing.T, ch chan entity.Record) entity.Record {
	t.Helper()
	select {
	case record := <-ch:
		return record
	case <-time.After(2 * time.Second):
		t.Fatal("記録が届きませんでした")
		return entity.Record{}
	}
}

func TestRecordingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("POST呼び出しを記録する", func(t *testing.T) {
		mock := &mockUsageUsecase{recorded: make(chan entity.Record, 1)}
		r := gin.New()
		r.Use(RecordingMiddleware(mock))
		r.POST("/api/tencent/detect", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		req := httptest.NewRequest(http.MethodPost, "/api/tencent/detect", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		record := waitForRecord(t, mock.recorded)
		assert.Equal(t, "tencent_detect", record.Task)
		assert.Equal(t, "tencent", record.Vendor)
		assert.True(t, record.Success)
	})

	t.Run("エラー応答はsuccess=falseで記録する", func(t *testing.T) {
		mock := &mockUsageUsecase{recorded: make(chan entity.Record, 1)}
		r := gin.New()
		r.Use(RecordingMiddleware(mock))
		r.POST("/api/detect", func(c *gin.Context) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "vendor down"})
		})

		req := httptest.NewRequest(http.MethodPost, "/api/detect", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		record := waitForRecord(t, mock.recorded)
		assert.False(t, record.Success)
	})

	t.Run("GETと/api/loginは記録しない", func(t *testing.T) {
		mock := &mockUsageUsecase{recorded: make(chan entity.Record, 2)}
		r := gin.New()
		r.Use(RecordingMiddleware(mock))
		r.GET("/api/tencent/status", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.POST("/api/login", func(c *gin.Context) { c.Status(http.StatusOK) })

		for _, req := range []*http.Request{
			httptest.NewRequest(http.MethodGet, "/api/tencent/status", nil),
			httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{}`)),
		} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
		}

		select {
		case record := <-mock.recorded:
			t.Errorf("予期しない記録: %+v", record)
		case <-time.After(100 * time.Millisecond):
		}
	})
}
