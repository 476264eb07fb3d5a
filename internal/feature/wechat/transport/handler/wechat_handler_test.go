package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vision_backend/internal/feature/wechat/domain/entity"
	"vision_backend/internal/feature/wechat/usecase"
)

type mockWeChatUsecase struct {
	signatureFn func(ctx context.Context, pageURL string) (*entity.Signature, error)
	voiceFn     func(ctx context.Context, serverID string) (*entity.Voice, error)
	status      entity.Status
}

func (m *mockWeChatUsecase) Signature(ctx context.Context, pageURL string) (*entity.Signature, error) {
	return m.signatureFn(ctx, pageURL)
}

func (m *mockWeChatUsecase) VoiceDownload(ctx context.Context, serverID string) (*entity.Voice, error) {
	return m.voiceFn(ctx, serverID)
}

func (m *mockWeChatUsecase) Status() entity.Status {
	return m.status
}

func setupRouter(mock *mockWeChatUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWeChatHandler(mock)
	r := gin.New()
	r.POST("/api/wechat/signature", h.Signature)
	r.POST("/api/wechat/voice/download", h.VoiceDownload)
	r.GET("/api/wechat/status", h.Status)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWeChatHandler_Signature(t *testing.T) {
	t.Run("正常系: 署名パラメータを返す", func(t *testing.T) {
		mock := &mockWeChatUsecase{
			signatureFn: func(_ context.Context, pageURL string) (*entity.Signature, error) {
				assert.Equal(t, "https://example.com/scan", pageURL)
				return &entity.Signature{
					AppID:     "wx1234567890abcdef",
					Timestamp: 1700000000,
					NonceStr:  "fixednonce123456",
					Signature: "deadbeef",
				}, nil
			},
		}
		w := postJSON(t, setupRouter(mock), "/api/wechat/signature", gin.H{"url": "https://example.com/scan"})

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		data := resp["data"].(map[string]any)
		assert.Equal(t, "wx1234567890abcdef", data["appId"])
		assert.Equal(t, "fixednonce123456", data["nonceStr"])
		assert.Equal(t, "deadbeef", data["signature"])
	})

	t.Run("異常系: url欠落で400", func(t *testing.T) {
		w := postJSON(t, setupRouter(&mockWeChatUsecase{}), "/api/wechat/signature", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("異常系: 未設定で500", func(t *testing.T) {
		mock := &mockWeChatUsecase{
			signatureFn: func(context.Context, string) (*entity.Signature, error) {
				return nil, usecase.ErrNotConfigured
			},
		}
		w := postJSON(t, setupRouter(mock), "/api/wechat/signature", gin.H{"url": "https://example.com"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("異常系: ベンダー失敗で502", func(t *testing.T) {
		mock := &mockWeChatUsecase{
			signatureFn: func(context.Context, string) (*entity.Signature, error) {
				return nil, errors.New("ticket fetch failed")
			},
		}
		w := postJSON(t, setupRouter(mock), "/api/wechat/signature", gin.H{"url": "https://example.com"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestWeChatHandler_VoiceDownload(t *testing.T) {
	t.Run("正常系: AMR音声を返す", func(t *testing.T) {
		mock := &mockWeChatUsecase{
			voiceFn: func(_ context.Context, serverID string) (*entity.Voice, error) {
				assert.Equal(t, "media-1", serverID)
				return &entity.Voice{Format: "amr", Audio: "IyFBTVI="}, nil
			},
		}
		w := postJSON(t, setupRouter(mock), "/api/wechat/voice/download", gin.H{"server_id": "media-1"})

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]any)
		assert.Equal(t, "amr", data["format"])
		assert.Equal(t, "IyFBTVI=", data["audio"])
	})

	t.Run("異常系: server_id欠落で400", func(t *testing.T) {
		w := postJSON(t, setupRouter(&mockWeChatUsecase{}), "/api/wechat/voice/download", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("異常系: ダウンロード失敗で502", func(t *testing.T) {
		mock := &mockWeChatUsecase{
			voiceFn: func(context.Context, string) (*entity.Voice, error) {
				return nil, errors.New("invalid media_id")
			},
		}
		w := postJSON(t, setupRouter(mock), "/api/wechat/voice/download", gin.H{"server_id": "bad"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestWeChatHandler_Status(t *testing.T) {
	mock := &mockWeChatUsecase{
		status: entity.Status{Configured: true, AppID: "wx123456***"},
	}
	r := setupRouter(mock)

	req := httptest.NewRequest(http.MethodGet, "/api/wechat/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, true, data["configured"])
	assert.Equal(t, "wx123456***", data["app_id"])
}
