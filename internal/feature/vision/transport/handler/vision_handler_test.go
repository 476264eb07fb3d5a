package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sceneentity "vision_backend/internal/feature/scene/domain/entity"
	"vision_backend/internal/feature/vision/domain/entity"
	"vision_backend/internal/feature/vision/usecase"
)

// mockVisionUsecase はVisionUsecaseのテスト用実装です。
type mockVisionUsecase struct {
	detectFn   func(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.DetectResult, error)
	classifyFn func(ctx context.Context, img image.Image, opts usecase.ClassifyOptions) (*usecase.ClassifyResult, error)
	poseFn     func(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.PoseResult, error)
	segmentFn  func(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.SegmentResult, error)
}

func (m *mockVisionUsecase) Detect(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.DetectResult, error) {
	return m.detectFn(ctx, img, opts)
}

func (m *mockVisionUsecase) Classify(ctx context.Context, img image.Image, opts usecase.ClassifyOptions) (*usecase.ClassifyResult, error) {
	return m.classifyFn(ctx, img, opts)
}

func (m *mockVisionUsecase) Pose(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.PoseResult, error) {
	return m.poseFn(ctx, img, opts)
}

func (m *mockVisionUsecase) Segment(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.SegmentResult, error) {
	return m.segmentFn(ctx, img, opts)
}

// testImageBase64 はデコード可能な十分に長いBase64 PNGを返します。
func testImageBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func performJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func setupVisionRouter(mock *mockVisionUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewVisionHandler(mock)
	r := gin.New()
	r.POST("/api/detect", h.Detect)
	r.POST("/api/classify", h.Classify)
	r.POST("/api/pose", h.Pose)
	r.POST("/api/segment", h.Segment)
	return r
}

func TestVisionHandler_Detect(t *testing.T) {
	imageB64 := testImageBase64(t)

	tests := []struct {
		name       string
		body       any
		detectFn   func(ctx context.Context, img image.Image, opts usecase.DetectOptions) (*usecase.DetectResult, error)
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name: "正常系: デフォルトパラメータで検出結果を返す",
			body: gin.H{"image_base64": imageB64},
			detectFn: func(_ context.Context, _ image.Image, opts usecase.DetectOptions) (*usecase.DetectResult, error) {
				assert.Equal(t, usecase.DefaultConf, opts.Conf)
				assert.Equal(t, usecase.DefaultIoU, opts.IoU)
				assert.True(t, opts.ReturnImage)
				return &usecase.DetectResult{
					Detections: []entity.Detection{
						{ClassID: 16, ClassName: "dog", Confidence: 0.92, BBox: entity.BBox{X1: 1, Y1: 2, X2: 30, Y2: 31}},
					},
					AnnotatedImage: "annotated",
				}, nil
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, "detection", body["task"])
				data := body["data"].(map[string]any)
				assert.Equal(t, float64(1), data["count"])
				assert.Equal(t, "annotated", data["annotated_image"])
			},
		},
		{
			name: "正常系: return_image=falseでは画像を含めない",
			body: gin.H{"image_base64": imageB64, "return_image": false, "conf": 0.5},
			detectFn: func(_ context.Context, _ image.Image, opts usecase.DetectOptions) (*usecase.DetectResult, error) {
				assert.Equal(t, 0.5, opts.Conf)
				assert.False(t, opts.ReturnImage)
				return &usecase.DetectResult{Detections: []entity.Detection{}}, nil
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				data := body["data"].(map[string]any)
				assert.NotContains(t, data, "annotated_image")
				assert.Equal(t, float64(0), data["count"])
			},
		},
		{
			name:       "異常系: image_base64欠落で400",
			body:       gin.H{"conf": 0.5},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "異常系: 不正なBase64で400",
			body:       gin.H{"image_base64": "this is definitely not a valid base64 image payload but it is long enough to pass the minimum length check ok????"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "異常系: パラメータ範囲外で400",
			body: gin.H{"image_base64": imageB64, "conf": 1.5},
			detectFn: func(_ context.Context, _ image.Image, opts usecase.DetectOptions) (*usecase.DetectResult, error) {
				return usecase.NewVisionUsecase(nil).Detect(context.Background(), nil, opts)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "異常系: ランナー失敗で502",
			body: gin.H{"image_base64": imageB64},
			detectFn: func(context.Context, image.Image, usecase.DetectOptions) (*usecase.DetectResult, error) {
				return nil, errors.New("推論サーバーに接続できません")
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupVisionRouter(&mockVisionUsecase{detectFn: tt.detectFn})
			w := performJSON(t, r, "/api/detect", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.check != nil {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				tt.check(t, body)
			}
		})
	}
}

func TestVisionHandler_Classify(t *testing.T) {
	imageB64 := testImageBase64(t)

	t.Run("正常系: シーン分析付きで返す", func(t *testing.T) {
		mock := &mockVisionUsecase{
			classifyFn: func(_ context.Context, _ image.Image, opts usecase.ClassifyOptions) (*usecase.ClassifyResult, error) {
				assert.True(t, opts.AnalyzeScene)
				assert.Equal(t, usecase.DefaultTopK, opts.TopK)
				return &usecase.ClassifyResult{
					Classifications: []entity.Classification{
						{ClassID: 1, ClassName: "golden retriever", ClassNameJA: "golden retriever", Confidence: 0.88},
					},
					SceneAnalysis: &sceneentity.SceneAnalysis{
						PrimaryScene: sceneentity.PrimaryScene{Type: "animal", Name: "動物", Confidence: 0.88},
					},
					DetectedObjects: []sceneentity.DetectionItem{{ClassName: "dog", Confidence: 0.9}},
				}, nil
			},
		}
		r := setupVisionRouter(mock)
		w := performJSON(t, r, "/api/classify", gin.H{"image_base64": imageB64})

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "classification", body["task"])
		assert.Contains(t, body["message"], "動物")
		data := body["data"].(map[string]any)
		assert.Contains(t, data, "scene_analysis")
		assert.Contains(t, data, "detected_objects")
	})

	t.Run("正常系: analyze_scene=falseではシーン分析を含めない", func(t *testing.T) {
		mock := &mockVisionUsecase{
			classifyFn: func(_ context.Context, _ image.Image, opts usecase.ClassifyOptions) (*usecase.ClassifyResult, error) {
				assert.False(t, opts.AnalyzeScene)
				return &usecase.ClassifyResult{
					Classifications: []entity.Classification{
						{ClassName: "cat", ClassNameJA: "猫", Confidence: 0.7},
					},
				}, nil
			},
		}
		r := setupVisionRouter(mock)
		w := performJSON(t, r, "/api/classify", gin.H{"image_base64": imageB64, "analyze_scene": false, "top_k": 3})

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		data := body["data"].(map[string]any)
		assert.NotContains(t, data, "scene_analysis")
		assert.NotContains(t, data, "detected_objects")
	})

	t.Run("異常系: ランナー失敗で502", func(t *testing.T) {
		mock := &mockVisionUsecase{
			classifyFn: func(context.Context, image.Image, usecase.ClassifyOptions) (*usecase.ClassifyResult, error) {
				return nil, errors.New("model runner classify failed")
			},
		}
		r := setupVisionRouter(mock)
		w := performJSON(t, r, "/api/classify", gin.H{"image_base64": imageB64})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestVisionHandler_Pose(t *testing.T) {
	imageB64 := testImageBase64(t)

	mock := &mockVisionUsecase{
		poseFn: func(_ context.Context, _ image.Image, opts usecase.DetectOptions) (*usecase.PoseResult, error) {
			return &usecase.PoseResult{
				Poses: []entity.Pose{
					{PersonID: 0, BBox: &entity.BBox{X2: 10, Y2: 10}, Keypoints: []entity.Keypoint{{Name: "nose", X: 5, Y: 2, Confidence: 0.9}}},
					{PersonID: 1, Keypoints: []entity.Keypoint{}},
				},
			}, nil
		},
	}
	r := setupVisionRouter(mock)
	w := performJSON(t, r, "/api/pose", gin.H{"image_base64": imageB64})

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "pose_estimation", body["task"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["count"])
}

func TestVisionHandler_Segment(t *testing.T) {
	imageB64 := testImageBase64(t)

	mock := &mockVisionUsecase{
		segmentFn: func(_ context.Context, _ image.Image, opts usecase.DetectOptions) (*usecase.SegmentResult, error) {
			return &usecase.SegmentResult{
				Segments: []entity.Segment{
					{ClassName: "car", Confidence: 0.8, BBox: entity.BBox{X2: 20, Y2: 20}},
				},
			}, nil
		},
	}
	r := setupVisionRouter(mock)
	w := performJSON(t, r, "/api/segment", gin.H{"image_base64": imageB64})

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "segmentation", body["task"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])
}
