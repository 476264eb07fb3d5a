// Package handler は百度AI連携のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vision_backend/internal/api"
	"vision_backend/internal/feature/baidu/domain/entity"
	"vision_backend/internal/feature/baidu/usecase"
	"vision_backend/internal/platform/imaging"
)

// BaiduUsecase は百度AI連携のユースケースインターフェースを定義します。
type BaiduUsecase interface {
	Classify(ctx context.Context, imageBase64 string) (*entity.ClassifyResult, error)
	Detect(ctx context.Context, imageBase64 string) (*entity.DetectResult, error)
	Face(ctx context.Context, imageBase64 string) (*entity.FaceResult, error)
	Car(ctx context.Context, imageBase64 string) (*entity.CarResult, error)
	Formula(ctx context.Context, imageBase64 string) (*entity.FormulaResult, error)
	DictPen(ctx context.Context, imageBase64 string) (*entity.DictPenResult, error)
	Homework(ctx context.Context, imageBase64 string) (*entity.HomeworkResult, error)
	QuestionSegment(ctx context.Context, imageBase64 string) (*entity.QuestionSegmentResult, error)
	ImageSearch(ctx context.Context, searchType, imageBase64 string) (*entity.ImageSearchResult, error)
	ImageAdd(ctx context.Context, searchType, imageBase64, brief string) (*entity.ImageAddResult, error)
	ImageDelete(ctx context.Context, searchType, contSign string) (*entity.ImageDeleteResult, error)
	Status() entity.Status
	FreeStatus() entity.FreeStatus
}

// BaiduHandler は百度AI連携のHTTPリクエストを処理します。
type BaiduHandler struct {
	uc BaiduUsecase
}

// NewBaiduHandler はBaiduHandlerの新しいインスタンスを生成します。
func NewBaiduHandler(uc BaiduUsecase) *BaiduHandler {
	return &BaiduHandler{uc: uc}
}

// detectRequest は/api/baidu/detectのリクエストボディです。
type detectRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	APIType     string `json:"api_type" binding:"required"`
}

// ocrRequest は/api/baidu-free/ocrのリクエストボディです。
type ocrRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	APIType     string `json:"api_type" binding:"required"`
}

// imageSearchRequest は/api/baidu-free/image-search系のリクエストボディです。
type imageSearchRequest struct {
	ImageBase64 string `json:"image_base64"`
	SearchType  string `json:"search_type"`
	Brief       string `json:"brief"`
	ContSign    string `json:"cont_sign"`
}

// writeVendorError はベンダーエラーをHTTPステータスへ変換します。
// 認証情報未設定は500、ベンダー側の失敗は502です。
func writeVendorError(c *gin.Context, prefix string, err error) {
	slog.Error("百度APIの呼び出しに失敗", "error", err)
	status := http.StatusBadGateway
	if errors.Is(err, usecase.ErrNotConfigured) {
		status = http.StatusInternalServerError
	}
	c.JSON(status, api.ErrorResponse{Error: fmt.Sprintf("%s: %v", prefix, err)})
}

// Detect は有料版の画像認識（classify/detect/face/car）を実行します。
//
// エンドポイント: POST /api/baidu/detect
func (h *BaiduHandler) Detect(c *gin.Context) {
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
	case "classify":
		result, err := h.uc.Classify(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "百度AI画像分類に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "baidu_classify",
			Message: fmt.Sprintf("百度AI画像分類完了、%d件を認識しました", len(result.Items)),
			Data: gin.H{
				"items":  result.Items,
				"count":  len(result.Items),
				"log_id": result.LogID,
				"source": "baidu_ai",
			},
		})

	case "detect":
		result, err := h.uc.Detect(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "百度AI物体検出に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "baidu_detect",
			Message: fmt.Sprintf("百度AI物体検出完了、%d件を検出しました", len(result.Objects)),
			Data: gin.H{
				"objects": result.Objects,
				"count":   len(result.Objects),
				"log_id":  result.LogID,
				"source":  "baidu_ai",
			},
		})

	case "face":
		result, err := h.uc.Face(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "百度AI顔検出に失敗しました", err)
			return
		}
		message := fmt.Sprintf("百度AI顔検出完了、%d件の顔を検出しました", len(result.Faces))
		if len(result.Faces) == 0 {
			message = "顔は検出されませんでした"
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "baidu_face",
			Message: message,
			Data: gin.H{
				"faces":  result.Faces,
				"count":  len(result.Faces),
				"log_id": result.LogID,
				"source": "baidu_ai",
			},
		})

	case "car":
		result, err := h.uc.Car(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "百度AI車種認識に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "baidu_car",
			Message: fmt.Sprintf("百度AI車種認識完了、%d件を認識しました", len(result.Cars)),
			Data: gin.H{
				"cars":         result.Cars,
				"count":        len(result.Cars),
				"color_result": result.ColorResult,
				"log_id":       result.LogID,
				"source":       "baidu_ai",
			},
		})

	default:
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("未対応のAPI種別です: %s", req.APIType)})
	}
}

// OCR は無料版のOCR（formula/dict_pen/homework/question_segment）を実行します。
//
// エンドポイント: POST /api/baidu-free/ocr
func (h *BaiduHandler) OCR(c *gin.Context) {
	var req ocrRequest
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
	case "formula":
		result, err := h.uc.Formula(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "数式認識に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "formula_recognition",
			Message: fmt.Sprintf("数式認識完了、%d件の数式を認識しました", len(result.Formulas)),
			Data: gin.H{
				"formulas": result.Formulas,
				"count":    len(result.Formulas),
				"log_id":   result.LogID,
			},
		})

	case "dict_pen":
		result, err := h.uc.DictPen(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "文字認識に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "dict_pen_ocr",
			Message: fmt.Sprintf("文字認識完了、%d行を認識しました", len(result.WordsResult)),
			Data: gin.H{
				"words_result":     result.WordsResult,
				"words_result_num": len(result.WordsResult),
				"log_id":           result.LogID,
			},
		})

	case "homework":
		result, err := h.uc.Homework(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "宿題認識に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "homework_correction",
			Message: fmt.Sprintf("宿題認識完了、%d行を認識しました", len(result.Questions)),
			Data:    result,
		})

	case "question_segment":
		result, err := h.uc.QuestionSegment(ctx, imageBase64)
		if err != nil {
			writeVendorError(c, "設問切り分けに失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Success: true,
			Task:    "question_segment",
			Message: fmt.Sprintf("設問切り分け完了、%d問を認識しました", len(result.Questions)),
			Data: gin.H{
				"questions": result.Questions,
				"count":     len(result.Questions),
				"log_id":    result.LogID,
			},
		})

	default:
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("未対応のAPI種別です: %s", req.APIType)})
	}
}

// ImageSearch は画像検索を実行します。
//
// エンドポイント: POST /api/baidu-free/image-search
func (h *BaiduHandler) ImageSearch(c *gin.Context) {
	var req imageSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ImageBase64 == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image_base64が必要です"})
		return
	}

	imageBase64, err := imaging.StripBase64Prefix(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("画像データを読み取れません: %v", err)})
		return
	}

	result, err := h.uc.ImageSearch(c.Request.Context(), searchTypeOrDefault(req.SearchType), imageBase64)
	if err != nil {
		writeVendorError(c, "画像検索に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, api.APIResponse{
		Success: true,
		Task:    "image_search",
		Message: fmt.Sprintf("画像検索完了、%d件が見つかりました", len(result.Results)),
		Data: gin.H{
			"result":     result.Results,
			"result_num": len(result.Results),
			"log_id":     result.LogID,
		},
	})
}

// ImageAdd は画像をライブラリへ登録します。
//
// エンドポイント: POST /api/baidu-free/image-search/add
func (h *BaiduHandler) ImageAdd(c *gin.Context) {
	var req imageSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ImageBase64 == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image_base64が必要です"})
		return
	}

	imageBase64, err := imaging.StripBase64Prefix(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("画像データを読み取れません: %v", err)})
		return
	}

	result, err := h.uc.ImageAdd(c.Request.Context(), searchTypeOrDefault(req.SearchType), imageBase64, req.Brief)
	if err != nil {
		writeVendorError(c, "画像の登録に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, api.APIResponse{
		Success: true,
		Task:    "image_add",
		Message: "画像をライブラリに登録しました",
		Data: gin.H{
			"cont_sign": result.ContSign,
			"log_id":    result.LogID,
		},
	})
}

// ImageDelete は画像をライブラリから削除します。
//
// エンドポイント: POST /api/baidu-free/image-search/delete
func (h *BaiduHandler) ImageDelete(c *gin.Context) {
	var req imageSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ContSign == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "cont_signが必要です"})
		return
	}

	result, err := h.uc.ImageDelete(c.Request.Context(), searchTypeOrDefault(req.SearchType), req.ContSign)
	if err != nil {
		writeVendorError(c, "画像の削除に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, api.APIResponse{
		Success: true,
		Task:    "image_delete",
		Message: "画像をライブラリから削除しました",
		Data:    gin.H{"log_id": result.LogID},
	})
}

// Status は有料版APIの設定状態を返します。常に200です。
//
// エンドポイント: GET /api/baidu/status
func (h *BaiduHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, api.StatusResponse{Success: true, Data: h.uc.Status()})
}

// FreeStatus は無料版APIの設定状態を返します。常に200です。
//
// エンドポイント: GET /api/baidu-free/status
func (h *BaiduHandler) FreeStatus(c *gin.Context) {
	c.JSON(http.StatusOK, api.StatusResponse{Success: true, Data: h.uc.FreeStatus()})
}

// searchTypeOrDefault は検索種別の既定値"same"を適用します。
func searchTypeOrDefault(t string) string {
	if t == "" {
		return "same"
	}
	return t
}
