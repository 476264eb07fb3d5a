package aip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"vision_backend/internal/feature/baidu/adapters/aip/dto"
	"vision_backend/internal/shared/ratelimiter"
)

// DefaultBaseURL は百度AIPの本番エンドポイントです。
const DefaultBaseURL = "https://aip.baidubce.com"

const (
	classifyPath     = "/rest/2.0/image-classify/v2/advanced_general"
	objectDetectPath = "/rest/2.0/image-classify/v1/object_detect"
	carDetectPath    = "/rest/2.0/image-classify/v1/car"
	faceDetectPath   = "/rest/2.0/face/v3/detect"

	formulaPath       = "/rest/2.0/ocr/v1/formula"
	docAnalysisPath   = "/rest/2.0/ocr/v1/doc_analysis"
	accurateBasicPath = "/rest/2.0/ocr/v1/accurate_basic"
	generalBasicPath  = "/rest/2.0/ocr/v1/general_basic"
)

// imageSearchPaths は画像検索の操作別・種別別パスです。
var imageSearchPaths = map[string]map[string]string{
	"search": {
		"same":    "/rest/2.0/realtime_search/same_hq/search",
		"similar": "/rest/2.0/image-classify/v1/realtime_search/similar/search",
		"product": "/rest/2.0/image-classify/v1/realtime_search/product/search",
	},
	"add": {
		"same":    "/rest/2.0/realtime_search/same_hq/add",
		"similar": "/rest/2.0/image-classify/v1/realtime_search/similar/add",
		"product": "/rest/2.0/image-classify/v1/realtime_search/product/add",
	},
	"delete": {
		"same":    "/rest/2.0/realtime_search/same_hq/delete",
		"similar": "/rest/2.0/image-classify/v1/realtime_search/similar/delete",
		"product": "/rest/2.0/image-classify/v1/realtime_search/product/delete",
	},
}

// APIError は百度AIPのerror_code/error_msgを表すエラーです。
type APIError struct {
	Code int64
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("baidu api error %d: %s", e.Code, e.Msg)
}

// Client は百度AIP REST APIへのフォームエンコードPOSTを実行します。
// 無料枠のQPS制限はリミッターで守ります。
type Client struct {
	baseURL string
	tokens  *TokenProvider
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface // nilの場合は制限なし
}

// NewClient はClientの新しいインスタンスを生成します。limiterはnil可です。
func NewClient(tokens *TokenProvider, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	return &Client{baseURL: DefaultBaseURL, tokens: tokens, client: client, limiter: limiter}
}

// WithBaseURL はエンドポイントの向き先を差し替えたClientを返します。テスト用です。
func (c *Client) WithBaseURL(baseURL string) *Client {
	clone := *c
	clone.baseURL = baseURL
	return &clone
}

// errorEnvelope はエラー検出用の共通フィールドです。
type errorEnvelope struct {
	ErrorCode int64  `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// postForm はアクセストークン付きのフォームPOSTを実行し、outへデコードします。
// error_codeが非ゼロの場合は*APIErrorを返します。
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	if c.limiter != nil {
		c.limiter.WaitIfNeeded()
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}

	u := c.baseURL + path + "?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("baidu request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("baidu http %d", res.StatusCode)
	}

	// エラー判定のため一度バッファに読みます。
	var raw json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return fmt.Errorf("decode baidu response: %w", err)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.ErrorCode != 0 {
		return &APIError{Code: envelope.ErrorCode, Msg: envelope.ErrorMsg}
	}
	return json.Unmarshal(raw, out)
}

// AdvancedGeneral は高精度汎用物体認識を実行します。
func (c *Client) AdvancedGeneral(ctx context.Context, imageBase64 string) (*dto.ClassifyResponse, error) {
	form := url.Values{"image": {imageBase64}, "baike_num": {"1"}}
	var body dto.ClassifyResponse
	if err := c.postForm(ctx, classifyPath, form, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// ObjectDetect は主体検出を実行します。
func (c *Client) ObjectDetect(ctx context.Context, imageBase64 string) (*dto.ObjectDetectResponse, error) {
	form := url.Values{"image": {imageBase64}}
	var body dto.ObjectDetectResponse
	if err := c.postForm(ctx, objectDetectPath, form, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// CarDetect は車種認識を実行します。
func (c *Client) CarDetect(ctx context.Context, imageBase64 string) (*dto.CarDetectResponse, error) {
	form := url.Values{"image": {imageBase64}, "baike_num": {"1"}}
	var body dto.CarDetectResponse
	if err := c.postForm(ctx, carDetectPath, form, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// FaceDetect は顔検出を実行します。取得する属性はfaceFieldで指定します。
func (c *Client) FaceDetect(ctx context.Context, imageBase64, faceField string, maxFaceNum int) (*dto.FaceDetectResponse, error) {
	form := url.Values{
		"image":            {imageBase64},
		"image_type":       {"BASE64"},
		"face_field":       {faceField},
		"max_face_num":     {fmt.Sprintf("%d", maxFaceNum)},
		"face_type":        {"LIVE"},
		"liveness_control": {"NONE"},
	}
	var body dto.FaceDetectResponse
	if err := c.postForm(ctx, faceDetectPath, form, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// Formula は数式OCRを実行します。
func (c *Client) Formula(ctx context.Context, imageBase64 string) (*dto.OCRWordsResponse, error) {
	return c.ocrWords(ctx, formulaPath, imageBase64)
}

// AccurateBasic は高精度の基本OCRを実行します。
func (c *Client) AccurateBasic(ctx context.Context, imageBase64 string) (*dto.OCRWordsResponse, error) {
	return c.ocrWords(ctx, accurateBasicPath, imageBase64)
}

// GeneralBasic は標準の基本OCRを実行します。
func (c *Client) GeneralBasic(ctx context.Context, imageBase64 string) (*dto.OCRWordsResponse, error) {
	return c.ocrWords(ctx, generalBasicPath, imageBase64)
}

func (c *Client) ocrWords(ctx context.Context, path, imageBase64 string) (*dto.OCRWordsResponse, error) {
	form := url.Values{"image": {imageBase64}}
	var body dto.OCRWordsResponse
	if err := c.postForm(ctx, path, form, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// DocAnalysis は文書解析OCRを実行します。
func (c *Client) DocAnalysis(ctx context.Context, imageBase64 string) (*dto.DocAnalysisResponse, error) {
	form := url.Values{"image": {imageBase64}}
	var body dto.DocAnalysisResponse
	if err := c.postForm(ctx, docAnalysisPath, form, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// searchPath は操作・検索種別の組み合わせからパスを解決します。
// 未知の種別は"same"にフォールバックします。
func searchPath(op, searchType string) string {
	paths := imageSearchPaths[op]
	if p, ok := paths[searchType]; ok {
		return p
	}
	return paths["same"]
}

// ImageSearch は登録済み画像ライブラリを検索します。
func (c *Client) ImageSearch(ctx context.Context, searchType, imageBase64 string) (*dto.ImageSearchResponse, error) {
	form := url.Values{"image": {imageBase64}}
	var body dto.ImageSearchResponse
	if err := c.postForm(ctx, searchPath("search", searchType), form, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// ImageAdd は画像をライブラリへ登録します。
func (c *Client) ImageAdd(ctx context.Context, searchType, imageBase64, brief string) (*dto.ImageAddResponse, error) {
	form := url.Values{"image": {imageBase64}, "brief": {brief}}
	var body dto.ImageAddResponse
	if err := c.postForm(ctx, searchPath("add", searchType), form, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// ImageDelete は画像をライブラリから削除します。
func (c *Client) ImageDelete(ctx context.Context, searchType, contSign string) (*dto.ImageDeleteResponse, error) {
	form := url.Values{"cont_sign": {contSign}}
	var body dto.ImageDeleteResponse
	if err := c.postForm(ctx, searchPath("delete", searchType), form, &body); err != nil {
		return nil, err
	}
	return &body, nil
}
