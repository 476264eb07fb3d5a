// Package usecase は百度AI連携（有料版・無料版）のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"vision_backend/internal/feature/baidu/adapters/aip"
	"vision_backend/internal/feature/baidu/adapters/aip/dto"
	"vision_backend/internal/feature/baidu/domain/entity"
)

// errNoFaceCode は「顔が検出されなかった」を表す百度のエラーコードです。
const errNoFaceCode = 222202

// faceField は顔検出で取得する属性の一覧です。
const faceField = "age,beauty,expression,face_shape,gender,glasses,landmark,landmark150,quality,eye_status,emotion,face_type,mask,spoofing"

const maxFaceNum = 10

// ImageClient は有料版の画像認識APIクライアントです。
type ImageClient interface {
	AdvancedGeneral(ctx context.Context, imageBase64 string) (*dto.ClassifyResponse, error)
	ObjectDetect(ctx context.Context, imageBase64 string) (*dto.ObjectDetectResponse, error)
	CarDetect(ctx context.Context, imageBase64 string) (*dto.CarDetectResponse, error)
}

// FaceClient は顔検出APIクライアントです。
type FaceClient interface {
	FaceDetect(ctx context.Context, imageBase64, faceField string, maxFaceNum int) (*dto.FaceDetectResponse, error)
}

// OCRClient は無料版のOCR APIクライアントです。
type OCRClient interface {
	Formula(ctx context.Context, imageBase64 string) (*dto.OCRWordsResponse, error)
	DocAnalysis(ctx context.Context, imageBase64 string) (*dto.DocAnalysisResponse, error)
	AccurateBasic(ctx context.Context, imageBase64 string) (*dto.OCRWordsResponse, error)
	GeneralBasic(ctx context.Context, imageBase64 string) (*dto.OCRWordsResponse, error)
}

// ImageSearchClient は画像検索APIクライアントです。
type ImageSearchClient interface {
	ImageSearch(ctx context.Context, searchType, imageBase64 string) (*dto.ImageSearchResponse, error)
	ImageAdd(ctx context.Context, searchType, imageBase64, brief string) (*dto.ImageAddResponse, error)
	ImageDelete(ctx context.Context, searchType, contSign string) (*dto.ImageDeleteResponse, error)
}

// ErrUnsupportedAPIType は未対応のapi_typeを示します。
var ErrUnsupportedAPIType = errors.New("unsupported api type")

// baiduUsecase は百度AI連携のオーケストレーションを提供します。
// クライアントは未設定の場合nilです。
type baiduUsecase struct {
	image       ImageClient
	face        FaceClient
	ocr         OCRClient
	imageSearch ImageSearchClient
}

// NewBaiduUsecase はbaiduUsecaseの新しいインスタンスを生成します。
func NewBaiduUsecase(image ImageClient, face FaceClient, ocr OCRClient, imageSearch ImageSearchClient) *baiduUsecase {
	return &baiduUsecase{image: image, face: face, ocr: ocr, imageSearch: imageSearch}
}

// ErrNotConfigured は対象APIの認証情報が未設定であることを示します。
var ErrNotConfigured = errors.New("api credentials not configured")

// Classify は高精度汎用物体認識の結果を整形して返します。
func (u *baiduUsecase) Classify(ctx context.Context, imageBase64 string) (*entity.ClassifyResult, error) {
	if u.image == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.image.AdvancedGeneral(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	items := make([]entity.ClassifyItem, 0, len(res.Result))
	for _, item := range res.Result {
		e := entity.ClassifyItem{
			Name:       item.Keyword,
			Confidence: item.Score,
			Root:       item.Root,
		}
		if item.BaikeInfo != nil {
			e.BaikeURL = item.BaikeInfo.BaikeURL
			e.Description = item.BaikeInfo.Description
		}
		items = append(items, e)
	}
	return &entity.ClassifyResult{Items: items, LogID: res.LogID}, nil
}

// Detect は主体検出の結果を返します。主体が見つかった場合は1件のbboxになります。
func (u *baiduUsecase) Detect(ctx context.Context, imageBase64 string) (*entity.DetectResult, error) {
	if u.image == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.image.ObjectDetect(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	objects := []entity.DetectObject{}
	if res.Result != nil {
		objects = append(objects, entity.DetectObject{
			Name:       "主要被写体",
			Confidence: 1.0,
			BBox: entity.BBox{
				X1: float64(res.Result.Left),
				Y1: float64(res.Result.Top),
				X2: float64(res.Result.Left + res.Result.Width),
				Y2: float64(res.Result.Top + res.Result.Height),
			},
		})
	}
	return &entity.DetectResult{Objects: objects, LogID: res.LogID}, nil
}

// Face は顔検出の結果を表示名へ変換して返します。
// 「顔が検出されなかった」エラー（222202）は空の成功結果として返します。
func (u *baiduUsecase) Face(ctx context.Context, imageBase64 string) (*entity.FaceResult, error) {
	if u.face == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.face.FaceDetect(ctx, imageBase64, faceField, maxFaceNum)
	if err != nil {
		var apiErr *aip.APIError
		if errors.As(err, &apiErr) && apiErr.Code == errNoFaceCode {
			return &entity.FaceResult{Faces: []entity.Face{}}, nil
		}
		return nil, err
	}

	var faceList []dto.FaceInfo
	if res.Result != nil {
		faceList = res.Result.FaceList
	}

	faces := make([]entity.Face, 0, len(faceList))
	for i, f := range faceList {
		faces = append(faces, entity.Face{
			FaceID:               i + 1,
			Age:                  f.Age,
			Beauty:               f.Beauty,
			Gender:               entity.GenderName(f.Gender.TypeString()),
			GenderConfidence:     f.Gender.Probability,
			Expression:           entity.ExpressionName(f.Expression.TypeString()),
			ExpressionConfidence: f.Expression.Probability,
			Emotion:              entity.EmotionName(f.Emotion.TypeString()),
			EmotionConfidence:    f.Emotion.Probability,
			Glasses:              entity.GlassesName(f.Glasses.TypeString()),
			Mask:                 entity.MaskName(f.Mask.TypeInt()),
			FaceShape:            f.FaceShape.TypeString(),
			FaceProbability:      f.FaceProbability,
			BBox: entity.BBox{
				X1: f.Location.Left,
				Y1: f.Location.Top,
				X2: f.Location.Left + f.Location.Width,
				Y2: f.Location.Top + f.Location.Height,
			},
			RotationAngle: f.Location.Rotation,
		})
	}
	return &entity.FaceResult{Faces: faces, LogID: res.LogID}, nil
}

// Car は車種認識の結果を返します。
func (u *baiduUsecase) Car(ctx context.Context, imageBase64 string) (*entity.CarResult, error) {
	if u.image == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.image.CarDetect(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	cars := make([]entity.Car, 0, len(res.Result))
	for _, item := range res.Result {
		car := entity.Car{
			Name:  item.Name,
			Score: item.Score,
			Year:  item.Year,
		}
		if item.BaikeInfo != nil {
			car.BaikeURL = item.BaikeInfo.BaikeURL
		}
		cars = append(cars, car)
	}
	return &entity.CarResult{Cars: cars, ColorResult: res.ColorResult, LogID: res.LogID}, nil
}

// Formula は数式OCRの結果を返します。
func (u *baiduUsecase) Formula(ctx context.Context, imageBase64 string) (*entity.FormulaResult, error) {
	if u.ocr == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.ocr.Formula(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	formulas := make([]entity.Formula, 0, len(res.WordsResult))
	for _, item := range res.WordsResult {
		f := entity.Formula{Words: item.Words}
		if item.Probability != nil {
			f.Confidence = item.Probability.Average
		}
		formulas = append(formulas, f)
	}
	return &entity.FormulaResult{Formulas: formulas, LogID: res.LogID}, nil
}

// DictPen は文書解析OCR（辞書ペン向け）の結果を返します。
func (u *baiduUsecase) DictPen(ctx context.Context, imageBase64 string) (*entity.DictPenResult, error) {
	if u.ocr == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.ocr.DocAnalysis(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	words := make([]entity.WordLine, 0, len(res.Results))
	for _, item := range res.Results {
		words = append(words, entity.WordLine{
			Words: item.Words.Word,
			Location: entity.Rect{
				Left:   item.Rect.Left,
				Top:    item.Rect.Top,
				Width:  item.Rect.Width,
				Height: item.Rect.Height,
			},
		})
	}
	return &entity.DictPenResult{WordsResult: words, LogID: res.LogID}, nil
}

// Homework は高精度OCRで宿題の行を読み取り、設問形式へ整形します。
func (u *baiduUsecase) Homework(ctx context.Context, imageBase64 string) (*entity.HomeworkResult, error) {
	if u.ocr == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.ocr.AccurateBasic(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	questions := make([]entity.HomeworkQuestion, 0, len(res.WordsResult))
	for i, item := range res.WordsResult {
		questions = append(questions, entity.HomeworkQuestion{
			QuestionID:      fmt.Sprintf("%d", i+1),
			QuestionType:    "text",
			QuestionContent: item.Words,
			Feedback:        "文字内容を認識しました",
		})
	}
	return &entity.HomeworkResult{
		Status:    "completed",
		Questions: questions,
		MaxScore:  100,
		LogID:     res.LogID,
	}, nil
}

// QuestionSegment は標準OCRの行を設問単位にまとめます。
// 行頭の数字または先頭付近の「題」「問」を設問の開始とみなします。
func (u *baiduUsecase) QuestionSegment(ctx context.Context, imageBase64 string) (*entity.QuestionSegmentResult, error) {
	if u.ocr == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.ocr.GeneralBasic(ctx, imageBase64)
	if err != nil {
		return nil, err
	}

	var questions []entity.SegmentedQuestion
	current := ""
	index := 0

	for _, item := range res.WordsResult {
		text := item.Words
		if isQuestionStart(text) {
			if current != "" {
				questions = append(questions, entity.SegmentedQuestion{
					Index:   index,
					Content: strings.TrimSpace(current),
				})
			}
			index++
			current = text
		} else {
			current += " " + text
		}
	}
	if current != "" {
		questions = append(questions, entity.SegmentedQuestion{
			Index:   index,
			Content: strings.TrimSpace(current),
		})
	}
	if questions == nil {
		questions = []entity.SegmentedQuestion{}
	}
	return &entity.QuestionSegmentResult{Questions: questions, LogID: res.LogID}, nil
}

// isQuestionStart は行が設問の先頭行かを判定します。
func isQuestionStart(text string) bool {
	runes := []rune(text)
	if len(runes) == 0 {
		return false
	}
	if unicode.IsDigit(runes[0]) {
		return true
	}
	head := runes
	if len(head) > 5 {
		head = head[:5]
	}
	for _, r := range head {
		if r == '題' || r == '問' || r == '题' {
			return true
		}
	}
	return false
}

// ImageSearch は画像検索を実行します。
func (u *baiduUsecase) ImageSearch(ctx context.Context, searchType, imageBase64 string) (*entity.ImageSearchResult, error) {
	if u.imageSearch == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.imageSearch.ImageSearch(ctx, searchType, imageBase64)
	if err != nil {
		return nil, err
	}

	results := make([]entity.SearchHit, 0, len(res.Result))
	for _, item := range res.Result {
		results = append(results, entity.SearchHit{
			Score:    item.Score,
			Brief:    item.Brief,
			ContSign: item.ContSign,
		})
	}
	return &entity.ImageSearchResult{Results: results, LogID: res.LogID}, nil
}

// ImageAdd は画像をライブラリへ登録します。briefが空の場合は既定の説明を使います。
func (u *baiduUsecase) ImageAdd(ctx context.Context, searchType, imageBase64, brief string) (*entity.ImageAddResult, error) {
	if u.imageSearch == nil {
		return nil, ErrNotConfigured
	}
	if brief == "" {
		brief = "説明なし"
	}
	res, err := u.imageSearch.ImageAdd(ctx, searchType, imageBase64, brief)
	if err != nil {
		return nil, err
	}
	return &entity.ImageAddResult{ContSign: res.ContSign, LogID: res.LogID}, nil
}

// ImageDelete は画像をライブラリから削除します。
func (u *baiduUsecase) ImageDelete(ctx context.Context, searchType, contSign string) (*entity.ImageDeleteResult, error) {
	if u.imageSearch == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.imageSearch.ImageDelete(ctx, searchType, contSign)
	if err != nil {
		return nil, err
	}
	return &entity.ImageDeleteResult{LogID: res.LogID}, nil
}

// Status は有料版APIの設定状態を返します。
func (u *baiduUsecase) Status() entity.Status {
	configured := u.image != nil
	message := "百度AI APIは利用可能です"
	if !configured {
		message = "百度AIの認証情報を設定してください"
	}
	return entity.Status{
		Configured:     configured,
		FaceConfigured: u.face != nil,
		Message:        message,
	}
}

// FreeStatus は無料版APIの設定状態を返します。
func (u *baiduUsecase) FreeStatus() entity.FreeStatus {
	return entity.FreeStatus{
		OCRConfigured:         u.ocr != nil,
		ImageSearchConfigured: u.imageSearch != nil,
		Message:               "百度無料APIの状態チェックが完了しました",
	}
}
