// Package entity は百度AI連携のドメインエンティティを定義します。
package entity

// BBox は画像座標系のバウンディングボックスです。
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// ClassifyItem は汎用物体認識の1件の結果です。
type ClassifyItem struct {
	Name        string  `json:"name"`
	Confidence  float64 `json:"confidence"`
	Root        string  `json:"root"`
	BaikeURL    string  `json:"baike_url"`
	Description string  `json:"description"`
}

// ClassifyResult は汎用物体認識の結果一式です。
type ClassifyResult struct {
	Items []ClassifyItem `json:"items"`
	LogID int64          `json:"log_id"`
}

// DetectObject は主体検出の1件の結果です。
type DetectObject struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

// DetectResult は主体検出の結果一式です。
type DetectResult struct {
	Objects []DetectObject `json:"objects"`
	LogID   int64          `json:"log_id"`
}

// Face は顔検出の1件の結果です。属性は表示名へ変換済みです。
type Face struct {
	FaceID               int     `json:"face_id"`
	Age                  float64 `json:"age"`
	Beauty               float64 `json:"beauty"`
	Gender               string  `json:"gender"`
	GenderConfidence     float64 `json:"gender_confidence"`
	Expression           string  `json:"expression"`
	ExpressionConfidence float64 `json:"expression_confidence"`
	Emotion              string  `json:"emotion"`
	EmotionConfidence    float64 `json:"emotion_confidence"`
	Glasses              string  `json:"glasses"`
	Mask                 string  `json:"mask"`
	FaceShape            string  `json:"face_shape"`
	FaceProbability      float64 `json:"face_probability"`
	BBox                 BBox    `json:"bbox"`
	RotationAngle        float64 `json:"rotation_angle"`
}

// FaceResult は顔検出の結果一式です。
type FaceResult struct {
	Faces []Face `json:"faces"`
	LogID int64  `json:"log_id"`
}

// Car は車種認識の1件の結果です。
type Car struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Year     string  `json:"year"`
	BaikeURL string  `json:"baike_url"`
}

// CarResult は車種認識の結果一式です。
type CarResult struct {
	Cars        []Car  `json:"cars"`
	ColorResult string `json:"color_result"`
	LogID       int64  `json:"log_id"`
}

// Formula は数式OCRの1件の結果です。
type Formula struct {
	Words      string  `json:"words"`
	Confidence float64 `json:"confidence"`
}

// FormulaResult は数式OCRの結果一式です。
type FormulaResult struct {
	Formulas []Formula `json:"formulas"`
	LogID    int64     `json:"log_id"`
}

// Rect はOCR結果の矩形領域です。
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WordLine は文書解析OCRの1行の結果です。
type WordLine struct {
	Words    string `json:"words"`
	Location Rect   `json:"location"`
}

// DictPenResult は文書解析OCRの結果一式です。
type DictPenResult struct {
	WordsResult []WordLine `json:"words_result"`
	LogID       int64      `json:"log_id"`
}

// HomeworkQuestion は宿題認識の1行を設問形式にしたものです。
type HomeworkQuestion struct {
	QuestionID      string `json:"question_id"`
	QuestionType    string `json:"question_type"`
	QuestionContent string `json:"question_content"`
	StudentAnswer   string `json:"student_answer"`
	CorrectAnswer   string `json:"correct_answer"`
	IsCorrect       *bool  `json:"is_correct"`
	Score           int    `json:"score"`
	Feedback        string `json:"feedback"`
}

// HomeworkResult は宿題認識の結果一式です。
type HomeworkResult struct {
	Status     string             `json:"status"`
	Questions  []HomeworkQuestion `json:"questions"`
	TotalScore int                `json:"total_score"`
	MaxScore   int                `json:"max_score"`
	LogID      int64              `json:"log_id"`
}

// SegmentedQuestion は設問切り分けの1問です。
type SegmentedQuestion struct {
	Index    int    `json:"index"`
	Content  string `json:"content"`
	Location Rect   `json:"location"`
}

// QuestionSegmentResult は設問切り分けの結果一式です。
type QuestionSegmentResult struct {
	Questions []SegmentedQuestion `json:"questions"`
	LogID     int64               `json:"log_id"`
}

// SearchHit は画像検索の1件のヒットです。
type SearchHit struct {
	Score    float64 `json:"score"`
	Brief    string  `json:"brief"`
	ContSign string  `json:"cont_sign"`
}

// ImageSearchResult は画像検索の結果一式です。
type ImageSearchResult struct {
	Results []SearchHit `json:"result"`
	LogID   int64       `json:"log_id"`
}

// ImageAddResult は画像登録の結果です。
type ImageAddResult struct {
	ContSign string `json:"cont_sign"`
	LogID    int64  `json:"log_id"`
}

// ImageDeleteResult は画像削除の結果です。
type ImageDeleteResult struct {
	LogID int64 `json:"log_id"`
}

// Status は有料版APIの設定状態です。
type Status struct {
	Configured     bool   `json:"configured"`
	FaceConfigured bool   `json:"face_configured"`
	Message        string `json:"message"`
}

// FreeStatus は無料版APIの設定状態です。
type FreeStatus struct {
	OCRConfigured         bool   `json:"ocr_configured"`
	ImageSearchConfigured bool   `json:"image_search_configured"`
	Message               string `json:"message"`
}

// 顔属性の表示名マップ。未知の値は「不明」になります。
var (
	expressionNames = map[string]string{"none": "無表情", "smile": "微笑", "laugh": "大笑い"}
	emotionNames    = map[string]string{
		"angry": "怒り", "disgust": "嫌悪", "fear": "恐怖",
		"happy": "喜び", "sad": "悲しみ", "surprise": "驚き", "neutral": "平静",
	}
	genderNames = map[string]string{"male": "男性", "female": "女性"}
)

// ExpressionName は表情種別の表示名を返します。
func ExpressionName(t string) string {
	if name, ok := expressionNames[t]; ok {
		return name
	}
	return "不明"
}

// EmotionName は感情種別の表示名を返します。
func EmotionName(t string) string {
	if name, ok := emotionNames[t]; ok {
		return name
	}
	return "不明"
}

// GenderName は性別の表示名を返します。
func GenderName(t string) string {
	if name, ok := genderNames[t]; ok {
		return name
	}
	return "不明"
}

// GlassesName は眼鏡有無の表示名を返します。
func GlassesName(t string) string {
	if t != "" && t != "none" {
		return "眼鏡あり"
	}
	return "眼鏡なし"
}

// MaskName はマスク有無の表示名を返します。
func MaskName(t int) string {
	if t == 1 {
		return "マスクあり"
	}
	return "マスクなし"
}
