// Package dto は百度AIP APIレスポンスのデータ転送オブジェクトを定義します。
package dto

// BaikeInfo は百科（百度百科）の付加情報です。
type BaikeInfo struct {
	BaikeURL    string `json:"baike_url"`
	Description string `json:"description"`
}

// ClassifyResponse は高精度汎用物体認識（advanced_general）のレスポンスです。
type ClassifyResponse struct {
	LogID  int64 `json:"log_id"`
	Result []struct {
		Keyword   string     `json:"keyword"`
		Score     float64    `json:"score"`
		Root      string     `json:"root"`
		BaikeInfo *BaikeInfo `json:"baike_info"`
	} `json:"result"`
}

// ObjectDetectResponse は主体検出（object_detect）のレスポンスです。
type ObjectDetectResponse struct {
	LogID  int64 `json:"log_id"`
	Result *struct {
		Left   int `json:"left"`
		Top    int `json:"top"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"result"`
}

// AttrField は{"type": ..., "probability": ...}形式の属性です。
type AttrField struct {
	Type        any     `json:"type"`
	Probability float64 `json:"probability"`
}

// FaceDetectResponse は顔検出（face detect）のレスポンスです。
type FaceDetectResponse struct {
	LogID  int64 `json:"log_id"`
	Result *struct {
		FaceNum  int        `json:"face_num"`
		FaceList []FaceInfo `json:"face_list"`
	} `json:"result"`
}

// FaceInfo は1つの顔の属性情報です。
type FaceInfo struct {
	Age             float64 `json:"age"`
	Beauty          float64 `json:"beauty"`
	FaceProbability float64 `json:"face_probability"`
	Location        struct {
		Left     float64 `json:"left"`
		Top      float64 `json:"top"`
		Width    float64 `json:"width"`
		Height   float64 `json:"height"`
		Rotation float64 `json:"rotation"`
	} `json:"location"`
	Expression AttrField `json:"expression"`
	Emotion    AttrField `json:"emotion"`
	Gender     AttrField `json:"gender"`
	Glasses    AttrField `json:"glasses"`
	Mask       AttrField `json:"mask"`
	FaceShape  AttrField `json:"face_shape"`
}

// TypeString は属性のtype値を文字列として返します。
func (f AttrField) TypeString() string {
	if s, ok := f.Type.(string); ok {
		return s
	}
	return ""
}

// TypeInt は属性のtype値を整数として返します（maskなど数値型の属性用）。
func (f AttrField) TypeInt() int {
	if n, ok := f.Type.(float64); ok {
		return int(n)
	}
	return 0
}

// CarDetectResponse は車種認識（car detect）のレスポンスです。
type CarDetectResponse struct {
	LogID       int64  `json:"log_id"`
	ColorResult string `json:"color_result"`
	Result      []struct {
		Name      string     `json:"name"`
		Score     float64    `json:"score"`
		Year      string     `json:"year"`
		BaikeInfo *BaikeInfo `json:"baike_info"`
	} `json:"result"`
}

// OCRWordsResponse はwords_result形式のOCRエンドポイント共通レスポンスです
// （formula / accurate_basic / general_basic）。
type OCRWordsResponse struct {
	LogID       int64 `json:"log_id"`
	WordsResult []struct {
		Words       string `json:"words"`
		Probability *struct {
			Average float64 `json:"average"`
		} `json:"probability"`
	} `json:"words_result"`
}

// DocAnalysisResponse は文書解析（doc_analysis）のレスポンスです。
type DocAnalysisResponse struct {
	LogID   int64 `json:"log_id"`
	Results []struct {
		Words struct {
			Word string `json:"word"`
		} `json:"words"`
		Rect struct {
			Left   int `json:"left"`
			Top    int `json:"top"`
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"rect"`
	} `json:"results"`
}

// ImageSearchResponse は画像検索（search）のレスポンスです。
type ImageSearchResponse struct {
	LogID  int64 `json:"log_id"`
	Result []struct {
		Score    float64 `json:"score"`
		Brief    string  `json:"brief"`
		ContSign string  `json:"cont_sign"`
	} `json:"result"`
}

// ImageAddResponse は画像検索への登録（add）のレスポンスです。
type ImageAddResponse struct {
	LogID    int64  `json:"log_id"`
	ContSign string `json:"cont_sign"`
}

// ImageDeleteResponse は画像検索からの削除（delete）のレスポンスです。
type ImageDeleteResponse struct {
	LogID int64 `json:"log_id"`
}
