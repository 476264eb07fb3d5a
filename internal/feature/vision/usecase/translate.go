package usecase

import "strings"

// classTranslations は頻出クラス名の日本語表示名です。
// 未登録のクラス名は英語のまま返します。
var classTranslations = map[string]string{
	// 人物
	"person":   "人",
	"people":   "人々",
	"face":     "顔",
	"portrait": "肖像",

	// 動物
	"dog":      "犬",
	"cat":      "猫",
	"bird":     "鳥",
	"horse":    "馬",
	"sheep":    "羊",
	"cow":      "牛",
	"elephant": "象",
	"bear":     "熊",
	"zebra":    "シマウマ",
	"giraffe":  "キリン",
	"fish":     "魚",
	"rabbit":   "ウサギ",
	"tiger":    "トラ",
	"lion":     "ライオン",

	// 乗り物
	"car":        "自動車",
	"truck":      "トラック",
	"bus":        "バス",
	"motorcycle": "バイク",
	"bicycle":    "自転車",
	"airplane":   "飛行機",
	"train":      "電車",
	"boat":       "ボート",

	// 生活用品
	"chair":    "椅子",
	"table":    "テーブル",
	"sofa":     "ソファ",
	"bed":      "ベッド",
	"tv":       "テレビ",
	"laptop":   "ノートパソコン",
	"phone":    "スマートフォン",
	"keyboard": "キーボード",
	"mouse":    "マウス",

	// 食べ物
	"apple":    "リンゴ",
	"banana":   "バナナ",
	"orange":   "オレンジ",
	"pizza":    "ピザ",
	"cake":     "ケーキ",
	"sandwich": "サンドイッチ",
	"hot dog":  "ホットドッグ",
	"carrot":   "ニンジン",
	"broccoli": "ブロッコリー",

	// その他
	"book":       "本",
	"clock":      "時計",
	"bottle":     "ボトル",
	"cup":        "カップ",
	"knife":      "ナイフ",
	"fork":       "フォーク",
	"spoon":      "スプーン",
	"bowl":       "ボウル",
	"vase":       "花瓶",
	"scissors":   "ハサミ",
	"teddy bear": "テディベア",
	"umbrella":   "傘",
	"handbag":    "ハンドバッグ",
	"tie":        "ネクタイ",
	"suitcase":   "スーツケース",
	"backpack":   "リュック",
}

// TranslateClassName はクラス名の日本語表示名を返します。
func TranslateClassName(className string) string {
	if ja, ok := classTranslations[strings.ToLower(className)]; ok {
		return ja
	}
	return className
}
