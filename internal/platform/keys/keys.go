// Package keys はベンダーAPI認証情報の読み込みを提供します。
// keys.jsonを優先し、未設定の項目は環境変数から補完します。
package keys

import (
	"encoding/json"
	"log/slog"
	"os"
)

// Credentials は百度系APIのアプリ認証情報です。
type Credentials struct {
	AppID     string `json:"app_id"`
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
}

// Configured は3項目すべてが設定済みかを返します。
func (c Credentials) Configured() bool {
	return c.AppID != "" && c.APIKey != "" && c.SecretKey != ""
}

// TencentCredentials はテンセントクラウドの認証情報です。
type TencentCredentials struct {
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
}

// Configured はシークレットが設定済みかを返します。
func (c TencentCredentials) Configured() bool {
	return c.SecretID != "" && c.SecretKey != ""
}

// WeChatCredentials はWeChat公式アカウントの認証情報です。
type WeChatCredentials struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

// Configured はアプリ認証情報が設定済みかを返します。
func (c WeChatCredentials) Configured() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// Config は全ベンダーの認証情報を保持します。
type Config struct {
	Baidu            Credentials        `json:"baidu"`
	BaiduFace        Credentials        `json:"baidu_face"`
	BaiduOCR         Credentials        `json:"baidu_ocr"`
	BaiduImageSearch Credentials        `json:"baidu_image_search"`
	Tencent          TencentCredentials `json:"tencent"`
	WeChat           WeChatCredentials  `json:"wechat"`
}

// Load はkeys.jsonと環境変数から認証情報を読み込みます。
// ファイルが存在しない場合は環境変数のみを使用します。
func Load(path string) Config {
	var cfg Config

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			slog.Warn("keys.jsonの読み込みに失敗", "path", path, "error", err)
			cfg = Config{}
		} else {
			slog.Info("keys.jsonから認証情報を読み込みました", "path", path)
		}
	}

	fillEnv(&cfg.Baidu.AppID, "BAIDU_APP_ID")
	fillEnv(&cfg.Baidu.APIKey, "BAIDU_API_KEY")
	fillEnv(&cfg.Baidu.SecretKey, "BAIDU_SECRET_KEY")

	fillEnv(&cfg.Tencent.SecretID, "TENCENT_SECRET_ID")
	fillEnv(&cfg.Tencent.SecretKey, "TENCENT_SECRET_KEY")
	fillEnv(&cfg.Tencent.Region, "TENCENT_REGION")
	if cfg.Tencent.Region == "" {
		cfg.Tencent.Region = "ap-guangzhou"
	}

	fillEnv(&cfg.WeChat.AppID, "WECHAT_APP_ID")
	fillEnv(&cfg.WeChat.AppSecret, "WECHAT_APP_SECRET")

	// 顔認識専用アプリが未設定の場合は汎用の百度認証情報を使います。
	if !cfg.BaiduFace.Configured() {
		cfg.BaiduFace = cfg.Baidu
	}
	return cfg
}

// fillEnv は未設定の項目を環境変数で補完します。
func fillEnv(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}
