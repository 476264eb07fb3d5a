package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vision_backend/internal/app/di"
	"vision_backend/internal/platform/http/handler"
	jwtmw "vision_backend/internal/platform/jwt"
)

// Version はサービスのバージョン文字列です。
const Version = "2.0.0"

// NewRouter は全エンドポイントを登録したルーターを生成します。
func NewRouter(app *di.App) *gin.Engine {
	r := gin.Default()

	r.Use(RequestID())
	r.Use(CORS())
	// 利用実績の記録（POST /api/* のみ対象）
	r.Use(app.RecordUsage)

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	// サービス情報
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "画像認識APIサーバー",
			"version": Version,
		})
	})

	api := r.Group("/api")
	{
		// 全ベンダーの設定状態
		api.GET("/status", app.APIStatus)

		// ローカル推論モデル
		api.POST("/detect", app.Vision.Detect)
		api.POST("/classify", app.Vision.Classify)
		api.POST("/pose", app.Vision.Pose)
		api.POST("/segment", app.Vision.Segment)

		// ナンバープレート認識
		api.POST("/lpr", app.LPR.Recognize)
		api.GET("/lpr/status", app.LPR.Status)

		// 百度AI（有料版）
		api.POST("/baidu/detect", app.Baidu.Detect)
		api.GET("/baidu/status", app.Baidu.Status)

		// 百度AI（無料枠）
		api.POST("/baidu-free/ocr", app.Baidu.OCR)
		api.POST("/baidu-free/image-search", app.Baidu.ImageSearch)
		api.POST("/baidu-free/image-search/add", app.Baidu.ImageAdd)
		api.POST("/baidu-free/image-search/delete", app.Baidu.ImageDelete)
		api.GET("/baidu-free/status", app.Baidu.FreeStatus)

		// テンセントクラウド
		api.POST("/tencent/detect", app.Tencent.Detect)
		api.GET("/tencent/status", app.Tencent.Status)

		// WeChat JS-SDK
		api.POST("/wechat/signature", app.WeChat.Signature)
		api.POST("/wechat/voice/download", app.WeChat.VoiceDownload)
		api.GET("/wechat/status", app.WeChat.Status)

		// 管理者ログイン（JWT 発行）
		api.POST("/login", app.Auth.Login)

		// 認証必須のルート
		// jwtmw.AuthRequired() ミドルウェアを適用
		// → リクエストヘッダーに JWT が必要になる
		auth := api.Group("/")
		auth.Use(jwtmw.AuthRequired())
		{
			auth.GET("/usage", app.Usage.Summary)
		}
	}

	return r
}
