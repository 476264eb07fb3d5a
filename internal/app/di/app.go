// Package di はアプリケーション全体のコンストラクタ配線を提供します。
package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"vision_backend/internal/api"
	authhandler "vision_backend/internal/feature/auth/transport/handler"
	authusecase "vision_backend/internal/feature/auth/usecase"
	"vision_backend/internal/feature/baidu/adapters/aip"
	baiduhandler "vision_backend/internal/feature/baidu/transport/handler"
	baiduusecase "vision_backend/internal/feature/baidu/usecase"
	"vision_backend/internal/feature/lpr/adapters/hyperlpr"
	lprhandler "vision_backend/internal/feature/lpr/transport/handler"
	lprusecase "vision_backend/internal/feature/lpr/usecase"
	"vision_backend/internal/feature/tencent/adapters/tiia"
	tencenthandler "vision_backend/internal/feature/tencent/transport/handler"
	tencentusecase "vision_backend/internal/feature/tencent/usecase"
	usageadapters "vision_backend/internal/feature/usage/adapters"
	usagehandler "vision_backend/internal/feature/usage/transport/handler"
	usageusecase "vision_backend/internal/feature/usage/usecase"
	"vision_backend/internal/feature/vision/adapters/gcv"
	"vision_backend/internal/feature/vision/adapters/inference"
	visionhandler "vision_backend/internal/feature/vision/transport/handler"
	visionusecase "vision_backend/internal/feature/vision/usecase"
	"vision_backend/internal/feature/wechat/adapters/mp"
	wechathandler "vision_backend/internal/feature/wechat/transport/handler"
	wechatusecase "vision_backend/internal/feature/wechat/usecase"
	"vision_backend/internal/platform/cache"
	platformdb "vision_backend/internal/platform/db"
	httpclient "vision_backend/internal/platform/http"
	jwtmw "vision_backend/internal/platform/jwt"
	"vision_backend/internal/platform/keys"
	platformredis "vision_backend/internal/platform/redis"
	"vision_backend/internal/shared/ratelimiter"
)

const (
	// 無料枠APIのQPS上限。
	freeTierQPS = 2

	vendorTimeout  = 30 * time.Second
	adminTokenTTL  = 24 * time.Hour
	tencentCacheNS = "tiia"
)

// App は配線済みのハンドラー一式です。
type App struct {
	Vision  *visionhandler.VisionHandler
	LPR     *lprhandler.LPRHandler
	Baidu   *baiduhandler.BaiduHandler
	Tencent *tencenthandler.TencentHandler
	WeChat  *wechathandler.WeChatHandler
	Auth    *authhandler.AuthHandler
	Usage   *usagehandler.UsageHandler

	// RecordUsage は利用実績を記録するミドルウェアです。
	RecordUsage gin.HandlerFunc
	// APIStatus は全ベンダーの設定状態をまとめて返すハンドラーです。
	APIStatus gin.HandlerFunc
}

// NewApp は環境変数とkeys.jsonからアプリケーション全体を組み立てます。
// 返されるクリーンアップ関数は保持しているコネクションを閉じます。
func NewApp(ctx context.Context) (*App, func(), error) {
	keysPath := os.Getenv("KEYS_PATH")
	if keysPath == "" {
		keysPath = "keys.json"
	}
	cfg := keys.Load(keysPath)

	// Redisは任意。接続できない場合はキャッシュなしで動作する。
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		slog.Warn("Redisに接続できないため、キャッシュなしで起動します")
	} else {
		rdb = tmp
	}

	db, err := platformdb.OpenDB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	vendorHTTP := httpclient.NewHTTPClient(vendorTimeout)

	// 推論ランナー。MODEL_BACKEND=gcvでGoogle Cloud Visionへ切り替え。
	var runner visionusecase.ModelRunner
	var gcvRunner *gcv.Runner
	if os.Getenv("MODEL_BACKEND") == "gcv" {
		gcvRunner, err = gcv.NewRunner(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create vision runner: %w", err)
		}
		runner = gcvRunner
	} else {
		infCfg := inference.LoadConfig()
		runner = inference.NewClient(infCfg, httpclient.NewHTTPClient(infCfg.Timeout))
	}
	visionUC := visionusecase.NewVisionUsecase(runner)

	lprCfg := hyperlpr.LoadConfig()
	lprUC := lprusecase.NewLPRUsecase(hyperlpr.NewClient(lprCfg, httpclient.NewHTTPClient(lprCfg.Timeout)))

	// 百度有料版。画像系と顔検出は別アプリの認証情報を使える。
	var imageClient baiduusecase.ImageClient
	if cfg.Baidu.Configured() {
		tokens := aip.NewTokenProvider(cfg.Baidu, vendorHTTP, rdb)
		imageClient = aip.NewClient(tokens, vendorHTTP, nil)
	}
	var faceClient baiduusecase.FaceClient
	if cfg.BaiduFace.Configured() {
		tokens := aip.NewTokenProvider(cfg.BaiduFace, vendorHTTP, rdb)
		faceClient = aip.NewClient(tokens, vendorHTTP, nil)
	}

	// 百度無料版はQPS制限付き。
	var ocrClient baiduusecase.OCRClient
	if cfg.BaiduOCR.Configured() {
		tokens := aip.NewTokenProvider(cfg.BaiduOCR, vendorHTTP, rdb)
		ocrClient = aip.NewClient(tokens, vendorHTTP, ratelimiter.NewRateLimiter(freeTierQPS, time.Second))
	}
	var searchClient baiduusecase.ImageSearchClient
	if cfg.BaiduImageSearch.Configured() {
		tokens := aip.NewTokenProvider(cfg.BaiduImageSearch, vendorHTTP, rdb)
		searchClient = aip.NewClient(tokens, vendorHTTP, ratelimiter.NewRateLimiter(freeTierQPS, time.Second))
	}
	baiduUC := baiduusecase.NewBaiduUsecase(imageClient, faceClient, ocrClient, searchClient)

	// テンセントはRedisキャッシュ越しに呼び出す。
	var tiiaClient tencentusecase.TIIAClient
	if cfg.Tencent.Configured() {
		tiiaClient = cache.NewCachingTIIAClient(rdb, 0, tiia.NewClient(cfg.Tencent, vendorHTTP), tencentCacheNS)
	}
	tencentUC := tencentusecase.NewTencentUsecase(tiiaClient, cfg.Tencent.Region)

	var mpClient wechatusecase.MPClient
	if cfg.WeChat.Configured() {
		mpClient = mp.NewClient(cfg.WeChat, vendorHTTP)
	}
	wechatUC := wechatusecase.NewWeChatUsecase(mpClient)

	usageUC := usageusecase.NewUsageUsecase(usageadapters.NewUsageRepository(db))

	generator := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), adminTokenTTL)
	authUC := authusecase.NewAuthUsecase(os.Getenv("ADMIN_PASSWORD_HASH"), generator)

	apiStatus := func(c *gin.Context) {
		c.JSON(http.StatusOK, api.StatusResponse{
			Success: true,
			Data: gin.H{
				"baidu_ai":      baiduUC.Status(),
				"baidu_free":    baiduUC.FreeStatus(),
				"tencent_cloud": tencentUC.Status(),
				"lpr":           lprUC.Status(c.Request.Context()),
				"wechat":        wechatUC.Status(),
			},
		})
	}

	cleanup := func() {
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				slog.Error("Redisクライアントのクローズに失敗", "error", err)
			}
		}
		if gcvRunner != nil {
			if err := gcvRunner.Close(); err != nil {
				slog.Error("Visionクライアントのクローズに失敗", "error", err)
			}
		}
	}

	return &App{
		Vision:      visionhandler.NewVisionHandler(visionUC),
		LPR:         lprhandler.NewLPRHandler(lprUC),
		Baidu:       baiduhandler.NewBaiduHandler(baiduUC),
		Tencent:     tencenthandler.NewTencentHandler(tencentUC),
		WeChat:      wechathandler.NewWeChatHandler(wechatUC),
		Auth:        authhandler.NewAuthHandler(authUC),
		Usage:       usagehandler.NewUsageHandler(usageUC),
		RecordUsage: usagehandler.RecordingMiddleware(usageUC),
		APIStatus:   apiStatus,
	}, cleanup, nil
}
