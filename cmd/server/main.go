package main

import (
	"context"
	"log/slog"
	"os"

	"vision_backend/internal/app/di"
	"vision_backend/internal/app/router"
	jwtmw "vision_backend/internal/platform/jwt"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app, cleanup, err := di.NewApp(context.Background())
	if err != nil {
		slog.Error("アプリケーションの初期化に失敗", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		slog.Warn("JWT_SECRETが未設定です。本番では必ず強力なシークレットを設定してください")
	}

	r := router.NewRouter(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		slog.Error("サーバーの起動に失敗", "error", err)
		os.Exit(1)
	}
}
