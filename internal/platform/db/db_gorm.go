// Package db はgormによるデータベース接続を提供します。
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	usageadapters "vision_backend/internal/feature/usage/adapters"
)

const (
	// DriverSQLite は組み込みSQLiteドライバーです。既定値です。
	DriverSQLite = "sqlite"
	// DriverPostgres はPostgreSQLドライバーです。
	DriverPostgres = "postgres"

	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Config はデータベース接続設定です。
type Config struct {
	Driver string // sqlite または postgres

	// SQLite用
	Path string

	// PostgreSQL用
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:   os.Getenv("DB_DRIVER"),
		Path:     os.Getenv("DB_PATH"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Path == "" {
		cfg.Path = "vision.db"
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == "" {
		cfg.Port = "5432"
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	return cfg
}

// BuildDSN は設定からDSN文字列を生成します。SQLiteはファイルパスをそのまま使います。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
	}
	return cfg.Path
}

// openerFunc はDSNからgorm.DBを開く関数です。テストで差し替えます。
type openerFunc func(dsn string) (*gorm.DB, error)

// ConnectWithRetry は接続に成功するまでリトライし、タイムアウトでエラーを返します。
func ConnectWithRetry(dsn string, timeout time.Duration, open openerFunc) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB接続に失敗、リトライします", "error", err)
		time.Sleep(retryInterval)
	}
}

// openerFor はドライバーに応じたopenerを返します。
func openerFor(driver string) openerFunc {
	return func(dsn string) (*gorm.DB, error) {
		switch driver {
		case DriverPostgres:
			return gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
		default:
			return gorm.Open(gsqlite.Open(dsn), &gorm.Config{})
		}
	}
}

// OpenDB は環境変数の設定でデータベースを開きます。
// RUN_MIGRATIONS=trueの場合、利用実績テーブルをマイグレーションします。
func OpenDB() (*gorm.DB, error) {
	cfg := LoadConfigFromEnv()
	dsn := BuildDSN(cfg)

	db, err := ConnectWithRetry(dsn, connectTimeout, openerFor(cfg.Driver))
	if err != nil {
		return nil, err
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(&usageadapters.RecordModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	return db, nil
}
