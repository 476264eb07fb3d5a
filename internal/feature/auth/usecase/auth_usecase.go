// Package usecase は管理者認証のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials はパスワード不一致を示します。
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotConfigured は管理者パスワードハッシュが未設定であることを示します。
var ErrNotConfigured = errors.New("admin password hash not configured")

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type JWTGenerator interface {
	// GenerateToken は指定されたサブジェクトの署名済みJWTトークンを生成します。
	GenerateToken(subject string) (string, error)
}

// adminSubject は管理者トークンのsubクレームです。
const adminSubject = "admin"

// タイミング攻撃緩和用ダミーハッシュ。
// bcrypt.CompareHashAndPasswordが常に呼ばれることを保証する
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// authUsecase は管理者認証ロジックを実装します。
type authUsecase struct {
	passwordHash string // ADMIN_PASSWORD_HASHのbcryptハッシュ
	jwtGenerator JWTGenerator
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(passwordHash string, jwtGenerator JWTGenerator) *authUsecase {
	return &authUsecase{
		passwordHash: passwordHash,
		jwtGenerator: jwtGenerator,
	}
}

// Login は管理者パスワードを検証し、成功時にJWTトークンを返します。
// ハッシュ未設定時でもbcrypt比較を実行し、応答時間から設定有無を推測されにくくします。
func (u *authUsecase) Login(_ context.Context, password string) (string, error) {
	hash := u.passwordHash
	configured := hash != ""
	if !configured {
		hash = dummyHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if !configured {
		return "", ErrNotConfigured
	}
	if err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := u.jwtGenerator.GenerateToken(adminSubject)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
