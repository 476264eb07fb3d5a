// Package usecase は利用実績の記録と集計を実装します。
package usecase

import (
	"context"
	"log/slog"

	"vision_backend/internal/feature/usage/domain/entity"
)

// UsageRepository は利用実績の永続化を担います。
type UsageRepository interface {
	Insert(ctx context.Context, record entity.Record) error
	CountByTask(ctx context.Context) ([]entity.Counter, error)
}

// usageUsecase は利用実績のオーケストレーションを提供します。
type usageUsecase struct {
	repo UsageRepository
}

// NewUsageUsecase はusageUsecaseの新しいインスタンスを生成します。
func NewUsageUsecase(repo UsageRepository) *usageUsecase {
	return &usageUsecase{repo: repo}
}

// Record は利用実績を保存します。記録はベストエフォートであり、
// 失敗してもログに残すだけで呼び出し元へエラーを返しません。
func (u *usageUsecase) Record(ctx context.Context, record entity.Record) {
	if err := u.repo.Insert(ctx, record); err != nil {
		slog.Warn("利用実績の記録に失敗", "task", record.Task, "error", err)
	}
}

// Summary はタスク単位の集計値を返します。
func (u *usageUsecase) Summary(ctx context.Context) ([]entity.Counter, error) {
	return u.repo.CountByTask(ctx)
}
