// Package adapters は利用実績のgormリポジトリを提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"vision_backend/internal/feature/usage/domain/entity"
	"vision_backend/internal/feature/usage/usecase"
)

type usageGorm struct {
	db *gorm.DB
}

var _ usecase.UsageRepository = (*usageGorm)(nil)

// NewUsageRepository はusageGormの新しいインスタンスを生成します。
func NewUsageRepository(db *gorm.DB) *usageGorm {
	return &usageGorm{db: db}
}

// RecordModel は利用実績テーブルのgormモデルです。
type RecordModel struct {
	ID         uint      `gorm:"primaryKey"`
	Task       string    `gorm:"size:64;not null;index"`
	Vendor     string    `gorm:"size:32;not null;index"`
	DurationMS int64     `gorm:"not null;default:0"`
	Success    bool      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (RecordModel) TableName() string {
	return "usage_records"
}

func toModel(e entity.Record) RecordModel {
	return RecordModel{
		Task:       e.Task,
		Vendor:     e.Vendor,
		DurationMS: e.DurationMS,
		Success:    e.Success,
		CreatedAt:  e.CreatedAt,
	}
}

func (r *usageGorm) Insert(ctx context.Context, record entity.Record) error {
	m := toModel(record)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// countRow はCountByTaskの集計クエリの受け皿です。
type countRow struct {
	Task          string
	Vendor        string
	Total         int64
	Succeeded     int64
	AvgDurationMS float64
}

func (r *usageGorm) CountByTask(ctx context.Context) ([]entity.Counter, error) {
	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&RecordModel{}).
		Select("task, vendor, COUNT(*) AS total, SUM(CASE WHEN success THEN 1 ELSE 0 END) AS succeeded, AVG(duration_ms) AS avg_duration_ms").
		Group("task").
		Group("vendor").
		Order("task").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.Counter, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.Counter{
			Task:          row.Task,
			Vendor:        row.Vendor,
			Total:         row.Total,
			Succeeded:     row.Succeeded,
			AvgDurationMS: row.AvgDurationMS,
		})
	}
	return out, nil
}
