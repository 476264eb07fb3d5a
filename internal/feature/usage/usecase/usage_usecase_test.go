package usecase

import (
	"context"
	"errors"
	"testing"

	"vision_backend/internal/feature/usage/domain/entity"
)

type fakeUsageRepo struct {
	insertErr error
	inserted  []entity.Record
	counters  []entity.Counter
}

func (f *fakeUsageRepo) Insert(_ context.Context, record entity.Record) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, record)
	return nil
}

func (f *fakeUsageRepo) CountByTask(context.Context) ([]entity.Counter, error) {
	return f.counters, nil
}

func TestRecord(t *testing.T) {
	repo := &fakeUsageRepo{}
	uc := NewUsageUsecase(repo)

	uc.Record(context.Background(), entity.Record{Task: "detect", Vendor: "local_model", Success: true})

	if len(repo.inserted) != 1 {
		t.Fatalf("len(inserted) = %d, want 1", len(repo.inserted))
	}
	if repo.inserted[0].Task != "detect" {
		t.Errorf("Task = %q, want detect", repo.inserted[0].Task)
	}
}

// 記録失敗はログに残すだけでパニックや伝播をしない
func TestRecordBestEffort(t *testing.T) {
	repo := &fakeUsageRepo{insertErr: errors.New("db down")}
	uc := NewUsageUsecase(repo)

	uc.Record(context.Background(), entity.Record{Task: "detect"})
}

func TestSummary(t *testing.T) {
	repo := &fakeUsageRepo{
		counters: []entity.Counter{{Task: "detect", Total: 2, Succeeded: 1}},
	}
	uc := NewUsageUsecase(repo)

	counters, err := uc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(counters) != 1 || counters[0].Task != "detect" {
		t.Errorf("unexpected counters: %+v", counters)
	}
}
