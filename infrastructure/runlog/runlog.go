package runlog

import (
	"context"

	"github.com/uptrace/bun"

	"shipmentgen/infrastructure/sqlite"
	"shipmentgen/models"
)

// Statuses of a recorded run.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Service persists one generation_runs row per processed manifest.
type Service struct {
	db *sqlite.DB
}

func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Record inserts the run row and fills in its generated ID.
func (s *Service) Record(ctx context.Context, run *models.GenerationRun) error {
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(run).Exec(ctx)
		return err
	})
}

// Recent returns the latest runs, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.GenerationRun, error) {
	var runs []models.GenerationRun
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&runs).Order("created_at DESC", "id DESC").Limit(limit).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}
