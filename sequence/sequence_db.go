package sequence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"shipmentgen/infrastructure/sqlite"
	"shipmentgen/models"
)

// DBStore keeps the counter in the shipment_sequence table. Each call
// runs one write transaction on the single-connection writer handle, so
// allocations within this process are serialized; a failed call's
// transaction is rolled back by the helper before the next read.
type DBStore struct {
	db *sqlite.DB
}

func NewDBStore(db *sqlite.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Next(ctx context.Context) (int64, error) {
	var next int64
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var seq models.ShipmentSequence
		err := tx.NewSelect().Model(&seq).OrderExpr("id DESC").Limit(1).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			next = Seed
			seq = models.ShipmentSequence{LastReferenceNumber: Seed, UpdatedAt: time.Now()}
			_, err = tx.NewInsert().Model(&seq).Exec(ctx)
			return err
		}
		if err != nil {
			return err
		}

		seq.LastReferenceNumber++
		seq.UpdatedAt = time.Now()
		next = seq.LastReferenceNumber
		_, err = tx.NewUpdate().Model(&seq).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
