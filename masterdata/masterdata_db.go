package masterdata

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"shipmentgen/infrastructure/sqlite"
	"shipmentgen/models"
)

// Store is the sqlite-backed master data lookup.
type Store struct {
	db *sqlite.DB
}

func NewStore(db *sqlite.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Product(ctx context.Context, code int64) (*ProductRecord, error) {
	var p models.Product
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&p).Where("code = ?", code).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ProductRecord{
		Name:            p.Name,
		Commodity:       p.CommodityCode,
		HLPerPallet:     p.HLPerPallet,
		BultosPerPallet: p.BultosPerPallet,
	}, nil
}

func (s *Store) Packaging(ctx context.Context, code int64) (*PackagingRecord, error) {
	var p models.Packaging
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&p).Where("code = ?", code).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &PackagingRecord{
		Description:     p.Description,
		HLPerPallet:     p.HLPerPallet,
		BultosPerPallet: p.BultosPerPallet,
	}, nil
}

func (s *Store) Priority(ctx context.Context, routeKey string) (int64, bool, error) {
	var rp models.RoutePriority
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&rp).Where("route_key = ?", routeKey).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rp.Priority, true, nil
}

// PlateGroup returns the carrier group a plate belongs to, or "" when the
// plate is unknown.
func (s *Store) PlateGroup(ctx context.Context, plate string) (string, error) {
	var d models.Driver
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&d).Where("plate = ?", plate).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return d.Group, nil
}
