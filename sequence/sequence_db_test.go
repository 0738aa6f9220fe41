package sequence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"

	"shipmentgen/infrastructure/sqlite"
)

func openSequenceTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "sequence-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestDBStoreSeedsAndIncrements(t *testing.T) {
	store := NewDBStore(openSequenceTestDB(t))
	ctx := context.Background()

	for i, want := range []int64{11111, 11112, 11113} {
		got, err := store.Next(ctx)
		if err != nil {
			t.Fatalf("allocation %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("allocation %d: got %d, want %d", i, got, want)
		}
	}
}

func TestDBStoreResumesFromPersistedCounter(t *testing.T) {
	db := openSequenceTestDB(t)
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO shipment_sequence (last_reference_number, updated_at)
VALUES (20000, CURRENT_TIMESTAMP)`)
		return err
	})
	if err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	got, err := NewDBStore(db).Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != 20001 {
		t.Fatalf("got %d, want 20001", got)
	}
}

func TestAllocatorOverDBStore(t *testing.T) {
	a := NewAllocator(NewDBStore(openSequenceTestDB(t)))

	if got := a.Next(context.Background()); got != "11111" {
		t.Fatalf("first allocation: %q", got)
	}
}
