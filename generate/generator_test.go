package generate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	"shipmentgen/infrastructure/runlog"
	"shipmentgen/infrastructure/sqlite"
	"shipmentgen/manifest"
)

func openSeededDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	if err := sqlite.ApplyEmbeddedMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		stmts := []string{
			`INSERT INTO products (code, name, commodity_code, hl_per_pallet, bultos_per_pallet)
			 VALUES (2001, 'PILSENER 620', 'BO_CV', 7.4412, 60)`,
			`INSERT INTO route_priorities (route_key, priority) VALUES ('BO_10-BO_20', 3)`,
			`INSERT INTO drivers (plate, group_name) VALUES ('ABC123', 'Transportadoras')`,
		}
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func writeManifest(t *testing.T, dir, name string, dataRows [][]any) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	if _, err := wb.NewSheet(manifest.SheetName); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	header := []any{
		manifest.ColShipmentID, manifest.ColProductCode, manifest.ColPallets,
		manifest.ColDate, manifest.ColWeight, manifest.ColOrigin,
		manifest.ColDestination, manifest.ColProductName, manifest.ColPriority,
		manifest.ColHL, manifest.ColBultos, manifest.ColCarrier,
		manifest.ColTrip, manifest.ColPalletReturnable, manifest.ColPlantCode,
		manifest.ColPlate,
	}
	rows := append([][]any{header}, dataRows...)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := wb.SetSheetRow(manifest.SheetName, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(dir, name)
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
	return path
}

func TestGeneratorRun(t *testing.T) {
	db := openSeededDB(t)
	g := NewGenerator(db)
	g.now = func() time.Time {
		return time.Date(2025, 4, 28, 8, 0, 0, 0, time.UTC)
	}

	work := t.TempDir()
	input := writeManifest(t, work, "Programa Beer_28_04.xlsx", [][]any{
		{"ENV-1", "2001", "10", "2025-04-28", "1500", "10", "20", "PILSENER 620", "1", "50", "600", "TransAndes", "3", "SI", "10", "ABC123"},
		{"ENV-1", "1100", "2", "2025-04-28", "0", "10", "20", "PALLET", "1", "", "", "TransAndes", "3", "NO", "10", "XYZ987"},
	})

	out, err := g.Run(context.Background(), Options{
		InputPath: input,
		OutputDir: work,
		DataDir:   work,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out.FileType.Name != "Beer" || out.FileType.PlanID != "5001" {
		t.Fatalf("file type: %+v", out.FileType)
	}
	if out.Month != "04" || out.Day != "28" {
		t.Fatalf("date: %s/%s", out.Month, out.Day)
	}

	wantDir := filepath.Join(work, "Beer", "04", "28")
	if filepath.Dir(out.DocumentPath) != wantDir {
		t.Fatalf("document dir: %s", out.DocumentPath)
	}
	doc, err := os.ReadFile(out.DocumentPath)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if !strings.Contains(string(doc), `<Worksheet ss:Name="Data">`) {
		t.Fatalf("document content: %s", doc[:200])
	}

	report, err := os.ReadFile(out.ReportPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(string(report), "1:3 header/detail ratio holds") {
		t.Fatalf("report content:\n%s", report)
	}

	// 2etapa mirror with the simplified name.
	if _, err := os.Stat(filepath.Join(work, "2etapa", "output", "beer", "04", "28", "beer.xml")); err != nil {
		t.Fatalf("2etapa copy: %v", err)
	}

	// Roster holds only the carrier-group plate from the manifest.
	roster, err := excelize.OpenFile(out.RosterPath)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	defer roster.Close()
	rows, err := roster.GetRows("Disponibles")
	if err != nil {
		t.Fatalf("roster sheet: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "ABC123" {
		t.Fatalf("roster rows: %v", rows)
	}

	runs, err := runlog.NewService(db).Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != runlog.StatusCompleted {
		t.Fatalf("run log: %+v", runs)
	}
	if runs[0].HeaderRecords != 2 || runs[0].DetailRecords != 6 {
		t.Fatalf("run counts: %+v", runs[0])
	}
}

func TestGeneratorRunRecordsFailure(t *testing.T) {
	db := openSeededDB(t)
	g := NewGenerator(db)

	work := t.TempDir()
	input := writeManifest(t, work, "Programa Beer_28_04.xlsx", [][]any{
		{"", "2001", "10", "2025-04-28", "1500", "10", "20", "PILSENER 620", "1", "50", "600", "TransAndes", "3", "SI", "10", "ABC123"},
	})

	_, err := g.Run(context.Background(), Options{InputPath: input, OutputDir: work})
	if err == nil {
		t.Fatalf("expected failure for manifest without shipment identifiers")
	}

	runs, err := runlog.NewService(db).Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != runlog.StatusFailed {
		t.Fatalf("run log: %+v", runs)
	}
	if runs[0].Detail == "" {
		t.Fatalf("failure detail missing")
	}
}
