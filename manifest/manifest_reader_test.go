package manifest

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTestManifest(t *testing.T, rows [][]any) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	if _, err := wb.NewSheet(SheetName); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := wb.SetSheetRow(SheetName, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "Programa Beer_28_04.xlsx")
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func manifestHeader() []any {
	return []any{
		ColShipmentID, ColProductCode, ColPallets, ColDate, ColWeight,
		ColOrigin, ColDestination, ColProductName, ColPriority, ColHL,
		ColBultos, ColCarrier, ColTrip, ColPalletReturnable, ColPlantCode, ColPlate,
	}
}

func TestReadManifest(t *testing.T) {
	path := writeTestManifest(t, [][]any{
		manifestHeader(),
		{"ENV-1", "2001", "10", "2025-04-28", "1500.5", "10", "20", "PILSENER 620", "1", "50", "600", "TransAndes", "3", "SI", "10", "ABC123"},
		{"", "2002", "5", "2025-04-28", "900", "10", "21", "DROPPED ROW", "1", "25", "300", "TransAndes", "3", "", "10", ""},
		{"ENV-2", "notanumber", "", "2025-04-28", "", "", "21", "PACO", "1", "", "", "", "", "", "11", "xyz987"},
	})

	m, err := Read(path, ReadOptions{})
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(m.Rows) != 2 {
		t.Fatalf("expected 2 rows after dropping blank shipment id, got %d", len(m.Rows))
	}

	r := m.Rows[0]
	if r.ShipmentID != "ENV-1" || r.ProductCode != 2001 || r.Pallets != 10 {
		t.Fatalf("unexpected first row: %+v", r)
	}
	if r.BaseWeight != 1500.5 || r.Origin != 10 || r.Destination != 20 || r.TripNumber != 3 {
		t.Fatalf("unexpected first row numerics: %+v", r)
	}
	if r.Plate != "ABC123" || r.PlantCode != "10" {
		t.Fatalf("unexpected plate columns: %+v", r)
	}

	// Coercion defaults: bad product code -> 0, blank pallets -> 1,
	// blank origin -> 1, blank trip -> row index + 1.
	r2 := m.Rows[1]
	if r2.ProductCode != 0 || r2.Pallets != 1 || r2.Origin != 1 || r2.TripNumber != 2 {
		t.Fatalf("unexpected coercion defaults: %+v", r2)
	}
}

func TestReadManifestPlantAsOrigin(t *testing.T) {
	path := writeTestManifest(t, [][]any{
		manifestHeader(),
		{"ENV-1", "2001", "10", "2025-04-28", "1500", "10", "20", "PILSENER", "1", "50", "600", "", "3", "", "77", "ABC123"},
	})

	m, err := Read(path, ReadOptions{UsePlantAsOrigin: true})
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if m.Rows[0].Origin != 77 {
		t.Fatalf("expected plant code as origin, got %d", m.Rows[0].Origin)
	}
}

func TestReadManifestMissingColumns(t *testing.T) {
	path := writeTestManifest(t, [][]any{
		{ColShipmentID, ColProductCode},
		{"ENV-1", "2001"},
	})

	_, err := Read(path, ReadOptions{})
	if err == nil {
		t.Fatalf("expected missing-columns error")
	}
	if !strings.Contains(err.Error(), "missing required columns") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadManifestRejectsEmptyTable(t *testing.T) {
	path := writeTestManifest(t, [][]any{manifestHeader()})

	_, err := Read(path, ReadOptions{})
	if err == nil {
		t.Fatalf("expected empty-table error")
	}
}

func TestReadManifestPlantAsOriginRequiresColumn(t *testing.T) {
	header := []any{
		ColShipmentID, ColProductCode, ColPallets, ColDate, ColWeight,
		ColOrigin, ColDestination, ColProductName, ColPriority, ColHL, ColBultos,
	}
	path := writeTestManifest(t, [][]any{
		header,
		{"ENV-1", "2001", "10", "2025-04-28", "1500", "10", "20", "PILSENER", "1", "50", "600"},
	})

	_, err := Read(path, ReadOptions{UsePlantAsOrigin: true})
	if err == nil {
		t.Fatalf("expected error for missing Cod Planta column")
	}
}
