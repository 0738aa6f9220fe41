package document

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"shipmentgen/plates"
)

const rosterSheet = "Disponibles"

// WriteRoster writes the plate availability roster next to the shipment
// document. The dispatch tool reads the sheet by name and the three
// columns by position.
func WriteRoster(path string, entries []plates.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(rosterSheet)
	if err != nil {
		return fmt.Errorf("roster sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("roster sheet: %w", err)
	}

	header := []any{"Origen", "Placa", "Reusable"}
	if err := f.SetSheetRow(rosterSheet, "A1", &header); err != nil {
		return fmt.Errorf("roster header: %w", err)
	}
	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{e.Origin, e.Plate, e.Reusable}
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			return fmt.Errorf("roster row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	return nil
}
