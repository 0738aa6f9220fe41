package plates

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const availabilityHeaderRow = 4

// Sheets of the availability workbook that list trucks.
var availabilitySheets = []string{
	"Reporte Tra.",
	"Reporte Espe.",
	"Reporte Espe. (tarde)",
}

// AvailabilityPath builds the conventional location of the availability
// workbook for a manifest date, relative to the base directory.
func AvailabilityPath(base, day, month string) string {
	return filepath.Join(base, "disponibilidad_camiones", month,
		fmt.Sprintf("Disponibilidad de Camiones %s-%s.xlsx", day, month))
}

// FromWorkbook reads the daily availability workbook. Each report sheet
// carries five preamble rows before the header; the header names the
// plate and plant columns exactly. A missing sheet is skipped, a missing
// column in a present sheet drops that sheet with a warning.
func FromWorkbook(path string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open availability workbook: %w", err)
	}
	defer f.Close()

	var out []Entry
	for _, sheet := range availabilitySheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) <= availabilityHeaderRow {
			continue
		}

		plateCol, originCol := -1, -1
		for i, name := range rows[availabilityHeaderRow] {
			switch strings.TrimSpace(name) {
			case "Placa":
				plateCol = i
			case "Dep Planta/CD":
				originCol = i
			}
		}
		if plateCol < 0 || originCol < 0 {
			slog.Warn("availability sheet missing columns", slog.String("sheet", sheet))
			continue
		}

		for _, row := range rows[availabilityHeaderRow+1:] {
			plate := cellAt(row, plateCol)
			origin := cellAt(row, originCol)
			if blankCell(plate) || blankCell(origin) {
				continue
			}
			out = append(out, Entry{Origin: origin, Plate: strings.ToUpper(plate)})
		}
	}
	return out, nil
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Exported spreadsheets render missing cells as the strings "nan" or
// "none"; those are blanks, not plates.
func blankCell(v string) bool {
	switch strings.ToLower(v) {
	case "", "nan", "none":
		return true
	}
	return false
}
