package manifest

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadOptions control how the Consolidado sheet is interpreted.
type ReadOptions struct {
	// UsePlantAsOrigin replaces Cód. Origen with the Cod Planta column
	// (the --from-planta mode). The column is required when set.
	UsePlantAsOrigin bool
}

// Read loads and validates the Consolidado sheet of a manifest workbook.
//
// Missing required columns, a missing sheet or an empty table are fatal;
// rows with a blank Cód. Envío are dropped silently, matching the planner
// template behavior.
func Read(path string, opts ReadOptions) (*Manifest, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", SheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", SheetName)
	}

	header := rows[0]
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("manifest missing required columns: %s", strings.Join(missing, ", "))
	}

	// Optional columns are matched by substring; planner files vary in
	// exact header spelling for these two.
	plantCol, plantFound := findColumn(header, ColPlantCode)
	plateCol, plateFound := findColumn(header, ColPlate)

	if opts.UsePlantAsOrigin && !plantFound {
		return nil, fmt.Errorf("plant-as-origin mode requires a %q column", ColPlantCode)
	}

	m := &Manifest{
		SourcePath:           path,
		PlateColumnFound:     plateFound,
		PlantCodeColumnFound: plantFound,
	}

	for _, raw := range rows[1:] {
		get := func(col string) string {
			j, ok := index[col]
			if !ok || j >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[j])
		}
		getAt := func(j int) string {
			if j < 0 || j >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[j])
		}

		shipmentID := get(ColShipmentID)
		if shipmentID == "" {
			continue
		}

		rowIdx := len(m.Rows)
		row := Row{
			Index:            rowIdx,
			ShipmentID:       shipmentID,
			ProductCode:      safeInt(get(ColProductCode), 0),
			Pallets:          safeInt(get(ColPallets), 1),
			Date:             get(ColDate),
			BaseWeight:       safeFloat(get(ColWeight), 0),
			Origin:           safeInt(get(ColOrigin), 1),
			Destination:      safeInt(get(ColDestination), 1),
			ProductName:      get(ColProductName),
			Carrier:          get(ColCarrier),
			TripNumber:       safeInt(get(ColTrip), int64(rowIdx+1)),
			PalletReturnable: get(ColPalletReturnable),
		}
		if plantFound {
			row.PlantCode = getAt(plantCol)
		}
		if plateFound {
			row.Plate = getAt(plateCol)
		}
		if opts.UsePlantAsOrigin {
			row.Origin = safeInt(row.PlantCode, row.Origin)
		}
		m.Rows = append(m.Rows, row)
	}

	if len(m.Rows) == 0 {
		return nil, fmt.Errorf("manifest contains no rows with a shipment identifier")
	}

	slog.Info("manifest loaded",
		slog.String("path", path),
		slog.Int("rows", len(m.Rows)),
		slog.Bool("plant_as_origin", opts.UsePlantAsOrigin))
	return m, nil
}

func findColumn(header []string, want string) (int, bool) {
	for i, h := range header {
		if strings.Contains(strings.TrimSpace(h), want) {
			return i, true
		}
	}
	return -1, false
}

// safeInt mirrors the planner template coercion: blanks and garbage fall
// back to the default, floats are truncated.
func safeInt(s string, def int64) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	slog.Warn("manifest value not coercible to integer", slog.String("value", s))
	return def
}

func safeFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	slog.Warn("manifest value not coercible to number", slog.String("value", s))
	return def
}
