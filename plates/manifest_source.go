package plates

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shipmentgen/manifest"
)

// GroupLookup resolves a plate to its carrier group. Unknown plates
// resolve to "".
type GroupLookup interface {
	PlateGroup(ctx context.Context, plate string) (string, error)
}

// FromManifest collects carrier plates from the manifest itself: rows
// that name a plate and a plant, filtered to plates registered under the
// carrier group. The returned entries keep manifest order; Merge sorts.
//
// Missing Placa or Cod Planta columns make the roster impossible and are
// the only fatal condition here. Lookup errors drop the single plate.
func FromManifest(ctx context.Context, m *manifest.Manifest, groups GroupLookup) ([]Entry, error) {
	if !m.PlateColumnFound || !m.PlantCodeColumnFound {
		return nil, fmt.Errorf("manifest %s has no plate or plant columns", m.SourcePath)
	}

	var out []Entry
	for _, row := range m.Rows {
		plate := strings.TrimSpace(row.Plate)
		origin := strings.TrimSpace(row.PlantCode)
		if plate == "" || origin == "" {
			continue
		}
		group, err := groups.PlateGroup(ctx, plate)
		if err != nil {
			slog.Warn("plate group lookup failed", slog.String("plate", plate), slog.Any("err", err))
			continue
		}
		if group != CarrierGroup {
			continue
		}
		out = append(out, Entry{Origin: origin, Plate: strings.ToUpper(plate)})
	}
	return out, nil
}
