package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"shipmentgen/manifest"
	"shipmentgen/masterdata"
	"shipmentgen/sequence"
)

// Pipeline expands a loaded manifest into the accumulated record set.
// The resolver instance is run-scoped (its cache must not outlive one
// file); construct a fresh Pipeline per run.
type Pipeline struct {
	Resolver  *masterdata.Resolver
	Allocator *sequence.Allocator
	Expander  *Expander
}

func New(resolver *masterdata.Resolver, allocator *sequence.Allocator, expander *Expander) *Pipeline {
	return &Pipeline{Resolver: resolver, Allocator: allocator, Expander: expander}
}

// RowOutcome is the per-row result: an expanded group, or a skip reason.
type RowOutcome struct {
	Index      int
	Group      *Group
	SkipReason string
}

// Skipped reports whether the row was dropped from the run.
func (o RowOutcome) Skipped() bool { return o.Group == nil }

// Result is the output of one run.
type Result struct {
	Records  []Record
	Outcomes []RowOutcome
	Stats    *Stats
}

// Run processes all manifest rows in file order. A single row's failure
// is recorded and skipped; the run continues. Only an invalid manifest
// (no shipment identifiers at all) aborts before processing.
func (p *Pipeline) Run(ctx context.Context, m *manifest.Manifest) (*Result, error) {
	if err := checkShipmentIdentifiers(m.Rows); err != nil {
		return nil, err
	}

	stats := NewStats()
	correlatives := RouteCorrelatives(m.Rows)
	result := &Result{Stats: stats}

	for _, row := range m.Rows {
		outcome := RowOutcome{Index: row.Index}
		group, err := p.processRow(ctx, row, correlatives[row.Index], stats)
		if err != nil {
			outcome.SkipReason = err.Error()
			stats.Errors = append(stats.Errors, fmt.Sprintf("row %d: %v", row.Index, err))
			slog.Error("row skipped", slog.Int("row", row.Index), slog.Any("err", err))
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}
		outcome.Group = group
		result.Outcomes = append(result.Outcomes, outcome)
		result.Records = append(result.Records, group.Records()...)
	}

	stats.Queries = p.Resolver.Queries()
	stats.FallbackReferences = p.Allocator.Fallbacks()
	return result, nil
}

func (p *Pipeline) processRow(ctx context.Context, row manifest.Row, correlative int64, stats *Stats) (*Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Volume and unit counts use the stated pallet count; the pallet
	// load override applies only to the emitted quantity and weight.
	res := Resolved{
		Name:        p.Resolver.Name(ctx, row.ProductCode),
		Commodity:   p.Resolver.Commodity(ctx, row.ProductCode),
		Priority:    p.Resolver.Priority(ctx, row.Origin, row.Destination),
		Hectoliters: p.Resolver.Hectoliters(ctx, row.ProductCode, row.Pallets),
		Bultos:      p.Resolver.Bultos(ctx, row.ProductCode, row.Pallets),
	}
	stats.countPriority(res.Priority)

	reference := p.Allocator.Next(ctx)
	stats.ReferenceNumbers = append(stats.ReferenceNumbers, reference)

	return p.Expander.Expand(row, res, reference, correlative, stats), nil
}

// RouteCorrelatives computes trip*100 + route rank per row, where the
// rank is the 1-based position of the row's (origin, destination) pair
// within the lexicographically sorted distinct routes of its trip.
// Precomputed in one pass so reprocessing is O(rows log rows).
func RouteCorrelatives(rows []manifest.Row) []int64 {
	type routeSet struct {
		keys []string
		seen map[string]struct{}
	}
	trips := make(map[int64]*routeSet)
	for _, row := range rows {
		rs, ok := trips[row.TripNumber]
		if !ok {
			rs = &routeSet{seen: make(map[string]struct{})}
			trips[row.TripNumber] = rs
		}
		key := routeKey(row)
		if _, dup := rs.seen[key]; !dup {
			rs.seen[key] = struct{}{}
			rs.keys = append(rs.keys, key)
		}
	}

	ranks := make(map[int64]map[string]int64, len(trips))
	for trip, rs := range trips {
		sort.Strings(rs.keys)
		byKey := make(map[string]int64, len(rs.keys))
		for i, key := range rs.keys {
			byKey[key] = int64(i + 1)
		}
		ranks[trip] = byKey
	}

	out := make([]int64, len(rows))
	for i, row := range rows {
		rank := ranks[row.TripNumber][routeKey(row)]
		if rank == 0 {
			rank = 1
		}
		out[i] = row.TripNumber*100 + rank
	}
	return out
}

func routeKey(row manifest.Row) string {
	return fmt.Sprintf("%d-%d", row.Origin, row.Destination)
}

func checkShipmentIdentifiers(rows []manifest.Row) error {
	distinct := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.ShipmentID != "" {
			distinct[row.ShipmentID] = struct{}{}
		}
	}
	if len(distinct) == 0 {
		return fmt.Errorf("manifest has no shipment identifiers")
	}
	// Duplicates against prior runs cannot be detected here; the check
	// only sees the current file.
	slog.Info("shipment identifiers validated", slog.Int("distinct", len(distinct)))
	return nil
}
