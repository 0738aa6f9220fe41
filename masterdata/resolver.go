package masterdata

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
)

// DefaultCommodity is used when the product master has no commodity code.
const DefaultCommodity = "BO_BR"

// DefaultPriority is returned when neither route direction is known.
const DefaultPriority int64 = 1

// ProductRecord is one row of the product master. Zero-valued rate fields
// mean "not maintained" and fall through to the packaging master.
type ProductRecord struct {
	Name            string
	Commodity       string
	HLPerPallet     float64
	BultosPerPallet int64
}

// PackagingRecord is one row of the packaging master.
type PackagingRecord struct {
	Description     string
	HLPerPallet     float64
	BultosPerPallet int64
}

// ProductLookup resolves product and packaging master rows.
// Implementations return (nil, nil) when the code is unknown.
type ProductLookup interface {
	Product(ctx context.Context, code int64) (*ProductRecord, error)
	Packaging(ctx context.Context, code int64) (*PackagingRecord, error)
}

// PriorityLookup resolves a directional route key to a priority.
type PriorityLookup interface {
	Priority(ctx context.Context, routeKey string) (int64, bool, error)
}

// Resolver answers per-row master data questions with the fixed fallback
// chain: product master, then packaging master, then a constant default.
// Lookup failures degrade to the default and are logged, never raised.
//
// A Resolver is scoped to one pipeline run; its cache is not shared
// across runs.
type Resolver struct {
	products   ProductLookup
	priorities PriorityLookup
	country    string

	mu       sync.RWMutex
	prodByID map[int64]*ProductRecord
	packByID map[int64]*PackagingRecord
	queries  int64
}

// NewResolver builds a run-scoped resolver. country prefixes route keys
// ("BO" yields keys like "BO_10-BO_20").
func NewResolver(products ProductLookup, priorities PriorityLookup, country string) *Resolver {
	return &Resolver{
		products:   products,
		priorities: priorities,
		country:    country,
		prodByID:   make(map[int64]*ProductRecord),
		packByID:   make(map[int64]*PackagingRecord),
	}
}

// Queries reports how many store lookups were issued so far.
func (r *Resolver) Queries() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.queries
}

// Name resolves the display name for a product code.
func (r *Resolver) Name(ctx context.Context, code int64) string {
	if p := r.product(ctx, code); p != nil && p.Name != "" {
		return p.Name
	}
	if pk := r.packaging(ctx, code); pk != nil && pk.Description != "" {
		return pk.Description
	}
	return fmt.Sprintf("PRODUCTO_%d", code)
}

// Commodity resolves the commodity class for a product code.
func (r *Resolver) Commodity(ctx context.Context, code int64) string {
	if p := r.product(ctx, code); p != nil && p.Commodity != "" {
		return p.Commodity
	}
	return DefaultCommodity
}

// Priority resolves the route priority for an (origin, destination) pair.
// The lookup is symmetric: the forward key is tried first, then the
// reversed key, then the default.
func (r *Resolver) Priority(ctx context.Context, origin, destination int64) int64 {
	forward := r.RouteKey(origin, destination)
	reverse := r.RouteKey(destination, origin)
	for _, key := range []string{forward, reverse} {
		r.countQuery()
		priority, found, err := r.priorities.Priority(ctx, key)
		if err != nil {
			slog.Error("priority lookup failed", slog.String("route", key), slog.Any("err", err))
			continue
		}
		if found {
			return priority
		}
	}
	return DefaultPriority
}

// Hectoliters computes the shipment volume: per-pallet rate times pallet
// count, rounded to 4 decimal places. Unknown codes yield 0.
func (r *Resolver) Hectoliters(ctx context.Context, code, pallets int64) float64 {
	if p := r.product(ctx, code); p != nil && p.HLPerPallet > 0 {
		return round4(p.HLPerPallet * float64(pallets))
	}
	if pk := r.packaging(ctx, code); pk != nil && pk.HLPerPallet > 0 {
		return round4(pk.HLPerPallet * float64(pallets))
	}
	return 0
}

// Bultos computes the packed-unit count: per-pallet rate times pallet
// count, truncated to an integer. Unknown codes yield 0.
func (r *Resolver) Bultos(ctx context.Context, code, pallets int64) int64 {
	if p := r.product(ctx, code); p != nil && p.BultosPerPallet > 0 {
		return p.BultosPerPallet * pallets
	}
	if pk := r.packaging(ctx, code); pk != nil && pk.BultosPerPallet > 0 {
		return pk.BultosPerPallet * pallets
	}
	return 0
}

// RouteKey formats the directional lane key stored in the route master.
func (r *Resolver) RouteKey(origin, destination int64) string {
	return fmt.Sprintf("%s_%d-%s_%d", r.country, origin, r.country, destination)
}

func (r *Resolver) product(ctx context.Context, code int64) *ProductRecord {
	r.mu.RLock()
	p, ok := r.prodByID[code]
	r.mu.RUnlock()
	if ok {
		return p
	}

	r.countQuery()
	p, err := r.products.Product(ctx, code)
	if err != nil {
		slog.Error("product lookup failed", slog.Int64("code", code), slog.Any("err", err))
		return nil
	}
	r.mu.Lock()
	r.prodByID[code] = p
	r.mu.Unlock()
	return p
}

func (r *Resolver) packaging(ctx context.Context, code int64) *PackagingRecord {
	r.mu.RLock()
	pk, ok := r.packByID[code]
	r.mu.RUnlock()
	if ok {
		return pk
	}

	r.countQuery()
	pk, err := r.products.Packaging(ctx, code)
	if err != nil {
		slog.Error("packaging lookup failed", slog.Int64("code", code), slog.Any("err", err))
		return nil
	}
	r.mu.Lock()
	r.packByID[code] = pk
	r.mu.Unlock()
	return pk
}

func (r *Resolver) countQuery() {
	r.mu.Lock()
	r.queries++
	r.mu.Unlock()
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
