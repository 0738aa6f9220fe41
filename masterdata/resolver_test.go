package masterdata

import (
	"context"
	"errors"
	"testing"
)

type fakeLookup struct {
	products   map[int64]*ProductRecord
	packaging  map[int64]*PackagingRecord
	priorities map[string]int64
	fail       bool
}

func (f *fakeLookup) Product(_ context.Context, code int64) (*ProductRecord, error) {
	if f.fail {
		return nil, errors.New("store down")
	}
	return f.products[code], nil
}

func (f *fakeLookup) Packaging(_ context.Context, code int64) (*PackagingRecord, error) {
	if f.fail {
		return nil, errors.New("store down")
	}
	return f.packaging[code], nil
}

func (f *fakeLookup) Priority(_ context.Context, routeKey string) (int64, bool, error) {
	if f.fail {
		return 0, false, errors.New("store down")
	}
	p, ok := f.priorities[routeKey]
	return p, ok, nil
}

func newTestResolver(f *fakeLookup) *Resolver {
	return NewResolver(f, f, "BO")
}

func TestNameFallbackChain(t *testing.T) {
	f := &fakeLookup{
		products:  map[int64]*ProductRecord{2001: {Name: "PILSENER 620"}},
		packaging: map[int64]*PackagingRecord{1100: {Description: "PALLET MADERA"}},
	}
	r := newTestResolver(f)
	ctx := context.Background()

	if got := r.Name(ctx, 2001); got != "PILSENER 620" {
		t.Fatalf("primary name: %q", got)
	}
	if got := r.Name(ctx, 1100); got != "PALLET MADERA" {
		t.Fatalf("secondary name: %q", got)
	}
	if got := r.Name(ctx, 42); got != "PRODUCTO_42" {
		t.Fatalf("default name: %q", got)
	}
}

func TestCommodityDefault(t *testing.T) {
	f := &fakeLookup{products: map[int64]*ProductRecord{
		2001: {Name: "A", Commodity: "BO_CV"},
		2002: {Name: "B"},
	}}
	r := newTestResolver(f)
	ctx := context.Background()

	if got := r.Commodity(ctx, 2001); got != "BO_CV" {
		t.Fatalf("stored commodity: %q", got)
	}
	if got := r.Commodity(ctx, 2002); got != DefaultCommodity {
		t.Fatalf("empty commodity should default: %q", got)
	}
	if got := r.Commodity(ctx, 9999); got != DefaultCommodity {
		t.Fatalf("unknown code should default: %q", got)
	}
}

func TestPrioritySymmetry(t *testing.T) {
	f := &fakeLookup{priorities: map[string]int64{"BO_10-BO_20": 3}}
	r := newTestResolver(f)
	ctx := context.Background()

	if got := r.Priority(ctx, 10, 20); got != 3 {
		t.Fatalf("forward priority: %d", got)
	}
	if got := r.Priority(ctx, 20, 10); got != 3 {
		t.Fatalf("reverse priority: %d", got)
	}
	if got := r.Priority(ctx, 1, 2); got != DefaultPriority {
		t.Fatalf("unknown route priority: %d", got)
	}
}

func TestVolumeAndUnits(t *testing.T) {
	f := &fakeLookup{
		products:  map[int64]*ProductRecord{2001: {Name: "A", HLPerPallet: 7.4412, BultosPerPallet: 60}},
		packaging: map[int64]*PackagingRecord{1100: {Description: "P", HLPerPallet: 1.5, BultosPerPallet: 24}},
	}
	r := newTestResolver(f)
	ctx := context.Background()

	if got := r.Hectoliters(ctx, 2001, 3); got != 22.3236 {
		t.Fatalf("hectoliters: %v", got)
	}
	if got := r.Bultos(ctx, 2001, 3); got != 180 {
		t.Fatalf("bultos: %d", got)
	}
	// Packaging fallback.
	if got := r.Hectoliters(ctx, 1100, 2); got != 3 {
		t.Fatalf("packaging hectoliters: %v", got)
	}
	if got := r.Bultos(ctx, 1100, 2); got != 48 {
		t.Fatalf("packaging bultos: %d", got)
	}
	// Unknown code.
	if got := r.Hectoliters(ctx, 5, 2); got != 0 {
		t.Fatalf("unknown hectoliters: %v", got)
	}
	if got := r.Bultos(ctx, 5, 2); got != 0 {
		t.Fatalf("unknown bultos: %d", got)
	}
}

func TestLookupFailureDegradesToDefaults(t *testing.T) {
	r := newTestResolver(&fakeLookup{fail: true})
	ctx := context.Background()

	if got := r.Name(ctx, 7); got != "PRODUCTO_7" {
		t.Fatalf("name under failure: %q", got)
	}
	if got := r.Commodity(ctx, 7); got != DefaultCommodity {
		t.Fatalf("commodity under failure: %q", got)
	}
	if got := r.Priority(ctx, 1, 2); got != DefaultPriority {
		t.Fatalf("priority under failure: %d", got)
	}
	if got := r.Hectoliters(ctx, 7, 4); got != 0 {
		t.Fatalf("hectoliters under failure: %v", got)
	}
}

func TestProductCacheAvoidsRepeatLookups(t *testing.T) {
	f := &fakeLookup{products: map[int64]*ProductRecord{2001: {Name: "A", Commodity: "BO_CV"}}}
	r := newTestResolver(f)
	ctx := context.Background()

	r.Name(ctx, 2001)
	after := r.Queries()
	r.Commodity(ctx, 2001)
	r.Name(ctx, 2001)
	if r.Queries() != after {
		t.Fatalf("expected cached product, queries went %d -> %d", after, r.Queries())
	}
}
