package sequence

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Seed is the first reference number issued when the counter is empty.
const Seed int64 = 11111

// fallbackPrefix marks wall-clock fallback references in the output so
// they are distinguishable from sequence numbers in logs and documents.
const fallbackPrefix = "11"

// Store persists the external reference counter.
//
// Next performs a read-increment-write and is expected to clean up any
// transaction state a previously failed call left behind. The contract
// does not promise cross-process atomicity: two independent runs against
// the same store can race and issue the same number.
type Store interface {
	Next(ctx context.Context) (int64, error)
}

// Allocator issues externally sequential reference numbers, one per
// shipment header. Storage failures never fail the caller; they degrade
// to a probabilistically unique wall-clock reference.
type Allocator struct {
	store Store
	now   func() time.Time

	fallbacks int64
}

func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store, now: time.Now}
}

// Next returns the next reference number as a string.
func (a *Allocator) Next(ctx context.Context) string {
	n, err := a.store.Next(ctx)
	if err != nil {
		ref := FallbackReference(a.now())
		a.fallbacks++
		slog.Warn("sequence store unavailable, issuing wall-clock fallback reference",
			slog.String("reference", ref), slog.Any("err", err))
		return ref
	}
	return strconv.FormatInt(n, 10)
}

// Fallbacks reports how many references were issued by the fallback
// generator instead of the persisted sequence.
func (a *Allocator) Fallbacks() int64 {
	return a.fallbacks
}

// FallbackReference builds the fixed-width wall-clock reference:
// the prefix followed by HHMMSS and the first four microsecond digits.
func FallbackReference(t time.Time) string {
	stamp := t.Format("150405") + fmt.Sprintf("%06d", t.Nanosecond()/1000)
	return fallbackPrefix + stamp[:10]
}
