package pipeline

import "strconv"

// Stats accumulates run-scoped validation counters. One instance is
// created per Run and returned with the result; nothing here is shared
// across runs or kept in package state.
type Stats struct {
	TotalRecords  int
	HeaderRecords int
	DetailRecords int

	// PriorityCounts histograms resolved priorities by decimal value.
	PriorityCounts map[string]int

	// ReferenceNumbers lists every reference issued, in order.
	ReferenceNumbers []string

	// Queries is the master-data lookup count, taken from the resolver
	// when the run completes.
	Queries int64

	// FallbackReferences counts allocations served by the wall-clock
	// fallback instead of the persisted sequence.
	FallbackReferences int64

	// Errors holds one entry per skipped row.
	Errors []string
}

func NewStats() *Stats {
	return &Stats{PriorityCounts: make(map[string]int)}
}

func (s *Stats) countPriority(p int64) {
	s.PriorityCounts[strconv.FormatInt(p, 10)]++
}

// RatioOK reports whether the fixed 1 header : 3 details expansion held.
func (s *Stats) RatioOK() bool {
	return s.DetailRecords == 3*s.HeaderRecords
}
