package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const errorReportCap = 10

// Report renders the run validation report handed back to the operator
// alongside the generated document.
func (r *Result) Report() string {
	s := r.Stats
	var b strings.Builder
	line := strings.Repeat("=", 70)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "SHIPMENT ORDER GENERATION - VALIDATION REPORT")
	fmt.Fprintln(&b, line)

	fmt.Fprintln(&b, "TOTALS:")
	fmt.Fprintf(&b, "  records generated: %d\n", s.TotalRecords)
	fmt.Fprintf(&b, "  header records (H): %d\n", s.HeaderRecords)
	fmt.Fprintf(&b, "  detail records (D): %d\n", s.DetailRecords)
	if s.RatioOK() {
		fmt.Fprintln(&b, "  1:3 header/detail ratio holds")
	} else {
		fmt.Fprintf(&b, "  RATIO MISMATCH - expected %d details, got %d\n", 3*s.HeaderRecords, s.DetailRecords)
	}

	fmt.Fprintln(&b, "MASTER DATA:")
	fmt.Fprintf(&b, "  store lookups: %d\n", s.Queries)
	if s.HeaderRecords > 0 {
		fmt.Fprintf(&b, "  lookups per row: %.1f\n", float64(s.Queries)/float64(s.HeaderRecords))
	}

	fmt.Fprintln(&b, "REFERENCE NUMBERS:")
	fmt.Fprintf(&b, "  issued: %d\n", len(s.ReferenceNumbers))
	if lo, hi, ok := referenceRange(s.ReferenceNumbers); ok {
		fmt.Fprintf(&b, "  range: %d - %d\n", lo, hi)
	}
	if s.FallbackReferences > 0 {
		fmt.Fprintf(&b, "  WALL-CLOCK FALLBACKS: %d (sequence store unavailable)\n", s.FallbackReferences)
	}

	fmt.Fprintln(&b, "PRIORITIES:")
	for _, p := range sortedKeys(s.PriorityCounts) {
		fmt.Fprintf(&b, "  priority %s: %d routes\n", p, s.PriorityCounts[p])
	}

	fmt.Fprintln(&b, "ERRORS:")
	if len(s.Errors) == 0 {
		fmt.Fprintln(&b, "  none")
	} else {
		for i, e := range s.Errors {
			if i == errorReportCap {
				fmt.Fprintf(&b, "  ... and %d more\n", len(s.Errors)-errorReportCap)
				break
			}
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	fmt.Fprintln(&b, line)
	return b.String()
}

func referenceRange(refs []string) (lo, hi int64, ok bool) {
	for _, r := range refs {
		n, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			continue
		}
		if !ok || n < lo {
			lo = n
		}
		if !ok || n > hi {
			hi = n
		}
		ok = true
	}
	return lo, hi, ok
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
