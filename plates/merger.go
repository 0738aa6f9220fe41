package plates

import (
	"sort"
	"strings"
)

// Merge unions plate lists in argument order, keeping the first entry
// per plate+origin. Earlier sources win, so callers pass the manifest
// source before the availability workbook. The result is sorted by
// origin, then plate.
func Merge(sources ...[]Entry) []Entry {
	seen := make(map[string]struct{})
	var out []Entry
	for _, src := range sources {
		for _, e := range src {
			key := dedupKey(e)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Origin != out[j].Origin {
			return out[i].Origin < out[j].Origin
		}
		return out[i].Plate < out[j].Plate
	})
	return out
}

// Plates differing only in letter case are the same truck; origins keep
// their case but lose surrounding whitespace.
func dedupKey(e Entry) string {
	return strings.ToUpper(e.Plate) + "_" + strings.TrimSpace(e.Origin)
}
