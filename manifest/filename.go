package manifest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Filename date patterns, tried in order; the planners name their files
// three different ways depending on the program.
var (
	sdPattern      = regexp.MustCompile(`Programa_SD_(\d{1,2})_(\d{1,2})_\d{4}_`)
	cbPattern      = regexp.MustCompile(`Envíos\s+CBs?\s+(\d{1,2})-(\d{1,2})`)
	genericPattern = regexp.MustCompile(`(\d{1,2})_(\d{1,2})`)
)

// ExtractDate pulls zero-padded (month, day) out of a manifest filename.
// A pattern match with an out-of-range day or month is discarded and the
// next pattern is tried. ok is false when nothing usable matched.
func ExtractDate(path string) (month, day string, ok bool) {
	name := filepath.Base(path)
	for _, p := range []*regexp.Regexp{sdPattern, cbPattern, genericPattern} {
		m := p.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		d, err1 := strconv.Atoi(m[1])
		mo, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || d < 1 || d > 31 || mo < 1 || mo > 12 {
			continue
		}
		return fmt.Sprintf("%02d", mo), fmt.Sprintf("%02d", d), true
	}
	return "", "", false
}

// ExtractDateOrNow is ExtractDate with the documented current-date fallback.
func ExtractDateOrNow(path string, now time.Time) (month, day string) {
	if m, d, ok := ExtractDate(path); ok {
		return m, d
	}
	return now.Format("01"), now.Format("02")
}

// FileType classifies a manifest by name and yields its TMS plan ID and
// output folder layout ("<type>/<month>/<day>").
type FileType struct {
	Name   string
	PlanID string
}

// DetectFileType classifies Beer/SD/CB programs; anything else is General.
func DetectFileType(path string) FileType {
	name := strings.ToUpper(filepath.Base(path))
	switch {
	case strings.Contains(name, "BEER"):
		return FileType{Name: "Beer", PlanID: "5001"}
	case strings.Contains(name, "SD"):
		return FileType{Name: "SD", PlanID: "5002"}
	case strings.Contains(name, "CB"):
		return FileType{Name: "CB", PlanID: "5003"}
	default:
		return FileType{Name: "General", PlanID: "5001"}
	}
}

// DestinationFolder is "<type>/<month>/<day>" relative to the output root.
func DestinationFolder(ft FileType, month, day string) string {
	return filepath.Join(ft.Name, month, day)
}
