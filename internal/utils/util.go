package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatClock renders a position in seconds as M:SS. Unknown values
// (zero, negative, NaN, Inf) render as 0:00.
func FormatClock(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "0:00"
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ContainsSource compares resource identities the way media elements report
// them: the assigned source may carry decoration (query strings, resolved
// prefixes), so the wanted URL only has to appear inside it.
func ContainsSource(src, want string) bool {
	return want != "" && strings.Contains(src, want)
}
