package player

import (
	"math"
	"strings"

	"github.com/samber/lo"
)

const (
	stripKnob  = "●"
	stripTrack = "─"
)

// unit clamps f into [0, 1]; NaN counts as 0.
func unit(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return lo.Clamp(f, 0, 1)
}

// ProgressBar draws the seek strip as width text cells with the knob at
// progress (0..1). It is the text rendition of the strip SeekFraction reads
// clicks from.
func ProgressBar(width int, progress float64) string {
	if width <= 0 {
		return ""
	}
	knob := min(int(float64(width)*unit(progress)), width-1)
	return strings.Repeat(stripTrack, knob) + stripKnob + strings.Repeat(stripTrack, width-knob-1)
}

// SeekFraction converts a click on the seek strip into a 0..1 fraction.
func SeekFraction(x, left, width float64) float64 {
	if width <= 0 {
		return 0
	}
	return unit((x - left) / width)
}
