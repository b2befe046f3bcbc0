package player

import (
	"math"
	"testing"
	"unicode/utf8"
)

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0, 0.5); got != "" {
		t.Errorf("zero width = %q", got)
	}
	if got := ProgressBar(4, 0); got != "●───" {
		t.Errorf("start = %q", got)
	}
	if got := ProgressBar(4, 1); got != "───●" {
		t.Errorf("end = %q", got)
	}
	if n := utf8.RuneCountInString(ProgressBar(20, 0.37)); n != 20 {
		t.Errorf("rune count = %d", n)
	}
	if got := ProgressBar(4, 0.5); got != "──●─" {
		t.Errorf("middle = %q", got)
	}
	if got := ProgressBar(3, math.NaN()); got != "●──" {
		t.Errorf("NaN progress = %q", got)
	}
	if got := ProgressBar(3, -2); got != "●──" {
		t.Errorf("negative progress = %q", got)
	}
}

func TestSeekFraction(t *testing.T) {
	tests := []struct {
		x, left, width, want float64
	}{
		{150, 100, 200, 0.25},
		{50, 100, 200, 0},
		{400, 100, 200, 1},
		{10, 0, 0, 0},
		{math.NaN(), 0, 10, 0},
	}
	for _, tt := range tests {
		if got := SeekFraction(tt.x, tt.left, tt.width); got != tt.want {
			t.Errorf("SeekFraction(%v,%v,%v) = %v, want %v", tt.x, tt.left, tt.width, got, tt.want)
		}
	}
}
