package utils

import (
	"math"
	"testing"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{65, "1:05"},
		{math.NaN(), "0:00"},
		{math.Inf(1), "0:00"},
		{-3, "0:00"},
		{9.99, "0:09"},
		{60, "1:00"},
		{3599, "59:59"},
		{3725, "62:05"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContainsSource(t *testing.T) {
	if !ContainsSource("https://cdn.example/a.mp3?t=1", "https://cdn.example/a.mp3") {
		t.Errorf("decorated source should match")
	}
	if ContainsSource("https://cdn.example/a.mp3", "") {
		t.Errorf("empty wanted URL must never match")
	}
	if ContainsSource("", "a.mp3") {
		t.Errorf("empty source must not match")
	}
}

func TestBuildFFmpegHeaders(t *testing.T) {
	if got := BuildFFmpegHeaders(nil); got != "" {
		t.Errorf("expected empty headers, got %q", got)
	}
	got := BuildFFmpegHeaders(map[string]string{"user-agent": "tilawa/1", "Accept": "audio/*"})
	want := "Accept: audio/*\r\nUser-Agent: tilawa/1\r\n"
	if got != want {
		t.Errorf("BuildFFmpegHeaders = %q, want %q", got, want)
	}
}
