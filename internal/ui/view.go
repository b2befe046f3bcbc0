package ui

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/sonroyaalmerol/tilawa/internal/player"
	"github.com/sonroyaalmerol/tilawa/internal/utils"
)

const DefaultMode = "Arabic (Mishary Rashid)"

// Row heights of the rendered widget, in pixels.
const (
	padTop      = 12
	headerRow   = 24
	seekRow     = 22
	controlsRow = 40
	padBottom   = 10
)

const barWidth = 20

// ProgressView is the live time display under the header.
type ProgressView struct {
	Elapsed  string  `json:"elapsed"`
	Duration string  `json:"duration"`
	SeekPct  float64 `json:"seekPct"`
	Bar      string  `json:"bar"`
	Playing  bool    `json:"playing"`
}

// View is everything the widget shows.
type View struct {
	Title       string       `json:"title"`
	Counter     string       `json:"counter"`
	Mode        string       `json:"mode"`
	PlaylistPct float64      `json:"playlistPct"`
	PlayLabel   string       `json:"playLabel"`
	HasPrev     bool         `json:"hasPrev"`
	HasNext     bool         `json:"hasNext"`
	Progress    ProgressView `json:"progress"`
}

func BuildProgress(p player.Progress) ProgressView {
	dur := 0.0
	if p.Known {
		dur = p.Duration
	}
	return ProgressView{
		Elapsed:  utils.FormatClock(p.Position),
		Duration: utils.FormatClock(dur),
		SeekPct:  p.Fraction() * 100,
		Bar:      player.ProgressBar(barWidth, p.Fraction()),
		Playing:  p.Playing,
	}
}

// BuildView renders a snapshot. An empty playlist shows as one blank ayah.
func BuildView(s player.Snapshot, p player.Progress, defaultMode string) View {
	if defaultMode == "" {
		defaultMode = DefaultMode
	}
	item, _ := s.Current()
	total := max(len(s.Playlist), 1)

	return View{
		Title:       fmt.Sprintf("%s : %s", item.Surah, item.AyahNum),
		Counter:     fmt.Sprintf("Ayah %d of %d", s.Cursor.Item+1, total),
		Mode:        lo.Ternary(item.Mode != "", item.Mode, defaultMode),
		PlaylistPct: float64(s.Cursor.Item+1) / float64(total) * 100,
		PlayLabel:   lo.Ternary(s.IsPlaying, "Pause", "Play"),
		HasPrev:     s.Cursor.Item > 0,
		HasNext:     s.Cursor.Item+1 < len(s.Playlist),
		Progress:    BuildProgress(p),
	}
}

// Height is the rendered content height in pixels.
func (v View) Height() int {
	return padTop + headerRow + seekRow + controlsRow + padBottom
}

// FrameHeight is what the layout notification asks the host for.
func FrameHeight(v View, margin int) int {
	return v.Height() + margin
}
