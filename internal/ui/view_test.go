package ui

import (
	"testing"

	"github.com/sonroyaalmerol/tilawa/internal/player"
)

func TestBuildView(t *testing.T) {
	s := player.Snapshot{
		Playlist: player.Playlist{
			{Surah: "Al-Fatihah", AyahNum: "1", URLs: []string{"a"}},
			{Surah: "Al-Fatihah", AyahNum: "2", Mode: "Arabic + English", URLs: []string{"b"}},
		},
		Cursor:    player.Cursor{Item: 1},
		IsPlaying: true,
	}
	v := BuildView(s, player.Progress{Position: 65, Duration: 130, Known: true, Playing: true}, "")

	if v.Title != "Al-Fatihah : 2" {
		t.Errorf("Title = %q", v.Title)
	}
	if v.Counter != "Ayah 2 of 2" {
		t.Errorf("Counter = %q", v.Counter)
	}
	if v.Mode != "Arabic + English" {
		t.Errorf("Mode = %q", v.Mode)
	}
	if v.PlaylistPct != 100 {
		t.Errorf("PlaylistPct = %v", v.PlaylistPct)
	}
	if v.PlayLabel != "Pause" || !v.HasPrev || v.HasNext {
		t.Errorf("controls = %q prev=%v next=%v", v.PlayLabel, v.HasPrev, v.HasNext)
	}
	if v.Progress.Elapsed != "1:05" || v.Progress.Duration != "2:10" || v.Progress.SeekPct != 50 {
		t.Errorf("progress = %+v", v.Progress)
	}
}

func TestBuildViewEmpty(t *testing.T) {
	v := BuildView(player.Snapshot{}, player.Progress{Position: 3}, "")
	if v.Counter != "Ayah 1 of 1" || v.Mode != DefaultMode || v.PlayLabel != "Play" {
		t.Errorf("view = %+v", v)
	}
	if v.Progress.Duration != "0:00" || v.Progress.SeekPct != 0 {
		t.Errorf("unknown duration shown as %+v", v.Progress)
	}
}

func TestFrameHeight(t *testing.T) {
	v := BuildView(player.Snapshot{}, player.Progress{}, "")
	if got := FrameHeight(v, 8); got != v.Height()+8 {
		t.Errorf("FrameHeight = %d, want %d", got, v.Height()+8)
	}
}
