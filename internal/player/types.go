package player

import (
	"bytes"
	"encoding/json"
	"strings"
)

// PlaylistItem is one ayah entry. Labels are display-only; URLs holds the
// ordered sub-tracks (e.g. recitation then translation).
type PlaylistItem struct {
	Idx     int
	Surah   string
	AyahNum string
	Mode    string
	URLs    []string
}

type playlistItemJSON struct {
	Idx     int             `json:"idx"`
	Surah   string          `json:"surah"`
	AyahNum json.RawMessage `json:"ayahNum"`
	Mode    string          `json:"mode"`
	URL     *string         `json:"url"`
	URLs    []string        `json:"urls"`
}

// UnmarshalJSON accepts both the flat shape ({"url": ...}) and the
// multi-sub-track shape ({"urls": [...]}). A flat item becomes a
// one-element list; an empty flat url becomes an item without resources.
func (it *PlaylistItem) UnmarshalJSON(data []byte) error {
	var raw playlistItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = PlaylistItem{
		Idx:     raw.Idx,
		Surah:   raw.Surah,
		AyahNum: labelOf(raw.AyahNum),
		Mode:    raw.Mode,
	}
	switch {
	case raw.URLs != nil:
		it.URLs = raw.URLs
	case raw.URL != nil && *raw.URL != "":
		it.URLs = []string{*raw.URL}
	}
	return nil
}

func (it PlaylistItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Idx     int      `json:"idx"`
		Surah   string   `json:"surah,omitempty"`
		AyahNum string   `json:"ayahNum,omitempty"`
		Mode    string   `json:"mode,omitempty"`
		URLs    []string `json:"urls"`
	}{it.Idx, it.Surah, it.AyahNum, it.Mode, it.URLs})
}

func labelOf(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// Resource returns the sub-track URL at sub, or "" when there is none.
func (it PlaylistItem) Resource(sub int) string {
	if sub < 0 || sub >= len(it.URLs) {
		return ""
	}
	return it.URLs[sub]
}

type Playlist []PlaylistItem

// Resource returns the URL at position c, or "" when c is out of range or
// the position holds no resource.
func (pl Playlist) Resource(c Cursor) string {
	if c.Item < 0 || c.Item >= len(pl) {
		return ""
	}
	return pl[c.Item].Resource(c.Sub)
}

// Report is the value handed back to the host.
type Report struct {
	AyahIndex int  `json:"ayahIndex"`
	IsPlaying bool `json:"isPlaying"`
}

// Snapshot is a read-only copy of engine state used for rendering.
type Snapshot struct {
	Playlist  Playlist
	Cursor    Cursor
	IsPlaying bool
	Source    string
}

// Current returns the item under the cursor, if any.
func (s Snapshot) Current() (PlaylistItem, bool) {
	if s.Cursor.Item < 0 || s.Cursor.Item >= len(s.Playlist) {
		return PlaylistItem{}, false
	}
	return s.Playlist[s.Cursor.Item], true
}

// Progress is the live time display of the active buffer.
type Progress struct {
	Position float64
	Duration float64
	Known    bool
	Playing  bool
}

// Fraction of the active resource already played; 0 when the duration is unknown.
func (p Progress) Fraction() float64 {
	if !p.Known || p.Duration <= 0 {
		return 0
	}
	f := p.Position / p.Duration
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

type EventKind int

const (
	EventMetadata EventKind = iota
	EventEnded
	EventError
	EventPlay
	EventPause
)

func (k EventKind) String() string {
	switch k {
	case EventMetadata:
		return "metadata"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	}
	return "unknown"
}

// MediaEvent is posted by a buffer. Slot and LoadID identify which handle
// and which load produced it, so superseded loads can be told apart.
type MediaEvent struct {
	Slot   int
	LoadID uint64
	Source string
	Kind   EventKind
	Err    error
}
