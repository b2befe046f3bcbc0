package player

import (
	"errors"
	"io"
	"log/slog"
)

var errRejected = errors.New("playback rejected")

// fakeBuffer mimics a media element: assigning a source and loading resets
// it to paused with an unknown duration.
type fakeBuffer struct {
	slot     int
	src      string
	loadID   uint64
	loads    int
	paused   bool
	position float64
	duration float64
	known    bool
	reject   bool
	plays    int
}

func (b *fakeBuffer) Source() string       { return b.src }
func (b *fakeBuffer) SetSource(url string) { b.src = url }
func (b *fakeBuffer) LoadID() uint64       { return b.loadID }
func (b *fakeBuffer) Paused() bool         { return b.paused }
func (b *fakeBuffer) Position() float64    { return b.position }

func (b *fakeBuffer) Load() {
	b.loadID++
	b.loads++
	b.paused = true
	b.position = 0
	b.known = false
}

func (b *fakeBuffer) Play() error {
	b.plays++
	if b.reject {
		return errRejected
	}
	b.paused = false
	return nil
}

func (b *fakeBuffer) Pause() { b.paused = true }

func (b *fakeBuffer) SetPosition(sec float64) { b.position = sec }

func (b *fakeBuffer) Duration() (float64, bool) { return b.duration, b.known }

// metadata simulates the loadedmetadata event.
func (b *fakeBuffer) metadata(d float64) MediaEvent {
	b.duration = d
	b.known = true
	return MediaEvent{Slot: b.slot, LoadID: b.loadID, Source: b.src, Kind: EventMetadata}
}

// ended simulates natural end of the current resource.
func (b *fakeBuffer) ended() MediaEvent {
	b.paused = true
	return MediaEvent{Slot: b.slot, LoadID: b.loadID, Source: b.src, Kind: EventEnded}
}

type recorder struct {
	reports []Report
	renders int
	resizes int
}

func (r *recorder) Report(rep Report) { r.reports = append(r.reports, rep) }
func (r *recorder) Render(Snapshot)   { r.renders++ }
func (r *recorder) Resize(Snapshot)   { r.resizes++ }

func (r *recorder) last() (Report, bool) {
	if len(r.reports) == 0 {
		return Report{}, false
	}
	return r.reports[len(r.reports)-1], true
}

type harness struct {
	p       *Player
	rec     *recorder
	buffers [2]*fakeBuffer
	created int
}

func newHarness() *harness {
	h := &harness{rec: &recorder{}}
	factory := func(slot int) Buffer {
		h.created++
		b := &fakeBuffer{slot: slot, paused: true}
		h.buffers[slot] = b
		return b
	}
	h.p = NewPlayer(factory, h.rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h
}

func (h *harness) active() *fakeBuffer  { return h.buffers[h.p.buffers.ActiveSlot()] }
func (h *harness) standby() *fakeBuffer { return h.buffers[1-h.p.buffers.ActiveSlot()] }

func flat(urls ...string) Playlist {
	pl := make(Playlist, len(urls))
	for i, u := range urls {
		pl[i] = PlaylistItem{Idx: i}
		if u != "" {
			pl[i].URLs = []string{u}
		}
	}
	return pl
}
