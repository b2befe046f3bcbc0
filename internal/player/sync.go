package player

import (
	"math"

	"github.com/samber/lo"
)

// ApplyExternalState reconciles the engine with a render command from the
// host. Re-delivering the same state is a no-op for the buffers; the first
// delivery always loads, even though the cursor already sits at (0,0).
func (p *Player) ApplyExternalState(pl Playlist, startIndex int, wantPlaying bool) {
	p.playlist = pl
	p.ensureBuffers()

	start := 0
	if len(pl) > 0 {
		start = lo.Clamp(startIndex, 0, len(pl)-1)
	}

	active := p.buffers.Active()
	prev := active.Source()
	target := pl.Resource(Cursor{Item: start})

	// While the held item is unchanged the active buffer may legitimately be
	// on a later sub-track of it, so compare against the cursor's resource.
	expected := target
	if p.cursor.Item == start {
		if r := pl.Resource(p.cursor); r != "" {
			expected = r
		}
	}

	reload := p.cursor.Item != start || prev == "" || (expected != "" && !sameResource(prev, expected))
	if reload {
		p.cursor = Cursor{Item: start}
		if target != "" {
			active.SetSource(target)
			active.Load()
		}
		p.log.Debug("render reload", "item", start, "src", target)
	} else if pl.Resource(p.cursor) == "" {
		p.cursor.Sub = 0
	}

	p.schedulePreload()

	if wantPlaying && active.Paused() {
		p.startPlayback(active)
	}
	if !wantPlaying && !active.Paused() {
		active.Pause()
	}
	p.playing = wantPlaying

	p.render()
	if p.observer != nil {
		p.observer.Resize(p.Snapshot())
	}
}

// RequestJump moves to the first sub-track of item. Out-of-range requests
// are ignored without a report; every accepted jump reports.
func (p *Player) RequestJump(item int, autoplay bool) {
	if item < 0 || item >= len(p.playlist) {
		return
	}
	p.ensureBuffers()
	p.cursor.SetPosition(p.playlist, item)

	active := p.buffers.Active()
	if url := p.playlist.Resource(p.cursor); url != "" {
		active.SetSource(url)
		active.Load()
		if autoplay {
			p.startPlayback(active)
			p.playing = true
		}
	}

	p.schedulePreload()
	p.report()
	p.render()
}

func (p *Player) RequestPrevious() { p.RequestJump(p.cursor.Item-1, true) }

func (p *Player) RequestNext() { p.RequestJump(p.cursor.Item+1, true) }

// RequestTogglePlay flips the active buffer between playing and paused.
func (p *Player) RequestTogglePlay() {
	p.ensureBuffers()
	active := p.buffers.Active()
	if active.Paused() {
		p.startPlayback(active)
		p.playing = true
	} else {
		active.Pause()
		p.playing = false
	}
	p.report()
	p.render()
}

// RequestSeek moves the active buffer to fraction (0..1) of its duration.
// Nothing happens until the duration is known.
func (p *Player) RequestSeek(fraction float64) {
	if !p.buffers.ready() || math.IsNaN(fraction) {
		return
	}
	active := p.buffers.Active()
	dur, ok := active.Duration()
	if !ok || dur <= 0 || math.IsNaN(dur) || math.IsInf(dur, 0) {
		return
	}
	active.SetPosition(lo.Clamp(fraction, 0, 1) * dur)
}
