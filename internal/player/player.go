package player

import (
	"io"
	"log/slog"
)

// Observer receives everything the engine wants the host to see.
type Observer interface {
	// Report carries notify-worthy state changes (the host's value).
	Report(Report)
	// Render is called after every state mutation so views can redraw.
	Render(Snapshot)
	// Resize is called once per applied external state.
	Resize(Snapshot)
}

// Player is the gapless playback engine of one component instance.
//
// It is not safe for concurrent use: every method must be called from the
// goroutine that owns the instance. Buffers report back through MediaEvents
// delivered by that same goroutine.
type Player struct {
	log      *slog.Logger
	observer Observer
	factory  BufferFactory

	playlist Playlist
	cursor   Cursor
	playing  bool // intent; may run ahead of the buffer when a start is rejected
	buffers  bufferPair
}

func NewPlayer(factory BufferFactory, observer Observer, log *slog.Logger) *Player {
	if log == nil {
		log = slog.Default()
	}
	return &Player{
		log:      log,
		observer: observer,
		factory:  factory,
	}
}

func (p *Player) ensureBuffers() {
	if p.buffers.ready() {
		return
	}
	p.buffers.ensure(p.factory)
	p.log.Debug("audio buffers created")
}

// Snapshot copies the state the views need.
func (p *Player) Snapshot() Snapshot {
	s := Snapshot{
		Playlist:  p.playlist,
		Cursor:    p.cursor,
		IsPlaying: p.playing,
	}
	if p.buffers.ready() {
		s.Source = p.buffers.Active().Source()
	}
	return s
}

func (p *Player) Cursor() Cursor { return p.cursor }

func (p *Player) Playlist() Playlist { return p.playlist }

func (p *Player) IsPlaying() bool { return p.playing }

func (p *Player) ActiveSource() string {
	if !p.buffers.ready() {
		return ""
	}
	return p.buffers.Active().Source()
}

func (p *Player) StandbySource() string {
	if !p.buffers.ready() {
		return ""
	}
	return p.buffers.Standby().Source()
}

// Progress reads the live position of the active buffer.
func (p *Player) Progress() Progress {
	if !p.buffers.ready() {
		return Progress{}
	}
	active := p.buffers.Active()
	dur, ok := active.Duration()
	return Progress{
		Position: active.Position(),
		Duration: dur,
		Known:    ok,
		Playing:  !active.Paused(),
	}
}

// startPlayback asks b to play. A rejected start is dropped here and only
// here: the intent flag keeps what was requested and the next user action
// or host render reconciles it.
func (p *Player) startPlayback(b Buffer) {
	if err := b.Play(); err != nil {
		p.log.Debug("playback start rejected", "src", b.Source(), "err", err)
	}
}

func (p *Player) report() {
	if p.observer != nil {
		p.observer.Report(Report{AyahIndex: p.cursor.Item, IsPlaying: p.playing})
	}
}

func (p *Player) render() {
	if p.observer != nil {
		p.observer.Render(p.Snapshot())
	}
}

// HandleMediaEvent applies an event posted by one of the buffers. The
// on-end handler belongs to the active role: events from the standby slot
// never advance playback, and events from a superseded load are dropped.
func (p *Player) HandleMediaEvent(ev MediaEvent) {
	if !p.buffers.ready() {
		return
	}
	if ev.Slot != p.buffers.ActiveSlot() {
		if ev.Kind == EventError {
			p.dropFailedPreload(ev)
		}
		return
	}
	active := p.buffers.Active()
	if ev.LoadID != active.LoadID() || ev.Source != active.Source() {
		p.log.Debug("stale media event", "kind", ev.Kind, "src", ev.Source, "loadID", ev.LoadID)
		return
	}

	switch ev.Kind {
	case EventEnded:
		if expected := p.playlist.Resource(p.cursor); !sameResource(ev.Source, expected) {
			p.log.Debug("ended event does not match cursor", "src", ev.Source, "expected", expected)
			return
		}
		p.advance()
	case EventError:
		p.log.Warn("media load failed", "src", ev.Source, "err", ev.Err)
		p.render()
	default:
		p.render()
	}
}

// dropFailedPreload clears the standby source after its load failed, so the
// next advance reloads the target on the active buffer instead of swapping
// onto a buffer with nothing to play.
func (p *Player) dropFailedPreload(ev MediaEvent) {
	standby := p.buffers.Standby()
	if ev.LoadID != standby.LoadID() || ev.Source != standby.Source() {
		return
	}
	p.log.Warn("preload failed", "src", ev.Source, "err", ev.Err)
	standby.SetSource("")
}

// Close releases buffers that hold resources. The player must not be used afterwards.
func (p *Player) Close() error {
	var first error
	for _, b := range p.buffers.slots {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
