package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/sonroyaalmerol/tilawa/internal/player"
	"github.com/sonroyaalmerol/tilawa/internal/stream"
)

var (
	ErrNoSource = errors.New("track has no source")
	ErrClosed   = errors.New("track closed")
)

// ClipLoader fetches and decodes one resource.
type ClipLoader interface {
	Load(ctx context.Context, url string) (*stream.Clip, error)
}

// EventSink receives media events. It is called from track goroutines and
// must not call back into the track.
type EventSink func(player.MediaEvent)

// Track is one media element: a source, an asynchronous load and a play
// head on the shared output. It implements player.Buffer.
type Track struct {
	slot   int
	out    Output
	loader ClipLoader
	sink   EventSink
	log    *slog.Logger

	mu       sync.Mutex
	src      string
	loadID   uint64
	cancel   context.CancelFunc
	clip     *stream.Clip
	streamer *clipStreamer
	ctrl     *beep.Ctrl
	gen      uint64 // play generation; callbacks of retired generations are ignored
	paused   bool
	wantPlay bool
	seekTo   float64
	loadErr  error // last failed load; Play retries it
	closed   bool
}

var _ player.Buffer = (*Track)(nil)

func NewTrack(slot int, out Output, loader ClipLoader, sink EventSink, log *slog.Logger) *Track {
	if log == nil {
		log = slog.Default()
	}
	return &Track{
		slot:   slot,
		out:    out,
		loader: loader,
		sink:   sink,
		log:    log.With("slot", slot),
		paused: true,
	}
}

func (t *Track) Source() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.src
}

func (t *Track) LoadID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadID
}

func (t *Track) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// SetSource assigns url and abandons whatever was loaded or loading.
// Nothing is fetched until Load.
func (t *Track) SetSource(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.src = url
	t.reset()
}

// reset drops the current clip and playback. Called with t.mu held.
func (t *Track) reset() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.retire()
	t.clip = nil
	t.streamer = nil
	t.paused = true
	t.wantPlay = false
	t.seekTo = 0
	t.loadErr = nil
}

// retire silences the queued play head, if any. Called with t.mu held.
func (t *Track) retire() {
	if t.ctrl == nil {
		return
	}
	t.gen++
	t.out.Lock()
	t.ctrl.Streamer = nil
	t.ctrl.Paused = false
	t.out.Unlock()
	t.ctrl = nil
}

// Load starts fetching the current source. Every call gets a new load id;
// events of earlier loads carry their old id.
func (t *Track) Load() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.reset()
	if t.src == "" {
		t.loadID++
		return
	}
	t.startLoad()
}

// startLoad fetches t.src under a new load id. Called with t.mu held.
func (t *Track) startLoad() {
	t.loadID++
	t.loadErr = nil
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.load(ctx, t.loadID, t.src)
}

func (t *Track) load(ctx context.Context, id uint64, src string) {
	clip, err := t.loader.Load(ctx, src)
	if ctx.Err() != nil {
		return
	}

	t.mu.Lock()
	if id != t.loadID || t.closed {
		t.mu.Unlock()
		return
	}
	t.cancel = nil
	if err != nil {
		t.loadErr = err
		t.paused = true
		t.wantPlay = false
		t.mu.Unlock()
		t.post(player.MediaEvent{Slot: t.slot, LoadID: id, Source: src, Kind: player.EventError, Err: err})
		return
	}

	t.clip = clip
	t.streamer = newClipStreamer(clip)
	if t.seekTo > 0 {
		_ = t.streamer.Seek(t.frameAt(t.seekTo))
		t.seekTo = 0
	}
	started := false
	if t.wantPlay {
		t.start()
		started = true
	}
	t.mu.Unlock()

	t.log.Debug("track loaded", "src", src, "duration", clip.Duration())
	t.post(player.MediaEvent{Slot: t.slot, LoadID: id, Source: src, Kind: player.EventMetadata})
	if started {
		t.post(player.MediaEvent{Slot: t.slot, LoadID: id, Source: src, Kind: player.EventPlay})
	}
}

func (t *Track) post(ev player.MediaEvent) {
	if t.sink != nil {
		t.sink(ev)
	}
}

// Play starts or resumes playback. Before the clip is ready the request is
// remembered and honored when loading finishes; if the last load failed, or
// none was started, Play fetches the source again.
func (t *Track) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.closed:
		return ErrClosed
	case t.src == "":
		return ErrNoSource
	}
	t.paused = false
	if t.streamer == nil {
		t.wantPlay = true
		if t.cancel == nil {
			if t.loadErr != nil {
				t.log.Debug("retrying failed load", "src", t.src, "err", t.loadErr)
			}
			t.startLoad()
		}
		return nil
	}
	t.start()
	return nil
}

// start queues or resumes the play head. Called with t.mu held and a clip present.
func (t *Track) start() {
	t.wantPlay = false
	t.paused = false
	if t.ctrl != nil {
		t.out.Lock()
		t.ctrl.Paused = false
		t.out.Unlock()
		return
	}

	t.out.Lock()
	if t.streamer.Position() >= t.streamer.Len() {
		_ = t.streamer.Seek(0)
	}
	t.out.Unlock()

	var s beep.Streamer = t.streamer
	if rate := beep.SampleRate(t.clip.SampleRate); rate != t.out.SampleRate() {
		s = beep.Resample(4, rate, t.out.SampleRate(), s)
	}
	t.gen++
	gen := t.gen
	t.ctrl = &beep.Ctrl{Streamer: s}
	t.out.Play(beep.Seq(t.ctrl, beep.Callback(func() {
		// The output holds its lock while running callbacks.
		go t.ended(gen)
	})))
}

func (t *Track) ended(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.closed {
		t.mu.Unlock()
		return
	}
	t.ctrl = nil
	t.paused = true
	ev := player.MediaEvent{Slot: t.slot, LoadID: t.loadID, Source: t.src, Kind: player.EventEnded}
	t.mu.Unlock()
	t.post(ev)
}

func (t *Track) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
	t.wantPlay = false
	if t.ctrl != nil {
		t.out.Lock()
		t.ctrl.Paused = true
		t.out.Unlock()
	}
}

func (t *Track) frameAt(sec float64) int {
	n := int(sec * float64(t.clip.SampleRate))
	if n < 0 {
		return 0
	}
	if n > len(t.clip.Frames) {
		return len(t.clip.Frames)
	}
	return n
}

// Position is the play head in seconds.
func (t *Track) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.streamer == nil {
		return t.seekTo
	}
	t.out.Lock()
	pos := t.streamer.Position()
	t.out.Unlock()
	return float64(pos) / float64(t.clip.SampleRate)
}

func (t *Track) SetPosition(sec float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.streamer == nil {
		t.seekTo = sec
		return
	}
	t.out.Lock()
	_ = t.streamer.Seek(t.frameAt(sec))
	t.out.Unlock()
}

// Duration is known once the clip has been decoded.
func (t *Track) Duration() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clip == nil {
		return 0, false
	}
	return t.clip.Seconds(), true
}

// Close stops playback and abandons any load in flight.
func (t *Track) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.reset()
	t.closed = true
	return nil
}
