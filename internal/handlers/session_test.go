package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sonroyaalmerol/tilawa/internal/config"
	"github.com/sonroyaalmerol/tilawa/internal/host"
	"github.com/sonroyaalmerol/tilawa/internal/media"
	"github.com/sonroyaalmerol/tilawa/internal/player"
	"github.com/sonroyaalmerol/tilawa/internal/ui"
)

type memChannel struct {
	mu      sync.Mutex
	handler func(host.Inbound)
	sent    chan host.Outbound
	ready   chan struct{}
}

func newMemChannel() *memChannel {
	return &memChannel{sent: make(chan host.Outbound, 128), ready: make(chan struct{})}
}

func (c *memChannel) Send(ctx context.Context, m host.Outbound) error {
	c.sent <- m
	return nil
}

func (c *memChannel) OnReceive(h func(host.Inbound)) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
	close(c.ready)
}

func (c *memChannel) inject(t *testing.T, raw string) {
	t.Helper()
	m, err := host.DecodeInbound([]byte(raw))
	if err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	<-c.ready
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	h(m)
}

func (c *memChannel) next(t *testing.T) host.Outbound {
	t.Helper()
	select {
	case m := <-c.sent:
		return m
	case <-time.After(2 * time.Second):
		t.Fatalf("nothing sent to host")
	}
	return host.Outbound{}
}

// waitFor skips messages until one of type typ arrives.
func (c *memChannel) waitFor(t *testing.T, typ string) host.Outbound {
	t.Helper()
	for {
		if m := c.next(t); m.Type == typ {
			return m
		} else if m.Type == host.TypeComponentReady {
			t.Fatalf("componentReady sent again")
		}
	}
}

type stubBuffer struct {
	slot int
	sink media.EventSink

	mu     sync.Mutex
	src    string
	id     uint64
	paused bool
}

func (b *stubBuffer) Source() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.src
}

func (b *stubBuffer) SetSource(url string) {
	b.mu.Lock()
	b.src = url
	b.mu.Unlock()
}

func (b *stubBuffer) Load() {
	b.mu.Lock()
	b.id++
	b.paused = true
	b.mu.Unlock()
}

func (b *stubBuffer) LoadID() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id
}

func (b *stubBuffer) Play() error {
	b.mu.Lock()
	b.paused = false
	b.mu.Unlock()
	return nil
}

func (b *stubBuffer) Pause() {
	b.mu.Lock()
	b.paused = true
	b.mu.Unlock()
}

func (b *stubBuffer) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

func (b *stubBuffer) Position() float64         { return 0 }
func (b *stubBuffer) SetPosition(float64)       {}
func (b *stubBuffer) Duration() (float64, bool) { return 0, false }

func (b *stubBuffer) end() {
	b.mu.Lock()
	b.paused = true
	ev := player.MediaEvent{Slot: b.slot, LoadID: b.id, Source: b.src, Kind: player.EventEnded}
	b.mu.Unlock()
	b.sink(ev)
}

type stubs struct {
	mu   sync.Mutex
	list []*stubBuffer
}

func (s *stubs) make(slot int, sink media.EventSink) player.Buffer {
	b := &stubBuffer{slot: slot, sink: sink, paused: true}
	s.mu.Lock()
	s.list = append(s.list, b)
	s.mu.Unlock()
	return b
}

func (s *stubs) get(slot int) *stubBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.list {
		if b.slot == slot {
			return b
		}
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		ProgressInterval:   time.Hour,
		DefaultFrameHeight: 220,
		FrameMargin:        8,
		APIVersion:         1,
		SampleRate:         48000,
		DefaultMode:        ui.DefaultMode,
	}
}

func startSession(t *testing.T) (*memChannel, *stubs) {
	t.Helper()
	ch := newMemChannel()
	bufs := &stubs{}
	sess := NewSession(testConfig(), ch, bufs.make, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sess.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	if m := ch.next(t); m.Type != host.TypeComponentReady || m.APIVersion != 1 {
		t.Fatalf("first message = %+v", m)
	}
	if m := ch.next(t); m.Type != host.TypeSetFrameHeight || m.Height != 220 {
		t.Fatalf("second message = %+v", m)
	}
	return ch, bufs
}

const threeAyahs = `{"type":"render","args":{"playlist":[
	{"idx":0,"url":"a.mp3","surah":"Al-Fatihah","ayahNum":1},
	{"idx":1,"url":"b.mp3","surah":"Al-Fatihah","ayahNum":2},
	{"idx":2,"url":"c.mp3","surah":"Al-Fatihah","ayahNum":3}],
	"start_index":0,"is_playing":true}}`

func TestSessionHandshake(t *testing.T) {
	ch, _ := startSession(t)

	ch.inject(t, threeAyahs)
	ch.inject(t, threeAyahs)
	// waitFor fails on a repeated componentReady.
	ch.waitFor(t, host.TypeSetFrameHeight)
	ch.waitFor(t, host.TypeSetFrameHeight)
}

func TestSessionRenderSendsViewAndHeight(t *testing.T) {
	ch, bufs := startSession(t)

	ch.inject(t, threeAyahs)
	m := ch.next(t)
	if m.Type != host.TypeView {
		t.Fatalf("got %+v, want view", m)
	}
	v, ok := m.View.(ui.View)
	if !ok || v.Title != "Al-Fatihah : 1" || v.PlayLabel != "Pause" {
		t.Fatalf("view = %+v", m.View)
	}
	m = ch.next(t)
	if m.Type != host.TypeSetFrameHeight || m.Height != v.Height()+8 {
		t.Fatalf("got %+v, want setFrameHeight %d", m, v.Height()+8)
	}

	if got := bufs.get(0).Source(); got != "a.mp3" {
		t.Errorf("active source = %q", got)
	}
	if got := bufs.get(1).Source(); got != "b.mp3" {
		t.Errorf("standby source = %q", got)
	}
}

func TestSessionNaturalEndReports(t *testing.T) {
	ch, bufs := startSession(t)
	ch.inject(t, threeAyahs)
	ch.waitFor(t, host.TypeView)

	bufs.get(0).end()

	m := ch.waitFor(t, host.TypeSetComponentValue)
	if m.Value == nil || *m.Value != (player.Report{AyahIndex: 1, IsPlaying: true}) {
		t.Fatalf("value = %+v", m.Value)
	}
	b, _ := json.Marshal(m)
	if string(b) != `{"type":"setComponentValue","value":{"ayahIndex":1,"isPlaying":true}}` {
		t.Errorf("wire form = %s", b)
	}
}

func TestSessionControls(t *testing.T) {
	ch, _ := startSession(t)
	ch.inject(t, threeAyahs)
	ch.waitFor(t, host.TypeView)

	ch.inject(t, `{"type":"control","action":"next"}`)
	m := ch.waitFor(t, host.TypeSetComponentValue)
	if m.Value.AyahIndex != 1 || !m.Value.IsPlaying {
		t.Fatalf("after next: %+v", m.Value)
	}

	ch.inject(t, `{"type":"control","action":"toggle"}`)
	m = ch.waitFor(t, host.TypeSetComponentValue)
	if m.Value.AyahIndex != 1 || m.Value.IsPlaying {
		t.Fatalf("after toggle: %+v", m.Value)
	}

	ch.inject(t, `{"type":"control","action":"prev"}`)
	m = ch.waitFor(t, host.TypeSetComponentValue)
	if m.Value.AyahIndex != 0 || !m.Value.IsPlaying {
		t.Fatalf("after prev: %+v", m.Value)
	}
}

func TestSessionKeepsMessagesReceivedBeforeRun(t *testing.T) {
	ch := newMemChannel()
	bufs := &stubs{}
	sess := NewSession(testConfig(), ch, bufs.make, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// The connection may deliver a render before the loop starts.
	ch.inject(t, threeAyahs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sess.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	want := []string{host.TypeComponentReady, host.TypeSetFrameHeight, host.TypeView, host.TypeSetFrameHeight}
	for i, typ := range want {
		if m := ch.next(t); m.Type != typ {
			t.Fatalf("message %d = %q, want %q", i, m.Type, typ)
		}
	}
	if got := bufs.get(0).Source(); got != "a.mp3" {
		t.Errorf("active source = %q, want a.mp3", got)
	}
}
