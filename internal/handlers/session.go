package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/sonroyaalmerol/tilawa/internal/config"
	"github.com/sonroyaalmerol/tilawa/internal/host"
	"github.com/sonroyaalmerol/tilawa/internal/media"
	"github.com/sonroyaalmerol/tilawa/internal/player"
	"github.com/sonroyaalmerol/tilawa/internal/ui"
)

// BufferMaker builds the buffer for slot; its media events go to sink.
type BufferMaker func(slot int, sink media.EventSink) player.Buffer

const sendTimeout = 5 * time.Second

// Session is one component instance. Run is the only goroutine that touches
// the player; host messages, media events and progress ticks all reach it
// through channels.
type Session struct {
	cfg    *config.Config
	ch     host.Channel
	log    *slog.Logger
	player *player.Player

	inbound chan host.Inbound
	events  chan player.MediaEvent
	done    chan struct{}
	ctx     context.Context
}

func NewSession(cfg *config.Config, ch host.Channel, makeBuffer BufferMaker, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		cfg:     cfg,
		ch:      ch,
		log:     log,
		inbound: make(chan host.Inbound, 16),
		events:  make(chan player.MediaEvent, 16),
		done:    make(chan struct{}),
		ctx:     context.Background(),
	}
	factory := func(slot int) player.Buffer { return makeBuffer(slot, s.post) }
	s.player = player.NewPlayer(factory, s, log)
	// Messages that arrive before Run wait in the inbound queue until the
	// handshake has been sent.
	ch.OnReceive(s.receive)
	return s
}

func (s *Session) Player() *player.Player { return s.player }

func (s *Session) post(ev player.MediaEvent) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) receive(m host.Inbound) {
	select {
	case s.inbound <- m:
	case <-s.done:
	}
}

// Run performs the handshake and then serves events until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	s.ctx = ctx

	s.send(host.ComponentReady(s.cfg.APIVersion))
	s.send(host.SetFrameHeight(s.cfg.DefaultFrameHeight))

	ticker := time.NewTicker(s.cfg.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-s.inbound:
			s.dispatch(m)
		case ev := <-s.events:
			s.player.HandleMediaEvent(ev)
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) send(m host.Outbound) {
	ctx, cancel := context.WithTimeout(s.ctx, sendTimeout)
	defer cancel()
	if err := s.ch.Send(ctx, m); err != nil {
		s.log.Debug("send to host", "type", m.Type, "err", err)
	}
}

func (s *Session) tick() {
	p := s.player.Progress()
	if !p.Playing {
		return
	}
	s.send(host.ProgressMessage(ui.BuildProgress(p)))
}

func (s *Session) view(snap player.Snapshot) ui.View {
	return ui.BuildView(snap, s.player.Progress(), s.cfg.DefaultMode)
}

// Report implements player.Observer.
func (s *Session) Report(r player.Report) {
	s.log.Debug("report", "ayahIndex", r.AyahIndex, "isPlaying", r.IsPlaying)
	s.send(host.SetComponentValue(r))
}

// Render implements player.Observer.
func (s *Session) Render(snap player.Snapshot) {
	s.send(host.ViewMessage(s.view(snap)))
}

// Resize implements player.Observer.
func (s *Session) Resize(snap player.Snapshot) {
	s.send(host.SetFrameHeight(ui.FrameHeight(s.view(snap), s.cfg.FrameMargin)))
}
