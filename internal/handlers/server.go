package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sonroyaalmerol/tilawa/internal/config"
	"github.com/sonroyaalmerol/tilawa/internal/host"
	"github.com/sonroyaalmerol/tilawa/internal/media"
	"github.com/sonroyaalmerol/tilawa/internal/player"
)

// Server accepts host connections; each one drives its own player session.
type Server struct {
	cfg      *config.Config
	pm       *player.PlayerManager
	out      media.Output
	loader   media.ClipLoader
	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, out media.Output, loader media.ClipLoader) *Server {
	s := &Server{
		cfg:    cfg,
		pm:     player.NewPlayerManager(),
		out:    out,
		loader: loader,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", s.cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) newBuffer(log *slog.Logger) BufferMaker {
	return func(slot int, sink media.EventSink) player.Buffer {
		return media.NewTrack(slot, s.out, s.loader, sink, log)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade", "remote", r.RemoteAddr, "err", err)
		return
	}

	id := uuid.NewString()
	log := slog.With("session", id)
	ch := host.NewWSChannel(conn, log)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := NewSession(s.cfg, ch, s.newBuffer(log), log)
	s.pm.Get(id, sess.Player)
	defer s.pm.Remove(id)

	go func() {
		if err := ch.Serve(ctx); err != nil && ctx.Err() == nil {
			log.Debug("host connection closed", "err", err)
		}
		cancel()
	}()

	log.Info("session started", "remote", r.RemoteAddr, "sessions", s.pm.Len())
	err = sess.Run(ctx)
	_ = ch.Close()
	log.Info("session ended", "err", err)
}
