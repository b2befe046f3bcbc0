package handlers

import (
	"github.com/sonroyaalmerol/tilawa/internal/host"
	"github.com/sonroyaalmerol/tilawa/internal/ui"
)

func (s *Session) dispatch(m host.Inbound) {
	switch m.Type {
	case host.TypeRender:
		s.cmdRender(m.Args)
	case host.TypeControl:
		s.log.Debug("control", "action", m.Action)
		switch m.Action {
		case host.ActionPrev:
			s.player.RequestPrevious()
		case host.ActionNext:
			s.player.RequestNext()
		case host.ActionToggle:
			s.player.RequestTogglePlay()
		case host.ActionSeek:
			s.cmdSeek(m)
		}
	default:
		s.log.Debug("ignored host message", "type", m.Type)
	}
}

func (s *Session) cmdRender(args *host.RenderArgs) {
	if args == nil {
		return
	}
	s.log.Debug("render",
		"items", len(args.Playlist),
		"startIndex", args.StartIndex,
		"isPlaying", args.IsPlaying,
	)
	s.player.ApplyExternalState(args.Playlist, args.StartIndex, args.IsPlaying)
}

func (s *Session) cmdSeek(m host.Inbound) {
	f, ok := m.SeekFraction()
	if !ok {
		return
	}
	s.player.RequestSeek(f)
	s.send(host.ProgressMessage(ui.BuildProgress(s.player.Progress())))
}
