package player

import (
	"log/slog"
	"sync"
)

// PlayerManager keeps one Player per connected component instance.
type PlayerManager struct {
	mu      sync.Mutex
	Players map[string]*Player
}

func NewPlayerManager() *PlayerManager {
	return &PlayerManager{Players: make(map[string]*Player)}
}

// Get returns the player for id, creating it with newPlayer on first use.
func (pm *PlayerManager) Get(id string, newPlayer func() *Player) *Player {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if p, ok := pm.Players[id]; ok {
		return p
	}
	p := newPlayer()
	pm.Players[id] = p
	return p
}

// Remove forgets the player for id and releases its buffers.
func (pm *PlayerManager) Remove(id string) {
	pm.mu.Lock()
	p, ok := pm.Players[id]
	delete(pm.Players, id)
	pm.mu.Unlock()

	if !ok {
		return
	}
	if err := p.Close(); err != nil {
		slog.Warn("closing player buffers", "session", id, "err", err)
	}
}

func (pm *PlayerManager) Len() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.Players)
}
