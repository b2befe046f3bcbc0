package player

import "github.com/sonroyaalmerol/tilawa/internal/utils"

func sameResource(src, want string) bool { return utils.ContainsSource(src, want) }

// advance runs when the active buffer finished its resource naturally.
func (p *Player) advance() {
	target, url, ok := p.cursor.NextPlayable(p.playlist)
	if !ok {
		p.playing = false
		p.log.Debug("end of playlist", "item", p.cursor.Item)
		p.report()
		p.render()
		return
	}
	itemChanged := target.Item != p.cursor.Item

	if sameResource(p.buffers.Standby().Source(), url) {
		// Gapless: the preloaded handle takes over the active role.
		p.buffers.swap()
		p.cursor = target
		p.playing = true
		p.startPlayback(p.buffers.Active())
		p.log.Debug("gapless swap", "item", target.Item, "sub", target.Sub, "slot", p.buffers.ActiveSlot())
	} else {
		active := p.buffers.Active()
		active.SetSource(url)
		active.Load()
		p.cursor = target
		if p.playing {
			p.startPlayback(active)
		}
		p.log.Debug("preload miss, reloading", "item", target.Item, "sub", target.Sub, "src", url)
	}

	p.schedulePreload()
	if itemChanged {
		p.report()
	}
	p.render()
}
