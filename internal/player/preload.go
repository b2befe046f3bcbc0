package player

func (p *Player) schedulePreload() { p.Schedule(p.cursor) }

// Schedule primes the standby buffer with the resource that follows c.
// It only touches the buffer when its source differs from the wanted one,
// so repeated calls never restart a fetch in flight.
func (p *Player) Schedule(c Cursor) {
	if !p.buffers.ready() {
		return
	}
	standby := p.buffers.Standby()

	_, url, ok := c.NextPlayable(p.playlist)
	if !ok {
		if standby.Source() != "" {
			standby.SetSource("")
		}
		return
	}
	if sameResource(standby.Source(), url) {
		return
	}
	standby.SetSource(url)
	standby.Load()
}
