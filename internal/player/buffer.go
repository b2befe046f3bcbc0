package player

// Buffer is an audio-output handle. The engine owns both of its buffers;
// nothing else calls into them.
type Buffer interface {
	// Source is the last assigned resource, "" when unset.
	Source() string
	// SetSource assigns a resource without fetching it. "" clears the source.
	SetSource(url string)
	// Load (re)starts fetching the assigned source and abandons any load in flight.
	Load()
	// LoadID identifies the most recent Load; events from older loads are stale.
	LoadID() uint64
	// Play requests playback. It never blocks; a non-nil error means the
	// request was rejected.
	Play() error
	Pause()
	Paused() bool
	// Position and SetPosition are in seconds.
	Position() float64
	SetPosition(sec float64)
	// Duration reports false until metadata has loaded.
	Duration() (float64, bool)
}

// BufferFactory creates the buffer for a slot (0 or 1). Buffers post their
// events tagged with that slot.
type BufferFactory func(slot int) Buffer

// bufferPair holds two interchangeable handles. Roles are swapped by
// flipping active; the handles themselves never move.
type bufferPair struct {
	slots  [2]Buffer
	active int
}

func (bp *bufferPair) ready() bool { return bp.slots[0] != nil && bp.slots[1] != nil }

func (bp *bufferPair) ensure(factory BufferFactory) {
	for i := range bp.slots {
		if bp.slots[i] == nil {
			bp.slots[i] = factory(i)
		}
	}
}

func (bp *bufferPair) Active() Buffer { return bp.slots[bp.active] }

func (bp *bufferPair) Standby() Buffer { return bp.slots[1-bp.active] }

func (bp *bufferPair) ActiveSlot() int { return bp.active }

func (bp *bufferPair) swap() { bp.active = 1 - bp.active }
