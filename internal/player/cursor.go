package player

// Cursor is a position inside a two-level playlist.
type Cursor struct {
	Item int
	Sub  int
}

// SetPosition moves to the first sub-track of item. Out-of-range requests
// are rejected and leave the cursor untouched.
func (c *Cursor) SetPosition(pl Playlist, item int) bool {
	if item < 0 || item >= len(pl) {
		return false
	}
	c.Item = item
	c.Sub = 0
	return true
}

// AdvanceSub moves to the next sub-track of the current item.
func (c *Cursor) AdvanceSub(pl Playlist) bool {
	if c.Item < 0 || c.Item >= len(pl) || c.Sub+1 >= len(pl[c.Item].URLs) {
		return false
	}
	c.Sub++
	return true
}

// AdvanceItem moves to the first sub-track of the next item. False means the
// end of the playlist was reached; that is a terminal condition, not an error.
func (c *Cursor) AdvanceItem(pl Playlist) bool {
	if c.Item+1 >= len(pl) {
		return false
	}
	c.Item++
	c.Sub = 0
	return true
}

// Next is the one-step lookahead: the next sub-track of the current item,
// else the first sub-track of the next item.
func (c Cursor) Next(pl Playlist) (Cursor, bool) {
	n := c
	if n.AdvanceSub(pl) {
		return n, true
	}
	if n.AdvanceItem(pl) {
		return n, true
	}
	return c, false
}

// NextPlayable repeats Next until it lands on a position that has a
// resource, so items without audio are passed over instead of stalling.
func (c Cursor) NextPlayable(pl Playlist) (Cursor, string, bool) {
	n := c
	for {
		var ok bool
		n, ok = n.Next(pl)
		if !ok {
			return c, "", false
		}
		if url := pl.Resource(n); url != "" {
			return n, url, true
		}
	}
}
