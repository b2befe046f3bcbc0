package media

import (
	"fmt"

	"github.com/gopxl/beep/v2"

	"github.com/sonroyaalmerol/tilawa/internal/stream"
)

var _ beep.StreamSeeker = (*clipStreamer)(nil)

// clipStreamer plays a decoded clip from memory. It is only touched with the
// output lock held.
type clipStreamer struct {
	frames [][2]float64
	pos    int
}

func newClipStreamer(c *stream.Clip) *clipStreamer {
	return &clipStreamer{frames: c.Frames}
}

// Stream implements beep.Streamer.
func (s *clipStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	n := copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, true
}

// Err implements beep.Streamer.
func (s *clipStreamer) Err() error { return nil }

func (s *clipStreamer) Len() int { return len(s.frames) }

func (s *clipStreamer) Position() int { return s.pos }

func (s *clipStreamer) Seek(p int) error {
	if p < 0 || p > len(s.frames) {
		return fmt.Errorf("seek %d out of range [0, %d]", p, len(s.frames))
	}
	s.pos = p
	return nil
}
