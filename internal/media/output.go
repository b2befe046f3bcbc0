package media

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output is where tracks send their audio. Track state handed to the output
// must only be changed between Lock and Unlock.
type Output interface {
	SampleRate() beep.SampleRate
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}

// Speaker plays through the system audio device.
type Speaker struct {
	rate beep.SampleRate
}

var (
	speakerOnce sync.Once
	speakerErr  error
)

// NewSpeaker initializes the audio device once per process.
func NewSpeaker(sampleRate int) (*Speaker, error) {
	sr := beep.SampleRate(sampleRate)
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sr, sr.N(time.Second/10))
	})
	if speakerErr != nil {
		return nil, speakerErr
	}
	return &Speaker{rate: sr}, nil
}

func (s *Speaker) SampleRate() beep.SampleRate { return s.rate }

func (s *Speaker) Play(st ...beep.Streamer) { speaker.Play(st...) }

func (s *Speaker) Lock() { speaker.Lock() }

func (s *Speaker) Unlock() { speaker.Unlock() }

func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}

// Silent consumes streamers in real time without a device, so sessions keep
// their timing on hosts with no sound card.
type Silent struct {
	rate beep.SampleRate

	mu        sync.Mutex
	streamers []beep.Streamer
}

func NewSilent(sampleRate int) *Silent {
	return &Silent{rate: beep.SampleRate(sampleRate)}
}

func (s *Silent) SampleRate() beep.SampleRate { return s.rate }

func (s *Silent) Play(st ...beep.Streamer) {
	s.mu.Lock()
	s.streamers = append(s.streamers, st...)
	s.mu.Unlock()
}

func (s *Silent) Lock() { s.mu.Lock() }

func (s *Silent) Unlock() { s.mu.Unlock() }

// Run pulls audio until ctx is done.
func (s *Silent) Run(ctx context.Context) {
	const tick = 20 * time.Millisecond
	t := time.NewTicker(tick)
	defer t.Stop()
	buf := make([][2]float64, s.rate.N(tick))
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.mu.Lock()
			s.pull(buf)
			s.mu.Unlock()
		}
	}
}

// pull advances every streamer by len(buf) samples and drops finished ones.
func (s *Silent) pull(buf [][2]float64) {
	kept := s.streamers[:0]
	for _, st := range s.streamers {
		filled := 0
		done := false
		for filled < len(buf) {
			n, ok := st.Stream(buf[filled:])
			if !ok {
				done = true
				break
			}
			filled += n
			if n == 0 {
				break
			}
		}
		if !done {
			kept = append(kept, st)
		}
	}
	for i := len(kept); i < len(s.streamers); i++ {
		s.streamers[i] = nil
	}
	s.streamers = kept
}
