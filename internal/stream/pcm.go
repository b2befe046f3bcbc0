package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/asticode/go-astiav"
)

var ErrNoAudio = errors.New("no audio stream found")

// Clip is one resource decoded to interleaved stereo float samples.
type Clip struct {
	SampleRate int
	Frames     [][2]float64
}

func (c *Clip) Len() int { return len(c.Frames) }

// Seconds is the playable length of the clip.
func (c *Clip) Seconds() float64 {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Frames)) / float64(c.SampleRate)
}

func (c *Clip) Duration() time.Duration {
	return time.Duration(c.Seconds() * float64(time.Second))
}

// Size approximates the memory held by the clip, used for cache accounting.
func (c *Clip) Size() int64 { return int64(len(c.Frames)) * 16 }

type decoder struct {
	fc       *astiav.FormatContext
	st       *astiav.Stream
	decCtx   *astiav.CodecContext
	swr      *astiav.SoftwareResampleContext
	srcFrame *astiav.Frame
	dstFrame *astiav.Frame
	pkt      *astiav.Packet

	rate   int
	layout astiav.ChannelLayout
	format astiav.SampleFormat
	out    [][2]float64
}

// DecodeClip opens inputURL, decodes its best audio stream and resamples it
// to s16 stereo at rate. headers is passed to the HTTP protocol as-is.
func DecodeClip(ctx context.Context, inputURL, headers string, rate int) (*Clip, error) {
	if rate <= 0 {
		rate = 48000
	}
	d := &decoder{
		rate:   rate,
		layout: astiav.ChannelLayoutStereo,
		format: astiav.SampleFormatS16,
	}
	defer d.free()

	if err := d.open(inputURL, headers); err != nil {
		return nil, err
	}
	if err := d.run(ctx); err != nil {
		return nil, err
	}
	return &Clip{SampleRate: rate, Frames: d.out}, nil
}

func (d *decoder) open(inputURL, headers string) error {
	d.fc = astiav.AllocFormatContext()
	if d.fc == nil {
		return errors.New("alloc format context")
	}

	dict := astiav.NewDictionary()
	defer dict.Free()
	_ = dict.Set("reconnect", "1", 0)
	_ = dict.Set("reconnect_streamed", "1", 0)
	_ = dict.Set("reconnect_delay_max", "5", 0)
	// microseconds
	_ = dict.Set("rw_timeout", "15000000", 0)
	if headers != "" {
		_ = dict.Set("headers", headers, 0)
	}

	if err := d.fc.OpenInput(inputURL, nil, dict); err != nil {
		d.fc.Free()
		d.fc = nil
		return fmt.Errorf("open input: %w", err)
	}
	if err := d.fc.FindStreamInfo(nil); err != nil {
		return fmt.Errorf("find stream info: %w", err)
	}

	st, codec, err := d.fc.FindBestStream(astiav.MediaTypeAudio, -1, -1)
	if err != nil {
		return fmt.Errorf("find best audio stream: %w", err)
	}
	if st == nil || codec == nil {
		return ErrNoAudio
	}
	d.st = st

	d.decCtx = astiav.AllocCodecContext(codec)
	if d.decCtx == nil {
		return errors.New("alloc codec context")
	}
	if err := d.decCtx.FromCodecParameters(st.CodecParameters()); err != nil {
		return fmt.Errorf("codec from params: %w", err)
	}
	d.decCtx.SetTimeBase(st.TimeBase())
	if err := d.decCtx.Open(codec, nil); err != nil {
		return fmt.Errorf("open decoder: %w", err)
	}

	d.swr = astiav.AllocSoftwareResampleContext()
	d.srcFrame = astiav.AllocFrame()
	d.dstFrame = astiav.AllocFrame()
	d.pkt = astiav.AllocPacket()
	if d.swr == nil || d.srcFrame == nil || d.dstFrame == nil || d.pkt == nil {
		return errors.New("alloc resampler")
	}
	return nil
}

func (d *decoder) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		d.pkt.Unref()
		if err := d.fc.ReadFrame(d.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				return d.drain()
			}
			if errors.Is(err, astiav.ErrEagain) {
				continue
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if d.pkt.StreamIndex() != d.st.Index() {
			continue
		}

		if err := d.decCtx.SendPacket(d.pkt); err != nil && !errors.Is(err, astiav.ErrEagain) {
			return fmt.Errorf("send packet: %w", err)
		}
		if err := d.receive(); err != nil {
			return err
		}
	}
}

// drain flushes the decoder and then the resampler's delay line.
func (d *decoder) drain() error {
	_ = d.decCtx.SendPacket(nil)
	if err := d.receive(); err != nil {
		return err
	}
	if err := d.prepareDst(1024); err != nil {
		return err
	}
	if err := d.swr.ConvertFrame(nil, d.dstFrame); err != nil {
		return nil
	}
	return d.appendDst()
}

func (d *decoder) receive() error {
	for {
		d.srcFrame.Unref()
		if err := d.decCtx.ReceiveFrame(d.srcFrame); err != nil {
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				return nil
			}
			return fmt.Errorf("receive frame: %w", err)
		}
		if err := d.convert(d.srcFrame); err != nil {
			return err
		}
	}
}

func (d *decoder) prepareDst(nbSamples int) error {
	d.dstFrame.Unref()
	d.dstFrame.SetNbSamples(nbSamples)
	d.dstFrame.SetChannelLayout(d.layout)
	d.dstFrame.SetSampleRate(d.rate)
	d.dstFrame.SetSampleFormat(d.format)
	if err := d.dstFrame.AllocBuffer(0); err != nil {
		return fmt.Errorf("dst alloc buffer: %w", err)
	}
	return nil
}

func (d *decoder) convert(src *astiav.Frame) error {
	// Room for the rate change plus whatever the resampler still buffers.
	n := src.NbSamples()
	if sr := src.SampleRate(); sr > 0 && sr < d.rate {
		n = n*d.rate/sr + 1
	}
	if err := d.prepareDst(n + 256); err != nil {
		return err
	}
	if err := d.swr.ConvertFrame(src, d.dstFrame); err != nil {
		return fmt.Errorf("swr convert: %w", err)
	}
	return d.appendDst()
}

func (d *decoder) appendDst() error {
	b, err := d.dstFrame.Data().Bytes(0)
	if err != nil {
		return fmt.Errorf("dst bytes: %w", err)
	}
	n := d.dstFrame.NbSamples()
	if room := len(b) / 4; n > room {
		n = room
	}
	d.out = AppendS16(d.out, b[:n*4])
	return nil
}

// AppendS16 converts interleaved little-endian s16 stereo PCM to float frames.
func AppendS16(dst [][2]float64, pcm []byte) [][2]float64 {
	for i := 0; i+4 <= len(pcm); i += 4 {
		l := int16(binary.LittleEndian.Uint16(pcm[i:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i+2:]))
		dst = append(dst, [2]float64{float64(l) / 32768, float64(r) / 32768})
	}
	return dst
}

func (d *decoder) free() {
	if d.pkt != nil {
		d.pkt.Free()
	}
	if d.srcFrame != nil {
		d.srcFrame.Free()
	}
	if d.dstFrame != nil {
		d.dstFrame.Free()
	}
	if d.swr != nil {
		d.swr.Free()
	}
	if d.decCtx != nil {
		d.decCtx.Free()
	}
	if d.fc != nil {
		d.fc.CloseInput()
		d.fc.Free()
	}
}
