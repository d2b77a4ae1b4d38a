// ABOUTME: Source interface and the shared PCM conversion stream
// ABOUTME: Converts native decoder frames to engine-format PCM with seek and position tracking
package decode

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pzkpfw38t/practicesharp/pkg/audio"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/resample"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no backend handles
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrInvalidFile is returned when a backend rejects the file contents
	ErrInvalidFile = errors.New("invalid audio file")
)

// Source is a seekable stream of engine-format PCM
type Source interface {
	// Format returns the PCM format Read delivers
	Format() audio.Format
	// Read fills p with PCM bytes. Returns io.EOF once the source is exhausted.
	Read(p []byte) (int, error)
	// Seek repositions the stream. Out-of-range positions are clamped.
	Seek(d time.Duration) error
	// CurrentTime returns the position of the next byte Read will return
	CurrentTime() time.Duration
	// TotalTime returns the stream duration
	TotalTime() time.Duration
	// Flush discards decoded data buffered inside the source
	Flush()
	// Close releases the source
	Close() error
}

// FrameReader is implemented by each format backend. Frames are interleaved
// float32 in the file's native rate and channel count.
type FrameReader interface {
	SampleRate() int
	Channels() int
	// ReadFrames fills dst and returns frames read; io.EOF at end of data
	ReadFrames(dst []float32) (int, error)
	SeekFrame(frame int64) error
	TotalFrames() int64
	Close() error
}

const readChunkFrames = 4096

// pcmStream adapts a FrameReader to Source
type pcmStream struct {
	fr     FrameReader
	format audio.Format
	native audio.Format

	resampler *resample.Resampler
	raw       []float32
	stereo    []float32
	converted []float32
	pending   []byte

	base      time.Duration
	delivered int64 // bytes returned by Read since base
	eof       bool
}

// NewSource wraps a FrameReader as a Source producing PCM at sampleRate
func NewSource(fr FrameReader, sampleRate int) Source {
	return newPCMStream(fr, sampleRate)
}

func newPCMStream(fr FrameReader, sampleRate int) *pcmStream {
	s := &pcmStream{
		fr:     fr,
		format: audio.DefaultFormat(sampleRate),
		native: audio.Format{
			SampleRate: fr.SampleRate(),
			Channels:   fr.Channels(),
			BitDepth:   audio.DefaultBitDepth,
		},
		raw: make([]float32, readChunkFrames*fr.Channels()),
	}
	if s.native.SampleRate != s.format.SampleRate {
		s.resampler = resample.New(s.native.SampleRate, s.format.SampleRate, audio.DefaultChannels)
		s.converted = make([]float32, 0, s.resampler.OutputSamplesNeeded(readChunkFrames*audio.DefaultChannels))
	}
	return s
}

func (s *pcmStream) Format() audio.Format {
	return s.format
}

func (s *pcmStream) Read(p []byte) (int, error) {
	for len(s.pending) < len(p) && !s.eof {
		if err := s.decodeChunk(); err != nil {
			return 0, err
		}
	}

	n := copy(p, s.pending)
	s.pending = s.pending[:copy(s.pending, s.pending[n:])]
	s.delivered += int64(n)

	if n == 0 && s.eof {
		return 0, io.EOF
	}
	return n, nil
}

func (s *pcmStream) decodeChunk() error {
	frames, err := s.fr.ReadFrames(s.raw)
	if err == io.EOF {
		s.eof = true
	} else if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if frames == 0 {
		// An empty read is end of data too.
		s.eof = true
		return nil
	}

	s.stereo = toStereo(s.stereo[:0], s.raw[:frames*s.native.Channels], s.native.Channels)

	out := s.stereo
	if s.resampler != nil {
		s.converted = s.resampler.Resample(s.converted[:0], s.stereo)
		out = s.converted
	}

	start := len(s.pending)
	s.pending = append(s.pending, make([]byte, len(out)*2)...)
	audio.EncodePCM16(s.pending[start:], out)
	return nil
}

// toStereo maps native channels to two: mono is duplicated, channels past
// the second are dropped
func toStereo(dst, src []float32, channels int) []float32 {
	switch channels {
	case 2:
		return append(dst, src...)
	case 1:
		for _, v := range src {
			dst = append(dst, v, v)
		}
		return dst
	default:
		for i := 0; i+1 < len(src); i += channels {
			dst = append(dst, src[i], src[i+1])
		}
		return dst
	}
}

func (s *pcmStream) Seek(d time.Duration) error {
	total := s.TotalTime()
	if d < 0 {
		d = 0
	}
	if total > 0 && d > total {
		d = total
	}

	frame := s.native.DurationToFrames(d)
	if err := s.fr.SeekFrame(frame); err != nil {
		return fmt.Errorf("seek to %v: %w", d, err)
	}

	s.Flush()
	s.base = s.native.FramesToDuration(frame)
	s.delivered = 0
	s.eof = false
	return nil
}

func (s *pcmStream) CurrentTime() time.Duration {
	return s.base + s.format.BytesToDuration(int(s.delivered))
}

func (s *pcmStream) TotalTime() time.Duration {
	return s.native.FramesToDuration(s.fr.TotalFrames())
}

func (s *pcmStream) Flush() {
	s.pending = s.pending[:0]
	if s.resampler != nil {
		s.resampler.Reset()
	}
}

func (s *pcmStream) Close() error {
	return s.fr.Close()
}
