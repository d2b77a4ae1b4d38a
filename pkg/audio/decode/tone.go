// ABOUTME: Test tone generator source
// ABOUTME: Seekable sine wave of fixed duration, used for tests and file-less runs
package decode

import (
	"io"
	"math"
	"time"
)

// ToneReader generates a stereo sine wave
type ToneReader struct {
	rate      int
	frequency float64
	amplitude float64
	total     int64
	pos       int64
}

// NewToneReader creates a tone of the given frequency and duration
func NewToneReader(frequency float64, duration time.Duration, sampleRate int) *ToneReader {
	return &ToneReader{
		rate:      sampleRate,
		frequency: frequency,
		amplitude: 0.5, // 50% volume
		total:     int64(duration) * int64(sampleRate) / int64(time.Second),
	}
}

// NewToneSource returns a tone as an engine-format Source
func NewToneSource(frequency float64, duration time.Duration, sampleRate int) Source {
	return NewSource(NewToneReader(frequency, duration, sampleRate), sampleRate)
}

func (t *ToneReader) SampleRate() int { return t.rate }
func (t *ToneReader) Channels() int   { return 2 }

func (t *ToneReader) ReadFrames(dst []float32) (int, error) {
	frames := int64(len(dst) / 2)
	if remaining := t.total - t.pos; frames > remaining {
		frames = remaining
	}
	if frames <= 0 {
		return 0, io.EOF
	}

	for i := int64(0); i < frames; i++ {
		ts := float64(t.pos+i) / float64(t.rate)
		v := float32(t.amplitude * math.Sin(2*math.Pi*t.frequency*ts))
		dst[i*2] = v
		dst[i*2+1] = v
	}
	t.pos += frames
	return int(frames), nil
}

func (t *ToneReader) SeekFrame(frame int64) error {
	t.pos = max(0, min(frame, t.total))
	return nil
}

func (t *ToneReader) TotalFrames() int64 { return t.total }
func (t *ToneReader) Close() error       { return nil }
