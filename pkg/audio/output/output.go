// ABOUTME: Audio sink interface definition
// ABOUTME: Pull-model playback backends that read PCM from an io.Reader
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pzkpfw38t/practicesharp/pkg/audio"
)

var (
	// ErrDeviceInit is returned when an output device cannot be opened
	ErrDeviceInit = errors.New("audio device initialization failed")
	// ErrUnknownSink is returned by New for an unknown backend name
	ErrUnknownSink = errors.New("unknown audio output")
	// ErrNotInitialized is returned by control calls before Init
	ErrNotInitialized = errors.New("output not initialized")
)

// Sink is an audio output device. The sink pulls PCM from the reader given
// to Init on its own goroutine; the reader must never block.
type Sink interface {
	// Init opens the device and attaches the PCM source. Playback starts paused.
	Init(source io.Reader) error
	// Play starts or resumes pulling
	Play() error
	// Pause suspends pulling, keeping the device open
	Pause() error
	// Stop halts playback
	Stop() error
	// Dispose releases the device
	Dispose() error
	// SetVolume sets the output gain in [0, 1]
	SetVolume(volume float64)
}

// Names lists the available backends
func Names() []string {
	return []string{"oto", "malgo", "null"}
}

// New creates a sink by backend name for the given PCM format
func New(name string, format audio.Format) (Sink, error) {
	switch strings.ToLower(name) {
	case "", "oto":
		return NewOto(format), nil
	case "malgo":
		return NewMalgo(format), nil
	case "null":
		return NewNull(format, DefaultNullPeriod, 1), nil
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownSink, name, strings.Join(Names(), ", "))
}

func clampVolume(volume float64) float64 {
	if volume < 0 {
		return 0
	}
	if volume > 1 {
		return 1
	}
	return volume
}

// applyVolume scales 16-bit little-endian PCM in place
func applyVolume(pcm []byte, volume float64) {
	if volume >= 1 {
		return
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(binary.LittleEndian.Uint16(pcm[i:]))
		binary.LittleEndian.PutUint16(pcm[i:], uint16(int16(float64(s)*volume)))
	}
}
