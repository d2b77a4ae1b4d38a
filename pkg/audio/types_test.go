// ABOUTME: Tests for audio types
// ABOUTME: Tests format math and sample conversion functions
package audio

import (
	"testing"
	"time"
)

func TestDefaultFormat(t *testing.T) {
	f := DefaultFormat(0)
	if f.SampleRate != DefaultSampleRate {
		t.Errorf("expected sample rate %d, got %d", DefaultSampleRate, f.SampleRate)
	}
	if f.BytesPerFrame() != 4 {
		t.Errorf("expected 4 bytes per frame, got %d", f.BytesPerFrame())
	}
	if f.BytesPerSecond() != 44100*4 {
		t.Errorf("expected %d bytes per second, got %d", 44100*4, f.BytesPerSecond())
	}
}

func TestDurationConversions(t *testing.T) {
	f := DefaultFormat(48000)

	tests := []struct {
		name   string
		d      time.Duration
		frames int64
		bytes  int
	}{
		{"zero", 0, 0, 0},
		{"one second", time.Second, 48000, 192000},
		{"half second", 500 * time.Millisecond, 24000, 96000},
		{"negative", -time.Second, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.DurationToFrames(tt.d); got != tt.frames {
				t.Errorf("expected %d frames, got %d", tt.frames, got)
			}
			if got := f.DurationToBytes(tt.d); got != tt.bytes {
				t.Errorf("expected %d bytes, got %d", tt.bytes, got)
			}
		})
	}

	if got := f.BytesToDuration(192000); got != time.Second {
		t.Errorf("expected 1s, got %v", got)
	}
	if got := f.FramesToDuration(12000); got != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", got)
	}
}

func TestFloat32ToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"half", 0.5, 16384},
		{"negative half", -0.5, -16384},
		{"clip high", 1.5, 32767},
		{"clip low", -1.5, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Float32ToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestRoundTripPCM16(t *testing.T) {
	samples := []int16{0, 100, -100, 1000, -1000, 32767, -32768}

	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		raw[i*2] = byte(s)
		raw[i*2+1] = byte(uint16(s) >> 8)
	}

	floats := make([]float32, len(samples))
	if n := DecodePCM16(floats, raw); n != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), n)
	}

	out := make([]byte, len(raw))
	if n := EncodePCM16(out, floats); n != len(raw) {
		t.Fatalf("expected %d bytes, got %d", len(raw), n)
	}

	for i := range raw {
		if out[i] != raw[i] {
			t.Fatalf("round-trip mismatch at byte %d: %d != %d", i, out[i], raw[i])
		}
	}
}
