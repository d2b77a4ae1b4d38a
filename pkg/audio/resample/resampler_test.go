// ABOUTME: Tests for the streaming resampler
// ABOUTME: Tests output length, identity ratio, block-boundary continuity and output bounds
package resample

import (
	"math"
	"testing"
)

func ramp(frames, channels int) []float32 {
	out := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			out[i*channels+c] = float32(i) / float32(frames)
		}
	}
	return out
}

func TestIdentityRatio(t *testing.T) {
	r := New(44100, 44100, 2)
	in := ramp(100, 2)

	out := r.Resample(nil, in)

	// The last input frame is held back until the next block arrives.
	if len(out) != (100-1)*2 {
		t.Fatalf("expected %d samples, got %d", (100-1)*2, len(out))
	}
	for i := range out {
		if out[i] != in[i] {
			t.Fatalf("sample %d: expected %f, got %f", i, in[i], out[i])
		}
	}
}

func TestOutputLength(t *testing.T) {
	tests := []struct {
		name   string
		in     int
		out    int
		frames int
	}{
		{"downsample 48k to 44.1k", 48000, 44100, 48000},
		{"upsample 22.05k to 44.1k", 22050, 44100, 22050},
		{"upsample 32k to 48k", 32000, 48000, 32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.in, tt.out, 2)
			out := r.Resample(nil, ramp(tt.frames, 2))

			got := len(out) / 2
			if math.Abs(float64(got-tt.out)) > 3 {
				t.Errorf("expected ~%d frames, got %d", tt.out, got)
			}
		})
	}
}

func TestBlockContinuity(t *testing.T) {
	in := ramp(5000, 2)

	whole := New(48000, 44100, 2).Resample(nil, in)

	r := New(48000, 44100, 2)
	var pieces []float32
	for start := 0; start < 5000; start += 333 {
		end := start + 333
		if end > 5000 {
			end = 5000
		}
		pieces = r.Resample(pieces, in[start*2:end*2])
	}

	if len(pieces) != len(whole) {
		t.Fatalf("expected %d samples, got %d", len(whole), len(pieces))
	}
	for i := range whole {
		if math.Abs(float64(whole[i]-pieces[i])) > 1e-5 {
			t.Fatalf("sample %d: expected %f, got %f", i, whole[i], pieces[i])
		}
	}
}

func TestReset(t *testing.T) {
	r := New(48000, 44100, 1)
	r.Resample(nil, ramp(1000, 1))
	r.Reset()

	if r.primed {
		t.Error("expected resampler to be unprimed after reset")
	}
	if r.position != 0 {
		t.Errorf("expected position 0, got %f", r.position)
	}
}

func TestOutputSamplesNeededBoundsEachCall(t *testing.T) {
	tests := []struct {
		name  string
		in    int
		out   int
		block int
	}{
		{"downsample 48k to 44.1k", 48000, 44100, 4096},
		{"upsample 22.05k to 44.1k", 22050, 44100, 4096},
		{"upsample 8k to 44.1k odd blocks", 8000, 44100, 37},
		{"identity", 44100, 44100, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.in, tt.out, 2)
			in := ramp(tt.block, 2)

			for i := 0; i < 20; i++ {
				bound := r.OutputSamplesNeeded(len(in))
				out := r.Resample(make([]float32, 0, bound), in)
				if len(out) > bound {
					t.Fatalf("call %d: expected at most %d samples, got %d", i, bound, len(out))
				}
			}
		})
	}
}
