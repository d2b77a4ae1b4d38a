// ABOUTME: Tests for the DSP effect chain
// ABOUTME: Tests channel routing math, swap ordering and equalizer behavior
package dsp

import (
	"math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-6
}

func TestChainRouting(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		l, r     float32
		wantL    float32
		wantR    float32
	}{
		{"both passes through", Settings{}, 0.5, 0.2, 0.5, 0.2},
		{"left duplicates left", Settings{Mode: Left}, 0.5, 0.2, 0.5, 0.5},
		{"right duplicates right", Settings{Mode: Right}, 0.5, 0.2, 0.2, 0.2},
		{"dual mono averages", Settings{Mode: DualMono}, 0.5, 0.3, 0.28, 0.28},
		{"swap", Settings{SwapLeftRight: true}, 0.5, 0.2, 0.2, 0.5},
		{"vocal suppression", Settings{SuppressVocals: true}, 0.5, 0.2, 0.21, 0.21},
		{"swap after left mode", Settings{Mode: Left, SwapLeftRight: true}, 0.5, 0.2, 0.5, 0.5},
		{"vocals then right", Settings{SuppressVocals: true, Mode: Right}, 0.4, 0.4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChain(44100, 2)
			c.Configure(tt.settings)

			samples := []float32{tt.l, tt.r}
			c.Apply(samples, 1)

			if !almostEqual(samples[0], tt.wantL) {
				t.Errorf("expected left %f, got %f", tt.wantL, samples[0])
			}
			if !almostEqual(samples[1], tt.wantR) {
				t.Errorf("expected right %f, got %f", tt.wantR, samples[1])
			}
		})
	}
}

func TestFlatEqualizerIsTransparent(t *testing.T) {
	c := NewChain(44100, 2)
	c.Configure(Settings{})

	samples := make([]float32, 512)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i) / 7))
	}
	orig := append([]float32(nil), samples...)

	c.Apply(samples, 256)

	for i := range samples {
		if samples[i] != orig[i] {
			t.Fatalf("sample %d changed: %f -> %f", i, orig[i], samples[i])
		}
	}
}

func TestEqualizerGainClamp(t *testing.T) {
	e := NewEqualizer(44100, 2)

	e.SetGain(LowBand, 40)
	if e.Gain(LowBand) != MaxGainDB {
		t.Errorf("expected %f, got %f", MaxGainDB, e.Gain(LowBand))
	}

	e.SetGain(HighBand, -100)
	if e.Gain(HighBand) != MinGainDB {
		t.Errorf("expected %f, got %f", MinGainDB, e.Gain(HighBand))
	}

	if e.SetGain(HighBand, -100) {
		t.Error("expected unchanged gain to report no redesign")
	}
}

func rms(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestLowShelfBoostsBass(t *testing.T) {
	const rate = 44100
	frames := rate / 2

	tone := func(freq float64) []float32 {
		out := make([]float32, frames*2)
		for i := 0; i < frames; i++ {
			v := float32(0.25 * math.Sin(2*math.Pi*freq*float64(i)/rate))
			out[i*2] = v
			out[i*2+1] = v
		}
		return out
	}

	c := NewChain(rate, 2)
	c.Configure(Settings{LowGainDB: 12})

	bass := tone(60)
	before := rms(bass)
	c.Apply(bass, frames)
	gain := 20 * math.Log10(rms(bass)/before)

	if gain < 9 || gain > 13 {
		t.Errorf("expected ~12 dB boost at 60 Hz, got %.2f dB", gain)
	}

	c.Reset()
	treble := tone(10000)
	before = rms(treble)
	c.Apply(treble, frames)
	gain = 20 * math.Log10(rms(treble)/before)

	if math.Abs(gain) > 1 {
		t.Errorf("expected ~0 dB at 10 kHz, got %.2f dB", gain)
	}
}

func TestParseChannelMode(t *testing.T) {
	tests := []struct {
		in   string
		want ChannelMode
		ok   bool
	}{
		{"both", Both, true},
		{"Left", Left, true},
		{"r", Right, true},
		{"dual-mono", DualMono, true},
		{"surround", Both, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChannelMode(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("expected ok=%v, got err=%v", tt.ok, err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if DualMono.Next() != Both {
		t.Errorf("expected DualMono.Next() to wrap to Both")
	}
}
