// ABOUTME: Tests for the time-stretch adapter
// ABOUTME: Tests unity passthrough, tempo output ratios, pitch length, format changes and profiles
package stretch

import (
	"math"
	"testing"
	"time"
)

const testRate = 44100

func sine(frames int, freq float64) []float32 {
	out := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/testRate))
		out[i*2] = v
		out[i*2+1] = v
	}
	return out
}

// run feeds stereo input in 4096-frame blocks, flushes, and returns all output
func run(s *Stretcher, input []float32) []float32 {
	return runChannels(s, input, 2)
}

func runChannels(s *Stretcher, input []float32, channels int) []float32 {
	block := 4096 * channels
	var out []float32
	buf := make([]float32, block)

	drain := func() {
		for {
			n := s.ReceiveSamples(buf)
			if n == 0 {
				return
			}
			out = append(out, buf[:n*channels]...)
		}
	}

	for start := 0; start < len(input); start += block {
		end := start + block
		if end > len(input) {
			end = len(input)
		}
		s.PutSamples(input[start:end])
		drain()
	}
	s.Flush()
	drain()
	return out
}

func TestUnityPassthrough(t *testing.T) {
	s := New(testRate, 2)
	input := sine(testRate, 440)

	out := run(s, input)

	if len(out) != len(input) {
		t.Fatalf("expected %d samples, got %d", len(input), len(out))
	}
	for i := range input {
		if out[i] != input[i] {
			t.Fatalf("sample %d: expected %f, got %f", i, input[i], out[i])
		}
	}
}

func TestTempoOutputLength(t *testing.T) {
	tests := []struct {
		name  string
		tempo float64
	}{
		{"double speed", 2.0},
		{"half speed", 0.5},
		{"three quarters", 0.75},
		{"slight speedup", 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testRate, 2)
			s.SetTempo(tt.tempo)

			frames := 10 * testRate
			out := run(s, sine(frames, 220))

			expected := float64(frames) / tt.tempo
			got := float64(len(out) / 2)
			// One block of slack for engine latency and flush rounding
			if math.Abs(got-expected) > 4096 {
				t.Errorf("expected ~%.0f frames, got %.0f", expected, got)
			}
		})
	}
}

func TestPitchShiftKeepsDuration(t *testing.T) {
	for _, semis := range []float64{-12, -5, 7, 12} {
		s := New(testRate, 2)
		s.SetPitchSemitones(semis)

		frames := 5 * testRate
		out := run(s, sine(frames, 330))

		got := float64(len(out) / 2)
		if math.Abs(got-float64(frames)) > 4096 {
			t.Errorf("semitones %v: expected ~%d frames, got %.0f", semis, frames, got)
		}
	}
}

func TestClampAndRatio(t *testing.T) {
	s := New(testRate, 2)

	s.SetTempo(10)
	if s.Tempo() != MaxTempo {
		t.Errorf("expected tempo %v, got %v", MaxTempo, s.Tempo())
	}
	s.SetTempo(0)
	if s.Tempo() != MinTempo {
		t.Errorf("expected tempo %v, got %v", MinTempo, s.Tempo())
	}

	s.SetPitchSemitones(12)
	if math.Abs(s.PitchRatio()-2) > 1e-9 {
		t.Errorf("expected pitch ratio 2, got %v", s.PitchRatio())
	}
	s.SetPitchSemitones(-40)
	if s.PitchSemitones() != MinSemitones {
		t.Errorf("expected %v semitones, got %v", MinSemitones, s.PitchSemitones())
	}
}

func TestUnityRuleDisablesFilters(t *testing.T) {
	s := New(testRate, 2)
	s.SetQualityProfile(PracticeProfile)

	p := s.effectiveProfile()
	if p.UseAAFilter || p.Sequence != 0 || p.SeekWindow != 0 || p.Overlap != 0 {
		t.Errorf("expected filters off at unity tempo, got %+v", p)
	}

	s.SetTempo(0.8)
	if s.effectiveProfile() != PracticeProfile {
		t.Errorf("expected practice profile at 0.8x, got %+v", s.effectiveProfile())
	}
	if s.QualityProfile() != PracticeProfile {
		t.Errorf("expected configured profile to be kept")
	}
}

func TestClear(t *testing.T) {
	s := New(testRate, 2)
	s.SetTempo(0.5)
	s.PutSamples(sine(testRate, 440))

	if s.Available() == 0 {
		t.Fatal("expected output after one second of input")
	}

	s.Clear()
	if s.Available() != 0 {
		t.Errorf("expected 0 frames after clear, got %d", s.Available())
	}
	if s.tempoStage.frames() != 0 {
		t.Errorf("expected empty tempo stage after clear")
	}
}

func TestSetSampleRateClearsAndKeepsRatio(t *testing.T) {
	s := New(testRate, 2)
	s.SetTempo(0.5)
	s.PutSamples(sine(testRate, 440))
	if s.Available() == 0 {
		t.Fatal("expected output before the rate change")
	}

	const rate = 48000
	s.SetSampleRate(rate)
	if s.Available() != 0 {
		t.Errorf("expected 0 frames after rate change, got %d", s.Available())
	}
	if s.tempoStage.frames() != 0 {
		t.Error("expected empty tempo stage after rate change")
	}

	frames := 5 * rate
	input := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*220*float64(i)/rate))
		input[i*2] = v
		input[i*2+1] = v
	}
	out := run(s, input)

	expected := float64(frames) / 0.5
	if got := float64(len(out) / 2); math.Abs(got-expected) > 4096 {
		t.Errorf("expected ~%.0f frames at %d Hz, got %.0f", expected, rate, got)
	}
}

func TestSetChannelsClearsAndKeepsRatio(t *testing.T) {
	s := New(testRate, 2)
	s.SetTempo(2)
	s.PutSamples(sine(testRate, 440))

	s.SetChannels(1)
	if s.Available() != 0 {
		t.Errorf("expected 0 frames after channel change, got %d", s.Available())
	}

	frames := 5 * testRate
	input := make([]float32, frames)
	for i := range input {
		input[i] = float32(0.5 * math.Sin(2*math.Pi*220*float64(i)/testRate))
	}
	out := runChannels(s, input, 1)

	expected := float64(frames) / 2
	if got := float64(len(out)); math.Abs(got-expected) > 4096 {
		t.Errorf("expected ~%.0f mono frames, got %.0f", expected, got)
	}
}

func TestResolveParamsAuto(t *testing.T) {
	tests := []struct {
		tempo    float64
		sequence time.Duration
		seek     time.Duration
	}{
		{0.25, 125 * time.Millisecond, 25 * time.Millisecond},
		{0.5, 125 * time.Millisecond, 25 * time.Millisecond},
		{2.0, 50 * time.Millisecond, 15 * time.Millisecond},
		{3.0, 50 * time.Millisecond, 15 * time.Millisecond},
	}

	for _, tt := range tests {
		p := resolveParams(DefaultProfile, tt.tempo, 1000)
		if p.sequence != int(tt.sequence/time.Millisecond) {
			t.Errorf("tempo %v: expected sequence %d, got %d", tt.tempo, tt.sequence/time.Millisecond, p.sequence)
		}
		if p.seek != int(tt.seek/time.Millisecond) {
			t.Errorf("tempo %v: expected seek %d, got %d", tt.tempo, tt.seek/time.Millisecond, p.seek)
		}
		if p.overlap != 8 {
			t.Errorf("tempo %v: expected overlap 8, got %d", tt.tempo, p.overlap)
		}
	}
}

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("Practice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != PracticeProfile {
		t.Errorf("expected practice profile, got %+v", p)
	}

	if _, err := ProfileByName("studio"); err == nil {
		t.Error("expected error for unknown profile")
	}

	names := ProfileNames()
	if len(names) != 3 || names[0] != "default" {
		t.Errorf("unexpected profile names %v", names)
	}
}
