// ABOUTME: Time-stretch adapter facade
// ABOUTME: Wires the tempo stage, anti-alias filter and rate transposer behind one API
package stretch

import (
	"math"

	"github.com/pzkpfw38t/practicesharp/pkg/audio/resample"
)

const (
	MinTempo     = 0.1
	MaxTempo     = 3.0
	MinSemitones = -12.0
	MaxSemitones = 12.0
)

// Stretcher changes tempo and pitch of an interleaved float32 stream.
// Not safe for concurrent use.
type Stretcher struct {
	sampleRate int
	channels   int
	tempo      float64
	semitones  float64
	profile    Profile

	tempoStage *wsola
	antiAlias  *firFilter
	transposer *resample.Resampler

	stage  []float32
	stage2 []float32
	out    []float32
}

// New creates a stretcher at unity tempo and pitch using DefaultProfile
func New(sampleRate, channels int) *Stretcher {
	s := &Stretcher{
		sampleRate: sampleRate,
		channels:   channels,
		tempo:      1,
		profile:    DefaultProfile,
	}
	s.rebuild()
	return s
}

func (s *Stretcher) rebuild() {
	s.tempoStage = newWSOLA(s.channels)
	s.transposer = resample.NewWithRatio(1, s.channels)
	s.out = s.out[:0]
	s.reconfigure()
}

// PitchRatio returns the frequency ratio for the current semitone setting
func (s *Stretcher) PitchRatio() float64 {
	return math.Pow(2, s.semitones/12)
}

// effectiveProfile applies the unity rule: at 1.0x tempo no stretching
// happens, so the quality filters are turned off.
func (s *Stretcher) effectiveProfile() Profile {
	if math.Abs(s.tempo-1) < unityTolerance {
		return Profile{Name: s.profile.Name}
	}
	return s.profile
}

func (s *Stretcher) reconfigure() {
	ratio := s.PitchRatio()
	stageTempo := s.tempo / ratio
	p := s.effectiveProfile()

	s.tempoStage.configure(stageTempo, resolveParams(p, stageTempo, s.sampleRate))
	s.transposer.SetRatio(ratio)

	if p.UseAAFilter && p.AAFilterLength > 0 && ratio != 1 {
		cutoff := 0.5 * math.Min(1, 1/ratio)
		s.antiAlias = newFIR(p.AAFilterLength, s.channels, cutoff)
	} else {
		s.antiAlias = nil
	}
}

// SetSampleRate changes the stream rate and clears buffered audio
func (s *Stretcher) SetSampleRate(rate int) {
	if rate <= 0 || rate == s.sampleRate {
		return
	}
	s.sampleRate = rate
	s.rebuild()
}

// SetChannels changes the channel count and clears buffered audio
func (s *Stretcher) SetChannels(channels int) {
	if channels <= 0 || channels == s.channels {
		return
	}
	s.channels = channels
	s.rebuild()
}

// SetTempo sets the speed factor, clamped to [MinTempo, MaxTempo]
func (s *Stretcher) SetTempo(tempo float64) {
	s.tempo = math.Max(MinTempo, math.Min(MaxTempo, tempo))
	s.reconfigure()
}

// Tempo returns the current speed factor
func (s *Stretcher) Tempo() float64 {
	return s.tempo
}

// SetPitchSemitones sets the pitch shift, clamped to [MinSemitones, MaxSemitones]
func (s *Stretcher) SetPitchSemitones(semitones float64) {
	s.semitones = math.Max(MinSemitones, math.Min(MaxSemitones, semitones))
	s.reconfigure()
}

// PitchSemitones returns the current pitch shift
func (s *Stretcher) PitchSemitones() float64 {
	return s.semitones
}

// SetQualityProfile installs a quality profile
func (s *Stretcher) SetQualityProfile(p Profile) {
	s.profile = p
	s.reconfigure()
}

// QualityProfile returns the configured profile (not the unity override)
func (s *Stretcher) QualityProfile() Profile {
	return s.profile
}

// PutSamples feeds interleaved samples and processes what it can
func (s *Stretcher) PutSamples(block []float32) {
	s.tempoStage.put(block)
	s.stage = s.tempoStage.process(s.stage[:0])
	s.transpose()
}

func (s *Stretcher) transpose() {
	if len(s.stage) == 0 {
		return
	}
	if s.PitchRatio() == 1 {
		s.out = append(s.out, s.stage...)
		return
	}

	in := s.stage
	if s.antiAlias != nil {
		s.stage2 = s.antiAlias.process(s.stage2[:0], in)
		in = s.stage2
	}
	s.out = s.transposer.Resample(s.out, in)
}

// Available returns the number of frames ready to receive
func (s *Stretcher) Available() int {
	return len(s.out) / s.channels
}

// ReceiveSamples copies up to len(dst)/channels ready frames into dst and
// returns the number of frames copied
func (s *Stretcher) ReceiveSamples(dst []float32) int {
	frames := len(dst) / s.channels
	if avail := s.Available(); frames > avail {
		frames = avail
	}
	n := frames * s.channels
	copy(dst, s.out[:n])
	s.out = s.out[:copy(s.out, s.out[n:])]
	return frames
}

// Flush pushes out everything still buffered, for the end of a region
func (s *Stretcher) Flush() {
	s.stage = s.tempoStage.flush(s.stage[:0])
	s.transpose()
}

// Clear discards all buffered audio and filter state
func (s *Stretcher) Clear() {
	s.tempoStage.clear()
	s.transposer.Reset()
	if s.antiAlias != nil {
		s.antiAlias.reset()
	}
	s.stage = s.stage[:0]
	s.out = s.out[:0]
}
