// ABOUTME: Playback parameters shared between the control goroutine and the producer loop
// ABOUTME: Fine-grained locks with atomic change flags for double-checked application
package player

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pzkpfw38t/practicesharp/pkg/audio/dsp"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/stretch"
)

const (
	MinVolume = 0.0
	MaxVolume = 1.0
)

// guarded holds one parameter group behind its own lock. The changed flag is
// atomic so the producer can peek at it without taking the lock.
type guarded[T any] struct {
	mu      sync.Mutex
	value   T
	changed atomic.Bool
}

func (g *guarded[T]) get() T {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

func (g *guarded[T]) set(v T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = v
	g.changed.Store(true)
}

func (g *guarded[T]) update(fn func(*T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.value)
	g.changed.Store(true)
}

// apply runs fn with the current value if it changed since the last apply.
// Unlocked peek, then locked re-check, apply and clear.
func (g *guarded[T]) apply(fn func(T)) bool {
	if !g.changed.Load() {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.changed.Load() {
		return false
	}
	fn(g.value)
	g.changed.Store(false)
	return true
}

// Region holds the loop and marker settings
type Region struct {
	Loop        bool
	StartMarker time.Duration
	EndMarker   time.Duration
	Cue         time.Duration
}

// EffectiveEnd returns the end marker when looping with a marker set,
// otherwise total (end of source)
func (r Region) EffectiveEnd(total time.Duration) time.Duration {
	if r.Loop && r.EndMarker > 0 && r.EndMarker < total {
		return r.EndMarker
	}
	return total
}

// Parameters is the parameter store. Setters are called from the control
// goroutine; ApplyX methods are called from the producer loop.
type Parameters struct {
	tempo   guarded[float64]
	pitch   guarded[float64]
	volume  guarded[float64]
	effects guarded[dsp.Settings]
	profile guarded[stretch.Profile]
	region  guarded[Region]

	position guarded[time.Duration]
}

// NewParameters creates a store at unity tempo, no pitch shift, full volume
func NewParameters() *Parameters {
	p := &Parameters{}
	p.tempo.value = 1
	p.volume.value = MaxVolume
	p.profile.value = stretch.DefaultProfile
	return p
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// SetTempo sets the speed factor, clamped to the supported range
func (p *Parameters) SetTempo(v float64) {
	p.tempo.set(clamp(v, stretch.MinTempo, stretch.MaxTempo))
}

func (p *Parameters) Tempo() float64 { return p.tempo.get() }

func (p *Parameters) ApplyTempo(fn func(float64)) bool { return p.tempo.apply(fn) }

// SetPitch sets the pitch shift in semitones
func (p *Parameters) SetPitch(v float64) {
	p.pitch.set(clamp(v, stretch.MinSemitones, stretch.MaxSemitones))
}

func (p *Parameters) Pitch() float64 { return p.pitch.get() }

func (p *Parameters) ApplyPitch(fn func(float64)) bool { return p.pitch.apply(fn) }

// SetVolume sets the output volume in [0, 1]
func (p *Parameters) SetVolume(v float64) {
	p.volume.set(clamp(v, MinVolume, MaxVolume))
}

func (p *Parameters) Volume() float64 { return p.volume.get() }

func (p *Parameters) ApplyVolume(fn func(float64)) bool { return p.volume.apply(fn) }

// SetEqGain sets one equalizer band's gain in dB
func (p *Parameters) SetEqGain(band dsp.Band, db float64) {
	db = dsp.ClampGain(db)
	p.effects.update(func(s *dsp.Settings) {
		switch band {
		case dsp.LowBand:
			s.LowGainDB = db
		case dsp.MidBand:
			s.MidGainDB = db
		case dsp.HighBand:
			s.HighGainDB = db
		}
	})
}

// EqGain returns one equalizer band's gain in dB
func (p *Parameters) EqGain(band dsp.Band) float64 {
	s := p.effects.get()
	switch band {
	case dsp.LowBand:
		return s.LowGainDB
	case dsp.MidBand:
		return s.MidGainDB
	case dsp.HighBand:
		return s.HighGainDB
	}
	return 0
}

func (p *Parameters) SetSuppressVocals(v bool) {
	p.effects.update(func(s *dsp.Settings) { s.SuppressVocals = v })
}

func (p *Parameters) SetChannelMode(m dsp.ChannelMode) {
	p.effects.update(func(s *dsp.Settings) { s.Mode = m })
}

func (p *Parameters) SetSwapLeftRight(v bool) {
	p.effects.update(func(s *dsp.Settings) { s.SwapLeftRight = v })
}

// Effects returns a snapshot of the effect settings
func (p *Parameters) Effects() dsp.Settings { return p.effects.get() }

func (p *Parameters) ApplyEffects(fn func(dsp.Settings)) bool { return p.effects.apply(fn) }

func (p *Parameters) SetProfile(v stretch.Profile) { p.profile.set(v) }

func (p *Parameters) Profile() stretch.Profile { return p.profile.get() }

func (p *Parameters) ApplyProfile(fn func(stretch.Profile)) bool { return p.profile.apply(fn) }

func (p *Parameters) SetLoop(v bool) {
	p.region.update(func(r *Region) { r.Loop = v })
}

func (p *Parameters) SetStartMarker(d time.Duration) {
	p.region.update(func(r *Region) { r.StartMarker = max(d, 0) })
}

func (p *Parameters) SetEndMarker(d time.Duration) {
	p.region.update(func(r *Region) { r.EndMarker = max(d, 0) })
}

func (p *Parameters) SetCue(d time.Duration) {
	p.region.update(func(r *Region) { r.Cue = max(d, 0) })
}

// Region returns a snapshot of the loop and marker settings
func (p *Parameters) Region() Region { return p.region.get() }

func (p *Parameters) ApplyRegion(fn func(Region)) bool { return p.region.apply(fn) }

// RequestPosition asks the producer to reposition playback
func (p *Parameters) RequestPosition(d time.Duration) {
	p.position.set(max(d, 0))
}

// PositionPending reports whether a reposition request is waiting
func (p *Parameters) PositionPending() bool {
	return p.position.changed.Load()
}

// TakePosition consumes a pending reposition request
func (p *Parameters) TakePosition() (time.Duration, bool) {
	var target time.Duration
	ok := p.position.apply(func(d time.Duration) { target = d })
	return target, ok
}
