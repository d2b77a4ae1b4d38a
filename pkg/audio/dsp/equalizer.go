// ABOUTME: Three-band equalizer built from RBJ cookbook biquads
// ABOUTME: Low shelf, peaking and high shelf bands with per-channel filter state
package dsp

import "math"

// Band identifies an equalizer band
type Band int

const (
	LowBand Band = iota
	MidBand
	HighBand
	numBands
)

const (
	LowShelfHz  = 250.0
	PeakHz      = 1000.0
	HighShelfHz = 4000.0

	MinGainDB = -24.0
	MaxGainDB = 12.0

	peakQ = 1.0
)

type filterKind int

const (
	lowShelf filterKind = iota
	peaking
	highShelf
)

// biquad is a direct form I second-order section with state per channel
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     []float64
}

func newBiquad(channels int) *biquad {
	return &biquad{
		b0: 1,
		x1: make([]float64, channels),
		x2: make([]float64, channels),
		y1: make([]float64, channels),
		y2: make([]float64, channels),
	}
}

func (b *biquad) design(kind filterKind, sampleRate, freq, gainDB float64) {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case lowShelf:
		alpha := sinw / 2 * math.Sqrt2
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cosw + sq)
		b1 = 2 * a * ((a - 1) - (a+1)*cosw)
		b2 = a * ((a + 1) - (a-1)*cosw - sq)
		a0 = (a + 1) + (a-1)*cosw + sq
		a1 = -2 * ((a - 1) + (a+1)*cosw)
		a2 = (a + 1) + (a-1)*cosw - sq
	case highShelf:
		alpha := sinw / 2 * math.Sqrt2
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) + (a-1)*cosw + sq)
		b1 = -2 * a * ((a - 1) + (a+1)*cosw)
		b2 = a * ((a + 1) + (a-1)*cosw - sq)
		a0 = (a + 1) - (a-1)*cosw + sq
		a1 = 2 * ((a - 1) - (a+1)*cosw)
		a2 = (a + 1) - (a-1)*cosw - sq
	case peaking:
		alpha := sinw / (2 * peakQ)
		b0 = 1 + alpha*a
		b1 = -2 * cosw
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cosw
		a2 = 1 - alpha/a
	}

	b.b0 = b0 / a0
	b.b1 = b1 / a0
	b.b2 = b2 / a0
	b.a1 = a1 / a0
	b.a2 = a2 / a0
}

func (b *biquad) process(ch int, x float64) float64 {
	y := b.b0*x + b.b1*b.x1[ch] + b.b2*b.x2[ch] - b.a1*b.y1[ch] - b.a2*b.y2[ch]
	b.x2[ch] = b.x1[ch]
	b.x1[ch] = x
	b.y2[ch] = b.y1[ch]
	b.y1[ch] = y
	return y
}

func (b *biquad) reset() {
	for ch := range b.x1 {
		b.x1[ch], b.x2[ch], b.y1[ch], b.y2[ch] = 0, 0, 0, 0
	}
}

type eqBand struct {
	kind   filterKind
	freq   float64
	gainDB float64
	filter *biquad
}

// Equalizer is a 3-band equalizer. A band at 0 dB is bypassed.
type Equalizer struct {
	sampleRate float64
	channels   int
	bands      [numBands]eqBand
}

// NewEqualizer creates a flat equalizer
func NewEqualizer(sampleRate, channels int) *Equalizer {
	e := &Equalizer{
		sampleRate: float64(sampleRate),
		channels:   channels,
	}
	e.bands[LowBand] = eqBand{kind: lowShelf, freq: LowShelfHz, filter: newBiquad(channels)}
	e.bands[MidBand] = eqBand{kind: peaking, freq: PeakHz, filter: newBiquad(channels)}
	e.bands[HighBand] = eqBand{kind: highShelf, freq: HighShelfHz, filter: newBiquad(channels)}
	return e
}

// ClampGain limits a band gain to the supported range
func ClampGain(db float64) float64 {
	return math.Max(MinGainDB, math.Min(MaxGainDB, db))
}

// SetGain redesigns a band's filter. Returns false if the gain is unchanged.
func (e *Equalizer) SetGain(band Band, db float64) bool {
	db = ClampGain(db)
	b := &e.bands[band]
	if b.gainDB == db {
		return false
	}
	b.gainDB = db
	b.filter.design(b.kind, e.sampleRate, b.freq, db)
	return true
}

// Gain returns a band's current gain in dB
func (e *Equalizer) Gain(band Band) float64 {
	return e.bands[band].gainDB
}

// Process filters interleaved samples in place
func (e *Equalizer) Process(samples []float32, frames int) {
	for bi := range e.bands {
		b := &e.bands[bi]
		if b.gainDB == 0 {
			continue
		}
		for i := 0; i < frames; i++ {
			for ch := 0; ch < e.channels; ch++ {
				idx := i*e.channels + ch
				samples[idx] = float32(b.filter.process(ch, float64(samples[idx])))
			}
		}
	}
}

// Reset clears filter history, e.g. after a seek
func (e *Equalizer) Reset() {
	for i := range e.bands {
		e.bands[i].filter.reset()
	}
}
