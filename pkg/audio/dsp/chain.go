// ABOUTME: The DSP effect chain applied to each decoded block
// ABOUTME: Equalizer, vocal suppression, channel mode and left/right swap
package dsp

// Gain applied when two channels are summed or subtracted, keeping headroom
const mixGain = 0.7

// Settings is a snapshot of the effect parameters
type Settings struct {
	LowGainDB      float64
	MidGainDB      float64
	HighGainDB     float64
	SuppressVocals bool
	Mode           ChannelMode
	SwapLeftRight  bool
}

// Chain applies the effect settings to interleaved float32 blocks
type Chain struct {
	channels int
	eq       *Equalizer
	settings Settings
}

// NewChain creates a chain with flat settings
func NewChain(sampleRate, channels int) *Chain {
	return &Chain{
		channels: channels,
		eq:       NewEqualizer(sampleRate, channels),
	}
}

// Configure installs new settings. Only equalizer bands whose gain changed
// are redesigned.
func (c *Chain) Configure(s Settings) {
	c.eq.SetGain(LowBand, s.LowGainDB)
	c.eq.SetGain(MidBand, s.MidGainDB)
	c.eq.SetGain(HighBand, s.HighGainDB)

	s.LowGainDB = c.eq.Gain(LowBand)
	s.MidGainDB = c.eq.Gain(MidBand)
	s.HighGainDB = c.eq.Gain(HighBand)
	c.settings = s
}

// Settings returns the active settings
func (c *Chain) Settings() Settings {
	return c.settings
}

// Reset clears equalizer state
func (c *Chain) Reset() {
	c.eq.Reset()
}

// Apply processes frames of interleaved samples in place
func (c *Chain) Apply(samples []float32, frames int) {
	if frames*c.channels > len(samples) {
		frames = len(samples) / c.channels
	}

	c.eq.Process(samples, frames)

	if c.channels != 2 {
		return
	}

	s := c.settings
	for i := 0; i < frames; i++ {
		l := samples[i*2]
		r := samples[i*2+1]

		if s.SuppressVocals {
			v := (l - r) * mixGain
			l, r = v, v
		}

		switch s.Mode {
		case Left:
			r = l
		case Right:
			l = r
		case DualMono:
			m := (l + r) / 2 * mixGain
			l, r = m, m
		}

		if s.SwapLeftRight {
			l, r = r, l
		}

		samples[i*2] = l
		samples[i*2+1] = r
	}
}
