// ABOUTME: Player property accessors
// ABOUTME: Setters write the parameter store and take effect at the next producer block
package practicesharp

import (
	"time"

	"github.com/pzkpfw38t/practicesharp/pkg/audio/dsp"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/stretch"
)

// Status returns the current lifecycle state
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// FilePath returns the name of the most recently loaded file
func (p *Player) FilePath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filePath
}

// TotalTime returns the duration of the loaded file, 0 if unknown
func (p *Player) TotalTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalTime
}

// Stats returns playback statistics
func (p *Player) Stats() Stats {
	qs := p.queue.Stats()
	return Stats{
		BuffersEnqueued: qs.Enqueued,
		BytesEnqueued:   qs.EnqueuedBytes,
		BuffersPlayed:   qs.Consumed,
		QueueDepth:      qs.Depth,
		Underruns:       qs.Underruns,
		Loops:           p.loops.Load(),
	}
}

// CurrentPlayTime returns the source position of the buffer the output is
// playing
func (p *Player) CurrentPlayTime() time.Duration {
	return time.Duration(p.playTime.Load())
}

// SetCurrentPlayTime requests a jump to d. The producer performs the seek.
func (p *Player) SetCurrentPlayTime(d time.Duration) {
	p.params.RequestPosition(d)
}

// Seek moves playback by delta relative to the current play time
func (p *Player) Seek(delta time.Duration) {
	target := max(p.CurrentPlayTime()+delta, 0)
	if total := p.TotalTime(); total > 0 {
		target = min(target, total)
	}
	p.SetCurrentPlayTime(target)
}

func (p *Player) Tempo() float64         { return p.params.Tempo() }
func (p *Player) SetTempo(tempo float64) { p.params.SetTempo(tempo) }

func (p *Player) Pitch() float64 { return p.params.Pitch() }

// SetPitch sets the pitch shift in semitones
func (p *Player) SetPitch(semitones float64) { p.params.SetPitch(semitones) }

func (p *Player) Volume() float64 { return p.params.Volume() }

// SetVolume sets the output volume in [0, 1]
func (p *Player) SetVolume(volume float64) { p.params.SetVolume(volume) }

func (p *Player) EqLow() float64      { return p.params.EqGain(dsp.LowBand) }
func (p *Player) SetEqLow(db float64) { p.params.SetEqGain(dsp.LowBand, db) }

func (p *Player) EqMid() float64      { return p.params.EqGain(dsp.MidBand) }
func (p *Player) SetEqMid(db float64) { p.params.SetEqGain(dsp.MidBand, db) }

func (p *Player) EqHigh() float64      { return p.params.EqGain(dsp.HighBand) }
func (p *Player) SetEqHigh(db float64) { p.params.SetEqGain(dsp.HighBand, db) }

func (p *Player) InputChannelMode() dsp.ChannelMode { return p.params.Effects().Mode }

// SetInputChannelMode selects which input channels feed the output
func (p *Player) SetInputChannelMode(m dsp.ChannelMode) { p.params.SetChannelMode(m) }

func (p *Player) SwapLeftRight() bool     { return p.params.Effects().SwapLeftRight }
func (p *Player) SetSwapLeftRight(v bool) { p.params.SetSwapLeftRight(v) }

func (p *Player) SuppressVocals() bool     { return p.params.Effects().SuppressVocals }
func (p *Player) SetSuppressVocals(v bool) { p.params.SetSuppressVocals(v) }

func (p *Player) Loop() bool { return p.params.Region().Loop }

// SetLoop enables looping between the start and end markers
func (p *Player) SetLoop(v bool) { p.params.SetLoop(v) }

func (p *Player) StartMarker() time.Duration     { return p.params.Region().StartMarker }
func (p *Player) SetStartMarker(d time.Duration) { p.params.SetStartMarker(d) }

func (p *Player) EndMarker() time.Duration { return p.params.Region().EndMarker }

// SetEndMarker sets where a loop pass ends; 0 means end of file
func (p *Player) SetEndMarker(d time.Duration) { p.params.SetEndMarker(d) }

func (p *Player) Cue() time.Duration { return p.params.Region().Cue }

// SetCue sets the count-in played before each pass from the start marker
func (p *Player) SetCue(d time.Duration) { p.params.SetCue(d) }

func (p *Player) TimeStretchProfile() stretch.Profile { return p.params.Profile() }

// SetTimeStretchProfile selects the time stretch quality settings
func (p *Player) SetTimeStretchProfile(profile stretch.Profile) { p.params.SetProfile(profile) }
