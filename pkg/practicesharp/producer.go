// ABOUTME: Producer loop of a playback session
// ABOUTME: Decodes, processes and stretches blocks into the buffer queue with looping and seeking
package practicesharp

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pzkpfw38t/practicesharp/internal/player"
	"github.com/pzkpfw38t/practicesharp/pkg/audio"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/decode"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/dsp"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/output"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/stretch"
)

// producer holds the state of one session's producer goroutine. Nothing in
// it is shared; other goroutines talk to it through the parameter store.
type producer struct {
	p      *Player
	s      *session
	cfg    *Config
	logger *log.Logger
	format audio.Format
	params *player.Parameters
	queue  *player.BufferQueue

	source    decode.Source
	sink      output.Sink
	chain     *dsp.Chain
	stretcher *stretch.Stretcher

	total    time.Duration
	region   player.Region
	tempo    float64
	cueArmed bool

	// fromStart is set while the current pass began at the start marker
	fromStart bool

	// anchor is the source position of the first frame emitted since the
	// last seek, loop or tempo change; emitted counts output frames since
	anchor     time.Duration
	emitted    int64
	passFrames int64

	pcm    []byte
	block  []float32
	out    []float32
	outPCM []byte
}

func newProducer(p *Player, s *session) *producer {
	format := p.format
	frames := p.config.BlockFrames

	pr := &producer{
		p:         p,
		s:         s,
		cfg:       &p.config,
		logger:    s.logger,
		format:    format,
		params:    p.params,
		queue:     p.queue,
		source:    s.source,
		sink:      s.getSink(),
		chain:     dsp.NewChain(format.SampleRate, format.Channels),
		stretcher: stretch.New(format.SampleRate, format.Channels),
		pcm:       make([]byte, frames*format.BytesPerFrame()),
		block:     make([]float32, frames*format.Channels),
		out:       make([]float32, frames*format.Channels),
		outPCM:    make([]byte, frames*format.BytesPerFrame()),
	}
	pr.total = pr.source.TotalTime()

	pr.tempo = p.params.Tempo()
	pr.stretcher.SetQualityProfile(p.params.Profile())
	pr.stretcher.SetTempo(pr.tempo)
	pr.stretcher.SetPitchSemitones(p.params.Pitch())
	pr.chain.Configure(p.params.Effects())
	pr.region = p.params.Region()
	return pr
}

func (pr *producer) run() error {
	pr.applyParameters()
	if err := pr.seek(pr.region.StartMarker); err != nil {
		return err
	}
	pr.fromStart = true
	pr.cueArmed = pr.region.Cue > 0

	if err := pr.s.playUnlessPaused(); err != nil {
		return fmt.Errorf("%w: start output: %w", ErrProcessing, err)
	}
	pr.logger.Info("Playback started", "start", pr.region.StartMarker, "end", pr.end(), "tempo", pr.tempo)

	for {
		if pr.s.stopped() {
			return nil
		}

		pr.applyParameters()

		if target, ok := pr.params.TakePosition(); ok {
			if err := pr.reposition(target); err != nil {
				return err
			}
			continue
		}

		if pr.cueArmed {
			pr.cueArmed = false
			pr.logger.Debug("Cue wait", "cue", pr.region.Cue)
			if !cueWait(pr.region.Cue, pr.cfg.CueUnit, pr.s.stop, pr.p.notifier.cuePulse) {
				return nil
			}
			continue
		}

		atEnd, err := pr.readBlock()
		if err != nil {
			return err
		}
		if !atEnd {
			if ok, err := pr.drain(); !ok {
				return err
			}
			continue
		}

		pr.stretcher.Flush()
		if ok, err := pr.drain(); !ok {
			return err
		}
		if pr.params.PositionPending() {
			continue
		}

		// A pass from the start marker that decoded nothing means the region
		// is empty; looping it would spin. A pass that began outside the
		// region after a seek wraps to the start marker like any other.
		if pr.region.Loop && (pr.passFrames > 0 || !pr.fromStart) {
			if err := pr.restartLoop(); err != nil {
				return err
			}
			continue
		}

		if !pr.awaitPlayout() {
			return nil
		}
		if pr.params.PositionPending() {
			continue
		}

		if err := pr.sink.Stop(); err != nil {
			pr.logger.Warn("Failed to stop output", "err", err)
		}
		pr.logger.Info("Playback finished")
		pr.p.transition(pr.s, Stopped, Playing, Pausing)
		return nil
	}
}

// applyParameters installs every parameter group changed since the last
// iteration
func (pr *producer) applyParameters() {
	pr.params.ApplyVolume(func(v float64) {
		pr.sink.SetVolume(v)
	})
	pr.params.ApplyTempo(func(t float64) {
		pr.reanchor(pr.timestamp())
		pr.tempo = t
		pr.stretcher.SetTempo(t)
		pr.logger.Debug("Tempo applied", "tempo", t)
	})
	pr.params.ApplyPitch(func(semitones float64) {
		pr.stretcher.SetPitchSemitones(semitones)
		pr.logger.Debug("Pitch applied", "semitones", semitones)
	})
	pr.params.ApplyEffects(func(s dsp.Settings) {
		pr.chain.Configure(s)
	})
	pr.params.ApplyProfile(func(p stretch.Profile) {
		pr.stretcher.SetQualityProfile(p)
		pr.logger.Debug("Time stretch profile applied", "profile", p.Name)
	})
	pr.params.ApplyRegion(func(r player.Region) {
		pr.region = r
	})
}

// end returns the position where the current pass stops; 0 means end of data
func (pr *producer) end() time.Duration {
	r := pr.region
	end := r.EffectiveEnd(pr.total)
	if pr.total <= 0 && r.Loop && r.EndMarker > 0 {
		end = r.EndMarker
	}
	if r.Loop && end > 0 && end <= r.StartMarker {
		end = pr.total
	}
	return end
}

func (pr *producer) reanchor(pos time.Duration) {
	pr.anchor = pos
	pr.emitted = 0
}

// timestamp maps the next output frame back to a source position
func (pr *producer) timestamp() time.Duration {
	ts := pr.anchor + time.Duration(float64(pr.format.FramesToDuration(pr.emitted))*pr.tempo)
	if end := pr.end(); end > 0 && ts > end {
		ts = end
	}
	return max(ts, pr.anchor)
}

// seek moves the source and discards everything downstream of it except
// the queue
func (pr *producer) seek(target time.Duration) error {
	target = max(target, 0)
	if pr.total > 0 {
		target = min(target, pr.total)
	}

	if err := pr.source.Seek(target); err != nil {
		return fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	pr.source.Flush()
	pr.stretcher.Clear()
	pr.chain.Reset()
	pr.reanchor(target)
	pr.passFrames = 0
	return nil
}

// reposition handles a play-position request
func (pr *producer) reposition(target time.Duration) error {
	if err := pr.sink.Pause(); err != nil {
		pr.logger.Warn("Failed to pause output", "err", err)
	}

	if err := pr.seek(target); err != nil {
		return err
	}
	pr.queue.Flush()

	if err := pr.s.playUnlessPaused(); err != nil {
		pr.logger.Warn("Failed to resume output", "err", err)
	}

	pr.fromStart = target == pr.region.StartMarker
	pr.cueArmed = pr.fromStart && pr.region.Cue > 0
	pr.logger.Debug("Repositioned", "position", target)
	return nil
}

func (pr *producer) restartLoop() error {
	if err := pr.seek(pr.region.StartMarker); err != nil {
		return err
	}
	loops := pr.p.loops.Add(1)
	pr.fromStart = true
	pr.cueArmed = pr.region.Cue > 0
	pr.logger.Debug("Loop restarted", "loops", loops, "start", pr.region.StartMarker)
	return nil
}

// readBlock decodes one block, runs it through the effects and feeds the
// stretcher. It reports whether the pass reached its end.
func (pr *producer) readBlock() (bool, error) {
	bpf := pr.format.BytesPerFrame()
	want := len(pr.pcm)

	end := pr.end()
	if end > 0 {
		pos := pr.source.CurrentTime()
		if pos >= end {
			return true, nil
		}
		want = min(want, pr.format.DurationToBytes(end-pos))
		if want < bpf {
			return true, nil
		}
	}

	n, err := io.ReadFull(pr.source, pr.pcm[:want])
	if frames := n / bpf; frames > 0 {
		samples := audio.DecodePCM16(pr.block, pr.pcm[:frames*bpf])
		pr.chain.Apply(pr.block[:samples], frames)
		pr.stretcher.PutSamples(pr.block[:samples])
		pr.passFrames += int64(frames)
	}

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("%w: read %s: %w", ErrProcessing, pr.s.name, err)
	}
	return end > 0 && pr.source.CurrentTime() >= end, nil
}

// drain moves everything the stretcher has ready into the queue. It returns
// false when the session is stopping or the queue rejected a buffer, and
// returns early when a seek is pending.
func (pr *producer) drain() (bool, error) {
	for {
		if pr.params.PositionPending() {
			return true, nil
		}

		frames := pr.stretcher.ReceiveSamples(pr.out)
		if frames == 0 {
			return true, nil
		}

		n := audio.EncodePCM16(pr.outPCM, pr.out[:frames*pr.format.Channels])
		ts := pr.timestamp()
		pr.emitted += int64(frames)

		if err := pr.queue.Enqueue(pr.outPCM[:n], ts); err != nil {
			return false, fmt.Errorf("%w: enqueue at %v: %w", ErrProcessing, ts, err)
		}
		if !pr.waitBackpressure() {
			return false, nil
		}
	}
}

// waitBackpressure holds the producer while the queue is busy
func (pr *producer) waitBackpressure() bool {
	for pr.queue.Depth() > pr.cfg.BusyQueuedBuffersThreshold {
		if pr.params.PositionPending() {
			return true
		}
		if !pr.waitDequeue() {
			return false
		}
	}
	return true
}

// waitDequeue waits for the sink to consume a buffer, at most one poll
// interval. Returns false when the session is stopping.
func (pr *producer) waitDequeue() bool {
	timer := time.NewTimer(pr.cfg.BackpressurePoll)
	defer timer.Stop()

	select {
	case <-pr.s.stop:
		return false
	case <-pr.queue.Dequeued():
	case <-timer.C:
	}
	return true
}

// awaitPlayout waits for the queue to empty at the end of the track. The
// wait is bounded by DrainTimeout of unpaused time.
func (pr *producer) awaitPlayout() bool {
	deadline := time.Now().Add(pr.cfg.DrainTimeout)
	for pr.queue.Depth() > 0 {
		if pr.params.PositionPending() {
			return true
		}
		if pr.p.Status() == Pausing {
			deadline = time.Now().Add(pr.cfg.DrainTimeout)
		}
		if time.Now().After(deadline) {
			pr.logger.Warn("Queued audio did not play out in time", "depth", pr.queue.Depth())
			return true
		}
		if !pr.waitDequeue() {
			return false
		}
	}
	return true
}
