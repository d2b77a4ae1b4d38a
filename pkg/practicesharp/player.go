// ABOUTME: Practice player orchestrating decode, effects, time stretch and output
// ABOUTME: Owns the lifecycle state machine and one playback session per loaded file
package practicesharp

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pzkpfw38t/practicesharp/internal/player"
	"github.com/pzkpfw38t/practicesharp/pkg/audio"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/decode"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/output"
)

// Stats contains playback statistics
type Stats struct {
	BuffersEnqueued int64
	BytesEnqueued   int64
	BuffersPlayed   int64
	QueueDepth      int
	Underruns       int64
	Loops           int64
}

// Player plays one audio file at a time with adjustable tempo, pitch,
// effects and loop region. Control methods are meant to be called from a
// single goroutine; property setters may be called from any goroutine.
type Player struct {
	config   Config
	logger   *log.Logger
	format   audio.Format
	params   *player.Parameters
	queue    *player.BufferQueue
	notifier *notifier

	mu        sync.Mutex
	status    Status
	session   *session
	filePath  string
	totalTime time.Duration

	playTime atomic.Int64
	loops    atomic.Int64
}

// session is one loaded file. Its producer goroutine owns the source and
// the stretch engine; the sink is shared with the control methods.
type session struct {
	id     string
	name   string
	logger *log.Logger
	open   func(sampleRate int) (decode.Source, error)

	mu     sync.Mutex
	source decode.Source
	sink   output.Sink

	// runMu orders pause and resume calls on the sink; paused is the state
	// the user asked for, which the producer must not override
	runMu  sync.Mutex
	paused bool

	start       chan struct{}
	startOnce   sync.Once
	initialized chan struct{}
	initOnce    sync.Once
	initErr     error
	stop        chan struct{}
	stopOnce    sync.Once
	done        chan struct{}
	releaseOnce sync.Once
}

// New creates a player. Call Initialize before loading audio.
func New(config Config) *Player {
	config.setDefaults()

	p := &Player{
		config: config,
		logger: config.Logger,
		format: audio.DefaultFormat(config.SampleRate),
		params: player.NewParameters(),
	}
	p.notifier = newNotifier(&p.config)
	p.queue = player.NewBufferQueue(config.MaxQueuedBuffers, p.onBufferPlaying)
	return p
}

// onBufferPlaying runs on the sink's pull goroutine under the queue lock
func (p *Player) onBufferPlaying(ts time.Duration) {
	p.playTime.Store(int64(ts))
	p.notifier.playTime(ts)
}

func newSession(name string, logger *log.Logger, open func(int) (decode.Source, error)) *session {
	id := uuid.New().String()
	return &session{
		id:          id,
		name:        name,
		logger:      logger.With("session", id),
		open:        open,
		start:       make(chan struct{}),
		initialized: make(chan struct{}),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (s *session) releaseStart() { s.startOnce.Do(func() { close(s.start) }) }
func (s *session) signalStop()   { s.stopOnce.Do(func() { close(s.stop) }) }

func (s *session) markInitialized(err error) {
	s.initOnce.Do(func() {
		s.initErr = err
		close(s.initialized)
	})
}

func (s *session) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

func (s *session) setSource(src decode.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = src
}

func (s *session) setSink(sink output.Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

func (s *session) getSink() output.Sink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink
}

// pauseOutput records a pause request and pauses the sink
func (s *session) pauseOutput() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.paused = true
	if sink := s.getSink(); sink != nil {
		return sink.Pause()
	}
	return nil
}

// resumeOutput clears a pause request and starts the sink
func (s *session) resumeOutput() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.paused = false
	if sink := s.getSink(); sink != nil {
		return sink.Play()
	}
	return nil
}

// playUnlessPaused starts the sink unless a pause has been requested
func (s *session) playUnlessPaused() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.paused {
		return nil
	}
	if sink := s.getSink(); sink != nil {
		return sink.Play()
	}
	return nil
}

// release disposes the sink and closes the source once the producer is gone
func (s *session) release() {
	s.releaseOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.sink != nil {
			if err := s.sink.Dispose(); err != nil {
				s.logger.Warn("Failed to dispose output", "err", err)
			}
		}
		if s.source != nil {
			if err := s.source.Close(); err != nil {
				s.logger.Warn("Failed to close source", "err", err)
			}
		}
		s.logger.Debug("Session released")
	})
}

func (p *Player) setStatusLocked(st Status) {
	if p.status == st {
		return
	}
	p.logger.Debug("Status changed", "from", p.status, "to", st)
	p.status = st
	p.notifier.status(st)
}

// setStatusFor changes the status only while s is the current session, so a
// stale producer cannot overwrite the state of a newer one
func (p *Player) setStatusFor(s *session, st Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == s {
		p.setStatusLocked(st)
	}
}

// transition moves from one of the given states to st for the current session
func (p *Player) transition(s *session, st Status, from ...Status) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != s {
		return false
	}
	for _, f := range from {
		if p.status == f {
			p.setStatusLocked(st)
			return true
		}
	}
	return false
}

// Initialize prepares the engine. Valid only once, from None.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != None {
		return fmt.Errorf("%w: initialize while %s", ErrInvalidState, p.status)
	}
	p.setStatusLocked(Initializing)
	p.logger.Info("Engine initialized", "rate", p.format.SampleRate, "channels", p.format.Channels, "block", p.config.BlockFrames)
	p.setStatusLocked(Ready)
	return nil
}

// Load stops any current session and starts a new one for the file at
// path. It returns once the session is initialized and waiting for Play,
// or after InitTimeout.
func (p *Player) Load(path string) error {
	registry := p.config.Registry
	return p.load(path, func() error {
		if !registry.Supported(path) {
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
		}
		return nil
	}, func(rate int) (decode.Source, error) {
		return registry.Open(path, rate)
	})
}

// LoadSource is Load for an already opened source. The player takes
// ownership of src.
func (p *Player) LoadSource(name string, src decode.Source) error {
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrNotLoaded)
	}
	return p.load(name, nil, func(int) (decode.Source, error) {
		return src, nil
	})
}

func (p *Player) load(name string, check func() error, open func(int) (decode.Source, error)) error {
	p.mu.Lock()
	switch p.status {
	case None, Initializing, Terminating, Terminated:
		st := p.status
		p.mu.Unlock()
		return fmt.Errorf("%w: load while %s", ErrInvalidState, st)
	}
	prev := p.session
	p.session = nil
	p.mu.Unlock()

	if prev != nil {
		p.stopSession(prev)
		p.mu.Lock()
		p.setStatusLocked(Stopped)
		p.mu.Unlock()
	}

	if check != nil {
		if err := check(); err != nil {
			return err
		}
	}

	s := newSession(name, p.logger, open)
	p.queue.Flush()
	p.playTime.Store(0)
	p.loops.Store(0)

	p.mu.Lock()
	p.session = s
	p.filePath = name
	p.totalTime = 0
	p.setStatusLocked(Loading)
	p.mu.Unlock()

	s.logger.Info("Loading", "file", name)
	go p.produce(s)

	timer := time.NewTimer(p.config.InitTimeout)
	defer timer.Stop()
	select {
	case <-s.initialized:
		return s.initErr
	case <-timer.C:
		s.logger.Warn("Session initialization timed out, continuing", "timeout", p.config.InitTimeout)
		return nil
	}
}

// Play starts a loaded session or resumes a paused one
func (p *Player) Play() error {
	p.mu.Lock()
	s := p.session
	if s == nil {
		p.mu.Unlock()
		return ErrNotLoaded
	}

	switch p.status {
	case Ready:
		p.setStatusLocked(Playing)
		p.mu.Unlock()
		s.releaseStart()
		return nil

	case Pausing:
		if p.params.PositionPending() {
			p.queue.Flush()
		}
		p.setStatusLocked(Playing)
		p.mu.Unlock()
		if err := s.resumeOutput(); err != nil {
			return fmt.Errorf("resume output: %w", err)
		}
		return nil
	}

	st := p.status
	p.mu.Unlock()
	return fmt.Errorf("%w: play while %s", ErrInvalidState, st)
}

// Pause suspends output while keeping the session and queued audio
func (p *Player) Pause() error {
	p.mu.Lock()
	s := p.session
	if p.status != Playing || s == nil {
		st := p.status
		p.mu.Unlock()
		return fmt.Errorf("%w: pause while %s", ErrInvalidState, st)
	}
	p.mu.Unlock()

	if err := s.pauseOutput(); err != nil {
		s.logger.Warn("Failed to pause output", "err", err)
	}

	time.Sleep(p.config.PauseSettle)
	p.transition(s, Pausing, Playing)
	return nil
}

// Stop ends the current session. A stopped file must be loaded again to
// play it.
func (p *Player) Stop() error {
	p.mu.Lock()
	switch p.status {
	case None, Terminating, Terminated:
		st := p.status
		p.mu.Unlock()
		return fmt.Errorf("%w: stop while %s", ErrInvalidState, st)
	}
	s := p.session
	p.session = nil
	p.mu.Unlock()

	if s != nil {
		p.stopSession(s)
	}

	p.mu.Lock()
	p.setStatusLocked(Stopped)
	p.mu.Unlock()
	return nil
}

// stopSession signals the producer and waits up to StopTimeout for it. A
// producer that does not exit in time is abandoned and its resources are
// released whenever it finishes.
func (p *Player) stopSession(s *session) {
	s.signalStop()
	s.releaseStart()

	timer := time.NewTimer(p.config.StopTimeout)
	defer timer.Stop()

	abandoned := false
	select {
	case <-s.done:
	case <-timer.C:
		abandoned = true
		s.logger.Warn("Producer did not stop in time, abandoning", "timeout", p.config.StopTimeout)
	}

	if sink := s.getSink(); sink != nil {
		if err := sink.Stop(); err != nil {
			s.logger.Warn("Failed to stop output", "err", err)
		}
	}
	p.queue.Flush()

	if abandoned {
		go func() {
			<-s.done
			s.release()
		}()
		return
	}
	s.release()
}

// Terminate stops playback and releases every resource. The player cannot
// be used afterwards.
func (p *Player) Terminate() error {
	p.mu.Lock()
	switch p.status {
	case Terminating, Terminated:
		st := p.status
		p.mu.Unlock()
		return fmt.Errorf("%w: terminate while %s", ErrInvalidState, st)
	}
	s := p.session
	p.session = nil
	if s != nil && p.status != Error {
		p.setStatusLocked(Stopped)
	}
	p.setStatusLocked(Terminating)
	p.mu.Unlock()

	if s != nil {
		p.stopSession(s)
	}

	p.mu.Lock()
	p.setStatusLocked(Terminated)
	p.mu.Unlock()

	p.notifier.close()
	p.logger.Info("Player terminated")
	return nil
}

// produce is the producer goroutine of one session
func (p *Player) produce(s *session) {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			p.fail(s, fmt.Errorf("%w: panic: %v", ErrProcessing, r))
		}
	}()

	if err := p.prepare(s); err != nil {
		p.fail(s, err)
		return
	}

	select {
	case <-s.stop:
		return
	case <-s.start:
	}
	if s.stopped() {
		return
	}

	if err := newProducer(p, s).run(); err != nil {
		p.fail(s, err)
	}
}

// prepare opens the source and the output, then reports Ready
func (p *Player) prepare(s *session) error {
	p.setStatusFor(s, Initializing)

	src, err := s.open(p.format.SampleRate)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.name, err)
	}
	s.setSource(src)

	total := src.TotalTime()
	p.mu.Lock()
	if p.session == s {
		p.totalTime = total
	}
	p.mu.Unlock()

	sink, err := p.config.NewSink(p.format)
	if err != nil {
		return wrapDeviceErr(err)
	}
	s.setSink(sink)
	if err := sink.Init(p.queue); err != nil {
		return wrapDeviceErr(err)
	}
	sink.SetVolume(p.params.Volume())

	s.logger.Info("Session ready", "file", s.name, "duration", total)
	p.setStatusFor(s, Ready)
	s.markInitialized(nil)
	return nil
}

func wrapDeviceErr(err error) error {
	if errors.Is(err, ErrDeviceInit) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDeviceInit, err)
}

// fail records a producer fault. Faults before initialization are returned
// from Load as well.
func (p *Player) fail(s *session, err error) {
	s.logger.Error("Playback failed", "err", err)
	if sink := s.getSink(); sink != nil {
		if err := sink.Stop(); err != nil && !errors.Is(err, output.ErrNotInitialized) {
			s.logger.Warn("Failed to stop output", "err", err)
		}
	}
	p.setStatusFor(s, Error)
	s.markInitialized(err)
}
