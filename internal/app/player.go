// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates the practice player, the TUI and shutdown
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/pzkpfw38t/practicesharp/internal/ui"
	"github.com/pzkpfw38t/practicesharp/internal/version"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/decode"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/dsp"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/stretch"
	"github.com/pzkpfw38t/practicesharp/pkg/practicesharp"
	"golang.org/x/sync/errgroup"
)

const (
	seekStep   = 5 * time.Second
	tempoStep  = 0.05
	pitchStep  = 1.0
	volumeStep = 0.05
	eqStep     = 1.0

	defaultCue = 2 * time.Second
)

// errQuit ends the run when the user quits from the TUI
var errQuit = errors.New("quit requested")

// Config holds application configuration
type Config struct {
	// File is the audio file to play; empty plays a test tone
	File          string
	ToneFrequency float64
	ToneDuration  time.Duration

	Tempo       float64
	Pitch       float64
	Volume      float64
	ChannelMode string
	Loop        bool
	Start       time.Duration
	End         time.Duration
	Cue         time.Duration
	Profile     string

	Output     string
	SampleRate int
	UseTUI     bool
	Logger     *log.Logger
}

// Player represents the main player application
type Player struct {
	config   Config
	logger   *log.Logger
	player   *practicesharp.Player
	controls *ui.Controls
	tuiProg  *tea.Program
}

// New creates the application. Settings are validated here so bad flags
// fail before any device is opened.
func New(config Config) (*Player, error) {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.ToneFrequency == 0 {
		config.ToneFrequency = 440
	}
	if config.ToneDuration == 0 {
		config.ToneDuration = 30 * time.Second
	}
	if config.Tempo == 0 {
		config.Tempo = 1
	}

	p := &Player{
		config: config,
		logger: config.Logger,
	}

	if config.UseTUI {
		p.controls = ui.NewControls()
		prog, err := ui.Run(p.controls)
		if err != nil {
			return nil, fmt.Errorf("failed to start TUI: %w", err)
		}
		p.tuiProg = prog
	}

	p.player = practicesharp.New(practicesharp.Config{
		SampleRate: config.SampleRate,
		Output:     config.Output,
		Logger:     config.Logger,
		OnStatusChange: func(s practicesharp.Status) {
			p.logger.Info("Status", "status", s)
			p.pushStatus()
		},
		OnPlayTimeChange: func(d time.Duration) {
			p.send(ui.PositionMsg(d))
		},
		OnCuePulse: func(tick int) {
			p.logger.Debug("Cue", "tick", tick)
			p.send(ui.CuePulseMsg(tick))
		},
	})

	if err := p.applySettings(); err != nil {
		return nil, err
	}
	return p, nil
}

// applySettings copies the configured playback settings into the player
func (p *Player) applySettings() error {
	profile := stretch.DefaultProfile
	if p.config.Profile != "" {
		var err error
		if profile, err = stretch.ProfileByName(p.config.Profile); err != nil {
			return err
		}
	}
	mode, err := dsp.ParseChannelMode(p.config.ChannelMode)
	if err != nil {
		return err
	}

	p.player.SetTimeStretchProfile(profile)
	p.player.SetInputChannelMode(mode)
	p.player.SetTempo(p.config.Tempo)
	p.player.SetPitch(p.config.Pitch)
	p.player.SetVolume(p.config.Volume)
	p.player.SetStartMarker(p.config.Start)
	p.player.SetEndMarker(p.config.End)
	p.player.SetLoop(p.config.Loop)
	p.player.SetCue(p.config.Cue)
	return nil
}

// Run plays until the track ends (without TUI), the user quits or ctx is
// cancelled
func (p *Player) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if p.tuiProg != nil {
		g.Go(func() error {
			if _, err := p.tuiProg.Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return errQuit
		})
		g.Go(func() error {
			<-gctx.Done()
			p.tuiProg.Quit()
			return nil
		})
		g.Go(func() error { return p.handleControls(gctx) })
		g.Go(func() error { return p.statusLoop(gctx) })
	}

	g.Go(func() error {
		if err := p.start(); err != nil {
			return err
		}
		if p.tuiProg == nil {
			return p.waitForEnd(gctx)
		}
		return nil
	})

	err := g.Wait()
	if terr := p.player.Terminate(); terr != nil {
		p.logger.Warn("Error terminating player", "err", terr)
	}
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Player) start() error {
	p.logger.Info("Starting", "product", version.Product, "version", version.Version)
	if err := p.player.Initialize(); err != nil {
		return err
	}
	if err := p.load(); err != nil {
		return err
	}
	return p.player.Play()
}

func (p *Player) load() error {
	if p.config.File != "" {
		if err := p.player.Load(p.config.File); err != nil {
			return fmt.Errorf("load %s: %w", p.config.File, err)
		}
		return nil
	}

	name := fmt.Sprintf("tone %.0fHz", p.config.ToneFrequency)
	src := decode.NewToneSource(p.config.ToneFrequency, p.config.ToneDuration, p.sampleRate())
	return p.player.LoadSource(name, src)
}

func (p *Player) sampleRate() int {
	if p.config.SampleRate > 0 {
		return p.config.SampleRate
	}
	return 44100
}

// waitForEnd logs progress until playback stops
func (p *Player) waitForEnd(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			switch p.player.Status() {
			case practicesharp.Stopped:
				p.logger.Info("Playback finished")
				return nil
			case practicesharp.Error:
				return practicesharp.ErrProcessing
			}
			stats := p.player.Stats()
			p.logger.Info("Playing",
				"position", p.player.CurrentPlayTime().Round(100*time.Millisecond),
				"total", p.player.TotalTime().Round(time.Second),
				"loops", stats.Loops,
				"underruns", stats.Underruns)
		}
	}
}

// handleControls applies actions from the TUI
func (p *Player) handleControls(ctx context.Context) error {
	for {
		select {
		case action := <-p.controls.Actions:
			if err := p.apply(action); err != nil {
				p.logger.Warn("Action failed", "action", action, "err", err)
			}
			p.pushStatus()
		case <-p.controls.Quit:
			p.logger.Info("Received quit signal from TUI")
			return errQuit
		case <-ctx.Done():
			return nil
		}
	}
}

// apply performs one user action on the player
func (p *Player) apply(action ui.Action) error {
	pl := p.player

	switch action {
	case ui.ActionTogglePlay:
		switch pl.Status() {
		case practicesharp.Playing:
			return pl.Pause()
		case practicesharp.Stopped, practicesharp.Error:
			if err := p.load(); err != nil {
				return err
			}
		}
		return pl.Play()
	case ui.ActionStop:
		return pl.Stop()
	case ui.ActionSeekBack:
		pl.Seek(-seekStep)
	case ui.ActionSeekForward:
		pl.Seek(seekStep)
	case ui.ActionTempoDown:
		pl.SetTempo(pl.Tempo() - tempoStep)
	case ui.ActionTempoUp:
		pl.SetTempo(pl.Tempo() + tempoStep)
	case ui.ActionPitchDown:
		pl.SetPitch(pl.Pitch() - pitchStep)
	case ui.ActionPitchUp:
		pl.SetPitch(pl.Pitch() + pitchStep)
	case ui.ActionVolumeDown:
		pl.SetVolume(pl.Volume() - volumeStep)
	case ui.ActionVolumeUp:
		pl.SetVolume(pl.Volume() + volumeStep)
	case ui.ActionEqLowDown:
		pl.SetEqLow(pl.EqLow() - eqStep)
	case ui.ActionEqLowUp:
		pl.SetEqLow(pl.EqLow() + eqStep)
	case ui.ActionEqMidDown:
		pl.SetEqMid(pl.EqMid() - eqStep)
	case ui.ActionEqMidUp:
		pl.SetEqMid(pl.EqMid() + eqStep)
	case ui.ActionEqHighDown:
		pl.SetEqHigh(pl.EqHigh() - eqStep)
	case ui.ActionEqHighUp:
		pl.SetEqHigh(pl.EqHigh() + eqStep)
	case ui.ActionCycleChannelMode:
		pl.SetInputChannelMode(pl.InputChannelMode().Next())
	case ui.ActionToggleSwap:
		pl.SetSwapLeftRight(!pl.SwapLeftRight())
	case ui.ActionToggleVocals:
		pl.SetSuppressVocals(!pl.SuppressVocals())
	case ui.ActionToggleLoop:
		pl.SetLoop(!pl.Loop())
	case ui.ActionSetStartMarker:
		pl.SetStartMarker(pl.CurrentPlayTime())
	case ui.ActionSetEndMarker:
		pl.SetEndMarker(pl.CurrentPlayTime())
	case ui.ActionClearMarkers:
		pl.SetStartMarker(0)
		pl.SetEndMarker(0)
	case ui.ActionToggleCue:
		if pl.Cue() > 0 {
			pl.SetCue(0)
		} else if p.config.Cue > 0 {
			pl.SetCue(p.config.Cue)
		} else {
			pl.SetCue(defaultCue)
		}
	case ui.ActionCycleProfile:
		pl.SetTimeStretchProfile(nextProfile(pl.TimeStretchProfile().Name))
	default:
		return fmt.Errorf("unknown action %d", action)
	}
	return nil
}

// nextProfile returns the preset after name in sorted order
func nextProfile(name string) stretch.Profile {
	names := stretch.ProfileNames()
	next := names[0]
	for i, n := range names {
		if n == name {
			next = names[(i+1)%len(names)]
			break
		}
	}
	profile, _ := stretch.ProfileByName(next)
	return profile
}

// statusLoop periodically refreshes the TUI
func (p *Player) statusLoop(ctx context.Context) error {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.pushStatus()
		case <-ctx.Done():
			return nil
		}
	}
}

// snapshot collects the player state for display
func (p *Player) snapshot() ui.StatusMsg {
	pl := p.player
	stats := pl.Stats()
	status := pl.Status()

	msg := ui.StatusMsg{
		File:      pl.FilePath(),
		Status:    status.String(),
		Total:     pl.TotalTime(),
		Tempo:     pl.Tempo(),
		Pitch:     pl.Pitch(),
		Volume:    pl.Volume(),
		EqLow:     pl.EqLow(),
		EqMid:     pl.EqMid(),
		EqHigh:    pl.EqHigh(),
		Mode:      pl.InputChannelMode().String(),
		Swap:      pl.SwapLeftRight(),
		Vocals:    pl.SuppressVocals(),
		Profile:   pl.TimeStretchProfile().Name,
		Loop:      pl.Loop(),
		Start:     pl.StartMarker(),
		End:       pl.EndMarker(),
		Cue:       pl.Cue(),
		Enqueued:  stats.BuffersEnqueued,
		Depth:     stats.QueueDepth,
		Underruns: stats.Underruns,
		Loops:     stats.Loops,
	}
	if status == practicesharp.Error {
		msg.Error = "see log"
	}
	return msg
}

func (p *Player) pushStatus() {
	if p.tuiProg != nil {
		p.send(p.snapshot())
	}
}

func (p *Player) send(msg tea.Msg) {
	if p.tuiProg != nil {
		p.tuiProg.Send(msg)
	}
}
