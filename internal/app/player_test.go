// ABOUTME: Tests for player application orchestration
// ABOUTME: Tests configuration, action handling and headless runs
package app

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pzkpfw38t/practicesharp/internal/ui"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/dsp"
	"github.com/pzkpfw38t/practicesharp/pkg/practicesharp"
)

func newHeadless(t *testing.T, config Config) *Player {
	t.Helper()
	config.Output = "null"
	config.Logger = log.New(io.Discard)

	p, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create player: %v", err)
	}
	t.Cleanup(func() { p.player.Terminate() })
	return p
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewDefaults(t *testing.T) {
	p := newHeadless(t, Config{Volume: 1})

	if p.config.ToneFrequency != 440 {
		t.Errorf("expected tone 440Hz, got %v", p.config.ToneFrequency)
	}
	if p.config.ToneDuration != 30*time.Second {
		t.Errorf("expected tone 30s, got %v", p.config.ToneDuration)
	}
	if p.player.Tempo() != 1 || p.player.Volume() != 1 {
		t.Errorf("expected unity tempo and volume, got %v/%v", p.player.Tempo(), p.player.Volume())
	}
	if p.player.TimeStretchProfile().Name != "default" {
		t.Errorf("expected default profile, got %s", p.player.TimeStretchProfile().Name)
	}
	if p.tuiProg != nil {
		t.Error("expected no TUI when disabled")
	}
}

func TestNewKeepsZeroVolume(t *testing.T) {
	p := newHeadless(t, Config{Volume: 0})

	if v := p.player.Volume(); v != 0 {
		t.Errorf("expected volume 0 to mute, got %v", v)
	}
}

func TestNewAppliesSettings(t *testing.T) {
	p := newHeadless(t, Config{
		Tempo:       0.8,
		Pitch:       -2,
		Volume:      0.5,
		ChannelMode: "left",
		Loop:        true,
		Start:       10 * time.Second,
		End:         20 * time.Second,
		Cue:         3 * time.Second,
		Profile:     "practice",
	})

	pl := p.player
	if pl.Tempo() != 0.8 || pl.Pitch() != -2 || pl.Volume() != 0.5 {
		t.Errorf("expected 0.8/-2/0.5, got %v/%v/%v", pl.Tempo(), pl.Pitch(), pl.Volume())
	}
	if pl.InputChannelMode() != dsp.Left {
		t.Errorf("expected left input, got %s", pl.InputChannelMode())
	}
	if !pl.Loop() || pl.StartMarker() != 10*time.Second || pl.EndMarker() != 20*time.Second {
		t.Errorf("expected loop 10s-20s, got %v %v-%v", pl.Loop(), pl.StartMarker(), pl.EndMarker())
	}
	if pl.Cue() != 3*time.Second {
		t.Errorf("expected 3s cue, got %v", pl.Cue())
	}
	if pl.TimeStretchProfile().Name != "practice" {
		t.Errorf("expected practice profile, got %s", pl.TimeStretchProfile().Name)
	}
}

func TestNewRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"profile", Config{Profile: "turbo"}},
		{"channel mode", Config{ChannelMode: "center"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Logger = log.New(io.Discard)
			if _, err := New(tt.config); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestApplyActions(t *testing.T) {
	p := newHeadless(t, Config{Volume: 1})
	pl := p.player

	actions := []struct {
		action ui.Action
		check  func() bool
		desc   string
	}{
		{ui.ActionTempoDown, func() bool { return approx(pl.Tempo(), 0.95) }, "tempo 0.95"},
		{ui.ActionPitchUp, func() bool { return pl.Pitch() == 1 }, "pitch +1"},
		{ui.ActionVolumeDown, func() bool { return approx(pl.Volume(), 0.95) }, "volume 0.95"},
		{ui.ActionEqLowUp, func() bool { return pl.EqLow() == 1 }, "low +1dB"},
		{ui.ActionEqMidDown, func() bool { return pl.EqMid() == -1 }, "mid -1dB"},
		{ui.ActionEqHighUp, func() bool { return pl.EqHigh() == 1 }, "high +1dB"},
		{ui.ActionCycleChannelMode, func() bool { return pl.InputChannelMode() == dsp.Left }, "left input"},
		{ui.ActionToggleSwap, func() bool { return pl.SwapLeftRight() }, "swap on"},
		{ui.ActionToggleVocals, func() bool { return pl.SuppressVocals() }, "vocals cut"},
		{ui.ActionToggleLoop, func() bool { return pl.Loop() }, "loop on"},
		{ui.ActionToggleCue, func() bool { return pl.Cue() == defaultCue }, "default cue"},
		{ui.ActionToggleCue, func() bool { return pl.Cue() == 0 }, "cue off"},
		{ui.ActionCycleProfile, func() bool { return pl.TimeStretchProfile().Name == "practice" }, "practice profile"},
	}

	for _, a := range actions {
		if err := p.apply(a.action); err != nil {
			t.Fatalf("action %d failed: %v", a.action, err)
		}
		if !a.check() {
			t.Errorf("expected %s after action %d", a.desc, a.action)
		}
	}

	if err := p.apply(ui.Action(999)); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestTogglePlay(t *testing.T) {
	p := newHeadless(t, Config{ToneDuration: 10 * time.Second})
	pl := p.player

	if err := p.start(); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}

	steps := []struct {
		action ui.Action
		want   practicesharp.Status
	}{
		{ui.ActionTogglePlay, practicesharp.Pausing},
		{ui.ActionTogglePlay, practicesharp.Playing},
		{ui.ActionStop, practicesharp.Stopped},
		{ui.ActionTogglePlay, practicesharp.Playing},
	}
	for i, step := range steps {
		if err := p.apply(step.action); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if got := pl.Status(); got != step.want {
			t.Fatalf("step %d: expected %s, got %s", i, step.want, got)
		}
	}
}

func TestMarkersFromPosition(t *testing.T) {
	p := newHeadless(t, Config{})
	pl := p.player

	if err := p.start(); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for pl.CurrentPlayTime() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if pl.CurrentPlayTime() == 0 {
		t.Fatal("expected playback to advance")
	}

	p.apply(ui.ActionSetStartMarker)
	if pl.StartMarker() == 0 {
		t.Error("expected start marker at the current position")
	}
	p.apply(ui.ActionClearMarkers)
	if pl.StartMarker() != 0 || pl.EndMarker() != 0 {
		t.Errorf("expected markers cleared, got %v-%v", pl.StartMarker(), pl.EndMarker())
	}
}

func TestNextProfile(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"default", "practice"},
		{"practice", "speech"},
		{"speech", "default"},
		{"custom", "default"},
	}

	for _, tt := range tests {
		if got := nextProfile(tt.from).Name; got != tt.want {
			t.Errorf("nextProfile(%q): expected %q, got %q", tt.from, tt.want, got)
		}
	}
}

func TestRunHeadlessToEnd(t *testing.T) {
	p := newHeadless(t, Config{ToneDuration: 300 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("expected clean finish, got %v", err)
	}
	if ctx.Err() != nil {
		t.Error("expected the run to finish before the timeout")
	}
	if p.player.Status() != practicesharp.Terminated {
		t.Errorf("expected terminated, got %s", p.player.Status())
	}
}

func TestRunCancelled(t *testing.T) {
	p := newHeadless(t, Config{ToneDuration: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}
