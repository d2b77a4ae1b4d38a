// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling and rendering helpers
package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // Controls are optional for testing

	if model.status != "none" {
		t.Errorf("expected initial status 'none', got '%s'", model.status)
	}
	if model.tempo != 1 {
		t.Errorf("expected default tempo 1, got %v", model.tempo)
	}
	if model.volume != 1 {
		t.Errorf("expected default volume 1, got %v", model.volume)
	}
	if model.showDebug {
		t.Error("expected showDebug to be false initially")
	}
}

func TestStatusMsgSnapshot(t *testing.T) {
	model := NewModel(nil)

	msg := StatusMsg{
		File:    "song.mp3",
		Status:  "playing",
		Total:   3 * time.Minute,
		Tempo:   0.75,
		Pitch:   -2,
		Volume:  0.5,
		EqLow:   3,
		Mode:    "left",
		Vocals:  true,
		Profile: "practice",
		Loop:    true,
		Start:   30 * time.Second,
		End:     45 * time.Second,
		Cue:     2 * time.Second,
		Loops:   4,
	}
	updated, _ := model.Update(msg)
	m := updated.(Model)

	if m.file != "song.mp3" || m.status != "playing" {
		t.Errorf("expected song.mp3 playing, got %s %s", m.file, m.status)
	}
	if m.tempo != 0.75 || m.pitch != -2 || m.volume != 0.5 {
		t.Errorf("expected tempo/pitch/volume 0.75/-2/0.5, got %v/%v/%v", m.tempo, m.pitch, m.volume)
	}
	if m.mode != "left" || !m.vocals || m.eqLow != 3 {
		t.Errorf("expected effects to be applied, got mode=%s vocals=%v low=%v", m.mode, m.vocals, m.eqLow)
	}
	if !m.loop || m.start != 30*time.Second || m.end != 45*time.Second || m.cue != 2*time.Second {
		t.Errorf("expected loop region 30s-45s with 2s cue, got %v %v-%v %v", m.loop, m.start, m.end, m.cue)
	}
	if m.loops != 4 {
		t.Errorf("expected 4 loops, got %d", m.loops)
	}
}

func TestPositionAndPulse(t *testing.T) {
	model := NewModel(nil)

	updated, _ := model.Update(CuePulseMsg(3))
	m := updated.(Model)
	if m.pulse != 3 {
		t.Errorf("expected pulse 3, got %d", m.pulse)
	}

	updated, _ = m.Update(PositionMsg(12 * time.Second))
	m = updated.(Model)
	if m.position != 12*time.Second {
		t.Errorf("expected position 12s, got %v", m.position)
	}
	if m.pulse != 0 {
		t.Errorf("expected pulse cleared once audio plays, got %d", m.pulse)
	}
}

func TestKeysSendActions(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want Action
	}{
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, ActionTogglePlay},
		{tea.KeyMsg{Type: tea.KeyLeft}, ActionSeekBack},
		{tea.KeyMsg{Type: tea.KeyRight}, ActionSeekForward},
		{tea.KeyMsg{Type: tea.KeyUp}, ActionVolumeUp},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}}, ActionTempoUp},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}, ActionToggleLoop},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}, ActionSetStartMarker},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}}, ActionCycleProfile},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			ctrl := NewControls()
			model := NewModel(ctrl)
			model.Update(tt.key)

			select {
			case got := <-ctrl.Actions:
				if got != tt.want {
					t.Errorf("expected action %d, got %d", tt.want, got)
				}
			default:
				t.Error("expected an action to be sent")
			}
		})
	}
}

func TestQuitKey(t *testing.T) {
	ctrl := NewControls()
	model := NewModel(ctrl)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit signal")
	}
}

func TestDebugToggle(t *testing.T) {
	model := NewModel(nil)
	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m := updated.(Model)
	if !m.showDebug {
		t.Error("expected debug to be shown")
	}
}

func TestFullActionChannelDoesNotBlock(t *testing.T) {
	ctrl := NewControls()
	model := NewModel(ctrl)

	for i := 0; i < cap(ctrl.Actions)+5; i++ {
		model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	}
	if len(ctrl.Actions) != cap(ctrl.Actions) {
		t.Errorf("expected full channel of %d, got %d", cap(ctrl.Actions), len(ctrl.Actions))
	}
}

func TestViewRendering(t *testing.T) {
	model := NewModel(nil)
	if model.View() != "Loading..." {
		t.Error("expected loading view before the window size is known")
	}

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	updated, _ = updated.Update(StatusMsg{File: "song.mp3", Status: "paused", Total: time.Minute, Profile: "default"})
	view := updated.View()

	for _, want := range []string{"song.mp3", "paused", "default", "1:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long title", 10, "this is..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.length); got != tt.want {
			t.Errorf("truncate(%q, %d): expected %q, got %q", tt.input, tt.length, tt.want, got)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{61 * time.Second, "1:01"},
		{10*time.Minute + 5*time.Second, "10:05"},
	}

	for _, tt := range tests {
		if got := formatTime(tt.in); got != tt.want {
			t.Errorf("formatTime(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(5, 10, 10); got != "█████░░░░░" {
		t.Errorf("expected half bar, got %q", got)
	}
	if got := renderBar(5, 0, 4); got != "░░░░" {
		t.Errorf("expected empty bar for unknown total, got %q", got)
	}
	if got := renderBar(20, 10, 4); got != "████" {
		t.Errorf("expected full bar when over, got %q", got)
	}
}
