// ABOUTME: Bubbletea model for the practice player TUI
// ABOUTME: Renders player state and maps keys to player actions
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Action is a user request for the player
type Action int

const (
	ActionTogglePlay Action = iota
	ActionStop
	ActionSeekBack
	ActionSeekForward
	ActionTempoDown
	ActionTempoUp
	ActionPitchDown
	ActionPitchUp
	ActionVolumeDown
	ActionVolumeUp
	ActionEqLowDown
	ActionEqLowUp
	ActionEqMidDown
	ActionEqMidUp
	ActionEqHighDown
	ActionEqHighUp
	ActionCycleChannelMode
	ActionToggleSwap
	ActionToggleVocals
	ActionToggleLoop
	ActionSetStartMarker
	ActionSetEndMarker
	ActionClearMarkers
	ActionToggleCue
	ActionCycleProfile
)

var keyActions = map[string]Action{
	" ":     ActionTogglePlay,
	"s":     ActionStop,
	"left":  ActionSeekBack,
	"right": ActionSeekForward,
	"[":     ActionTempoDown,
	"]":     ActionTempoUp,
	"-":     ActionPitchDown,
	"=":     ActionPitchUp,
	"down":  ActionVolumeDown,
	"up":    ActionVolumeUp,
	"z":     ActionEqLowDown,
	"x":     ActionEqLowUp,
	"c":     ActionEqMidDown,
	"v":     ActionEqMidUp,
	"b":     ActionEqHighDown,
	"n":     ActionEqHighUp,
	"m":     ActionCycleChannelMode,
	"w":     ActionToggleSwap,
	"k":     ActionToggleVocals,
	"l":     ActionToggleLoop,
	"a":     ActionSetStartMarker,
	"e":     ActionSetEndMarker,
	"r":     ActionClearMarkers,
	"u":     ActionToggleCue,
	"p":     ActionCycleProfile,
}

// Model represents the TUI state
type Model struct {
	// Track
	file   string
	status string
	errMsg string

	// Position
	position time.Duration
	total    time.Duration

	// Parameters
	tempo   float64
	pitch   float64
	volume  float64
	eqLow   float64
	eqMid   float64
	eqHigh  float64
	mode    string
	swap    bool
	vocals  bool
	profile string

	// Region
	loop  bool
	start time.Duration
	end   time.Duration
	cue   time.Duration
	pulse int

	// Stats
	enqueued  int64
	depth     int
	underruns int64
	loops     int64

	showDebug bool
	controls  *Controls

	width  int
	height int
}

// StatusMsg is a snapshot of the player state
type StatusMsg struct {
	File      string
	Status    string
	Error     string
	Total     time.Duration
	Tempo     float64
	Pitch     float64
	Volume    float64
	EqLow     float64
	EqMid     float64
	EqHigh    float64
	Mode      string
	Swap      bool
	Vocals    bool
	Profile   string
	Loop      bool
	Start     time.Duration
	End       time.Duration
	Cue       time.Duration
	Enqueued  int64
	Depth     int
	Underruns int64
	Loops     int64
}

// PositionMsg reports the play position
type PositionMsg time.Duration

// CuePulseMsg reports one cue-wait tick
type CuePulseMsg int

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case PositionMsg:
		m.position = time.Duration(msg)
		m.pulse = 0
	case CuePulseMsg:
		m.pulse = int(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderPosition())
	b.WriteString(m.renderParameters())
	b.WriteString(m.renderRegion())
	if m.showDebug {
		b.WriteString(m.renderDebug())
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	file := m.file
	if file == "" {
		file = "(nothing loaded)"
	}
	status := m.status
	if m.errMsg != "" {
		status = fmt.Sprintf("%s: %s", status, m.errMsg)
	}
	return fmt.Sprintf(`┌─ PracticeSharp ──────────────────────────────────────┐
│ File:   %-45s │
│ Status: %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(file, 45), truncate(status, 45))
}

func (m Model) renderPosition() string {
	bar := renderBar(int(m.position/time.Millisecond), int(m.total/time.Millisecond), 30)
	pulse := ""
	if m.pulse > 0 {
		pulse = fmt.Sprintf(" cue %d", m.pulse)
	}
	return fmt.Sprintf("│ [%s] %s / %s%-8s │\n",
		bar, formatTime(m.position), formatTime(m.total), pulse)
}

func (m Model) renderParameters() string {
	s := "│                                                      │\n"
	s += fmt.Sprintf("│ Tempo: %3.0f%%  Pitch: %+5.1f st  Volume: %3.0f%%%-6s │\n",
		m.tempo*100, m.pitch, m.volume*100, "")
	s += fmt.Sprintf("│ EQ low %+5.1f  mid %+5.1f  high %+5.1f dB%-11s │\n",
		m.eqLow, m.eqMid, m.eqHigh, "")
	s += fmt.Sprintf("│ Input: %-9s Swap: %-3s Vocals cut: %-3s%-8s │\n",
		m.mode, onOff(m.swap), onOff(m.vocals), "")
	s += fmt.Sprintf("│ Stretch profile: %-35s │\n", m.profile)
	return s
}

func (m Model) renderRegion() string {
	end := "end"
	if m.end > 0 {
		end = formatTime(m.end)
	}
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Loop: %-3s  %s → %-6s  Cue: %-4s  Loops: %-6d │
`, onOff(m.loop), formatTime(m.start), end, formatSeconds(m.cue), m.loops)
}

func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Enqueued: %-8d Depth: %-4d Underruns: %-8d │
`, m.enqueued, m.depth, m.underruns)
}

func (m Model) renderHelp() string {
	return `│ space:Play/Pause s:Stop ←/→:Seek [/]:Tempo -/=:Pitch │
│ ↑/↓:Volume z/x c/v b/n:EQ m:Input w:Swap k:Vocals    │
│ l:Loop a/e:Markers r:Clear u:Cue p:Profile d:Debug q │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.controls.quit()
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
		return m, nil
	}

	if action, ok := keyActions[key]; ok {
		m.controls.send(action)
	}
	return m, nil
}

// applyStatus updates the model from a status snapshot
func (m *Model) applyStatus(msg StatusMsg) {
	m.file = msg.File
	m.status = msg.Status
	m.errMsg = msg.Error
	m.total = msg.Total
	m.tempo = msg.Tempo
	m.pitch = msg.Pitch
	m.volume = msg.Volume
	m.eqLow = msg.EqLow
	m.eqMid = msg.EqMid
	m.eqHigh = msg.EqHigh
	m.mode = msg.Mode
	m.swap = msg.Swap
	m.vocals = msg.Vocals
	m.profile = msg.Profile
	m.loop = msg.Loop
	m.start = msg.Start
	m.end = msg.End
	m.cue = msg.Cue
	m.enqueued = msg.Enqueued
	m.depth = msg.Depth
	m.underruns = msg.Underruns
	m.loops = msg.Loops
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = min(value*width/max, width)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func formatTime(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func formatSeconds(d time.Duration) string {
	if d <= 0 {
		return "off"
	}
	return fmt.Sprintf("%gs", d.Seconds())
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
