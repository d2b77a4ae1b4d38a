// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the channel carrying user actions
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Controls carries user actions from the TUI to the application
type Controls struct {
	Actions chan Action
	Quit    chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Actions: make(chan Action, 16),
		Quit:    make(chan struct{}, 1),
	}
}

// send forwards an action without blocking the UI; a full channel drops it
func (c *Controls) send(a Action) {
	if c == nil {
		return
	}
	select {
	case c.Actions <- a:
	default:
	}
}

func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Controls) Model {
	return Model{
		status:   "none",
		tempo:    1,
		volume:   1,
		mode:     "both",
		controls: ctrl,
	}
}

// Run creates the TUI program. The caller runs it.
func Run(ctrl *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
