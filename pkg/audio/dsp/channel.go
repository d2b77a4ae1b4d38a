// ABOUTME: Input channel routing modes
// ABOUTME: Both, Left, Right and DualMono with parsing helpers
package dsp

import (
	"fmt"
	"strings"
)

// ChannelMode selects which input channels reach the output
type ChannelMode int

const (
	Both ChannelMode = iota
	Left
	Right
	DualMono
)

func (m ChannelMode) String() string {
	switch m {
	case Both:
		return "both"
	case Left:
		return "left"
	case Right:
		return "right"
	case DualMono:
		return "dual-mono"
	default:
		return fmt.Sprintf("ChannelMode(%d)", int(m))
	}
}

// Next cycles to the following mode
func (m ChannelMode) Next() ChannelMode {
	return (m + 1) % (DualMono + 1)
}

// ParseChannelMode converts a mode name to a ChannelMode
func ParseChannelMode(s string) (ChannelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both", "stereo":
		return Both, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	case "dual-mono", "dualmono", "mono":
		return DualMono, nil
	}
	return Both, fmt.Errorf("unknown channel mode %q", s)
}
