// ABOUTME: Playback session status
// ABOUTME: Lifecycle states reported through OnStatusChange
package practicesharp

import "fmt"

// Status is the lifecycle state of the player
type Status int

const (
	None Status = iota
	Initializing
	Ready
	Loading
	Playing
	Stopped
	Pausing
	Terminating
	Terminated
	Error
)

var statusNames = [...]string{
	None:         "none",
	Initializing: "initializing",
	Ready:        "ready",
	Loading:      "loading",
	Playing:      "playing",
	Stopped:      "stopped",
	Pausing:      "paused",
	Terminating:  "terminating",
	Terminated:   "terminated",
	Error:        "error",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}
