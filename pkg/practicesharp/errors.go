// ABOUTME: Sentinel errors returned by the player
// ABOUTME: Re-exports collaborator errors so callers can match them with errors.Is
package practicesharp

import (
	"errors"

	"github.com/pzkpfw38t/practicesharp/internal/player"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/decode"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/output"
)

var (
	// ErrProcessing wraps any fault in the producer loop, recovered panics included
	ErrProcessing = errors.New("playback processing failed")
	// ErrInvalidState is returned by control calls not valid in the current status
	ErrInvalidState = errors.New("invalid player state")
	// ErrNotLoaded is returned by Play when no file has been loaded
	ErrNotLoaded = errors.New("no audio loaded")

	ErrUnsupportedFormat = decode.ErrUnsupportedFormat
	ErrDeviceInit        = output.ErrDeviceInit
	ErrQueueFull         = player.ErrQueueFull
)
