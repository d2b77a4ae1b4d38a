// ABOUTME: Player configuration
// ABOUTME: Tunables, collaborator factories and notification callbacks with defaults
package practicesharp

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pzkpfw38t/practicesharp/internal/player"
	"github.com/pzkpfw38t/practicesharp/pkg/audio"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/decode"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/output"
)

// Config holds player configuration. Zero values select defaults.
type Config struct {
	// SampleRate is the engine PCM rate (default: 44100)
	SampleRate int

	// BlockFrames is the number of frames decoded per producer iteration (default: 4096)
	BlockFrames int

	// MaxQueuedBuffers is the buffer queue capacity (default: 100)
	MaxQueuedBuffers int

	// BusyQueuedBuffersThreshold is the queue depth above which the producer
	// waits (default: 3). MaxQueuedBuffers is raised to at least one above it.
	BusyQueuedBuffersThreshold int

	// BackpressurePoll bounds each backpressure wait (default: 10ms)
	BackpressurePoll time.Duration

	// InitTimeout bounds how long Load waits for the session to initialize (default: 5s)
	InitTimeout time.Duration

	// StopTimeout bounds how long Stop waits for the producer to exit (default: 2s)
	StopTimeout time.Duration

	// PauseSettle is the delay between pausing the sink and reporting Pausing (default: 100ms)
	PauseSettle time.Duration

	// DrainTimeout bounds the wait for queued audio to play out at end of track (default: 5s)
	DrainTimeout time.Duration

	// CueUnit is the length of one cue-wait tick per cue second (default: 1s)
	CueUnit time.Duration

	// Output names the sink backend used when NewSink is nil (default: "oto")
	Output string

	// NewSink creates the audio sink for each session
	NewSink func(format audio.Format) (output.Sink, error)

	// Registry resolves file extensions to decoders (default: decode.DefaultRegistry)
	Registry *decode.Registry

	// Logger receives structured logs (default: stderr, prefix "practicesharp")
	Logger *log.Logger

	// OnStatusChange is called when the status changes
	OnStatusChange func(Status)

	// OnPlayTimeChange is called each time a new buffer starts playing
	OnPlayTimeChange func(time.Duration)

	// OnCuePulse is called on every cue-wait tick with the tick number
	OnCuePulse func(int)
}

func (c *Config) setDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = audio.DefaultSampleRate
	}
	if c.BlockFrames == 0 {
		c.BlockFrames = 4096
	}
	if c.MaxQueuedBuffers == 0 {
		c.MaxQueuedBuffers = player.MaxQueuedBuffers
	}
	if c.BusyQueuedBuffersThreshold == 0 {
		c.BusyQueuedBuffersThreshold = player.BusyQueuedBuffersThreshold
	}
	if c.MaxQueuedBuffers <= c.BusyQueuedBuffersThreshold {
		c.MaxQueuedBuffers = c.BusyQueuedBuffersThreshold + 1
	}
	if c.BackpressurePoll == 0 {
		c.BackpressurePoll = 10 * time.Millisecond
	}
	if c.InitTimeout == 0 {
		c.InitTimeout = 5 * time.Second
	}
	if c.StopTimeout == 0 {
		c.StopTimeout = 2 * time.Second
	}
	if c.PauseSettle == 0 {
		c.PauseSettle = 100 * time.Millisecond
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 5 * time.Second
	}
	if c.CueUnit == 0 {
		c.CueUnit = time.Second
	}
	if c.Output == "" {
		c.Output = "oto"
	}
	if c.NewSink == nil {
		name := c.Output
		c.NewSink = func(format audio.Format) (output.Sink, error) {
			return output.New(name, format)
		}
	}
	if c.Registry == nil {
		c.Registry = decode.DefaultRegistry
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "practicesharp"})
	}
}
