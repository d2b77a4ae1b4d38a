// ABOUTME: Oto-based audio sink
// ABOUTME: Pulls PCM through an oto player with native volume control
package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
	"github.com/pzkpfw38t/practicesharp/pkg/audio"
)

// oto allows one context per process, so it is shared by every Oto sink
var (
	otoMu     sync.Mutex
	otoCtx    *oto.Context
	otoFormat audio.Format
)

func sharedOtoContext(format audio.Format) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoFormat != format {
			log.Warn("oto does not support reinitialization, keeping existing context",
				"have", otoFormat, "want", format)
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	otoCtx = ctx
	otoFormat = format
	log.Info("Audio output initialized", "backend", "oto",
		"sample_rate", format.SampleRate, "channels", format.Channels)
	return ctx, nil
}

// Oto sink implementation using the oto library
type Oto struct {
	mu     sync.Mutex
	format audio.Format
	player *oto.Player
	volume float64
}

// NewOto creates a new Oto sink
func NewOto(format audio.Format) *Oto {
	return &Oto{format: format, volume: 1}
}

// Init opens the shared context and creates a paused player on source
func (o *Oto) Init(source io.Reader) error {
	ctx, err := sharedOtoContext(o.format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceInit, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		o.player.Close()
	}
	o.player = ctx.NewPlayer(source)
	// Keep the player's read-ahead small so queue positions stay close to
	// what is audible.
	o.player.SetBufferSize(o.format.BytesPerSecond() / 10)
	o.player.SetVolume(o.volume)
	return nil
}

func (o *Oto) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return ErrNotInitialized
	}
	o.player.Play()
	return o.checkErr()
}

func (o *Oto) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return ErrNotInitialized
	}
	o.player.Pause()
	return o.checkErr()
}

func (o *Oto) Stop() error {
	return o.Pause()
}

// Dispose closes the player. The shared context stays alive for later sinks.
func (o *Oto) Dispose() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

func (o *Oto) SetVolume(volume float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volume = clampVolume(volume)
	if o.player != nil {
		o.player.SetVolume(o.volume)
	}
}

// checkErr reports asynchronous player errors (must hold o.mu)
func (o *Oto) checkErr() error {
	if err := o.player.Err(); err != nil {
		log.Error("oto player error", "err", err)
		return fmt.Errorf("oto player: %w", err)
	}
	return nil
}
