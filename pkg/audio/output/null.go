// ABOUTME: Null audio sink that discards PCM on a clock
// ABOUTME: Used for headless runs and tests; can run faster than real time or be pulled by hand
package output

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pzkpfw38t/practicesharp/pkg/audio"
)

// DefaultNullPeriod is the pull interval of the null sink
const DefaultNullPeriod = 10 * time.Millisecond

// Null sink pulls period worth of audio every tick while playing and throws
// it away. speed scales the amount pulled per tick; a period of 0 disables
// the clock so the sink is driven only through Pull.
type Null struct {
	mu      sync.Mutex
	format  audio.Format
	period  time.Duration
	bytes   int
	source  io.Reader
	playing bool
	volume  float64
	buf     []byte

	stop chan struct{}
	done chan struct{}

	pulled atomic.Int64
}

// NewNull creates a null sink
func NewNull(format audio.Format, period time.Duration, speed float64) *Null {
	if speed <= 0 {
		speed = 1
	}
	frames := int(float64(format.SampleRate) * period.Seconds() * speed)
	return &Null{
		format: format,
		period: period,
		bytes:  frames * format.BytesPerFrame(),
		volume: 1,
	}
}

// Init attaches the source and starts the clock if one is configured
func (n *Null) Init(source io.Reader) error {
	n.Dispose()

	n.mu.Lock()
	defer n.mu.Unlock()

	n.source = source
	n.buf = make([]byte, n.bytes)
	if n.period <= 0 || n.bytes == 0 {
		return nil
	}

	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go n.run(n.stop, n.done)
	return nil
}

func (n *Null) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(n.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.mu.Lock()
			if n.playing {
				n.pullLocked(n.buf)
			}
			n.mu.Unlock()
		}
	}
}

func (n *Null) pullLocked(p []byte) {
	if n.source == nil {
		return
	}
	read, _ := n.source.Read(p)
	applyVolume(p[:read], n.volume)
	n.pulled.Add(int64(read))
}

// Pull reads size bytes from the source immediately, whether or not the
// sink is playing, and returns them
func (n *Null) Pull(size int) []byte {
	p := make([]byte, size)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pullLocked(p)
	return p
}

// BytesPulled returns the total bytes consumed from the source
func (n *Null) BytesPulled() int64 {
	return n.pulled.Load()
}

// Playing reports whether the clock is consuming
func (n *Null) Playing() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.playing
}

func (n *Null) Play() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.source == nil {
		return ErrNotInitialized
	}
	n.playing = true
	return nil
}

func (n *Null) Pause() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = false
	return nil
}

func (n *Null) Stop() error {
	return n.Pause()
}

// Dispose stops the clock and detaches the source
func (n *Null) Dispose() error {
	n.mu.Lock()
	stop, done := n.stop, n.done
	n.stop, n.done = nil, nil
	n.playing = false
	n.source = nil
	n.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

func (n *Null) SetVolume(volume float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.volume = clampVolume(volume)
}

// Volume returns the current gain
func (n *Null) Volume() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.volume
}
