// ABOUTME: Asynchronous in-order delivery of player notifications
// ABOUTME: Producer and sink goroutines push events; one goroutine runs the callbacks
package practicesharp

import (
	"sync"
	"time"
)

type eventKind int

const (
	statusEvent eventKind = iota
	playTimeEvent
	cuePulseEvent
)

type event struct {
	kind     eventKind
	status   Status
	playTime time.Duration
	pulse    int
}

// notifier queues events without blocking the sender and delivers them in
// order on its own goroutine
type notifier struct {
	mu     sync.Mutex
	events []event
	closed bool
	wake   chan struct{}
	done   chan struct{}

	onStatus   func(Status)
	onPlayTime func(time.Duration)
	onCuePulse func(int)
}

func newNotifier(cfg *Config) *notifier {
	n := &notifier{
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		onStatus:   cfg.OnStatusChange,
		onPlayTime: cfg.OnPlayTimeChange,
		onCuePulse: cfg.OnCuePulse,
	}
	go n.run()
	return n
}

func (n *notifier) push(e event) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.events = append(n.events, e)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

func (n *notifier) status(s Status)          { n.push(event{kind: statusEvent, status: s}) }
func (n *notifier) playTime(d time.Duration) { n.push(event{kind: playTimeEvent, playTime: d}) }
func (n *notifier) cuePulse(tick int)        { n.push(event{kind: cuePulseEvent, pulse: tick}) }

func (n *notifier) run() {
	defer close(n.done)

	var batch []event
	for range n.wake {
		n.mu.Lock()
		batch, n.events = n.events, batch[:0]
		closed := n.closed
		n.mu.Unlock()

		for _, e := range batch {
			n.deliver(e)
		}
		if closed {
			return
		}
	}
}

func (n *notifier) deliver(e event) {
	switch e.kind {
	case statusEvent:
		if n.onStatus != nil {
			n.onStatus(e.status)
		}
	case playTimeEvent:
		if n.onPlayTime != nil {
			n.onPlayTime(e.playTime)
		}
	case cuePulseEvent:
		if n.onCuePulse != nil {
			n.onCuePulse(e.pulse)
		}
	}
}

// close delivers everything already queued, then stops the goroutine
func (n *notifier) close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.closed = true
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
	<-n.done
}
