// ABOUTME: Bounded FIFO of PCM buffers between the producer loop and the audio sink
// ABOUTME: Never blocks the consumer; zero-fills on underrun and reports play position
package player

import (
	"errors"
	"sync"
	"time"
)

const (
	// MaxQueuedBuffers is the default queue capacity
	MaxQueuedBuffers = 100
	// BusyQueuedBuffersThreshold is the depth above which the producer waits
	BusyQueuedBuffersThreshold = 3
)

// ErrQueueFull is returned by Enqueue when the queue is at capacity
var ErrQueueFull = errors.New("buffer queue full")

// AudioBuffer is one chunk of processed PCM with the source time it starts at
type AudioBuffer struct {
	Data       []byte
	Timestamp  time.Duration
	readOffset int
}

// Remaining returns the unread byte count
func (b *AudioBuffer) Remaining() int {
	return len(b.Data) - b.readOffset
}

// QueueStats tracks queue metrics
type QueueStats struct {
	Enqueued      int64
	EnqueuedBytes int64
	Consumed      int64
	Underruns     int64
	Depth         int
}

// BufferQueue is the bounded FIFO the sink pulls from. It implements
// io.Reader; Read always fills p completely and never blocks.
type BufferQueue struct {
	mu         sync.Mutex
	items      []*AudioBuffer
	capacity   int
	onPosition func(time.Duration)
	dequeued   chan struct{}
	stats      QueueStats
}

// NewBufferQueue creates a queue. onPosition, if non-nil, is called from the
// reading goroutine once per buffer, just before its first byte is copied. It
// must not block or call back into the queue.
func NewBufferQueue(capacity int, onPosition func(time.Duration)) *BufferQueue {
	if capacity <= 0 {
		capacity = MaxQueuedBuffers
	}
	return &BufferQueue{
		items:      make([]*AudioBuffer, 0, capacity),
		capacity:   capacity,
		onPosition: onPosition,
		dequeued:   make(chan struct{}, 1),
	}
}

// Enqueue copies data into a new buffer at the back of the queue
func (q *BufferQueue) Enqueue(data []byte, timestamp time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}

	buf := &AudioBuffer{
		Data:      append([]byte(nil), data...),
		Timestamp: timestamp,
	}
	q.items = append(q.items, buf)

	q.stats.Enqueued++
	q.stats.EnqueuedBytes += int64(len(data))
	return nil
}

// Read fills p from the front of the queue, zero-filling whatever the queue
// cannot supply. It always returns len(p), nil.
func (q *BufferQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	drained := false
	for n < len(p) && len(q.items) > 0 {
		buf := q.items[0]
		if buf.readOffset == 0 && q.onPosition != nil {
			q.onPosition(buf.Timestamp)
		}

		c := copy(p[n:], buf.Data[buf.readOffset:])
		buf.readOffset += c
		n += c

		if buf.Remaining() == 0 {
			q.items[0] = nil
			q.items = q.items[1:]
			q.stats.Consumed++
			drained = true
		}
	}

	if n < len(p) {
		clear(p[n:])
		q.stats.Underruns++
	}

	if drained {
		q.signal()
	}
	return len(p), nil
}

// Flush drops all queued buffers
func (q *BufferQueue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()

	clear(q.items)
	q.items = q.items[:0]
	q.signal()
}

// Depth returns the number of queued buffers, including a partially read one
func (q *BufferQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Capacity returns the maximum number of queued buffers
func (q *BufferQueue) Capacity() int {
	return q.capacity
}

// Dequeued returns a channel that receives after buffers leave the queue.
// Signals coalesce; it is an edge hint, not a count.
func (q *BufferQueue) Dequeued() <-chan struct{} {
	return q.dequeued
}

// Stats returns queue statistics
func (q *BufferQueue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := q.stats
	s.Depth = len(q.items)
	return s
}

func (q *BufferQueue) signal() {
	select {
	case q.dequeued <- struct{}{}:
	default:
	}
}
