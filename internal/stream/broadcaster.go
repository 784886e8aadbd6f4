// Package stream fans the audition pipeline out to HTTP and WebRTC clients.
package stream

import (
	"context"
	"sync"
	"sync/atomic"
)

// ListenerBuffer is how many 20ms frames a listener may fall behind before
// frames are dropped (~3 seconds).
const ListenerBuffer = 150

// Broadcaster fans out PCM frames from one source to N listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
	sent      atomic.Int64
}

// Listener receives PCM frames from the broadcaster.
type Listener struct {
	C       chan []int16 // buffered channel of 20ms PCM frames
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// Done is closed when the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Dropped returns how many frames were skipped because the listener was
// too slow.
func (l *Listener) Dropped() int64 { return l.dropped.Load() }

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new listener.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{
		C:    make(chan []int16, ListenerBuffer),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop. It is safe to call
// more than once.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	delete(b.listeners, l)
	b.mu.Unlock()
	l.once.Do(func() { close(l.done) })
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// FramesSent returns the number of frames read from the source so far.
func (b *Broadcaster) FramesSent() int64 { return b.sent.Load() }

// Run reads frames from source and fans out to all listeners.
// Slow listeners get frames dropped rather than blocking the broadcast.
func (b *Broadcaster) Run(ctx context.Context, source <-chan []int16) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				return
			}
			b.sent.Add(1)
			b.mu.RLock()
			for l := range b.listeners {
				select {
				case l.C <- frame:
				default:
					l.dropped.Add(1)
				}
			}
			b.mu.RUnlock()
		}
	}
}
