// Package connmon tracks whether the link to the remote document is up.
package connmon

import (
	"context"
	"log/slog"
	"sync"
)

// Monitor consumes a connectivity stream and exposes the latest value.
// It starts disconnected.
type Monitor struct {
	mu        sync.RWMutex
	connected bool
	subs      map[int]chan bool
	nextSub   int
}

// New creates a disconnected Monitor.
func New() *Monitor {
	return &Monitor{subs: make(map[int]chan bool)}
}

// Run reads from stream until it is closed or ctx is done. A closed stream
// leaves the monitor disconnected.
func (m *Monitor) Run(ctx context.Context, stream <-chan bool) {
	defer m.set(false)
	for {
		select {
		case <-ctx.Done():
			return
		case up, ok := <-stream:
			if !ok {
				return
			}
			m.set(up)
		}
	}
}

// Connected reports the latest known state.
func (m *Monitor) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Subscribe returns a channel that receives the new state on every change.
// Only the latest unread state is kept. The returned function unsubscribes.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan bool, 1)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

func (m *Monitor) set(up bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected == up {
		return
	}
	m.connected = up
	slog.Info("Connectivity changed", "connected", up)

	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- up
	}
}
