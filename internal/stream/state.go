package stream

import (
	"sync"

	"github.com/leasedesk/notify-stream/internal/domain"
)

// Status is the coarse connection status derived from the personal stream.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// State is a snapshot of the client as seen by consumers.
type State struct {
	TenantID      string
	Notifications []domain.Notification
	Announcements []domain.Notification
	Status        Status
	// Error is the last error message, empty when there is none.
	Error string
	// Synced is set once the personal snapshot arrived for the current tenant.
	Synced bool
}

// IsConnected reports whether the personal stream is connected.
func (s State) IsConnected() bool { return s.Status == StatusConnected }

// IsConnecting reports whether a connection attempt is in progress.
func (s State) IsConnecting() bool { return s.Status == StatusConnecting }

// HasError reports whether the client is in the error state.
func (s State) HasError() bool { return s.Status == StatusError }

// broadcaster fans states out to subscribers. Sends never block: a slow
// subscriber loses older states and keeps the latest.
type broadcaster struct {
	mu   sync.Mutex
	seq  uint64
	subs map[uint64]chan State
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[uint64]chan State)}
}

func (b *broadcaster) subscribe(buffer int, initial State) (<-chan State, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan State, buffer)
	ch <- initial

	b.mu.Lock()
	b.seq++
	id := b.seq
	b.subs[id] = ch
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
}

func (b *broadcaster) publish(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// full: drop the oldest state
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
