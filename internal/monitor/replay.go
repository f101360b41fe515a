package monitor

import (
	"sync"

	"game-trigger-service/internal/domain"
)

// ReplayBuffer is a fixed-capacity ring of recently emitted events kept for
// diagnostics and backfill. Once full, appending drops the oldest entry.
type ReplayBuffer struct {
	mu       sync.Mutex
	capacity int
	events   []domain.GameEvent
	next     int
	full     bool
}

// NewReplayBuffer constructs a ring holding at most capacity events.
func NewReplayBuffer(capacity int) *ReplayBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &ReplayBuffer{
		capacity: capacity,
		events:   make([]domain.GameEvent, capacity),
	}
}

// Append records an event, evicting the oldest once capacity is exceeded.
func (b *ReplayBuffer) Append(event domain.GameEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[b.next] = event
	b.next = (b.next + 1) % b.capacity
	if b.next == 0 {
		b.full = true
	}
}

// Events returns a copy of the buffered events, oldest first.
func (b *ReplayBuffer) Events() []domain.GameEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.full {
		out := make([]domain.GameEvent, b.next)
		copy(out, b.events[:b.next])
		return out
	}

	out := make([]domain.GameEvent, 0, b.capacity)
	out = append(out, b.events[b.next:]...)
	out = append(out, b.events[:b.next]...)
	return out
}

// Len reports how many events are currently buffered.
func (b *ReplayBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return b.capacity
	}
	return b.next
}
