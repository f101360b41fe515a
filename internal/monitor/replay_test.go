package monitor

import (
	"fmt"
	"testing"

	"game-trigger-service/internal/domain"
)

func appendN(b *ReplayBuffer, n int) {
	for i := 0; i < n; i++ {
		b.Append(domain.GameEvent{EventID: fmt.Sprintf("evt-%d", i)})
	}
}

func TestReplayBufferHoldsUpToCapacity(t *testing.T) {
	b := NewReplayBuffer(4)
	appendN(b, 3)

	events := b.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].EventID != "evt-0" || events[2].EventID != "evt-2" {
		t.Fatalf("expected oldest-first order, got %v", events)
	}
}

func TestReplayBufferBoundedAtCapacity(t *testing.T) {
	const capacity = 8
	const extra = 5
	b := NewReplayBuffer(capacity)

	appendN(b, capacity+extra)

	if b.Len() != capacity {
		t.Fatalf("expected length pinned at %d, got %d", capacity, b.Len())
	}
	events := b.Events()
	if len(events) != capacity {
		t.Fatalf("expected %d events, got %d", capacity, len(events))
	}
	// Only the most recent capacity survive, oldest first.
	if events[0].EventID != fmt.Sprintf("evt-%d", extra) {
		t.Fatalf("expected oldest survivor evt-%d, got %s", extra, events[0].EventID)
	}
	if events[capacity-1].EventID != fmt.Sprintf("evt-%d", capacity+extra-1) {
		t.Fatalf("expected newest evt-%d, got %s", capacity+extra-1, events[capacity-1].EventID)
	}
}

func TestReplayBufferExactlyFull(t *testing.T) {
	b := NewReplayBuffer(3)
	appendN(b, 3)

	events := b.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].EventID != "evt-0" {
		t.Fatalf("expected no eviction at exact capacity, got %s first", events[0].EventID)
	}
}

func TestReplayBufferEventsReturnsCopy(t *testing.T) {
	b := NewReplayBuffer(3)
	appendN(b, 2)

	events := b.Events()
	events[0].EventID = "mutated"

	if b.Events()[0].EventID != "evt-0" {
		t.Fatal("callers must not be able to mutate the buffer")
	}
}

func TestReplayBufferMinimumCapacity(t *testing.T) {
	b := NewReplayBuffer(0)
	appendN(b, 2)
	if b.Len() != 1 {
		t.Fatalf("expected degenerate capacity of 1, got %d", b.Len())
	}
}
