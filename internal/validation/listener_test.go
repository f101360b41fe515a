package validation

import (
	"context"
	"errors"
	"testing"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/metrics"
	"game-trigger-service/internal/teststubs"
)

func triggeredEvent(gameID string) domain.GameEvent {
	return domain.GameEvent{
		EventID:   "g1-game_end-x",
		GameID:    gameID,
		Type:      domain.EventGameEnd,
		Triggered: true,
	}
}

func TestTriggerListenerDispatchesApproved(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusWith(domain.ConsensusConfirmed, 0.95))
	svc, _ := newTestService(source, seedCatalog(t))
	dispatcher := &teststubs.StubDispatcher{}
	listener := NewTriggerListener(svc, dispatcher, nil)

	if err := listener.OnGameEvent(context.Background(), triggeredEvent("g1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispatcher.Count() != 1 {
		t.Fatalf("expected one dispatch, got %d", dispatcher.Count())
	}
	if dispatcher.Dispatched[0].PromotionID != "promo-1" {
		t.Fatalf("unexpected dispatched promotion %+v", dispatcher.Dispatched[0])
	}
}

func TestTriggerListenerSkipsRejected(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusWith(domain.ConsensusNeedsReview, 0.6))
	svc, _ := newTestService(source, seedCatalog(t))
	dispatcher := &teststubs.StubDispatcher{}
	listener := NewTriggerListener(svc, dispatcher, nil)

	listener.OnGameEvent(context.Background(), triggeredEvent("g1"))
	if dispatcher.Count() != 0 {
		t.Fatal("rejected validations must not dispatch")
	}
}

func TestTriggerListenerIgnoresInformationalEvents(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	svc, _ := newTestService(source, seedCatalog(t))
	dispatcher := &teststubs.StubDispatcher{}
	listener := NewTriggerListener(svc, dispatcher, nil)

	event := triggeredEvent("g1")
	event.Type = domain.EventStatusChange
	event.Triggered = false

	listener.OnGameEvent(context.Background(), event)
	if source.Calls.Load() != 0 {
		t.Fatal("informational events must not touch consensus")
	}
	if dispatcher.Count() != 0 {
		t.Fatal("informational events must not dispatch")
	}
}

func TestTriggerListenerDispatchFailureSwallowed(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusWith(domain.ConsensusConfirmed, 0.95))
	svc, _ := newTestService(source, seedCatalog(t))
	dispatcher := &teststubs.StubDispatcher{DispatchErr: errors.New("webhook down")}
	listener := NewTriggerListener(svc, dispatcher, nil)

	if err := listener.OnGameEvent(context.Background(), triggeredEvent("g1")); err != nil {
		t.Fatalf("dispatch failure must not propagate to the monitor, got %v", err)
	}
}

func TestTriggerListenerNilDispatcher(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusWith(domain.ConsensusConfirmed, 0.95))
	svc := New(source, seedCatalog(t), &teststubs.StubEvidenceStore{}, nil, metrics.NewRecorder())
	listener := NewTriggerListener(svc, nil, nil)

	if err := listener.OnGameEvent(context.Background(), triggeredEvent("g1")); err != nil {
		t.Fatalf("nil dispatcher must be tolerated, got %v", err)
	}
}
