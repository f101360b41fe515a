package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"game-trigger-service/internal/consensus"
	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/metrics"
	"game-trigger-service/internal/store"
	"game-trigger-service/internal/teststubs"
)

func consensusFor(data domain.GameData) *domain.ConsensusResult {
	return &domain.ConsensusResult{
		GameID:     data.GameID,
		Status:     domain.ConsensusConfirmed,
		Confidence: 0.94,
		Data:       data,
	}
}

func newTestMonitor(source ConsensusSource, listeners ...EventListener) (*Monitor, *store.Memory, *teststubs.StubEvidenceStore, *teststubs.StubCheckpointStore) {
	states := store.NewMemory()
	evidenceStore := &teststubs.StubEvidenceStore{}
	checkpoints := &teststubs.StubCheckpointStore{}

	m := New(source, states, evidenceStore, checkpoints, nil, metrics.NewRecorder(), Config{
		PollInterval:       time.Hour,
		CheckpointInterval: time.Hour,
		ReplayCapacity:     16,
	})
	for _, l := range listeners {
		m.RegisterListener(l)
	}
	return m, states, evidenceStore, checkpoints
}

func TestMonitorGameImmediateCheckEmitsGameStart(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusFor(state(0, 0, false)))
	listener := &teststubs.StubListener{}
	m, states, evidenceStore, _ := newTestMonitor(source, listener)

	m.MonitorGame(context.Background(), "g1")

	events := listener.Events()
	if len(events) != 1 {
		t.Fatalf("expected one delivered event, got %d", len(events))
	}
	event := events[0]
	if event.Type != domain.EventGameStart {
		t.Fatalf("expected game_start, got %s", event.Type)
	}
	if event.EventID == "" || event.Timestamp.IsZero() {
		t.Fatalf("event must be stamped, got %+v", event)
	}
	if event.EvidenceHash == "" {
		t.Fatal("expected event evidence hash")
	}
	if evidenceStore.Len() != 1 {
		t.Fatalf("expected one evidence record, got %d", evidenceStore.Len())
	}
	if got := m.Replay(); len(got) != 1 || got[0].EventID != event.EventID {
		t.Fatalf("expected event in replay buffer, got %v", got)
	}
	if _, ok := states.GameState("g1"); !ok {
		t.Fatal("expected current state cached after check")
	}
}

func TestMonitorDiffAcrossCycles(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusFor(state(0, 0, false)))
	listener := &teststubs.StubListener{}
	m, _, _, _ := newTestMonitor(source, listener)

	ctx := context.Background()
	m.MonitorGame(ctx, "g1")

	source.SetResult("g1", consensusFor(state(1, 0, false)))
	m.checkGame(ctx, "g1")

	source.SetResult("g1", consensusFor(state(1, 0, true)))
	m.checkGame(ctx, "g1")

	events := listener.Events()
	if len(events) != 3 {
		t.Fatalf("expected game_start, score_change, game_end; got %d events", len(events))
	}
	wantTypes := []domain.EventType{domain.EventGameStart, domain.EventScoreChange, domain.EventGameEnd}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, events[i].Type)
		}
	}
}

func TestMonitorFinalityIsMonotonic(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusFor(state(5, 3, true)))
	listener := &teststubs.StubListener{}
	m, states, _, _ := newTestMonitor(source, listener)

	ctx := context.Background()
	// Seed a final state directly, as if observed in an earlier cycle.
	final := state(5, 3, true)
	states.SetGameState("g1", final)
	m.gamesMu.Lock()
	m.games["g1"] = struct{}{}
	m.gamesMu.Unlock()

	// A provider regression reports the game live again.
	source.SetResult("g1", consensusFor(state(5, 3, false)))
	if ok := m.checkGame(ctx, "g1"); !ok {
		t.Fatal("regression reading is a skip, not a check failure")
	}

	if got := listener.Events(); len(got) != 0 {
		t.Fatalf("no events may follow a final state, got %v", got)
	}
	cached, _ := states.GameState("g1")
	if !cached.Status.IsFinal {
		t.Fatal("final state must not be overwritten by a non-final reading")
	}
	if m.Status().Stats.GamesSkipped != 1 {
		t.Fatalf("expected skip recorded, got %+v", m.Status().Stats)
	}
}

func TestMonitorNoSourcesIsSkipNotFailure(t *testing.T) {
	source := &teststubs.StubConsensusSource{Err: consensus.ErrNoSources}
	m, _, _, _ := newTestMonitor(source)

	if ok := m.checkGame(context.Background(), "g1"); !ok {
		t.Fatal("no data yet must not count as a check failure")
	}
	stats := m.Status().Stats
	if stats.GamesSkipped != 1 || stats.CheckFailures != 0 {
		t.Fatalf("expected one skip and zero failures, got %+v", stats)
	}
}

func TestMonitorCheckFailureRecorded(t *testing.T) {
	source := &teststubs.StubConsensusSource{Err: errors.New("engine exploded")}
	m, _, _, _ := newTestMonitor(source)

	if ok := m.checkGame(context.Background(), "g1"); ok {
		t.Fatal("expected check failure")
	}
	if got := m.Status().Stats.CheckFailures; got != 1 {
		t.Fatalf("expected one recorded failure, got %d", got)
	}
}

func TestMonitorListenerFailureIsolated(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusFor(state(0, 0, false)))

	panicking := &teststubs.StubListener{Panic: true}
	failing := &teststubs.StubListener{Err: errors.New("handler error")}
	healthy := &teststubs.StubListener{}
	m, _, _, _ := newTestMonitor(source, panicking, failing, healthy)

	m.MonitorGame(context.Background(), "g1")

	if len(healthy.Events()) != 1 {
		t.Fatal("a peer's panic or error must not block delivery")
	}
	if len(failing.Events()) != 1 {
		t.Fatal("a failing listener still receives the event")
	}
}

func TestMonitorEvidenceFailureStillDelivers(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusFor(state(0, 0, false)))
	listener := &teststubs.StubListener{}

	states := store.NewMemory()
	evidenceStore := &teststubs.StubEvidenceStore{PutErr: errors.New("disk full")}
	m := New(source, states, evidenceStore, &teststubs.StubCheckpointStore{}, nil, metrics.NewRecorder(), Config{
		PollInterval:       time.Hour,
		CheckpointInterval: time.Hour,
	})
	m.RegisterListener(listener)

	m.MonitorGame(context.Background(), "g1")

	events := listener.Events()
	if len(events) != 1 {
		t.Fatal("evidence failure must not block the event")
	}
	if events[0].EvidenceHash != "" {
		t.Fatal("expected empty evidence hash after persist failure")
	}
}

func TestMonitorStopWritesFinalCheckpoint(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusFor(state(0, 0, false)))
	m, _, evidenceStore, checkpoints := newTestMonitor(source)

	ctx := context.Background()
	m.MonitorGame(ctx, "g1")
	m.Start(ctx)
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	if checkpoints.SaveCount() == 0 {
		t.Fatal("expected a final checkpoint on stop")
	}
	last := checkpoints.Saved[len(checkpoints.Saved)-1]
	if last.CheckpointID == "" {
		t.Fatal("checkpoint must carry an id")
	}
	if len(last.MonitoredGames) != 1 || last.MonitoredGames[0] != "g1" {
		t.Fatalf("checkpoint must carry the monitored set, got %v", last.MonitoredGames)
	}
	if last.LastProcessedEventID == "" {
		t.Fatal("checkpoint must record the last processed event")
	}
	// Mirrored to evidence: event record plus at least one checkpoint record.
	if evidenceStore.Len() < 2 {
		t.Fatalf("expected checkpoint mirrored to evidence, got %d records", evidenceStore.Len())
	}
}

func TestMonitorRestoresCheckpointOnStart(t *testing.T) {
	source := &teststubs.StubConsensusSource{Err: consensus.ErrNoSources}
	states := store.NewMemory()
	checkpoints := &teststubs.StubCheckpointStore{
		Loaded: &domain.Checkpoint{
			CheckpointID:         "cp-9",
			LastProcessedEventID: "evt-17",
			MonitoredGames:       []string{"g1", "g2"},
			Stats:                domain.MonitorStats{EventsProcessed: 12},
		},
	}
	m := New(source, states, &teststubs.StubEvidenceStore{}, checkpoints, nil, metrics.NewRecorder(), Config{
		PollInterval:       time.Hour,
		CheckpointInterval: time.Hour,
	})

	ctx := context.Background()
	m.Start(ctx)
	defer m.Stop(ctx)

	games := m.MonitoredGames()
	if len(games) != 2 || games[0] != "g1" || games[1] != "g2" {
		t.Fatalf("expected restored monitored set, got %v", games)
	}
	status := m.Status()
	if status.LastEventID != "evt-17" {
		t.Fatalf("expected restored last event id, got %q", status.LastEventID)
	}
	if status.Stats.EventsProcessed != 12 {
		t.Fatalf("expected restored counters, got %+v", status.Stats)
	}
}

func TestMonitorStartStopIdempotent(t *testing.T) {
	source := &teststubs.StubConsensusSource{Err: consensus.ErrNoSources}
	m, _, _, _ := newTestMonitor(source)

	ctx := context.Background()
	m.Start(ctx)
	m.Start(ctx) // second start is a no-op
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("second stop failed: %v", err)
	}
}

func TestMonitorUnmonitorGame(t *testing.T) {
	source := &teststubs.StubConsensusSource{}
	source.SetResult("g1", consensusFor(state(0, 0, false)))
	m, _, _, _ := newTestMonitor(source)

	m.MonitorGame(context.Background(), "g1")
	m.UnmonitorGame("g1")

	if got := m.MonitoredGames(); len(got) != 0 {
		t.Fatalf("expected empty monitored set, got %v", got)
	}
}
