package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"game-trigger-service/internal/consensus"
	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/evidence"
	"game-trigger-service/internal/logging"
	"game-trigger-service/internal/metrics"
)

const (
	defaultPollInterval       = 30 * time.Second
	defaultCheckpointInterval = 2 * time.Minute
	defaultReplayCapacity     = 256

	// Version stamps the metadata envelope of every persisted event.
	Version = "monitor/1"
)

// ConsensusSource provides the reconciled state for one game.
type ConsensusSource interface {
	ForGame(ctx context.Context, gameID string) (*domain.ConsensusResult, error)
}

// GameStateStore keeps the last known state per game across cycles.
type GameStateStore interface {
	GameState(gameID string) (domain.GameData, bool)
	SetGameState(gameID string, state domain.GameData)
}

// EventListener receives every emitted event synchronously. A listener's
// panic or error is isolated and never blocks delivery to its peers.
type EventListener interface {
	OnGameEvent(ctx context.Context, event domain.GameEvent) error
}

// Config controls monitor scheduling and buffering.
type Config struct {
	PollInterval       time.Duration
	CheckpointInterval time.Duration
	ReplayCapacity     int
	FetchTimeout       time.Duration
}

// Monitor polls a dynamic set of games, diffs consensus states across
// cycles into typed events, and checkpoints its progress.
type Monitor struct {
	consensus   ConsensusSource
	states      GameStateStore
	evidence    evidence.Store
	checkpoints CheckpointStore
	logger      *slog.Logger
	metrics     *metrics.Recorder
	cfg         Config
	now         func() time.Time
	newID       func() string

	replay *ReplayBuffer

	listenersMu sync.Mutex
	listeners   []EventListener

	gamesMu sync.RWMutex
	games   map[string]struct{}

	statsMu       sync.Mutex
	stats         domain.MonitorStats
	lastEventID   string
	lastCycleAt   time.Time
	checksCounted int64
	checkDuration time.Duration

	pollTicker *time.Ticker
	cpTicker   *time.Ticker
	done       chan struct{}
	stopOnce   sync.Once
	startMu    sync.Mutex
	started    bool
	wg         sync.WaitGroup
}

// Status describes the monitor's recent activity.
type Status struct {
	Running        bool                `json:"running"`
	MonitoredGames []string            `json:"monitoredGames"`
	LastCycleAt    time.Time           `json:"lastCycleAt,omitzero"`
	LastEventID    string              `json:"lastEventId,omitempty"`
	Stats          domain.MonitorStats `json:"stats"`
}

// IsReady reports whether the monitor has completed a cycle recently enough
// to serve traffic.
func (s Status) IsReady() bool {
	return s.Running
}

// New constructs a stopped Monitor with sane defaults.
func New(source ConsensusSource, states GameStateStore, store evidence.Store, checkpoints CheckpointStore, logger *slog.Logger, recorder *metrics.Recorder, cfg Config) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.CheckpointInterval <= 0 {
		cfg.CheckpointInterval = defaultCheckpointInterval
	}
	if cfg.ReplayCapacity <= 0 {
		cfg.ReplayCapacity = defaultReplayCapacity
	}
	return &Monitor{
		consensus:   source,
		states:      states,
		evidence:    store,
		checkpoints: checkpoints,
		logger:      logger,
		metrics:     recorder,
		cfg:         cfg,
		now:         time.Now,
		newID:       uuid.NewString,
		replay:      NewReplayBuffer(cfg.ReplayCapacity),
		games:       make(map[string]struct{}),
		done:        make(chan struct{}),
	}
}

// RegisterListener appends a listener to the ordered broadcast registry.
func (m *Monitor) RegisterListener(listener EventListener) {
	if listener == nil {
		return
	}
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, listener)
}

// Replay returns the buffered recent events, oldest first.
func (m *Monitor) Replay() []domain.GameEvent {
	return m.replay.Events()
}

// Start restores the last checkpoint and begins the poll and checkpoint
// loops. It is a no-op if already started.
func (m *Monitor) Start(ctx context.Context) {
	m.startMu.Lock()
	if m.started {
		m.startMu.Unlock()
		return
	}
	m.started = true
	m.startMu.Unlock()

	m.restoreCheckpoint()

	m.pollTicker = time.NewTicker(m.cfg.PollInterval)
	m.cpTicker = time.NewTicker(m.cfg.CheckpointInterval)

	m.wg.Add(2)
	go m.pollLoop(ctx)
	go m.checkpointLoop(ctx)

	logging.Info(m.logger, "monitor started",
		slog.Int64(logging.FieldDurationMS, m.cfg.PollInterval.Milliseconds()),
		slog.Int(logging.FieldCount, len(m.MonitoredGames())),
	)
}

// Stop cancels both loops, waits for any in-flight cycle to finish, then
// writes one final checkpoint so no processed event is left uncovered.
func (m *Monitor) Stop(ctx context.Context) error {
	m.stopOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
	m.stopTickers()

	m.startMu.Lock()
	m.started = false
	m.startMu.Unlock()

	err := m.writeCheckpoint(ctx)
	logging.Info(m.logger, "monitor stopped")
	return err
}

// MonitorGame adds a game to the monitored set and immediately performs one
// synchronous state check without waiting for the next poll tick.
func (m *Monitor) MonitorGame(ctx context.Context, gameID string) {
	m.gamesMu.Lock()
	m.games[gameID] = struct{}{}
	m.gamesMu.Unlock()

	m.checkGame(ctx, gameID)
}

// UnmonitorGame removes a game from the monitored set.
func (m *Monitor) UnmonitorGame(gameID string) {
	m.gamesMu.Lock()
	defer m.gamesMu.Unlock()
	delete(m.games, gameID)
}

// MonitoredGames returns the sorted monitored game IDs.
func (m *Monitor) MonitoredGames() []string {
	m.gamesMu.RLock()
	defer m.gamesMu.RUnlock()

	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Status returns a snapshot of the monitor's recent activity.
func (m *Monitor) Status() Status {
	m.startMu.Lock()
	running := m.started
	m.startMu.Unlock()

	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return Status{
		Running:        running,
		MonitoredGames: m.MonitoredGames(),
		LastCycleAt:    m.lastCycleAt,
		LastEventID:    m.lastEventID,
		Stats:          m.stats,
	}
}

func (m *Monitor) pollLoop(ctx context.Context) {
	defer m.wg.Done()

	// Initial cycle to pick up state on boot.
	m.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-m.pollTicker.C:
			m.runCycle(ctx)
		}
	}
}

func (m *Monitor) checkpointLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-m.cpTicker.C:
			if err := m.writeCheckpoint(ctx); err != nil {
				logging.Error(m.logger, "checkpoint write failed", err)
			}
		}
	}
}

// runCycle checks every monitored game concurrently. A failure checking one
// game degrades that game to zero events and never aborts the cycle.
func (m *Monitor) runCycle(ctx context.Context) {
	start := m.now()
	ids := m.MonitoredGames()

	failed := make([]bool, len(ids))
	var wg sync.WaitGroup
	for i, gameID := range ids {
		wg.Add(1)
		go func(i int, gameID string) {
			defer wg.Done()
			failed[i] = !m.checkGame(ctx, gameID)
		}(i, gameID)
	}
	wg.Wait()

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}

	m.statsMu.Lock()
	m.lastCycleAt = m.now()
	m.statsMu.Unlock()

	m.metrics.RecordMonitorCycle(m.now().Sub(start), failures)
}

// checkGame performs one state check for a game. Returns false when the
// check itself failed (as opposed to finding no new data).
func (m *Monitor) checkGame(ctx context.Context, gameID string) bool {
	start := m.now()
	if m.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.FetchTimeout)
		defer cancel()
	}

	result, err := m.consensus.ForGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, consensus.ErrNoSources) {
			// No data yet is not a failure.
			m.recordSkip(start)
			return true
		}
		m.recordFailure(start)
		logging.Warn(m.logger, "game check failed",
			slog.String(logging.FieldGameID, gameID), "error", err)
		return false
	}

	curr := result.Data
	var prev *domain.GameData
	if known, ok := m.states.GameState(gameID); ok {
		prev = &known
	}

	// Finality is monotonic: after a game has been observed final, a
	// non-final reading is a provider regression, not a state change.
	if prev != nil && prev.Status.IsFinal && !curr.Status.IsFinal {
		m.recordSkip(start)
		logging.Warn(m.logger, "dropping non-final reading for finalized game",
			slog.String(logging.FieldGameID, gameID),
			slog.String(logging.FieldConsensus, string(result.Status)),
		)
		return true
	}

	events := DetectChanges(prev, curr)
	for _, event := range events {
		m.emit(ctx, event, result)
	}

	m.states.SetGameState(gameID, curr)
	m.recordCheck(start, len(events))
	return true
}

// emit stamps, persists, buffers, and broadcasts one event.
func (m *Monitor) emit(ctx context.Context, event domain.GameEvent, result *domain.ConsensusResult) {
	detectedAt := m.now().UTC()
	event.EventID = fmt.Sprintf("%s-%s-%s", event.GameID, event.Type, m.newID())
	event.Timestamp = detectedAt

	if m.evidence != nil {
		record := evidence.NewEventRecord(Version, detectedAt, event)
		hash, err := m.evidence.PutImmutable(ctx, record)
		if err != nil {
			logging.Error(m.logger, "event evidence persist failed", err,
				slog.String(logging.FieldEventID, event.EventID))
		} else {
			event.EvidenceHash = hash
		}
	}

	m.replay.Append(event)
	m.metrics.RecordGameEvent(string(event.Type))

	logging.Info(m.logger, "game event detected",
		slog.String(logging.FieldEventID, event.EventID),
		slog.String(logging.FieldGameID, event.GameID),
		slog.String(logging.FieldEventType, string(event.Type)),
		slog.String(logging.FieldEvidence, event.EvidenceHash),
		slog.String(logging.FieldConsensus, string(result.Status)),
	)

	m.broadcast(ctx, event)

	m.statsMu.Lock()
	m.lastEventID = event.EventID
	m.statsMu.Unlock()
}

// broadcast delivers the event to every listener in registration order.
// Each invocation runs in its own failure boundary.
func (m *Monitor) broadcast(ctx context.Context, event domain.GameEvent) {
	m.listenersMu.Lock()
	listeners := make([]EventListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.listenersMu.Unlock()

	for _, listener := range listeners {
		m.deliver(ctx, listener, event)
	}
}

func (m *Monitor) deliver(ctx context.Context, listener EventListener, event domain.GameEvent) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(m.logger, "listener panicked", fmt.Errorf("%v", r),
				slog.String(logging.FieldEventID, event.EventID))
		}
	}()

	if err := listener.OnGameEvent(ctx, event); err != nil {
		logging.Error(m.logger, "listener failed", err,
			slog.String(logging.FieldEventID, event.EventID),
			slog.String(logging.FieldEventType, string(event.Type)),
		)
	}
}

func (m *Monitor) restoreCheckpoint() {
	if m.checkpoints == nil {
		return
	}
	cp, found, err := m.checkpoints.Load()
	if err != nil {
		logging.Error(m.logger, "checkpoint restore failed", err)
		return
	}
	if !found {
		return
	}

	m.gamesMu.Lock()
	for _, gameID := range cp.MonitoredGames {
		m.games[gameID] = struct{}{}
	}
	m.gamesMu.Unlock()

	m.statsMu.Lock()
	m.lastEventID = cp.LastProcessedEventID
	m.stats = cp.Stats
	m.statsMu.Unlock()

	logging.Info(m.logger, "checkpoint restored",
		slog.String("checkpoint_id", cp.CheckpointID),
		slog.Int(logging.FieldCount, len(cp.MonitoredGames)),
	)
}

func (m *Monitor) writeCheckpoint(ctx context.Context) error {
	m.statsMu.Lock()
	cp := domain.Checkpoint{
		CheckpointID:         m.newID(),
		Timestamp:            m.now().UTC(),
		LastProcessedEventID: m.lastEventID,
		MonitoredGames:       m.MonitoredGames(),
		Stats:                m.stats,
	}
	m.statsMu.Unlock()

	if m.checkpoints != nil {
		if err := m.checkpoints.Save(cp); err != nil {
			return err
		}
	}

	if m.evidence != nil {
		if _, err := m.evidence.PutImmutable(ctx, evidence.NewCheckpointRecord(cp)); err != nil {
			logging.Error(m.logger, "checkpoint evidence persist failed", err)
		}
	}
	return nil
}

func (m *Monitor) stopTickers() {
	if m.pollTicker != nil {
		m.pollTicker.Stop()
	}
	if m.cpTicker != nil {
		m.cpTicker.Stop()
	}
}

func (m *Monitor) recordSkip(start time.Time) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	m.stats.GamesSkipped++
	m.noteCheckLocked(start)
}

func (m *Monitor) recordFailure(start time.Time) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	m.stats.CheckFailures++
	m.noteCheckLocked(start)
}

func (m *Monitor) recordCheck(start time.Time, eventCount int) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	m.stats.EventsProcessed += int64(eventCount)
	m.noteCheckLocked(start)
}

// noteCheckLocked updates the running average check duration. Caller must
// hold statsMu.
func (m *Monitor) noteCheckLocked(start time.Time) {
	m.checksCounted++
	m.checkDuration += m.now().Sub(start)
	m.stats.AvgCheckDuration = m.checkDuration / time.Duration(m.checksCounted)
}
