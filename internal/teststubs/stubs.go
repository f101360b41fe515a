// Package teststubs holds shared hand-written test doubles.
package teststubs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/providers"
)

// StubProvider is a test double for providers.GameProvider.
type StubProvider struct {
	Name_   string
	Outcome providers.Outcome
	Err     error
	Calls   atomic.Int32

	// FetchFunc overrides Outcome/Err when set, e.g. to vary per call.
	FetchFunc func(ctx context.Context, gameID string, cond providers.Conditional) (providers.Outcome, error)
}

func (s *StubProvider) Name() string {
	if s.Name_ == "" {
		return "stub"
	}
	return s.Name_
}

// FetchGame returns the configured outcome and error while tracking calls.
func (s *StubProvider) FetchGame(ctx context.Context, gameID string, cond providers.Conditional) (providers.Outcome, error) {
	s.Calls.Add(1)
	if s.FetchFunc != nil {
		return s.FetchFunc(ctx, gameID, cond)
	}
	return s.Outcome, s.Err
}

// StubEvidenceStore is an in-memory test double for evidence.Store.
type StubEvidenceStore struct {
	mu      sync.Mutex
	Objects map[string]json.RawMessage
	PutErr  error
}

// PutImmutable hashes the payload like the real store and records it.
func (s *StubEvidenceStore) PutImmutable(_ context.Context, payload any) (string, error) {
	if s.PutErr != nil {
		return "", s.PutErr
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Objects == nil {
		s.Objects = make(map[string]json.RawMessage)
	}
	s.Objects[hash] = data
	return hash, nil
}

func (s *StubEvidenceStore) VerifyStored(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[hash]
	return ok, nil
}

// Len reports the number of stored objects.
func (s *StubEvidenceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}

// StubConsensusSource is a test double for the monitor's consensus source.
type StubConsensusSource struct {
	mu      sync.Mutex
	Results map[string]*domain.ConsensusResult
	Err     error
	Calls   atomic.Int32
}

func (s *StubConsensusSource) ForGame(_ context.Context, gameID string) (*domain.ConsensusResult, error) {
	s.Calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.Results[gameID]
	if !ok {
		return nil, fmt.Errorf("no result configured for game %s", gameID)
	}
	return result, nil
}

// SetResult swaps the configured result for a game between cycles.
func (s *StubConsensusSource) SetResult(gameID string, result *domain.ConsensusResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Results == nil {
		s.Results = make(map[string]*domain.ConsensusResult)
	}
	s.Results[gameID] = result
}

// ForPromotion satisfies the validation service's consensus dependency.
func (s *StubConsensusSource) ForPromotion(ctx context.Context, promotionID, gameID string) (*domain.ConsensusResult, error) {
	return s.ForGame(ctx, gameID)
}

// StubListener records every event it receives.
type StubListener struct {
	mu     sync.Mutex
	events []domain.GameEvent
	Err    error
	Panic  bool
}

func (l *StubListener) OnGameEvent(_ context.Context, event domain.GameEvent) error {
	if l.Panic {
		panic("listener exploded")
	}
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
	return l.Err
}

// Events returns a copy of the received events.
func (l *StubListener) Events() []domain.GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// StubDispatcher records dispatched validations.
type StubDispatcher struct {
	mu          sync.Mutex
	Dispatched  []domain.PromotionValidation
	DispatchErr error
}

func (d *StubDispatcher) Dispatch(_ context.Context, validation domain.PromotionValidation, _ domain.GameEvent) error {
	if d.DispatchErr != nil {
		return d.DispatchErr
	}
	d.mu.Lock()
	d.Dispatched = append(d.Dispatched, validation)
	d.mu.Unlock()
	return nil
}

// Count reports the number of successful dispatches.
func (d *StubDispatcher) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Dispatched)
}

// StubCheckpointStore is an in-memory test double for monitor.CheckpointStore.
type StubCheckpointStore struct {
	mu      sync.Mutex
	Saved   []domain.Checkpoint
	SaveErr error
	Loaded  *domain.Checkpoint
	LoadErr error
}

func (s *StubCheckpointStore) Save(cp domain.Checkpoint) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	s.Saved = append(s.Saved, cp)
	s.mu.Unlock()
	return nil
}

func (s *StubCheckpointStore) Load() (domain.Checkpoint, bool, error) {
	if s.LoadErr != nil {
		return domain.Checkpoint{}, false, s.LoadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Loaded == nil {
		return domain.Checkpoint{}, false, nil
	}
	return *s.Loaded, true, nil
}

// SaveCount reports how many checkpoints were written.
func (s *StubCheckpointStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Saved)
}
