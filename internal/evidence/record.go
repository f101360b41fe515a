package evidence

import (
	"encoding/json"
	"time"

	"game-trigger-service/internal/domain"
)

// Kind discriminates the evidence record families. Every record carries
// exactly one kind with its own schema.
type Kind string

const (
	KindSourceBundle Kind = "source_bundle"
	KindGameEvent    Kind = "game_event"
	KindCheckpoint   Kind = "checkpoint"
	KindValidation   Kind = "validation"
)

// SourceCapture preserves one provider's raw and normalized answer.
type SourceCapture struct {
	Provider     string          `json:"provider"`
	Raw          json.RawMessage `json:"raw,omitempty"`
	Normalized   domain.GameData `json:"normalized"`
	FetchedAt    time.Time       `json:"fetchedAt"`
	ResponseTime time.Duration   `json:"responseTime"`
}

// SourceBundle is the multi-source fetch evidence persisted before any
// consensus is computed from it.
type SourceBundle struct {
	Kind      Kind            `json:"kind"`
	GameID    string          `json:"gameId"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Sources   []SourceCapture `json:"sources"`
}

// NewSourceBundle builds a source-bundle record.
func NewSourceBundle(gameID string, fetchedAt time.Time, sources []SourceCapture) SourceBundle {
	return SourceBundle{
		Kind:      KindSourceBundle,
		GameID:    gameID,
		FetchedAt: fetchedAt,
		Sources:   sources,
	}
}

// EventRecord is the fixed metadata envelope around an emitted game event.
type EventRecord struct {
	Kind           Kind             `json:"kind"`
	MonitorVersion string           `json:"monitorVersion"`
	DetectedAt     time.Time        `json:"detectedAt"`
	Event          domain.GameEvent `json:"event"`
}

// NewEventRecord builds a game-event record.
func NewEventRecord(version string, detectedAt time.Time, event domain.GameEvent) EventRecord {
	return EventRecord{
		Kind:           KindGameEvent,
		MonitorVersion: version,
		DetectedAt:     detectedAt,
		Event:          event,
	}
}

// CheckpointRecord mirrors a monitor checkpoint for tamper-evident recovery.
type CheckpointRecord struct {
	Kind       Kind              `json:"kind"`
	Checkpoint domain.Checkpoint `json:"checkpoint"`
}

// NewCheckpointRecord builds a checkpoint record.
func NewCheckpointRecord(cp domain.Checkpoint) CheckpointRecord {
	return CheckpointRecord{Kind: KindCheckpoint, Checkpoint: cp}
}

// ValidationRecord links a validation decision to the consensus evidence it
// was computed from, forming the second link of the audit chain.
type ValidationRecord struct {
	Kind                  Kind                       `json:"kind"`
	ConsensusEvidenceHash string                     `json:"consensusEvidenceHash,omitempty"`
	Validation            domain.PromotionValidation `json:"validation"`
}

// NewValidationRecord builds a validation record.
func NewValidationRecord(consensusHash string, v domain.PromotionValidation) ValidationRecord {
	return ValidationRecord{
		Kind:                  KindValidation,
		ConsensusEvidenceHash: consensusHash,
		Validation:            v,
	}
}
