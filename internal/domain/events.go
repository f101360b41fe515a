package domain

import "time"

// EventType identifies the kind of state change detected for a game.
type EventType string

const (
	EventGameStart    EventType = "game_start"
	EventGameEnd      EventType = "game_end"
	EventScoreChange  EventType = "score_change"
	EventStatusChange EventType = "status_change"
)

// ProcessingStatus tracks downstream handling of an emitted event.
type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingInProgress ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingFailed     ProcessingStatus = "failed"
)

// GameEvent is a typed state change produced by the monitor's diff step.
// After evidence persistence only ProcessingStatus and RetryCount change.
type GameEvent struct {
	EventID          string           `json:"eventId"`
	GameID           string           `json:"gameId"`
	Type             EventType        `json:"eventType"`
	Timestamp        time.Time        `json:"timestamp"`
	Previous         *GameData        `json:"previousState,omitempty"`
	Current          *GameData        `json:"currentState,omitempty"`
	Triggered        bool             `json:"triggered"`
	ProcessingStatus ProcessingStatus `json:"processingStatus"`
	RetryCount       int              `json:"retryCount"`
	EvidenceHash     string           `json:"evidenceHash,omitempty"`
}

// MonitorStats aggregates counters across monitor cycles.
type MonitorStats struct {
	EventsProcessed  int64         `json:"eventsProcessed"`
	GamesSkipped     int64         `json:"gamesSkipped"`
	CheckFailures    int64         `json:"checkFailures"`
	AvgCheckDuration time.Duration `json:"avgCheckDuration"`
}

// Checkpoint marks monitoring progress for crash recovery. Written
// periodically and at shutdown, read once at startup.
type Checkpoint struct {
	CheckpointID         string       `json:"checkpointId"`
	Timestamp            time.Time    `json:"timestamp"`
	LastProcessedEventID string       `json:"lastProcessedEventId"`
	MonitoredGames       []string     `json:"monitoredGames"`
	Stats                MonitorStats `json:"stats"`
}
