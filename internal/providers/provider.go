package providers

import (
	"context"
	"encoding/json"

	"game-trigger-service/internal/domain"
)

// Conditional carries cache validators from a prior fetch of the same game.
type Conditional struct {
	ETag         string
	LastModified string
}

// Outcome is one provider's answer for one game. NotModified marks the
// distinguished "no new data" result from a conditional request; it is not
// an error and Data is zero in that case.
type Outcome struct {
	Data         domain.GameData
	Raw          json.RawMessage
	NotModified  bool
	ETag         string
	LastModified string
}

// GameProvider defines how one upstream's per-game data is fetched and
// normalized into the canonical GameData shape.
type GameProvider interface {
	Name() string
	FetchGame(ctx context.Context, gameID string, cond Conditional) (Outcome, error)
}
