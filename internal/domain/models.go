package domain

import "time"

// TeamScore captures one side of a game: who is playing and their points.
type TeamScore struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameStatus describes where a game is in its lifecycle.
type GameStatus struct {
	State         string `json:"state"`
	DetailedState string `json:"detailedState,omitempty"`
	IsFinal       bool   `json:"isFinal"`
}

// GameData is the canonical per-provider reading of one game.
type GameData struct {
	GameID    string     `json:"gameId"`
	Home      TeamScore  `json:"home"`
	Away      TeamScore  `json:"away"`
	Status    GameStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Source    string     `json:"source"`
	Venue     string     `json:"venue,omitempty"`
	Inning    int        `json:"inning,omitempty"`
}

// ScoresEqual reports whether both sides' scores match another reading.
func (g GameData) ScoresEqual(other GameData) bool {
	return g.Home.Score == other.Home.Score && g.Away.Score == other.Away.Score
}

// SourceResponse wraps normalized provider data with fetch metadata.
// Produced fresh per fetch and never mutated.
type SourceResponse struct {
	Data         GameData      `json:"data"`
	FetchedAt    time.Time     `json:"fetchedAt"`
	ResponseTime time.Duration `json:"responseTime"`
	ETag         string        `json:"etag,omitempty"`
	LastModified string        `json:"lastModified,omitempty"`
}

// Team is a catalog entry linking games and promotions.
type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// Promotion is a deal configured to fire on a team's game outcomes.
type Promotion struct {
	ID               string `json:"id"`
	TeamID           string `json:"teamId"`
	Title            string `json:"title"`
	TriggerCondition string `json:"triggerCondition"`
	Active           bool   `json:"active"`
}
