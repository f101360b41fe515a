package scorepulse

import (
	"strings"
	"time"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/providers"
)

func mapScore(gameID string, payload scoreResponse, fetchedAt time.Time) (domain.GameData, error) {
	// The aggregator omits scores entirely for games it has not picked up yet.
	if payload.HomeScore == nil || payload.AwayScore == nil {
		return domain.GameData{}, &providers.DataShapeError{Provider: providerName, Field: "home_score/away_score"}
	}
	if payload.HomeName == "" || payload.AwayName == "" {
		return domain.GameData{}, &providers.DataShapeError{Provider: providerName, Field: "home_name/away_name"}
	}

	return domain.GameData{
		GameID: gameID,
		Home: domain.TeamScore{
			ID:    "team-" + payload.HomeID,
			Name:  payload.HomeName,
			Score: clampScore(*payload.HomeScore),
		},
		Away: domain.TeamScore{
			ID:    "team-" + payload.AwayID,
			Name:  payload.AwayName,
			Score: clampScore(*payload.AwayScore),
		},
		Status:    mapState(payload),
		Timestamp: fetchedAt,
		Source:    providerName,
		Venue:     payload.Venue,
		Inning:    payload.Inning,
	}, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	return score
}

func mapState(payload scoreResponse) domain.GameStatus {
	state := strings.ToLower(strings.TrimSpace(payload.State))
	switch state {
	case "live", "final", "scheduled":
	case "ended", "complete":
		state = "final"
	case "in_progress":
		state = "live"
	default:
		state = "scheduled"
	}
	if payload.Final {
		state = "final"
	}
	return domain.GameStatus{
		State:         state,
		DetailedState: payload.Detail,
		IsFinal:       state == "final",
	}
}
