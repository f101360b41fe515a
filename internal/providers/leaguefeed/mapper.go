package leaguefeed

import (
	"fmt"
	"strings"
	"time"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/providers"
)

func mapGame(gameID string, payload feedResponse, fetchedAt time.Time) (domain.GameData, error) {
	if payload.GameData == nil {
		return domain.GameData{}, &providers.DataShapeError{Provider: providerName, Field: "gameData"}
	}
	if payload.GameData.Teams == nil {
		return domain.GameData{}, &providers.DataShapeError{Provider: providerName, Field: "gameData.teams"}
	}

	var inning int
	var homeRuns, awayRuns int
	if payload.LiveData != nil {
		inning = payload.LiveData.Linescore.CurrentInning
		homeRuns = payload.LiveData.Linescore.Teams.Home.Runs
		awayRuns = payload.LiveData.Linescore.Teams.Away.Runs
	}

	status := payload.GameData.Status
	return domain.GameData{
		GameID:    gameID,
		Home:      mapTeam(payload.GameData.Teams.Home, homeRuns),
		Away:      mapTeam(payload.GameData.Teams.Away, awayRuns),
		Status:    mapStatus(status),
		Timestamp: fetchedAt,
		Source:    providerName,
		Venue:     payload.GameData.Venue.Name,
		Inning:    inning,
	}, nil
}

func mapTeam(t teamNode, runs int) domain.TeamScore {
	return domain.TeamScore{
		ID:    fmt.Sprintf("team-%d", t.ID),
		Name:  t.Name,
		Score: runs,
	}
}

func mapStatus(s statusNode) domain.GameStatus {
	var state string
	switch strings.ToLower(s.AbstractGameState) {
	case "final":
		state = "final"
	case "live":
		state = "live"
	default:
		state = "scheduled"
	}
	return domain.GameStatus{
		State:         state,
		DetailedState: s.DetailedState,
		IsFinal:       state == "final",
	}
}
