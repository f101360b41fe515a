package fastline

import (
	"strconv"
	"strings"
	"time"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/providers"
)

func mapEvent(gameID string, payload eventResponse, fetchedAt time.Time) (domain.GameData, error) {
	if payload.Event == nil {
		return domain.GameData{}, &providers.DataShapeError{Provider: providerName, Field: "event"}
	}
	if len(payload.Event.Competitions) == 0 {
		return domain.GameData{}, &providers.DataShapeError{Provider: providerName, Field: "event.competitions"}
	}

	comp := payload.Event.Competitions[0]
	home, homeOK := findCompetitor(comp.Competitors, "home")
	away, awayOK := findCompetitor(comp.Competitors, "away")
	if !homeOK || !awayOK {
		return domain.GameData{}, &providers.DataShapeError{Provider: providerName, Field: "event.competitions[0].competitors"}
	}

	return domain.GameData{
		GameID:    gameID,
		Home:      mapCompetitor(home),
		Away:      mapCompetitor(away),
		Status:    mapStatus(comp.Status),
		Timestamp: fetchedAt,
		Source:    providerName,
		Venue:     comp.Venue.FullName,
		Inning:    comp.Status.Period,
	}, nil
}

func findCompetitor(competitors []competitorNode, side string) (competitorNode, bool) {
	for _, c := range competitors {
		if strings.EqualFold(c.HomeAway, side) {
			return c, true
		}
	}
	return competitorNode{}, false
}

func mapCompetitor(c competitorNode) domain.TeamScore {
	score, _ := strconv.Atoi(c.Score)
	if score < 0 {
		score = 0
	}
	return domain.TeamScore{
		ID:    "team-" + c.Team.ID,
		Name:  c.Team.DisplayName,
		Score: score,
	}
}

func mapStatus(s statusNode) domain.GameStatus {
	var state string
	switch {
	case s.Type.Completed:
		state = "final"
	case strings.EqualFold(s.Type.State, "in"):
		state = "live"
	default:
		state = "scheduled"
	}
	return domain.GameStatus{
		State:         state,
		DetailedState: s.Type.Description,
		IsFinal:       s.Type.Completed,
	}
}
