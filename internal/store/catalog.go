package store

import (
	"encoding/json"
	"fmt"
	"os"

	"game-trigger-service/internal/domain"
)

// Catalog is the on-disk seed shape for teams, promotions, and game linkage.
type Catalog struct {
	Teams      []domain.Team      `json:"teams"`
	Promotions []domain.Promotion `json:"promotions"`
	Games      []GameLink         `json:"games"`
}

// GameLink associates a monitored game with a team.
type GameLink struct {
	GameID string `json:"gameId"`
	TeamID string `json:"teamId"`
}

// LoadCatalog reads a catalog file into the store.
func (s *Memory) LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var catalog Catalog
	if err := json.NewDecoder(f).Decode(&catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	for _, team := range catalog.Teams {
		s.UpsertTeam(team)
	}
	for _, promo := range catalog.Promotions {
		s.UpsertPromotion(promo)
	}
	for _, link := range catalog.Games {
		s.LinkGame(link.GameID, link.TeamID)
	}
	return catalog, nil
}
