package store

import (
	"sync"

	"game-trigger-service/internal/domain"
)

// Memory keeps a thread-safe catalog of teams, promotions, game-team
// linkage, and per-game last-known state in memory. Persistent domain
// storage lives behind an external collaborator; this store is the process
// cache in front of it.
type Memory struct {
	mu           sync.RWMutex
	teams        map[string]domain.Team
	promotions   map[string]domain.Promotion
	promosByTeam map[string][]string
	gameTeams    map[string]string
	gameStates   map[string]domain.GameData
}

// NewMemory constructs an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		teams:        make(map[string]domain.Team),
		promotions:   make(map[string]domain.Promotion),
		promosByTeam: make(map[string][]string),
		gameTeams:    make(map[string]string),
		gameStates:   make(map[string]domain.GameData),
	}
}

// GetTeam retrieves a team by ID.
func (s *Memory) GetTeam(id string) (domain.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	return t, ok
}

// UpsertTeam stores or replaces a team.
func (s *Memory) UpsertTeam(team domain.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = team
}

// GetPromotion retrieves a promotion by ID.
func (s *Memory) GetPromotion(id string) (domain.Promotion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.promotions[id]
	return p, ok
}

// UpsertPromotion stores or replaces a promotion and indexes it by team.
func (s *Memory) UpsertPromotion(promo domain.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.promotions[promo.ID]; !exists {
		s.promosByTeam[promo.TeamID] = append(s.promosByTeam[promo.TeamID], promo.ID)
	}
	s.promotions[promo.ID] = promo
}

// PromotionsForTeam returns the active promotions configured for a team.
func (s *Memory) PromotionsForTeam(teamID string) []domain.Promotion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.promosByTeam[teamID]
	result := make([]domain.Promotion, 0, len(ids))
	for _, id := range ids {
		if promo, ok := s.promotions[id]; ok && promo.Active {
			result = append(result, promo)
		}
	}
	return result
}

// LinkGame associates a game with the team whose promotions it can trigger.
func (s *Memory) LinkGame(gameID, teamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameTeams[gameID] = teamID
}

// TeamForGame resolves the team linked to a game.
func (s *Memory) TeamForGame(gameID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teamID, ok := s.gameTeams[gameID]
	return teamID, ok
}

// GameState returns the last known state recorded for a game.
func (s *Memory) GameState(gameID string) (domain.GameData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.gameStates[gameID]
	return state, ok
}

// SetGameState records the last known state for a game.
func (s *Memory) SetGameState(gameID string, state domain.GameData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameStates[gameID] = state
}
