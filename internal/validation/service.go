// Package validation decides whether a promotion may fire for a game,
// anchored on consensus state and a two-link evidence chain.
package validation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/evidence"
	"game-trigger-service/internal/logging"
	"game-trigger-service/internal/metrics"
)

// approvalThreshold is the minimum confidence at which a PROVISIONAL
// consensus may auto-approve. Fixed so audit rationale stays comparable
// across decisions.
const approvalThreshold = 0.8

// ConsensusProvider supplies the reconciled state a validation is based on.
type ConsensusProvider interface {
	ForPromotion(ctx context.Context, promotionID, gameID string) (*domain.ConsensusResult, error)
}

// Catalog resolves promotion configuration and game-to-team links.
type Catalog interface {
	GetPromotion(id string) (domain.Promotion, bool)
	PromotionsForTeam(teamID string) []domain.Promotion
	TeamForGame(gameID string) (string, bool)
}

// Service validates promotion triggers against consensus game state.
type Service struct {
	consensus ConsensusProvider
	catalog   Catalog
	evidence  evidence.Store
	logger    *slog.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
	newID     func() string
}

func New(consensus ConsensusProvider, catalog Catalog, store evidence.Store, logger *slog.Logger, recorder *metrics.Recorder) *Service {
	return &Service{
		consensus: consensus,
		catalog:   catalog,
		evidence:  store,
		logger:    logger,
		metrics:   recorder,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// IdempotencyKey derives the deterministic key for one (promotion, game)
// pair. Callers dedup repeated triggers on it; the service itself does not.
func IdempotencyKey(promotionID, gameID string) string {
	sum := sha256.Sum256([]byte(promotionID + "|" + gameID))
	return hex.EncodeToString(sum[:])
}

// ValidatePromotionTrigger validates one promotion against the current
// consensus state of a game. It always returns a concrete result: every
// failure path yields a terminal result flagged for manual review, with a
// persisted failure-evidence record.
func (s *Service) ValidatePromotionTrigger(ctx context.Context, promotionID, gameID, triggerCondition string) domain.PromotionValidation {
	start := s.now()
	result := domain.PromotionValidation{
		ValidationID: IdempotencyKey(promotionID, gameID),
		PromotionID:  promotionID,
		GameID:       gameID,
		ValidatedAt:  start.UTC(),
	}

	promo, ok := s.catalog.GetPromotion(promotionID)
	if !ok {
		return s.fail(ctx, result, fmt.Errorf("promotion %s not found", promotionID))
	}
	result.TeamID = promo.TeamID
	if !promo.Active {
		return s.fail(ctx, result, fmt.Errorf("promotion %s is inactive", promotionID))
	}

	consensusResult, err := s.consensus.ForPromotion(ctx, promotionID, gameID)
	if err != nil {
		return s.fail(ctx, result, fmt.Errorf("consensus unavailable: %w", err))
	}

	approved, rationale := applyPolicy(consensusResult)
	if approved && triggerCondition != "" {
		var met bool
		met, rationale = conditionMet(triggerCondition, promo.TeamID, consensusResult.Data)
		approved = met
	}

	result.IsValid = approved
	result.Confidence = consensusResult.Confidence
	result.RequiresManualReview = consensusResult.Status == domain.ConsensusNeedsReview
	result.Rationale = rationale

	chain, err := s.persistDecision(ctx, consensusResult.EvidenceHash, result)
	if err != nil {
		return s.fail(ctx, result, fmt.Errorf("evidence store unavailable: %w", err))
	}
	result.EvidenceChain = chain

	s.metrics.RecordValidation(result.IsValid, s.now().Sub(start))
	logging.Info(s.logger, "promotion validated",
		slog.String(logging.FieldPromotion, promotionID),
		slog.String(logging.FieldGameID, gameID),
		slog.Bool("approved", result.IsValid),
		slog.String(logging.FieldConsensus, string(consensusResult.Status)),
		slog.Float64("confidence", result.Confidence),
	)
	return result
}

// ValidatePromotionsForGame resolves the game's team and validates every
// promotion configured for it concurrently. One promotion's failure never
// removes the others' results.
func (s *Service) ValidatePromotionsForGame(ctx context.Context, gameID string) []domain.PromotionValidation {
	teamID, ok := s.catalog.TeamForGame(gameID)
	if !ok {
		logging.Warn(s.logger, "no team configured for game",
			slog.String(logging.FieldGameID, gameID))
		return nil
	}

	promos := s.catalog.PromotionsForTeam(teamID)
	if len(promos) == 0 {
		return nil
	}

	results := make([]domain.PromotionValidation, len(promos))
	var wg sync.WaitGroup
	for i, promo := range promos {
		wg.Add(1)
		go func(i int, promo domain.Promotion) {
			defer wg.Done()
			results[i] = s.ValidatePromotionTrigger(ctx, promo.ID, gameID, promo.TriggerCondition)
		}(i, promo)
	}
	wg.Wait()
	return results
}

// applyPolicy maps a consensus outcome to an approval decision.
func applyPolicy(result *domain.ConsensusResult) (bool, string) {
	switch result.Status {
	case domain.ConsensusConfirmed:
		return true, fmt.Sprintf("confirmed by consensus (confidence %.2f): %s",
			result.Confidence, result.DecisionRationale)
	case domain.ConsensusProvisional:
		if result.Confidence >= approvalThreshold {
			return true, fmt.Sprintf("provisional consensus above threshold %.2f (confidence %.2f): %s",
				approvalThreshold, result.Confidence, result.DecisionRationale)
		}
		return false, fmt.Sprintf("provisional consensus below threshold %.2f (confidence %.2f): %s",
			approvalThreshold, result.Confidence, result.DecisionRationale)
	case domain.ConsensusNeedsReview:
		return false, fmt.Sprintf("sources disagree, manual review required: %s",
			result.DecisionRationale)
	default:
		return false, fmt.Sprintf("unknown consensus status %q", result.Status)
	}
}

// conditionMet evaluates the promotion's trigger condition against the
// consensus game state.
func conditionMet(condition, teamID string, game domain.GameData) (bool, string) {
	switch condition {
	case "game_end":
		if game.Status.IsFinal {
			return true, "game is final"
		}
		return false, "game is not final yet"
	case "team_win":
		if !game.Status.IsFinal {
			return false, "game is not final yet"
		}
		winner := game.Home
		if game.Away.Score > game.Home.Score {
			winner = game.Away
		}
		if game.Home.Score == game.Away.Score {
			return false, "game ended tied"
		}
		if winner.ID == teamID {
			return true, fmt.Sprintf("team %s won %d-%d", teamID, winner.Score, loserScore(game))
		}
		return false, fmt.Sprintf("team %s did not win", teamID)
	case "team_scores":
		if teamScore(game, teamID) > 0 {
			return true, fmt.Sprintf("team %s has scored", teamID)
		}
		return false, fmt.Sprintf("team %s has not scored", teamID)
	default:
		return false, fmt.Sprintf("unknown trigger condition %q", condition)
	}
}

func teamScore(game domain.GameData, teamID string) int {
	if game.Home.ID == teamID {
		return game.Home.Score
	}
	if game.Away.ID == teamID {
		return game.Away.Score
	}
	return 0
}

func loserScore(game domain.GameData) int {
	if game.Home.Score < game.Away.Score {
		return game.Home.Score
	}
	return game.Away.Score
}

// persistDecision writes the validation-evidence record, linking it to the
// consensus evidence to form the two-link audit chain.
func (s *Service) persistDecision(ctx context.Context, consensusHash string, result domain.PromotionValidation) ([]string, error) {
	if s.evidence == nil {
		return nil, fmt.Errorf("no evidence store configured")
	}
	hash, err := s.evidence.PutImmutable(ctx, evidence.NewValidationRecord(consensusHash, result))
	if err != nil {
		return nil, err
	}
	chain := make([]string, 0, 2)
	if consensusHash != "" {
		chain = append(chain, consensusHash)
	}
	return append(chain, hash), nil
}

// fail finalizes a validation on an internal error: terminal result, zero
// confidence, manual review, failure evidence. No failure path is silent.
func (s *Service) fail(ctx context.Context, result domain.PromotionValidation, cause error) domain.PromotionValidation {
	result.IsValid = false
	result.Confidence = 0
	result.RequiresManualReview = true
	result.Rationale = fmt.Sprintf("validation failed: %v", cause)

	if s.evidence != nil {
		hash, err := s.evidence.PutImmutable(ctx, evidence.NewValidationRecord("", result))
		if err != nil {
			logging.Error(s.logger, "failure evidence persist failed", err,
				slog.String(logging.FieldPromotion, result.PromotionID))
		} else {
			result.EvidenceChain = []string{hash}
		}
	}

	s.metrics.RecordValidation(false, 0)
	logging.Warn(s.logger, "promotion validation failed",
		slog.String(logging.FieldPromotion, result.PromotionID),
		slog.String(logging.FieldGameID, result.GameID),
		"error", cause,
	)
	return result
}
