package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/fetch"
	"game-trigger-service/internal/logging"
	"game-trigger-service/internal/metrics"
)

// ErrNoSources reports that zero providers answered. Callers must treat it
// as "no data yet", never as a reviewable consensus.
var ErrNoSources = errors.New("no sources answered")

// Confidence scoring constants. The reconciliation guarantees (thresholds,
// disagreement cap) are load-bearing; the exact values inside each band are
// tuning.
const (
	singleSourcePrior  = 0.55
	agreementBase      = 0.90
	agreementPerSource = 0.02
	agreementMax       = 0.99
	// Disagreement must never average into an approvable score: both caps
	// sit strictly below the 0.8 approval threshold.
	disagreementMajorityCap = 0.60
	disagreementSplitCap    = 0.40
)

// GameFetcher is the multi-source fetch dependency.
type GameFetcher interface {
	GetGameData(ctx context.Context, gameID string, opts fetch.Options) fetch.Result
}

// Engine reconciles multi-source fetch results into one authoritative
// consensus state with a confidence score and audit rationale.
type Engine struct {
	fetcher GameFetcher
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// New constructs an Engine over the given fetcher.
func New(fetcher GameFetcher, logger *slog.Logger, recorder *metrics.Recorder) *Engine {
	return &Engine{
		fetcher: fetcher,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
	}
}

// ForGame fetches and reconciles the current state of one game. Returns
// ErrNoSources when no provider answered.
func (e *Engine) ForGame(ctx context.Context, gameID string) (*domain.ConsensusResult, error) {
	start := e.now()
	res := e.fetcher.GetGameData(ctx, gameID, fetch.Options{UseConditionalRequest: true})
	if !res.Success {
		if res.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoSources, res.Err)
		}
		return nil, ErrNoSources
	}

	result := Reconcile(gameID, res.Sources)
	result.EvidenceHash = res.EvidenceHash

	e.metrics.RecordConsensus(string(result.Status), result.Confidence, e.now().Sub(start))
	logging.Info(e.logger, "consensus computed",
		slog.String(logging.FieldGameID, gameID),
		slog.String(logging.FieldConsensus, string(result.Status)),
		slog.Float64("confidence", result.Confidence),
		slog.String(logging.FieldEvidence, result.EvidenceHash),
	)
	return &result, nil
}

// ForPromotion reconciles the game state on behalf of one promotion,
// tagging the audit rationale with the promotion for traceability.
func (e *Engine) ForPromotion(ctx context.Context, promotionID, gameID string) (*domain.ConsensusResult, error) {
	result, err := e.ForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	tagged := *result
	tagged.DecisionRationale = fmt.Sprintf("promotion %s: %s", promotionID, result.DecisionRationale)
	return &tagged, nil
}

// Reconcile applies the consensus policy to a non-empty set of source
// responses. It is pure: identical inputs yield identical results.
func Reconcile(gameID string, sources []domain.SourceResponse) domain.ConsensusResult {
	names := sourceNames(sources)

	if len(sources) == 1 {
		only := sources[0]
		return domain.ConsensusResult{
			GameID:     gameID,
			Status:     domain.ConsensusProvisional,
			Confidence: singleSourcePrior,
			Data:       only.Data,
			DecisionRationale: fmt.Sprintf(
				"single source %s reports %s; insufficient corroboration for confirmation",
				only.Data.Source, describeReading(only.Data)),
		}
	}

	groups := groupByReading(sources)
	if len(groups) == 1 {
		confidence := agreementBase + agreementPerSource*float64(len(sources))
		if confidence > agreementMax {
			confidence = agreementMax
		}
		chosen := sources[0].Data
		return domain.ConsensusResult{
			GameID:     gameID,
			Status:     domain.ConsensusConfirmed,
			Confidence: confidence,
			Data:       chosen,
			DecisionRationale: fmt.Sprintf(
				"%d sources (%s) agree on %s",
				len(sources), strings.Join(names, ", "), describeReading(chosen)),
		}
	}

	// Disagreement on score or finality: surface for review, pick the
	// majority reading (configured priority breaks ties), and keep the
	// confidence unapprovable no matter how the sources split.
	majority := largestGroup(groups)
	confidence := disagreementSplitCap
	if len(majority) > len(sources)-len(majority) {
		confidence = disagreementMajorityCap
	}
	chosen := majority[0].Data

	var views []string
	for _, group := range groups {
		groupNames := sourceNames(group)
		views = append(views, fmt.Sprintf("%s report %s", strings.Join(groupNames, "+"), describeReading(group[0].Data)))
	}
	sort.Strings(views)

	return domain.ConsensusResult{
		GameID:                 gameID,
		Status:                 domain.ConsensusNeedsReview,
		Confidence:             confidence,
		Data:                   chosen,
		RequiresReconciliation: true,
		DecisionRationale: fmt.Sprintf(
			"sources disagree: %s; selected reading from %d of %d sources pending reconciliation",
			strings.Join(views, "; "), len(majority), len(sources)),
	}
}

type readingKey struct {
	home, away int
	isFinal    bool
}

func groupByReading(sources []domain.SourceResponse) [][]domain.SourceResponse {
	order := make([]readingKey, 0, len(sources))
	byKey := make(map[readingKey][]domain.SourceResponse)
	for _, src := range sources {
		key := readingKey{
			home:    src.Data.Home.Score,
			away:    src.Data.Away.Score,
			isFinal: src.Data.Status.IsFinal,
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], src)
	}

	groups := make([][]domain.SourceResponse, 0, len(order))
	for _, key := range order {
		groups = append(groups, byKey[key])
	}
	return groups
}

func largestGroup(groups [][]domain.SourceResponse) []domain.SourceResponse {
	best := groups[0]
	for _, group := range groups[1:] {
		if len(group) > len(best) {
			best = group
		}
	}
	return best
}

func sourceNames(sources []domain.SourceResponse) []string {
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Data.Source)
	}
	return names
}

func describeReading(data domain.GameData) string {
	finality := "in progress"
	if data.Status.IsFinal {
		finality = "final"
	}
	return fmt.Sprintf("%s %d, %s %d (%s)",
		data.Home.Name, data.Home.Score, data.Away.Name, data.Away.Score, finality)
}
