package consensus

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/fetch"
	"game-trigger-service/internal/metrics"
)

func reading(source string, home, away int, final bool) domain.SourceResponse {
	return domain.SourceResponse{
		Data: domain.GameData{
			GameID: "g1",
			Home:   domain.TeamScore{ID: "team-h", Name: "Home", Score: home},
			Away:   domain.TeamScore{ID: "team-a", Name: "Away", Score: away},
			Status: domain.GameStatus{State: "live", IsFinal: final},
			Source: source,
		},
	}
}

func TestReconcileSingleSourceIsProvisional(t *testing.T) {
	result := Reconcile("g1", []domain.SourceResponse{reading("leaguefeed", 2, 1, false)})

	if result.Status != domain.ConsensusProvisional {
		t.Fatalf("expected PROVISIONAL, got %s", result.Status)
	}
	if result.Confidence >= 1.0 {
		t.Fatalf("single-source confidence must stay below 1.0, got %f", result.Confidence)
	}
	if result.DecisionRationale == "" {
		t.Fatal("rationale is mandatory")
	}
	if result.RequiresReconciliation {
		t.Fatal("single source needs no reconciliation")
	}
}

func TestReconcileAgreementIsConfirmed(t *testing.T) {
	tests := []struct {
		name    string
		sources []domain.SourceResponse
	}{
		{"two sources", []domain.SourceResponse{
			reading("leaguefeed", 5, 3, true),
			reading("fastline", 5, 3, true),
		}},
		{"three sources", []domain.SourceResponse{
			reading("leaguefeed", 5, 3, true),
			reading("fastline", 5, 3, true),
			reading("scorepulse", 5, 3, true),
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Reconcile("g1", tc.sources)
			if result.Status != domain.ConsensusConfirmed {
				t.Fatalf("expected CONFIRMED, got %s", result.Status)
			}
			if result.Confidence < 0.9 || result.Confidence > 0.99 {
				t.Fatalf("agreement confidence out of band: %f", result.Confidence)
			}
			if result.Data.Home.Score != 5 {
				t.Fatalf("unexpected chosen reading %+v", result.Data)
			}
		})
	}
}

func TestReconcileMoreSourcesMoreConfidence(t *testing.T) {
	two := Reconcile("g1", []domain.SourceResponse{
		reading("leaguefeed", 5, 3, true),
		reading("fastline", 5, 3, true),
	})
	three := Reconcile("g1", []domain.SourceResponse{
		reading("leaguefeed", 5, 3, true),
		reading("fastline", 5, 3, true),
		reading("scorepulse", 5, 3, true),
	})
	if three.Confidence <= two.Confidence {
		t.Fatalf("expected corroboration to raise confidence: %f vs %f", two.Confidence, three.Confidence)
	}
}

func TestReconcileScoreDisagreementNeedsReview(t *testing.T) {
	result := Reconcile("g1", []domain.SourceResponse{
		reading("leaguefeed", 5, 3, true),
		reading("fastline", 4, 3, true),
	})

	if result.Status != domain.ConsensusNeedsReview {
		t.Fatalf("expected NEEDS_REVIEW on score disagreement, got %s", result.Status)
	}
	if !result.RequiresReconciliation {
		t.Fatal("disagreement must require reconciliation")
	}
	if result.Confidence >= 0.8 {
		t.Fatalf("disagreement confidence must be unapprovable, got %f", result.Confidence)
	}
	if result.DecisionRationale == "" {
		t.Fatal("rationale is mandatory")
	}
}

func TestReconcileFinalityDisagreementNeedsReview(t *testing.T) {
	result := Reconcile("g1", []domain.SourceResponse{
		reading("leaguefeed", 5, 3, true),
		reading("fastline", 5, 3, false),
	})
	if result.Status != domain.ConsensusNeedsReview {
		t.Fatalf("expected NEEDS_REVIEW on finality disagreement, got %s", result.Status)
	}
}

func TestReconcileMajorityOutranksMinority(t *testing.T) {
	result := Reconcile("g1", []domain.SourceResponse{
		reading("leaguefeed", 5, 3, true),
		reading("fastline", 5, 3, true),
		reading("scorepulse", 4, 3, true),
	})

	if result.Status != domain.ConsensusNeedsReview {
		t.Fatalf("expected NEEDS_REVIEW, got %s", result.Status)
	}
	if result.Data.Home.Score != 5 {
		t.Fatalf("expected majority reading selected, got %+v", result.Data)
	}
	// 2-of-3 majority earns more confidence than an even split, but never
	// enough to approve.
	split := Reconcile("g1", []domain.SourceResponse{
		reading("leaguefeed", 5, 3, true),
		reading("fastline", 4, 3, true),
	})
	if result.Confidence <= split.Confidence {
		t.Fatalf("majority should outrank split: %f vs %f", result.Confidence, split.Confidence)
	}
	if result.Confidence >= 0.8 {
		t.Fatalf("majority confidence still unapprovable, got %f", result.Confidence)
	}
}

func TestReconcileTieBreaksByPriorityOrder(t *testing.T) {
	result := Reconcile("g1", []domain.SourceResponse{
		reading("leaguefeed", 5, 3, true),
		reading("scorepulse", 4, 3, true),
	})
	if result.Data.Source != "leaguefeed" {
		t.Fatalf("ties must fall to the first-priority source, got %s", result.Data.Source)
	}
}

func TestReconcileIsDeterministic(t *testing.T) {
	sources := []domain.SourceResponse{
		reading("leaguefeed", 5, 3, true),
		reading("fastline", 4, 3, true),
		reading("scorepulse", 4, 3, false),
	}
	first := Reconcile("g1", sources)
	for i := 0; i < 10; i++ {
		if got := Reconcile("g1", sources); !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d differed:\n%+v\n%+v", i, first, got)
		}
	}
}

type stubFetcher struct {
	result fetch.Result
}

func (s *stubFetcher) GetGameData(context.Context, string, fetch.Options) fetch.Result {
	return s.result
}

func TestForGameNoSources(t *testing.T) {
	engine := New(&stubFetcher{result: fetch.Result{Err: errors.New("all providers down")}}, nil, metrics.NewRecorder())

	_, err := engine.ForGame(context.Background(), "g1")
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}

func TestForGameCarriesEvidenceHash(t *testing.T) {
	sources := []domain.SourceResponse{
		reading("leaguefeed", 1, 0, false),
		reading("fastline", 1, 0, false),
	}
	engine := New(&stubFetcher{result: fetch.Result{
		Success:      true,
		Data:         &sources[0].Data,
		Sources:      sources,
		EvidenceHash: "abc123",
	}}, nil, metrics.NewRecorder())

	result, err := engine.ForGame(context.Background(), "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EvidenceHash != "abc123" {
		t.Fatalf("expected the fetch bundle hash carried through, got %q", result.EvidenceHash)
	}
	if result.Status != domain.ConsensusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", result.Status)
	}
}

func TestForPromotionTagsRationale(t *testing.T) {
	sources := []domain.SourceResponse{reading("leaguefeed", 1, 0, false)}
	engine := New(&stubFetcher{result: fetch.Result{
		Success: true,
		Data:    &sources[0].Data,
		Sources: sources,
	}}, nil, metrics.NewRecorder())

	plain, err := engine.ForGame(context.Background(), "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tagged, err := engine.ForPromotion(context.Background(), "promo-1", "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tagged.DecisionRationale == plain.DecisionRationale {
		t.Fatal("expected promotion-tagged rationale to differ")
	}
	if tagged.Status != plain.Status || tagged.Confidence != plain.Confidence {
		t.Fatal("tagging must not change the decision")
	}
}
