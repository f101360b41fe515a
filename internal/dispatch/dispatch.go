// Package dispatch hands approved promotion triggers to the notification
// layer. Delivery mechanics live behind the Dispatcher interface so the
// validation path stays transport-agnostic.
package dispatch

import (
	"context"
	"log/slog"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/logging"
)

// Dispatcher consumes one approved validation. Implementations must be
// idempotent with respect to the validation's ValidationID: at-least-once
// delivery means the same trigger can arrive more than once.
type Dispatcher interface {
	Dispatch(ctx context.Context, validation domain.PromotionValidation, event domain.GameEvent) error
}

// LogDispatcher records approved triggers in the structured log. It stands
// in for a real notification backend.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(_ context.Context, validation domain.PromotionValidation, event domain.GameEvent) error {
	logging.Info(d.logger, "promotion trigger dispatched",
		slog.String("validation_id", validation.ValidationID),
		slog.String(logging.FieldPromotion, validation.PromotionID),
		slog.String(logging.FieldGameID, validation.GameID),
		slog.String(logging.FieldEventID, event.EventID),
		slog.String(logging.FieldEventType, string(event.Type)),
		slog.Float64("confidence", validation.Confidence),
	)
	return nil
}
