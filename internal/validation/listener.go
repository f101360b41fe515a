package validation

import (
	"context"
	"log/slog"

	"game-trigger-service/internal/dispatch"
	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/logging"
)

// TriggerListener bridges monitor events to promotion validation. On every
// triggered event it validates all promotions for the game and hands the
// approved ones to the dispatcher.
type TriggerListener struct {
	service    *Service
	dispatcher dispatch.Dispatcher
	logger     *slog.Logger
}

func NewTriggerListener(service *Service, dispatcher dispatch.Dispatcher, logger *slog.Logger) *TriggerListener {
	return &TriggerListener{
		service:    service,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// OnGameEvent validates and dispatches for triggered events. Informational
// events (status_change) pass through untouched.
func (l *TriggerListener) OnGameEvent(ctx context.Context, event domain.GameEvent) error {
	if !event.Triggered {
		return nil
	}

	for _, validation := range l.service.ValidatePromotionsForGame(ctx, event.GameID) {
		if !validation.IsValid {
			continue
		}
		if l.dispatcher == nil {
			continue
		}
		if err := l.dispatcher.Dispatch(ctx, validation, event); err != nil {
			logging.Error(l.logger, "trigger dispatch failed", err,
				slog.String(logging.FieldPromotion, validation.PromotionID),
				slog.String(logging.FieldEventID, event.EventID),
			)
		}
	}
	return nil
}
