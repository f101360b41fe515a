package monitor

import "game-trigger-service/internal/domain"

// DetectChanges diffs the previous known state against the current reading
// and returns the state-change events implied, in a fixed order. It is pure:
// identical inputs always yield an identical event set.
//
// The rules are independent predicates evaluated every cycle. A score change
// landing in the same reading that finalizes the game therefore emits two
// events, score_change then game_end, never one merged event.
func DetectChanges(prev *domain.GameData, curr domain.GameData) []domain.GameEvent {
	var events []domain.GameEvent

	emit := func(eventType domain.EventType, triggered bool) {
		events = append(events, domain.GameEvent{
			GameID:           curr.GameID,
			Type:             eventType,
			Previous:         prev,
			Current:          &curr,
			Triggered:        triggered,
			ProcessingStatus: domain.ProcessingPending,
		})
	}

	if prev == nil {
		if !curr.Status.IsFinal {
			emit(domain.EventGameStart, true)
		}
		return events
	}

	if prev.Home.Score != curr.Home.Score || prev.Away.Score != curr.Away.Score {
		emit(domain.EventScoreChange, true)
	}

	if !prev.Status.IsFinal && curr.Status.IsFinal {
		emit(domain.EventGameEnd, true)
	}

	if prev.Status.IsFinal == curr.Status.IsFinal && statusFieldsChanged(prev.Status, curr.Status) {
		// Informational only; never fires a promotion.
		emit(domain.EventStatusChange, false)
	}

	return events
}

func statusFieldsChanged(prev, curr domain.GameStatus) bool {
	return prev.State != curr.State || prev.DetailedState != curr.DetailedState
}
