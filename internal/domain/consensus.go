package domain

// ConsensusStatus classifies how much trust the reconciled state deserves.
type ConsensusStatus string

const (
	ConsensusConfirmed   ConsensusStatus = "CONFIRMED"
	ConsensusProvisional ConsensusStatus = "PROVISIONAL"
	ConsensusNeedsReview ConsensusStatus = "NEEDS_REVIEW"
)

// ConsensusResult is the authoritative reconciled state for one game.
// Immutable once produced; each reconciliation yields a new instance
// referencing its own evidence bundle.
type ConsensusResult struct {
	GameID                 string          `json:"gameId"`
	Status                 ConsensusStatus `json:"status"`
	Confidence             float64         `json:"confidence"`
	Data                   GameData        `json:"data"`
	EvidenceHash           string          `json:"evidenceHash,omitempty"`
	DecisionRationale      string          `json:"decisionRationale"`
	RequiresReconciliation bool            `json:"requiresReconciliation"`
}
