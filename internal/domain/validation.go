package domain

import "time"

// PromotionValidation is the immutable outcome of one validation call.
// EvidenceChain lists evidence hashes oldest first, forming the decision
// lineage from raw provider data to this result.
type PromotionValidation struct {
	ValidationID         string    `json:"validationId"`
	PromotionID          string    `json:"promotionId"`
	GameID               string    `json:"gameId"`
	TeamID               string    `json:"teamId,omitempty"`
	IsValid              bool      `json:"isValid"`
	Confidence           float64   `json:"confidence"`
	EvidenceChain        []string  `json:"evidenceChain"`
	RequiresManualReview bool      `json:"requiresManualReview"`
	Rationale            string    `json:"rationale"`
	ValidatedAt          time.Time `json:"validatedAt"`
}
