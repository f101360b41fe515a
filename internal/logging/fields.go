package logging

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldProvider   = "provider"
	FieldGameID     = "game_id"
	FieldPromotion  = "promotion_id"
	FieldEventID    = "event_id"
	FieldEventType  = "event_type"
	FieldRequestID  = "request_id"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldEvidence   = "evidence_hash"
	FieldConsensus  = "consensus_status"
)
