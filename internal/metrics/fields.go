package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod    = "method"
	AttrPath      = "path"
	AttrStatus    = "status"
	AttrProvider  = "provider"
	AttrConsensus = "consensus_status"
	AttrEventType = "event_type"
	AttrApproved  = "approved"
)
