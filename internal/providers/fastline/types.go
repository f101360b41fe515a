package fastline

const providerName = "fastline"

type eventResponse struct {
	Event *eventNode `json:"event"`
}

type eventNode struct {
	ID           string            `json:"id"`
	Competitions []competitionNode `json:"competitions"`
}

type competitionNode struct {
	Competitors []competitorNode `json:"competitors"`
	Venue       venueNode        `json:"venue"`
	Status      statusNode       `json:"status"`
}

type competitorNode struct {
	HomeAway string   `json:"homeAway"`
	Team     teamNode `json:"team"`
	Score    string   `json:"score"`
}

type teamNode struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type venueNode struct {
	FullName string `json:"fullName"`
}

type statusNode struct {
	Period int            `json:"period"`
	Type   statusTypeNode `json:"type"`
}

type statusTypeNode struct {
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
}
