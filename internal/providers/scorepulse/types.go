package scorepulse

const providerName = "scorepulse"

// scoreResponse is the aggregator's flat per-game payload.
type scoreResponse struct {
	GameID    string `json:"game_id"`
	HomeID    string `json:"home_id"`
	HomeName  string `json:"home_name"`
	HomeScore *int   `json:"home_score"`
	AwayID    string `json:"away_id"`
	AwayName  string `json:"away_name"`
	AwayScore *int   `json:"away_score"`
	State     string `json:"state"`
	Detail    string `json:"detail"`
	Final     bool   `json:"final"`
	Inning    int    `json:"inning"`
	Venue     string `json:"venue"`
}
