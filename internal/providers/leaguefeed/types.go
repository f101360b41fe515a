package leaguefeed

// feedResponse mirrors the league's live feed payload. Only the fields the
// mapper reads are declared.
type feedResponse struct {
	GamePk   int           `json:"gamePk"`
	GameData *gameDataNode `json:"gameData"`
	LiveData *liveDataNode `json:"liveData"`
}

type gameDataNode struct {
	Status statusNode `json:"status"`
	Teams  *teamsNode `json:"teams"`
	Venue  venueNode  `json:"venue"`
}

type statusNode struct {
	AbstractGameState string `json:"abstractGameState"`
	DetailedState     string `json:"detailedState"`
}

type teamsNode struct {
	Home teamNode `json:"home"`
	Away teamNode `json:"away"`
}

type teamNode struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type venueNode struct {
	Name string `json:"name"`
}

type liveDataNode struct {
	Linescore linescoreNode `json:"linescore"`
}

type linescoreNode struct {
	CurrentInning int          `json:"currentInning"`
	Teams         runTotalNode `json:"teams"`
}

type runTotalNode struct {
	Home sideRunsNode `json:"home"`
	Away sideRunsNode `json:"away"`
}

type sideRunsNode struct {
	Runs int `json:"runs"`
}
