package ingest

import "time"

// API payload types for the CollegeFootballData endpoints the pipeline
// consumes. Optional fields are pointers so "not reported" survives the
// round trip instead of collapsing to zero.

// APIGame is one row of the /games endpoint.
type APIGame struct {
	ID             int64     `json:"id"`
	Season         int       `json:"season"`
	Week           int       `json:"week"`
	SeasonType     string    `json:"seasonType"`
	StartDate      time.Time `json:"startDate"`
	NeutralSite    bool      `json:"neutralSite"`
	Completed      bool      `json:"completed"`
	HomeID         int64     `json:"homeId"`
	HomeTeam       string    `json:"homeTeam"`
	HomeConference string    `json:"homeConference"`
	HomePoints     *int      `json:"homePoints"`
	AwayID         int64     `json:"awayId"`
	AwayTeam       string    `json:"awayTeam"`
	AwayConference string    `json:"awayConference"`
	AwayPoints     *int      `json:"awayPoints"`
}

// APIGameLines is one row of the /lines endpoint: a game with the lines
// each book offered.
type APIGameLines struct {
	ID       int64     `json:"id"`
	Season   int       `json:"season"`
	Week     int       `json:"week"`
	HomeTeam string    `json:"homeTeam"`
	AwayTeam string    `json:"awayTeam"`
	Lines    []APILine `json:"lines"`
}

// APILine is one book's line for a game.
type APILine struct {
	Provider  string   `json:"provider"`
	Spread    *float64 `json:"spread"`
	OverUnder *float64 `json:"overUnder"`
}

// APIWeather is one row of the /games/weather endpoint.
type APIWeather struct {
	GameID        int64    `json:"id"`
	Temperature   *float64 `json:"temperature"`
	WindSpeed     *float64 `json:"windSpeed"`
	Precipitation *float64 `json:"precipitation"`
	GameIndoors   bool     `json:"gameIndoors"`
}

// APITeam is one row of the /teams/fbs endpoint.
type APITeam struct {
	ID         int64  `json:"id"`
	School     string `json:"school"`
	Conference string `json:"conference"`
}

// APIElo is one row of the /ratings/elo endpoint.
type APIElo struct {
	Year int     `json:"year"`
	Team string  `json:"team"`
	Elo  float64 `json:"elo"`
}

// APISPRating is one row of the /ratings/sp endpoint.
type APISPRating struct {
	Team         string          `json:"team"`
	Rating       float64         `json:"rating"`
	Offense      *APISPSubRating `json:"offense"`
	Defense      *APISPSubRating `json:"defense"`
	SpecialTeams *APISPSubRating `json:"specialTeams"`
}

// APISPSubRating is an SP+ sub-unit rating.
type APISPSubRating struct {
	Rating float64 `json:"rating"`
}

// APIRecord is one row of the /records endpoint.
type APIRecord struct {
	Team  string        `json:"team"`
	Total APIRecordLine `json:"total"`
}

// APIRecordLine is a wins/losses line.
type APIRecordLine struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// APIRankingWeek is one row of the /rankings endpoint.
type APIRankingWeek struct {
	Season int       `json:"season"`
	Week   int       `json:"week"`
	Polls  []APIPoll `json:"polls"`
}

// APIPoll is a single poll within a ranking week.
type APIPoll struct {
	Poll  string        `json:"poll"`
	Ranks []APIPollRank `json:"ranks"`
}

// APIPollRank is one ranked team in a poll.
type APIPollRank struct {
	Rank   int    `json:"rank"`
	School string `json:"school"`
}
