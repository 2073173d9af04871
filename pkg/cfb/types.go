// Package cfb provides the domain types shared by the prediction and
// grading engines: teams, games, rating snapshots, and the derived
// prediction and grading records.
package cfb

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors surfaced by the engines.
var (
	// ErrMissingTeam indicates a structurally invalid game (absent team
	// reference). This is the only fatal input error for prediction.
	ErrMissingTeam = errors.New("game is missing a team reference")

	// ErrNotCompleted indicates an attempt to grade a game that has no
	// final score yet.
	ErrNotCompleted = errors.New("game is not completed")

	// ErrNoLine indicates a pick cannot be graded because the market
	// never posted the corresponding line.
	ErrNoLine = errors.New("no posted line for pick")
)

// CompositeRating is an SP+-style efficiency rating split into its
// offense/defense/special-teams sub-scores. Defensive ratings may be
// stored negated by upstream providers; consumers take the absolute
// value where a magnitude is needed.
type CompositeRating struct {
	Overall      float64 `json:"overall"`
	Offense      float64 `json:"offense"`
	Defense      float64 `json:"defense"`
	SpecialTeams float64 `json:"special_teams"`
}

// RatingContext is a read-only snapshot of a team's quantitative
// attributes at prediction time. The engine never mutates it; absent
// fields degrade to neutral contributions rather than errors.
type RatingContext struct {
	TeamID     int64            `json:"team_id"`
	Conference string           `json:"conference"`
	PollRank   *int             `json:"poll_rank,omitempty"` // AP top 25, nil when unranked
	Elo        float64          `json:"elo"`
	Composite  *CompositeRating `json:"composite,omitempty"`
	Wins       int              `json:"wins"`
	Losses     int              `json:"losses"`
}

// DefaultElo is the rating assigned to teams with no game history.
const DefaultElo = 1500

// Team is the stored team record maintained by the ingestion pipeline.
type Team struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Conference string           `json:"conference"`
	PollRank   *int             `json:"poll_rank,omitempty"`
	Elo        float64          `json:"elo"`
	Composite  *CompositeRating `json:"composite,omitempty"`
	Wins       int              `json:"wins"`
	Losses     int              `json:"losses"`
}

// RatingSnapshot returns the engine-facing view of the team record.
func (t *Team) RatingSnapshot() RatingContext {
	return RatingContext{
		TeamID:     t.ID,
		Conference: t.Conference,
		PollRank:   t.PollRank,
		Elo:        t.Elo,
		Composite:  t.Composite,
		Wins:       t.Wins,
		Losses:     t.Losses,
	}
}

// Weather holds the raw observations for an outdoor venue. All numeric
// fields are optional; a rule whose input is absent simply does not fire.
type Weather struct {
	TemperatureF    *float64 `json:"temperature_f,omitempty"`
	WindMPH         *float64 `json:"wind_mph,omitempty"`
	PrecipitationIn *float64 `json:"precipitation_in,omitempty"`
	IsDome          bool     `json:"is_dome"`
}

// Game is a stored game record. MarketSpread uses the Vegas convention:
// it is the home team's line, so negative values mean the home team is
// favored. Scores are present only once the game is completed.
type Game struct {
	ID          int64     `json:"id"`
	Season      int       `json:"season"`
	Week        int       `json:"week"`
	StartDate   time.Time `json:"start_date"`
	HomeTeamID  int64     `json:"home_team_id"`
	AwayTeamID  int64     `json:"away_team_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	NeutralSite bool      `json:"neutral_site"`

	MarketSpread *float64 `json:"market_spread,omitempty"`
	MarketTotal  *float64 `json:"market_total,omitempty"`
	Weather      *Weather `json:"weather,omitempty"`

	Completed bool `json:"completed"`
	HomeScore *int `json:"home_score,omitempty"`
	AwayScore *int `json:"away_score,omitempty"`
}

// Validate checks the structural invariants required for prediction.
// Missing optional signals (lines, weather, ratings) are not errors.
func (g *Game) Validate() error {
	if g.HomeTeamID == 0 || g.HomeTeam == "" {
		return fmt.Errorf("game %d: home team: %w", g.ID, ErrMissingTeam)
	}
	if g.AwayTeamID == 0 || g.AwayTeam == "" {
		return fmt.Errorf("game %d: away team: %w", g.ID, ErrMissingTeam)
	}
	return nil
}

// FinalMargin returns the home margin of victory (home − away) and
// whether the game has a usable final score.
func (g *Game) FinalMargin() (float64, bool) {
	if !g.Completed || g.HomeScore == nil || g.AwayScore == nil {
		return 0, false
	}
	return float64(*g.HomeScore - *g.AwayScore), true
}

// FinalTotal returns the combined final score and whether it exists.
func (g *Game) FinalTotal() (float64, bool) {
	if !g.Completed || g.HomeScore == nil || g.AwayScore == nil {
		return 0, false
	}
	return float64(*g.HomeScore + *g.AwayScore), true
}

// ConfidenceTier buckets how strongly the model's signals agree.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "High"
	TierMedium ConfidenceTier = "Medium"
	TierLow    ConfidenceTier = "Low"
)

// RiskLevel is the inverse view of the confidence tier.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Side identifies the spread side of a pick.
type Side string

const (
	SideNone Side = ""
	SideHome Side = "Home"
	SideAway Side = "Away"
)

// TotalPick identifies the over/under side of a pick.
type TotalPick string

const (
	TotalNone  TotalPick = ""
	TotalOver  TotalPick = "Over"
	TotalUnder TotalPick = "Under"
)

// SpreadOutcome classifies a completed game against its posted spread.
type SpreadOutcome string

const (
	HomeCovered SpreadOutcome = "HomeCovered"
	AwayCovered SpreadOutcome = "AwayCovered"
	SpreadPush  SpreadOutcome = "Push"
)

// TotalOutcome classifies a completed game against its posted total.
type TotalOutcome string

const (
	Over      TotalOutcome = "Over"
	Under     TotalOutcome = "Under"
	TotalPush TotalOutcome = "Push"
)

// Prediction is the derived output of the prediction engine for one
// game. It is a transient value: a new computation fully replaces any
// previous one.
//
// PredictedSpread is stated as the expected home margin, so positive
// values favor the home side. The margin implied by the market line is
// −MarketSpread; SpreadEdge is the distance between the two.
type Prediction struct {
	GameID   int64  `json:"game_id"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`

	PredictedSpread float64 `json:"predicted_spread"`
	PredictedTotal  float64 `json:"predicted_total"`

	HomeWinProb float64 `json:"home_win_prob"` // percent, 0-100
	AwayWinProb float64 `json:"away_win_prob"`

	// HomeCoverProb is a Normal-CDF diagnostic: the probability the home
	// side covers the posted line given the predicted margin. Zero when
	// no line was posted.
	HomeCoverProb float64 `json:"home_cover_prob,omitempty"`

	ConfidenceTier  ConfidenceTier `json:"confidence_tier"`
	ConfidenceScore float64        `json:"confidence_score"` // 0-100
	RiskLevel       RiskLevel      `json:"risk_level"`

	SpreadEdge float64 `json:"spread_edge"`
	TotalEdge  float64 `json:"total_edge"`

	// PickSide/PickTotal are the machine-readable recommendations;
	// RecommendedBet/RecommendedTotal are the human-readable phrasings
	// ("no strong edge identified" when there is no play).
	PickSide         Side      `json:"pick_side,omitempty"`
	PickTotal        TotalPick `json:"pick_total,omitempty"`
	RecommendedBet   string    `json:"recommended_bet"`
	RecommendedTotal string    `json:"recommended_total"`

	// FactorBreakdown records each named contribution in points. Factors
	// whose inputs were unavailable appear with a zero value so callers
	// can tell "no edge found" from "no data available"; Notes carries
	// the matching commentary.
	FactorBreakdown map[string]float64 `json:"factor_breakdown"`
	Notes           []string           `json:"notes,omitempty"`
}

// GradingResult classifies a completed game against the lines that were
// offered and settles the picked sides in units. It never references a
// prediction: outcomes depend only on the final score and the lines.
type GradingResult struct {
	GameID int64 `json:"game_id"`

	SpreadOutcome SpreadOutcome `json:"spread_outcome,omitempty"`
	TotalOutcome  TotalOutcome  `json:"total_outcome,omitempty"`

	ActualMargin float64 `json:"actual_margin"`
	ActualTotal  float64 `json:"actual_total"`

	PickedSide  Side      `json:"picked_side,omitempty"`
	PickedTotal TotalPick `json:"picked_total,omitempty"`

	// Unit accounting at standard vig: a win pays +1.0, a loss costs
	// −1.1, a push returns the stake. Units is the sum over the picks
	// that were actually placed.
	SpreadUnits decimal.Decimal `json:"spread_units"`
	TotalUnits  decimal.Decimal `json:"total_units"`
	Units       decimal.Decimal `json:"units"`
}
