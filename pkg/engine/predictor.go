package engine

import (
	"fmt"
	"math"

	"github.com/atgjack/prob"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// Win probability curve. A predicted spread of exactly zero is not a
// true pick'em: the home side keeps a small fixed edge.
const (
	winProbBase    = 50.0
	winProbSlope   = 3.5
	winProbCap     = 90.0
	pickemHomeProb = 52.0
	pickemAwayProb = 48.0
)

// Factor breakdown keys.
const (
	FactorRating       = "rating"
	FactorMatchup      = "offenseDefense"
	FactorSpecialTeams = "specialTeams"
	FactorConference   = "conference"
	FactorWeather      = "weather"
	FactorNeutralSite  = "neutralSite"
)

// Predictor combines the market line, rating contexts, and weather into
// a predicted spread/total with a per-factor breakdown. It is a pure
// function of its inputs: no randomness, no wall clock.
type Predictor struct {
	cfg        *Config
	adjuster   *LineAdjuster
	classifier *Classifier
	coverDist  prob.Normal
}

// NewPredictor creates a predictor. A nil config uses defaults.
func NewPredictor(cfg *Config) *Predictor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Predictor{
		cfg:        cfg,
		adjuster:   NewLineAdjuster(cfg),
		classifier: NewClassifier(cfg),
		coverDist:  prob.Normal{Mu: 0, Sigma: cfg.MarginSigma},
	}
}

// Predict produces the prediction record for one game. Missing optional
// signals (lines, weather, ratings) degrade to neutral contributions;
// the only error is a structurally invalid game.
func (p *Predictor) Predict(game *cfb.Game, home, away *cfb.RatingContext) (*cfb.Prediction, error) {
	if err := game.Validate(); err != nil {
		return nil, err
	}

	pred := &cfb.Prediction{
		GameID:   game.ID,
		HomeTeam: game.HomeTeam,
		AwayTeam: game.AwayTeam,
		FactorBreakdown: map[string]float64{
			FactorRating:       0,
			FactorMatchup:      0,
			FactorSpecialTeams: 0,
			FactorConference:   0,
			FactorWeather:      0,
			FactorNeutralSite:  0,
		},
	}

	// Market line, restated as the home margin it implies.
	impliedMargin := 0.0
	if game.MarketSpread != nil {
		impliedMargin = -*game.MarketSpread
	} else {
		pred.Notes = append(pred.Notes, "no market spread posted; predicting from ratings alone")
	}

	adj := p.adjuster.Adjust(impliedMargin, home, away)
	if adj.RatingsAvailable {
		pred.FactorBreakdown[FactorRating] = adj.RatingAdvantage * p.cfg.RatingWeight
		pred.FactorBreakdown[FactorMatchup] = adj.MatchupEdge * p.cfg.MatchupWeight
		pred.FactorBreakdown[FactorSpecialTeams] = adj.SpecialTeamsDelta * p.cfg.SpecialTeamsWeight
	} else {
		pred.Notes = append(pred.Notes, "composite ratings unavailable; market line unadjusted")
	}

	margin := adj.AdjustedSpread

	confDiff := p.conferenceDifferential(home, away)
	pred.FactorBreakdown[FactorConference] = confDiff
	margin += confDiff

	if game.NeutralSite {
		pred.FactorBreakdown[FactorNeutralSite] = -p.cfg.HomeFieldEdge
		margin -= p.cfg.HomeFieldEdge
		pred.Notes = append(pred.Notes, "neutral site: home-field edge removed")
	}

	pred.PredictedSpread = roundTenth(margin)

	// Total: market total plus weather, clamped to the sane band.
	baseTotal := p.cfg.DefaultTotal
	if game.MarketTotal != nil {
		baseTotal = *game.MarketTotal
	} else {
		pred.Notes = append(pred.Notes, fmt.Sprintf("no market total posted; using league baseline %.1f", p.cfg.DefaultTotal))
	}
	weatherAdj, weatherNotes := WeatherImpact(game.Weather)
	if game.Weather == nil {
		pred.Notes = append(pred.Notes, "no weather data")
	}
	pred.Notes = append(pred.Notes, weatherNotes...)
	pred.FactorBreakdown[FactorWeather] = weatherAdj
	pred.PredictedTotal = clamp(roundTenth(baseTotal+weatherAdj), p.cfg.TotalFloor, p.cfg.TotalCeiling)

	pred.HomeWinProb, pred.AwayWinProb = winProbabilities(pred.PredictedSpread)

	// Edges against the posted lines.
	if game.MarketSpread != nil {
		pred.SpreadEdge = math.Abs(pred.PredictedSpread - impliedMargin)
		pred.HomeCoverProb = p.homeCoverProb(pred.PredictedSpread, impliedMargin)
	}
	if game.MarketTotal != nil {
		pred.TotalEdge = math.Abs(pred.PredictedTotal - *game.MarketTotal)
	}

	p.classifier.Classify(game, pred, adj.RatingAdvantage)

	return pred, nil
}

// conferenceDifferential looks up both conferences in the strength
// table and returns the scaled home-minus-away differential. Unknown
// conferences and missing contexts contribute zero.
func (p *Predictor) conferenceDifferential(home, away *cfb.RatingContext) float64 {
	var homeStrength, awayStrength float64
	if home != nil {
		homeStrength = p.cfg.ConferenceStrength[home.Conference]
	}
	if away != nil {
		awayStrength = p.cfg.ConferenceStrength[away.Conference]
	}
	return roundTenth((homeStrength - awayStrength) * p.cfg.ConferenceWeight)
}

// winProbabilities derives win percentages from the predicted margin.
// The favored side gets min(90, 50 + |spread|*3.5); a dead-even spread
// yields the fixed 52/48 home split.
func winProbabilities(predictedSpread float64) (home, away float64) {
	if predictedSpread == 0 {
		return pickemHomeProb, pickemAwayProb
	}
	favored := winProbBase + math.Abs(predictedSpread)*winProbSlope
	if favored > winProbCap {
		favored = winProbCap
	}
	if predictedSpread > 0 {
		return favored, 100 - favored
	}
	return 100 - favored, favored
}

// homeCoverProb is the probability the home side beats the posted line,
// assuming the final margin is normally distributed around the
// predicted margin.
func (p *Predictor) homeCoverProb(predictedMargin, impliedMargin float64) float64 {
	return 1 - p.coverDist.Cdf(impliedMargin-predictedMargin)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
