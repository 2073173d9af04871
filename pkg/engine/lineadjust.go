package engine

import (
	"math"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// Confidence bounds for the rating-based line adjustment.
const (
	adjustConfidenceBase = 0.5
	adjustConfidenceMax  = 0.9
	adjustFallbackConf   = 0.3 // either composite rating missing
	advantagePerConf     = 40.0
)

// LineAdjustment is the result of blending a market line with the
// rating deltas between the two teams.
type LineAdjustment struct {
	// AdjustedSpread is the input line plus Adjustment, rounded to the
	// nearest tenth. Lines here are stated as expected home margin.
	AdjustedSpread float64

	Adjustment        float64
	RatingAdvantage   float64 // home overall − away overall
	MatchupEdge       float64 // offense vs defense matchup differential
	SpecialTeamsDelta float64

	// Confidence grows with the rating gap, capped at 0.9. It drops to
	// the 0.3 fallback when either composite rating is unavailable.
	Confidence float64

	// RatingsAvailable is false when the fallback fired and the line
	// passed through unmodified.
	RatingsAvailable bool
}

// LineAdjuster blends market lines with composite-rating deltas.
type LineAdjuster struct {
	cfg *Config
}

// NewLineAdjuster creates a line adjuster. A nil config uses defaults.
func NewLineAdjuster(cfg *Config) *LineAdjuster {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &LineAdjuster{cfg: cfg}
}

// Adjust nudges the line by the weighted rating deltas between the
// teams. When either team has no composite rating the line passes
// through unmodified at the low-confidence fallback; missing ratings
// are never an error.
func (a *LineAdjuster) Adjust(line float64, home, away *cfb.RatingContext) LineAdjustment {
	if home == nil || away == nil || home.Composite == nil || away.Composite == nil {
		return LineAdjustment{
			AdjustedSpread: line,
			Confidence:     adjustFallbackConf,
		}
	}

	hc, ac := home.Composite, away.Composite
	advantage := hc.Overall - ac.Overall
	matchup := (hc.Offense - math.Abs(ac.Defense)) - (ac.Offense - math.Abs(hc.Defense))
	stDelta := hc.SpecialTeams - ac.SpecialTeams

	adjustment := advantage*a.cfg.RatingWeight +
		matchup*a.cfg.MatchupWeight +
		stDelta*a.cfg.SpecialTeamsWeight

	confidence := adjustConfidenceBase + math.Abs(advantage)/advantagePerConf
	if confidence > adjustConfidenceMax {
		confidence = adjustConfidenceMax
	}

	return LineAdjustment{
		AdjustedSpread:    roundTenth(line + adjustment),
		Adjustment:        adjustment,
		RatingAdvantage:   advantage,
		MatchupEdge:       matchup,
		SpecialTeamsDelta: stDelta,
		Confidence:        confidence,
		RatingsAvailable:  true,
	}
}

// roundTenth rounds to the nearest tenth of a point.
func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
