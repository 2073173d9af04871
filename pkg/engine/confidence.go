package engine

import (
	"fmt"
	"math"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// Confidence scores per tier.
const (
	scoreHigh   = 85.0
	scoreMedium = 70.0
	scoreLow    = 55.0
)

// No-play phrasings.
const (
	NoSpreadEdge = "no strong edge identified"
	NoTotalEdge  = "no strong total edge"
)

// Classifier maps the magnitude and agreement of the predictor's
// factors to a confidence tier, score, risk level, and recommendations.
type Classifier struct {
	cfg *Config
}

// NewClassifier creates a classifier. A nil config uses defaults.
func NewClassifier(cfg *Config) *Classifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Classifier{cfg: cfg}
}

// Classify fills the confidence and recommendation fields of p. The
// tier is a monotone function of the absolute rating advantage; risk is
// its inverse. Spread and total recommendations are independent and may
// coexist.
func (c *Classifier) Classify(game *cfb.Game, p *cfb.Prediction, ratingAdvantage float64) {
	switch gap := math.Abs(ratingAdvantage); {
	case gap >= c.cfg.HighAdvantage:
		p.ConfidenceTier = cfb.TierHigh
		p.ConfidenceScore = scoreHigh
		p.RiskLevel = cfb.RiskLow
	case gap >= c.cfg.MediumAdvantage:
		p.ConfidenceTier = cfb.TierMedium
		p.ConfidenceScore = scoreMedium
		p.RiskLevel = cfb.RiskMedium
	default:
		p.ConfidenceTier = cfb.TierLow
		p.ConfidenceScore = scoreLow
		p.RiskLevel = cfb.RiskHigh
	}

	p.PickSide = cfb.SideNone
	p.RecommendedBet = NoSpreadEdge
	if game.MarketSpread != nil && p.SpreadEdge >= c.cfg.SpreadEdgeMin {
		homeLine := *game.MarketSpread
		if p.PredictedSpread > -homeLine {
			// Model likes the home side more than the market does.
			p.PickSide = cfb.SideHome
			p.RecommendedBet = fmt.Sprintf("take %s %+.1f, %.1f-point edge", game.HomeTeam, homeLine, p.SpreadEdge)
		} else {
			p.PickSide = cfb.SideAway
			p.RecommendedBet = fmt.Sprintf("take %s %+.1f, %.1f-point edge", game.AwayTeam, -homeLine, p.SpreadEdge)
		}
	}

	p.PickTotal = cfb.TotalNone
	p.RecommendedTotal = NoTotalEdge
	if game.MarketTotal != nil && p.TotalEdge >= c.cfg.TotalEdgeMin {
		if p.PredictedTotal > *game.MarketTotal {
			p.PickTotal = cfb.TotalOver
			p.RecommendedTotal = fmt.Sprintf("over %.1f, %.1f-point edge", *game.MarketTotal, p.TotalEdge)
		} else {
			p.PickTotal = cfb.TotalUnder
			p.RecommendedTotal = fmt.Sprintf("under %.1f, %.1f-point edge", *game.MarketTotal, p.TotalEdge)
		}
	}
}
