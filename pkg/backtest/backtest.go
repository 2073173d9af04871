// Package backtest replays the prediction engine over completed games
// and grades its picks against the posted lines, producing an ATS
// record and an error comparison against the market.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
	"github.com/rickspicks/cfb-engine/pkg/engine"
	"github.com/rickspicks/cfb-engine/pkg/grading"
	"github.com/rickspicks/cfb-engine/pkg/metrics"
)

// Config configures a backtest run.
type Config struct {
	// Engine is the model configuration. Nil uses defaults.
	Engine *engine.Config
	// MinConfidence only grades picks at or above this confidence
	// score; 0 grades every pick the classifier emits.
	MinConfidence float64
}

// Skip records a game the backtest could not use.
type Skip struct {
	GameID int64  `json:"game_id"`
	Reason string `json:"reason"`
}

// Result summarizes a backtest run.
type Result struct {
	Games  int    `json:"games"`  // completed games considered
	Picked int    `json:"picked"` // games where the model took a side
	Skips  []Skip `json:"skips,omitempty"`

	Ledger *grading.Ledger `json:"ledger"`

	// Mean absolute error of the predicted margin vs the actual margin,
	// and the same for the margin implied by the market line. The model
	// beats the market when ModelAbsErr < MarketAbsErr.
	ModelAbsErr  float64 `json:"model_abs_err"`
	MarketAbsErr float64 `json:"market_abs_err"`
}

// Backtest replays predictions over historical games.
type Backtest struct {
	cfg       *Config
	predictor *engine.Predictor
	grader    *grading.Grader
	metrics   *metrics.EngineMetrics
}

// New creates a backtest. A nil config uses defaults.
func New(cfg *Config) *Backtest {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Backtest{
		cfg:       cfg,
		predictor: engine.NewPredictor(cfg.Engine),
		grader:    grading.NewGrader(),
	}
}

// SetMetrics attaches a metrics collector; every graded game is then
// recorded as it settles. Optional; a nil collector disables
// instrumentation.
func (b *Backtest) SetMetrics(m *metrics.EngineMetrics) {
	b.metrics = m
}

// Run predicts and grades every completed game with a posted spread.
// Because the predictor is deterministic, re-deriving the prediction
// for a past game reproduces exactly the pick that would have been
// published before kickoff.
func (b *Backtest) Run(ctx context.Context, games []cfb.Game, lookup cfb.RatingLookup) (*Result, error) {
	res := &Result{Ledger: grading.NewLedger()}

	var modelErrSum, marketErrSum float64
	var errGames int

	for i := range games {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		game := &games[i]

		margin, ok := game.FinalMargin()
		if !ok {
			res.Skips = append(res.Skips, Skip{GameID: game.ID, Reason: "not completed"})
			continue
		}
		if game.MarketSpread == nil {
			res.Skips = append(res.Skips, Skip{GameID: game.ID, Reason: "no posted spread"})
			continue
		}
		res.Games++

		var home, away *cfb.RatingContext
		if lookup != nil {
			if rc, ok := lookup(game.HomeTeamID); ok {
				home = &rc
			}
			if rc, ok := lookup(game.AwayTeamID); ok {
				away = &rc
			}
		}

		pred, err := b.predictor.Predict(game, home, away)
		if err != nil {
			if errors.Is(err, cfb.ErrMissingTeam) {
				res.Skips = append(res.Skips, Skip{GameID: game.ID, Reason: err.Error()})
				continue
			}
			return nil, fmt.Errorf("predict game %d: %w", game.ID, err)
		}

		modelErrSum += math.Abs(pred.PredictedSpread - margin)
		marketErrSum += math.Abs(-*game.MarketSpread - margin)
		errGames++

		side, totalSide := pred.PickSide, pred.PickTotal
		if b.cfg.MinConfidence > 0 && pred.ConfidenceScore < b.cfg.MinConfidence {
			side, totalSide = cfb.SideNone, cfb.TotalNone
		}
		if side == cfb.SideNone && totalSide == cfb.TotalNone {
			continue
		}

		graded, err := b.grader.Grade(game, side, totalSide)
		if err != nil {
			return nil, fmt.Errorf("grade game %d: %w", game.ID, err)
		}
		res.Ledger.Add(pred.ConfidenceTier, graded)
		res.Picked++
		if b.metrics != nil {
			b.metrics.RecordGrade(graded, res.Ledger.Overall().Units)
		}
	}

	if errGames > 0 {
		res.ModelAbsErr = modelErrSum / float64(errGames)
		res.MarketAbsErr = marketErrSum / float64(errGames)
	}

	return res, nil
}
