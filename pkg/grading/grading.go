// Package grading classifies completed games against the lines that
// were offered and keeps the unit-denominated performance record.
package grading

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// Standard vig: risk 1.1 units to win 1.
var (
	unitWin  = decimal.NewFromInt(1)
	unitLoss = decimal.RequireFromString("-1.1")
)

// spreadPushTolerance is the half-point band inside which a spread
// result is a push. Totals deliberately do not get this band: a total
// pushes only on exact equality, which means half-point totals can
// never push. The asymmetry is carried over from the model this engine
// replaces; see DESIGN.md.
const spreadPushTolerance = 0.5

// Grader classifies completed games against posted lines. It is pure:
// outcomes are computed only from the final score and the lines, never
// from a prediction, and the game record is never mutated.
type Grader struct{}

// NewGrader creates a grader.
func NewGrader() *Grader {
	return &Grader{}
}

// Grade classifies the game's spread and total results and settles the
// picked sides in units. It fails with cfb.ErrNotCompleted when the
// game has no final score, and with cfb.ErrNoLine when a pick was
// placed against a line that was never posted.
func (g *Grader) Grade(game *cfb.Game, pickedSide cfb.Side, pickedTotal cfb.TotalPick) (*cfb.GradingResult, error) {
	margin, ok := game.FinalMargin()
	if !ok {
		return nil, fmt.Errorf("game %d: %w", game.ID, cfb.ErrNotCompleted)
	}
	total, _ := game.FinalTotal()

	res := &cfb.GradingResult{
		GameID:       game.ID,
		ActualMargin: margin,
		ActualTotal:  total,
		PickedSide:   pickedSide,
		PickedTotal:  pickedTotal,
		SpreadUnits:  decimal.Zero,
		TotalUnits:   decimal.Zero,
	}

	if game.MarketSpread != nil {
		res.SpreadOutcome = spreadOutcome(margin, *game.MarketSpread)
	} else if pickedSide != cfb.SideNone {
		return nil, fmt.Errorf("game %d: spread pick: %w", game.ID, cfb.ErrNoLine)
	}
	if game.MarketTotal != nil {
		res.TotalOutcome = totalOutcome(total, *game.MarketTotal)
	} else if pickedTotal != cfb.TotalNone {
		return nil, fmt.Errorf("game %d: total pick: %w", game.ID, cfb.ErrNoLine)
	}

	if pickedSide != cfb.SideNone {
		res.SpreadUnits = settleSpread(res.SpreadOutcome, pickedSide)
	}
	if pickedTotal != cfb.TotalNone {
		res.TotalUnits = settleTotal(res.TotalOutcome, pickedTotal)
	}
	res.Units = res.SpreadUnits.Add(res.TotalUnits)

	return res, nil
}

// spreadOutcome compares the actual margin with the margin the line
// implies. Vegas convention: a negative home spread means the home team
// is favored, so the implied home margin is the negated spread. Results
// inside the half-point band are pushes regardless of sign.
func spreadOutcome(actualMargin, marketSpread float64) cfb.SpreadOutcome {
	impliedMargin := -marketSpread
	switch {
	case math.Abs(actualMargin-impliedMargin) < spreadPushTolerance:
		return cfb.SpreadPush
	case actualMargin > impliedMargin:
		return cfb.HomeCovered
	default:
		return cfb.AwayCovered
	}
}

// totalOutcome compares the combined score with the posted total.
// Exact equality, and only exact equality, is a push.
func totalOutcome(actualTotal, marketTotal float64) cfb.TotalOutcome {
	switch {
	case actualTotal == marketTotal:
		return cfb.TotalPush
	case actualTotal > marketTotal:
		return cfb.Over
	default:
		return cfb.Under
	}
}

// settleSpread converts a spread outcome into units for the picked
// side: +1.0 on a win, −1.1 on a loss, 0 on a push.
func settleSpread(outcome cfb.SpreadOutcome, picked cfb.Side) decimal.Decimal {
	if outcome == cfb.SpreadPush {
		return decimal.Zero
	}
	won := (outcome == cfb.HomeCovered && picked == cfb.SideHome) ||
		(outcome == cfb.AwayCovered && picked == cfb.SideAway)
	if won {
		return unitWin
	}
	return unitLoss
}

// settleTotal converts a total outcome into units for the picked side.
func settleTotal(outcome cfb.TotalOutcome, picked cfb.TotalPick) decimal.Decimal {
	if outcome == cfb.TotalPush {
		return decimal.Zero
	}
	won := (outcome == cfb.Over && picked == cfb.TotalOver) ||
		(outcome == cfb.Under && picked == cfb.TotalUnder)
	if won {
		return unitWin
	}
	return unitLoss
}
