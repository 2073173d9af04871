package grading

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// BreakEvenPct is the win percentage needed to profit at standard vig
// (risk 1.1 to win 1).
const BreakEvenPct = 52.4

// Record is a win/loss/push tally with its unit total. Pushes do not
// count toward the win percentage.
type Record struct {
	Wins   int             `json:"wins"`
	Losses int             `json:"losses"`
	Pushes int             `json:"pushes"`
	Units  decimal.Decimal `json:"units"`
}

// add settles one pick into the record. Zero units with a push outcome
// is a refund; anything positive is a win, anything negative a loss.
func (r *Record) add(units decimal.Decimal) {
	switch {
	case units.IsPositive():
		r.Wins++
	case units.IsNegative():
		r.Losses++
	default:
		r.Pushes++
	}
	r.Units = r.Units.Add(units)
}

// Settled returns the number of picks that did not push.
func (r *Record) Settled() int {
	return r.Wins + r.Losses
}

// WinPct returns the win percentage over settled picks, 0 when nothing
// has settled.
func (r *Record) WinPct() float64 {
	if r.Settled() == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Settled()) * 100
}

// ROI returns net units over units risked. Each settled pick risks 1.1.
func (r *Record) ROI() float64 {
	if r.Settled() == 0 {
		return 0
	}
	risked := decimal.RequireFromString("1.1").Mul(decimal.NewFromInt(int64(r.Settled())))
	return r.Units.Div(risked).InexactFloat64()
}

// Profitable reports whether the record beats the vig.
func (r *Record) Profitable() bool {
	return r.WinPct() > BreakEvenPct
}

func (r *Record) String() string {
	return fmt.Sprintf("%d-%d-%d (%.1f%%), %s units", r.Wins, r.Losses, r.Pushes, r.WinPct(), r.Units.StringFixed(1))
}

// Ledger accumulates grading results across games, broken down by bet
// type and by the confidence tier the pick carried.
type Ledger struct {
	Spread Record `json:"spread"`
	Total  Record `json:"total"`

	ByTier map[cfb.ConfidenceTier]*Record `json:"by_tier"`
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		ByTier: map[cfb.ConfidenceTier]*Record{
			cfb.TierHigh:   {},
			cfb.TierMedium: {},
			cfb.TierLow:    {},
		},
	}
}

// Add settles a grading result into the ledger. Only picks that were
// actually placed are recorded; tier attribution follows the confidence
// the pick carried when it was made.
func (l *Ledger) Add(tier cfb.ConfidenceTier, res *cfb.GradingResult) {
	if res.PickedSide != cfb.SideNone {
		l.Spread.add(res.SpreadUnits)
		if rec, ok := l.ByTier[tier]; ok {
			rec.add(res.SpreadUnits)
		}
	}
	if res.PickedTotal != cfb.TotalNone {
		l.Total.add(res.TotalUnits)
		if rec, ok := l.ByTier[tier]; ok {
			rec.add(res.TotalUnits)
		}
	}
}

// Overall returns the combined spread and total record.
func (l *Ledger) Overall() Record {
	return Record{
		Wins:   l.Spread.Wins + l.Total.Wins,
		Losses: l.Spread.Losses + l.Total.Losses,
		Pushes: l.Spread.Pushes + l.Total.Pushes,
		Units:  l.Spread.Units.Add(l.Total.Units),
	}
}
