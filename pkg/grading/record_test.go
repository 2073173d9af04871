package grading

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

func TestRecord_Tally(t *testing.T) {
	var r Record
	r.add(decimal.NewFromInt(1))
	r.add(decimal.NewFromInt(1))
	r.add(decimal.RequireFromString("-1.1"))
	r.add(decimal.Zero)

	if r.Wins != 2 || r.Losses != 1 || r.Pushes != 1 {
		t.Fatalf("record = %d-%d-%d, want 2-1-1", r.Wins, r.Losses, r.Pushes)
	}
	if r.Settled() != 3 {
		t.Errorf("Settled() = %d, want 3", r.Settled())
	}
	if got := r.WinPct(); math.Abs(got-200.0/3) > 1e-9 {
		t.Errorf("WinPct() = %v, want %v", got, 200.0/3)
	}
	if !r.Units.Equal(decimal.RequireFromString("0.9")) {
		t.Errorf("Units = %s, want 0.9", r.Units)
	}
	if !r.Profitable() {
		t.Error("Profitable() = false at 66.7%")
	}
	if got := r.String(); got != "2-1-1 (66.7%), 0.9 units" {
		t.Errorf("String() = %q", got)
	}
}

func TestRecord_Empty(t *testing.T) {
	var r Record
	if r.WinPct() != 0 || r.ROI() != 0 {
		t.Errorf("empty record: WinPct=%v ROI=%v, want zeros", r.WinPct(), r.ROI())
	}
	if r.Profitable() {
		t.Error("empty record reports profitable")
	}
}

func TestRecord_ROI(t *testing.T) {
	var r Record
	r.add(decimal.NewFromInt(1))
	r.add(decimal.RequireFromString("-1.1"))
	// -0.1 units over 2.2 risked
	if got := r.ROI(); math.Abs(got-(-0.1/2.2)) > 1e-9 {
		t.Errorf("ROI() = %v, want %v", got, -0.1/2.2)
	}
}

func TestRecord_BreakEven(t *testing.T) {
	// 11-10 is 52.38%, just under the vig; 12-10 clears it.
	under := Record{Wins: 11, Losses: 10}
	if under.Profitable() {
		t.Errorf("11-10 (%.2f%%) reports profitable", under.WinPct())
	}
	over := Record{Wins: 12, Losses: 10}
	if !over.Profitable() {
		t.Errorf("12-10 (%.2f%%) reports unprofitable", over.WinPct())
	}
}

func TestLedger_Add(t *testing.T) {
	l := NewLedger()

	l.Add(cfb.TierHigh, &cfb.GradingResult{
		PickedSide:  cfb.SideHome,
		SpreadUnits: decimal.NewFromInt(1),
		PickedTotal: cfb.TotalOver,
		TotalUnits:  decimal.RequireFromString("-1.1"),
	})
	l.Add(cfb.TierLow, &cfb.GradingResult{
		PickedSide:  cfb.SideAway,
		SpreadUnits: decimal.Zero,
	})
	// Nothing picked, nothing recorded.
	l.Add(cfb.TierMedium, &cfb.GradingResult{})

	if l.Spread.Wins != 1 || l.Spread.Pushes != 1 {
		t.Errorf("spread record = %d-%d-%d, want 1-0-1", l.Spread.Wins, l.Spread.Losses, l.Spread.Pushes)
	}
	if l.Total.Losses != 1 {
		t.Errorf("total record = %d-%d-%d, want 0-1-0", l.Total.Wins, l.Total.Losses, l.Total.Pushes)
	}

	high := l.ByTier[cfb.TierHigh]
	if high.Wins != 1 || high.Losses != 1 {
		t.Errorf("high tier = %d-%d-%d, want 1-1-0", high.Wins, high.Losses, high.Pushes)
	}
	if med := l.ByTier[cfb.TierMedium]; med.Settled()+med.Pushes != 0 {
		t.Errorf("medium tier settled picks = %d, want 0", med.Settled()+med.Pushes)
	}

	overall := l.Overall()
	if overall.Wins != 1 || overall.Losses != 1 || overall.Pushes != 1 {
		t.Errorf("overall = %d-%d-%d, want 1-1-1", overall.Wins, overall.Losses, overall.Pushes)
	}
	if !overall.Units.Equal(decimal.RequireFromString("-0.1")) {
		t.Errorf("overall units = %s, want -0.1", overall.Units)
	}
}
