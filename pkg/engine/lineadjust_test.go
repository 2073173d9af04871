package engine

import (
	"math"
	"testing"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

const eps = 1e-9

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func ratingWith(overall, offense, defense, st float64) *cfb.RatingContext {
	return &cfb.RatingContext{
		Composite: &cfb.CompositeRating{
			Overall:      overall,
			Offense:      offense,
			Defense:      defense,
			SpecialTeams: st,
		},
	}
}

func TestLineAdjuster_Adjust(t *testing.T) {
	a := NewLineAdjuster(nil)

	home := ratingWith(20, 30, -10, 2)
	away := ratingWith(5, 25, -20, 1)

	adj := a.Adjust(3, home, away)

	if !adj.RatingsAvailable {
		t.Fatal("RatingsAvailable = false with both composites present")
	}
	approx(t, "RatingAdvantage", adj.RatingAdvantage, 15)
	// (30 - |-20|) - (25 - |-10|) = 10 - 15
	approx(t, "MatchupEdge", adj.MatchupEdge, -5)
	approx(t, "SpecialTeamsDelta", adj.SpecialTeamsDelta, 1)
	// 15*0.30 + (-5)*0.20 + 1*0.10
	approx(t, "Adjustment", adj.Adjustment, 3.6)
	approx(t, "AdjustedSpread", adj.AdjustedSpread, 6.6)
	// 0.5 + 15/40
	approx(t, "Confidence", adj.Confidence, 0.875)
}

func TestLineAdjuster_ConfidenceCap(t *testing.T) {
	a := NewLineAdjuster(nil)
	adj := a.Adjust(0, ratingWith(40, 0, 0, 0), ratingWith(-10, 0, 0, 0))
	// 0.5 + 50/40 would be 1.75; capped at 0.9
	approx(t, "Confidence", adj.Confidence, 0.9)
}

func TestLineAdjuster_RoundsToTenth(t *testing.T) {
	a := NewLineAdjuster(nil)
	adj := a.Adjust(-2.5, ratingWith(1.23, 0, 0, 0), ratingWith(0, 0, 0, 0))
	// -2.5 + 1.23*0.30 = -2.131, rounded to -2.1
	approx(t, "AdjustedSpread", adj.AdjustedSpread, -2.1)
}

func TestLineAdjuster_Fallback(t *testing.T) {
	a := NewLineAdjuster(nil)

	tests := []struct {
		name string
		home *cfb.RatingContext
		away *cfb.RatingContext
	}{
		{"both nil", nil, nil},
		{"home nil", nil, ratingWith(10, 5, -5, 0)},
		{"away composite nil", ratingWith(10, 5, -5, 0), &cfb.RatingContext{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := a.Adjust(-6.5, tt.home, tt.away)
			if adj.RatingsAvailable {
				t.Error("RatingsAvailable = true in fallback")
			}
			approx(t, "AdjustedSpread", adj.AdjustedSpread, -6.5)
			approx(t, "Adjustment", adj.Adjustment, 0)
			approx(t, "Confidence", adj.Confidence, 0.3)
		})
	}
}
