// Package engine implements the deterministic prediction model: weather
// impact, market-line adjustment, spread/total prediction, confidence
// classification, and the parallel batch runner.
package engine

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config holds the model weights and thresholds. A yaml file is decoded
// over the defaults, so a partial file only overrides the fields it
// names — including explicit zeros.
type Config struct {
	// Line adjustment weights.
	RatingWeight       float64 `yaml:"rating_weight"`        // composite overall advantage
	MatchupWeight      float64 `yaml:"matchup_weight"`       // offense vs defense matchup
	SpecialTeamsWeight float64 `yaml:"special_teams_weight"` // special teams differential

	// Conference strength, applied as a symmetric home/away differential
	// scaled by ConferenceWeight. Unknown conferences contribute zero.
	// File entries override or extend the default table.
	ConferenceWeight   float64            `yaml:"conference_weight"`
	ConferenceStrength map[string]float64 `yaml:"conference_strength"`

	// HomeFieldEdge is the home-field component already priced into the
	// market line; it is removed for neutral-site games.
	HomeFieldEdge float64 `yaml:"home_field_edge"`

	// Total prediction. DefaultTotal stands in when the market never
	// posted a total; the predicted total is clamped to [TotalFloor,
	// TotalCeiling] to keep extreme inputs sane.
	DefaultTotal float64 `yaml:"default_total"`
	TotalFloor   float64 `yaml:"total_floor"`
	TotalCeiling float64 `yaml:"total_ceiling"`

	// MarginSigma is the standard deviation of final margin around the
	// predicted spread, used for the cover-probability diagnostic.
	MarginSigma float64 `yaml:"margin_sigma"`

	// Confidence tier thresholds on the absolute rating advantage.
	HighAdvantage   float64 `yaml:"high_advantage"`
	MediumAdvantage float64 `yaml:"medium_advantage"`

	// Recommendation thresholds.
	SpreadEdgeMin float64 `yaml:"spread_edge_min"`
	TotalEdgeMin  float64 `yaml:"total_edge_min"`
}

// DefaultConfig returns the production model parameters.
func DefaultConfig() *Config {
	return &Config{
		RatingWeight:       0.30,
		MatchupWeight:      0.20,
		SpecialTeamsWeight: 0.10,
		ConferenceWeight:   0.25,
		ConferenceStrength: map[string]float64{
			"SEC":               8,
			"Big Ten":           6,
			"Big 12":            4,
			"ACC":               4,
			"Pac-12":            3,
			"American Athletic": 1,
			"Sun Belt":          1,
			"Conference USA":    0,
			"Mountain West":     0,
			"Mid-American":      -1,
			"Independent":       -2,
		},
		HomeFieldEdge:   2.0,
		DefaultTotal:    55.0,
		TotalFloor:      20,
		TotalCeiling:    90,
		MarginSigma:     13.5,
		HighAdvantage:   15,
		MediumAdvantage: 7,
		SpreadEdgeMin:   0.5,
		TotalEdgeMin:    3.0,
	}
}

// Validate checks the config for nonsensical parameters.
func (c *Config) Validate() error {
	if c.RatingWeight < 0 || c.MatchupWeight < 0 || c.SpecialTeamsWeight < 0 || c.ConferenceWeight < 0 {
		return fmt.Errorf("model weights must be non-negative")
	}
	if c.TotalFloor >= c.TotalCeiling {
		return fmt.Errorf("total_floor (%.1f) must be below total_ceiling (%.1f)", c.TotalFloor, c.TotalCeiling)
	}
	if c.MarginSigma <= 0 {
		return fmt.Errorf("margin_sigma must be positive, got %.2f", c.MarginSigma)
	}
	if c.MediumAdvantage > c.HighAdvantage {
		return fmt.Errorf("medium_advantage (%.1f) above high_advantage (%.1f)", c.MediumAdvantage, c.HighAdvantage)
	}
	return nil
}

// LoadConfig reads a yaml config file. The file is decoded over the
// default configuration, so fields it does not name keep their
// defaults while named fields take the file's value even when zero.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	c := DefaultConfig()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}
