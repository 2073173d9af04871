package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	body := "rating_weight: 0.4\nhigh_advantage: 18\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	approx(t, "RatingWeight", cfg.RatingWeight, 0.4)
	approx(t, "HighAdvantage", cfg.HighAdvantage, 18)
	// Unnamed fields fall back to the defaults.
	approx(t, "MatchupWeight", cfg.MatchupWeight, 0.20)
	approx(t, "DefaultTotal", cfg.DefaultTotal, 55)
	if len(cfg.ConferenceStrength) == 0 {
		t.Error("ConferenceStrength not filled from defaults")
	}
}

func TestLoadConfig_ExplicitZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	body := "conference_weight: 0\ntotal_floor: 0\nspecial_teams_weight: 0\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	// Zeros named in the file stick; they must not revert to defaults.
	approx(t, "ConferenceWeight", cfg.ConferenceWeight, 0)
	approx(t, "TotalFloor", cfg.TotalFloor, 0)
	approx(t, "SpecialTeamsWeight", cfg.SpecialTeamsWeight, 0)
	// Unnamed fields still carry the defaults.
	approx(t, "RatingWeight", cfg.RatingWeight, 0.30)
	approx(t, "TotalCeiling", cfg.TotalCeiling, 90)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative weight", "rating_weight: -0.1\n", "non-negative"},
		{"inverted clamp", "total_floor: 95\ntotal_ceiling: 90\n", "total_floor"},
		{"negative sigma", "margin_sigma: -1\n", "margin_sigma"},
		{"inverted tiers", "medium_advantage: 20\nhigh_advantage: 15\n", "medium_advantage"},
		{"bad yaml", "rating_weight: [\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "engine.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("LoadConfig() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig() succeeded on a missing file")
	}
}
