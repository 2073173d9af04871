package engine

import (
	"fmt"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// Weather impact on the expected total, in points. The outdoor rules
// are cumulative: every rule whose input is present is evaluated and
// their adjustments summed.
const (
	domeBonus     = 3.0 // controlled conditions score higher
	highWindMPH   = 15.0
	highWindAdj   = -4.0
	modWindMPH    = 10.0
	modWindAdj    = -2.0
	coldTempF     = 35.0
	coldAdj       = -3.0
	hotTempF      = 85.0
	hotAdj        = 1.0
	precipitation = -4.0
)

// WeatherImpact maps raw weather observations to a signed adjustment to
// the expected total. A nil or empty observation contributes zero; a
// dome game takes the dome bonus and ignores the outdoor rules.
func WeatherImpact(w *cfb.Weather) (float64, []string) {
	if w == nil {
		return 0, nil
	}
	if w.IsDome {
		return domeBonus, []string{fmt.Sprintf("dome: controlled conditions favor scoring (%+.1f)", domeBonus)}
	}

	var adj float64
	var notes []string

	if w.WindMPH != nil {
		switch wind := *w.WindMPH; {
		case wind > highWindMPH:
			adj += highWindAdj
			notes = append(notes, fmt.Sprintf("high wind %.0f mph disrupts passing (%+.1f)", wind, highWindAdj))
		case wind > modWindMPH:
			adj += modWindAdj
			notes = append(notes, fmt.Sprintf("moderate wind %.0f mph (%+.1f)", wind, modWindAdj))
		}
	}
	if w.TemperatureF != nil {
		switch temp := *w.TemperatureF; {
		case temp < coldTempF:
			adj += coldAdj
			notes = append(notes, fmt.Sprintf("cold %.0f°F limits offense (%+.1f)", temp, coldAdj))
		case temp > hotTempF:
			adj += hotAdj
			notes = append(notes, fmt.Sprintf("heat %.0f°F, tired defenses (%+.1f)", temp, hotAdj))
		}
	}
	if w.PrecipitationIn != nil && *w.PrecipitationIn > 0 {
		adj += precipitation
		notes = append(notes, fmt.Sprintf("precipitation favors the ground game (%+.1f)", precipitation))
	}

	return adj, notes
}
