package engine

import (
	"math"
	"testing"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

func fptr(f float64) *float64 { return &f }

func TestWeatherImpact(t *testing.T) {
	tests := []struct {
		name    string
		weather *cfb.Weather
		want    float64
	}{
		{
			name:    "nil observation",
			weather: nil,
			want:    0,
		},
		{
			name:    "empty observation",
			weather: &cfb.Weather{},
			want:    0,
		},
		{
			name:    "dome",
			weather: &cfb.Weather{IsDome: true},
			want:    3,
		},
		{
			name: "dome ignores outdoor conditions",
			weather: &cfb.Weather{
				IsDome:          true,
				WindMPH:         fptr(25),
				TemperatureF:    fptr(20),
				PrecipitationIn: fptr(0.4),
			},
			want: 3,
		},
		{
			name:    "high wind",
			weather: &cfb.Weather{WindMPH: fptr(20)},
			want:    -4,
		},
		{
			name:    "moderate wind",
			weather: &cfb.Weather{WindMPH: fptr(12)},
			want:    -2,
		},
		{
			name:    "wind at the moderate boundary",
			weather: &cfb.Weather{WindMPH: fptr(10)},
			want:    0,
		},
		{
			name:    "wind at the high boundary stays moderate",
			weather: &cfb.Weather{WindMPH: fptr(15)},
			want:    -2,
		},
		{
			name:    "cold",
			weather: &cfb.Weather{TemperatureF: fptr(30)},
			want:    -3,
		},
		{
			name:    "hot",
			weather: &cfb.Weather{TemperatureF: fptr(95)},
			want:    1,
		},
		{
			name:    "mild temperature",
			weather: &cfb.Weather{TemperatureF: fptr(60)},
			want:    0,
		},
		{
			name:    "precipitation",
			weather: &cfb.Weather{PrecipitationIn: fptr(0.2)},
			want:    -4,
		},
		{
			name:    "zero precipitation does not fire",
			weather: &cfb.Weather{PrecipitationIn: fptr(0)},
			want:    0,
		},
		{
			name: "rules are cumulative",
			weather: &cfb.Weather{
				WindMPH:         fptr(20),
				TemperatureF:    fptr(30),
				PrecipitationIn: fptr(0.1),
			},
			want: -11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := WeatherImpact(tt.weather)
			if got != tt.want {
				t.Errorf("WeatherImpact() = %v, want %v", got, tt.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("WeatherImpact() not finite: %v", got)
			}
		})
	}
}
