package temporal

import (
	"strings"

	"github.com/nowa-app/planner-api/internal/types"
)

// BuildWeatherProfile derives the structural weather flags from a snapshot.
// Thresholds: cold at feels_like <= 8, very cold at <= 2, pleasant in
// [10,22] with no precipitation or wind.
func BuildWeatherProfile(w types.WeatherSnapshot) types.WeatherProfile {
	cond := strings.ToLower(w.Condition)
	rain := w.IsRaining || strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle")
	snow := w.IsSnowing || strings.Contains(cond, "snow")
	windy := w.Windy || strings.Contains(cond, "wind")

	feels := w.FeelsLike
	confidence := w.Confidence
	if confidence == "" {
		confidence = "high"
	}

	return types.WeatherProfile{
		Cold:       feels <= 8,
		VeryCold:   feels <= 2,
		Rain:       rain,
		Snow:       snow,
		Windy:      windy,
		Pleasant:   feels >= 10 && feels <= 22 && !rain && !snow && !windy,
		Confidence: confidence,
	}
}
