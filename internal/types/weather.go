package types

// WeatherSnapshot is the raw weather observation for a plan build. On
// provider failure a seasonal fallback snapshot is synthesized with
// Confidence "low" and Source "fallback"; the engine never fails because
// weather is unreachable.
type WeatherSnapshot struct {
	Temp       float64 `json:"temp"`
	FeelsLike  float64 `json:"feels_like"`
	Condition  string  `json:"condition"`
	IsRaining  bool    `json:"is_raining"`
	IsSnowing  bool    `json:"is_snowing"`
	Windy      bool    `json:"windy,omitempty"`
	Confidence string  `json:"confidence"` // "high" | "low"
	Source     string  `json:"source,omitempty"`
}

// WeatherProfile is the boolean-flag summary derived from a snapshot that
// drives structural plan changes (slot skipping, constraint injection,
// category reordering).
type WeatherProfile struct {
	Cold       bool
	VeryCold   bool
	Rain       bool
	Snow       bool
	Windy      bool
	Pleasant   bool
	Confidence string
}

// Hostile reports whether the profile should trigger indoor-only structure:
// outdoor slots are dropped and indoor constraints injected.
func (p WeatherProfile) Hostile() bool {
	return p.VeryCold || p.Rain || p.Snow
}
