package types

// DayTime is one endpoint of an opening-hours period in the provider wire
// format: Day is 0=Sunday..6=Saturday, Time is four-digit local "HHMM".
type DayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// Period is a single open/close interval. Close may be absent for places
// represented as always open.
type Period struct {
	Open  DayTime  `json:"open"`
	Close *DayTime `json:"close,omitempty"`
}

// OpeningHours carries the structured periods plus the human-readable
// weekday_text lines some records ship instead of periods.
type OpeningHours struct {
	Periods     []Period `json:"periods,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

// Business status values from the places provider.
const (
	BusinessOperational       = "OPERATIONAL"
	BusinessClosedTemporarily = "CLOSED_TEMPORARILY"
	BusinessClosedPermanently = "CLOSED_PERMANENTLY"
)

// Place is a normalized candidate from the places provider. Immutable within
// a single plan build.
type Place struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	Lat              float64       `json:"lat"`
	Lng              float64       `json:"lng"`
	Rating           float64       `json:"rating,omitempty"`
	UserRatingsTotal int           `json:"user_ratings_total,omitempty"`
	Types            []string      `json:"types,omitempty"`
	Category         string        `json:"category"`
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty"`
	BusinessStatus   string        `json:"business_status,omitempty"`
	PhotoReference   string        `json:"photo_reference,omitempty"`

	// Soft signals used by the scorer. IsIndoor is a tri-state: nil means
	// unknown and is never penalized.
	IsIndoor       *bool `json:"is_indoor,omitempty"`
	NoiseLevel     int   `json:"noise_level,omitempty"` // 1..5, 0 = unknown
	TouristDensity int   `json:"tourist_density,omitempty"`
	LocalFavorite  bool  `json:"local_favorite,omitempty"`
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
