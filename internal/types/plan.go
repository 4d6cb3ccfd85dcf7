package types

import (
	"time"

	"github.com/google/uuid"
)

// Plan status state machine. Transitions are owned by the plans service:
// draft -> building -> ready|failed, ready -> active -> completed,
// ready|active -> swapping -> ready.
const (
	PlanStatusDraft     = "draft"
	PlanStatusBuilding  = "building"
	PlanStatusReady     = "ready"
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusFailed    = "failed"
	PlanStatusSwapping  = "swapping"
)

// When-selection values accepted on plan creation.
const (
	WhenNow        = "now"
	WhenLaterToday = "later_today"
	WhenTonight    = "tonight"
	WhenTomorrow   = "tomorrow"
)

// Slot roles, used to prioritize retention when a template is shrunk.
const (
	RoleAnchor   = "anchor"
	RoleReward   = "reward"
	RoleNice     = "nice"
	RoleOptional = "optional"
)

// Discovery modes bias ranking toward hidden locals or iconic spots.
const (
	DiscoveryLocal   = "local"
	DiscoveryTourist = "tourist"
	DiscoveryMixed   = "mixed"
)

// PlanInputs is the validated input set for a plan build, stored on the plan
// row as inputs_json.
type PlanInputs struct {
	CityName      string           `json:"city_name"`
	UserLocation  *Location        `json:"user_location"`
	Timezone      string           `json:"timezone,omitempty"`
	Intent        string           `json:"intent,omitempty"`
	WhenSelection string           `json:"when_selection,omitempty"`
	DiscoveryMode string           `json:"discovery_mode,omitempty"`
	Constraints   []string         `json:"constraints,omitempty"`
	Energy        int              `json:"energy,omitempty"` // 0..3
	DurationHours float64          `json:"duration_hours,omitempty"`
	StartTime     *time.Time       `json:"start_time,omitempty"`
	EndTime       *time.Time       `json:"end_time,omitempty"`
	UseLLM        bool             `json:"use_llm,omitempty"`
	LLMModel      string           `json:"llm_model,omitempty"`
	Weather       *WeatherSnapshot `json:"weather,omitempty"` // manual override for QA
}

// SlotSpec is one template element. Immutable; templates hand out copies.
type SlotSpec struct {
	SlotID      string   `json:"slot_id"`
	Title       string   `json:"title"`
	DurationMin int      `json:"duration_min"`
	Categories  []string `json:"categories"`
	Constraints []string `json:"constraints,omitempty"`
	Role        string   `json:"role"`

	// BaseDurationMin is the template's unscaled duration. Zero means
	// DurationMin has not been energy-scaled yet. Keeping the base makes
	// resizing a fixed point instead of compounding on repeated calls.
	BaseDurationMin int `json:"-"`
}

// Slot is a SlotSpec instantiated for a concrete plan: concrete window,
// merged constraints, climate-adjusted categories and duration.
type Slot struct {
	SlotID      string    `json:"slot_id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DurationMin int       `json:"duration_min"`
	Categories  []string  `json:"categories"`
	Constraints []string  `json:"constraints"`
	Role        string    `json:"role"`
}

// OpenStatus is the tri-state result of the opening-hours evaluator.
// IsOpen nil means unknown; unknown places are kept and surface as
// hours_unknown on the stop.
type OpenStatus struct {
	IsOpen     *bool  `json:"is_open"`
	Confidence string `json:"confidence"` // "high" | "medium" | "low"
	Reason     string `json:"reason"`
}

// RankedOption is one scored candidate for a slot.
type RankedOption struct {
	Place          Place   `json:"place"`
	Score          float64 `json:"score"`
	DistanceM      int     `json:"distance_m"`
	Open           *bool   `json:"open"`
	OpenConfidence string  `json:"open_confidence"`
	OpenReason     string  `json:"open_reason"`
}

// FilledSlot is a slot with its top-ranked options plus the selector's pick.
type FilledSlot struct {
	Slot
	Options          []RankedOption `json:"options"`
	SelectedPlaceIDs []string       `json:"selected_place_ids"`
	WhyNow           string         `json:"why_now"`
}

// Stop is the materialized selection for one slot.
type Stop struct {
	OrderIndex     int           `json:"order_index"`
	SlotID         string        `json:"slot_id"`
	SlotTitle      string        `json:"slot_title"`
	SlotRole       string        `json:"slot_role"`
	WhyNow         string        `json:"why_now"`
	PlaceID        string        `json:"place_id"`
	Name           string        `json:"name"`
	Lat            float64       `json:"lat"`
	Lng            float64       `json:"lng"`
	Category       string        `json:"category"`
	Start          time.Time     `json:"start"`
	DurationMin    int           `json:"duration_min"`
	OpenStatus     *bool         `json:"open_status"`
	OpenConfidence string        `json:"open_confidence"`
	OpenReason     string        `json:"open_reason"`
	OpeningHours   *OpeningHours `json:"opening_hours,omitempty"`
	PlaceTypes     []string      `json:"place_types,omitempty"`
	BusinessStatus string        `json:"business_status,omitempty"`
	Rating         float64       `json:"rating,omitempty"`
	Popularity     int           `json:"popularity,omitempty"`
	PhotoReference string        `json:"photo_reference,omitempty"`
}

// RouteMode travel-leg modes.
var RouteModes = []string{"walk", "bike", "drive"}

// Route is one mode's directions result between two stops.
type Route struct {
	DistanceM   int    `json:"distance_m"`
	DurationSec int    `json:"duration_sec"`
	Polyline    string `json:"polyline,omitempty"`
}

// Leg connects two consecutive stops with per-mode routes and a
// recommendation derived from walking distance and constraints.
type Leg struct {
	FromStopID         uuid.UUID        `json:"from_stop_id"`
	ToStopID           uuid.UUID        `json:"to_stop_id"`
	Modes              map[string]Route `json:"modes"`
	RecommendedMode    string           `json:"recommended_mode"`
	RecommendedDistM   int              `json:"recommended_distance_m"`
	RecommendedDurSec  int              `json:"recommended_duration_sec"`
}

// PlanDebug is diagnostic metadata attached to every build.
type PlanDebug struct {
	Engine            string  `json:"engine"`
	Template          string  `json:"template"`
	Intent            string  `json:"intent"`
	Daypart           string  `json:"daypart"`
	SlotCount         int     `json:"slot_count"`
	DurationHours     float64 `json:"duration_hours"`
	Energy            string  `json:"energy"`
	WeatherConfidence string  `json:"weather_confidence"`
}

// PlanResult is the in-memory output of one engine run, before persistence.
type PlanResult struct {
	Slots       []FilledSlot     `json:"slots"`
	ChosenStops []Stop           `json:"chosen_stops"`
	Legs        []Leg            `json:"legs"`
	Weather     *WeatherSnapshot `json:"weather,omitempty"`
	Debug       PlanDebug        `json:"debug"`
}

// Plan is the persisted plan row.
type Plan struct {
	ID                   uuid.UUID        `json:"id"`
	UserID               uuid.UUID        `json:"user_id"`
	Status               string           `json:"status"`
	StartTimeUTC         time.Time        `json:"start_time_utc"`
	EndTimeUTC           *time.Time       `json:"end_time_utc,omitempty"`
	Inputs               PlanInputs       `json:"inputs"`
	WeatherSnapshot      *WeatherSnapshot `json:"weather_snapshot,omitempty"`
	OptimizationMetadata map[string]any   `json:"optimization_metadata,omitempty"`
	GenerationMethod     string           `json:"generation_method,omitempty"` // "llm" | "fallback"
	LLMAttempts          int              `json:"llm_attempts"`
	LastErrorCode        string           `json:"last_error_code,omitempty"`
	LastErrorContext     string           `json:"last_error_context,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// StopRow is a persisted stop with its database identity.
type StopRow struct {
	ID     uuid.UUID `json:"id"`
	PlanID uuid.UUID `json:"plan_id"`
	Stop

	WhenSelection string `json:"when_selection,omitempty"`
	ClosedWarning bool   `json:"closed_warning"`
	ClosedReason  string `json:"closed_reason,omitempty"`
	HoursUnknown  bool   `json:"hours_unknown"`
}

// LegRow is a persisted leg with its database identity.
type LegRow struct {
	ID     uuid.UUID `json:"id"`
	PlanID uuid.UUID `json:"plan_id"`
	Leg
}
