package plans

import (
	"time"

	"github.com/nowa-app/planner-api/internal/types"
)

// PlanResponse is the API shape of a plan with its stops and legs.
// Times are presented in the plan's timezone.
type PlanResponse struct {
	ID                   string                 `json:"id"`
	Status               string                 `json:"status"`
	CityName             string                 `json:"city_name"`
	StartTime            string                 `json:"start_time"`
	EndTime              string                 `json:"end_time,omitempty"`
	Timezone             string                 `json:"timezone"`
	Inputs               types.PlanInputs       `json:"inputs"`
	Weather              *types.WeatherSnapshot `json:"weather,omitempty"`
	GenerationMethod     string                 `json:"generation_method,omitempty"`
	LLMAttempts          int                    `json:"llm_attempts"`
	LastErrorCode        string                 `json:"last_error_code,omitempty"`
	OptimizationMetadata map[string]any         `json:"optimization_metadata,omitempty"`
	Stops                []StopResponse         `json:"stops"`
	Legs                 []LegResponse          `json:"legs"`
	CreatedAt            string                 `json:"created_at"`
	UpdatedAt            string                 `json:"updated_at"`
}

type StopResponse struct {
	ID             string   `json:"id"`
	OrderIndex     int      `json:"order_index"`
	SlotID         string   `json:"slot_id"`
	SlotTitle      string   `json:"slot_title"`
	SlotRole       string   `json:"slot_role"`
	WhyNow         string   `json:"why_now,omitempty"`
	PlaceID        string   `json:"place_id"`
	Name           string   `json:"name"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Category       string   `json:"category"`
	StartTime      string   `json:"start_time"`
	DurationMin    int      `json:"duration_min"`
	Open           *bool    `json:"open"`
	OpenConfidence string   `json:"open_confidence,omitempty"`
	OpenReason     string   `json:"open_reason,omitempty"`
	ClosedWarning  bool     `json:"closed_warning"`
	ClosedReason   string   `json:"closed_reason,omitempty"`
	HoursUnknown   bool     `json:"hours_unknown"`
	PlaceTypes     []string `json:"place_types,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	Popularity     int      `json:"popularity,omitempty"`
	PhotoReference string   `json:"photo_reference,omitempty"`
}

type LegResponse struct {
	ID                string                 `json:"id"`
	FromStopID        string                 `json:"from_stop_id"`
	ToStopID          string                 `json:"to_stop_id"`
	Modes             map[string]types.Route `json:"modes"`
	RecommendedMode   string                 `json:"recommended_mode"`
	RecommendedDistM  int                    `json:"recommended_distance_m"`
	RecommendedDurSec int                    `json:"recommended_duration_sec"`
}

// PlanCreatedResponse acknowledges an accepted plan request.
type PlanCreatedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func ToPlanCreatedResponse(plan *types.Plan) PlanCreatedResponse {
	return PlanCreatedResponse{ID: plan.ID.String(), Status: plan.Status}
}

func ToPlanResponse(details *PlanDetails) PlanResponse {
	plan := details.Plan
	timezone := plan.Inputs.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	resp := PlanResponse{
		ID:                   plan.ID.String(),
		Status:               plan.Status,
		CityName:             plan.Inputs.CityName,
		StartTime:            plan.StartTimeUTC.In(loc).Format(time.RFC3339),
		Timezone:             timezone,
		Inputs:               plan.Inputs,
		Weather:              plan.WeatherSnapshot,
		GenerationMethod:     plan.GenerationMethod,
		LLMAttempts:          plan.LLMAttempts,
		LastErrorCode:        plan.LastErrorCode,
		OptimizationMetadata: plan.OptimizationMetadata,
		Stops:                make([]StopResponse, 0, len(details.Stops)),
		Legs:                 make([]LegResponse, 0, len(details.Legs)),
		CreatedAt:            plan.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            plan.UpdatedAt.Format(time.RFC3339),
	}
	if plan.EndTimeUTC != nil {
		resp.EndTime = plan.EndTimeUTC.In(loc).Format(time.RFC3339)
	}
	for _, stop := range details.Stops {
		resp.Stops = append(resp.Stops, toStopResponse(stop, loc))
	}
	for _, leg := range details.Legs {
		resp.Legs = append(resp.Legs, toLegResponse(leg))
	}
	return resp
}

func toStopResponse(row types.StopRow, loc *time.Location) StopResponse {
	return StopResponse{
		ID:             row.ID.String(),
		OrderIndex:     row.OrderIndex,
		SlotID:         row.SlotID,
		SlotTitle:      row.SlotTitle,
		SlotRole:       row.SlotRole,
		WhyNow:         row.WhyNow,
		PlaceID:        row.PlaceID,
		Name:           row.Name,
		Lat:            row.Lat,
		Lng:            row.Lng,
		Category:       row.Category,
		StartTime:      row.Start.In(loc).Format(time.RFC3339),
		DurationMin:    row.DurationMin,
		Open:           row.OpenStatus,
		OpenConfidence: row.OpenConfidence,
		OpenReason:     row.OpenReason,
		ClosedWarning:  row.ClosedWarning,
		ClosedReason:   row.ClosedReason,
		HoursUnknown:   row.HoursUnknown,
		PlaceTypes:     row.PlaceTypes,
		Rating:         row.Rating,
		Popularity:     row.Popularity,
		PhotoReference: row.PhotoReference,
	}
}

func toLegResponse(row types.LegRow) LegResponse {
	return LegResponse{
		ID:                row.ID.String(),
		FromStopID:        row.FromStopID.String(),
		ToStopID:          row.ToStopID.String(),
		Modes:             row.Modes,
		RecommendedMode:   row.RecommendedMode,
		RecommendedDistM:  row.RecommendedDistM,
		RecommendedDurSec: row.RecommendedDurSec,
	}
}
