// Package planner is the plan-generation engine: it turns validated inputs
// plus a local timestamp and a weather snapshot into filled slots, chosen
// stops and a deterministic visiting order. Legs and persistence live in the
// plans domain service.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nowa-app/planner-api/internal/llm"
	"github.com/nowa-app/planner-api/internal/planner/presets"
	"github.com/nowa-app/planner-api/internal/planner/scoring"
	"github.com/nowa-app/planner-api/internal/planner/temporal"
	"github.com/nowa-app/planner-api/internal/providers"
	"github.com/nowa-app/planner-api/internal/types"
)

const (
	candidateRadiusM = 2500
	enrichLimit      = 25
	optionsPerSlot   = 10
)

// CandidateSource is the provider surface the engine needs.
type CandidateSource interface {
	Candidates(ctx context.Context, q providers.CandidateQuery) ([]types.Place, error)
	Weather(ctx context.Context, location types.Location) *types.WeatherSnapshot
}

// SlotFiller resolves selections and why_now copy for ranked slots.
type SlotFiller interface {
	Fill(ctx context.Context, sel llm.SelectionContext, ranked []types.FilledSlot) []types.FilledSlot
}

// Engine orchestrates one plan build.
type Engine struct {
	source   CandidateSource
	selector SlotFiller
	logger   *slog.Logger
}

func NewEngine(source CandidateSource, selector SlotFiller, logger *slog.Logger) *Engine {
	return &Engine{source: source, selector: selector, logger: logger}
}

// BuildContext is the situational input of a build: the local timestamp the
// plan starts from and an optional pre-fetched weather snapshot.
type BuildContext struct {
	DTLocal time.Time
	Weather *types.WeatherSnapshot
}

// Generate runs the full build: template choice, climate-adjusted slots,
// candidate ranking, selection and stop ordering. Legs are left empty; the
// plans service fills them with directions.
func (e *Engine) Generate(ctx context.Context, inputs types.PlanInputs, bctx BuildContext) (*types.PlanResult, error) {
	ctx, span := otel.Tracer("Planner").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("city", inputs.CityName),
		attribute.String("intent", inputs.Intent),
	))
	defer span.End()

	if strings.TrimSpace(inputs.CityName) == "" {
		return nil, fmt.Errorf("city_name is required: %w", types.ErrInvalidInput)
	}
	if inputs.UserLocation == nil {
		return nil, fmt.Errorf("user_location with lat/lng is required: %w", types.ErrInvalidInput)
	}

	intent := strings.ToLower(strings.TrimSpace(inputs.Intent))
	if intent == "" {
		intent = "chill"
	}
	when := strings.ToLower(strings.TrimSpace(inputs.WhenSelection))
	if when == "" {
		when = types.WhenNow
	}
	discoveryMode := strings.ToLower(strings.TrimSpace(inputs.DiscoveryMode))
	if discoveryMode == "" {
		discoveryMode = types.DiscoveryLocal
	}

	hour := bctx.DTLocal.Hour()
	daypart := temporal.Daypart(bctx.DTLocal)
	energy := presets.ResolveEnergy(inputs.Energy)

	weather := inputs.Weather
	if weather == nil {
		weather = bctx.Weather
	}
	if weather == nil {
		weather = e.source.Weather(ctx, *inputs.UserLocation)
	}

	key, specs := presets.ChooseTemplate(intent, when, hour, inputs.DurationHours, energy)
	e.logger.Info("template chosen",
		slog.String("template", key),
		slog.String("intent", intent),
		slog.String("daypart", daypart),
		slog.Int("slots", len(specs)))

	slots := buildSlots(bctx.DTLocal, specs, *weather, inputs.Constraints)

	ranked, err := e.rankSlots(ctx, slots, inputs.CityName, *inputs.UserLocation, daypart, discoveryMode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	filled := e.selector.Fill(ctx, llm.SelectionContext{
		Hour:    hour,
		Daypart: daypart,
		Weather: weather,
	}, ranked)

	stops := materializeStops(filled)
	stops = orderStopsNearestNeighbor(stops)

	result := &types.PlanResult{
		Slots:       filled,
		ChosenStops: stops,
		Legs:        []types.Leg{},
		Weather:     weather,
		Debug: types.PlanDebug{
			Engine:            "v3",
			Template:          key,
			Intent:            intent,
			Daypart:           daypart,
			SlotCount:         len(filled),
			DurationHours:     inputs.DurationHours,
			Energy:            energy,
			WeatherConfidence: weather.Confidence,
		},
	}

	e.logger.Info("plan generated",
		slog.String("template", key),
		slog.Int("slots", len(filled)),
		slog.Int("stops", len(stops)))
	span.SetStatus(codes.Ok, "generated")
	return result, nil
}

// hostileSkipSlots are the outdoor slot ids removed entirely when the
// weather profile is hostile.
var hostileSkipSlots = map[string]bool{
	"photo_stop":     true,
	"walk":           true,
	"viewpoint_walk": true,
	"scenic_walk":    true,
}

// buildSlots instantiates the template against the clock and the climate.
// Weather changes structure here: hostile profiles drop outdoor slots and
// inject indoor constraints, very cold shortens browsing slots and promotes
// hotel_bar, pleasant weather stretches outdoor slots.
func buildSlots(dtLocal time.Time, specs []types.SlotSpec, weather types.WeatherSnapshot, userConstraints []string) []types.Slot {
	profile := temporal.BuildWeatherProfile(weather)

	var climateConstraints []string
	if profile.Hostile() {
		climateConstraints = []string{"indoor_only", "prefer_short_legs"}
	}

	cursor := dtLocal.Add(5 * time.Minute)
	var slots []types.Slot

	for _, spec := range specs {
		if profile.Hostile() && hostileSkipSlots[spec.SlotID] {
			continue
		}

		duration := spec.DurationMin
		if profile.VeryCold && (spec.SlotID == "shopping_cluster" || spec.SlotID == "explore_area") {
			duration = int(float64(duration) * 0.75)
			if duration < 60 {
				duration = 60
			}
		}
		if profile.Pleasant && (spec.SlotID == "photo_stop" || spec.SlotID == "walk") {
			duration = int(float64(duration) * 1.2)
		}

		constraints := mergeUnique(spec.Constraints, climateConstraints, userConstraints)

		categories := make([]string, len(spec.Categories))
		copy(categories, spec.Categories)
		if profile.VeryCold && spec.SlotID == "drinks" {
			categories = promoteCategory(categories, "hotel_bar")
		}

		slots = append(slots, types.Slot{
			SlotID:      spec.SlotID,
			Title:       spec.Title,
			Start:       cursor,
			End:         cursor.Add(time.Duration(duration) * time.Minute),
			DurationMin: duration,
			Categories:  categories,
			Constraints: constraints,
			Role:        spec.Role,
		})
		cursor = cursor.Add(time.Duration(duration) * time.Minute)
	}
	return slots
}

// mergeUnique concatenates the lists preserving first-seen order.
func mergeUnique(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// promoteCategory moves cat to the front if present; absent is a no-op.
func promoteCategory(categories []string, cat string) []string {
	for i, c := range categories {
		if c == cat {
			copy(categories[1:i+1], categories[:i])
			categories[0] = cat
			return categories
		}
	}
	return categories
}

// rankSlots fetches, filters and scores candidates per slot, keeping the
// top options in deterministic order. Slots are processed in template
// order; equal scores keep provider order.
func (e *Engine) rankSlots(ctx context.Context, slots []types.Slot, city string, userLocation types.Location, daypart, discoveryMode string) ([]types.FilledSlot, error) {
	ranked := make([]types.FilledSlot, 0, len(slots))

	for _, slot := range slots {
		candidates, err := e.source.Candidates(ctx, providers.CandidateQuery{
			City:         city,
			UserLocation: userLocation,
			Categories:   slot.Categories,
			RadiusM:      candidateRadiusM,
			Enrich:       true,
			EnrichLimit:  enrichLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("candidates for slot %s: %w", slot.SlotID, err)
		}

		var options []types.RankedOption
		for _, place := range candidates {
			openStatus := temporal.ComputeOpenStatus(place, slot.Start, slot.DurationMin)
			if openStatus.IsOpen != nil && !*openStatus.IsOpen {
				continue
			}

			distM := providers.DistanceM(userLocation, types.Location{Lat: place.Lat, Lng: place.Lng})
			score := scoring.ScorePlaceForSlot(place, slot.Categories, daypart, discoveryMode, slot.Constraints, openStatus, distM)

			options = append(options, types.RankedOption{
				Place:          place,
				Score:          score,
				DistanceM:      int(distM),
				Open:           openStatus.IsOpen,
				OpenConfidence: openStatus.Confidence,
				OpenReason:     openStatus.Reason,
			})
		}

		sort.SliceStable(options, func(i, j int) bool {
			return options[i].Score > options[j].Score
		})
		if len(options) > optionsPerSlot {
			options = options[:optionsPerSlot]
		}

		e.logger.Info("slot ranked",
			slog.String("slot_id", slot.SlotID),
			slog.Int("candidates", len(candidates)),
			slog.Int("options", len(options)))

		ranked = append(ranked, types.FilledSlot{Slot: slot, Options: options})
	}
	return ranked, nil
}

// materializeStops turns filled slots into stops, one per slot with a valid
// selection, with dense order indexes.
func materializeStops(filled []types.FilledSlot) []types.Stop {
	var stops []types.Stop

	for _, slot := range filled {
		if len(slot.SelectedPlaceIDs) == 0 {
			continue
		}
		chosenID := slot.SelectedPlaceIDs[0]

		var chosen *types.RankedOption
		for i := range slot.Options {
			if slot.Options[i].Place.PlaceID == chosenID {
				chosen = &slot.Options[i]
				break
			}
		}
		if chosen == nil {
			continue
		}

		p := chosen.Place
		stops = append(stops, types.Stop{
			OrderIndex:     len(stops),
			SlotID:         slot.SlotID,
			SlotTitle:      slot.Title,
			SlotRole:       slot.Role,
			WhyNow:         slot.WhyNow,
			PlaceID:        p.PlaceID,
			Name:           p.Name,
			Lat:            p.Lat,
			Lng:            p.Lng,
			Category:       p.Category,
			Start:          slot.Start,
			DurationMin:    slot.DurationMin,
			OpenStatus:     chosen.Open,
			OpenConfidence: chosen.OpenConfidence,
			OpenReason:     chosen.OpenReason,
			OpeningHours:   p.OpeningHours,
			PlaceTypes:     p.Types,
			BusinessStatus: p.BusinessStatus,
			Rating:         p.Rating,
			Popularity:     p.UserRatingsTotal,
			PhotoReference: p.PhotoReference,
		})
	}
	return stops
}

// orderStopsNearestNeighbor greedily chains stops by planar squared
// distance starting from the first materialized stop, then re-densifies
// the order indexes.
func orderStopsNearestNeighbor(stops []types.Stop) []types.Stop {
	if len(stops) <= 2 {
		return reindex(stops)
	}

	remaining := make([]types.Stop, len(stops))
	copy(remaining, stops)

	ordered := []types.Stop{remaining[0]}
	remaining = remaining[1:]

	for len(remaining) > 0 {
		last := ordered[len(ordered)-1]
		best := 0
		bestD := dist2(last, remaining[0])
		for i := 1; i < len(remaining); i++ {
			if d := dist2(last, remaining[i]); d < bestD {
				best, bestD = i, d
			}
		}
		ordered = append(ordered, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return reindex(ordered)
}

func dist2(a, b types.Stop) float64 {
	dx := a.Lat - b.Lat
	dy := a.Lng - b.Lng
	return dx*dx + dy*dy
}

func reindex(stops []types.Stop) []types.Stop {
	for i := range stops {
		stops[i].OrderIndex = i
	}
	return stops
}
