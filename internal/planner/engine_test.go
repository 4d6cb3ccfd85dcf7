package planner

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowa-app/planner-api/internal/llm"
	"github.com/nowa-app/planner-api/internal/providers"
	"github.com/nowa-app/planner-api/internal/types"
)

type fakeSource struct {
	weather *types.WeatherSnapshot
	places  map[string][]types.Place
	queries []providers.CandidateQuery
}

func (f *fakeSource) Candidates(_ context.Context, q providers.CandidateQuery) ([]types.Place, error) {
	f.queries = append(f.queries, q)
	if len(q.Categories) == 0 {
		return nil, nil
	}
	return f.places[q.Categories[0]], nil
}

func (f *fakeSource) Weather(context.Context, types.Location) *types.WeatherSnapshot {
	if f.weather != nil {
		return f.weather
	}
	return &types.WeatherSnapshot{Temp: 18, FeelsLike: 18, Condition: "clear", Confidence: "high"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testEngine(source *fakeSource) *Engine {
	return NewEngine(source, llm.NewSelector(nil, testLogger()), testLogger())
}

func indoorPlace(id, category string) types.Place {
	indoor := true
	return types.Place{
		PlaceID:          id,
		Name:             "Place " + id,
		Lat:              48.14,
		Lng:              11.58,
		Rating:           4.5,
		UserRatingsTotal: 900,
		Category:         category,
		Types:            []string{category},
		IsIndoor:         &indoor,
	}
}

func munichInputs() types.PlanInputs {
	return types.PlanInputs{
		CityName:      "Munich",
		UserLocation:  &types.Location{Lat: 48.137, Lng: 11.575},
		Intent:        "chill",
		WhenSelection: types.WhenTonight,
		Energy:        2,
	}
}

func TestGenerate_ValidatesInputs(t *testing.T) {
	e := testEngine(&fakeSource{})
	dt := time.Date(2026, 8, 19, 19, 0, 0, 0, time.UTC)

	_, err := e.Generate(context.Background(), types.PlanInputs{
		UserLocation: &types.Location{Lat: 1, Lng: 2},
	}, BuildContext{DTLocal: dt})
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = e.Generate(context.Background(), types.PlanInputs{CityName: "Munich"}, BuildContext{DTLocal: dt})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestGenerate_ChillEveningColdRain(t *testing.T) {
	source := &fakeSource{places: map[string][]types.Place{
		"hotel_bar": {indoorPlace("bar1", "hotel_bar")},
		"late_food": {indoorPlace("snack1", "late_food")},
	}}
	e := testEngine(source)

	dt := time.Date(2026, 8, 19, 19, 0, 0, 0, time.UTC)
	cold := &types.WeatherSnapshot{Temp: 3, FeelsLike: 1, Condition: "rain", IsRaining: true, Confidence: "high"}

	result, err := e.Generate(context.Background(), munichInputs(), BuildContext{DTLocal: dt, Weather: cold})
	require.NoError(t, err)

	assert.Equal(t, "chill_evening", result.Debug.Template)
	require.Len(t, result.Slots, 2)

	drinks := result.Slots[0]
	assert.Equal(t, "drinks", drinks.SlotID)
	// Very cold moves hotel_bar to the front.
	assert.Equal(t, "hotel_bar", drinks.Categories[0])
	assert.Contains(t, drinks.Constraints, "indoor_only")
	assert.Contains(t, drinks.Constraints, "prefer_short_legs")
	assert.Contains(t, result.Slots[1].Constraints, "indoor_only")

	require.Len(t, result.ChosenStops, 2)
	assert.Equal(t, "bar1", result.ChosenStops[0].PlaceID)
	assert.Equal(t, "Mejor indoor por frío", result.ChosenStops[0].WhyNow)
	assert.Equal(t, []types.Leg{}, result.Legs)
	assert.Equal(t, "high", result.Debug.WeatherConfidence)
}

func TestGenerate_MuseumAfterDarkReroutes(t *testing.T) {
	source := &fakeSource{places: map[string][]types.Place{
		"cultural_bar": {indoorPlace("c1", "cultural_bar")},
		"dessert":      {indoorPlace("d1", "dessert")},
	}}
	e := testEngine(source)

	inputs := munichInputs()
	inputs.Intent = "museum"
	dt := time.Date(2026, 8, 19, 20, 0, 0, 0, time.UTC)

	result, err := e.Generate(context.Background(), inputs, BuildContext{DTLocal: dt})
	require.NoError(t, err)

	assert.Equal(t, "culture_alt_late", result.Debug.Template)
	require.NotEmpty(t, result.Slots)
	assert.Equal(t, "culture_alt", result.Slots[0].SlotID)
	assert.Equal(t, []string{"cultural_bar", "jazz_bar", "cinema", "theater"}, result.Slots[0].Categories)
}

func TestGenerate_SlotTimelineIsContiguous(t *testing.T) {
	source := &fakeSource{places: map[string][]types.Place{
		"bar":       {indoorPlace("b1", "bar")},
		"late_food": {indoorPlace("f1", "late_food")},
	}}
	e := testEngine(source)

	dt := time.Date(2026, 8, 19, 19, 0, 0, 0, time.UTC)
	result, err := e.Generate(context.Background(), munichInputs(), BuildContext{
		DTLocal: dt,
		Weather: &types.WeatherSnapshot{Temp: 18, FeelsLike: 18, Condition: "clear", Confidence: "high"},
	})
	require.NoError(t, err)
	require.Len(t, result.Slots, 2)

	assert.Equal(t, dt.Add(5*time.Minute), result.Slots[0].Start)
	assert.Equal(t, result.Slots[0].End, result.Slots[1].Start)
	assert.Equal(t, result.Slots[0].Start.Add(75*time.Minute), result.Slots[0].End)
}

func TestBuildSlots_HostileDropsOutdoorSlots(t *testing.T) {
	specs := []types.SlotSpec{
		{SlotID: "shopping_cluster", Title: "shop", DurationMin: 90, Categories: []string{"shopping_area"}, Role: types.RoleAnchor},
		{SlotID: "coffee_break", Title: "coffee", DurationMin: 25, Categories: []string{"cafe"}, Role: types.RoleNice},
		{SlotID: "photo_stop", Title: "photo", DurationMin: 25, Categories: []string{"photo_spot"}, Role: types.RoleOptional},
	}
	dt := time.Date(2026, 8, 19, 11, 0, 0, 0, time.UTC)
	snow := types.WeatherSnapshot{Temp: 0, FeelsLike: -3, Condition: "snow", IsSnowing: true}

	slots := buildSlots(dt, specs, snow, nil)

	require.Len(t, slots, 2)
	assert.Equal(t, "shopping_cluster", slots[0].SlotID)
	assert.Equal(t, "coffee_break", slots[1].SlotID)
	// Very cold shrinks browsing slots with a one-hour floor.
	assert.Equal(t, 67, slots[0].DurationMin)
	assert.Contains(t, slots[0].Constraints, "indoor_only")
}

func TestBuildSlots_PleasantStretchesOutdoorSlots(t *testing.T) {
	specs := []types.SlotSpec{
		{SlotID: "photo_stop", Title: "photo", DurationMin: 25, Categories: []string{"photo_spot"}, Role: types.RoleOptional},
	}
	dt := time.Date(2026, 8, 19, 11, 0, 0, 0, time.UTC)
	mild := types.WeatherSnapshot{Temp: 18, FeelsLike: 18, Condition: "clear"}

	slots := buildSlots(dt, specs, mild, nil)

	require.Len(t, slots, 1)
	assert.Equal(t, 30, slots[0].DurationMin)
	assert.NotContains(t, slots[0].Constraints, "indoor_only")
}

func TestBuildSlots_ConstraintMergeKeepsFirstSeenOrder(t *testing.T) {
	specs := []types.SlotSpec{
		{SlotID: "drinks", Title: "drinks", DurationMin: 60,
			Categories:  []string{"bar"},
			Constraints: []string{"indoor", "quiet"}, Role: types.RoleAnchor},
	}
	dt := time.Date(2026, 8, 19, 19, 0, 0, 0, time.UTC)
	rain := types.WeatherSnapshot{Temp: 10, FeelsLike: 8, Condition: "rain", IsRaining: true}

	slots := buildSlots(dt, specs, rain, []string{"no_walk", "quiet"})

	require.Len(t, slots, 1)
	assert.Equal(t,
		[]string{"indoor", "quiet", "indoor_only", "prefer_short_legs", "no_walk"},
		slots[0].Constraints)
}

func TestRankSlots_DropsClosedKeepsOvernight(t *testing.T) {
	// Wednesday 22:30 + 60 min. A is open 18:00 to 02:00 overnight, B
	// closes at 22:00.
	overnight := indoorPlace("a", "bar")
	overnight.OpeningHours = &types.OpeningHours{Periods: []types.Period{{
		Open:  types.DayTime{Day: 3, Time: "1800"},
		Close: &types.DayTime{Day: 4, Time: "0200"},
	}}}
	early := indoorPlace("b", "bar")
	early.OpeningHours = &types.OpeningHours{Periods: []types.Period{{
		Open:  types.DayTime{Day: 3, Time: "1800"},
		Close: &types.DayTime{Day: 3, Time: "2200"},
	}}}

	source := &fakeSource{places: map[string][]types.Place{"bar": {overnight, early}}}
	e := testEngine(source)

	start := time.Date(2026, 8, 19, 22, 30, 0, 0, time.UTC)
	slots := []types.Slot{{
		SlotID: "drinks", Title: "drinks", Start: start,
		End: start.Add(time.Hour), DurationMin: 60,
		Categories: []string{"bar"}, Role: types.RoleAnchor,
	}}

	ranked, err := e.rankSlots(context.Background(), slots, "Munich",
		types.Location{Lat: 48.137, Lng: 11.575}, "late", "local")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	require.Len(t, ranked[0].Options, 1)
	assert.Equal(t, "a", ranked[0].Options[0].Place.PlaceID)
	require.NotNil(t, ranked[0].Options[0].Open)
	assert.True(t, *ranked[0].Options[0].Open)
}

func TestRankSlots_KeepsTopTen(t *testing.T) {
	var places []types.Place
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		places = append(places, indoorPlace(id, "bar"))
	}
	source := &fakeSource{places: map[string][]types.Place{"bar": places}}
	e := testEngine(source)

	start := time.Date(2026, 8, 19, 19, 0, 0, 0, time.UTC)
	slots := []types.Slot{{
		SlotID: "drinks", Title: "drinks", Start: start,
		End: start.Add(time.Hour), DurationMin: 60,
		Categories: []string{"bar"}, Role: types.RoleAnchor,
	}}

	ranked, err := e.rankSlots(context.Background(), slots, "Munich",
		types.Location{Lat: 48.137, Lng: 11.575}, "evening", "local")
	require.NoError(t, err)
	assert.Len(t, ranked[0].Options, 10)
}

func TestOrderStopsNearestNeighbor(t *testing.T) {
	stops := []types.Stop{
		{PlaceID: "s0", Lat: 0, Lng: 0},
		{PlaceID: "s3", Lat: 0, Lng: 3},
		{PlaceID: "s1", Lat: 0, Lng: 1},
		{PlaceID: "s2", Lat: 0, Lng: 2},
	}

	ordered := orderStopsNearestNeighbor(stops)

	require.Len(t, ordered, 4)
	assert.Equal(t, []string{"s0", "s1", "s2", "s3"}, []string{
		ordered[0].PlaceID, ordered[1].PlaceID, ordered[2].PlaceID, ordered[3].PlaceID,
	})
	for i, stop := range ordered {
		assert.Equal(t, i, stop.OrderIndex)
	}
}

func TestMaterializeStops_DenseIndexesSkipEmptySlots(t *testing.T) {
	opt := types.RankedOption{Place: indoorPlace("p1", "bar")}
	filled := []types.FilledSlot{
		{Slot: types.Slot{SlotID: "s1", Title: "one"}},
		{
			Slot:             types.Slot{SlotID: "s2", Title: "two", DurationMin: 60},
			Options:          []types.RankedOption{opt},
			SelectedPlaceIDs: []string{"p1"},
			WhyNow:           "Buen timing",
		},
	}

	stops := materializeStops(filled)

	require.Len(t, stops, 1)
	assert.Equal(t, 0, stops[0].OrderIndex)
	assert.Equal(t, "s2", stops[0].SlotID)
	assert.Equal(t, "Buen timing", stops[0].WhyNow)
	assert.Equal(t, 900, stops[0].Popularity)
}

func TestPromoteCategory(t *testing.T) {
	got := promoteCategory([]string{"bar", "wine_bar", "hotel_bar"}, "hotel_bar")
	assert.Equal(t, []string{"hotel_bar", "bar", "wine_bar"}, got)

	unchanged := promoteCategory([]string{"bar", "wine_bar"}, "hotel_bar")
	assert.Equal(t, []string{"bar", "wine_bar"}, unchanged)
}

func TestResolveWhen(t *testing.T) {
	loc := time.UTC
	afternoon := time.Date(2026, 8, 19, 14, 0, 0, 0, loc)
	night := time.Date(2026, 8, 19, 20, 30, 0, 0, loc)

	assert.Equal(t, afternoon, ResolveWhen(afternoon, types.WhenNow))
	assert.Equal(t, time.Date(2026, 8, 19, 16, 0, 0, 0, loc), ResolveWhen(afternoon, types.WhenLaterToday))
	assert.Equal(t, time.Date(2026, 8, 19, 19, 0, 0, 0, loc), ResolveWhen(afternoon, types.WhenTonight))
	assert.Equal(t, time.Date(2026, 8, 20, 10, 0, 0, 0, loc), ResolveWhen(afternoon, types.WhenTomorrow))

	// Past targets collapse to now.
	assert.Equal(t, night, ResolveWhen(night, types.WhenLaterToday))
	assert.Equal(t, night, ResolveWhen(night, types.WhenTonight))
}

func TestResolveStart(t *testing.T) {
	now := time.Date(2026, 8, 19, 14, 0, 0, 0, time.UTC)

	future := now.Add(3 * time.Hour)
	got := ResolveStart(now, types.PlanInputs{StartTime: &future})
	assert.Equal(t, future, got)

	past := now.Add(-time.Hour)
	got = ResolveStart(now, types.PlanInputs{StartTime: &past, WhenSelection: types.WhenTonight})
	assert.Equal(t, now, got)

	got = ResolveStart(now, types.PlanInputs{WhenSelection: types.WhenTonight})
	assert.Equal(t, time.Date(2026, 8, 19, 19, 0, 0, 0, time.UTC), got)
}
