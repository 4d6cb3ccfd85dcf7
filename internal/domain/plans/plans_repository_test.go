package plans

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowa-app/planner-api/internal/types"
)

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &RepositoryImpl{logger: testLogger(), pgpool: mock}, mock
}

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestRepositoryCreatePlan(t *testing.T) {
	repo, mock := newMockRepo(t)
	plan := testPlan(types.PlanStatusDraft)

	mock.ExpectExec("INSERT INTO plans").
		WithArgs(plan.ID, plan.UserID, "Munich", types.PlanStatusDraft,
			pgxmock.AnyArg(), "Europe/Berlin", pgxmock.AnyArg(), 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.CreatePlan(context.Background(), plan))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetPlan(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()
	userID := uuid.New()
	created := time.Date(2026, 8, 20, 17, 0, 0, 0, time.UTC)
	inputsJSON := []byte(`{"city_name":"Munich","user_location":{"lat":48.1,"lng":11.5}}`)
	weatherJSON := []byte(`{"temp":6,"feels_like":4,"condition":"Rain","is_raining":true,"confidence":"high"}`)

	mock.ExpectQuery("SELECT (.+) FROM plans").
		WithArgs(planID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "status", "start_time_utc", "end_time_utc", "inputs_json",
			"weather_snapshot_json", "optimization_metadata", "generation_method",
			"llm_attempts", "last_error_code", "last_error_context", "created_at", "updated_at",
		}).AddRow(
			planID, userID, types.PlanStatusReady, created, nil, inputsJSON,
			weatherJSON, nil, strPtr("llm"),
			2, nil, nil, created, created,
		))

	plan, err := repo.GetPlan(context.Background(), planID)
	require.NoError(t, err)
	assert.Equal(t, planID, plan.ID)
	assert.Equal(t, types.PlanStatusReady, plan.Status)
	assert.Equal(t, "Munich", plan.Inputs.CityName)
	require.NotNil(t, plan.WeatherSnapshot)
	assert.True(t, plan.WeatherSnapshot.IsRaining)
	assert.Equal(t, "llm", plan.GenerationMethod)
	assert.Equal(t, 2, plan.LLMAttempts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetPlan_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM plans").
		WithArgs(planID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetPlan(context.Background(), planID)
	require.ErrorIs(t, err, types.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdatePlanStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()

	mock.ExpectExec("UPDATE plans SET status").
		WithArgs(types.PlanStatusBuilding, pgxmock.AnyArg(), planID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePlanStatus(context.Background(), planID, StatusUpdate{Status: types.PlanStatusBuilding})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdatePlanStatus_OptionalFields(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()
	end := time.Date(2026, 8, 20, 22, 0, 0, 0, time.UTC)

	// status, updated_at, generation_method, llm_attempts, end_time_utc,
	// weather_snapshot_json, optimization_metadata, then the WHERE arg.
	mock.ExpectExec("UPDATE plans SET status").
		WithArgs(types.PlanStatusReady, pgxmock.AnyArg(), "llm", 2, end,
			pgxmock.AnyArg(), pgxmock.AnyArg(), planID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePlanStatus(context.Background(), planID, StatusUpdate{
		Status:               types.PlanStatusReady,
		GenerationMethod:     strPtr("llm"),
		LLMAttempts:          intPtr(2),
		EndTimeUTC:           &end,
		WeatherSnapshot:      &types.WeatherSnapshot{Temp: 6, Condition: "Rain"},
		OptimizationMetadata: map[string]any{"debug": "v3"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdatePlanStatus_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()

	mock.ExpectExec("UPDATE plans SET status").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePlanStatus(context.Background(), planID, StatusUpdate{Status: types.PlanStatusReady})
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestRepositoryAppendAudit(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()

	mock.ExpectExec("UPDATE plans").
		WithArgs(planID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.AppendAudit(context.Background(), planID, map[string]any{"action": "swap_stop"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryReplacePlanContents(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()
	stopID1 := uuid.New()
	stopID2 := uuid.New()
	start := time.Date(2026, 8, 20, 20, 5, 0, 0, time.UTC)

	stops := []types.Stop{
		{OrderIndex: 0, SlotID: "drinks", SlotTitle: "Drinks", SlotRole: types.RoleAnchor,
			PlaceID: "bar1", Name: "Bar", Category: "bar", Lat: 48.14, Lng: 11.58,
			Start: start, DurationMin: 75, OpenStatus: boolPtr(true), OpenConfidence: "high"},
		{OrderIndex: 1, SlotID: "late_food", SlotTitle: "Food", SlotRole: types.RoleReward,
			PlaceID: "food1", Name: "Imbiss", Category: "street_food", Lat: 48.141, Lng: 11.581,
			Start: start.Add(75 * time.Minute), DurationMin: 40},
	}
	legs := []LegDraft{{
		FromIndex: 0, ToIndex: 1,
		Modes:           map[string]types.Route{"walk": {DistanceM: 800, DurationSec: 600}},
		RecommendedMode: "walk", RecommendedDistM: 800, RecommendedDurSec: 600,
	}}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM plan_legs").WithArgs(planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM plan_stops").WithArgs(planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectQuery("INSERT INTO plan_stops").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(stopID1))
	mock.ExpectQuery("INSERT INTO plan_stops").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(stopID2))
	mock.ExpectExec("INSERT INTO plan_legs").
		WithArgs(planID, stopID1, stopID2, pgxmock.AnyArg(), "walk", 800, 600).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.ReplacePlanContents(context.Background(), planID, stops, legs, types.WhenNow)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryReplacePlanContents_UnknownLegIndex(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM plan_legs").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM plan_stops").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := repo.ReplacePlanContents(context.Background(), planID, nil,
		[]LegDraft{{FromIndex: 0, ToIndex: 1}}, types.WhenNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stop index")
}

func TestRepositoryGetStops(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()
	stopID := uuid.New()
	start := time.Date(2026, 8, 20, 20, 5, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM plan_stops").
		WithArgs(planID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "plan_id", "order_index", "slot_id", "slot_title", "slot_role", "why_now",
			"place_id", "place_name", "category", "lat", "lng", "start_time", "duration_min",
			"when_selection", "open_at_planned_time", "open_confidence", "open_reason",
			"closed_warning", "closed_reason", "hours_unknown",
			"opening_hours", "place_types", "business_status", "rating", "popularity", "photo_reference",
		}).AddRow(
			stopID, planID, 0, "drinks", "Drinks", types.RoleAnchor, strPtr("Buen timing"),
			"bar1", "Bar", "bar", 48.14, 11.58, start, 75,
			strPtr(types.WhenNow), boolPtr(true), strPtr("high"), strPtr("open until 02:00"),
			false, nil, false,
			nil, []byte(`["bar","point_of_interest"]`), strPtr("OPERATIONAL"),
			floatPtr(4.5), intPtr(900), nil,
		))

	stops, err := repo.GetStops(context.Background(), planID)
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, stopID, stops[0].ID)
	assert.Equal(t, "Buen timing", stops[0].WhyNow)
	assert.Equal(t, types.WhenNow, stops[0].WhenSelection)
	require.NotNil(t, stops[0].OpenStatus)
	assert.True(t, *stops[0].OpenStatus)
	assert.False(t, stops[0].HoursUnknown)
	assert.Equal(t, []string{"bar", "point_of_interest"}, stops[0].PlaceTypes)
	assert.Equal(t, 4.5, stops[0].Rating)
	assert.Equal(t, 900, stops[0].Popularity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetLegs(t *testing.T) {
	repo, mock := newMockRepo(t)
	planID := uuid.New()
	legID := uuid.New()
	fromID := uuid.New()
	toID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM plan_legs").
		WithArgs(planID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "plan_id", "from_stop_id", "to_stop_id", "modes_json",
			"recommended_mode", "recommended_distance_m", "recommended_duration_sec",
		}).AddRow(
			legID, planID, fromID, toID, []byte(`{"walk":{"distance_m":800,"duration_sec":600}}`),
			strPtr("walk"), intPtr(800), intPtr(600),
		))

	legs, err := repo.GetLegs(context.Background(), planID)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, "walk", legs[0].RecommendedMode)
	assert.Equal(t, 800, legs[0].Modes["walk"].DistanceM)
	assert.Equal(t, 600, legs[0].RecommendedDurSec)
	require.NoError(t, mock.ExpectationsWereMet())
}
