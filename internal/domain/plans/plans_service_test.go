package plans

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowa-app/planner-api/internal/llm"
	"github.com/nowa-app/planner-api/internal/planner"
	"github.com/nowa-app/planner-api/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type fakeRepo struct {
	plan    types.Plan
	planErr error

	created       []types.Plan
	statusUpdates []StatusUpdate
	audits        []map[string]any

	replacedStops []types.Stop
	replacedLegs  []LegDraft
	replacedWhen  string

	stops []types.StopRow
	legs  []types.LegRow
}

func (f *fakeRepo) CreatePlan(_ context.Context, plan types.Plan) error {
	f.created = append(f.created, plan)
	return nil
}

func (f *fakeRepo) GetPlan(_ context.Context, _ uuid.UUID) (types.Plan, error) {
	return f.plan, f.planErr
}

func (f *fakeRepo) UpdatePlanStatus(_ context.Context, _ uuid.UUID, update StatusUpdate) error {
	f.statusUpdates = append(f.statusUpdates, update)
	return nil
}

func (f *fakeRepo) AppendAudit(_ context.Context, _ uuid.UUID, entry map[string]any) error {
	f.audits = append(f.audits, entry)
	return nil
}

func (f *fakeRepo) ReplacePlanContents(_ context.Context, _ uuid.UUID, stops []types.Stop, legs []LegDraft, whenSelection string) error {
	f.replacedStops = stops
	f.replacedLegs = legs
	f.replacedWhen = whenSelection
	return nil
}

func (f *fakeRepo) GetStops(_ context.Context, _ uuid.UUID) ([]types.StopRow, error) {
	return f.stops, nil
}

func (f *fakeRepo) GetLegs(_ context.Context, _ uuid.UUID) ([]types.LegRow, error) {
	return f.legs, nil
}

func (f *fakeRepo) statuses() []string {
	out := make([]string, 0, len(f.statusUpdates))
	for _, u := range f.statusUpdates {
		out = append(out, u.Status)
	}
	return out
}

type fakeGenerator struct {
	calls      int
	failures   int
	err        error
	result     *types.PlanResult
	lastInputs types.PlanInputs
}

func (f *fakeGenerator) Generate(_ context.Context, inputs types.PlanInputs, _ planner.BuildContext) (*types.PlanResult, error) {
	f.calls++
	f.lastInputs = inputs
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGuide struct{}

func (fakeGuide) CityDNA(_ context.Context, city, language string) llm.CityDNA {
	return llm.CityDNA{City: city, Language: language}
}

func (fakeGuide) LocalGuide(_ context.Context, _ llm.GuideInput) llm.LocalGuide {
	return llm.LocalGuide{Headline: "Plan adaptado al clima actual"}
}

type fakeDirections struct {
	routes map[string]types.Route
	errs   map[string]error
}

func (f *fakeDirections) Route(_ context.Context, _, _ types.Location, mode string) (*types.Route, error) {
	if err, ok := f.errs[mode]; ok {
		return nil, err
	}
	route, ok := f.routes[mode]
	if !ok {
		return nil, errors.New("no route")
	}
	return &route, nil
}

func testService(repo Repository, gen PlanGenerator, directions DirectionsSource) (*ServiceImpl, *[]time.Duration) {
	svc := NewServiceImpl(repo, gen, fakeGuide{}, directions, "es", testLogger())
	svc.now = func() time.Time { return time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC) }
	var slept []time.Duration
	svc.sleep = func(d time.Duration) { slept = append(slept, d) }
	return svc, &slept
}

func testPlan(status string) types.Plan {
	return types.Plan{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: status,
		Inputs: types.PlanInputs{
			CityName:      "Munich",
			UserLocation:  &types.Location{Lat: 48.137, Lng: 11.575},
			Timezone:      "Europe/Berlin",
			WhenSelection: types.WhenNow,
		},
	}
}

func testResult() *types.PlanResult {
	start := time.Date(2026, 8, 20, 20, 5, 0, 0, time.UTC)
	return &types.PlanResult{
		Slots: []types.FilledSlot{
			{Slot: types.Slot{SlotID: "drinks", Start: start, End: start.Add(75 * time.Minute)}},
			{Slot: types.Slot{SlotID: "late_food", Start: start.Add(75 * time.Minute), End: start.Add(115 * time.Minute)}},
		},
		ChosenStops: []types.Stop{
			{OrderIndex: 0, SlotID: "drinks", PlaceID: "bar1", Name: "Bar", Lat: 48.14, Lng: 11.58},
			{OrderIndex: 1, SlotID: "late_food", PlaceID: "food1", Name: "Imbiss", Lat: 48.141, Lng: 11.581},
		},
		Weather: &types.WeatherSnapshot{Temp: 6, FeelsLike: 4, Condition: "Rain", IsRaining: true},
		Debug:   types.PlanDebug{Engine: "v3", Template: "chill_evening"},
	}
}

func TestCreatePlan_Validation(t *testing.T) {
	svc, _ := testService(&fakeRepo{}, &fakeGenerator{}, nil)
	ctx := context.Background()

	_, err := svc.CreatePlan(ctx, uuid.New(), types.PlanInputs{UserLocation: &types.Location{}})
	require.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = svc.CreatePlan(ctx, uuid.New(), types.PlanInputs{CityName: "Munich"})
	require.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = svc.CreatePlan(ctx, uuid.New(), types.PlanInputs{
		CityName:     "Munich",
		UserLocation: &types.Location{Lat: 48.1, Lng: 11.5},
		Timezone:     "Mars/Olympus",
	})
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestCreatePlan_PersistsDraft(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := testService(repo, &fakeGenerator{}, nil)

	plan, err := svc.CreatePlan(context.Background(), uuid.New(), types.PlanInputs{
		CityName:      "Munich",
		UserLocation:  &types.Location{Lat: 48.1, Lng: 11.5},
		WhenSelection: types.WhenTonight,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, types.PlanStatusDraft, plan.Status)
	assert.Equal(t, "Europe/Berlin", plan.Inputs.Timezone)
	// 18:00 UTC is already past tonight's 19:00 Berlin start, so the plan
	// starts immediately.
	assert.Equal(t, svc.now().UTC(), plan.StartTimeUTC)
}

func TestGeneratePlan_Success(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusDraft)}
	gen := &fakeGenerator{result: testResult()}
	svc, slept := testService(repo, gen, nil)

	err := svc.GeneratePlan(context.Background(), repo.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, *slept)

	require.Equal(t, []string{types.PlanStatusBuilding, types.PlanStatusReady}, repo.statuses())
	final := repo.statusUpdates[1]
	require.NotNil(t, final.GenerationMethod)
	assert.Equal(t, "fallback", *final.GenerationMethod)
	require.NotNil(t, final.LLMAttempts)
	assert.Equal(t, 1, *final.LLMAttempts)
	require.NotNil(t, final.EndTimeUTC)
	assert.Equal(t, testResult().Slots[1].End, *final.EndTimeUTC)
	require.NotNil(t, final.WeatherSnapshot)
	assert.Equal(t, "Rain", final.WeatherSnapshot.Condition)

	require.Contains(t, final.OptimizationMetadata, "debug")
	require.Contains(t, final.OptimizationMetadata, "city_dna")
	require.Contains(t, final.OptimizationMetadata, "local_guide")
	dna := final.OptimizationMetadata["city_dna"].(llm.CityDNA)
	assert.Equal(t, "Munich", dna.City)

	require.Len(t, repo.replacedStops, 2)
	assert.Equal(t, types.WhenNow, repo.replacedWhen)
}

func TestGeneratePlan_LLMMethodRecorded(t *testing.T) {
	plan := testPlan(types.PlanStatusDraft)
	plan.Inputs.UseLLM = true
	repo := &fakeRepo{plan: plan}
	svc, _ := testService(repo, &fakeGenerator{result: testResult()}, nil)

	require.NoError(t, svc.GeneratePlan(context.Background(), plan.ID))
	require.NotNil(t, repo.statusUpdates[1].GenerationMethod)
	assert.Equal(t, "llm", *repo.statusUpdates[1].GenerationMethod)
}

func TestGeneratePlan_RetriesWithBackoff(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusDraft)}
	gen := &fakeGenerator{failures: 2, err: errors.New("vendor timeout"), result: testResult()}
	svc, slept := testService(repo, gen, nil)

	err := svc.GeneratePlan(context.Background(), repo.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, *slept)

	final := repo.statusUpdates[len(repo.statusUpdates)-1]
	assert.Equal(t, types.PlanStatusReady, final.Status)
	require.NotNil(t, final.LLMAttempts)
	assert.Equal(t, 3, *final.LLMAttempts)
}

func TestGeneratePlan_ExhaustedRetriesFails(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusDraft)}
	gen := &fakeGenerator{failures: 5, err: errors.New("vendor down")}
	svc, slept := testService(repo, gen, nil)

	err := svc.GeneratePlan(context.Background(), repo.plan.ID)
	require.Error(t, err)
	assert.Equal(t, 3, gen.calls)
	assert.Len(t, *slept, 2)

	require.Equal(t, []string{types.PlanStatusBuilding, types.PlanStatusFailed}, repo.statuses())
	final := repo.statusUpdates[1]
	require.NotNil(t, final.LastErrorCode)
	assert.Equal(t, "generation_failed", *final.LastErrorCode)
	require.NotNil(t, final.LastErrorContext)
	assert.Equal(t, "vendor down", *final.LastErrorContext)
}

func TestGeneratePlan_InvalidInputIsTerminal(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusDraft)}
	gen := &fakeGenerator{failures: 5, err: fmt.Errorf("city missing: %w", types.ErrInvalidInput)}
	svc, slept := testService(repo, gen, nil)

	err := svc.GeneratePlan(context.Background(), repo.plan.ID)
	require.ErrorIs(t, err, types.ErrInvalidInput)
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, *slept)

	final := repo.statusUpdates[1]
	assert.Equal(t, types.PlanStatusFailed, final.Status)
	require.NotNil(t, final.LastErrorCode)
	assert.Equal(t, "invalid_input", *final.LastErrorCode)
}

func TestGeneratePlan_ErrorContextTruncated(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusDraft)}
	gen := &fakeGenerator{failures: 5, err: errors.New(strings.Repeat("x", 5000))}
	svc, _ := testService(repo, gen, nil)

	require.Error(t, svc.GeneratePlan(context.Background(), repo.plan.ID))
	final := repo.statusUpdates[1]
	require.NotNil(t, final.LastErrorContext)
	assert.Len(t, *final.LastErrorContext, errorContextMax)
}

func TestBuildLegs_RecommendsWalkWithinRange(t *testing.T) {
	directions := &fakeDirections{routes: map[string]types.Route{
		"walk":  {DistanceM: 1200, DurationSec: 900},
		"bike":  {DistanceM: 1300, DurationSec: 300},
		"drive": {DistanceM: 1500, DurationSec: 240},
	}}
	svc, _ := testService(&fakeRepo{}, &fakeGenerator{}, directions)

	legs := svc.buildLegs(context.Background(), testResult().ChosenStops, nil)
	require.Len(t, legs, 1)
	assert.Equal(t, 0, legs[0].FromIndex)
	assert.Equal(t, 1, legs[0].ToIndex)
	assert.Len(t, legs[0].Modes, 3)
	assert.Equal(t, "walk", legs[0].RecommendedMode)
	assert.Equal(t, 1200, legs[0].RecommendedDistM)
	assert.Equal(t, 900, legs[0].RecommendedDurSec)
}

func TestBuildLegs_LongWalkRecommendsDrive(t *testing.T) {
	directions := &fakeDirections{routes: map[string]types.Route{
		"walk":  {DistanceM: 2400, DurationSec: 1800},
		"drive": {DistanceM: 2600, DurationSec: 420},
	}}
	svc, _ := testService(&fakeRepo{}, &fakeGenerator{}, directions)

	legs := svc.buildLegs(context.Background(), testResult().ChosenStops, nil)
	require.Len(t, legs, 1)
	assert.Equal(t, "drive", legs[0].RecommendedMode)
	assert.Equal(t, 2600, legs[0].RecommendedDistM)
	assert.Equal(t, 420, legs[0].RecommendedDurSec)
}

func TestBuildLegs_NoWalkConstraintRecommendsDrive(t *testing.T) {
	directions := &fakeDirections{routes: map[string]types.Route{
		"walk":  {DistanceM: 400, DurationSec: 300},
		"drive": {DistanceM: 600, DurationSec: 120},
	}}
	svc, _ := testService(&fakeRepo{}, &fakeGenerator{}, directions)

	legs := svc.buildLegs(context.Background(), testResult().ChosenStops, []string{"no_walk"})
	require.Len(t, legs, 1)
	assert.Equal(t, "drive", legs[0].RecommendedMode)
}

func TestBuildLegs_AllModesFailingDropsLeg(t *testing.T) {
	directions := &fakeDirections{errs: map[string]error{
		"walk": errors.New("down"), "bike": errors.New("down"), "drive": errors.New("down"),
	}}
	svc, _ := testService(&fakeRepo{}, &fakeGenerator{}, directions)

	legs := svc.buildLegs(context.Background(), testResult().ChosenStops, nil)
	assert.Empty(t, legs)
}

func TestBuildLegs_PartialModeFailureKeepsLeg(t *testing.T) {
	directions := &fakeDirections{
		routes: map[string]types.Route{"walk": {DistanceM: 800, DurationSec: 600}},
		errs:   map[string]error{"bike": errors.New("down"), "drive": errors.New("down")},
	}
	svc, _ := testService(&fakeRepo{}, &fakeGenerator{}, directions)

	legs := svc.buildLegs(context.Background(), testResult().ChosenStops, nil)
	require.Len(t, legs, 1)
	assert.Len(t, legs[0].Modes, 1)
	assert.Equal(t, "walk", legs[0].RecommendedMode)
}

func TestSwapStop_RequiresReadyOrActive(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusBuilding)}
	svc, _ := testService(repo, &fakeGenerator{}, nil)

	err := svc.SwapStop(context.Background(), repo.plan.ID, uuid.New(), "closed")
	require.ErrorIs(t, err, types.ErrInvalidInput)
	assert.Empty(t, repo.statusUpdates)
}

func TestSwapStop_RoundTripsThroughSwapping(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusReady)}
	svc, _ := testService(repo, &fakeGenerator{}, nil)
	stopID := uuid.New()

	require.NoError(t, svc.SwapStop(context.Background(), repo.plan.ID, stopID, "too crowded"))
	assert.Equal(t, []string{types.PlanStatusSwapping, types.PlanStatusReady}, repo.statuses())
	require.Len(t, repo.audits, 1)
	assert.Equal(t, "swap_stop", repo.audits[0]["action"])
	assert.Equal(t, stopID.String(), repo.audits[0]["stop_id"])
	assert.Equal(t, "too crowded", repo.audits[0]["reason"])
}

func TestDelayReplan_RecordsAudit(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusActive)}
	svc, _ := testService(repo, &fakeGenerator{}, nil)
	stopID := uuid.New()

	require.NoError(t, svc.DelayReplan(context.Background(), repo.plan.ID, stopID, 30))
	require.Len(t, repo.audits, 1)
	assert.Equal(t, "delay_replan", repo.audits[0]["action"])
	assert.Equal(t, 30, repo.audits[0]["delta_min"])
}

func TestDelayReplan_RejectsDraft(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusDraft)}
	svc, _ := testService(repo, &fakeGenerator{}, nil)

	err := svc.DelayReplan(context.Background(), repo.plan.ID, uuid.New(), 30)
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestUndoSwap_RecordsAudit(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusReady)}
	svc, _ := testService(repo, &fakeGenerator{}, nil)
	stopID := uuid.New()

	require.NoError(t, svc.UndoSwap(context.Background(), repo.plan.ID, stopID))
	require.Len(t, repo.audits, 1)
	assert.Equal(t, "undo_swap", repo.audits[0]["action"])
}

func TestRegeneratePlan_AuditsThenRebuilds(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusReady)}
	gen := &fakeGenerator{result: testResult()}
	svc, _ := testService(repo, gen, nil)

	require.NoError(t, svc.RegeneratePlan(context.Background(), repo.plan.ID))
	require.Len(t, repo.audits, 1)
	assert.Equal(t, "regenerate", repo.audits[0]["action"])
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []string{types.PlanStatusBuilding, types.PlanStatusReady}, repo.statuses())
}

func TestRegeneratePlan_TighterRetryBudget(t *testing.T) {
	repo := &fakeRepo{plan: testPlan(types.PlanStatusReady)}
	gen := &fakeGenerator{failures: 5, err: errors.New("vendor down")}
	svc, slept := testService(repo, gen, nil)

	err := svc.RegeneratePlan(context.Background(), repo.plan.ID)
	require.Error(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, *slept)
}

func TestGeneratePlan_DerivesDurationFromWindow(t *testing.T) {
	plan := testPlan(types.PlanStatusDraft)
	start := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	plan.Inputs.StartTime = &start
	plan.Inputs.EndTime = &end
	repo := &fakeRepo{plan: plan}
	gen := &fakeGenerator{result: testResult()}
	svc, _ := testService(repo, gen, nil)

	require.NoError(t, svc.GeneratePlan(context.Background(), plan.ID))
	assert.Equal(t, 3.0, gen.lastInputs.DurationHours)
}

func TestGetPlanDetails(t *testing.T) {
	repo := &fakeRepo{
		plan:  testPlan(types.PlanStatusReady),
		stops: []types.StopRow{{ID: uuid.New()}},
		legs:  []types.LegRow{{ID: uuid.New()}},
	}
	svc, _ := testService(repo, &fakeGenerator{}, nil)

	details, err := svc.GetPlanDetails(context.Background(), repo.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.plan.ID, details.Plan.ID)
	assert.Len(t, details.Stops, 1)
	assert.Len(t, details.Legs, 1)
}
