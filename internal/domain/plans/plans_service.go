package plans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/nowa-app/planner-api/internal/llm"
	"github.com/nowa-app/planner-api/internal/planner"
	"github.com/nowa-app/planner-api/internal/types"
	"github.com/nowa-app/planner-api/pkg/observability"
)

const (
	maxGenerationAttempts   = 3
	maxRegenerationAttempts = 2
	retryBaseDelay          = 500 * time.Millisecond
	errorContextMax       = 2000
	walkRecommendMaxM     = 1500
	defaultTimezone       = "Europe/Berlin"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the plan lifecycle surface consumed by the HTTP handler and
// the task queue.
type Service interface {
	CreatePlan(ctx context.Context, userID uuid.UUID, inputs types.PlanInputs) (*types.Plan, error)
	GetPlanDetails(ctx context.Context, planID uuid.UUID) (*PlanDetails, error)
	GeneratePlan(ctx context.Context, planID uuid.UUID) error
	RegeneratePlan(ctx context.Context, planID uuid.UUID) error
	SwapStop(ctx context.Context, planID, stopID uuid.UUID, reason string) error
	DelayReplan(ctx context.Context, planID, stopID uuid.UUID, deltaMin int) error
	UndoSwap(ctx context.Context, planID, stopID uuid.UUID) error
}

// PlanDetails is a plan row with its materialized stops and legs.
type PlanDetails struct {
	Plan  types.Plan
	Stops []types.StopRow
	Legs  []types.LegRow
}

// PlanGenerator runs one engine build.
type PlanGenerator interface {
	Generate(ctx context.Context, inputs types.PlanInputs, bctx planner.BuildContext) (*types.PlanResult, error)
}

// GuideSource produces City DNA and the local guide.
type GuideSource interface {
	CityDNA(ctx context.Context, city, language string) llm.CityDNA
	LocalGuide(ctx context.Context, in llm.GuideInput) llm.LocalGuide
}

// DirectionsSource routes between two stops for one travel mode.
type DirectionsSource interface {
	Route(ctx context.Context, from, to types.Location, mode string) (*types.Route, error)
}

// ServiceImpl is the production plan service.
type ServiceImpl struct {
	logger     *slog.Logger
	repo       Repository
	generator  PlanGenerator
	guide      GuideSource
	directions DirectionsSource
	language   string

	// Injection points for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

func NewServiceImpl(repo Repository, generator PlanGenerator, guide GuideSource, directions DirectionsSource, language string, logger *slog.Logger) *ServiceImpl {
	if language == "" {
		language = "es"
	}
	return &ServiceImpl{
		logger:     logger,
		repo:       repo,
		generator:  generator,
		guide:      guide,
		directions: directions,
		language:   language,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// CreatePlan validates the inputs and persists a draft plan. Generation
// happens asynchronously via GeneratePlan.
func (s *ServiceImpl) CreatePlan(ctx context.Context, userID uuid.UUID, inputs types.PlanInputs) (*types.Plan, error) {
	if inputs.CityName == "" {
		return nil, fmt.Errorf("city_name is required: %w", types.ErrInvalidInput)
	}
	if inputs.UserLocation == nil {
		return nil, fmt.Errorf("user_location is required: %w", types.ErrInvalidInput)
	}
	if inputs.Timezone == "" {
		inputs.Timezone = defaultTimezone
	}

	loc, err := time.LoadLocation(inputs.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", inputs.Timezone, types.ErrInvalidInput)
	}

	now := s.now().In(loc)
	plan := types.Plan{
		ID:           uuid.New(),
		UserID:       userID,
		Status:       types.PlanStatusDraft,
		StartTimeUTC: planner.ResolveStart(now, inputs).UTC(),
		Inputs:       inputs,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("plan created",
		slog.String("plan_id", plan.ID.String()),
		slog.String("city", inputs.CityName),
		slog.String("when", inputs.WhenSelection))
	return &plan, nil
}

// GetPlanDetails loads the plan with its stops and legs.
func (s *ServiceImpl) GetPlanDetails(ctx context.Context, planID uuid.UUID) (*PlanDetails, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	stops, err := s.repo.GetStops(ctx, planID)
	if err != nil {
		return nil, err
	}
	legs, err := s.repo.GetLegs(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &PlanDetails{Plan: plan, Stops: stops, Legs: legs}, nil
}

// GeneratePlan is the task-shell around the engine: status transitions,
// bounded retries, legs, City DNA and guide, and atomic persistence.
func (s *ServiceImpl) GeneratePlan(ctx context.Context, planID uuid.UUID) error {
	return s.generate(ctx, planID, maxGenerationAttempts)
}

func (s *ServiceImpl) generate(ctx context.Context, planID uuid.UUID, maxAttempts int) error {
	ctx, span := otel.Tracer("Plans").Start(ctx, "GeneratePlan", trace.WithAttributes(
		attribute.String("plan_id", planID.String()),
	))
	defer span.End()
	started := s.now()

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePlanStatus(ctx, planID, StatusUpdate{Status: types.PlanStatusBuilding}); err != nil {
		return err
	}

	timezone := plan.Inputs.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	dtLocal := planner.ResolveStart(s.now().In(loc), plan.Inputs)

	inputs := plan.Inputs
	if inputs.DurationHours == 0 && inputs.StartTime != nil && inputs.EndTime != nil &&
		inputs.EndTime.After(*inputs.StartTime) {
		inputs.DurationHours = inputs.EndTime.Sub(*inputs.StartTime).Hours()
	}

	var result *types.PlanResult
	attempts := 0
	for attempts < maxAttempts {
		attempts++
		result, err = s.generator.Generate(ctx, inputs, planner.BuildContext{DTLocal: dtLocal})
		if err == nil {
			break
		}
		if errors.Is(err, types.ErrInvalidInput) {
			break
		}
		s.logger.Warn("plan generation attempt failed",
			slog.String("plan_id", planID.String()),
			slog.Int("attempt", attempts),
			slog.Any("error", err))
		if attempts < maxAttempts {
			s.sleep(retryBaseDelay << (attempts - 1))
		}
	}

	observability.PlanGenerationCount.Inc()
	observability.Incr("plan_generation_count", 1)

	if err != nil {
		observability.PlanGenerationFailures.Inc()
		observability.Incr("plan_generation_failures", 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		code := "generation_failed"
		if errors.Is(err, types.ErrInvalidInput) {
			code = "invalid_input"
		}
		errCtx := truncate(err.Error(), errorContextMax)
		if uerr := s.repo.UpdatePlanStatus(ctx, planID, StatusUpdate{
			Status:           types.PlanStatusFailed,
			LLMAttempts:      &attempts,
			LastErrorCode:    &code,
			LastErrorContext: &errCtx,
		}); uerr != nil {
			s.logger.Error("failed to record plan failure", slog.Any("error", uerr))
		}
		return fmt.Errorf("plan %s generation failed after %d attempts: %w", planID, attempts, err)
	}

	legs := s.buildLegs(ctx, result.ChosenStops, inputs.Constraints)

	dna := s.guide.CityDNA(ctx, inputs.CityName, s.language)
	guide := s.guide.LocalGuide(ctx, llm.GuideInput{
		DNA:         dna,
		Intent:      inputs.Intent,
		Weather:     result.Weather,
		Slots:       result.Slots,
		Constraints: inputs.Constraints,
		Language:    s.language,
	})

	if err := s.repo.ReplacePlanContents(ctx, planID, result.ChosenStops, legs, inputs.WhenSelection); err != nil {
		return err
	}

	method := "fallback"
	if inputs.UseLLM {
		method = "llm"
	}
	var endTime *time.Time
	if n := len(result.Slots); n > 0 {
		end := result.Slots[n-1].End.UTC()
		endTime = &end
	}
	if err := s.repo.UpdatePlanStatus(ctx, planID, StatusUpdate{
		Status:           types.PlanStatusReady,
		GenerationMethod: &method,
		LLMAttempts:      &attempts,
		EndTimeUTC:       endTime,
		WeatherSnapshot:  result.Weather,
		OptimizationMetadata: map[string]any{
			"debug":       result.Debug,
			"city_dna":    dna,
			"local_guide": guide,
		},
	}); err != nil {
		return err
	}

	observability.PlanGenerationTime.Observe(s.now().Sub(started).Seconds())
	s.logger.Info("plan ready",
		slog.String("plan_id", planID.String()),
		slog.String("template", result.Debug.Template),
		slog.Int("stops", len(result.ChosenStops)),
		slog.Int("attempts", attempts))
	span.SetStatus(codes.Ok, "ready")
	return nil
}

// RegeneratePlan reruns the full build with a tighter retry budget,
// keeping an audit trail.
func (s *ServiceImpl) RegeneratePlan(ctx context.Context, planID uuid.UUID) error {
	if err := s.repo.AppendAudit(ctx, planID, map[string]any{
		"action": "regenerate",
		"at":     s.now().UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}
	return s.generate(ctx, planID, maxRegenerationAttempts)
}

// SwapStop records a swap request: status round-trips through swapping and
// the request lands in the audit trail. Re-planning the affected slot is a
// follow-up build.
func (s *ServiceImpl) SwapStop(ctx context.Context, planID, stopID uuid.UUID, reason string) error {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Status != types.PlanStatusReady && plan.Status != types.PlanStatusActive {
		return fmt.Errorf("plan %s in status %s cannot swap: %w", planID, plan.Status, types.ErrInvalidInput)
	}

	if err := s.repo.UpdatePlanStatus(ctx, planID, StatusUpdate{Status: types.PlanStatusSwapping}); err != nil {
		return err
	}
	if err := s.repo.AppendAudit(ctx, planID, map[string]any{
		"action":  "swap_stop",
		"stop_id": stopID.String(),
		"reason":  reason,
		"at":      s.now().UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}
	return s.repo.UpdatePlanStatus(ctx, planID, StatusUpdate{Status: types.PlanStatusReady})
}

// DelayReplan records a delay request for a stop.
func (s *ServiceImpl) DelayReplan(ctx context.Context, planID, stopID uuid.UUID, deltaMin int) error {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Status != types.PlanStatusReady && plan.Status != types.PlanStatusActive {
		return fmt.Errorf("plan %s in status %s cannot replan: %w", planID, plan.Status, types.ErrInvalidInput)
	}
	return s.repo.AppendAudit(ctx, planID, map[string]any{
		"action":    "delay_replan",
		"stop_id":   stopID.String(),
		"delta_min": deltaMin,
		"at":        s.now().UTC().Format(time.RFC3339),
	})
}

// UndoSwap records the reversal of the last swap on a stop.
func (s *ServiceImpl) UndoSwap(ctx context.Context, planID, stopID uuid.UUID) error {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Status != types.PlanStatusReady {
		return fmt.Errorf("plan %s in status %s cannot undo swap: %w", planID, plan.Status, types.ErrInvalidInput)
	}
	return s.repo.AppendAudit(ctx, planID, map[string]any{
		"action":  "undo_swap",
		"stop_id": stopID.String(),
		"at":      s.now().UTC().Format(time.RFC3339),
	})
}

// buildLegs routes every consecutive stop pair across the travel modes in
// parallel. Any vendor failure degrades that leg; a plan never fails
// because directions are unavailable.
func (s *ServiceImpl) buildLegs(ctx context.Context, stops []types.Stop, constraints []string) []LegDraft {
	if s.directions == nil || len(stops) < 2 {
		return nil
	}

	drafts := make([]LegDraft, len(stops)-1)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < len(stops)-1; i++ {
		g.Go(func() error {
			from := types.Location{Lat: stops[i].Lat, Lng: stops[i].Lng}
			to := types.Location{Lat: stops[i+1].Lat, Lng: stops[i+1].Lng}

			modes := make(map[string]types.Route, len(types.RouteModes))
			for _, mode := range types.RouteModes {
				route, err := s.directions.Route(gctx, from, to, mode)
				if err != nil {
					s.logger.Warn("leg routing failed",
						slog.Int("leg", i), slog.String("mode", mode), slog.Any("error", err))
					continue
				}
				modes[mode] = *route
			}

			draft := LegDraft{
				FromIndex: stops[i].OrderIndex,
				ToIndex:   stops[i+1].OrderIndex,
				Modes:     modes,
			}
			walk, hasWalk := modes["walk"]
			if hasWalk && walk.DistanceM <= walkRecommendMaxM && !containsString(constraints, "no_walk") {
				draft.RecommendedMode = "walk"
				draft.RecommendedDistM = walk.DistanceM
				draft.RecommendedDurSec = walk.DurationSec
			} else {
				draft.RecommendedMode = "drive"
				if drive, ok := modes["drive"]; ok {
					draft.RecommendedDistM = drive.DistanceM
					draft.RecommendedDurSec = drive.DurationSec
				}
			}
			drafts[i] = draft
			return nil
		})
	}
	_ = g.Wait()

	out := make([]LegDraft, 0, len(drafts))
	for _, d := range drafts {
		if len(d.Modes) == 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
