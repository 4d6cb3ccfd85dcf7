// Package plans owns the plan lifecycle: persistence, the build task shell
// around the engine, and the HTTP surface.
package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nowa-app/planner-api/internal/types"
)

// Ensure RepositoryImpl implements the Repository interface
var _ Repository = (*RepositoryImpl)(nil)

// DB is the slice of pgxpool.Pool the repository uses. pgxmock satisfies
// it too.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LegDraft is a leg before its stops have database identities. FromIndex
// and ToIndex refer to the order indexes of the stops inserted alongside.
type LegDraft struct {
	FromIndex         int
	ToIndex           int
	Modes             map[string]types.Route
	RecommendedMode   string
	RecommendedDistM  int
	RecommendedDurSec int
}

// StatusUpdate carries the fields a status transition may touch. Nil
// pointers leave the column untouched.
type StatusUpdate struct {
	Status               string
	GenerationMethod     *string
	LLMAttempts          *int
	LastErrorCode        *string
	LastErrorContext     *string
	EndTimeUTC           *time.Time
	WeatherSnapshot      *types.WeatherSnapshot
	OptimizationMetadata map[string]any
}

// Repository defines the persistence operations for plans, stops and legs.
type Repository interface {
	CreatePlan(ctx context.Context, plan types.Plan) error
	GetPlan(ctx context.Context, planID uuid.UUID) (types.Plan, error)
	UpdatePlanStatus(ctx context.Context, planID uuid.UUID, update StatusUpdate) error
	AppendAudit(ctx context.Context, planID uuid.UUID, entry map[string]any) error
	ReplacePlanContents(ctx context.Context, planID uuid.UUID, stops []types.Stop, legs []LegDraft, whenSelection string) error
	GetStops(ctx context.Context, planID uuid.UUID) ([]types.StopRow, error)
	GetLegs(ctx context.Context, planID uuid.UUID) ([]types.LegRow, error)
}

// RepositoryImpl struct holds the logger and database connection pool
type RepositoryImpl struct {
	logger *slog.Logger
	pgpool DB
}

func NewRepository(pgxpool *pgxpool.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgxpool,
	}
}

// CreatePlan inserts a new plan row.
func (r *RepositoryImpl) CreatePlan(ctx context.Context, plan types.Plan) error {
	inputsJSON, err := json.Marshal(plan.Inputs)
	if err != nil {
		return fmt.Errorf("failed to marshal plan inputs: %w", err)
	}

	timezone := plan.Inputs.Timezone
	if timezone == "" {
		timezone = "Europe/Berlin"
	}

	query := `
        INSERT INTO plans (
            id, user_id, city_name, status, start_time_utc, timezone, inputs_json, llm_attempts
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8
        )
    `
	_, err = r.pgpool.Exec(ctx, query,
		plan.ID, plan.UserID, plan.Inputs.CityName, plan.Status,
		plan.StartTimeUTC.UTC(), timezone, inputsJSON, plan.LLMAttempts,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create plan", slog.Any("error", err))
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a plan row by its ID.
func (r *RepositoryImpl) GetPlan(ctx context.Context, planID uuid.UUID) (types.Plan, error) {
	query := `
        SELECT id, user_id, status, start_time_utc, end_time_utc, inputs_json,
               weather_snapshot_json, optimization_metadata, generation_method,
               llm_attempts, last_error_code, last_error_context, created_at, updated_at
        FROM plans
        WHERE id = $1
    `
	var plan types.Plan
	var inputsJSON, weatherJSON, metadataJSON []byte
	var generationMethod, lastErrorCode, lastErrorContext *string

	err := r.pgpool.QueryRow(ctx, query, planID).Scan(
		&plan.ID, &plan.UserID, &plan.Status, &plan.StartTimeUTC, &plan.EndTimeUTC,
		&inputsJSON, &weatherJSON, &metadataJSON, &generationMethod,
		&plan.LLMAttempts, &lastErrorCode, &lastErrorContext,
		&plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return types.Plan{}, fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get plan", slog.Any("error", err))
		return types.Plan{}, fmt.Errorf("failed to get plan: %w", err)
	}

	if err := json.Unmarshal(inputsJSON, &plan.Inputs); err != nil {
		return types.Plan{}, fmt.Errorf("failed to unmarshal plan inputs: %w", err)
	}
	if len(weatherJSON) > 0 {
		if err := json.Unmarshal(weatherJSON, &plan.WeatherSnapshot); err != nil {
			return types.Plan{}, fmt.Errorf("failed to unmarshal weather snapshot: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &plan.OptimizationMetadata); err != nil {
			return types.Plan{}, fmt.Errorf("failed to unmarshal optimization metadata: %w", err)
		}
	}
	if generationMethod != nil {
		plan.GenerationMethod = *generationMethod
	}
	if lastErrorCode != nil {
		plan.LastErrorCode = *lastErrorCode
	}
	if lastErrorContext != nil {
		plan.LastErrorContext = *lastErrorContext
	}
	return plan, nil
}

// UpdatePlanStatus applies a status transition plus whatever optional
// fields the transition carries.
func (r *RepositoryImpl) UpdatePlanStatus(ctx context.Context, planID uuid.UUID, update StatusUpdate) error {
	builder := squirrel.Update("plans").
		PlaceholderFormat(squirrel.Dollar).
		Where(squirrel.Eq{"id": planID}).
		Set("status", update.Status).
		Set("updated_at", time.Now().UTC())

	if update.GenerationMethod != nil {
		builder = builder.Set("generation_method", *update.GenerationMethod)
	}
	if update.LLMAttempts != nil {
		builder = builder.Set("llm_attempts", *update.LLMAttempts)
	}
	if update.LastErrorCode != nil {
		builder = builder.Set("last_error_code", *update.LastErrorCode)
	}
	if update.LastErrorContext != nil {
		builder = builder.Set("last_error_context", *update.LastErrorContext)
	}
	if update.EndTimeUTC != nil {
		builder = builder.Set("end_time_utc", update.EndTimeUTC.UTC())
	}
	if update.WeatherSnapshot != nil {
		weatherJSON, err := json.Marshal(update.WeatherSnapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal weather snapshot: %w", err)
		}
		builder = builder.Set("weather_snapshot_json", weatherJSON)
	}
	if update.OptimizationMetadata != nil {
		metadataJSON, err := json.Marshal(update.OptimizationMetadata)
		if err != nil {
			return fmt.Errorf("failed to marshal optimization metadata: %w", err)
		}
		builder = builder.Set("optimization_metadata", metadataJSON)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build status update: %w", err)
	}

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update plan status", slog.Any("error", err))
		return fmt.Errorf("failed to update plan status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
	}
	return nil
}

// AppendAudit merges an audit entry into the plan's optimization metadata
// under the "audit" key, newest last.
func (r *RepositoryImpl) AppendAudit(ctx context.Context, planID uuid.UUID, entry map[string]any) error {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	query := `
        UPDATE plans
        SET optimization_metadata = jsonb_set(
                COALESCE(optimization_metadata, '{}'::jsonb),
                '{audit}',
                COALESCE(optimization_metadata->'audit', '[]'::jsonb) || $2::jsonb
            ),
            updated_at = now()
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query, planID, entryJSON)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to append audit entry", slog.Any("error", err))
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
	}
	return nil
}

// ReplacePlanContents atomically swaps the plan's stops and legs for the
// given set. Prior rows are deleted in the same transaction so a failed
// build never leaves a half-written plan.
func (r *RepositoryImpl) ReplacePlanContents(ctx context.Context, planID uuid.UUID, stops []types.Stop, legs []LegDraft, whenSelection string) error {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM plan_legs WHERE plan_id = $1`, planID); err != nil {
		return fmt.Errorf("failed to delete plan legs: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM plan_stops WHERE plan_id = $1`, planID); err != nil {
		return fmt.Errorf("failed to delete plan stops: %w", err)
	}

	stopIDs := make(map[int]uuid.UUID, len(stops))
	insertStop := `
        INSERT INTO plan_stops (
            plan_id, order_index, slot_id, slot_title, slot_role, why_now,
            place_id, place_name, category, lat, lng, start_time, duration_min,
            when_selection, open_at_planned_time, open_confidence, open_reason,
            closed_warning, closed_reason, hours_unknown,
            opening_hours, place_types, business_status, rating, popularity, photo_reference
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
            $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
        )
        RETURNING id
    `
	for _, stop := range stops {
		var openingHoursJSON, placeTypesJSON []byte
		if stop.OpeningHours != nil {
			if openingHoursJSON, err = json.Marshal(stop.OpeningHours); err != nil {
				return fmt.Errorf("failed to marshal opening hours: %w", err)
			}
		}
		if stop.PlaceTypes != nil {
			if placeTypesJSON, err = json.Marshal(stop.PlaceTypes); err != nil {
				return fmt.Errorf("failed to marshal place types: %w", err)
			}
		}

		hoursUnknown := stop.OpenStatus == nil
		closedWarning := stop.OpenStatus != nil && !*stop.OpenStatus
		var closedReason *string
		if closedWarning {
			closedReason = &stop.OpenReason
		}

		var id uuid.UUID
		err = tx.QueryRow(ctx, insertStop,
			planID, stop.OrderIndex, stop.SlotID, stop.SlotTitle, stop.SlotRole, stop.WhyNow,
			stop.PlaceID, stop.Name, stop.Category, stop.Lat, stop.Lng, stop.Start.UTC(), stop.DurationMin,
			whenSelection, stop.OpenStatus, stop.OpenConfidence, stop.OpenReason,
			closedWarning, closedReason, hoursUnknown,
			openingHoursJSON, placeTypesJSON, stop.BusinessStatus, stop.Rating, stop.Popularity, stop.PhotoReference,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert stop %d: %w", stop.OrderIndex, err)
		}
		stopIDs[stop.OrderIndex] = id
	}

	insertLeg := `
        INSERT INTO plan_legs (
            plan_id, from_stop_id, to_stop_id, modes_json,
            recommended_mode, recommended_distance_m, recommended_duration_sec
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	for _, leg := range legs {
		fromID, ok := stopIDs[leg.FromIndex]
		if !ok {
			return fmt.Errorf("leg references unknown stop index %d", leg.FromIndex)
		}
		toID, ok := stopIDs[leg.ToIndex]
		if !ok {
			return fmt.Errorf("leg references unknown stop index %d", leg.ToIndex)
		}

		modesJSON, err := json.Marshal(leg.Modes)
		if err != nil {
			return fmt.Errorf("failed to marshal leg modes: %w", err)
		}
		if _, err := tx.Exec(ctx, insertLeg,
			planID, fromID, toID, modesJSON,
			leg.RecommendedMode, leg.RecommendedDistM, leg.RecommendedDurSec,
		); err != nil {
			return fmt.Errorf("failed to insert leg %d-%d: %w", leg.FromIndex, leg.ToIndex, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit plan contents: %w", err)
	}
	return nil
}

// GetStops retrieves the stops of a plan in visiting order.
func (r *RepositoryImpl) GetStops(ctx context.Context, planID uuid.UUID) ([]types.StopRow, error) {
	query := `
        SELECT id, plan_id, order_index, slot_id, slot_title, slot_role, why_now,
               place_id, place_name, category, lat, lng, start_time, duration_min,
               when_selection, open_at_planned_time, open_confidence, open_reason,
               closed_warning, closed_reason, hours_unknown,
               opening_hours, place_types, business_status, rating, popularity, photo_reference
        FROM plan_stops
        WHERE plan_id = $1
        ORDER BY order_index
    `
	rows, err := r.pgpool.Query(ctx, query, planID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to get plan stops", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get plan stops: %w", err)
	}
	defer rows.Close()

	var stops []types.StopRow
	for rows.Next() {
		var stop types.StopRow
		var whyNow, whenSelection, openConfidence, openReason, closedReason *string
		var businessStatus, photoReference *string
		var openingHoursJSON, placeTypesJSON []byte
		var rating *float64
		var popularity *int

		err := rows.Scan(
			&stop.ID, &stop.PlanID, &stop.OrderIndex, &stop.SlotID, &stop.SlotTitle, &stop.SlotRole, &whyNow,
			&stop.PlaceID, &stop.Name, &stop.Category, &stop.Lat, &stop.Lng, &stop.Start, &stop.DurationMin,
			&whenSelection, &stop.OpenStatus, &openConfidence, &openReason,
			&stop.ClosedWarning, &closedReason, &stop.HoursUnknown,
			&openingHoursJSON, &placeTypesJSON, &businessStatus, &rating, &popularity, &photoReference,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}

		if whyNow != nil {
			stop.WhyNow = *whyNow
		}
		if whenSelection != nil {
			stop.WhenSelection = *whenSelection
		}
		if openConfidence != nil {
			stop.OpenConfidence = *openConfidence
		}
		if openReason != nil {
			stop.OpenReason = *openReason
		}
		if closedReason != nil {
			stop.ClosedReason = *closedReason
		}
		if businessStatus != nil {
			stop.BusinessStatus = *businessStatus
		}
		if photoReference != nil {
			stop.PhotoReference = *photoReference
		}
		if rating != nil {
			stop.Rating = *rating
		}
		if popularity != nil {
			stop.Popularity = *popularity
		}
		if len(openingHoursJSON) > 0 {
			if err := json.Unmarshal(openingHoursJSON, &stop.OpeningHours); err != nil {
				return nil, fmt.Errorf("failed to unmarshal opening hours: %w", err)
			}
		}
		if len(placeTypesJSON) > 0 {
			if err := json.Unmarshal(placeTypesJSON, &stop.PlaceTypes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal place types: %w", err)
			}
		}
		stops = append(stops, stop)
	}
	return stops, rows.Err()
}

// GetLegs retrieves the legs of a plan.
func (r *RepositoryImpl) GetLegs(ctx context.Context, planID uuid.UUID) ([]types.LegRow, error) {
	query := `
        SELECT id, plan_id, from_stop_id, to_stop_id, modes_json,
               recommended_mode, recommended_distance_m, recommended_duration_sec
        FROM plan_legs
        WHERE plan_id = $1
        ORDER BY created_at
    `
	rows, err := r.pgpool.Query(ctx, query, planID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to get plan legs", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get plan legs: %w", err)
	}
	defer rows.Close()

	var legs []types.LegRow
	for rows.Next() {
		var leg types.LegRow
		var modesJSON []byte
		var recommendedMode *string
		var distM, durSec *int

		err := rows.Scan(
			&leg.ID, &leg.PlanID, &leg.FromStopID, &leg.ToStopID, &modesJSON,
			&recommendedMode, &distM, &durSec,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leg: %w", err)
		}

		if len(modesJSON) > 0 {
			if err := json.Unmarshal(modesJSON, &leg.Modes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal leg modes: %w", err)
			}
		}
		if recommendedMode != nil {
			leg.RecommendedMode = *recommendedMode
		}
		if distM != nil {
			leg.RecommendedDistM = *distM
		}
		if durSec != nil {
			leg.RecommendedDurSec = *durSec
		}
		legs = append(legs, leg)
	}
	return legs, rows.Err()
}
