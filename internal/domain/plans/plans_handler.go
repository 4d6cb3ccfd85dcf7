package plans

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nowa-app/planner-api/internal/types"
	"github.com/nowa-app/planner-api/pkg/middleware"
)

// Handler exposes the plan lifecycle over HTTP.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register wires the plan routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/plans", h.CreatePlan)
	mux.HandleFunc("GET /v1/plans/{id}", h.GetPlan)
	mux.HandleFunc("POST /v1/plans/{id}/regenerate", h.RegeneratePlan)
	mux.HandleFunc("POST /v1/plans/{id}/stops/{stopID}/swap", h.SwapStop)
	mux.HandleFunc("POST /v1/plans/{id}/stops/{stopID}/delay", h.DelayReplan)
	mux.HandleFunc("POST /v1/plans/{id}/stops/{stopID}/undo-swap", h.UndoSwap)
}

type createPlanRequest struct {
	UserID string           `json:"user_id,omitempty"`
	Inputs types.PlanInputs `json:"inputs"`
}

// CreatePlan accepts a plan request, persists the draft and kicks off
// generation in the background. Responds 202 with the plan id. The user
// comes from the bearer token; the body field is a fallback for
// deployments without auth.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlansHandler").Start(r.Context(), "CreatePlan")
	defer span.End()

	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, span, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		var err error
		userID, err = uuid.Parse(req.UserID)
		if err != nil {
			h.writeError(w, span, http.StatusBadRequest, "invalid user_id")
			return
		}
	}

	plan, err := h.svc.CreatePlan(ctx, userID, req.Inputs)
	if err != nil {
		h.writeServiceError(w, span, err)
		return
	}
	span.SetAttributes(attribute.String("plan_id", plan.ID.String()))

	// Generation runs detached from the request context.
	go func() {
		if err := h.svc.GeneratePlan(context.WithoutCancel(ctx), plan.ID); err != nil {
			h.logger.Error("background plan generation failed",
				slog.String("plan_id", plan.ID.String()), slog.Any("error", err))
		}
	}()

	h.writeJSON(w, http.StatusAccepted, ToPlanCreatedResponse(plan))
	span.SetStatus(codes.Ok, "accepted")
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlansHandler").Start(r.Context(), "GetPlan")
	defer span.End()

	planID, ok := h.pathID(w, span, r, "id")
	if !ok {
		return
	}
	details, err := h.svc.GetPlanDetails(ctx, planID)
	if err != nil {
		h.writeServiceError(w, span, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ToPlanResponse(details))
	span.SetStatus(codes.Ok, "ok")
}

func (h *Handler) RegeneratePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlansHandler").Start(r.Context(), "RegeneratePlan")
	defer span.End()

	planID, ok := h.pathID(w, span, r, "id")
	if !ok {
		return
	}
	if err := h.svc.RegeneratePlan(ctx, planID); err != nil {
		h.writeServiceError(w, span, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]string{"id": planID.String(), "status": types.PlanStatusBuilding})
	span.SetStatus(codes.Ok, "accepted")
}

type swapStopRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) SwapStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlansHandler").Start(r.Context(), "SwapStop")
	defer span.End()

	planID, ok := h.pathID(w, span, r, "id")
	if !ok {
		return
	}
	stopID, ok := h.pathID(w, span, r, "stopID")
	if !ok {
		return
	}
	var req swapStopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, span, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SwapStop(ctx, planID, stopID, req.Reason); err != nil {
		h.writeServiceError(w, span, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": types.PlanStatusReady})
	span.SetStatus(codes.Ok, "ok")
}

type delayReplanRequest struct {
	DeltaMin int `json:"delta_min"`
}

func (h *Handler) DelayReplan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlansHandler").Start(r.Context(), "DelayReplan")
	defer span.End()

	planID, ok := h.pathID(w, span, r, "id")
	if !ok {
		return
	}
	stopID, ok := h.pathID(w, span, r, "stopID")
	if !ok {
		return
	}
	var req delayReplanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, span, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.DelayReplan(ctx, planID, stopID, req.DeltaMin); err != nil {
		h.writeServiceError(w, span, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
	span.SetStatus(codes.Ok, "ok")
}

func (h *Handler) UndoSwap(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlansHandler").Start(r.Context(), "UndoSwap")
	defer span.End()

	planID, ok := h.pathID(w, span, r, "id")
	if !ok {
		return
	}
	stopID, ok := h.pathID(w, span, r, "stopID")
	if !ok {
		return
	}
	if err := h.svc.UndoSwap(ctx, planID, stopID); err != nil {
		h.writeServiceError(w, span, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
	span.SetStatus(codes.Ok, "ok")
}

func (h *Handler) pathID(w http.ResponseWriter, span trace.Span, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		h.writeError(w, span, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	switch {
	case errors.Is(err, types.ErrNotFound):
		h.writeError(w, span, http.StatusNotFound, "plan not found")
	case errors.Is(err, types.ErrInvalidInput):
		h.writeError(w, span, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("plan request failed", slog.Any("error", err))
		h.writeError(w, span, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, span trace.Span, status int, msg string) {
	span.SetAttributes(attribute.Int("http.status_code", status))
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}
