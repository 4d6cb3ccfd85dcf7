package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nowa-app/planner-api/internal/types"
)

// whyNowMax caps the per-slot copy length.
const whyNowMax = 50

// SelectionContext is the situational input the selector writes copy from.
type SelectionContext struct {
	Hour    int
	Daypart string
	Weather *types.WeatherSnapshot
}

// Selector picks one place per slot and writes the why_now line. With a
// model it asks for softer picks and better copy; without one, or on any
// model failure, it falls back to the top-ranked option with templated copy.
type Selector struct {
	client ChatClient
	logger *slog.Logger
}

func NewSelector(client ChatClient, logger *slog.Logger) *Selector {
	return &Selector{client: client, logger: logger}
}

// Fill resolves every slot's selection. It never returns an error; a model
// failure downgrades that build to the deterministic path.
func (s *Selector) Fill(ctx context.Context, sel SelectionContext, ranked []types.FilledSlot) []types.FilledSlot {
	if s.client == nil {
		return s.deterministicFill(sel, ranked)
	}

	filled, err := s.modelFill(ctx, sel, ranked)
	if err != nil {
		s.logger.Warn("llm fill failed, using fallback", slog.Any("error", err))
		return s.deterministicFill(sel, ranked)
	}
	return filled
}

func (s *Selector) deterministicFill(sel SelectionContext, ranked []types.FilledSlot) []types.FilledSlot {
	out := make([]types.FilledSlot, len(ranked))
	for i, slot := range ranked {
		out[i] = slot
		if len(slot.Options) == 0 {
			out[i].SelectedPlaceIDs = nil
			out[i].WhyNow = ""
			continue
		}
		out[i].SelectedPlaceIDs = []string{slot.Options[0].Place.PlaceID}
		out[i].WhyNow = simpleWhyNow(sel)
	}
	return out
}

// simpleWhyNow is the templated copy used whenever the model does not
// deliver a line for a slot.
func simpleWhyNow(sel SelectionContext) string {
	if sel.Weather != nil {
		if sel.Weather.FeelsLike <= 5 {
			return truncateWhy("Mejor indoor por frío")
		}
		cond := strings.ToLower(sel.Weather.Condition)
		if strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle") {
			return truncateWhy("Ideal para cubrirte")
		}
	}
	if sel.Daypart == "late" {
		return truncateWhy("Abierto a esta hora")
	}
	return truncateWhy("Buen timing")
}

type compactCandidate struct {
	PlaceID    string  `json:"place_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Rating     float64 `json:"rating"`
	Popularity int     `json:"popularity"`
	DistanceM  int     `json:"distance_m"`
}

type compactSlot struct {
	SlotID      string             `json:"slot_id"`
	Title       string             `json:"title"`
	Start       string             `json:"start"`
	DurationMin int                `json:"duration_min"`
	Candidates  []compactCandidate `json:"candidates"`
}

type slotPick struct {
	SlotID          string `json:"slot_id"`
	SelectedPlaceID string `json:"selected_place_id"`
	WhyNow          string `json:"why_now"`
}

type slotsFill struct {
	Picks []slotPick `json:"picks"`
}

func (s *Selector) modelFill(ctx context.Context, sel SelectionContext, ranked []types.FilledSlot) ([]types.FilledSlot, error) {
	compact := make([]compactSlot, 0, len(ranked))
	for _, slot := range ranked {
		cs := compactSlot{
			SlotID:      slot.SlotID,
			Title:       slot.Title,
			Start:       slot.Start.Format(time.RFC3339),
			DurationMin: slot.DurationMin,
		}
		for _, opt := range topOptions(slot.Options, 5) {
			cs.Candidates = append(cs.Candidates, compactCandidate{
				PlaceID:    opt.Place.PlaceID,
				Name:       opt.Place.Name,
				Category:   opt.Place.Category,
				Rating:     opt.Place.Rating,
				Popularity: opt.Place.UserRatingsTotal,
				DistanceM:  opt.DistanceM,
			})
		}
		compact = append(compact, cs)
	}

	payload := map[string]any{
		"context": map[string]any{
			"daypart": sel.Daypart,
			"hour":    sel.Hour,
			"weather": sel.Weather,
		},
		"slots": compact,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal selection payload: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are a local travel planner. "+
			"Pick exactly one candidate place_id per slot from the provided candidates. "+
			"Return a short why_now (max %d chars) for each slot. "+
			"Do NOT invent place_ids. "+
			"Return strict JSON of the form {\"picks\":[{\"slot_id\":...,\"selected_place_id\":...,\"why_now\":...}]}.\n\n%s",
		whyNowMax, payloadJSON)

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.4),
		ResponseMIMEType: "application/json",
	}
	raw, err := s.client.GenerateContent(ctx, prompt, config)
	if err != nil {
		return nil, err
	}

	var parsed slotsFill
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse picks: %w", err)
	}

	picksBySlot := make(map[string]slotPick, len(parsed.Picks))
	for _, p := range parsed.Picks {
		picksBySlot[p.SlotID] = p
	}

	out := make([]types.FilledSlot, len(ranked))
	for i, slot := range ranked {
		out[i] = slot

		pick, ok := picksBySlot[slot.SlotID]
		if !ok || !slotHasPlace(slot, pick.SelectedPlaceID) {
			// Missing or invented pick falls back per slot.
			if len(slot.Options) == 0 {
				out[i].SelectedPlaceIDs = nil
				out[i].WhyNow = ""
				continue
			}
			out[i].SelectedPlaceIDs = []string{slot.Options[0].Place.PlaceID}
			out[i].WhyNow = simpleWhyNow(sel)
			continue
		}

		out[i].SelectedPlaceIDs = []string{pick.SelectedPlaceID}
		out[i].WhyNow = truncateWhy(pick.WhyNow)
	}
	return out, nil
}

func topOptions(options []types.RankedOption, n int) []types.RankedOption {
	if len(options) > n {
		return options[:n]
	}
	return options
}

func slotHasPlace(slot types.FilledSlot, placeID string) bool {
	if placeID == "" {
		return false
	}
	for _, opt := range slot.Options {
		if opt.Place.PlaceID == placeID {
			return true
		}
	}
	return false
}

func truncateWhy(s string) string {
	r := []rune(s)
	if len(r) > whyNowMax {
		return string(r[:whyNowMax])
	}
	return s
}
