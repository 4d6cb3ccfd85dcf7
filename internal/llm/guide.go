package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/nowa-app/planner-api/internal/types"
)

// GuideInput bundles everything the guide is written from.
type GuideInput struct {
	DNA         CityDNA
	Intent      string
	Subtypes    []string
	Weather     *types.WeatherSnapshot
	Slots       []types.FilledSlot
	Constraints []string
	Language    string
}

// LocalGuide writes the plan companion text. With a model it produces
// bespoke copy grounded in the City DNA; without one, or on failure, it
// assembles a deterministic guide from the DNA and the weather.
func (b *GuideBuilder) LocalGuide(ctx context.Context, in GuideInput) LocalGuide {
	if in.Language == "" {
		in.Language = "es"
	}
	if b.client == nil {
		b.logger.Info("building deterministic local guide")
		return deterministicGuide(in.DNA, in.Weather)
	}

	guide, err := b.modelGuide(ctx, in)
	if err != nil {
		b.logger.Warn("llm guide failed, using deterministic fallback", slog.Any("error", err))
		return deterministicGuide(in.DNA, in.Weather)
	}
	return guide
}

func deterministicGuide(dna CityDNA, weather *types.WeatherSnapshot) LocalGuide {
	feels := 18.0
	cond := ""
	if weather != nil {
		feels = weather.FeelsLike
		cond = strings.ToLower(weather.Condition)
	}

	var advice []string
	if feels <= 5 {
		advice = append(advice, "Hace mucho frío - busca lugares indoor")
	} else if feels >= 28 {
		advice = append(advice, "Hace calor - hidrátate y busca sombra")
	}
	if strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle") {
		advice = append(advice, "Lluvia prevista - lleva paraguas")
	}
	if strings.Contains(cond, "snow") {
		advice = append(advice, "Nieve - abrígate bien y ten cuidado al caminar")
	}

	city := dna.City
	if city == "" {
		city = "la ciudad"
	}

	return LocalGuide{
		Headline:      "Plan adaptado al clima actual",
		Summary:       fmt.Sprintf("Plan optimizado para %s considerando clima y horarios.", city),
		ClimateAdvice: advice,
		LocalTypicals: map[string][]Typical{
			"food":   topTypicals(dna.FoodTypicals, 5),
			"drinks": topTypicals(dna.DrinkTypicals, 5),
		},
		PracticalNotes: dna.Etiquette,
	}
}

func topTypicals(typicals []Typical, n int) []Typical {
	if len(typicals) > n {
		return typicals[:n]
	}
	return typicals
}

func (b *GuideBuilder) modelGuide(ctx context.Context, in GuideInput) (LocalGuide, error) {
	type compactOption struct {
		PlaceID  string `json:"place_id"`
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	type compactGuideSlot struct {
		SlotID  string          `json:"slot_id"`
		Options []compactOption `json:"options"`
	}

	compact := make([]compactGuideSlot, 0, len(in.Slots))
	for _, slot := range in.Slots {
		cs := compactGuideSlot{SlotID: slot.SlotID}
		for _, opt := range topOptions(slot.Options, 5) {
			cs.Options = append(cs.Options, compactOption{
				PlaceID:  opt.Place.PlaceID,
				Name:     opt.Place.Name,
				Category: opt.Place.Category,
			})
		}
		compact = append(compact, cs)
	}

	payload := map[string]any{
		"language":        in.Language,
		"intent":          in.Intent,
		"subtypes":        in.Subtypes,
		"constraints":     in.Constraints,
		"weather":         in.Weather,
		"city_dna":        in.DNA,
		"options_by_slot": compact,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return LocalGuide{}, fmt.Errorf("marshal guide payload: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are a warm, practical local tour guide. "+
			"You MUST NOT invent venues or claim a dish is served at a specific place. "+
			"Suggest what to order ONLY as: 'If you see X on the menu, order it' or 'Ask for X'. "+
			"Return STRICT JSON only, no markdown, with keys headline, summary, climate_advice, "+
			"local_typicals, per_slot_order_tips, practical_notes.\n\n%s",
		payloadJSON)

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.7),
		ResponseMIMEType: "application/json",
	}
	raw, err := b.client.GenerateContent(ctx, prompt, config)
	if err != nil {
		return LocalGuide{}, err
	}

	var guide LocalGuide
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &guide); err != nil {
		return LocalGuide{}, fmt.Errorf("parse guide: %w", err)
	}
	if guide.Headline == "" {
		return LocalGuide{}, fmt.Errorf("parse guide: missing headline")
	}
	return guide, nil
}
