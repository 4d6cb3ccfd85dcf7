package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"google.golang.org/genai"
)

// City DNA cache TTLs. Model-generated DNA is stable for a month; the
// static fallback is re-checked weekly so a recovered model can replace it.
const (
	cityDNAModelTTL  = 30 * 24 * time.Hour
	cityDNAStaticTTL = 7 * 24 * time.Hour
)

// Typical is one local dish or drink with ordering guidance.
type Typical struct {
	Name       string   `json:"name"`
	Note       string   `json:"note"`
	When       []string `json:"when,omitempty"`
	HowToOrder string   `json:"how_to_order,omitempty"`
}

// NeighborhoodHint points at an area worth knowing about.
type NeighborhoodHint struct {
	Name    string   `json:"name"`
	Vibe    []string `json:"vibe,omitempty"`
	BestFor []string `json:"best_for,omitempty"`
}

// CityDNA is the compact cultural profile of a city: what to eat and
// drink, which keywords signal local spots, and how to behave.
type CityDNA struct {
	City              string             `json:"city"`
	Language          string             `json:"language"`
	FoodTypicals      []Typical          `json:"food_typicals"`
	DrinkTypicals     []Typical          `json:"drink_typicals"`
	LocalKeywords     []string           `json:"local_keywords"`
	NegativeKeywords  []string           `json:"negative_keywords"`
	Etiquette         []string           `json:"etiquette"`
	NeighborhoodHints []NeighborhoodHint `json:"neighborhood_hints"`
}

// OrderTip is per-slot ordering advice in a guide.
type OrderTip struct {
	SlotID string `json:"slot_id"`
	Tip    string `json:"tip"`
}

// LocalGuide is the reader-facing companion text attached to a plan.
type LocalGuide struct {
	Headline         string               `json:"headline"`
	Summary          string               `json:"summary"`
	ClimateAdvice    []string             `json:"climate_advice"`
	LocalTypicals    map[string][]Typical `json:"local_typicals"`
	PerSlotOrderTips []OrderTip           `json:"per_slot_order_tips"`
	PracticalNotes   []string             `json:"practical_notes"`
}

// GuideBuilder produces City DNA and local guides, model-first with static
// fallbacks. Safe for concurrent use.
type GuideBuilder struct {
	client ChatClient
	logger *slog.Logger
	cache  *cache.Cache
}

func NewGuideBuilder(client ChatClient, logger *slog.Logger) *GuideBuilder {
	return &GuideBuilder{
		client: client,
		logger: logger,
		cache:  cache.New(cityDNAModelTTL, time.Hour),
	}
}

func cityDNAKey(city, language string) string {
	safeCity := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(city)), " ", "_")
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		lang = "es"
	}
	return fmt.Sprintf("city_dna:v1:%s:%s", safeCity, lang)
}

// CityDNA resolves the cultural profile for a city: cache, then model,
// then the static city table. It never fails.
func (b *GuideBuilder) CityDNA(ctx context.Context, city, language string) CityDNA {
	key := cityDNAKey(city, language)
	if cached, ok := b.cache.Get(key); ok {
		b.logger.Info("city dna cache hit", slog.String("city", city))
		return cached.(CityDNA)
	}

	if b.client != nil {
		dna, err := b.modelCityDNA(ctx, city, language)
		if err == nil {
			b.cache.Set(key, dna, cityDNAModelTTL)
			b.logger.Info("city dna generated",
				slog.String("city", city), slog.Int("foods", len(dna.FoodTypicals)))
			return dna
		}
		b.logger.Warn("llm city dna failed",
			slog.String("city", city), slog.Any("error", err))
	}

	dna := CityFallback(city)
	b.cache.Set(key, dna, cityDNAStaticTTL)
	b.logger.Info("city dna static fallback", slog.String("city", city))
	return dna
}

func (b *GuideBuilder) modelCityDNA(ctx context.Context, city, language string) (CityDNA, error) {
	prompt := fmt.Sprintf(
		"You are an expert local travel guide. "+
			"Create a compact City DNA for food/drink/culture that is culturally accurate. "+
			"Return STRICT JSON only, no markdown. "+
			"Do NOT invent venues, only describe typical dishes/drinks.\n\n"+
			"Generate City DNA for %s in %s. Schema: "+
			`{"city":%q,"language":%q,`+
			`"food_typicals":[{"name":"Dish Name","note":"Description","when":["morning"],"how_to_order":"Tip"}],`+
			`"drink_typicals":[{"name":"Drink Name","note":"Description","when":["evening"],"how_to_order":"Tip"}],`+
			`"local_keywords":["keyword1"],"negative_keywords":["tourist_trap"],`+
			`"etiquette":["Tip 1"],`+
			`"neighborhood_hints":[{"name":"Neighborhood","vibe":["cool"],"best_for":["nightlife"]}]}`,
		city, language, city, language)

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.6),
		ResponseMIMEType: "application/json",
	}
	raw, err := b.client.GenerateContent(ctx, prompt, config)
	if err != nil {
		return CityDNA{}, err
	}

	var dna CityDNA
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &dna); err != nil {
		return CityDNA{}, fmt.Errorf("parse city dna: %w", err)
	}
	if dna.City == "" {
		dna.City = city
	}
	if dna.Language == "" {
		dna.Language = language
	}
	return dna, nil
}
