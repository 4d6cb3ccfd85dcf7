package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowa-app/planner-api/internal/types"
)

func TestCityDNAKey(t *testing.T) {
	assert.Equal(t, "city_dna:v1:new_york:es", cityDNAKey(" New York ", ""))
	assert.Equal(t, "city_dna:v1:munich:en", cityDNAKey("Munich", "EN"))
}

func TestCityFallback_CuratedCity(t *testing.T) {
	dna := CityFallback("Munich")
	assert.Equal(t, "Munich", dna.City)
	require.NotEmpty(t, dna.FoodTypicals)
	assert.Equal(t, "Weißwurst", dna.FoodTypicals[0].Name)
	assert.Contains(t, dna.LocalKeywords, "biergarten")

	// Lookup is case-insensitive.
	assert.Equal(t, "Tokyo", CityFallback("tokyo").City)
	assert.Equal(t, "New York", CityFallback("new york").City)
}

func TestCityFallback_RegionalMatch(t *testing.T) {
	vienna := CityFallback("Vienna")
	assert.Equal(t, "Vienna", vienna.City)
	assert.Contains(t, vienna.LocalKeywords, "old_town")

	osaka := CityFallback("Osaka")
	assert.Contains(t, osaka.LocalKeywords, "street_food")

	buenosAires := CityFallback("Buenos Aires")
	assert.Contains(t, buenosAires.LocalKeywords, "mercado")

	chicago := CityFallback("Chicago")
	assert.Contains(t, chicago.LocalKeywords, "food_truck")
}

func TestCityFallback_UnknownCity(t *testing.T) {
	dna := CityFallback("Atlantis")
	assert.Equal(t, "Atlantis", dna.City)
	assert.Empty(t, dna.FoodTypicals)
	assert.Contains(t, dna.NegativeKeywords, "tourist_trap")
	assert.Contains(t, dna.Etiquette, "Tip 10-15% if service was good")
}

func TestCityDNA_NoClientUsesStaticAndCaches(t *testing.T) {
	b := NewGuideBuilder(nil, testLogger())

	first := b.CityDNA(context.Background(), "Madrid", "es")
	assert.Equal(t, "Madrid", first.City)
	require.NotEmpty(t, first.FoodTypicals)

	second := b.CityDNA(context.Background(), "Madrid", "es")
	assert.Equal(t, first.City, second.City)
}

func TestCityDNA_ModelResponseParsed(t *testing.T) {
	client := &fakeChat{reply: `{
		"city":"Reykjavik","language":"es",
		"food_typicals":[{"name":"Plokkfiskur","note":"Guiso de pescado","when":["midday"],"how_to_order":"Pídelo en restaurantes tradicionales"}],
		"drink_typicals":[{"name":"Brennivín","note":"Aguardiente local","when":["evening"]}],
		"local_keywords":["harbor"],"etiquette":["Quítate los zapatos en casas"]
	}`}
	b := NewGuideBuilder(client, testLogger())

	dna := b.CityDNA(context.Background(), "Reykjavik", "es")
	assert.Equal(t, "Reykjavik", dna.City)
	require.Len(t, dna.FoodTypicals, 1)
	assert.Equal(t, "Plokkfiskur", dna.FoodTypicals[0].Name)

	// Second call is served from cache.
	b.CityDNA(context.Background(), "Reykjavik", "es")
	assert.Equal(t, 1, client.calls)
}

func TestCityDNA_ModelFailureFallsBackToStatic(t *testing.T) {
	client := &fakeChat{err: errors.New("model down")}
	b := NewGuideBuilder(client, testLogger())

	dna := b.CityDNA(context.Background(), "Rome", "es")
	assert.Equal(t, "Rome", dna.City)
	require.NotEmpty(t, dna.FoodTypicals)
	assert.Equal(t, "Carbonara", dna.FoodTypicals[0].Name)
}

func TestDeterministicGuide_ClimateAdvice(t *testing.T) {
	dna := CityFallback("Munich")

	t.Run("cold and snow", func(t *testing.T) {
		guide := deterministicGuide(dna, &types.WeatherSnapshot{FeelsLike: -2, Condition: "snow"})
		assert.Equal(t, "Plan adaptado al clima actual", guide.Headline)
		assert.Contains(t, guide.Summary, "Munich")
		require.Len(t, guide.ClimateAdvice, 2)
		assert.Contains(t, guide.ClimateAdvice[0], "frío")
		assert.Contains(t, guide.ClimateAdvice[1], "Nieve")
	})

	t.Run("hot", func(t *testing.T) {
		guide := deterministicGuide(dna, &types.WeatherSnapshot{FeelsLike: 31, Condition: "clear"})
		require.Len(t, guide.ClimateAdvice, 1)
		assert.Contains(t, guide.ClimateAdvice[0], "calor")
	})

	t.Run("rain", func(t *testing.T) {
		guide := deterministicGuide(dna, &types.WeatherSnapshot{FeelsLike: 15, Condition: "rain"})
		require.Len(t, guide.ClimateAdvice, 1)
		assert.Contains(t, guide.ClimateAdvice[0], "paraguas")
	})

	t.Run("mild has no advice", func(t *testing.T) {
		guide := deterministicGuide(dna, &types.WeatherSnapshot{FeelsLike: 18, Condition: "clear"})
		assert.Empty(t, guide.ClimateAdvice)
	})

	t.Run("nil weather defaults mild", func(t *testing.T) {
		guide := deterministicGuide(dna, nil)
		assert.Empty(t, guide.ClimateAdvice)
	})
}

func TestDeterministicGuide_TypicalsAndNotes(t *testing.T) {
	dna := CityFallback("Madrid")
	guide := deterministicGuide(dna, nil)

	assert.LessOrEqual(t, len(guide.LocalTypicals["food"]), 5)
	assert.LessOrEqual(t, len(guide.LocalTypicals["drinks"]), 5)
	assert.Equal(t, dna.Etiquette, guide.PracticalNotes)
	assert.Empty(t, guide.PerSlotOrderTips)
}

func TestLocalGuide_ModelFailureFallsBack(t *testing.T) {
	client := &fakeChat{err: errors.New("timeout")}
	b := NewGuideBuilder(client, testLogger())

	guide := b.LocalGuide(context.Background(), GuideInput{
		DNA:     CityFallback("Lisbon"),
		Weather: &types.WeatherSnapshot{FeelsLike: 4, Condition: "rain"},
	})

	assert.Equal(t, "Plan adaptado al clima actual", guide.Headline)
	assert.Contains(t, guide.Summary, "Lisbon")
	assert.Len(t, guide.ClimateAdvice, 2)
}

func TestLocalGuide_ModelResponseParsed(t *testing.T) {
	client := &fakeChat{reply: `{
		"headline":"Tarde de tapas en Madrid",
		"summary":"Una ruta castiza por La Latina.",
		"climate_advice":["Lleva chaqueta ligera"],
		"local_typicals":{"food":[{"name":"Caña","note":"clásico"}]},
		"per_slot_order_tips":[{"slot_id":"drinks","tip":"Si ves vermut de grifo, pídelo"}],
		"practical_notes":["Cena tarde"]
	}`}
	b := NewGuideBuilder(client, testLogger())

	guide := b.LocalGuide(context.Background(), GuideInput{
		DNA: CityFallback("Madrid"),
		Slots: []types.FilledSlot{
			rankedSlot("drinks", "p1"),
		},
	})

	assert.Equal(t, "Tarde de tapas en Madrid", guide.Headline)
	require.Len(t, guide.PerSlotOrderTips, 1)
	assert.Equal(t, "drinks", guide.PerSlotOrderTips[0].SlotID)
}
