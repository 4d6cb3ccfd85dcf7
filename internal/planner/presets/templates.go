// Package presets holds the intent template catalog and the rules that
// resolve an intent plus timing into a concrete, resized slot list.
package presets

import "github.com/nowa-app/planner-api/internal/types"

// Template keys.
const (
	ChillEvening   = "chill_evening"
	ShopLocal      = "shop_local"
	MuseumDay      = "museum_day"
	CultureAltLate = "culture_alt_late"
	FoodTour       = "food_tour"
	CoffeeHop      = "coffee_hop"
	Nightlife      = "nightlife"
	OutdoorActive  = "outdoor_active"
	RomanticDate   = "romantic_date"
	HighlightsTour = "highlights_tour"
)

func spec(id, title string, duration int, categories, constraints []string, role string) types.SlotSpec {
	return types.SlotSpec{
		SlotID:      id,
		Title:       title,
		DurationMin: duration,
		Categories:  categories,
		Constraints: constraints,
		Role:        role,
	}
}

// intentTemplates is the fixed catalog. Slot order within a template is the
// default visit order.
var intentTemplates = map[string][]types.SlotSpec{
	ChillEvening: {
		spec("drinks", "🍸 Bar acogedor (indoor)", 75,
			[]string{"bar", "cocktail_bar", "wine_bar", "hotel_bar"},
			[]string{"indoor", "quiet"}, types.RoleAnchor),
		spec("late_food", "🌭 Snack caliente", 40,
			[]string{"late_food", "fast_food"},
			[]string{"quick"}, types.RoleReward),
	},

	ShopLocal: {
		spec("shopping_cluster", "🛍️ Zona de shopping local", 90,
			[]string{"shopping_area", "market", "boutique", "concept_store", "vintage"},
			nil, types.RoleAnchor),
		spec("coffee_break", "☕ Coffee break cercano", 25,
			[]string{"cafe", "bakery"}, []string{"warm"}, types.RoleNice),
		spec("photo_stop", "📸 Spot fotogénico cercano", 25,
			[]string{"photo_spot", "viewpoint", "street_art"}, nil, types.RoleOptional),
	},

	MuseumDay: {
		spec("museum", "🏛️ Museo imperdible", 110,
			[]string{"museum"}, []string{"indoor"}, types.RoleReward),
		spec("coffee_break", "☕ Café cercano", 30,
			[]string{"cafe", "bakery"}, []string{"warm"}, types.RoleAnchor),
	},

	CultureAltLate: {
		spec("culture_alt", "🎭 Cultura nocturna (indoor, abierto tarde)", 75,
			[]string{"cultural_bar", "jazz_bar", "cinema", "theater"},
			[]string{"indoor", "quiet"}, types.RoleReward),
		spec("late_coffee", "🍰 Postre / té caliente", 35,
			[]string{"dessert", "cafe"}, []string{"warm"}, types.RoleAnchor),
	},

	FoodTour: {
		spec("street_food", "🌮 Street food auténtico", 35,
			[]string{"street_food", "food_truck", "market_stall"}, nil, types.RoleAnchor),
		spec("local_restaurant", "🍽️ Restaurante local típico", 75,
			[]string{"local_restaurant", "traditional_food", "ethnic_restaurant"}, nil, types.RoleReward),
		spec("dessert_spot", "🍰 Postre típico", 30,
			[]string{"dessert", "bakery", "ice_cream", "patisserie"}, nil, types.RoleNice),
	},

	CoffeeHop: {
		spec("specialty_coffee_1", "☕ Café de especialidad", 40,
			[]string{"specialty_coffee", "roastery", "third_wave_coffee"},
			[]string{"indoor", "quiet"}, types.RoleAnchor),
		spec("pastry", "🥐 Pastelería artesanal", 30,
			[]string{"bakery", "patisserie"}, nil, types.RoleNice),
		spec("specialty_coffee_2", "☕ Segunda parada café", 35,
			[]string{"cafe", "specialty_coffee"}, nil, types.RoleOptional),
	},

	Nightlife: {
		spec("pre_drinks", "🍸 Pre-drinks bar", 60,
			[]string{"cocktail_bar", "wine_bar", "rooftop_bar"},
			[]string{"indoor"}, types.RoleAnchor),
		spec("club", "💃 Club/discoteca", 120,
			[]string{"nightclub", "dance_club"}, nil, types.RoleReward),
		spec("late_night_food", "🌭 Comida post-club", 30,
			[]string{"late_food", "kebab", "pizza", "fast_food"}, nil, types.RoleNice),
	},

	OutdoorActive: {
		spec("scenic_walk", "🚶 Caminata escénica", 50,
			[]string{"park", "trail", "waterfront"},
			[]string{"outdoor"}, types.RoleAnchor),
		spec("viewpoint", "📸 Mirador panorámico", 25,
			[]string{"viewpoint", "observation_deck"},
			[]string{"outdoor"}, types.RoleReward),
		spec("outdoor_cafe", "☕ Café con terraza", 35,
			[]string{"cafe"}, []string{"prefer_terrace"}, types.RoleNice),
	},

	RomanticDate: {
		spec("romantic_dinner", "🌹 Cena romántica", 90,
			[]string{"romantic_restaurant", "fine_dining", "upscale_restaurant"},
			[]string{"quiet", "indoor"}, types.RoleReward),
		spec("sunset_spot", "🌅 Spot para atardecer", 30,
			[]string{"viewpoint", "waterfront", "rooftop"},
			[]string{"outdoor"}, types.RoleAnchor),
		spec("cocktail_lounge", "🍸 Lounge íntimo", 60,
			[]string{"cocktail_bar", "lounge", "speakeasy"},
			[]string{"quiet", "indoor"}, types.RoleNice),
	},

	HighlightsTour: {
		spec("landmark_1", "🏰 Monumento icónico", 60,
			[]string{"landmark", "monument", "famous_site"}, nil, types.RoleAnchor),
		spec("old_town_walk", "🚶 Paseo por el casco antiguo", 40,
			[]string{"historic_district", "plaza", "photo_spot"},
			[]string{"outdoor"}, types.RoleNice),
		spec("coffee_break", "☕ Pausa de café", 30,
			[]string{"cafe", "bakery"}, []string{"warm"}, types.RoleNice),
		spec("landmark_2", "⛪ Segundo imperdible", 60,
			[]string{"landmark", "church", "castle", "famous_site"}, nil, types.RoleReward),
		spec("local_snack", "🥨 Snack local", 30,
			[]string{"street_food", "market_stall", "fast_food"}, nil, types.RoleOptional),
		spec("viewpoint_finale", "🌇 Mirador final", 35,
			[]string{"viewpoint", "observation_deck"},
			[]string{"outdoor"}, types.RoleReward),
	},
}

// intentToTemplate maps raw intent strings to template keys.
var intentToTemplate = map[string]string{
	"chill":  ChillEvening,
	"drink":  ChillEvening,
	"drinks": ChillEvening,

	"shop_local": ShopLocal,
	"shopping":   ShopLocal,
	"shop":       ShopLocal,

	"museum":  MuseumDay,
	"culture": MuseumDay,
	"art":     MuseumDay,

	"food":      FoodTour,
	"food_tour": FoodTour,
	"eat":       FoodTour,
	"foodie":    FoodTour,

	"coffee":     CoffeeHop,
	"coffee_hop": CoffeeHop,
	"cafe":       CoffeeHop,

	"nightlife": Nightlife,
	"party":     Nightlife,
	"dance":     Nightlife,
	"club":      Nightlife,
	"night":     Nightlife,

	"outdoor": OutdoorActive,
	"walk":    OutdoorActive,
	"hike":    OutdoorActive,
	"nature":  OutdoorActive,
	"active":  OutdoorActive,

	"date":     RomanticDate,
	"romantic": RomanticDate,
	"romance":  RomanticDate,

	"highlights":  HighlightsTour,
	"sightseeing": HighlightsTour,
	"tourist":     HighlightsTour,
	"landmarks":   HighlightsTour,
}

// Template returns a copy of the catalog entry for key, or nil when the key
// is unknown. Callers get their own slice so resizing never mutates the
// catalog.
func Template(key string) []types.SlotSpec {
	base, ok := intentTemplates[key]
	if !ok {
		return nil
	}
	out := make([]types.SlotSpec, len(base))
	copy(out, base)
	return out
}
