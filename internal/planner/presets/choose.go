package presets

import (
	"math"
	"sort"
	"strings"

	"github.com/nowa-app/planner-api/internal/types"
)

const extraLandmarkSlotID = "landmark_extra"

// rolePriority orders slot roles for shrinking. Lower keeps its place first.
var rolePriority = map[string]int{
	types.RoleReward:   0,
	types.RoleAnchor:   1,
	types.RoleNice:     2,
	types.RoleOptional: 3,
}

// energyMultiplier maps the resolved energy level to a pace factor.
var energyMultiplier = map[string]float64{
	"low":    0.8,
	"medium": 1.0,
	"high":   1.2,
}

// ResolveEnergy maps the 0..3 wire value to a named level. 2 is the default
// and means medium.
func ResolveEnergy(energy int) string {
	switch {
	case energy <= 1:
		return "low"
	case energy >= 3:
		return "high"
	default:
		return "medium"
	}
}

// ChooseTemplate resolves intent, timing and pace into a template key and
// its resized slot list.
//
// Fallback rules, in order: museums after dark become alt culture, party
// intents stay nightlife for tonight, and outdoor intents at late hours fall
// back to an indoor evening.
func ChooseTemplate(intent, whenSelection string, hour int, durationHours float64, energy string) (string, []types.SlotSpec) {
	intent = strings.ToLower(strings.TrimSpace(intent))
	if intent == "" {
		intent = "chill"
	}
	whenSelection = strings.ToLower(strings.TrimSpace(whenSelection))
	if whenSelection == "" {
		whenSelection = types.WhenNow
	}

	key, ok := intentToTemplate[intent]
	if !ok {
		key = ChillEvening
	}

	switch {
	case intent == "museum" && (hour >= 18 || hour <= 6 || whenSelection == types.WhenTonight):
		key = CultureAltLate
	case whenSelection == types.WhenTonight && (intent == "party" || intent == "dance" || intent == "club"):
		key = Nightlife
	case (intent == "outdoor" || intent == "walk" || intent == "hike") && (hour >= 21 || hour <= 6):
		key = ChillEvening
	}

	return key, Adjust(key, Template(key), durationHours, energy)
}

// Adjust resizes a slot list to the requested duration and pace.
//
// The pace multiplier both scales slot durations and widens or narrows the
// ideal slot count: a low-energy visitor covers fewer stops with shorter
// stays, a high-energy one packs more in. Shrinking drops the least
// important roles first; growing only applies to the highlights tour, which
// gains at most one extra landmark before the closing viewpoint. Calling
// Adjust on its own output is a no-op.
func Adjust(key string, slots []types.SlotSpec, durationHours float64, energy string) []types.SlotSpec {
	if len(slots) == 0 {
		return slots
	}
	mult, ok := energyMultiplier[energy]
	if !ok {
		mult = 1.0
	}
	if durationHours <= 0 {
		durationHours = defaultDurationHours(key)
	}

	out := make([]types.SlotSpec, len(slots))
	copy(out, slots)
	for i := range out {
		if out[i].BaseDurationMin == 0 {
			out[i].BaseDurationMin = out[i].DurationMin
		}
	}

	var totalBase int
	for _, s := range out {
		totalBase += s.BaseDurationMin
	}
	avgBase := float64(totalBase) / float64(len(out))

	idealCount := int(math.Floor(durationHours * 60 * mult / avgBase))
	if idealCount < 1 {
		idealCount = 1
	}

	switch {
	case idealCount < len(out):
		out = shrinkByRole(out, idealCount)
	case idealCount > len(out) && key == HighlightsTour:
		out = growHighlights(out)
	}

	if mult != 1.0 {
		for i := range out {
			out[i].DurationMin = int(math.Round(float64(out[i].BaseDurationMin) * mult))
		}
	}
	return out
}

// shrinkByRole keeps the n most important slots, preserving template order
// among the survivors.
func shrinkByRole(slots []types.SlotSpec, n int) []types.SlotSpec {
	type indexed struct {
		spec types.SlotSpec
		pos  int
	}
	ranked := make([]indexed, len(slots))
	for i, s := range slots {
		ranked[i] = indexed{s, i}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return rolePriority[ranked[i].spec.Role] < rolePriority[ranked[j].spec.Role]
	})
	ranked = ranked[:n]
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].pos < ranked[j].pos })

	out := make([]types.SlotSpec, n)
	for i, r := range ranked {
		out[i] = r.spec
	}
	return out
}

// growHighlights inserts one extra landmark slot before the final viewpoint.
// Already-grown lists are left alone.
func growHighlights(slots []types.SlotSpec) []types.SlotSpec {
	for _, s := range slots {
		if s.SlotID == extraLandmarkSlotID {
			return slots
		}
	}
	extra := spec(extraLandmarkSlotID, "🏛️ Parada extra imperdible", 60,
		[]string{"landmark", "famous_site", "monument"}, nil, types.RoleNice)
	extra.BaseDurationMin = extra.DurationMin

	out := make([]types.SlotSpec, 0, len(slots)+1)
	out = append(out, slots[:len(slots)-1]...)
	out = append(out, extra, slots[len(slots)-1])
	return out
}

// defaultDurationHours sizes unbounded requests so templates keep their full
// slot list at medium pace.
func defaultDurationHours(key string) float64 {
	var total int
	for _, s := range intentTemplates[key] {
		total += s.DurationMin
	}
	if total == 0 {
		return 2
	}
	return float64(total) / 60
}
