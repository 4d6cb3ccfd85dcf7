// Package scoring ranks candidate places for a slot. The function is pure
// and deterministic so two runs over the same candidates always produce the
// same ordering.
package scoring

import (
	"github.com/nowa-app/planner-api/internal/planner/temporal"
	"github.com/nowa-app/planner-api/internal/types"
)

// HardReject is returned for places known to be closed during the slot.
const HardReject = -10000.0

// ScorePlaceForSlot rates place for a slot. Closed places are hard-rejected;
// everything else accumulates open-status, category, daypart, quality,
// discovery-mode, constraint and distance terms.
func ScorePlaceForSlot(
	place types.Place,
	slotCategories []string,
	daypart string,
	discoveryMode string,
	constraints []string,
	openStatus types.OpenStatus,
	distanceM float64,
) float64 {
	if openStatus.IsOpen != nil && !*openStatus.IsOpen {
		return HardReject
	}

	score := 0.0

	if openStatus.IsOpen != nil {
		score += 15.0
		if openStatus.Confidence == "medium" {
			score -= 5.0 // closing soon
		}
	} else {
		score -= 3.0 // hours unknown
	}

	if contains(slotCategories, place.Category) {
		score += 30.0
	} else {
		score += 5.0
	}

	if place.Category != "" && !temporal.CategorySuitable(place.Category, daypart) {
		score -= 25.0
	}

	score += min(place.Rating, 5.0) * 6.0
	score += min(float64(place.UserRatingsTotal)/500.0, 6.0) * 1.2

	if discoveryMode == types.DiscoveryLocal {
		if place.TouristDensity >= 2 {
			score -= 10.0
		}
		if place.LocalFavorite {
			score += 8.0
		}
	} else {
		score += 2.0
	}

	if contains(constraints, "indoor_only") && place.IsIndoor != nil && !*place.IsIndoor {
		score -= 50.0
	}
	if contains(constraints, "quiet") {
		noise := place.NoiseLevel
		if noise == 0 {
			noise = 1
		}
		score -= float64(max(0, noise-2)) * 4.0
	}
	if contains(constraints, "no_walk") && distanceM >= 0 {
		score -= min(distanceM/200.0, 15.0)
	}

	if distanceM >= 0 {
		score -= min(distanceM/300.0, 10.0)
	}

	return score
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
