package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nowa-app/planner-api/internal/planner/temporal"
	"github.com/nowa-app/planner-api/internal/types"
)

func openHigh() types.OpenStatus {
	v := true
	return types.OpenStatus{IsOpen: &v, Confidence: "high", Reason: temporal.ReasonOpenForSlot}
}

func closedHigh() types.OpenStatus {
	v := false
	return types.OpenStatus{IsOpen: &v, Confidence: "high", Reason: temporal.ReasonClosedForSlot}
}

func unknown() types.OpenStatus {
	return types.OpenStatus{Confidence: "low", Reason: temporal.ReasonHoursMissing}
}

func barPlace() types.Place {
	return types.Place{
		PlaceID:          "bar-1",
		Name:             "Testbar",
		Category:         "bar",
		Rating:           4.5,
		UserRatingsTotal: 1000,
	}
}

func TestScore_ClosedIsHardRejected(t *testing.T) {
	s := ScorePlaceForSlot(barPlace(), []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, closedHigh(), 100)
	assert.LessOrEqual(t, s, -9000.0)
}

func TestScore_OpenBeatsUnknown(t *testing.T) {
	p := barPlace()
	open := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	unk := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, unknown(), 100)

	// +15 for confirmed open versus -3 for unknown hours.
	assert.InDelta(t, 18.0, open-unk, 0.001)
}

func TestScore_MediumConfidenceOpenIsDiscounted(t *testing.T) {
	p := barPlace()
	v := true
	medium := types.OpenStatus{IsOpen: &v, Confidence: "medium", Reason: temporal.ReasonClosingDuringSlot}

	high := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	med := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, medium, 100)
	assert.InDelta(t, 5.0, high-med, 0.001)
}

func TestScore_CategoryMatchBonus(t *testing.T) {
	match := barPlace()
	miss := barPlace()
	miss.Category = "restaurant"

	sMatch := ScorePlaceForSlot(match, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	sMiss := ScorePlaceForSlot(miss, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	assert.GreaterOrEqual(t, sMatch-sMiss, 25.0)
}

func TestScore_DaypartPenalty(t *testing.T) {
	p := barPlace()
	evening := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	morning := ScorePlaceForSlot(p, []string{"bar"}, temporal.Morning, types.DiscoveryLocal, nil, openHigh(), 100)
	assert.InDelta(t, 25.0, evening-morning, 0.001)
}

func TestScore_QualityTerms(t *testing.T) {
	lo := barPlace()
	lo.Rating = 3.0
	lo.UserRatingsTotal = 0
	hi := barPlace()
	hi.Rating = 5.0
	hi.UserRatingsTotal = 3000 // capped at 6*500

	sLo := ScorePlaceForSlot(lo, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	sHi := ScorePlaceForSlot(hi, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	// Two extra rating points at x6 plus the full 7.2 popularity cap.
	assert.InDelta(t, 12.0+7.2, sHi-sLo, 0.001)
}

func TestScore_DiscoveryModeLocal(t *testing.T) {
	touristy := barPlace()
	touristy.TouristDensity = 3
	favorite := barPlace()
	favorite.LocalFavorite = true

	base := ScorePlaceForSlot(barPlace(), []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	sTouristy := ScorePlaceForSlot(touristy, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	sFavorite := ScorePlaceForSlot(favorite, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)

	assert.InDelta(t, -10.0, sTouristy-base, 0.001)
	assert.InDelta(t, 8.0, sFavorite-base, 0.001)
}

func TestScore_TouristModeFlatBonus(t *testing.T) {
	p := barPlace()
	p.TouristDensity = 3
	local := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 100)
	tourist := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryTourist, nil, openHigh(), 100)
	mixed := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryMixed, nil, openHigh(), 100)

	// Tourist and mixed skip the density penalty and add the flat +2.
	assert.InDelta(t, 12.0, tourist-local, 0.001)
	assert.Equal(t, tourist, mixed)
}

func TestScore_IndoorOnlyPenalty(t *testing.T) {
	outdoor := barPlace()
	f := false
	outdoor.IsIndoor = &f
	unknownIndoor := barPlace()

	sOutdoor := ScorePlaceForSlot(outdoor, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, []string{"indoor_only"}, openHigh(), 100)
	sUnknown := ScorePlaceForSlot(unknownIndoor, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, []string{"indoor_only"}, openHigh(), 100)
	assert.InDelta(t, 50.0, sUnknown-sOutdoor, 0.001)
}

func TestScore_QuietPenaltyScalesWithNoise(t *testing.T) {
	loud := barPlace()
	loud.NoiseLevel = 5
	calm := barPlace()
	calm.NoiseLevel = 2

	sLoud := ScorePlaceForSlot(loud, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, []string{"quiet"}, openHigh(), 100)
	sCalm := ScorePlaceForSlot(calm, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, []string{"quiet"}, openHigh(), 100)
	assert.InDelta(t, 12.0, sCalm-sLoud, 0.001)
}

func TestScore_DistanceDecay(t *testing.T) {
	p := barPlace()
	near := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 0)
	far := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 1500)
	veryFar := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 30000)

	assert.InDelta(t, 5.0, near-far, 0.001)
	// Capped at 10 points.
	assert.InDelta(t, 10.0, near-veryFar, 0.001)
}

func TestScore_NoWalkDoublesDownOnDistance(t *testing.T) {
	p := barPlace()
	plain := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, nil, openHigh(), 1000)
	noWalk := ScorePlaceForSlot(p, []string{"bar"}, temporal.Evening, types.DiscoveryLocal, []string{"no_walk"}, openHigh(), 1000)
	assert.InDelta(t, 5.0, plain-noWalk, 0.001)
}
