// Package providers is the uniform gateway to the external data services:
// places search, weather snapshots and directions. It owns the process-wide
// response caches, deduplicates concurrent identical requests, and degrades
// to fallbacks instead of failing the plan build.
package providers

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/nowa-app/planner-api/internal/types"
	"github.com/nowa-app/planner-api/pkg/observability"
)

// PlacesClient is the vendor-facing places contract.
type PlacesClient interface {
	Nearby(ctx context.Context, location types.Location, radiusM int, placeType, keyword string) ([]types.Place, error)
	Details(ctx context.Context, placeID string) (*types.Place, error)
}

// WeatherClient produces a current-conditions snapshot for a coordinate.
type WeatherClient interface {
	Snapshot(ctx context.Context, location types.Location) (*types.WeatherSnapshot, error)
}

// DirectionsClient routes between two coordinates for one travel mode.
type DirectionsClient interface {
	Route(ctx context.Context, from, to types.Location, mode string) (*types.Route, error)
}

const (
	defaultRadiusM    = 2500
	maxCategoryFanout = 6

	candidateTTL         = 15 * time.Minute
	candidateEnrichedTTL = time.Hour
	weatherTTL           = 30 * time.Minute
	directionsTTL        = 10 * time.Minute
)

// Aggregator fronts the three vendor clients behind caching and request
// deduplication.
type Aggregator struct {
	logger     *slog.Logger
	places     PlacesClient
	weather    WeatherClient
	directions DirectionsClient
	language   string

	candidateCache  *cache.Cache
	weatherCache    *cache.Cache
	directionsCache *cache.Cache
	group           singleflight.Group
}

func NewAggregator(places PlacesClient, weather WeatherClient, directions DirectionsClient, language string, logger *slog.Logger) *Aggregator {
	if language == "" {
		language = "es"
	}
	return &Aggregator{
		logger:          logger,
		places:          places,
		weather:         weather,
		directions:      directions,
		language:        language,
		candidateCache:  cache.New(candidateTTL, 10*time.Minute),
		weatherCache:    cache.New(weatherTTL, 10*time.Minute),
		directionsCache: cache.New(directionsTTL, 10*time.Minute),
	}
}

// CandidateQuery bundles the arguments of a candidate fetch.
type CandidateQuery struct {
	City         string
	UserLocation types.Location
	Categories   []string
	RadiusM      int
	Enrich       bool
	EnrichLimit  int
}

// Candidates fetches and normalizes places for the requested categories.
// At most six categories are queried, results are deduplicated by place_id,
// and anything that matches none of the requested categories is dropped.
// Concurrent identical queries share a single vendor round-trip.
func (a *Aggregator) Candidates(ctx context.Context, q CandidateQuery) ([]types.Place, error) {
	ctx, span := otel.Tracer("Providers").Start(ctx, "Candidates", trace.WithAttributes(
		attribute.String("city", q.City),
		attribute.Int("categories", len(q.Categories)),
	))
	defer span.End()

	if q.RadiusM <= 0 {
		q.RadiusM = defaultRadiusM
	}
	if q.EnrichLimit <= 0 {
		q.EnrichLimit = 25
	}

	key := candidateCacheKey(q)
	if cached, ok := a.candidateCache.Get(key); ok {
		span.SetStatus(codes.Ok, "cache hit")
		return cached.([]types.Place), nil
	}

	v, err, _ := a.group.Do(key, func() (any, error) {
		return a.fetchCandidates(ctx, q, key)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "fetched")
	return v.([]types.Place), nil
}

func (a *Aggregator) fetchCandidates(ctx context.Context, q CandidateQuery, key string) ([]types.Place, error) {
	if a.places == nil {
		return nil, fmt.Errorf("places: %w", types.ErrConfiguration)
	}

	seen := make(map[string]struct{})
	var normalized []types.Place

	categories := q.Categories
	if len(categories) > maxCategoryFanout {
		categories = categories[:maxCategoryFanout]
	}

	for _, cat := range categories {
		mapping, ok := CategoryMapping(cat)
		if !ok {
			a.logger.Warn("unknown category, skipping", slog.String("category", cat))
			continue
		}

		raw, err := a.places.Nearby(ctx, q.UserLocation, q.RadiusM, mapping.Type, mapping.Keyword)
		observability.PlacesAPICalls.Inc()
		observability.Incr("places_api_calls", 1)
		if err != nil {
			observability.PlacesAPIFailures.Inc()
			observability.Incr("places_api_failures", 1)
			a.logger.Warn("nearby search failed",
				slog.String("category", cat), slog.Any("error", err))
			continue
		}
		a.logger.Info("nearby search",
			slog.String("category", cat),
			slog.String("type", mapping.Type),
			slog.Int("results", len(raw)))

		for _, p := range raw {
			if p.PlaceID == "" {
				continue
			}
			if _, dup := seen[p.PlaceID]; dup {
				continue
			}
			seen[p.PlaceID] = struct{}{}
			if n, ok := normalizePlace(p, q.Categories); ok {
				normalized = append(normalized, n)
			}
		}
	}

	if q.Enrich {
		a.enrichOpeningHours(ctx, normalized, q.Categories, q.EnrichLimit)
	}

	ttl := candidateTTL
	if q.Enrich {
		ttl = candidateEnrichedTTL
	}
	a.candidateCache.Set(key, normalized, ttl)

	a.logger.Info("candidates normalized",
		slog.String("city", q.City),
		slog.Int("total", len(normalized)),
		slog.Int("raw", len(seen)))
	return normalized, nil
}

// enrichOpeningHours fetches details for the first limit places and merges
// hours, types and business status in place. Detail failures keep the
// un-enriched record.
func (a *Aggregator) enrichOpeningHours(ctx context.Context, places []types.Place, desired []string, limit int) {
	n := len(places)
	if limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		details, err := a.places.Details(ctx, places[i].PlaceID)
		observability.PlacesDetailsCalls.Inc()
		observability.Incr("places_details_calls", 1)
		if err != nil || details == nil {
			a.logger.Warn("details enrichment failed",
				slog.String("place_id", places[i].PlaceID), slog.Any("error", err))
			continue
		}
		if details.OpeningHours != nil {
			places[i].OpeningHours = details.OpeningHours
		}
		if len(details.Types) > 0 {
			places[i].Types = details.Types
			if guessed := GuessCategory(details.Types, desired); guessed != CategoryOther {
				places[i].Category = guessed
			}
		}
		if details.BusinessStatus != "" {
			places[i].BusinessStatus = details.BusinessStatus
		}
	}
}

// normalizePlace applies the strict category filter and fills the indoor and
// crowd defaults the scorer expects.
func normalizePlace(p types.Place, desired []string) (types.Place, bool) {
	guessed := GuessCategory(p.Types, desired)
	if guessed == CategoryOther {
		return types.Place{}, false
	}
	p.Category = guessed
	if p.IsIndoor == nil {
		indoor := true
		p.IsIndoor = &indoor
	}
	return p, true
}

// Weather returns a snapshot for the coordinate, cached at two-decimal
// precision. Any vendor failure synthesizes a low-confidence seasonal
// fallback rather than erroring.
func (a *Aggregator) Weather(ctx context.Context, location types.Location) *types.WeatherSnapshot {
	ctx, span := otel.Tracer("Providers").Start(ctx, "Weather")
	defer span.End()

	key := fmt.Sprintf("weather:v3:%.2f:%.2f", location.Lat, location.Lng)
	if cached, ok := a.weatherCache.Get(key); ok {
		span.SetStatus(codes.Ok, "cache hit")
		return cached.(*types.WeatherSnapshot)
	}

	if a.weather == nil {
		return a.seasonalFallback(time.Now())
	}

	snapshot, err := a.weather.Snapshot(ctx, location)
	observability.WeatherAPICalls.Inc()
	observability.Incr("weather_api_calls", 1)
	if err != nil || snapshot == nil {
		observability.WeatherAPIFailures.Inc()
		observability.Incr("weather_api_failures", 1)
		span.RecordError(err)
		a.logger.Warn("weather fetch failed, using seasonal fallback", slog.Any("error", err))
		return a.seasonalFallback(time.Now())
	}

	snapshot.Confidence = "high"
	if snapshot.Source == "" {
		snapshot.Source = "provider"
	}
	a.weatherCache.Set(key, snapshot, weatherTTL)

	a.logger.Info("weather snapshot",
		slog.Float64("temp", snapshot.Temp),
		slog.String("condition", snapshot.Condition))
	span.SetStatus(codes.Ok, "fetched")
	return snapshot
}

// seasonalFallback synthesizes plausible conditions from the month alone.
func (a *Aggregator) seasonalFallback(now time.Time) *types.WeatherSnapshot {
	var temp float64
	var condition string
	switch now.Month() {
	case time.December, time.January, time.February:
		temp, condition = 8, "cloudy"
	case time.March, time.April, time.May:
		temp, condition = 15, "partly cloudy"
	case time.June, time.July, time.August:
		temp, condition = 25, "clear"
	default:
		temp, condition = 12, "cloudy"
	}
	a.logger.Warn("using seasonal fallback weather",
		slog.Float64("temp", temp), slog.String("condition", condition))
	return &types.WeatherSnapshot{
		Temp:       temp,
		FeelsLike:  temp,
		Condition:  condition,
		Confidence: "low",
		Source:     "fallback",
	}
}

// Route fetches one travel-mode route between two coordinates, cached at
// five-decimal precision.
func (a *Aggregator) Route(ctx context.Context, from, to types.Location, mode string) (*types.Route, error) {
	if a.directions == nil {
		return nil, fmt.Errorf("directions: %w", types.ErrConfiguration)
	}

	key := fmt.Sprintf("directions:v3:%.5f:%.5f:%.5f:%.5f:%s:%s",
		from.Lat, from.Lng, to.Lat, to.Lng, mode, a.language)
	if cached, ok := a.directionsCache.Get(key); ok {
		return cached.(*types.Route), nil
	}

	route, err := a.directions.Route(ctx, from, to, mode)
	if err != nil {
		return nil, fmt.Errorf("directions %s: %w", mode, err)
	}
	a.directionsCache.Set(key, route, directionsTTL)
	return route, nil
}

// DistanceM is the haversine great-circle distance in meters.
func DistanceM(a, b types.Location) float64 {
	const earthRadiusM = 6371000

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	x := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(x)))
}

func candidateCacheKey(q CandidateQuery) string {
	cats := make([]string, len(q.Categories))
	copy(cats, q.Categories)
	sort.Strings(cats)
	if len(cats) > 3 {
		cats = cats[:3]
	}
	return fmt.Sprintf("candidates:v3:%s:%s:%d:%t",
		strings.ToLower(q.City), strings.Join(cats, "-"), q.RadiusM, q.Enrich)
}
