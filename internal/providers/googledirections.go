package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/nowa-app/planner-api/internal/types"
)

const (
	googleDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"
	directionsVendorTTL = 10 * time.Minute
)

// modeToGoogle translates internal travel modes to the Directions API names.
var modeToGoogle = map[string]string{
	"walk":  "walking",
	"bike":  "bicycling",
	"drive": "driving",
}

// GoogleDirections routes between coordinate pairs per travel mode.
type GoogleDirections struct {
	apiKey   string
	language string
	client   *http.Client
	cache    *cache.Cache
}

func NewGoogleDirections(apiKey, language string) (*GoogleDirections, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google directions api key: %w", types.ErrConfiguration)
	}
	if language == "" {
		language = "en"
	}
	return &GoogleDirections{
		apiKey:   apiKey,
		language: language,
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    cache.New(directionsVendorTTL, 10*time.Minute),
	}, nil
}

// Route fetches one leg for one mode. A routable pair with no route returns
// a zero route rather than an error.
func (g *GoogleDirections) Route(ctx context.Context, from, to types.Location, mode string) (*types.Route, error) {
	gmode, ok := modeToGoogle[mode]
	if !ok {
		gmode = mode
	}

	key := fmt.Sprintf("gdir:%.5f,%.5f:%.5f,%.5f:%s:%s",
		from.Lat, from.Lng, to.Lat, to.Lng, gmode, g.language)
	if cached, ok := g.cache.Get(key); ok {
		return cached.(*types.Route), nil
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("origin", fmt.Sprintf("%f,%f", from.Lat, from.Lng))
	params.Set("destination", fmt.Sprintf("%f,%f", to.Lat, to.Lng))
	params.Set("mode", gmode)
	params.Set("language", g.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleDirectionsURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions fetch: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Routes []struct {
			Legs []struct {
				Distance struct {
					Value int `json:"value"`
				} `json:"distance"`
				Duration struct {
					Value int `json:"value"`
				} `json:"duration"`
			} `json:"legs"`
			OverviewPolyline struct {
				Points string `json:"points"`
			} `json:"overview_polyline"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("directions decode: %w", err)
	}

	route := &types.Route{}
	if len(payload.Routes) > 0 {
		r0 := payload.Routes[0]
		if len(r0.Legs) > 0 {
			route.DistanceM = r0.Legs[0].Distance.Value
			route.DurationSec = r0.Legs[0].Duration.Value
		}
		route.Polyline = r0.OverviewPolyline.Points
	}
	g.cache.Set(key, route, directionsVendorTTL)
	return route, nil
}
