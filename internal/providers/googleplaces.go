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
	googlePlacesNearbyURL  = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	googlePlacesDetailsURL = "https://maps.googleapis.com/maps/api/place/details/json"

	nearbyCacheTTL  = 10 * time.Minute
	detailsCacheTTL = 24 * time.Hour
)

// GooglePlaces talks to the Places nearby-search and details endpoints.
// Each endpoint keeps its own response cache so a repeated plan build within
// the TTL never reaches the network.
type GooglePlaces struct {
	apiKey   string
	language string
	region   string
	client   *http.Client
	cache    *cache.Cache
}

func NewGooglePlaces(apiKey, language, region string) (*GooglePlaces, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google places api key: %w", types.ErrConfiguration)
	}
	if language == "" {
		language = "en"
	}
	return &GooglePlaces{
		apiKey:   apiKey,
		language: language,
		region:   region,
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    cache.New(nearbyCacheTTL, 10*time.Minute),
	}, nil
}

// googlePlaceRecord mirrors the wire shape of a place result.
type googlePlaceRecord struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Types            []string `json:"types"`
	BusinessStatus   string   `json:"business_status"`
	OpeningHours     *struct {
		Periods []struct {
			Open struct {
				Day  int    `json:"day"`
				Time string `json:"time"`
			} `json:"open"`
			Close *struct {
				Day  int    `json:"day"`
				Time string `json:"time"`
			} `json:"close"`
		} `json:"periods"`
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

func (r googlePlaceRecord) toPlace() types.Place {
	p := types.Place{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		Types:            r.Types,
		BusinessStatus:   r.BusinessStatus,
	}
	if len(r.Photos) > 0 {
		p.PhotoReference = r.Photos[0].PhotoReference
	}
	if r.OpeningHours != nil {
		oh := &types.OpeningHours{WeekdayText: r.OpeningHours.WeekdayText}
		for _, raw := range r.OpeningHours.Periods {
			period := types.Period{Open: types.DayTime{Day: raw.Open.Day, Time: raw.Open.Time}}
			if raw.Close != nil {
				period.Close = &types.DayTime{Day: raw.Close.Day, Time: raw.Close.Time}
			}
			oh.Periods = append(oh.Periods, period)
		}
		p.OpeningHours = oh
	}
	return p
}

// Nearby runs a nearby search for one type/keyword pair.
func (g *GooglePlaces) Nearby(ctx context.Context, location types.Location, radiusM int, placeType, keyword string) ([]types.Place, error) {
	key := fmt.Sprintf("gplaces:nearby:%.4f:%.4f:%d:%s:%s:%s",
		location.Lat, location.Lng, radiusM, placeType, keyword, g.language)
	if cached, ok := g.cache.Get(key); ok {
		return cached.([]types.Place), nil
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("location", fmt.Sprintf("%f,%f", location.Lat, location.Lng))
	params.Set("radius", fmt.Sprintf("%d", radiusM))
	params.Set("language", g.language)
	if placeType != "" {
		params.Set("type", placeType)
	}
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	if g.region != "" {
		params.Set("region", g.region)
	}

	var payload struct {
		Results []googlePlaceRecord `json:"results"`
		Status  string              `json:"status"`
	}
	if err := g.getJSON(ctx, googlePlacesNearbyURL, params, &payload); err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}
	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("nearby search: status %s", payload.Status)
	}

	places := make([]types.Place, 0, len(payload.Results))
	for _, r := range payload.Results {
		places = append(places, r.toPlace())
	}
	g.cache.Set(key, places, nearbyCacheTTL)
	return places, nil
}

// Details fetches the enrichment fields for one place.
func (g *GooglePlaces) Details(ctx context.Context, placeID string) (*types.Place, error) {
	key := "gplaces:details:" + placeID + ":" + g.language
	if cached, ok := g.cache.Get(key); ok {
		return cached.(*types.Place), nil
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,geometry/location,types,rating,user_ratings_total,opening_hours,business_status")
	params.Set("language", g.language)
	if g.region != "" {
		params.Set("region", g.region)
	}

	var payload struct {
		Result googlePlaceRecord `json:"result"`
		Status string            `json:"status"`
	}
	if err := g.getJSON(ctx, googlePlacesDetailsURL, params, &payload); err != nil {
		return nil, fmt.Errorf("place details: %w", err)
	}
	if payload.Status != "OK" {
		return nil, fmt.Errorf("place details: status %s", payload.Status)
	}

	place := payload.Result.toPlace()
	g.cache.Set(key, &place, detailsCacheTTL)
	return &place, nil
}

func (g *GooglePlaces) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
