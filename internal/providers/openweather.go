package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/nowa-app/planner-api/internal/types"
)

const (
	openWeatherURL      = "https://api.openweathermap.org/data/2.5/weather"
	weatherVendorTTL    = 20 * time.Minute
	weatherVendorWindMS = 8.0
)

// OpenWeather fetches current conditions in metric units.
type OpenWeather struct {
	apiKey string
	client *http.Client
	cache  *cache.Cache
}

func NewOpenWeather(apiKey string) (*OpenWeather, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openweather api key: %w", types.ErrConfiguration)
	}
	return &OpenWeather{
		apiKey: apiKey,
		client: &http.Client{Timeout: 8 * time.Second},
		cache:  cache.New(weatherVendorTTL, 10*time.Minute),
	}, nil
}

// Snapshot returns current conditions for the coordinate, cached at
// three-decimal precision.
func (o *OpenWeather) Snapshot(ctx context.Context, location types.Location) (*types.WeatherSnapshot, error) {
	key := fmt.Sprintf("v3weather:%.3f:%.3f", location.Lat, location.Lng)
	if cached, ok := o.cache.Get(key); ok {
		return cached.(*types.WeatherSnapshot), nil
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", location.Lat))
	params.Set("lon", fmt.Sprintf("%f", location.Lng))
	params.Set("appid", o.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openWeatherURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather fetch: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Main struct {
			Temp      float64  `json:"temp"`
			FeelsLike *float64 `json:"feels_like"`
		} `json:"main"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("weather decode: %w", err)
	}

	condition := ""
	if len(payload.Weather) > 0 {
		condition = strings.ToLower(payload.Weather[0].Main)
	}
	feels := payload.Main.Temp
	if payload.Main.FeelsLike != nil {
		feels = *payload.Main.FeelsLike
	}

	snapshot := &types.WeatherSnapshot{
		Temp:       payload.Main.Temp,
		FeelsLike:  feels,
		Condition:  condition,
		IsRaining:  condition == "rain" || condition == "drizzle",
		IsSnowing:  condition == "snow",
		Windy:      payload.Wind.Speed >= weatherVendorWindMS,
		Confidence: "high",
		Source:     "openweather",
	}
	o.cache.Set(key, snapshot, weatherVendorTTL)
	return snapshot, nil
}
