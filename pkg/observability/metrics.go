// Package observability exposes the process-wide Prometheus metrics plus a
// small in-memory mirror readable without scraping.
package observability

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlanGenerationCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plan_generation_count",
		Help: "Total number of plan builds started.",
	})
	PlanGenerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plan_generation_failures",
		Help: "Plan builds that exhausted retries.",
	})
	PlacesAPICalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "places_api_calls",
		Help: "Nearby-search requests issued to the places provider.",
	})
	PlacesDetailsCalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "places_details_calls",
		Help: "Detail-enrichment requests issued to the places provider.",
	})
	PlacesAPIFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "places_api_failures",
		Help: "Failed places provider requests.",
	})
	WeatherAPICalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weather_api_calls",
		Help: "Snapshot requests issued to the weather provider.",
	})
	WeatherAPIFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weather_api_failures",
		Help: "Failed weather provider requests.",
	})
	PlanGenerationTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_generation_time",
		Help:    "Plan build latency in seconds.",
		Buckets: prometheus.DefBuckets,
	})
)

// mirror holds the same counters under "metrics:<name>" keys so internal
// callers (debug payloads, tests) can read them without a scrape.
var mirror = cache.New(cache.NoExpiration, 10*time.Minute)

// Incr bumps the named mirror counter and returns the new value.
func Incr(name string, delta int64) int64 {
	key := "metrics:" + name
	if n, err := mirror.IncrementInt64(key, delta); err == nil {
		return n
	}
	mirror.Set(key, delta, cache.NoExpiration)
	return delta
}

// Get reads a mirror counter. Unknown names read as zero.
func Get(name string) int64 {
	v, ok := mirror.Get("metrics:" + name)
	if !ok {
		return 0
	}
	n, _ := v.(int64)
	return n
}
