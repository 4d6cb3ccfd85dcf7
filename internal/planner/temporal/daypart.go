// Package temporal answers the time questions of the planning engine:
// which daypart a timestamp falls in, what a weather snapshot means
// structurally, whether a category fits the hour, and whether a place is
// open for a visit window.
package temporal

import "time"

// Dayparts partition the 24-hour clock.
const (
	Morning   = "morning"   // [6,11)
	Midday    = "midday"    // [11,15)
	Afternoon = "afternoon" // [15,18)
	Evening   = "evening"   // [18,22)
	Late      = "late"      // [22,6)
)

// Daypart returns the named partition for the local hour of dt.
func Daypart(dt time.Time) string {
	h := dt.Hour()
	switch {
	case h >= 6 && h < 11:
		return Morning
	case h >= 11 && h < 15:
		return Midday
	case h >= 15 && h < 18:
		return Afternoon
	case h >= 18 && h < 22:
		return Evening
	default:
		return Late
	}
}

// categoryDayparts is the "no bar at 11am" table. Absent categories are
// suitable at any daypart.
var categoryDayparts = map[string][]string{
	"bar":           {Evening, Late},
	"cocktail_bar":  {Evening, Late},
	"wine_bar":      {Evening, Late},
	"hotel_bar":     {Evening, Late},
	"nightclub":     {Late},
	"museum":        {Morning, Midday, Afternoon},
	"shopping_area": {Morning, Midday, Afternoon, Evening},
	"market":        {Morning, Midday, Afternoon},
	"boutique":      {Morning, Midday, Afternoon, Evening},
	"concept_store": {Morning, Midday, Afternoon, Evening},
	"vintage":       {Morning, Midday, Afternoon, Evening},
	"cafe":          {Morning, Midday, Afternoon, Evening},
	"bakery":        {Morning, Midday, Afternoon},
	"dessert":       {Afternoon, Evening, Late},
	"late_food":     {Late},
	"fast_food":     {Midday, Afternoon, Evening, Late},
	"cinema":        {Evening, Late, Afternoon},
	"theater":       {Evening, Late},
	"jazz_bar":      {Evening, Late},
	"cultural_bar":  {Evening, Late},
	"photo_spot":    {Morning, Midday, Afternoon, Evening},
	"viewpoint":     {Morning, Midday, Afternoon, Evening},
	"street_art":    {Morning, Midday, Afternoon, Evening},
}

// CategorySuitable reports whether category fits the daypart. Categories
// without an entry are always suitable.
func CategorySuitable(category, daypart string) bool {
	allowed, ok := categoryDayparts[category]
	if !ok {
		return true
	}
	for _, d := range allowed {
		if d == daypart {
			return true
		}
	}
	return false
}
