package planner

import (
	"time"

	"github.com/nowa-app/planner-api/internal/types"
)

// Default local start hours per when-selection.
const (
	laterTodayHour = 16
	tonightHour    = 19
	tomorrowHour   = 10
)

// ResolveWhen maps a when-selection onto a concrete local start time,
// evaluated against now in the plan's timezone. A resolved time already in
// the past collapses to now.
func ResolveWhen(now time.Time, whenSelection string) time.Time {
	switch whenSelection {
	case types.WhenLaterToday:
		return todayAtOrNow(now, laterTodayHour)
	case types.WhenTonight:
		return todayAtOrNow(now, tonightHour)
	case types.WhenTomorrow:
		tomorrow := now.AddDate(0, 0, 1)
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(),
			tomorrowHour, 0, 0, 0, now.Location())
	default:
		return now
	}
}

func todayAtOrNow(now time.Time, hour int) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if at.Before(now) {
		return now
	}
	return at
}

// ResolveStart picks the plan's effective start: an explicit start time wins
// unless it is already past, otherwise the when-selection applies.
func ResolveStart(now time.Time, inputs types.PlanInputs) time.Time {
	if inputs.StartTime != nil {
		if inputs.StartTime.Before(now) {
			return now
		}
		return *inputs.StartTime
	}
	return ResolveWhen(now, inputs.WhenSelection)
}
