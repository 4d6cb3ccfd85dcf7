package temporal

import (
	"strconv"
	"strings"
	"time"

	"github.com/nowa-app/planner-api/internal/types"
)

// Open-status reasons.
const (
	ReasonPermanentlyClosed = "permanently_closed"
	ReasonTemporarilyClosed = "temporarily_closed"
	ReasonHoursMissing      = "hours_missing"
	ReasonHoursUnusable     = "hours_unusable"
	ReasonOpenForSlot       = "open_for_slot"
	ReasonClosingDuringSlot = "open_but_closing_during_slot"
	ReasonClosedForSlot     = "closed_for_slot"
)

func boolPtr(b bool) *bool { return &b }

// ComputeOpenStatus evaluates whether place is open for the window
// [start, start+duration]. Periods use the provider convention of
// day 0=Sunday and four-digit local times; overnight-crossing periods
// (close before open) are handled. When only weekday_text is available the
// result is capped at medium confidence.
func ComputeOpenStatus(place types.Place, start time.Time, durationMin int) types.OpenStatus {
	switch place.BusinessStatus {
	case types.BusinessClosedPermanently:
		return types.OpenStatus{IsOpen: boolPtr(false), Confidence: "high", Reason: ReasonPermanentlyClosed}
	case types.BusinessClosedTemporarily:
		return types.OpenStatus{IsOpen: boolPtr(false), Confidence: "high", Reason: ReasonTemporarilyClosed}
	}

	oh := place.OpeningHours
	if oh == nil || (len(oh.Periods) == 0 && len(oh.WeekdayText) == 0) {
		return types.OpenStatus{IsOpen: nil, Confidence: "low", Reason: ReasonHoursMissing}
	}

	if len(oh.Periods) > 0 {
		return checkPeriods(oh.Periods, start, durationMin)
	}
	return checkWeekdayText(oh.WeekdayText, start)
}

// checkPeriods maps every period onto concrete datetimes around start's
// local week and tests the visit window against the resulting intervals.
func checkPeriods(periods []types.Period, start time.Time, durationMin int) types.OpenStatus {
	end := start.Add(time.Duration(durationMin) * time.Minute)
	// Go's time.Weekday already uses Sunday=0, same as the provider.
	wd := int(start.Weekday())

	type interval struct{ open, close time.Time }
	var intervals []interval

	for _, p := range periods {
		if p.Close == nil {
			// Open-24h style period without a close endpoint: cannot bound
			// the window, skip rather than hard-true it.
			continue
		}
		openT, okO := parseHHMM(p.Open.Time)
		closeT, okC := parseHHMM(p.Close.Time)
		if !okO || !okC {
			continue
		}

		deltaOpen := ((p.Open.Day - wd) % 7 + 7) % 7
		deltaClose := ((p.Close.Day - wd) % 7 + 7) % 7

		openDT := atLocalTime(start.AddDate(0, 0, deltaOpen), openT)
		closeDT := atLocalTime(start.AddDate(0, 0, deltaClose), closeT)
		if !closeDT.After(openDT) {
			closeDT = closeDT.AddDate(0, 0, 1)
		}
		intervals = append(intervals, interval{openDT, closeDT})
	}

	if len(intervals) == 0 {
		return types.OpenStatus{IsOpen: nil, Confidence: "low", Reason: ReasonHoursUnusable}
	}

	for _, iv := range intervals {
		if !iv.open.After(start) && !end.After(iv.close) {
			return types.OpenStatus{IsOpen: boolPtr(true), Confidence: "high", Reason: ReasonOpenForSlot}
		}
	}
	for _, iv := range intervals {
		if !iv.open.After(start) && start.Before(iv.close) && end.After(iv.close) {
			return types.OpenStatus{IsOpen: boolPtr(true), Confidence: "medium", Reason: ReasonClosingDuringSlot}
		}
	}
	return types.OpenStatus{IsOpen: boolPtr(false), Confidence: "high", Reason: ReasonClosedForSlot}
}

// checkWeekdayText is the lower-confidence fallback when a record only ships
// the human-readable weekday lines.
func checkWeekdayText(lines []string, start time.Time) types.OpenStatus {
	dayName := start.Weekday().String()

	var line string
	for _, l := range lines {
		if strings.HasPrefix(l, dayName) {
			line = l
			break
		}
	}
	if line == "" {
		return types.OpenStatus{IsOpen: nil, Confidence: "low", Reason: "weekday_text_no_match"}
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "closed") {
		return types.OpenStatus{IsOpen: boolPtr(false), Confidence: "medium", Reason: "weekday_text_closed"}
	}
	if strings.Contains(lower, "24 hours") {
		return types.OpenStatus{IsOpen: boolPtr(true), Confidence: "medium", Reason: "weekday_text_24h"}
	}
	if strings.Contains(line, "–") || strings.Contains(line, "-") {
		return types.OpenStatus{IsOpen: boolPtr(true), Confidence: "medium", Reason: "weekday_text_likely_open"}
	}
	return types.OpenStatus{IsOpen: nil, Confidence: "low", Reason: "weekday_text_unparseable"}
}

func parseHHMM(s string) (time.Duration, bool) {
	if len(s) != 4 {
		return 0, false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(s[2:])
	if err != nil || m > 59 {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, true
}

func atLocalTime(day time.Time, t time.Duration) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, day.Location()).Add(t)
}
