// Package week holds the UTC week-boundary arithmetic shared by the adherence
// calculators, the trend engines and the notification pipeline. All functions
// are pure; every caller agrees on the same half-open [Monday, next Monday)
// window or the percentages drift between components.
package week

import "time"

const (
	maxRecentWeeks = 52
	daysPerWeek    = 7
)

// Window is one adherence period: [Start, End) in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window. Membership is half-open:
// the next Monday 00:00 belongs to the following week.
func (w Window) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(w.Start) && u.Before(w.End)
}

// StartOf normalizes any timestamp to the Monday 00:00:00 UTC of its week.
func StartOf(t time.Time) time.Time {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -DayIndex(u))
}

// Range builds the window for the week containing weekStart. The argument is
// normalized first, so passing a mid-week timestamp is safe.
func Range(weekStart time.Time) Window {
	start := StartOf(weekStart)
	return Window{Start: start, End: start.AddDate(0, 0, daysPerWeek)}
}

// DayIndex maps a timestamp to its weekday index: Monday=0 .. Sunday=6.
func DayIndex(t time.Time) int {
	// time.Weekday has Sunday=0; shift so Monday=0 and Sunday wraps to 6.
	return (int(t.UTC().Weekday()) + 6) % 7
}

// RecentWeekStarts returns n week-start dates descending from the Monday of
// now's week, each stepped back seven days. n is clamped to [1, 52].
func RecentWeekStarts(n int, now time.Time) []time.Time {
	if n < 1 {
		n = 1
	}
	if n > maxRecentWeeks {
		n = maxRecentWeeks
	}
	starts := make([]time.Time, 0, n)
	cursor := StartOf(now)
	for i := 0; i < n; i++ {
		starts = append(starts, cursor)
		cursor = cursor.AddDate(0, 0, -daysPerWeek)
	}
	return starts
}

// DayKey collapses a timestamp to its UTC calendar day, for grouping logs.
func DayKey(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
