// Package timeframe resolves the named reporting windows (week, month, year,
// all) and provides the calendar-month arithmetic used by aggregations.
//
// Every function takes the reference instant explicitly so that all windows
// computed for a single request share the same notion of "now".
package timeframe

import (
	"strings"
	"time"
)

// Timeframe names a reporting window that ends at "now".
type Timeframe string

const (
	All   Timeframe = "all"
	Week  Timeframe = "week"
	Month Timeframe = "month"
	Year  Timeframe = "year"
)

// Selector sets recognised by the different endpoints.
var (
	ListingTimeframes = []Timeframe{Week, Month}
	StatsTimeframes   = []Timeframe{Week, Month, Year}
)

// Resolve maps a query value onto one of allowed, ignoring case and
// surrounding space. An empty value yields def; any other value outside
// allowed yields fallback.
func Resolve(value string, def, fallback Timeframe, allowed []Timeframe) Timeframe {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return def
	}
	for _, tf := range allowed {
		if Timeframe(value) == tf {
			return tf
		}
	}
	return fallback
}

// ResolveListing resolves the selector of the listing and export endpoints:
// week and month bound the window, anything else means no lower bound.
func ResolveListing(value string) Timeframe {
	return Resolve(value, All, All, ListingTimeframes)
}

// ResolveStats resolves the selector of the stats endpoint: month when
// absent, year for any unrecognised value.
func ResolveStats(value string) Timeframe {
	return Resolve(value, Month, Year, StatsTimeframes)
}

// Start returns the inclusive lower bound of the window relative to now.
// The second result is false for All, which has no lower bound.
func (tf Timeframe) Start(now time.Time) (time.Time, bool) {
	switch tf {
	case Week:
		return WeekStart(now), true
	case Month:
		return MonthStart(now), true
	case Year:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}

// StartPtr is Start in the pointer form used by repository filters.
func (tf Timeframe) StartPtr(now time.Time) *time.Time {
	start, ok := tf.Start(now)
	if !ok {
		return nil
	}
	return &start
}

// WeekStart returns midnight of the most recent Monday at or before t.
func WeekStart(t time.Time) time.Time {
	// time.Weekday counts from Sunday; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns midnight of the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns the last representable instant of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// AddMonths shifts the month containing t by n calendar months and returns
// the first day of the resulting month. Working from the first of the month
// avoids the day overflow of time.AddDate (Mar 31 - 1 month = Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	return MonthStart(t).AddDate(0, n, 0)
}

// MonthKey formats t as the "YYYY-MM" key used by budgets.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthLabel formats t as a short human label such as "Jan 2024".
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}
