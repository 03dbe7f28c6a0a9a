package storage

import (
	"strings"
	"time"
)

// dateLayouts are the input formats accepted for dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000000",
}

// NormalizeDate coerces a date string to YYYY-MM-DD. Empty or unparseable
// input yields today's date.
func NormalizeDate(s string, now func() time.Time) string {
	if s == "" {
		return now().Format("2006-01-02")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return now().Format("2006-01-02")
}

// datePart strips the time portion from an ISO 8601 datetime string.
func datePart(s string) string {
	if day, _, found := strings.Cut(s, "T"); found {
		return day
	}
	return s
}

// parseDay parses a YYYY-MM-DD string, tolerating a trailing time portion.
func parseDay(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", datePart(s))
	return t, err == nil
}

// filterByDateRange keeps items whose date falls within [from, to], both
// inclusive and optional. Items with missing or unparseable dates are
// dropped; an unparseable bound is ignored.
func filterByDateRange[T any](items []T, dateOf func(T) string, from, to string) []T {
	if from == "" && to == "" {
		return items
	}
	fromDay, haveFrom := parseDay(from)
	toDay, haveTo := parseDay(to)

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		day, ok := parseDay(dateOf(item))
		if !ok {
			continue
		}
		if haveFrom && day.Before(fromDay) {
			continue
		}
		if haveTo && day.After(toDay) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}
