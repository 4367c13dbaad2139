package gc

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// parseDate parses a date string in YYYY-MM-DD, YYYY-MM, or YYYY format.
// Partial dates resolve to their last day so a bare year or month covers
// the whole period as an until-bound.
func parseDate(dateStr string) (time.Time, error) {
	var t time.Time
	var err error

	t, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		t, err = time.Parse("2006-01", dateStr)
		if err != nil {
			t, err = time.Parse("2006", dateStr)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid date format. Use YYYY-MM-DD, YYYY-MM, or YYYY")
			}
			t = time.Date(t.Year(), 12, 31, 0, 0, 0, 0, t.Location())
		} else {
			// Last day of the month.
			t = time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
		}
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
}

// parseDuration parses a simplified prometheus-style duration string.
// Supports: y (years), w (weeks), d (days), m (months)
// Examples: "30d", "2w", "1y", "6m"
// No combinations allowed (e.g., "1y2w" is invalid)
func parseDuration(durationStr string) (time.Duration, error) {
	re := regexp.MustCompile(`^([0-9]+)([ywdm])$`)
	matches := re.FindStringSubmatch(durationStr)

	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid duration format. Use format like '30d', '2w', '1y', or '6m' (no combinations allowed)")
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", matches[1])
	}

	switch matches[2] {
	case "y":
		// Approximate: 365 days per year
		return time.Duration(value) * 365 * 24 * time.Hour, nil
	case "w":
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	case "m":
		// Approximate: 30 days per month
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid duration unit: %s (use y, w, d, or m)", matches[2])
	}
}

// parseSinceDate parses a --since parameter which can be either:
// - A date string (YYYY-MM-DD, YYYY-MM, or YYYY format)
// - A duration string (30d, 2w, 1y, 6m) - relative to the until date
func parseSinceDate(sinceStr string, untilDate time.Time) (time.Time, error) {
	if duration, err := parseDuration(sinceStr); err == nil {
		return untilDate.Add(-duration), nil
	}
	return parseDate(sinceStr)
}

// ValidateAndParseDates validates and parses the until and since date
// parameters early, before any network traffic.
func ValidateAndParseDates(untilStr, sinceStr string) (since, until time.Time, err error) {
	if untilStr != "" {
		until, err = parseDate(untilStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse until date: %w", err)
		}
	} else {
		now := time.Now()
		until = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	if sinceStr != "" {
		since, err = parseSinceDate(sinceStr, until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse since date: %w", err)
		}
	} else {
		// Default to 4 weeks before the until date.
		defaultDuration, _ := parseDuration("4w")
		since = until.Add(-defaultDuration)
	}

	if since.After(until) || since.Equal(until) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since date (%s) must be before --until date (%s)", since.Format("2006-01-02"), until.Format("2006-01-02"))
	}

	return since, until, nil
}
