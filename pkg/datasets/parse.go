package datasets

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
)

// missingTokens are cell values treated as an absent measurement.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"-":    true,
}

func isMissingToken(s string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(s))]
}

// parseNumber coerces a cell to float64. Anything unparsable is NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if isMissingToken(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// isNumeric reports whether a non-missing cell parses as a number.
func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// parseFlag coerces a boolean-ish cell to 1, 0 or NaN.
func parseFlag(s string) float64 {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "t":
		return 1
	case "false", "no", "n", "f":
		return 0
	}
	return parseNumber(s)
}

// parseYear accepts "2000" and "2000.0".
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// parseDate parses ISO 8601 dates and datetimes plus a few common layouts.
// The zero time means the value was missing or unparsable.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if isMissingToken(s) {
		return time.Time{}
	}
	if t, err := iso8601.ParseString(s); err == nil {
		return t.UTC()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// dateFromParts builds a date from YEAR, MONTH and DAY cells.
func dateFromParts(year, month, day string) time.Time {
	y, ok1 := parseYear(year)
	m, ok2 := parseYear(month)
	d, ok3 := parseYear(day)
	if !ok1 || !ok2 || !ok3 || m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}
	}
	return t
}

// Weekdays lists day names in the order the dashboards display them.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// frenchDays maps the French day names used by the cleaned flights extract.
var frenchDays = map[string]string{
	"lundi":    "Monday",
	"mardi":    "Tuesday",
	"mercredi": "Wednesday",
	"jeudi":    "Thursday",
	"vendredi": "Friday",
	"samedi":   "Saturday",
	"dimanche": "Sunday",
}

// DayName normalizes a DAY_OF_WEEK cell to an English day name. French
// names, English names (any case) and ISO numbers 1 (Monday) to 7 (Sunday)
// are accepted. Anything else yields "".
func DayName(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if en, ok := frenchDays[lower]; ok {
		return en
	}
	for _, d := range Weekdays {
		if strings.ToLower(d) == lower {
			return d
		}
	}
	if n, ok := parseYear(s); ok && n >= 1 && n <= 7 {
		return Weekdays[n-1]
	}
	return ""
}

// weekdayName returns the English name of t's weekday.
func weekdayName(t time.Time) string {
	return t.Weekday().String()
}
