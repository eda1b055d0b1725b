package entry

import (
	"regexp"
	"strings"
	"time"
)

const dateKeyLayout = "20060102"

var dateKeyRe = regexp.MustCompile(`^\d{8}$`)

// DateKey returns the YYYYMMDD key of the calendar day carried by t. The
// result uses t's own date fields, so neither the hour nor the zone offset of t
// can move it to a neighbouring day.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// MakeEntryID is the deterministic record key for one form type on one day.
// Writing twice under the same user and id replaces the record.
func MakeEntryID(t FormType, day time.Time) string {
	return string(t) + "_" + DateKey(day)
}

// ParseDay reads a date navigation parameter: YYYYMMDD (strict), YYYY-MM-DD or
// RFC3339. Date-only forms are placed at midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	if dateKeyRe.MatchString(s) {
		t, err := time.ParseInLocation(dateKeyLayout, s, loc)
		if err != nil {
			return time.Time{}, &InvalidDateError{Value: s}
		}
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, &InvalidDateError{Value: s}
}

// StartOfDay truncates t to local midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
