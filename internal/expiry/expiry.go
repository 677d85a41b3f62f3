package expiry

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var defaultLoc = time.UTC

// Card-face parse failures, distinguished so callers can report the
// exact violated rule.
var (
	ErrFormat = errors.New("expiry date must be in the format MM/YY")
	ErrMonth  = errors.New("expiry month must be between 1 and 12")
)

// SetDefaultLocation sets the time location used for expiry
// comparisons (fallback UTC).
func SetDefaultLocation(loc *time.Location) {
	if loc != nil {
		defaultLoc = loc
	}
}

// ParseCardFace parses a card-face expiry "MM/YY" or "MM/YYYY" into
// month and year. Two-digit years are read as 2000+YY.
func ParseCardFace(in string) (month, year int, err error) {
	parts := strings.Split(strings.TrimSpace(in), "/")
	if len(parts) != 2 {
		return 0, 0, ErrFormat
	}
	month, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, ErrFormat
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil || year < 0 {
		return 0, 0, ErrFormat
	}
	if month < 1 || month > 12 {
		return 0, 0, ErrMonth
	}
	if year < 100 {
		year += 2000
	}
	return month, year, nil
}

// Expired reports whether month/year is strictly before the calendar
// month of 'at'. A card expiring in the current month is not expired.
func Expired(month, year int, at time.Time) bool {
	t := at.In(defaultLoc)
	if year != t.Year() {
		return year < t.Year()
	}
	return month < int(t.Month())
}
