package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock abstracts the current instant so tests can pin "now".  All lead-time
// comparisons resolve Now() against wall-clock instants in the restaurant's
// timezone, never the server's.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// LoadLocation resolves an IANA timezone name.  Timezone rows are maintained
// by restaurant staff; an unknown name degrades to UTC rather than failing
// the query.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

// ParseDate parses a "YYYY-MM-DD" calendar date as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseClock converts a wall-clock "HH:MM" (or "HH:MM:SS" as MySQL TIME
// columns scan) string into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// WeekdayIndex maps a date to the restaurant-local week with Monday as 0 and
// Sunday as 6.
func WeekdayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// At resolves minutes-since-midnight to a wall-clock instant on the given
// day.  time.Date normalizes the minute overflow, so on a DST transition day
// this lands on the clock reading guests and staff agree on, where adding a
// duration to midnight would drift by the shifted hour.
func At(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, minutes, 0, 0, date.Location())
}

// midnight truncates an instant to the start of its day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
