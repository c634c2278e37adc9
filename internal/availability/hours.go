package availability

import (
	"sort"

	"github.com/restovia/table-reservation/internal/model"
)

// Window is one resolved open shift of a day, in minutes since midnight.
// LastRes is the latest permissible slot start and never exceeds Close.
type Window struct {
	Open    int
	Close   int
	LastRes int
}

// ResolveOpenWindows returns the open shift windows applicable to a weekday
// for one schedule profile, ordered by opening time.  Rows are maintained by
// restaurant staff, so malformed entries are dropped and inconsistent ones
// clamped instead of failing the whole query:
//
//   - rows with unparseable times or close ≤ open are ignored
//   - a last-reservation time after close is clamped to close
//   - a missing or before-open last-reservation time falls back to close
//
// An empty result means the restaurant is closed that day.
func ResolveOpenWindows(rows []model.OpeningHour, profile string, weekday int) []Window {
	var windows []Window
	for _, row := range rows {
		if row.Profile != profile || row.DayOfWeek != weekday || !row.IsOpen {
			continue
		}
		open, err := ParseClock(row.OpenTime)
		if err != nil {
			continue
		}
		close, err := ParseClock(row.CloseTime)
		if err != nil {
			continue
		}
		if close <= open {
			continue
		}
		last := close
		if row.LastReservation != "" {
			if v, err := ParseClock(row.LastReservation); err == nil {
				last = v
			}
		}
		if last > close {
			last = close
		}
		if last < open {
			last = close
		}
		windows = append(windows, Window{Open: open, Close: close, LastRes: last})
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Open < windows[j].Open })
	return windows
}
