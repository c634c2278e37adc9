package availability

import (
	"sort"
	"time"
)

// GenerateInput carries everything the slot generator needs for one date.
// Date must be midnight of the target day in the restaurant's location and
// Now the current instant; lead-time comparisons happen between the two.
type GenerateInput struct {
	Windows         []Window
	Blackouts       []Span
	Granularity     int // slot step in minutes
	DurationMinutes int // service interval length
	Date            time.Time
	Now             time.Time
	MinLeadMinutes  int
	MaxLeadDays     int
}

// GenerateStarts enumerates the candidate slot starts for a date as minutes
// since midnight, ascending and de-duplicated across shift windows.
//
// Within each open window starts run from the opening time through the
// last-reservation time inclusive, stepped by the granularity.  A candidate
// is discarded when its service interval [start, start+duration) intersects
// any blackout span, or when the start precedes now + the minimum lead time.
// Dates in the past or beyond the maximum lead window short-circuit to nil.
func GenerateStarts(in GenerateInput) []int {
	if in.Granularity <= 0 || in.DurationMinutes <= 0 {
		return nil
	}
	loc := in.Date.Location()
	today := midnight(in.Now, loc)
	if in.Date.Before(today) {
		return nil
	}
	if in.MaxLeadDays >= 0 && in.Date.After(today.AddDate(0, 0, in.MaxLeadDays)) {
		return nil
	}
	earliest := in.Now.Add(time.Duration(in.MinLeadMinutes) * time.Minute)

	seen := make(map[int]struct{})
	var starts []int
	for _, w := range in.Windows {
		for s := w.Open; s <= w.LastRes; s += in.Granularity {
			if _, dup := seen[s]; dup {
				continue
			}
			if blackedOut(s, s+in.DurationMinutes, in.Blackouts) {
				continue
			}
			if At(in.Date, s).Before(earliest) {
				continue
			}
			seen[s] = struct{}{}
			starts = append(starts, s)
		}
	}
	sort.Ints(starts)
	return starts
}

// blackedOut reports whether the service interval intersects any blackout.
// A partial overlap excludes the slot: a party seated then would still be
// present during the blackout.
func blackedOut(start, end int, blackouts []Span) bool {
	for _, b := range blackouts {
		if overlaps(start, end, b.From, b.To) {
			return true
		}
	}
	return false
}

// WithinLeadWindow reports whether a concrete slot instant satisfies both
// lead-time bounds.  The write path uses it to distinguish a lead-time
// violation from a slot that is simply not offerable.
func WithinLeadWindow(date time.Time, startMin int, now time.Time, minLeadMinutes, maxLeadDays int) bool {
	loc := date.Location()
	today := midnight(now, loc)
	if date.Before(today) {
		return false
	}
	if maxLeadDays >= 0 && date.After(today.AddDate(0, 0, maxLeadDays)) {
		return false
	}
	return !At(date, startMin).Before(now.Add(time.Duration(minLeadMinutes) * time.Minute))
}
