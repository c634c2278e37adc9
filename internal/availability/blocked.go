package availability

import (
	"sort"

	"github.com/restovia/table-reservation/internal/model"
)

// Span is a half-open blackout range [From, To) in minutes since midnight.
type Span struct {
	From int
	To   int
}

// minutesPerDay bounds all wall-clock spans.
const minutesPerDay = 24 * 60

// ResolveBlackouts returns the unioned blackout spans for one date and
// profile.  An all-day row expands to the full day.  Rows with reversed
// from/to are treated as staff entering the bounds backwards and swapped;
// unparseable rows are dropped.  Overlapping and adjacent spans are merged
// so callers test each slot against a minimal ordered set.
func ResolveBlackouts(rows []model.BlockedWindow, profile, date string) []Span {
	var spans []Span
	for _, row := range rows {
		if row.Profile != profile || row.Date != date {
			continue
		}
		if row.AllDay {
			return []Span{{From: 0, To: minutesPerDay}}
		}
		from, err := ParseClock(row.TimeFrom)
		if err != nil {
			continue
		}
		to, err := ParseClock(row.TimeTo)
		if err != nil {
			continue
		}
		if from > to {
			from, to = to, from
		}
		if from == to {
			continue
		}
		spans = append(spans, Span{From: from, To: to})
	}
	return mergeSpans(spans)
}

// mergeSpans unions overlapping or touching spans into an ordered set.
func mergeSpans(spans []Span) []Span {
	if len(spans) <= 1 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].From < spans[j].From })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.From <= last.To {
			if s.To > last.To {
				last.To = s.To
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// overlaps reports whether [aFrom, aTo) intersects [bFrom, bTo).
func overlaps(aFrom, aTo, bFrom, bTo int) bool {
	return aFrom < bTo && bFrom < aTo
}
