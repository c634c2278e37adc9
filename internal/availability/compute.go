package availability

import (
	"time"

	"github.com/restovia/table-reservation/internal/model"
)

// Day bundles the stored configuration and state needed to answer one
// availability query.  Callers load it through their repositories; the
// engine never touches storage itself.
type Day struct {
	Restaurant   model.Restaurant
	OpeningHours []model.OpeningHour
	Blocked      []model.BlockedWindow
	Tables       []model.Table
	Bookings     []Booking
}

// Compute answers a full availability query: which slots exist for the date
// and which of them can seat the party.  The read path is side-effect-free;
// calling it twice with identical inputs yields identical results.
//
// Party sizes outside the policy bounds return ErrInvalidPartySize, a
// disabled restaurant ErrRestaurantNotBookable, an unparseable date
// ErrInvalidDate.  A closed or fully blacked-out date yields a result with
// zero slots.
func Compute(day Day, date string, partySize int, granularity int, now time.Time) (model.AvailabilityResult, error) {
	r := day.Restaurant
	if !r.BookingEnabled {
		return model.AvailabilityResult{}, ErrRestaurantNotBookable
	}
	if partySize < r.MinPartySize || partySize > r.MaxPartySize {
		return model.AvailabilityResult{}, ErrInvalidPartySize
	}
	loc := LoadLocation(r.Timezone)
	dayStart, err := ParseDate(date, loc)
	if err != nil {
		return model.AvailabilityResult{}, err
	}

	windows := ResolveOpenWindows(day.OpeningHours, model.ProfileBooking, WeekdayIndex(dayStart))
	blackouts := ResolveBlackouts(day.Blocked, model.ProfileBooking, date)
	starts := GenerateStarts(GenerateInput{
		Windows:         windows,
		Blackouts:       blackouts,
		Granularity:     granularity,
		DurationMinutes: r.DurationMinutes,
		Date:            dayStart,
		Now:             now,
		MinLeadMinutes:  r.MinLeadMinutes,
		MaxLeadDays:     r.MaxLeadDays,
	})

	result := model.AvailabilityResult{
		Date:      date,
		PartySize: partySize,
		Slots:     make([]model.AvailabilitySlot, 0, len(starts)),
	}
	for _, start := range starts {
		end := start + r.DurationMinutes
		var seating Seating
		var remaining int
		if r.ManualSeating {
			seating, remaining = SeatPartyAggregate(day.Tables, day.Bookings, start, end, partySize)
		} else {
			seating, remaining = SeatParty(day.Tables, day.Bookings, start, end, partySize, CombinePolicy{
				MaxCombinedExcess:  r.MaxCombinedExcess,
				EnforceCombinedMin: r.EnforceCombinedMin,
			})
		}
		result.Slots = append(result.Slots, model.AvailabilitySlot{
			Start:          FormatClock(start),
			End:            FormatClock(end),
			Bookable:       seating.OK,
			RemainingSeats: remaining,
		})
	}
	result.TotalSlots = len(result.Slots)
	for _, s := range result.Slots {
		if s.Bookable {
			result.BookableSlots++
		}
	}
	return result, nil
}

// SeatAt resolves one concrete slot on the write path.  It re-runs the same
// window, blackout and lead-time checks as Compute for the single requested
// start and then allocates seating against the supplied bookings, which the
// caller must have loaded inside the write lock.  Errors distinguish why the
// slot is refused so handlers can answer precisely.
func SeatAt(day Day, date, startClock string, partySize int, granularity int, now time.Time) (Seating, error) {
	r := day.Restaurant
	if !r.BookingEnabled {
		return Seating{}, ErrRestaurantNotBookable
	}
	if partySize < r.MinPartySize || partySize > r.MaxPartySize {
		return Seating{}, ErrInvalidPartySize
	}
	loc := LoadLocation(r.Timezone)
	dayStart, err := ParseDate(date, loc)
	if err != nil {
		return Seating{}, err
	}
	start, err := ParseClock(startClock)
	if err != nil {
		return Seating{}, ErrInvalidDate
	}
	if !WithinLeadWindow(dayStart, start, now, r.MinLeadMinutes, r.MaxLeadDays) {
		return Seating{}, ErrOutsideLeadTimeWindow
	}

	windows := ResolveOpenWindows(day.OpeningHours, model.ProfileBooking, WeekdayIndex(dayStart))
	blackouts := ResolveBlackouts(day.Blocked, model.ProfileBooking, date)
	if !startOfferable(start, windows, blackouts, granularity, r.DurationMinutes) {
		return Seating{}, ErrSlotNoLongerAvailable
	}

	end := start + r.DurationMinutes
	var seating Seating
	if r.ManualSeating {
		seating, _ = SeatPartyAggregate(day.Tables, day.Bookings, start, end, partySize)
	} else {
		seating, _ = SeatParty(day.Tables, day.Bookings, start, end, partySize, CombinePolicy{
			MaxCombinedExcess:  r.MaxCombinedExcess,
			EnforceCombinedMin: r.EnforceCombinedMin,
		})
	}
	if !seating.OK {
		return Seating{}, ErrSlotNoLongerAvailable
	}
	return seating, nil
}

// startOfferable reports whether a start time is one the generator would
// have offered: aligned to the granularity inside an open window, not past
// the window's last-reservation bound, and clear of blackouts for the whole
// service interval.
func startOfferable(start int, windows []Window, blackouts []Span, granularity, duration int) bool {
	if blackedOut(start, start+duration, blackouts) {
		return false
	}
	for _, w := range windows {
		if start < w.Open || start > w.LastRes {
			continue
		}
		if (start-w.Open)%granularity == 0 {
			return true
		}
	}
	return false
}
