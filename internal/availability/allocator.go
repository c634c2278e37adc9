package availability

import (
	"sort"

	"github.com/restovia/table-reservation/internal/model"
)

// Booking is an existing capacity-consuming reservation projected onto one
// day, in minutes since midnight.  TableIDs is empty when staff have not
// assigned tables yet; such bookings still consume capacity.
type Booking struct {
	ReservationID uint64
	StartMin      int
	EndMin        int
	PartySize     int
	TableIDs      []uint64
}

// CombinePolicy carries the policy knobs governing multi-table seating.
type CombinePolicy struct {
	// MaxCombinedExcess caps how many seats beyond the party size a
	// combination may waste; 0 disables the cap.
	MaxCombinedExcess int
	// EnforceCombinedMin requires the summed minimum-guest floor of a
	// combination to stay at or below the party size.
	EnforceCombinedMin bool
}

// Seating is the allocator's choice of tables for a party.  Empty TableIDs
// with OK=true means aggregate (manual seating) mode accepted the party
// without naming tables.
type Seating struct {
	TableIDs []uint64
	Combined bool
	OK       bool
}

// combinationSearchCap bounds the subset enumeration.  Restaurants have
// tens of tables at most; only the lowest-id combinable tables beyond the
// cap participate in the search.
const combinationSearchCap = 20

// SeatParty decides whether a party can be seated during the service
// interval [slotStart, slotEnd) and picks the tables to use.  It also
// returns the free-seat hint for the interval.
//
// Tables occupied by an overlapping PENDING/CONFIRMED reservation are
// excluded first.  Overlapping reservations without assigned tables then
// greedily consume minimal seatings in (start, id) order, so that read-time
// answers stay conservative and deterministic.  The party itself is seated
// on the single free table fitting it with the least excess capacity, or
// failing that on the cheapest combination of free combinable tables:
// fewest tables, then smallest excess, then lowest table ids.
func SeatParty(tables []model.Table, bookings []Booking, slotStart, slotEnd, partySize int, pol CombinePolicy) (Seating, int) {
	active := activeSorted(tables)

	var overlapping []Booking
	for _, b := range bookings {
		if overlaps(b.StartMin, b.EndMin, slotStart, slotEnd) {
			overlapping = append(overlapping, b)
		}
	}

	taken := make(map[uint64]bool)
	var unassigned []Booking
	for _, b := range overlapping {
		if len(b.TableIDs) == 0 {
			unassigned = append(unassigned, b)
			continue
		}
		for _, id := range b.TableIDs {
			taken[id] = true
		}
	}

	free := make([]model.Table, 0, len(active))
	for _, t := range active {
		if !taken[t.ID] {
			free = append(free, t)
		}
	}

	// Unassigned parties are seated the same way the requested party would
	// be, smallest first in arrival order, shrinking the free pool.
	sort.Slice(unassigned, func(i, j int) bool {
		if unassigned[i].StartMin != unassigned[j].StartMin {
			return unassigned[i].StartMin < unassigned[j].StartMin
		}
		return unassigned[i].ReservationID < unassigned[j].ReservationID
	})
	for _, b := range unassigned {
		choice := chooseSeating(free, b.PartySize, pol)
		if !choice.OK {
			// Overbooked relative to inventory; nothing left to subtract.
			continue
		}
		free = removeTables(free, choice.TableIDs)
	}

	remaining := 0
	for _, t := range free {
		remaining += t.MaxGuests
	}

	seating := chooseSeating(free, partySize, pol)
	return seating, remaining
}

// SeatPartyAggregate is the manual-seating variant: capacity is a single
// seat pool and no tables are named.  Returns the seating verdict and the
// free-seat count for the interval.
func SeatPartyAggregate(tables []model.Table, bookings []Booking, slotStart, slotEnd, partySize int) (Seating, int) {
	total := 0
	for _, t := range tables {
		if t.IsActive {
			total += t.MaxGuests
		}
	}
	used := 0
	for _, b := range bookings {
		if overlaps(b.StartMin, b.EndMin, slotStart, slotEnd) {
			used += b.PartySize
		}
	}
	remaining := total - used
	if remaining < 0 {
		remaining = 0
	}
	return Seating{OK: partySize <= remaining}, remaining
}

// chooseSeating picks tables for a party from the free pool: a single
// fitting table first, then the cheapest combination.
func chooseSeating(free []model.Table, partySize int, pol CombinePolicy) Seating {
	best := -1
	for i, t := range free {
		if !t.Fits(partySize) {
			continue
		}
		if best < 0 || t.MaxGuests < free[best].MaxGuests {
			// Pool is id-sorted, so the first table at a given capacity
			// already carries the lowest id.
			best = i
		}
	}
	if best >= 0 {
		return Seating{TableIDs: []uint64{free[best].ID}, OK: true}
	}
	return chooseCombination(free, partySize, pol)
}

// chooseCombination searches subsets of free combinable tables for the best
// seating of the party.  Subsets are explored by size so the first size with
// a valid subset wins (fewest tables); within a size the smallest total
// excess wins, ids breaking remaining ties.
func chooseCombination(free []model.Table, partySize int, pol CombinePolicy) Seating {
	var pool []model.Table
	for _, t := range free {
		if t.IsCombinable {
			pool = append(pool, t)
		}
	}
	if len(pool) > combinationSearchCap {
		pool = pool[:combinationSearchCap]
	}
	if len(pool) < 2 {
		return Seating{}
	}

	type candidate struct {
		ids    []uint64
		excess int
	}
	var found *candidate
	better := func(a candidate, b *candidate) bool {
		if b == nil {
			return true
		}
		if a.excess != b.excess {
			return a.excess < b.excess
		}
		return lessIDs(a.ids, b.ids)
	}

	var walk func(start, count, sumMax, sumMin int, picked []uint64, want int)
	walk = func(start, count, sumMax, sumMin int, picked []uint64, want int) {
		if count == want {
			if sumMax < partySize {
				return
			}
			excess := sumMax - partySize
			if pol.MaxCombinedExcess > 0 && excess > pol.MaxCombinedExcess {
				return
			}
			if pol.EnforceCombinedMin && sumMin > partySize {
				return
			}
			c := candidate{ids: append([]uint64(nil), picked...), excess: excess}
			if better(c, found) {
				found = &c
			}
			return
		}
		for i := start; i <= len(pool)-(want-count); i++ {
			t := pool[i]
			walk(i+1, count+1, sumMax+t.MaxGuests, sumMin+t.MinGuests, append(picked, t.ID), want)
		}
	}

	for size := 2; size <= len(pool); size++ {
		found = nil
		walk(0, 0, 0, 0, nil, size)
		if found != nil {
			return Seating{TableIDs: found.ids, Combined: true, OK: true}
		}
	}
	return Seating{}
}

// activeSorted filters inactive tables and orders the rest by id for
// deterministic tie-breaking.
func activeSorted(tables []model.Table) []model.Table {
	out := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if t.IsActive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// removeTables drops the named tables from a pool.
func removeTables(pool []model.Table, ids []uint64) []model.Table {
	drop := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := pool[:0]
	for _, t := range pool {
		if !drop[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// lessIDs compares id slices lexicographically.
func lessIDs(a, b []uint64) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
