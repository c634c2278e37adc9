package model

// AvailabilitySlot is one offerable start time for a date and party size.
// Slots are derived, never persisted.  End is always Start plus the
// restaurant's default duration.  RemainingSeats is an advisory hint: the
// summed capacity of tables still free during the slot's service interval
// (aggregate free seats under manual seating).
type AvailabilitySlot struct {
	Start          string `json:"start"` // "HH:MM"
	End            string `json:"end"`   // "HH:MM"
	Bookable       bool   `json:"bookable"`
	RemainingSeats int    `json:"remaining_seats"`
}

// AvailabilityResult is the ordered slot list for one
// restaurant+date+party-size query together with aggregate counts.
type AvailabilityResult struct {
	Date          string             `json:"date"`
	PartySize     int                `json:"party_size"`
	Slots         []AvailabilitySlot `json:"slots"`
	TotalSlots    int                `json:"total_slots"`
	BookableSlots int                `json:"bookable_slots"`
}
