package model

import "time"

// Reservation lifecycle statuses.  Only PENDING and CONFIRMED occupy table
// capacity; every other status is capacity-transparent.  Reservations are
// never hard-deleted — status transitions preserve the audit trail.
const (
	StatusPending               = "PENDING"
	StatusConfirmed             = "CONFIRMED"
	StatusCompleted             = "COMPLETED"
	StatusNoShow                = "NO_SHOW"
	StatusCancelledByCustomer   = "CANCELLED_BY_CUSTOMER"
	StatusCancelledByRestaurant = "CANCELLED_BY_RESTAURANT"
)

// Deposit statuses tracked on a reservation.
const (
	DepositNone    = "NONE"
	DepositPending = "PENDING"
	DepositPaid    = "PAID"
	DepositWaived  = "WAIVED"
)

// Reservation records one party's booking of a restaurant for a date and
// start time.  Tables seated under the reservation are stored in the
// reservation_tables join table; TableIDs is empty for manual-seating
// restaurants until staff assign tables.
//
// Fields:
//  ID              – primary key identifier.
//  RestaurantID    – restaurant being booked.
//  Date            – calendar date, "YYYY-MM-DD" in the restaurant's zone.
//  StartTime       – wall-clock start, "HH:MM".
//  DurationMinutes – service duration; the party occupies its tables for
//                    [start, start+duration).
//  PartySize       – number of guests.
//  Status          – one of the Status* constants above.
//  GuestName       – contact name for the party.
//  GuestPhone      – contact phone number.
//  GuestEmail      – optional contact email.
//  Notes           – free-form request notes.
//  ManageToken     – opaque token returned at creation; lets the guest look
//                    up or cancel the reservation without an account.
//  DepositRequired – whether the booking policy demanded a deposit.
//  DepositCents    – deposit amount in minor units when required.
//  DepositCurrency – ISO 4217 code of the deposit amount.
//  DepositStatus   – one of the Deposit* constants above.
//  TableIDs        – tables seated, loaded from reservation_tables.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    // reservations.id
	RestaurantID    uint64    // reservations.restaurant_id
	Date            string    // reservations.date
	StartTime       string    // reservations.start_time
	DurationMinutes int       // reservations.duration_minutes
	PartySize       int       // reservations.party_size
	Status          string    // reservations.status
	GuestName       string    // reservations.guest_name
	GuestPhone      string    // reservations.guest_phone
	GuestEmail      string    // reservations.guest_email
	Notes           string    // reservations.notes
	ManageToken     string    // reservations.manage_token
	DepositRequired bool      // reservations.deposit_required
	DepositCents    uint32    // reservations.deposit_cents
	DepositCurrency string    // reservations.deposit_currency
	DepositStatus   string    // reservations.deposit_status
	TableIDs        []uint64  // reservation_tables.table_id
	CreatedAt       time.Time // reservations.created_at
	UpdatedAt       time.Time // reservations.updated_at
}

// CountsAgainstCapacity reports whether a reservation with the given status
// occupies physical table capacity.
func CountsAgainstCapacity(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

// IsTerminalStatus reports whether the status admits no further transition.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusNoShow, StatusCancelledByCustomer, StatusCancelledByRestaurant:
		return true
	}
	return false
}

// transitions enumerates the permitted status changes.
var transitions = map[string][]string{
	StatusPending: {
		StatusConfirmed,
		StatusCancelledByCustomer,
		StatusCancelledByRestaurant,
	},
	StatusConfirmed: {
		StatusCompleted,
		StatusNoShow,
		StatusCancelledByCustomer,
		StatusCancelledByRestaurant,
	},
}

// CanTransition reports whether a reservation may move from one status to
// another.  Terminal statuses admit no outgoing transition.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known reservation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusNoShow,
		StatusCancelledByCustomer, StatusCancelledByRestaurant:
		return true
	}
	return false
}
