package model

import "time"

// Deposit amount types.  PER_PERSON multiplies the configured amount by the
// party size; FLAT charges the configured amount regardless of party size.
const (
	DepositPerPerson = "PER_PERSON"
	DepositFlat      = "FLAT"
)

// Restaurant represents a single tenant of the platform together with its
// booking policy.  The policy governs every availability computation and
// reservation write for the restaurant.
//
// Fields:
//  ID                 – primary key identifier.
//  Name               – display name of the restaurant.
//  Timezone           – IANA timezone name (e.g. "Europe/Amsterdam"); all
//                       "today" and lead-time math happens in this zone.
//  BookingEnabled     – whether online booking is accepted at all.
//  MinPartySize       – smallest party accepted online.
//  MaxPartySize       – largest party accepted online (>= MinPartySize).
//  DurationMinutes    – default service duration of a reservation.
//  MinLeadMinutes     – minimum advance notice; 0 allows walk-in-time booking.
//  MaxLeadDays        – maximum advance notice in days (>= 0).
//  ManualSeating      – the restaurant assigns tables by hand; capacity is
//                       checked against aggregate seats instead of concrete
//                       table assignment.
//  MaxCombinedExcess  – when combining tables, the summed capacity may exceed
//                       the party size by at most this many seats; 0 disables
//                       the limit.
//  EnforceCombinedMin – when combining tables, require the summed minimum
//                       guest floor to stay at or below the party size.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Restaurant struct {
	ID                 uint64    // restaurants.id
	Name               string    // restaurants.name
	Timezone           string    // restaurants.timezone
	BookingEnabled     bool      // restaurants.booking_enabled
	MinPartySize       int       // restaurants.min_party_size
	MaxPartySize       int       // restaurants.max_party_size
	DurationMinutes    int       // restaurants.duration_minutes
	MinLeadMinutes     int       // restaurants.min_lead_minutes
	MaxLeadDays        int       // restaurants.max_lead_days
	ManualSeating      bool      // restaurants.manual_seating
	MaxCombinedExcess  int       // restaurants.max_combined_excess
	EnforceCombinedMin bool      // restaurants.enforce_combined_min
	Deposit            DepositPolicy
	CreatedAt          time.Time // restaurants.created_at
	UpdatedAt          time.Time // restaurants.updated_at
}

// DepositPolicy configures when a deposit is required and how its amount is
// derived.  Deposits are tracked, never charged, by this platform.
//
// Fields:
//  Enabled        – deposits are in use for this restaurant.
//  ThresholdParty – parties of this size or larger require a deposit.
//  AmountType     – DepositPerPerson or DepositFlat.
//  AmountCents    – configured amount in minor currency units.
//  Currency       – ISO 4217 code (e.g. "EUR").
type DepositPolicy struct {
	Enabled        bool   // restaurants.deposit_enabled
	ThresholdParty int    // restaurants.deposit_threshold_party
	AmountType     string // restaurants.deposit_amount_type
	AmountCents    uint32 // restaurants.deposit_amount_cents
	Currency       string // restaurants.deposit_currency
}
