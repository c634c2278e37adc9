// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when staff confirm a reservation.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint64   `json:"reservation_id"`
	RestaurantID  uint64   `json:"restaurant_id"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	PartySize     int      `json:"party_size"`
	GuestName     string   `json:"guest_name"`
	TableIDs      []uint64 `json:"table_ids"`
	DepositCents  uint32   `json:"deposit_cents"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
