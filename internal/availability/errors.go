// Package availability computes reservable time slots for a restaurant by
// reconciling weekly opening hours, one-off blackouts, table inventory and
// existing reservations under the restaurant's booking policy.  Everything
// in this package is a pure function over data loaded by the caller; the
// package has no knowledge of the underlying storage.
package availability

import "errors"

// ErrInvalidPartySize is returned when the requested party size lies outside
// the restaurant's [min, max] policy bounds.  Callers should direct the
// guest to contact the restaurant instead of showing empty slots.
var ErrInvalidPartySize = errors.New("party size outside policy bounds")

// ErrInvalidDate is returned when the target date cannot be parsed as a
// calendar date.
var ErrInvalidDate = errors.New("invalid date")

// ErrOutsideLeadTimeWindow is returned on the write path when the requested
// slot violates the restaurant's minimum or maximum lead-time policy.
var ErrOutsideLeadTimeWindow = errors.New("outside lead time window")

// ErrRestaurantNotBookable is returned when online booking is disabled for
// the restaurant.
var ErrRestaurantNotBookable = errors.New("restaurant not bookable online")

// ErrSlotNoLongerAvailable is returned on the write path when the requested
// slot cannot seat the party at write time — either the slot was never
// offerable for that date or capacity was consumed by a concurrent booking.
// Expected under contention; callers should offer another time.
var ErrSlotNoLongerAvailable = errors.New("slot no longer available")

// ErrBusy is returned when the per-restaurant-date write lock could not be
// acquired in time.  The condition is transient and the request may be
// retried as-is.
var ErrBusy = errors.New("booking busy, retry")
