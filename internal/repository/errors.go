// Package repository implements raw-SQL data access for the reservation
// platform.  Sentinel errors defined here are shared across repositories so
// higher layers can distinguish failure scenarios with errors.Is instead of
// inspecting driver errors.
package repository

import "errors"

// ErrRestaurantNotFound is returned when the referenced restaurant does not
// exist.  Handlers translate it into HTTP 404.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// ErrReservationNotFound is returned when a reservation lookup matches no
// row, including manage-token lookups with a wrong token.  Handlers
// translate it into HTTP 404.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrForbidden is returned when staff act on a reservation belonging to a
// restaurant they are not scoped to.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot proceed because of the
// current state, such as an illegal status transition.  Handlers translate
// it into HTTP 409.
var ErrConflict = errors.New("conflict")
