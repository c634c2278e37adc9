package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/restovia/table-reservation/internal/availability"
	"github.com/restovia/table-reservation/internal/repository"
	"github.com/restovia/table-reservation/internal/service"
)

// AvailabilityHandler serves the public availability read path.
type AvailabilityHandler struct {
	Booking *service.BookingService
}

func NewAvailabilityHandler(svc *service.BookingService) *AvailabilityHandler {
	return &AvailabilityHandler{Booking: svc}
}

// Get answers GET /v1/restaurants/:id/availability?date=YYYY-MM-DD&party_size=N
// with every slot of the date, each stamped bookable or not for the party.
// The answer is advisory; only the booking write path reserves capacity.
func (h *AvailabilityHandler) Get(c echo.Context) error {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || restaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date required"})
	}
	partySize, err := strconv.Atoi(c.QueryParam("party_size"))
	if err != nil || partySize < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.Booking.GetAvailability(ctx, restaurantID, date, partySize)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// bookingError translates engine and repository sentinels into HTTP
// responses.  Validation failures distinguish malformed input (400) from
// well-formed requests the policy refuses (422).
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, availability.ErrInvalidDate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	case errors.Is(err, availability.ErrInvalidPartySize):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "party size outside policy bounds"})
	case errors.Is(err, availability.ErrOutsideLeadTimeWindow):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "outside booking window"})
	case errors.Is(err, availability.ErrRestaurantNotBookable):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "online booking disabled"})
	case errors.Is(err, availability.ErrSlotNoLongerAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot no longer available"})
	case errors.Is(err, availability.ErrBusy):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "busy, retry shortly"})
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
