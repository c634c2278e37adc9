package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/restovia/table-reservation/internal/middleware"
	"github.com/restovia/table-reservation/internal/model"
	"github.com/restovia/table-reservation/internal/service"
)

// StaffReservationHandler serves the staff floor view and the reservation
// status actions.  Every staff account is scoped to one restaurant; the
// scope comes from the JWT, never from the request.
type StaffReservationHandler struct {
	Booking *service.BookingService
}

func NewStaffReservationHandler(svc *service.BookingService) *StaffReservationHandler {
	return &StaffReservationHandler{Booking: svc}
}

// staffFromContext rebuilds the authenticated staff identity from the
// claims JWTAuth stored on the context.
func staffFromContext(c echo.Context) model.StaffUser {
	staffID, _ := c.Get(middleware.CtxStaffID).(uint64)
	restaurantID, _ := c.Get(middleware.CtxRestaurantID).(uint64)
	role, _ := c.Get(middleware.CtxRole).(string)
	return model.StaffUser{ID: staffID, RestaurantID: restaurantID, Role: role}
}

// List answers GET /v1/staff/reservations?date=YYYY-MM-DD with every
// reservation of the staff member's restaurant for the date, all statuses
// included.
func (h *StaffReservationHandler) List(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date required"})
	}
	staff := staffFromContext(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Booking.ListForStaff(ctx, staff, staff.RestaurantID, date)
	if err != nil {
		return bookingError(c, err)
	}
	out := make([]reservationResp, 0, len(list))
	for i := range list {
		out = append(out, toReservationResp(&list[i], false))
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "reservations": out})
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus answers PATCH /v1/staff/reservations/:id/status.  The
// transition is checked against the reservation state machine; races
// between staff actions surface as 409.
func (h *StaffReservationHandler) UpdateStatus(c echo.Context) error {
	reservationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}
	staff := staffFromContext(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Booking.TransitionStatus(ctx, staff, reservationID, status)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res, false))
}
