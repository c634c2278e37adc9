package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/restovia/table-reservation/internal/model"
	"github.com/restovia/table-reservation/internal/service"
)

// ReservationHandler serves the guest-facing booking endpoints.  Guests
// hold no accounts; a reservation is managed through the opaque token
// returned at creation.
type ReservationHandler struct {
	Booking *service.BookingService
}

func NewReservationHandler(svc *service.BookingService) *ReservationHandler {
	return &ReservationHandler{Booking: svc}
}

// ----- DTOs -----

type createReservationReq struct {
	Date      string `json:"date"`       // "YYYY-MM-DD"
	Time      string `json:"time"`       // "HH:MM"
	PartySize int    `json:"party_size"` //
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Notes     string `json:"notes"`
}

type reservationResp struct {
	ID              uint64   `json:"id"`
	RestaurantID    uint64   `json:"restaurant_id"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	DurationMinutes int      `json:"duration_minutes"`
	PartySize       int      `json:"party_size"`
	Status          string   `json:"status"`
	Name            string   `json:"name"`
	TableIDs        []uint64 `json:"table_ids,omitempty"`
	ManageToken     string   `json:"manage_token,omitempty"`
	DepositRequired bool     `json:"deposit_required"`
	DepositCents    uint32   `json:"deposit_cents,omitempty"`
	DepositCurrency string   `json:"deposit_currency,omitempty"`
	DepositStatus   string   `json:"deposit_status"`
}

func toReservationResp(res *model.Reservation, withToken bool) reservationResp {
	out := reservationResp{
		ID:              res.ID,
		RestaurantID:    res.RestaurantID,
		Date:            res.Date,
		Time:            res.StartTime,
		DurationMinutes: res.DurationMinutes,
		PartySize:       res.PartySize,
		Status:          res.Status,
		Name:            res.GuestName,
		TableIDs:        res.TableIDs,
		DepositRequired: res.DepositRequired,
		DepositCents:    res.DepositCents,
		DepositCurrency: res.DepositCurrency,
		DepositStatus:   res.DepositStatus,
	}
	if withToken {
		out.ManageToken = res.ManageToken
	}
	return out
}

// Create answers POST /v1/restaurants/:id/reservations.  The slot is
// re-validated against committed bookings under the write lock, so a 201
// means the tables are genuinely held.  The manage token in the response is
// the guest's only credential; it is never returned again.
func (h *ReservationHandler) Create(c echo.Context) error {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || restaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Date == "" || req.Time == "" || req.PartySize < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date, time and party_size required"})
	}
	if req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phone required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Booking.CreateReservation(ctx, restaurantID, req.Date, req.Time, req.PartySize,
		service.GuestDetails{Name: req.Name, Phone: req.Phone, Email: req.Email, Notes: req.Notes})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(res, true))
}

// Get answers GET /v1/reservations/:token with the reservation behind a
// manage token.
func (h *ReservationHandler) Get(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Booking.GetByManageToken(ctx, token)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res, false))
}

// Cancel answers DELETE /v1/reservations/:token.  Guests may cancel until
// their start time; the reservation row survives as CANCELLED_BY_CUSTOMER
// and its tables free up immediately.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Booking.CancelByManageToken(ctx, token)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res, false))
}

// DepositPreview answers GET /v1/restaurants/:id/deposit-preview?party_size=N
// so a UI can show the deposit before a slot is picked.
func (h *ReservationHandler) DepositPreview(c echo.Context) error {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || restaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	partySize, err := strconv.Atoi(c.QueryParam("party_size"))
	if err != nil || partySize < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	quote, err := h.Booking.EvaluateDeposit(ctx, restaurantID, partySize)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}
