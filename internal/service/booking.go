// Package service orchestrates the availability engine, the repositories
// and the event stream into the platform's booking operations.  The
// stores are consumed through narrow interfaces so the concrete MySQL
// repositories and in-memory test fakes are interchangeable.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/restovia/table-reservation/internal/availability"
	"github.com/restovia/table-reservation/internal/model"
	"github.com/restovia/table-reservation/internal/queue"
	"github.com/restovia/table-reservation/internal/repository"
)

// RestaurantStore loads restaurants and their booking policy.
type RestaurantStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Restaurant, error)
}

// TableStore loads a restaurant's active table inventory.
type TableStore interface {
	ListActive(ctx context.Context, restaurantID uint64) ([]model.Table, error)
}

// ScheduleStore loads opening hours and blocked windows.
type ScheduleStore interface {
	OpeningHours(ctx context.Context, restaurantID uint64, profile string) ([]model.OpeningHour, error)
	BlockedWindows(ctx context.Context, restaurantID uint64, profile, date string) ([]model.BlockedWindow, error)
}

// ReservationStore persists reservations.  CreateWithLock must serialize
// concurrent calls per (restaurant, date): it acquires the write lock,
// loads the committed occupancy, hands it to decide and persists the
// reservation decide returns, all atomically.  A lock wait beyond timeout
// returns repository.ErrLockTimeout.
type ReservationStore interface {
	ListOccupancy(ctx context.Context, restaurantID uint64, date string) ([]repository.OccupancyRecord, error)
	CreateWithLock(ctx context.Context, restaurantID uint64, date string, timeout time.Duration,
		decide func(occupancy []repository.OccupancyRecord) (*model.Reservation, error)) (*model.Reservation, error)
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GetByManageToken(ctx context.Context, token string) (*model.Reservation, error)
	ListByDate(ctx context.Context, restaurantID uint64, date string) ([]model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, from, to string) error
}

// EventPublisher pushes domain events to the broker.  Publishing is
// best-effort; failures are logged, never surfaced to guests.
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

// GuestDetails are the contact fields a diner submits with a booking.
type GuestDetails struct {
	Name  string
	Phone string
	Email string
	Notes string
}

// BookingService exposes the platform's booking operations.  Every call
// takes the restaurant id explicitly; there is no ambient tenant.
type BookingService struct {
	Restaurants  RestaurantStore
	Tables       TableStore
	Schedules    ScheduleStore
	Reservations ReservationStore
	Publisher    EventPublisher // optional
	Clock        availability.Clock
	Granularity  int           // slot step in minutes, fixed system-wide
	LockTimeout  time.Duration // write lock acquisition bound
}

// NewBookingService wires a BookingService with the system clock and the
// given slot granularity.
func NewBookingService(restaurants RestaurantStore, tables TableStore, schedules ScheduleStore,
	reservations ReservationStore, publisher EventPublisher, granularity int, lockTimeout time.Duration) *BookingService {
	return &BookingService{
		Restaurants:  restaurants,
		Tables:       tables,
		Schedules:    schedules,
		Reservations: reservations,
		Publisher:    publisher,
		Clock:        availability.SystemClock(),
		Granularity:  granularity,
		LockTimeout:  lockTimeout,
	}
}

// GetAvailability answers the read path: every offerable slot for the date,
// stamped bookable or not for the party size.  Side-effect-free and
// lock-free; the result is advisory.
func (s *BookingService) GetAvailability(ctx context.Context, restaurantID uint64, date string, partySize int) (*model.AvailabilityResult, error) {
	day, err := s.loadDay(ctx, restaurantID, date, nil)
	if err != nil {
		return nil, err
	}
	occupancy, err := s.Reservations.ListOccupancy(ctx, restaurantID, date)
	if err != nil {
		return nil, fmt.Errorf("load occupancy: %w", err)
	}
	day.Bookings = toBookings(occupancy)

	result, err := availability.Compute(*day, date, partySize, s.Granularity, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateReservation is the sole mutation point of the booking flow.  The
// requested slot is re-validated against committed occupancy inside the
// per-restaurant-date lock before the insert, so two contending requests
// can never oversell a table.  New reservations start PENDING with deposit
// fields stamped from policy.
func (s *BookingService) CreateReservation(ctx context.Context, restaurantID uint64, date, start string, partySize int, guest GuestDetails) (*model.Reservation, error) {
	day, err := s.loadDay(ctx, restaurantID, date, nil)
	if err != nil {
		return nil, err
	}
	policy := day.Restaurant

	token, err := repository.NewManageToken()
	if err != nil {
		return nil, fmt.Errorf("manage token: %w", err)
	}
	quote := availability.EvaluateDeposit(policy.Deposit, partySize)
	depositStatus := model.DepositNone
	if quote.Required {
		depositStatus = model.DepositPending
	}

	created, err := s.Reservations.CreateWithLock(ctx, restaurantID, date, s.LockTimeout,
		func(occupancy []repository.OccupancyRecord) (*model.Reservation, error) {
			day.Bookings = toBookings(occupancy)
			seating, err := availability.SeatAt(*day, date, start, partySize, s.Granularity, s.Clock.Now())
			if err != nil {
				return nil, err
			}
			return &model.Reservation{
				RestaurantID:    restaurantID,
				Date:            date,
				StartTime:       start,
				DurationMinutes: policy.DurationMinutes,
				PartySize:       partySize,
				Status:          model.StatusPending,
				GuestName:       guest.Name,
				GuestPhone:      guest.Phone,
				GuestEmail:      guest.Email,
				Notes:           guest.Notes,
				ManageToken:     token,
				DepositRequired: quote.Required,
				DepositCents:    quote.AmountCents,
				DepositCurrency: quote.Currency,
				DepositStatus:   depositStatus,
				TableIDs:        seating.TableIDs,
			}, nil
		})
	if errors.Is(err, repository.ErrLockTimeout) {
		return nil, availability.ErrBusy
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EvaluateDeposit previews the deposit for a party size without touching
// slot computation, so UIs can show it before a slot is picked.
func (s *BookingService) EvaluateDeposit(ctx context.Context, restaurantID uint64, partySize int) (availability.DepositQuote, error) {
	restaurant, err := s.Restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return availability.DepositQuote{}, err
	}
	return availability.EvaluateDeposit(restaurant.Deposit, partySize), nil
}

// GetByManageToken returns the guest's reservation for their token.
func (s *BookingService) GetByManageToken(ctx context.Context, token string) (*model.Reservation, error) {
	return s.Reservations.GetByManageToken(ctx, token)
}

// CancelByManageToken cancels a guest's reservation before its start time.
// A reservation whose service has begun returns repository.ErrConflict.
func (s *BookingService) CancelByManageToken(ctx context.Context, token string) (*model.Reservation, error) {
	res, err := s.Reservations.GetByManageToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(res.Status, model.StatusCancelledByCustomer) {
		return nil, repository.ErrConflict
	}
	if s.hasStarted(ctx, res) {
		return nil, repository.ErrConflict
	}
	if err := s.Reservations.UpdateStatus(ctx, res.ID, res.Status, model.StatusCancelledByCustomer); err != nil {
		return nil, err
	}
	res.Status = model.StatusCancelledByCustomer
	return res, nil
}

// ListForStaff returns a restaurant's reservations for one date, all
// statuses included, for the floor view.  Staff only see their own
// restaurant.
func (s *BookingService) ListForStaff(ctx context.Context, staff model.StaffUser, restaurantID uint64, date string) ([]model.Reservation, error) {
	if staff.RestaurantID != restaurantID {
		return nil, repository.ErrForbidden
	}
	return s.Reservations.ListByDate(ctx, restaurantID, date)
}

// TransitionStatus applies a staff status action under the reservation
// state machine.  Illegal transitions and races against concurrent actions
// surface as repository.ErrConflict.  Confirming a reservation publishes
// the reservation.confirmed event.
func (s *BookingService) TransitionStatus(ctx context.Context, staff model.StaffUser, reservationID uint64, to string) (*model.Reservation, error) {
	if !model.ValidStatus(to) {
		return nil, repository.ErrConflict
	}
	res, err := s.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.RestaurantID != staff.RestaurantID {
		return nil, repository.ErrForbidden
	}
	if !model.CanTransition(res.Status, to) {
		return nil, repository.ErrConflict
	}
	if err := s.Reservations.UpdateStatus(ctx, res.ID, res.Status, to); err != nil {
		return nil, err
	}
	res.Status = to

	if to == model.StatusConfirmed && s.Publisher != nil {
		ev := queue.ReservationConfirmedEvent{
			ReservationID: res.ID,
			RestaurantID:  res.RestaurantID,
			Date:          res.Date,
			StartTime:     res.StartTime,
			PartySize:     res.PartySize,
			GuestName:     res.GuestName,
			TableIDs:      res.TableIDs,
			DepositCents:  res.DepositCents,
			ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.Publisher.PublishReservationConfirmed(ctx, ev); err != nil {
			log.Printf("booking: publish reservation.confirmed failed: %v", err)
		}
	}
	return res, nil
}

// loadDay assembles the engine input for one restaurant and date.
// Occupancy is attached separately because the write path must load it
// inside the lock.
func (s *BookingService) loadDay(ctx context.Context, restaurantID uint64, date string, bookings []availability.Booking) (*availability.Day, error) {
	restaurant, err := s.Restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	tables, err := s.Tables.ListActive(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	hours, err := s.Schedules.OpeningHours(ctx, restaurantID, model.ProfileBooking)
	if err != nil {
		return nil, fmt.Errorf("load opening hours: %w", err)
	}
	blocked, err := s.Schedules.BlockedWindows(ctx, restaurantID, model.ProfileBooking, date)
	if err != nil {
		return nil, fmt.Errorf("load blocked windows: %w", err)
	}
	return &availability.Day{
		Restaurant:   *restaurant,
		OpeningHours: hours,
		Blocked:      blocked,
		Tables:       tables,
		Bookings:     bookings,
	}, nil
}

// hasStarted reports whether a reservation's start instant has passed in
// its restaurant's timezone.  A policy lookup failure errs on the safe side
// and blocks the cancellation.
func (s *BookingService) hasStarted(ctx context.Context, res *model.Reservation) bool {
	restaurant, err := s.Restaurants.GetByID(ctx, res.RestaurantID)
	if err != nil {
		return true
	}
	loc := availability.LoadLocation(restaurant.Timezone)
	day, err := availability.ParseDate(res.Date, loc)
	if err != nil {
		return true
	}
	startMin, err := availability.ParseClock(res.StartTime)
	if err != nil {
		return true
	}
	return !availability.At(day, startMin).After(s.Clock.Now())
}

// toBookings converts occupancy rows into the engine's projection,
// dropping rows whose stored times do not parse.
func toBookings(records []repository.OccupancyRecord) []availability.Booking {
	bookings := make([]availability.Booking, 0, len(records))
	for _, rec := range records {
		start, err := availability.ParseClock(rec.StartTime)
		if err != nil {
			continue
		}
		bookings = append(bookings, availability.Booking{
			ReservationID: rec.ReservationID,
			StartMin:      start,
			EndMin:        start + rec.DurationMinutes,
			PartySize:     rec.PartySize,
			TableIDs:      rec.TableIDs,
		})
	}
	return bookings
}
