package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/restovia/table-reservation/internal/availability"
	"github.com/restovia/table-reservation/internal/model"
	"github.com/restovia/table-reservation/internal/queue"
	"github.com/restovia/table-reservation/internal/repository"
)

// fixedClock pins "now" for deterministic lead-time math.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// memStore is an in-memory ReservationStore.  CreateWithLock serializes
// writers per (restaurant, date) with a one-slot channel, mirroring the
// named-lock semantics of the MySQL implementation.
type memStore struct {
	mu           sync.Mutex
	locks        map[string]chan struct{}
	nextID       uint64
	reservations map[uint64]*model.Reservation
	byToken      map[string]uint64
}

func newMemStore() *memStore {
	return &memStore{
		locks:        make(map[string]chan struct{}),
		reservations: make(map[uint64]*model.Reservation),
		byToken:      make(map[string]uint64),
	}
}

func (s *memStore) lockFor(restaurantID uint64, date string) chan struct{} {
	key := fmt.Sprintf("%d:%s", restaurantID, date)
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

func (s *memStore) ListOccupancy(_ context.Context, restaurantID uint64, date string) ([]repository.OccupancyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupancyLocked(restaurantID, date), nil
}

func (s *memStore) occupancyLocked(restaurantID uint64, date string) []repository.OccupancyRecord {
	var out []repository.OccupancyRecord
	for _, res := range s.reservations {
		if res.RestaurantID != restaurantID || res.Date != date || !model.CountsAgainstCapacity(res.Status) {
			continue
		}
		out = append(out, repository.OccupancyRecord{
			ReservationID:   res.ID,
			StartTime:       res.StartTime,
			DurationMinutes: res.DurationMinutes,
			PartySize:       res.PartySize,
			TableIDs:        append([]uint64(nil), res.TableIDs...),
		})
	}
	return out
}

func (s *memStore) CreateWithLock(ctx context.Context, restaurantID uint64, date string, timeout time.Duration,
	decide func(occupancy []repository.OccupancyRecord) (*model.Reservation, error)) (*model.Reservation, error) {
	lock := s.lockFor(restaurantID, date)
	select {
	case lock <- struct{}{}:
	case <-time.After(timeout):
		return nil, repository.ErrLockTimeout
	}
	defer func() { <-lock }()

	s.mu.Lock()
	occupancy := s.occupancyLocked(restaurantID, date)
	s.mu.Unlock()

	res, err := decide(occupancy)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	stored := *res
	s.reservations[res.ID] = &stored
	s.byToken[res.ManageToken] = res.ID
	return res, nil
}

func (s *memStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (s *memStore) GetByManageToken(_ context.Context, token string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byToken[token]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *s.reservations[id]
	return &cp, nil
}

func (s *memStore) ListByDate(_ context.Context, restaurantID uint64, date string) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, res := range s.reservations {
		if res.RestaurantID == restaurantID && res.Date == date {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id uint64, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if res.Status != from {
		return repository.ErrConflict
	}
	res.Status = to
	return nil
}

type memRestaurants struct{ byID map[uint64]*model.Restaurant }

func (s memRestaurants) GetByID(_ context.Context, id uint64) (*model.Restaurant, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrRestaurantNotFound
	}
	cp := *r
	return &cp, nil
}

type memTables struct{ tables []model.Table }

func (s memTables) ListActive(_ context.Context, restaurantID uint64) ([]model.Table, error) {
	var out []model.Table
	for _, t := range s.tables {
		if t.RestaurantID == restaurantID && t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

type memSchedules struct {
	hours   []model.OpeningHour
	blocked []model.BlockedWindow
}

func (s memSchedules) OpeningHours(_ context.Context, restaurantID uint64, profile string) ([]model.OpeningHour, error) {
	var out []model.OpeningHour
	for _, h := range s.hours {
		if h.RestaurantID == restaurantID && h.Profile == profile {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s memSchedules) BlockedWindows(_ context.Context, restaurantID uint64, profile, date string) ([]model.BlockedWindow, error) {
	var out []model.BlockedWindow
	for _, b := range s.blocked {
		if b.RestaurantID == restaurantID && b.Profile == profile && b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []queue.ReservationConfirmedEvent
}

func (p *capturePublisher) PublishReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

// testDate is a Monday so the single DayOfWeek=0 opening row applies.
const testDate = "2025-06-02"

func testRestaurant() *model.Restaurant {
	return &model.Restaurant{
		ID:              1,
		Name:            "De Gouden Lepel",
		Timezone:        "UTC",
		BookingEnabled:  true,
		MinPartySize:    1,
		MaxPartySize:    8,
		DurationMinutes: 90,
		MinLeadMinutes:  0,
		MaxLeadDays:     30,
	}
}

func newTestService(t *testing.T, restaurant *model.Restaurant, tables []model.Table) (*BookingService, *memStore, *capturePublisher) {
	t.Helper()
	store := newMemStore()
	pub := &capturePublisher{}
	svc := &BookingService{
		Restaurants: memRestaurants{byID: map[uint64]*model.Restaurant{restaurant.ID: restaurant}},
		Tables:      memTables{tables: tables},
		Schedules: memSchedules{hours: []model.OpeningHour{
			{RestaurantID: 1, Profile: model.ProfileBooking, DayOfWeek: 0, IsOpen: true,
				OpenTime: "18:00", CloseTime: "21:30", LastReservation: "20:00"},
		}},
		Reservations: store,
		Publisher:    pub,
		Clock:        fixedClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		Granularity:  30,
		LockTimeout:  2 * time.Second,
	}
	return svc, store, pub
}

func TestGetAvailability(t *testing.T) {
	svc, _, _ := newTestService(t, testRestaurant(), []model.Table{
		{ID: 1, RestaurantID: 1, Name: "T1", MinGuests: 1, MaxGuests: 2, IsActive: true},
		{ID: 2, RestaurantID: 1, Name: "T2", MinGuests: 2, MaxGuests: 4, IsActive: true},
	})

	result, err := svc.GetAvailability(context.Background(), 1, testDate, 2)
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	// 18:00 through 20:00 at 30 minutes: 5 slots, all free.
	if result.TotalSlots != 5 {
		t.Fatalf("total slots = %d, want 5", result.TotalSlots)
	}
	if result.BookableSlots != 5 {
		t.Fatalf("bookable slots = %d, want 5", result.BookableSlots)
	}
	if result.Slots[0].Start != "18:00" || result.Slots[4].Start != "20:00" {
		t.Fatalf("slot range = %s..%s, want 18:00..20:00", result.Slots[0].Start, result.Slots[4].Start)
	}
}

func TestCreateReservation(t *testing.T) {
	restaurant := testRestaurant()
	restaurant.Deposit = model.DepositPolicy{
		Enabled: true, ThresholdParty: 2, AmountType: model.DepositPerPerson,
		AmountCents: 500, Currency: "EUR",
	}
	svc, _, _ := newTestService(t, restaurant, []model.Table{
		{ID: 1, RestaurantID: 1, Name: "T1", MinGuests: 1, MaxGuests: 2, IsActive: true},
	})

	res, err := svc.CreateReservation(context.Background(), 1, testDate, "18:30", 2,
		GuestDetails{Name: "Anna", Phone: "+31612345678"})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if res.Status != model.StatusPending {
		t.Errorf("status = %s, want PENDING", res.Status)
	}
	if res.ManageToken == "" {
		t.Error("manage token not set")
	}
	if len(res.TableIDs) != 1 || res.TableIDs[0] != 1 {
		t.Errorf("table ids = %v, want [1]", res.TableIDs)
	}
	if !res.DepositRequired || res.DepositCents != 1000 || res.DepositStatus != model.DepositPending {
		t.Errorf("deposit = required=%v cents=%d status=%s, want required 1000 PENDING",
			res.DepositRequired, res.DepositCents, res.DepositStatus)
	}

	got, err := svc.GetByManageToken(context.Background(), res.ManageToken)
	if err != nil {
		t.Fatalf("GetByManageToken: %v", err)
	}
	if got.ID != res.ID {
		t.Errorf("lookup returned id %d, want %d", got.ID, res.ID)
	}

	// The held table blocks every overlapping start for a second party.
	if _, err := svc.CreateReservation(context.Background(), 1, testDate, "19:00", 2,
		GuestDetails{Name: "Bram", Phone: "+31687654321"}); !errors.Is(err, availability.ErrSlotNoLongerAvailable) {
		t.Fatalf("overlapping create err = %v, want ErrSlotNoLongerAvailable", err)
	}
}

func TestCreateReservationContention(t *testing.T) {
	svc, store, _ := newTestService(t, testRestaurant(), []model.Table{
		{ID: 1, RestaurantID: 1, Name: "T1", MinGuests: 1, MaxGuests: 2, IsActive: true},
	})

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateReservation(context.Background(), 1, testDate, "19:00", 2,
				GuestDetails{Name: fmt.Sprintf("guest-%d", i), Phone: "+31600000000"})
		}(i)
	}
	wg.Wait()

	won := 0
	for i, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, availability.ErrSlotNoLongerAvailable):
		default:
			t.Fatalf("worker %d: unexpected err %v", i, err)
		}
	}
	if won != 1 {
		t.Fatalf("%d workers won the slot, want exactly 1", won)
	}
	if len(store.reservations) != 1 {
		t.Fatalf("%d reservations persisted, want 1", len(store.reservations))
	}
}

func TestCreateReservationBusy(t *testing.T) {
	svc, store, _ := newTestService(t, testRestaurant(), []model.Table{
		{ID: 1, RestaurantID: 1, Name: "T1", MinGuests: 1, MaxGuests: 2, IsActive: true},
	})
	svc.LockTimeout = 50 * time.Millisecond

	// Occupy the per-date lock so the create cannot acquire it in time.
	lock := store.lockFor(1, testDate)
	lock <- struct{}{}
	defer func() { <-lock }()

	_, err := svc.CreateReservation(context.Background(), 1, testDate, "19:00", 2,
		GuestDetails{Name: "Anna", Phone: "+31612345678"})
	if !errors.Is(err, availability.ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
}

func TestCreateReservationValidation(t *testing.T) {
	restaurant := testRestaurant()
	svc, _, _ := newTestService(t, restaurant, []model.Table{
		{ID: 1, RestaurantID: 1, Name: "T1", MinGuests: 1, MaxGuests: 4, IsActive: true},
	})

	cases := []struct {
		name  string
		date  string
		start string
		party int
		want  error
	}{
		{"party too large", testDate, "19:00", 9, availability.ErrInvalidPartySize},
		{"malformed date", "06/02/2025", "19:00", 2, availability.ErrInvalidDate},
		{"start off grid", testDate, "19:10", 2, availability.ErrSlotNoLongerAvailable},
		{"start past last seating", testDate, "20:30", 2, availability.ErrSlotNoLongerAvailable},
		{"date in the past", "2025-05-20", "19:00", 2, availability.ErrOutsideLeadTimeWindow},
		{"date beyond horizon", "2025-08-15", "19:00", 2, availability.ErrOutsideLeadTimeWindow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateReservation(context.Background(), 1, tc.date, tc.start, tc.party,
				GuestDetails{Name: "Anna", Phone: "+31612345678"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	restaurant.BookingEnabled = false
	if _, err := svc.CreateReservation(context.Background(), 1, testDate, "19:00", 2,
		GuestDetails{Name: "Anna", Phone: "+31612345678"}); !errors.Is(err, availability.ErrRestaurantNotBookable) {
		t.Fatalf("disabled restaurant err = %v, want ErrRestaurantNotBookable", err)
	}
}

func TestCancelByManageToken(t *testing.T) {
	svc, _, _ := newTestService(t, testRestaurant(), []model.Table{
		{ID: 1, RestaurantID: 1, Name: "T1", MinGuests: 1, MaxGuests: 2, IsActive: true},
	})

	res, err := svc.CreateReservation(context.Background(), 1, testDate, "19:00", 2,
		GuestDetails{Name: "Anna", Phone: "+31612345678"})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	cancelled, err := svc.CancelByManageToken(context.Background(), res.ManageToken)
	if err != nil {
		t.Fatalf("CancelByManageToken: %v", err)
	}
	if cancelled.Status != model.StatusCancelledByCustomer {
		t.Fatalf("status = %s, want CANCELLED_BY_CUSTOMER", cancelled.Status)
	}

	// Cancelled is terminal; a second cancel is rejected.
	if _, err := svc.CancelByManageToken(context.Background(), res.ManageToken); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("double cancel err = %v, want ErrConflict", err)
	}

	// The freed table is immediately bookable again.
	if _, err := svc.CreateReservation(context.Background(), 1, testDate, "19:00", 2,
		GuestDetails{Name: "Bram", Phone: "+31687654321"}); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}

	if _, err := svc.CancelByManageToken(context.Background(), "deadbeef"); !errors.Is(err, repository.ErrReservationNotFound) {
		t.Fatalf("unknown token err = %v, want ErrReservationNotFound", err)
	}
}

func TestCancelAfterStart(t *testing.T) {
	svc, store, _ := newTestService(t, testRestaurant(), []model.Table{
		{ID: 1, RestaurantID: 1, Name: "T1", MinGuests: 1, MaxGuests: 2, IsActive: true},
	})

	// Seed a reservation whose service already began relative to the clock.
	store.nextID++
	store.reservations[store.nextID] = &model.Reservation{
		ID: store.nextID, RestaurantID: 1, Date: "2025-06-01", StartTime: "09:00",
		DurationMinutes: 90, PartySize: 2, Status: model.StatusConfirmed,
		GuestName: "Anna", GuestPhone: "+31612345678", ManageToken: "tok-started",
	}
	store.byToken["tok-started"] = store.nextID

	if _, err := svc.CancelByManageToken(context.Background(), "tok-started"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestTransitionStatus(t *testing.T) {
	svc, _, pub := newTestService(t, testRestaurant(), []model.Table{
		{ID: 1, RestaurantID: 1, Name: "T1", MinGuests: 1, MaxGuests: 2, IsActive: true},
	})
	host := model.StaffUser{ID: 10, RestaurantID: 1, Role: model.RoleHost}
	stranger := model.StaffUser{ID: 11, RestaurantID: 2, Role: model.RoleOwner}

	res, err := svc.CreateReservation(context.Background(), 1, testDate, "19:00", 2,
		GuestDetails{Name: "Anna", Phone: "+31612345678"})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	if _, err := svc.TransitionStatus(context.Background(), stranger, res.ID, model.StatusConfirmed); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("cross-restaurant err = %v, want ErrForbidden", err)
	}
	if _, err := svc.TransitionStatus(context.Background(), host, res.ID, model.StatusCompleted); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("PENDING->COMPLETED err = %v, want ErrConflict", err)
	}
	if _, err := svc.TransitionStatus(context.Background(), host, res.ID, "SEATED"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("unknown status err = %v, want ErrConflict", err)
	}

	confirmed, err := svc.TransitionStatus(context.Background(), host, res.ID, model.StatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != model.StatusConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", confirmed.Status)
	}
	if len(pub.events) != 1 || pub.events[0].ReservationID != res.ID {
		t.Fatalf("published events = %+v, want one for reservation %d", pub.events, res.ID)
	}

	// Confirmed reservations still occupy the table.
	if _, err := svc.CreateReservation(context.Background(), 1, testDate, "19:00", 2,
		GuestDetails{Name: "Bram", Phone: "+31687654321"}); !errors.Is(err, availability.ErrSlotNoLongerAvailable) {
		t.Fatalf("rebook after confirm err = %v, want ErrSlotNoLongerAvailable", err)
	}

	done, err := svc.TransitionStatus(context.Background(), host, res.ID, model.StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != model.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", done.Status)
	}
	if len(pub.events) != 1 {
		t.Fatalf("completing published %d extra events, want none", len(pub.events)-1)
	}
}

func TestListForStaff(t *testing.T) {
	svc, _, _ := newTestService(t, testRestaurant(), []model.Table{
		{ID: 1, RestaurantID: 1, Name: "T1", MinGuests: 1, MaxGuests: 2, IsActive: true},
	})
	if _, err := svc.CreateReservation(context.Background(), 1, testDate, "19:00", 2,
		GuestDetails{Name: "Anna", Phone: "+31612345678"}); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	host := model.StaffUser{ID: 10, RestaurantID: 1, Role: model.RoleHost}
	list, err := svc.ListForStaff(context.Background(), host, 1, testDate)
	if err != nil {
		t.Fatalf("ListForStaff: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("listed %d reservations, want 1", len(list))
	}

	stranger := model.StaffUser{ID: 11, RestaurantID: 2, Role: model.RoleOwner}
	if _, err := svc.ListForStaff(context.Background(), stranger, 1, testDate); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestEvaluateDeposit(t *testing.T) {
	restaurant := testRestaurant()
	restaurant.Deposit = model.DepositPolicy{
		Enabled: true, ThresholdParty: 6, AmountType: model.DepositFlat,
		AmountCents: 2500, Currency: "EUR",
	}
	svc, _, _ := newTestService(t, restaurant, nil)

	quote, err := svc.EvaluateDeposit(context.Background(), 1, 6)
	if err != nil {
		t.Fatalf("EvaluateDeposit: %v", err)
	}
	if !quote.Required || quote.AmountCents != 2500 || quote.Currency != "EUR" {
		t.Fatalf("quote = %+v, want required 2500 EUR", quote)
	}

	quote, err = svc.EvaluateDeposit(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("EvaluateDeposit: %v", err)
	}
	if quote.Required {
		t.Fatalf("quote below threshold required, want not required")
	}

	if _, err := svc.EvaluateDeposit(context.Background(), 42, 4); !errors.Is(err, repository.ErrRestaurantNotFound) {
		t.Fatalf("unknown restaurant err = %v, want ErrRestaurantNotFound", err)
	}
}
