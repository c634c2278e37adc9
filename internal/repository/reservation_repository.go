package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/restovia/table-reservation/internal/model"
)

// ErrLockTimeout is returned by WithDateLock when the per-restaurant-date
// named lock could not be acquired before the timeout.  The service layer
// surfaces it as a retryable busy condition.
var ErrLockTimeout = errors.New("date lock timeout")

// ReservationRepo provides CRUD operations for reservations and their
// seated tables.  Tables seated under a reservation live in the
// reservation_tables join table.  All timestamps are stored in UTC; dates
// and start times are restaurant-local wall-clock values.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for transaction management.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// WithDateLock runs fn inside a transaction while holding the MySQL named
// lock for one restaurant and date.  The lock serializes every
// re-check-then-insert sequence for that unit; availability reads never
// take it.  Named locks are session-scoped and survive COMMIT, so the
// whole sequence is pinned to one pooled connection: acquire, transaction,
// then release on the same session after the transaction settles.
// Releasing before commit would let the next writer re-check against
// occupancy this transaction is about to change.  A lock wait beyond
// timeout returns ErrLockTimeout without starting fn.
func (r *ReservationRepo) WithDateLock(ctx context.Context, restaurantID uint64, date string, timeout time.Duration, fn func(tx *sql.Tx) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	lockName := fmt.Sprintf("resv:%d:%s", restaurantID, date)
	seconds := int(timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, lockName, seconds).Scan(&got); err != nil {
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		return ErrLockTimeout
	}
	defer func() {
		// Runs after the commit/rollback defers below.  The release must
		// not be skipped on a cancelled request, or the session returns to
		// the pool still holding the lock.
		var released sql.NullInt64
		_ = conn.QueryRowContext(context.WithoutCancel(ctx), `SELECT RELEASE_LOCK(?)`, lockName).Scan(&released)
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// OccupancyRecord is the capacity projection of one reservation: when it
// occupies its tables and for how many guests.  TableIDs is empty for
// reservations staff have not assigned yet.
type OccupancyRecord struct {
	ReservationID   uint64
	StartTime       string // "HH:MM"
	DurationMinutes int
	PartySize       int
	TableIDs        []uint64
}

const occupancyQuery = `SELECT id, TIME_FORMAT(start_time, '%H:%i'), duration_minutes, party_size
	FROM reservations
	WHERE restaurant_id = ? AND date = ? AND status IN ('PENDING', 'CONFIRMED')
	ORDER BY start_time, id`

// ListOccupancy returns the capacity-consuming reservations of one
// restaurant and date.  Cancelled, completed and no-show reservations are
// capacity-transparent and excluded by the query.
func (r *ReservationRepo) ListOccupancy(ctx context.Context, restaurantID uint64, date string) ([]OccupancyRecord, error) {
	rows, err := r.db.QueryContext(ctx, occupancyQuery, restaurantID, date)
	if err != nil {
		return nil, err
	}
	return r.collectOccupancy(ctx, rows, func(q string, args ...interface{}) (*sql.Rows, error) {
		return r.db.QueryContext(ctx, q, args...)
	})
}

// ListOccupancyTx is the transactional variant used by the write path while
// holding the date lock, so the re-check sees every committed booking.
func (r *ReservationRepo) ListOccupancyTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, date string) ([]OccupancyRecord, error) {
	rows, err := tx.QueryContext(ctx, occupancyQuery, restaurantID, date)
	if err != nil {
		return nil, err
	}
	return r.collectOccupancy(ctx, rows, func(q string, args ...interface{}) (*sql.Rows, error) {
		return tx.QueryContext(ctx, q, args...)
	})
}

// collectOccupancy scans occupancy rows and attaches seated table ids with
// a single IN query.
func (r *ReservationRepo) collectOccupancy(ctx context.Context, rows *sql.Rows, query func(string, ...interface{}) (*sql.Rows, error)) ([]OccupancyRecord, error) {
	defer rows.Close()
	var records []OccupancyRecord
	index := make(map[uint64]int)
	for rows.Next() {
		var rec OccupancyRecord
		if err := rows.Scan(&rec.ReservationID, &rec.StartTime, &rec.DurationMinutes, &rec.PartySize); err != nil {
			return nil, err
		}
		index[rec.ReservationID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	ids := make([]interface{}, 0, len(records))
	placeholders := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ReservationID)
		placeholders = append(placeholders, "?")
	}
	trows, err := query(`SELECT reservation_id, table_id FROM reservation_tables
		WHERE reservation_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY reservation_id, table_id`, ids...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var rid, tid uint64
		if err := trows.Scan(&rid, &tid); err != nil {
			return nil, err
		}
		if idx, ok := index[rid]; ok {
			records[idx].TableIDs = append(records[idx].TableIDs, tid)
		}
	}
	return records, trows.Err()
}

// CreateWithLock runs the booking write path atomically: it takes the
// per-restaurant-date lock, loads the committed occupancy, hands it to
// decide and persists the reservation decide returns along with its seated
// tables.  Any error from decide aborts the transaction untouched.
func (r *ReservationRepo) CreateWithLock(ctx context.Context, restaurantID uint64, date string, timeout time.Duration,
	decide func(occupancy []OccupancyRecord) (*model.Reservation, error)) (*model.Reservation, error) {
	var created *model.Reservation
	err := r.WithDateLock(ctx, restaurantID, date, timeout, func(tx *sql.Tx) error {
		occupancy, err := r.ListOccupancyTx(ctx, tx, restaurantID, date)
		if err != nil {
			return err
		}
		res, err := decide(occupancy)
		if err != nil {
			return err
		}
		if err := r.CreateTx(ctx, tx, res); err != nil {
			return err
		}
		if err := r.AssignTablesTx(ctx, tx, res.ID, res.TableIDs); err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateTx inserts a new reservation within an existing transaction and
// populates the generated id and timestamps on the model.  The caller must
// commit or roll back.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
		(restaurant_id, date, start_time, duration_minutes, party_size, status,
		 guest_name, guest_phone, guest_email, notes, manage_token,
		 deposit_required, deposit_cents, deposit_currency, deposit_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.RestaurantID, res.Date, res.StartTime, res.DurationMinutes, res.PartySize, res.Status,
		res.GuestName, res.GuestPhone, res.GuestEmail, res.Notes, res.ManageToken,
		res.DepositRequired, res.DepositCents, res.DepositCurrency, res.DepositStatus,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM reservations WHERE id = ?`, res.ID,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// AssignTablesTx inserts the reservation_tables rows for a seating in one
// statement.  Passing no tables (manual-seating restaurants) is a no-op.
func (r *ReservationRepo) AssignTablesTx(ctx context.Context, tx *sql.Tx, reservationID uint64, tableIDs []uint64) error {
	if len(tableIDs) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_tables (reservation_id, table_id) VALUES `
	args := make([]interface{}, 0, len(tableIDs)*2)
	for i, tid := range tableIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, reservationID, tid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const reservationColumns = `id, restaurant_id, DATE_FORMAT(date, '%Y-%m-%d'),
	TIME_FORMAT(start_time, '%H:%i'), duration_minutes, party_size, status,
	guest_name, guest_phone, guest_email, notes, manage_token,
	deposit_required, deposit_cents, deposit_currency, deposit_status,
	created_at, updated_at`

// GetByID fetches one reservation with its seated tables.  Returns
// ErrReservationNotFound when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadTables(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetByManageToken fetches a reservation by its guest manage token.  The
// token is the only credential a diner holds, so an unknown token is
// indistinguishable from a missing reservation.
func (r *ReservationRepo) GetByManageToken(ctx context.Context, token string) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE manage_token = ?`, token)
	res, err := scanReservation(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadTables(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListByDate returns every reservation of a restaurant for one date, all
// statuses included, ordered by start time.  Used by staff views.
func (r *ReservationRepo) ListByDate(ctx context.Context, restaurantID uint64, date string) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE restaurant_id = ? AND date = ?
		 ORDER BY start_time, id`, restaurantID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadTables(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateStatus moves a reservation between statuses with an optimistic
// guard on the expected current status.  Returns ErrConflict when the row
// moved concurrently (zero rows matched), so the state machine can never be
// bypassed by racing staff actions.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from, to string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *ReservationRepo) loadTables(ctx context.Context, res *model.Reservation) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT table_id FROM reservation_tables WHERE reservation_id = ? ORDER BY table_id`, res.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var tid uint64
		if err := rows.Scan(&tid); err != nil {
			return err
		}
		res.TableIDs = append(res.TableIDs, tid)
	}
	return rows.Err()
}

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	var email, notes sql.NullString
	err := row.Scan(
		&res.ID, &res.RestaurantID, &res.Date,
		&res.StartTime, &res.DurationMinutes, &res.PartySize, &res.Status,
		&res.GuestName, &res.GuestPhone, &email, &notes, &res.ManageToken,
		&res.DepositRequired, &res.DepositCents, &res.DepositCurrency, &res.DepositStatus,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	res.GuestEmail = email.String
	res.Notes = notes.String
	return &res, nil
}

func scanReservationRows(rows *sql.Rows) (*model.Reservation, error) {
	var res model.Reservation
	var email, notes sql.NullString
	err := rows.Scan(
		&res.ID, &res.RestaurantID, &res.Date,
		&res.StartTime, &res.DurationMinutes, &res.PartySize, &res.Status,
		&res.GuestName, &res.GuestPhone, &email, &notes, &res.ManageToken,
		&res.DepositRequired, &res.DepositCents, &res.DepositCurrency, &res.DepositStatus,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.GuestEmail = email.String
	res.Notes = notes.String
	return &res, nil
}

// NewManageToken returns the random hex token handed to the guest at
// creation time for later lookup and cancellation.
func NewManageToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
