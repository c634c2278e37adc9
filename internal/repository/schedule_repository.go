package repository

import (
	"context"
	"database/sql"

	"github.com/restovia/table-reservation/internal/model"
)

// ScheduleRepo reads the weekly opening-hour rows and one-off blocked
// windows that scope when a restaurant accepts bookings.  Both tables are
// maintained by restaurant staff through the admin application; the
// availability engine tolerates inconsistent rows, so this layer returns
// them as stored.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// OpeningHours returns every opening-hour row of a restaurant for one
// profile, all weekdays, ordered by day and opening time.  TIME columns
// scan as "HH:MM:SS" strings; the engine parses them leniently.
func (r *ScheduleRepo) OpeningHours(ctx context.Context, restaurantID uint64, profile string) ([]model.OpeningHour, error) {
	const q = `SELECT id, restaurant_id, profile, day_of_week, is_open,
	                  open_time, close_time, last_reservation
	           FROM opening_hours
	           WHERE restaurant_id = ? AND profile = ?
	           ORDER BY day_of_week, open_time`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, profile)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var hours []model.OpeningHour
	for rows.Next() {
		var h model.OpeningHour
		var last sql.NullString
		if err := rows.Scan(&h.ID, &h.RestaurantID, &h.Profile, &h.DayOfWeek, &h.IsOpen,
			&h.OpenTime, &h.CloseTime, &last); err != nil {
			return nil, err
		}
		if last.Valid {
			h.LastReservation = last.String
		}
		hours = append(hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hours, nil
}

// BlockedWindows returns the blocked windows of a restaurant for one
// profile and calendar date.  Multiple rows per date are permitted; the
// engine unions them.
func (r *ScheduleRepo) BlockedWindows(ctx context.Context, restaurantID uint64, profile, date string) ([]model.BlockedWindow, error) {
	const q = `SELECT id, restaurant_id, profile, DATE_FORMAT(date, '%Y-%m-%d'),
	                  all_day, time_from, time_to, created_at
	           FROM blocked_windows
	           WHERE restaurant_id = ? AND profile = ? AND date = ?
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, profile, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var blocked []model.BlockedWindow
	for rows.Next() {
		var b model.BlockedWindow
		var from, to sql.NullString
		if err := rows.Scan(&b.ID, &b.RestaurantID, &b.Profile, &b.Date, &b.AllDay,
			&from, &to, &b.CreatedAt); err != nil {
			return nil, err
		}
		if from.Valid {
			b.TimeFrom = from.String
		}
		if to.Valid {
			b.TimeTo = to.String
		}
		blocked = append(blocked, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blocked, nil
}
