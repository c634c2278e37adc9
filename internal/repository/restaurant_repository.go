package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/restovia/table-reservation/internal/model"
)

// RestaurantRepo loads restaurants together with their booking policy.  The
// policy columns live on the restaurants row itself; every availability
// computation starts here.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo returns a RestaurantRepo bound to the given database.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span multiple repositories.
func (r *RestaurantRepo) DB() *sql.DB { return r.db }

const restaurantColumns = `id, name, timezone, booking_enabled,
	min_party_size, max_party_size, duration_minutes,
	min_lead_minutes, max_lead_days, manual_seating,
	max_combined_excess, enforce_combined_min,
	deposit_enabled, deposit_threshold_party, deposit_amount_type,
	deposit_amount_cents, deposit_currency,
	created_at, updated_at`

// GetByID fetches one restaurant and its policy.  Returns
// ErrRestaurantNotFound when no row exists.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id)
	return scanRestaurant(row)
}

func scanRestaurant(row *sql.Row) (*model.Restaurant, error) {
	var m model.Restaurant
	err := row.Scan(
		&m.ID, &m.Name, &m.Timezone, &m.BookingEnabled,
		&m.MinPartySize, &m.MaxPartySize, &m.DurationMinutes,
		&m.MinLeadMinutes, &m.MaxLeadDays, &m.ManualSeating,
		&m.MaxCombinedExcess, &m.EnforceCombinedMin,
		&m.Deposit.Enabled, &m.Deposit.ThresholdParty, &m.Deposit.AmountType,
		&m.Deposit.AmountCents, &m.Deposit.Currency,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
