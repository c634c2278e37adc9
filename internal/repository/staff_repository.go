package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/restovia/table-reservation/internal/model"
)

// StaffRepo reads restaurant staff accounts.  Accounts are provisioned by
// the admin application; this service only authenticates them, so there is
// no create path here.
type StaffRepo struct{ db *sql.DB }

// NewStaffRepo returns a StaffRepo bound to the given database.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

const staffColumns = `id, restaurant_id, email, password_hash, role, created_at`

// GetByEmail fetches a staff account by normalized email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (model.StaffUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.StaffUser
	err := r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff_users WHERE email = ? LIMIT 1`, email,
	).Scan(&u.ID, &u.RestaurantID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// GetByID fetches a staff account by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (model.StaffUser, error) {
	var u model.StaffUser
	err := r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff_users WHERE id = ? LIMIT 1`, id,
	).Scan(&u.ID, &u.RestaurantID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}
