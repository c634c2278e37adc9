package repository

import (
	"context"
	"database/sql"

	"github.com/restovia/table-reservation/internal/model"
)

// TableRepo provides read access to a restaurant's table inventory.  Tables
// are maintained by the admin application; this service only consumes them
// for capacity computation.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// ListActive returns the active tables of a restaurant ordered by id.
// Soft-deactivated tables are excluded — they never count towards capacity.
func (r *TableRepo) ListActive(ctx context.Context, restaurantID uint64) ([]model.Table, error) {
	const q = `SELECT id, restaurant_id, name, min_guests, max_guests,
	                  is_combinable, is_active, created_at, updated_at
	           FROM tables
	           WHERE restaurant_id = ? AND is_active = 1
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Name, &t.MinGuests, &t.MaxGuests,
			&t.IsCombinable, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}
