package model

import "time"

// Table describes a physical table in a restaurant's dining room.  A party
// fits a table when its size lies within [MinGuests, MaxGuests].  Tables
// flagged combinable may be merged with other combinable tables to seat a
// party exceeding any single table's capacity.  Tables are soft-deactivated
// once they carry reservation history.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant the table belongs to.
//  Name         – label used by the floor staff (e.g. "T12", "window-2").
//  MinGuests    – smallest party the table is set for.
//  MaxGuests    – largest party the table seats.
//  IsCombinable – the table may be merged with other combinable tables.
//  IsActive     – inactive tables never count towards capacity.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Table struct {
	ID           uint64    // tables.id
	RestaurantID uint64    // tables.restaurant_id
	Name         string    // tables.name
	MinGuests    int       // tables.min_guests
	MaxGuests    int       // tables.max_guests
	IsCombinable bool      // tables.is_combinable
	IsActive     bool      // tables.is_active
	CreatedAt    time.Time // tables.created_at
	UpdatedAt    time.Time // tables.updated_at
}

// Fits reports whether a party of size p can be seated at this table alone.
func (t Table) Fits(p int) bool {
	return p >= t.MinGuests && p <= t.MaxGuests
}
