package model

import "time"

// Staff roles.  Owners manage every restaurant they own; hosts handle the
// floor of a single restaurant.  Both may act on reservations.
const (
	RoleOwner = "OWNER"
	RoleHost  = "HOST"
)

// StaffUser is a restaurant employee who signs in to manage reservations.
// Diners never have accounts; staff accounts are provisioned by the admin
// application, this service only authenticates them.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant the account is scoped to.
//  Email        – login identifier, unique.
//  PasswordHash – bcrypt hash of the password.
//  Role         – RoleOwner or RoleHost.
//  CreatedAt    – creation timestamp.
type StaffUser struct {
	ID           uint64    // staff_users.id
	RestaurantID uint64    // staff_users.restaurant_id
	Email        string    // staff_users.email
	PasswordHash string    // staff_users.password_hash
	Role         string    // staff_users.role
	CreatedAt    time.Time // staff_users.created_at
}
