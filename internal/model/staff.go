package model

import "time"

// Staff roles accepted by the dashboard API.  MANAGER can resolve
// callbacks and mutate reservation status; HOST has read access plus
// reservation status transitions.
const (
	RoleManager = "MANAGER"
	RoleHost    = "HOST"
)

// StaffUser is a dashboard account scoped to one restaurant.
type StaffUser struct {
	ID           uint64    // staff_users.id
	RestaurantID uint64    // staff_users.restaurant_id
	Email        string    // staff_users.email
	PasswordHash string    // staff_users.password_hash
	Role         string    // staff_users.role
	IsActive     bool      // staff_users.is_active
	CreatedAt    time.Time // staff_users.created_at
	UpdatedAt    time.Time // staff_users.updated_at
}
