package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/voicetable/reservation-engine/internal/model"
	"github.com/voicetable/reservation-engine/internal/utils"
)

// StaffRepo persists dashboard accounts.  Every account is scoped to one
// restaurant; the JWT issued at login carries that scope and all staff
// endpoints enforce it.
type StaffRepo struct{ DB *sql.DB }

// NewStaffRepo constructs a StaffRepo with the given DB handle.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

// ErrEmailExists is returned when registering a duplicate staff email.
var ErrEmailExists = errors.New("email already exists")

// Create inserts a staff account and returns its ID.
func (r *StaffRepo) Create(ctx context.Context, restaurantID uint64, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO staff_users (restaurant_id, email, password_hash, role) VALUES (?,?,?,?)",
		restaurantID, email, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a staff account by normalized email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (model.StaffUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.StaffUser
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,restaurant_id,email,password_hash,role,is_active,created_at,updated_at FROM staff_users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.RestaurantID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a staff account by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (model.StaffUser, error) {
	var u model.StaffUser
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,restaurant_id,email,password_hash,role,is_active,created_at,updated_at FROM staff_users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.RestaurantID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
