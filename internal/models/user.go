package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleNGO     UserRole = "ngo"
	RoleAdmin   UserRole = "admin"
)

// ValidRole reports whether the given value is a known role.
func ValidRole(role string) bool {
	switch UserRole(role) {
	case RoleStudent, RoleTeacher, RoleNGO, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
// Points only grow through awards; Level is always derived from Points.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         UserRole   `db:"role" json:"role"`
	School       string     `db:"school" json:"school,omitempty"`
	Grade        string     `db:"grade" json:"grade,omitempty"`
	Points       int        `db:"points" json:"points"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Level derives the user's level from accumulated points.
func (u *User) Level() int {
	return u.Points/100 + 1
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
