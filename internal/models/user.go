package models

import "time"

// UserRole represents the available roles in the booking system.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleCoach  UserRole = "COACH"
	RoleClient UserRole = "CLIENT"
)

// User represents an application user stored in the users table.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      UserRole  `db:"role" json:"role"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
