package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a user may do. Transitions are student -> tutor via
// license assignment, or whatever an admin forces.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTutor   Role = "tutor"
	RoleStudent Role = "student"
)

// User represents an account in the marketplace. Balance is in whole
// credits and only changes through ledger operations.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"`
	Role           Role       `json:"role"`
	Balance        int64      `json:"balance"`
	IsActive       bool       `json:"is_active"`
	IsDeleted      bool       `json:"-"`
	LicenseID      *uuid.UUID `json:"license_id,omitempty"`
	AuthorName     string     `json:"author_name,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Identity is the resolved caller of a request. Zero value is anonymous.
// Admins logged in through the bootstrap credential pair carry a nil UserID.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// Anonymous reports whether the caller is unauthenticated.
func (i Identity) Anonymous() bool {
	return i.Role == ""
}

// IsAdmin reports whether the caller bypasses ownership and access checks.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
