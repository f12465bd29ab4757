package domain

import (
	"context"
	"errors"
)

// Settings is the system-wide configuration singleton. Exactly one row
// exists in the store; it is read through a process-wide cache that admin
// updates invalidate synchronously.
type Settings struct {
	AllowRegistration bool  `json:"allow_registration"`
	AllowLogin        bool  `json:"allow_login"`
	DefaultCredits    int64 `json:"default_credits"`
}

// Defaults mirror what a fresh install gets before any admin touches the
// panel.
func Defaults() Settings {
	return Settings{AllowRegistration: true, AllowLogin: true, DefaultCredits: 100}
}

var ErrNotFound = errors.New("settings not found")

// Repository persists the singleton.
type Repository interface {
	// Get returns the singleton row, or ErrNotFound if it was never created.
	Get(ctx context.Context) (*Settings, error)
	// Create inserts the singleton row.
	Create(ctx context.Context, s Settings) error
	// Update overwrites the singleton row.
	Update(ctx context.Context, s Settings) error
}

// Update carries a partial settings change; nil fields are left untouched.
type Update struct {
	AllowRegistration *bool
	AllowLogin        *bool
	DefaultCredits    *int64
}
