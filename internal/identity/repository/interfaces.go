package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/skillforge/platform/internal/identity/domain"
	"github.com/skillforge/platform/internal/platform/database"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already used")
	// ErrInsufficientBalance is returned by DebitBalance when the conditional
	// update matches no row because the balance is too low.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// UserRepository defines persistence for user accounts. Methods take a
// Querier so balance mutations can participate in a ledger transaction.
type UserRepository interface {
	Create(ctx context.Context, q database.Querier, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, q database.Querier, email string) (*domain.User, error)
	List(ctx context.Context, q database.Querier) ([]domain.User, error)
	Update(ctx context.Context, q database.Querier, user *domain.User) error

	// SetLicense atomically updates the role/license pair. A nil licenseID
	// with role student is the admin downgrade path.
	SetLicense(ctx context.Context, q database.Querier, id uuid.UUID, licenseID *uuid.UUID, role domain.Role) error

	// DebitBalance subtracts amount only if the resulting balance stays
	// non-negative; it returns the new balance or ErrInsufficientBalance.
	DebitBalance(ctx context.Context, q database.Querier, id uuid.UUID, amount int64) (int64, error)
	// CreditBalance adds amount and returns the new balance.
	CreditBalance(ctx context.Context, q database.Querier, id uuid.UUID, amount int64) (int64, error)
}
