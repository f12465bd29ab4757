package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/skillforge/platform/internal/ledger/domain"
	"github.com/skillforge/platform/internal/platform/database"
)

// ErrDuplicateEnrollment surfaces the unique (student, course) constraint.
var ErrDuplicateEnrollment = errors.New("duplicate enrollment")

// TxManager runs fn inside a single database transaction; fn's Querier is
// bound to that transaction. The whole purchase sequence runs through this
// so a loser of the enrollment race rolls back before any money moves.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(q database.Querier) error) error
}

// EnrollmentRepository persists enrollments. Methods take a Querier so
// enrollment creation can participate in the purchase transaction.
type EnrollmentRepository interface {
	// Create inserts a new enrollment; the unique (student, course) index
	// turns a concurrent duplicate into ErrDuplicateEnrollment.
	Create(ctx context.Context, q database.Querier, e *domain.Enrollment) (*domain.Enrollment, error)
	Exists(ctx context.Context, q database.Querier, studentID, courseID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Enrollment, error)
	ListByStudent(ctx context.Context, q database.Querier, studentID uuid.UUID) ([]domain.Enrollment, error)
	List(ctx context.Context, q database.Querier) ([]domain.Enrollment, error)
	UpdateProgress(ctx context.Context, q database.Querier, id uuid.UUID, progress domain.Progress) error
}

// TransactionRepository persists ledger entries. Append-only: there is no
// update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, q database.Querier, t *domain.Transaction) (*domain.Transaction, error)
	ListByUser(ctx context.Context, q database.Querier, userID uuid.UUID) ([]domain.Transaction, error)
	List(ctx context.Context, q database.Querier) ([]domain.Transaction, error)
}
