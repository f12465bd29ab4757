package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skillforge/platform/internal/identity/domain"
	"github.com/skillforge/platform/internal/identity/repository"
	"github.com/skillforge/platform/internal/platform/database"
)

const uniqueViolationCode = "23505"

type pgUserRepository struct{}

// NewPgUserRepository creates a UserRepository backed by PostgreSQL.
func NewPgUserRepository() repository.UserRepository {
	return &pgUserRepository{}
}

const userColumns = `id, name, email, hashed_password, role, balance, is_active, is_deleted, license_id, COALESCE(author_name, ''), COALESCE(bio, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Role, &u.Balance,
		&u.IsActive, &u.IsDeleted, &u.LicenseID, &u.AuthorName, &u.Bio,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *pgUserRepository) Create(ctx context.Context, q database.Querier, user *domain.User) (*domain.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, name, email, hashed_password, role, balance, is_active, is_deleted, license_id, author_name, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), $12, $13)
	`
	_, err := q.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.HashedPassword, user.Role, user.Balance,
		user.IsActive, user.IsDeleted, user.LicenseID, user.AuthorName, user.Bio,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_deleted = FALSE`
	return scanUser(q.QueryRow(ctx, query, id))
}

func (r *pgUserRepository) GetByEmail(ctx context.Context, q database.Querier, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND is_deleted = FALSE`
	return scanUser(q.QueryRow(ctx, query, email))
}

func (r *pgUserRepository) List(ctx context.Context, q database.Querier) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_deleted = FALSE ORDER BY created_at DESC`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *pgUserRepository) Update(ctx context.Context, q database.Querier, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE users
		SET name = $2, email = $3, hashed_password = $4, role = $5, balance = $6,
		    is_active = $7, is_deleted = $8, license_id = $9,
		    author_name = NULLIF($10, ''), bio = NULLIF($11, ''), updated_at = $12
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.HashedPassword, user.Role, user.Balance,
		user.IsActive, user.IsDeleted, user.LicenseID, user.AuthorName, user.Bio,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func (r *pgUserRepository) SetLicense(ctx context.Context, q database.Querier, id uuid.UUID, licenseID *uuid.UUID, role domain.Role) error {
	query := `UPDATE users SET license_id = $2, role = $3, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`
	tag, err := q.Exec(ctx, query, id, licenseID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func (r *pgUserRepository) DebitBalance(ctx context.Context, q database.Querier, id uuid.UUID, amount int64) (int64, error) {
	query := `
		UPDATE users SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
		RETURNING balance
	`
	var newBalance int64
	err := q.QueryRow(ctx, query, id, amount).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the user is gone or the balance is too low; the caller
			// checks existence before debiting.
			return 0, repository.ErrInsufficientBalance
		}
		return 0, err
	}
	return newBalance, nil
}

func (r *pgUserRepository) CreditBalance(ctx context.Context, q database.Querier, id uuid.UUID, amount int64) (int64, error) {
	query := `
		UPDATE users SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING balance
	`
	var newBalance int64
	err := q.QueryRow(ctx, query, id, amount).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrUserNotFound
		}
		return 0, err
	}
	return newBalance, nil
}
