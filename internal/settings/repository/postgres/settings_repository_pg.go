package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/platform/internal/settings/domain"
)

type pgSettingsRepository struct {
	db *pgxpool.Pool
}

// NewPgSettingsRepository creates a settings Repository backed by PostgreSQL.
func NewPgSettingsRepository(db *pgxpool.Pool) domain.Repository {
	return &pgSettingsRepository{db: db}
}

func (r *pgSettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	s := &domain.Settings{}
	query := `SELECT allow_registration, allow_login, default_credits FROM settings WHERE id = 1`
	err := r.db.QueryRow(ctx, query).Scan(&s.AllowRegistration, &s.AllowLogin, &s.DefaultCredits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *pgSettingsRepository) Create(ctx context.Context, s domain.Settings) error {
	query := `
		INSERT INTO settings (id, allow_registration, allow_login, default_credits)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, s.AllowRegistration, s.AllowLogin, s.DefaultCredits)
	return err
}

func (r *pgSettingsRepository) Update(ctx context.Context, s domain.Settings) error {
	query := `UPDATE settings SET allow_registration = $1, allow_login = $2, default_credits = $3 WHERE id = 1`
	tag, err := r.db.Exec(ctx, query, s.AllowRegistration, s.AllowLogin, s.DefaultCredits)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
