package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/platform/internal/catalog/domain"
)

type pgLicenseRepository struct {
	db *pgxpool.Pool
}

// NewPgLicenseRepository creates a LicenseRepository backed by PostgreSQL.
func NewPgLicenseRepository(db *pgxpool.Pool) domain.LicenseRepository {
	return &pgLicenseRepository{db: db}
}

const licenseColumns = `id, name, slug, price, course_limit, chapter_limit, lesson_limit`

func scanLicense(row pgx.Row) (*domain.License, error) {
	l := &domain.License{}
	err := row.Scan(&l.ID, &l.Name, &l.Slug, &l.Price, &l.CourseLimit, &l.ChapterLimit, &l.LessonLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *pgLicenseRepository) GetBySlug(ctx context.Context, slug string) (*domain.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE slug = $1`
	return scanLicense(r.db.QueryRow(ctx, query, slug))
}

func (r *pgLicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE id = $1`
	return scanLicense(r.db.QueryRow(ctx, query, id))
}

func (r *pgLicenseRepository) List(ctx context.Context) ([]domain.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses ORDER BY price`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []domain.License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, *l)
	}
	return licenses, rows.Err()
}

func (r *pgLicenseRepository) Create(ctx context.Context, license *domain.License) (*domain.License, error) {
	if license.ID == uuid.Nil {
		license.ID = uuid.New()
	}
	query := `
		INSERT INTO licenses (id, name, slug, price, course_limit, chapter_limit, lesson_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		license.ID, license.Name, license.Slug, license.Price,
		license.CourseLimit, license.ChapterLimit, license.LessonLimit)
	if err != nil {
		return nil, err
	}
	return license, nil
}

func (r *pgLicenseRepository) Update(ctx context.Context, license *domain.License) error {
	query := `
		UPDATE licenses SET name = $2, price = $3, course_limit = $4, chapter_limit = $5, lesson_limit = $6
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		license.ID, license.Name, license.Price,
		license.CourseLimit, license.ChapterLimit, license.LessonLimit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgLicenseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM licenses`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
