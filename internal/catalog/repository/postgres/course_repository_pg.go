package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/platform/internal/catalog/domain"
)

const uniqueViolationCode = "23505"

type pgCourseRepository struct {
	db *pgxpool.Pool
}

// NewPgCourseRepository creates a CourseRepository backed by PostgreSQL.
func NewPgCourseRepository(db *pgxpool.Pool) domain.CourseRepository {
	return &pgCourseRepository{db: db}
}

const courseColumns = `id, title, slug, COALESCE(description, ''), category_id, COALESCE(cover_image, ''), price, tutor_id, is_published, is_deleted, created_at, updated_at`

func scanCourse(row pgx.Row) (*domain.Course, error) {
	c := &domain.Course{}
	err := row.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.CategoryID, &c.CoverImage,
		&c.Price, &c.TutorID, &c.IsPublished, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *pgCourseRepository) Create(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	query := `
		INSERT INTO courses (id, title, slug, description, category_id, cover_image, price, tutor_id, is_published, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		course.ID, course.Title, course.Slug, course.Description, course.CategoryID,
		course.CoverImage, course.Price, course.TutorID, course.IsPublished,
		course.IsDeleted, course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}
	return course, nil
}

func (r *pgCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1 AND is_deleted = FALSE`
	return scanCourse(r.db.QueryRow(ctx, query, id))
}

func (r *pgCourseRepository) GetBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1 AND is_deleted = FALSE`
	return scanCourse(r.db.QueryRow(ctx, query, slug))
}

func (r *pgCourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE is_deleted = FALSE ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

func (r *pgCourseRepository) ListSummaries(ctx context.Context) ([]domain.CourseSummary, error) {
	query := `
		SELECT id, title, slug, category_id, COALESCE(cover_image, ''), price, tutor_id
		FROM courses
		WHERE is_deleted = FALSE AND is_published = TRUE
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.CourseSummary
	for rows.Next() {
		var s domain.CourseSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Slug, &s.CategoryID, &s.CoverImage, &s.Price, &s.TutorID); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *pgCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	course.UpdatedAt = time.Now().UTC()
	// tutor_id is immutable after creation and deliberately absent here.
	query := `
		UPDATE courses
		SET title = $2, slug = $3, description = NULLIF($4, ''), category_id = $5,
		    cover_image = NULLIF($6, ''), price = $7, is_published = $8, updated_at = $9
		WHERE id = $1 AND is_deleted = FALSE
	`
	tag, err := r.db.Exec(ctx, query,
		course.ID, course.Title, course.Slug, course.Description, course.CategoryID,
		course.CoverImage, course.Price, course.IsPublished, course.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgCourseRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE courses SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgCourseRepository) CountByTutor(ctx context.Context, tutorID uuid.UUID) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM courses WHERE tutor_id = $1 AND is_deleted = FALSE`
	if err := r.db.QueryRow(ctx, query, tutorID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
