package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skillforge/platform/internal/ledger/domain"
	"github.com/skillforge/platform/internal/ledger/repository"
	"github.com/skillforge/platform/internal/platform/database"
)

const uniqueViolationCode = "23505"

type pgEnrollmentRepository struct{}

// NewPgEnrollmentRepository creates an EnrollmentRepository backed by
// PostgreSQL.
func NewPgEnrollmentRepository() repository.EnrollmentRepository {
	return &pgEnrollmentRepository{}
}

const enrollmentColumns = `id, student_id, course_id, completed_lessons, completed, created_at, updated_at`

func scanEnrollment(row pgx.Row) (*domain.Enrollment, error) {
	e := &domain.Enrollment{}
	err := row.Scan(
		&e.ID, &e.StudentID, &e.CourseID,
		&e.Progress.CompletedLessons, &e.Progress.Completed,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *pgEnrollmentRepository) Create(ctx context.Context, q database.Querier, e *domain.Enrollment) (*domain.Enrollment, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Progress.CompletedLessons == nil {
		e.Progress.CompletedLessons = []uuid.UUID{}
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	query := `
		INSERT INTO enrollments (id, student_id, course_id, completed_lessons, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.Exec(ctx, query,
		e.ID, e.StudentID, e.CourseID,
		e.Progress.CompletedLessons, e.Progress.Completed,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, repository.ErrDuplicateEnrollment
		}
		return nil, err
	}
	return e, nil
}

func (r *pgEnrollmentRepository) Exists(ctx context.Context, q database.Querier, studentID, courseID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`
	if err := q.QueryRow(ctx, query, studentID, courseID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *pgEnrollmentRepository) GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	return scanEnrollment(q.QueryRow(ctx, query, id))
}

func (r *pgEnrollmentRepository) ListByStudent(ctx context.Context, q database.Querier, studentID uuid.UUID) ([]domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = $1 ORDER BY created_at DESC`
	return queryEnrollments(ctx, q, query, studentID)
}

func (r *pgEnrollmentRepository) List(ctx context.Context, q database.Querier) ([]domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments ORDER BY created_at DESC`
	return queryEnrollments(ctx, q, query)
}

func queryEnrollments(ctx context.Context, q database.Querier, query string, args ...any) ([]domain.Enrollment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []domain.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *e)
	}
	return enrollments, rows.Err()
}

func (r *pgEnrollmentRepository) UpdateProgress(ctx context.Context, q database.Querier, id uuid.UUID, progress domain.Progress) error {
	if progress.CompletedLessons == nil {
		progress.CompletedLessons = []uuid.UUID{}
	}
	query := `
		UPDATE enrollments SET completed_lessons = $2, completed = $3, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, id, progress.CompletedLessons, progress.Completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEnrollmentNotFound
	}
	return nil
}
