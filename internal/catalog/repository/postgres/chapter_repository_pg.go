package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/platform/internal/catalog/domain"
)

type pgChapterRepository struct {
	db *pgxpool.Pool
}

// NewPgChapterRepository creates a ChapterRepository backed by PostgreSQL.
func NewPgChapterRepository(db *pgxpool.Pool) domain.ChapterRepository {
	return &pgChapterRepository{db: db}
}

const chapterColumns = `id, title, COALESCE(description, ''), course_id, sort_order, created_at, updated_at`

func scanChapter(row pgx.Row) (*domain.Chapter, error) {
	c := &domain.Chapter{}
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.CourseID, &c.Order, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *pgChapterRepository) Create(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error) {
	if chapter.ID == uuid.Nil {
		chapter.ID = uuid.New()
	}
	now := time.Now().UTC()
	chapter.CreatedAt = now
	chapter.UpdatedAt = now

	query := `
		INSERT INTO chapters (id, title, description, course_id, sort_order, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		chapter.ID, chapter.Title, chapter.Description, chapter.CourseID,
		chapter.Order, chapter.CreatedAt, chapter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

func (r *pgChapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE id = $1`
	return scanChapter(r.db.QueryRow(ctx, query, id))
}

func (r *pgChapterRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]domain.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE course_id = $1 ORDER BY sort_order, created_at`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []domain.Chapter
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, *c)
	}
	return chapters, rows.Err()
}

func (r *pgChapterRepository) Update(ctx context.Context, chapter *domain.Chapter) error {
	chapter.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE chapters SET title = $2, description = NULLIF($3, ''), sort_order = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, chapter.ID, chapter.Title, chapter.Description, chapter.Order, chapter.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgChapterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgChapterRepository) CountByTutor(ctx context.Context, tutorID uuid.UUID) (int, error) {
	var n int
	query := `
		SELECT COUNT(*)
		FROM chapters ch
		JOIN courses c ON c.id = ch.course_id
		WHERE c.tutor_id = $1 AND c.is_deleted = FALSE
	`
	if err := r.db.QueryRow(ctx, query, tutorID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
