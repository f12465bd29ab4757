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

type pgLessonRepository struct {
	db *pgxpool.Pool
}

// NewPgLessonRepository creates a LessonRepository backed by PostgreSQL.
func NewPgLessonRepository(db *pgxpool.Pool) domain.LessonRepository {
	return &pgLessonRepository{db: db}
}

const lessonColumns = `id, title, chapter_id, content_blocks, sort_order, created_at, updated_at`

func scanLesson(row pgx.Row) (*domain.Lesson, error) {
	l := &domain.Lesson{}
	err := row.Scan(&l.ID, &l.Title, &l.ChapterID, &l.ContentBlocks, &l.Order, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *pgLessonRepository) Create(ctx context.Context, lesson *domain.Lesson) (*domain.Lesson, error) {
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	if len(lesson.ContentBlocks) == 0 {
		lesson.ContentBlocks = []byte("[]")
	}
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	query := `
		INSERT INTO lessons (id, title, chapter_id, content_blocks, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		lesson.ID, lesson.Title, lesson.ChapterID, lesson.ContentBlocks,
		lesson.Order, lesson.CreatedAt, lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

func (r *pgLessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	return scanLesson(r.db.QueryRow(ctx, query, id))
}

func (r *pgLessonRepository) ListByChapter(ctx context.Context, chapterID uuid.UUID) ([]domain.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE chapter_id = $1 ORDER BY sort_order, created_at`
	rows, err := r.db.Query(ctx, query, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []domain.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, *l)
	}
	return lessons, rows.Err()
}

func (r *pgLessonRepository) Update(ctx context.Context, lesson *domain.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE lessons SET title = $2, content_blocks = $3, sort_order = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, lesson.ID, lesson.Title, lesson.ContentBlocks, lesson.Order, lesson.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgLessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgLessonRepository) CountByTutor(ctx context.Context, tutorID uuid.UUID) (int, error) {
	var n int
	query := `
		SELECT COUNT(*)
		FROM lessons l
		JOIN chapters ch ON ch.id = l.chapter_id
		JOIN courses c ON c.id = ch.course_id
		WHERE c.tutor_id = $1 AND c.is_deleted = FALSE
	`
	if err := r.db.QueryRow(ctx, query, tutorID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
