package domain

import (
	"context"

	"github.com/google/uuid"
)

// CourseRepository persists courses. Soft-deleted courses are invisible to
// every method here.
type CourseRepository interface {
	Create(ctx context.Context, course *Course) (*Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Course, error)
	GetBySlug(ctx context.Context, slug string) (*Course, error)
	List(ctx context.Context) ([]Course, error)
	ListSummaries(ctx context.Context) ([]CourseSummary, error)
	Update(ctx context.Context, course *Course) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	CountByTutor(ctx context.Context, tutorID uuid.UUID) (int, error)
}

type ChapterRepository interface {
	Create(ctx context.Context, chapter *Chapter) (*Chapter, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Chapter, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]Chapter, error)
	Update(ctx context.Context, chapter *Chapter) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByTutor(ctx context.Context, tutorID uuid.UUID) (int, error)
}

type LessonRepository interface {
	Create(ctx context.Context, lesson *Lesson) (*Lesson, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Lesson, error)
	ListByChapter(ctx context.Context, chapterID uuid.UUID) ([]Lesson, error)
	Update(ctx context.Context, lesson *Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByTutor(ctx context.Context, tutorID uuid.UUID) (int, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LicenseRepository interface {
	GetBySlug(ctx context.Context, slug string) (*License, error)
	GetByID(ctx context.Context, id uuid.UUID) (*License, error)
	// List returns licenses ordered by price ascending.
	List(ctx context.Context) ([]License, error)
	Create(ctx context.Context, license *License) (*License, error)
	Update(ctx context.Context, license *License) error
	Count(ctx context.Context) (int, error)
}
