package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	catalogDomain "github.com/skillforge/platform/internal/catalog/domain"
	identityDomain "github.com/skillforge/platform/internal/identity/domain"
	ledgerRepo "github.com/skillforge/platform/internal/ledger/repository"
	"github.com/skillforge/platform/internal/platform/database"
)

// Level is how much access a caller has to a piece of content. The levels
// are ordered by strength; anything above None grants viewing.
type Level string

const (
	LevelAdmin    Level = "admin"
	LevelOwner    Level = "owner"
	LevelEnrolled Level = "enrolled"
	LevelNone     Level = "none"
)

// Decision is the outcome of an access evaluation. ChapterAccess fills
// CourseID; LessonAccess fills both CourseID and ChapterID.
type Decision struct {
	Level     Level
	CourseID  *uuid.UUID
	ChapterID *uuid.UUID
}

// HasAccess reports whether the caller may view the content.
func (d Decision) HasAccess() bool {
	return d.Level != LevelNone
}

// IsOwner reports whether the caller may modify the content. Admins count
// as owners everywhere.
func (d Decision) IsOwner() bool {
	return d.Level == LevelAdmin || d.Level == LevelOwner
}

// Evaluator answers access questions about courses, chapters and lessons.
// It is read-only and fails closed: any entity it cannot resolve yields
// LevelNone rather than an error. Storage failures are the only errors it
// returns.
type Evaluator struct {
	db          database.Querier
	courseRepo  catalogDomain.CourseRepository
	chapterRepo catalogDomain.ChapterRepository
	lessonRepo  catalogDomain.LessonRepository
	enrollments ledgerRepo.EnrollmentRepository
	logger      *slog.Logger
}

func NewEvaluator(
	db database.Querier,
	courseRepo catalogDomain.CourseRepository,
	chapterRepo catalogDomain.ChapterRepository,
	lessonRepo catalogDomain.LessonRepository,
	enrollments ledgerRepo.EnrollmentRepository,
	logger *slog.Logger,
) *Evaluator {
	return &Evaluator{
		db:          db,
		courseRepo:  courseRepo,
		chapterRepo: chapterRepo,
		lessonRepo:  lessonRepo,
		enrollments: enrollments,
		logger:      logger.With("service", "access"),
	}
}

// CourseAccess resolves the caller's level on a course. Admins are granted
// without loading the course; for everyone else a missing or deleted course
// is LevelNone.
func (e *Evaluator) CourseAccess(ctx context.Context, caller identityDomain.Identity, courseID uuid.UUID) (Decision, error) {
	if caller.Anonymous() {
		return Decision{Level: LevelNone}, nil
	}
	if caller.IsAdmin() {
		return Decision{Level: LevelAdmin}, nil
	}

	course, err := e.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, catalogDomain.ErrNotFound) {
			return Decision{Level: LevelNone}, nil
		}
		return Decision{Level: LevelNone}, fmt.Errorf("failed to load course: %w", err)
	}

	// Ownership wins before any enrollment lookup.
	if course.TutorID == caller.UserID {
		return Decision{Level: LevelOwner}, nil
	}

	enrolled, err := e.enrollments.Exists(ctx, e.db, caller.UserID, courseID)
	if err != nil {
		return Decision{Level: LevelNone}, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrolled {
		return Decision{Level: LevelEnrolled}, nil
	}
	return Decision{Level: LevelNone}, nil
}

// ChapterAccess resolves a chapter to its course and delegates. The chapter
// is resolved before any role shortcut: a missing chapter is LevelNone for
// everyone, admins included, and every resolved decision carries the
// CourseID.
func (e *Evaluator) ChapterAccess(ctx context.Context, caller identityDomain.Identity, chapterID uuid.UUID) (Decision, error) {
	if caller.Anonymous() {
		return Decision{Level: LevelNone}, nil
	}

	chapter, err := e.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		if errors.Is(err, catalogDomain.ErrNotFound) {
			return Decision{Level: LevelNone}, nil
		}
		return Decision{Level: LevelNone}, fmt.Errorf("failed to load chapter: %w", err)
	}

	decision, err := e.CourseAccess(ctx, caller, chapter.CourseID)
	if err != nil {
		return Decision{Level: LevelNone}, err
	}
	decision.CourseID = &chapter.CourseID
	return decision, nil
}

// LessonAccess resolves a lesson through its chapter to its course. Like
// ChapterAccess it resolves before any role shortcut, so a broken link in
// the chain denies admins too.
func (e *Evaluator) LessonAccess(ctx context.Context, caller identityDomain.Identity, lessonID uuid.UUID) (Decision, error) {
	if caller.Anonymous() {
		return Decision{Level: LevelNone}, nil
	}

	lesson, err := e.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, catalogDomain.ErrNotFound) {
			return Decision{Level: LevelNone}, nil
		}
		return Decision{Level: LevelNone}, fmt.Errorf("failed to load lesson: %w", err)
	}

	decision, err := e.ChapterAccess(ctx, caller, lesson.ChapterID)
	if err != nil {
		return Decision{Level: LevelNone}, err
	}
	decision.ChapterID = &lesson.ChapterID
	return decision, nil
}
