package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/skillforge/platform/internal/catalog/domain"
	identityRepo "github.com/skillforge/platform/internal/identity/repository"
	"github.com/skillforge/platform/internal/platform/database"
)

// freeTierSlug is the license applied to tutors who never purchased one.
const freeTierSlug = "free"

// Service owns the authoring side of the marketplace: courses, chapters,
// lessons, categories and the license catalog. Creating content checks the
// tutor's license limits; a nil limit means unlimited.
type Service struct {
	db           database.Querier
	courseRepo   domain.CourseRepository
	chapterRepo  domain.ChapterRepository
	lessonRepo   domain.LessonRepository
	categoryRepo domain.CategoryRepository
	licenseRepo  domain.LicenseRepository
	userRepo     identityRepo.UserRepository
	logger       *slog.Logger
}

func NewService(
	db database.Querier,
	courseRepo domain.CourseRepository,
	chapterRepo domain.ChapterRepository,
	lessonRepo domain.LessonRepository,
	categoryRepo domain.CategoryRepository,
	licenseRepo domain.LicenseRepository,
	userRepo identityRepo.UserRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:           db,
		courseRepo:   courseRepo,
		chapterRepo:  chapterRepo,
		lessonRepo:   lessonRepo,
		categoryRepo: categoryRepo,
		licenseRepo:  licenseRepo,
		userRepo:     userRepo,
		logger:       logger.With("service", "catalog"),
	}
}

// tutorLicense resolves the license governing a tutor's authoring limits.
// Tutors without an assigned license fall back to the free tier; if even
// that is missing, authoring is unrestricted.
func (s *Service) tutorLicense(ctx context.Context, tutorID uuid.UUID) (*domain.License, error) {
	user, err := s.userRepo.GetByID(ctx, s.db, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tutor: %w", err)
	}

	if user.LicenseID != nil {
		license, err := s.licenseRepo.GetByID(ctx, *user.LicenseID)
		if err == nil {
			return license, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	license, err := s.licenseRepo.GetBySlug(ctx, freeTierSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return license, nil
}

func checkLimit(limit *int, current int) error {
	if limit != nil && current >= *limit {
		return domain.ErrLimitReached
	}
	return nil
}

// --- Courses ---

type CourseInput struct {
	Title       string
	Slug        string
	Description string
	CategoryID  *uuid.UUID
	CoverImage  string
	Price       int64
	IsPublished bool
}

func (s *Service) CreateCourse(ctx context.Context, tutorID uuid.UUID, in CourseInput) (*domain.Course, error) {
	license, err := s.tutorLicense(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if license != nil {
		count, err := s.courseRepo.CountByTutor(ctx, tutorID)
		if err != nil {
			return nil, err
		}
		if err := checkLimit(license.CourseLimit, count); err != nil {
			return nil, err
		}
	}

	course, err := s.courseRepo.Create(ctx, &domain.Course{
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		CoverImage:  in.CoverImage,
		Price:       in.Price,
		TutorID:     tutorID,
		IsPublished: in.IsPublished,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Course created", "course_id", course.ID, "tutor_id", tutorID)
	return course, nil
}

func (s *Service) GetCourse(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

func (s *Service) GetCourseBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	return s.courseRepo.GetBySlug(ctx, slug)
}

func (s *Service) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.courseRepo.List(ctx)
}

func (s *Service) ListCourseSummaries(ctx context.Context) ([]domain.CourseSummary, error) {
	return s.courseRepo.ListSummaries(ctx)
}

type CourseUpdate struct {
	Title       *string
	Slug        *string
	Description *string
	CategoryID  *uuid.UUID
	CoverImage  *string
	Price       *int64
	IsPublished *bool
}

// UpdateCourse applies a partial update. The tutor never changes, no matter
// what the caller sends.
func (s *Service) UpdateCourse(ctx context.Context, id uuid.UUID, upd CourseUpdate) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		course.Title = *upd.Title
	}
	if upd.Slug != nil {
		course.Slug = *upd.Slug
	}
	if upd.Description != nil {
		course.Description = *upd.Description
	}
	if upd.CategoryID != nil {
		course.CategoryID = upd.CategoryID
	}
	if upd.CoverImage != nil {
		course.CoverImage = *upd.CoverImage
	}
	if upd.Price != nil {
		course.Price = *upd.Price
	}
	if upd.IsPublished != nil {
		course.IsPublished = *upd.IsPublished
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *Service) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := s.courseRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Course deleted", "course_id", id)
	return nil
}

// --- Chapters ---

type ChapterInput struct {
	Title       string
	Description string
	CourseID    uuid.UUID
	Order       int
}

func (s *Service) CreateChapter(ctx context.Context, in ChapterInput) (*domain.Chapter, error) {
	course, err := s.courseRepo.GetByID(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	license, err := s.tutorLicense(ctx, course.TutorID)
	if err != nil {
		return nil, err
	}
	if license != nil {
		count, err := s.chapterRepo.CountByTutor(ctx, course.TutorID)
		if err != nil {
			return nil, err
		}
		if err := checkLimit(license.ChapterLimit, count); err != nil {
			return nil, err
		}
	}

	return s.chapterRepo.Create(ctx, &domain.Chapter{
		Title:       in.Title,
		Description: in.Description,
		CourseID:    in.CourseID,
		Order:       in.Order,
	})
}

func (s *Service) GetChapter(ctx context.Context, id uuid.UUID) (*domain.Chapter, error) {
	return s.chapterRepo.GetByID(ctx, id)
}

func (s *Service) ListChaptersByCourse(ctx context.Context, courseID uuid.UUID) ([]domain.Chapter, error) {
	return s.chapterRepo.ListByCourse(ctx, courseID)
}

type ChapterUpdate struct {
	Title       *string
	Description *string
	Order       *int
}

func (s *Service) UpdateChapter(ctx context.Context, id uuid.UUID, upd ChapterUpdate) (*domain.Chapter, error) {
	chapter, err := s.chapterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		chapter.Title = *upd.Title
	}
	if upd.Description != nil {
		chapter.Description = *upd.Description
	}
	if upd.Order != nil {
		chapter.Order = *upd.Order
	}
	if err := s.chapterRepo.Update(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

func (s *Service) DeleteChapter(ctx context.Context, id uuid.UUID) error {
	return s.chapterRepo.Delete(ctx, id)
}

// --- Lessons ---

type LessonInput struct {
	Title         string
	ChapterID     uuid.UUID
	ContentBlocks json.RawMessage
	Order         int
}

func (s *Service) CreateLesson(ctx context.Context, in LessonInput) (*domain.Lesson, error) {
	chapter, err := s.chapterRepo.GetByID(ctx, in.ChapterID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, chapter.CourseID)
	if err != nil {
		return nil, err
	}

	license, err := s.tutorLicense(ctx, course.TutorID)
	if err != nil {
		return nil, err
	}
	if license != nil {
		count, err := s.lessonRepo.CountByTutor(ctx, course.TutorID)
		if err != nil {
			return nil, err
		}
		if err := checkLimit(license.LessonLimit, count); err != nil {
			return nil, err
		}
	}

	return s.lessonRepo.Create(ctx, &domain.Lesson{
		Title:         in.Title,
		ChapterID:     in.ChapterID,
		ContentBlocks: in.ContentBlocks,
		Order:         in.Order,
	})
}

func (s *Service) GetLesson(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	return s.lessonRepo.GetByID(ctx, id)
}

func (s *Service) ListLessonsByChapter(ctx context.Context, chapterID uuid.UUID) ([]domain.Lesson, error) {
	return s.lessonRepo.ListByChapter(ctx, chapterID)
}

type LessonUpdate struct {
	Title         *string
	ContentBlocks json.RawMessage
	Order         *int
}

func (s *Service) UpdateLesson(ctx context.Context, id uuid.UUID, upd LessonUpdate) (*domain.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		lesson.Title = *upd.Title
	}
	if upd.ContentBlocks != nil {
		lesson.ContentBlocks = upd.ContentBlocks
	}
	if upd.Order != nil {
		lesson.Order = *upd.Order
	}
	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *Service) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	return s.lessonRepo.Delete(ctx, id)
}

// --- Categories ---

func (s *Service) CreateCategory(ctx context.Context, name, slug string) (*domain.Category, error) {
	return s.categoryRepo.Create(ctx, &domain.Category{Name: name, Slug: slug})
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, category *domain.Category) error {
	return s.categoryRepo.Update(ctx, category)
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

// --- Licenses ---

func (s *Service) ListLicenses(ctx context.Context) ([]domain.License, error) {
	return s.licenseRepo.List(ctx)
}

// SeedLicenses inserts the default tiers if the table is empty.
func (s *Service) SeedLicenses(ctx context.Context) error {
	count, err := s.licenseRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count licenses: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, l := range domain.DefaultLicenses() {
		license := l
		if _, err := s.licenseRepo.Create(ctx, &license); err != nil {
			return fmt.Errorf("failed to seed license %s: %w", license.Slug, err)
		}
	}
	s.logger.InfoContext(ctx, "Default licenses seeded")
	return nil
}
