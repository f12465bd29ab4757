package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/platform/internal/catalog/domain"
	identityDomain "github.com/skillforge/platform/internal/identity/domain"
	"github.com/skillforge/platform/internal/platform/database"
	"github.com/skillforge/platform/internal/platform/logger"
)

type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	args := m.Called(ctx, course)
	if res, ok := args.Get(0).(*domain.Course); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if res, ok := args.Get(0).(*domain.Course); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) GetBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	args := m.Called(ctx, slug)
	if res, ok := args.Get(0).(*domain.Course); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	args := m.Called(ctx)
	if res, ok := args.Get(0).([]domain.Course); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) ListSummaries(ctx context.Context) ([]domain.CourseSummary, error) {
	args := m.Called(ctx)
	if res, ok := args.Get(0).([]domain.CourseSummary); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepository) CountByTutor(ctx context.Context, tutorID uuid.UUID) (int, error) {
	args := m.Called(ctx, tutorID)
	return args.Int(0), args.Error(1)
}

type MockChapterRepository struct {
	mock.Mock
}

func (m *MockChapterRepository) Create(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error) {
	args := m.Called(ctx, chapter)
	if res, ok := args.Get(0).(*domain.Chapter); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chapter, error) {
	args := m.Called(ctx, id)
	if res, ok := args.Get(0).(*domain.Chapter); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChapterRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]domain.Chapter, error) {
	args := m.Called(ctx, courseID)
	if res, ok := args.Get(0).([]domain.Chapter); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChapterRepository) Update(ctx context.Context, chapter *domain.Chapter) error {
	args := m.Called(ctx, chapter)
	return args.Error(0)
}

func (m *MockChapterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChapterRepository) CountByTutor(ctx context.Context, tutorID uuid.UUID) (int, error) {
	args := m.Called(ctx, tutorID)
	return args.Int(0), args.Error(1)
}

type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) Create(ctx context.Context, lesson *domain.Lesson) (*domain.Lesson, error) {
	args := m.Called(ctx, lesson)
	if res, ok := args.Get(0).(*domain.Lesson); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	args := m.Called(ctx, id)
	if res, ok := args.Get(0).(*domain.Lesson); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLessonRepository) ListByChapter(ctx context.Context, chapterID uuid.UUID) ([]domain.Lesson, error) {
	args := m.Called(ctx, chapterID)
	if res, ok := args.Get(0).([]domain.Lesson); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLessonRepository) Update(ctx context.Context, lesson *domain.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockLessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLessonRepository) CountByTutor(ctx context.Context, tutorID uuid.UUID) (int, error) {
	args := m.Called(ctx, tutorID)
	return args.Int(0), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	args := m.Called(ctx, category)
	if res, ok := args.Get(0).(*domain.Category); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if res, ok := args.Get(0).(*domain.Category); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if res, ok := args.Get(0).([]domain.Category); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLicenseRepository struct {
	mock.Mock
}

func (m *MockLicenseRepository) GetBySlug(ctx context.Context, slug string) (*domain.License, error) {
	args := m.Called(ctx, slug)
	if res, ok := args.Get(0).(*domain.License); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.License, error) {
	args := m.Called(ctx, id)
	if res, ok := args.Get(0).(*domain.License); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseRepository) List(ctx context.Context) ([]domain.License, error) {
	args := m.Called(ctx)
	if res, ok := args.Get(0).([]domain.License); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseRepository) Create(ctx context.Context, license *domain.License) (*domain.License, error) {
	args := m.Called(ctx, license)
	if res, ok := args.Get(0).(*domain.License); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLicenseRepository) Update(ctx context.Context, license *domain.License) error {
	args := m.Called(ctx, license)
	return args.Error(0)
}

func (m *MockLicenseRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, q database.Querier, user *identityDomain.User) (*identityDomain.User, error) {
	args := m.Called(ctx, q, user)
	if res, ok := args.Get(0).(*identityDomain.User); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*identityDomain.User, error) {
	args := m.Called(ctx, q, id)
	if res, ok := args.Get(0).(*identityDomain.User); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, q database.Querier, email string) (*identityDomain.User, error) {
	args := m.Called(ctx, q, email)
	if res, ok := args.Get(0).(*identityDomain.User); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, q database.Querier) ([]identityDomain.User, error) {
	args := m.Called(ctx, q)
	if res, ok := args.Get(0).([]identityDomain.User); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, q database.Querier, user *identityDomain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetLicense(ctx context.Context, q database.Querier, id uuid.UUID, licenseID *uuid.UUID, role identityDomain.Role) error {
	args := m.Called(ctx, q, id, licenseID, role)
	return args.Error(0)
}

func (m *MockUserRepository) DebitBalance(ctx context.Context, q database.Querier, id uuid.UUID, amount int64) (int64, error) {
	args := m.Called(ctx, q, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CreditBalance(ctx context.Context, q database.Querier, id uuid.UUID, amount int64) (int64, error) {
	args := m.Called(ctx, q, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

type catalogFixture struct {
	svc        *Service
	courses    *MockCourseRepository
	chapters   *MockChapterRepository
	lessons    *MockLessonRepository
	categories *MockCategoryRepository
	licenses   *MockLicenseRepository
	users      *MockUserRepository
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		courses:    new(MockCourseRepository),
		chapters:   new(MockChapterRepository),
		lessons:    new(MockLessonRepository),
		categories: new(MockCategoryRepository),
		licenses:   new(MockLicenseRepository),
		users:      new(MockUserRepository),
	}
	f.svc = NewService(nil, f.courses, f.chapters, f.lessons, f.categories, f.licenses, f.users, logger.Discard())
	return f
}

func intPtr(n int) *int { return &n }

func TestCreateCourse_UnderLimit(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	tutorID := uuid.New()
	licenseID := uuid.New()

	f.users.On("GetByID", ctx, nil, tutorID).Return(&identityDomain.User{ID: tutorID, LicenseID: &licenseID}, nil)
	f.licenses.On("GetByID", ctx, licenseID).Return(&domain.License{ID: licenseID, CourseLimit: intPtr(5)}, nil)
	f.courses.On("CountByTutor", ctx, tutorID).Return(4, nil)
	f.courses.On("Create", ctx, mock.MatchedBy(func(c *domain.Course) bool {
		return c.TutorID == tutorID && c.Title == "Go Basics"
	})).Return(&domain.Course{ID: uuid.New(), Title: "Go Basics", TutorID: tutorID}, nil)

	course, err := f.svc.CreateCourse(ctx, tutorID, CourseInput{Title: "Go Basics", Slug: "go-basics"})

	require.NoError(t, err)
	assert.Equal(t, "Go Basics", course.Title)
}

func TestCreateCourse_LimitReached(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	tutorID := uuid.New()
	licenseID := uuid.New()

	f.users.On("GetByID", ctx, nil, tutorID).Return(&identityDomain.User{ID: tutorID, LicenseID: &licenseID}, nil)
	f.licenses.On("GetByID", ctx, licenseID).Return(&domain.License{ID: licenseID, CourseLimit: intPtr(1)}, nil)
	f.courses.On("CountByTutor", ctx, tutorID).Return(1, nil)

	_, err := f.svc.CreateCourse(ctx, tutorID, CourseInput{Title: "Second"})

	assert.ErrorIs(t, err, domain.ErrLimitReached)
	f.courses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCourse_NilLimitIsUnlimited(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	tutorID := uuid.New()
	licenseID := uuid.New()

	f.users.On("GetByID", ctx, nil, tutorID).Return(&identityDomain.User{ID: tutorID, LicenseID: &licenseID}, nil)
	f.licenses.On("GetByID", ctx, licenseID).Return(&domain.License{ID: licenseID}, nil)
	f.courses.On("CountByTutor", ctx, tutorID).Return(100000, nil)
	f.courses.On("Create", ctx, mock.Anything).Return(&domain.Course{ID: uuid.New()}, nil)

	_, err := f.svc.CreateCourse(ctx, tutorID, CourseInput{Title: "Another"})

	require.NoError(t, err)
}

func TestCreateCourse_NoLicenseFallsBackToFreeTier(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	tutorID := uuid.New()

	f.users.On("GetByID", ctx, nil, tutorID).Return(&identityDomain.User{ID: tutorID}, nil)
	f.licenses.On("GetBySlug", ctx, "free").Return(&domain.License{Slug: "free", CourseLimit: intPtr(1)}, nil)
	f.courses.On("CountByTutor", ctx, tutorID).Return(1, nil)

	_, err := f.svc.CreateCourse(ctx, tutorID, CourseInput{Title: "Over free limit"})

	assert.ErrorIs(t, err, domain.ErrLimitReached)
}

func TestCreateLesson_LimitResolvedThroughCourse(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	tutorID := uuid.New()
	licenseID := uuid.New()
	courseID := uuid.New()
	chapterID := uuid.New()

	f.chapters.On("GetByID", ctx, chapterID).Return(&domain.Chapter{ID: chapterID, CourseID: courseID}, nil)
	f.courses.On("GetByID", ctx, courseID).Return(&domain.Course{ID: courseID, TutorID: tutorID}, nil)
	f.users.On("GetByID", ctx, nil, tutorID).Return(&identityDomain.User{ID: tutorID, LicenseID: &licenseID}, nil)
	f.licenses.On("GetByID", ctx, licenseID).Return(&domain.License{ID: licenseID, LessonLimit: intPtr(20)}, nil)
	f.lessons.On("CountByTutor", ctx, tutorID).Return(20, nil)

	_, err := f.svc.CreateLesson(ctx, LessonInput{Title: "One too many", ChapterID: chapterID})

	assert.ErrorIs(t, err, domain.ErrLimitReached)
	f.lessons.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateCourse_PartialFields(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	courseID := uuid.New()
	tutorID := uuid.New()

	f.courses.On("GetByID", ctx, courseID).Return(&domain.Course{
		ID: courseID, Title: "Old", Price: 10, TutorID: tutorID,
	}, nil)
	f.courses.On("Update", ctx, mock.MatchedBy(func(c *domain.Course) bool {
		return c.Title == "New" && c.Price == 10 && c.TutorID == tutorID
	})).Return(nil)

	title := "New"
	course, err := f.svc.UpdateCourse(ctx, courseID, CourseUpdate{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "New", course.Title)
	assert.Equal(t, int64(10), course.Price)
}

func TestSeedLicenses(t *testing.T) {
	t.Run("empty table seeds defaults", func(t *testing.T) {
		f := newCatalogFixture()
		f.licenses.On("Count", mock.Anything).Return(0, nil)
		f.licenses.On("Create", mock.Anything, mock.Anything).Return(&domain.License{}, nil).Times(4)

		err := f.svc.SeedLicenses(context.Background())

		require.NoError(t, err)
		f.licenses.AssertExpectations(t)
	})

	t.Run("non-empty table untouched", func(t *testing.T) {
		f := newCatalogFixture()
		f.licenses.On("Count", mock.Anything).Return(4, nil)

		err := f.svc.SeedLicenses(context.Background())

		require.NoError(t, err)
		f.licenses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
