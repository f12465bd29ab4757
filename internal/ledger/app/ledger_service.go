package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	catalogDomain "github.com/skillforge/platform/internal/catalog/domain"
	identityDomain "github.com/skillforge/platform/internal/identity/domain"
	identityRepo "github.com/skillforge/platform/internal/identity/repository"
	"github.com/skillforge/platform/internal/ledger/domain"
	"github.com/skillforge/platform/internal/ledger/repository"
	"github.com/skillforge/platform/internal/platform/database"
	"github.com/skillforge/platform/internal/platform/messagebroker"
)

// SubjectCourseEnrolled is published after a successful purchase commits.
const SubjectCourseEnrolled = "course.enrolled"

// PurchaseResult is returned by PurchaseCourse.
type PurchaseResult struct {
	Enrollment *domain.Enrollment `json:"enrollment"`
	Balance    int64              `json:"balance"`
}

// AssignLicenseResult is returned by AssignLicense.
type AssignLicenseResult struct {
	Message string                 `json:"message"`
	License *catalogDomain.License `json:"license"`
	User    *identityDomain.User   `json:"user"`
}

// Service executes the money-moving operations: course purchases, license
// upgrades and admin top-ups. Every mutation runs inside one database
// transaction; the enrollment row is written first so a concurrent
// duplicate purchase loses on the unique (student, course) index and rolls
// back before any balance changes.
type Service struct {
	db             database.Querier
	txManager      repository.TxManager
	enrollmentRepo repository.EnrollmentRepository
	txRepo         repository.TransactionRepository
	userRepo       identityRepo.UserRepository
	courseRepo     catalogDomain.CourseRepository
	licenseRepo    catalogDomain.LicenseRepository
	broker         messagebroker.Publisher
	logger         *slog.Logger
}

func NewService(
	db database.Querier,
	txManager repository.TxManager,
	enrollmentRepo repository.EnrollmentRepository,
	txRepo repository.TransactionRepository,
	userRepo identityRepo.UserRepository,
	courseRepo catalogDomain.CourseRepository,
	licenseRepo catalogDomain.LicenseRepository,
	broker messagebroker.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:             db,
		txManager:      txManager,
		enrollmentRepo: enrollmentRepo,
		txRepo:         txRepo,
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		licenseRepo:    licenseRepo,
		broker:         broker,
		logger:         logger.With("service", "ledger"),
	}
}

// PurchaseCourse enrolls a student in a course, debiting the student and
// crediting the tutor. Preconditions are checked in order and the first
// failure wins; nothing is mutated until all of them pass.
func (s *Service) PurchaseCourse(ctx context.Context, studentID, courseID uuid.UUID) (*PurchaseResult, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, catalogDomain.ErrNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	student, err := s.userRepo.GetByID(ctx, s.db, studentID)
	if err != nil {
		if errors.Is(err, identityRepo.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, s.db, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrolled {
		return nil, domain.ErrAlreadyEnrolled
	}

	if student.Balance < course.Price {
		return nil, domain.ErrInsufficientFunds
	}

	var enrollment *domain.Enrollment
	newBalance := student.Balance

	err = s.txManager.WithinTx(ctx, func(q database.Querier) error {
		// Reserve the enrollment before touching balances. Two racing
		// purchases both reach here; the loser hits the unique index and
		// the whole transaction rolls back with no money moved.
		enrollment, err = s.enrollmentRepo.Create(ctx, q, &domain.Enrollment{
			StudentID: studentID,
			CourseID:  courseID,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateEnrollment) {
				return domain.ErrAlreadyEnrolled
			}
			return fmt.Errorf("failed to create enrollment: %w", err)
		}

		// Free courses move no money and record no transactions.
		if course.Price == 0 {
			return nil
		}

		newBalance, err = s.userRepo.DebitBalance(ctx, q, studentID, course.Price)
		if err != nil {
			if errors.Is(err, identityRepo.ErrInsufficientBalance) {
				return domain.ErrInsufficientFunds
			}
			return fmt.Errorf("failed to debit student: %w", err)
		}

		tutorID := course.TutorID
		if _, err := s.txRepo.Create(ctx, q, &domain.Transaction{
			UserID:        studentID,
			Type:          domain.TransactionTypeDebit,
			Category:      domain.CategoryCourse,
			Amount:        course.Price,
			RelatedID:     &course.ID,
			CounterpartID: &tutorID,
			Description:   fmt.Sprintf("Purchased course %s", course.Title),
		}); err != nil {
			return fmt.Errorf("failed to record debit: %w", err)
		}

		// A missing tutor record is skipped silently: the student stays
		// debited and only one transaction is written. Matches the observed
		// behavior of the original system; see DESIGN.md.
		_, err = s.userRepo.GetByID(ctx, q, course.TutorID)
		if err != nil {
			if errors.Is(err, identityRepo.ErrUserNotFound) {
				s.logger.WarnContext(ctx, "Tutor missing during purchase, credit skipped",
					"course_id", courseID, "tutor_id", course.TutorID)
				return nil
			}
			return fmt.Errorf("failed to load tutor: %w", err)
		}

		if _, err := s.userRepo.CreditBalance(ctx, q, course.TutorID, course.Price); err != nil {
			return fmt.Errorf("failed to credit tutor: %w", err)
		}
		if _, err := s.txRepo.Create(ctx, q, &domain.Transaction{
			UserID:        course.TutorID,
			Type:          domain.TransactionTypeCredit,
			Category:      domain.CategoryCourse,
			Amount:        course.Price,
			RelatedID:     &course.ID,
			CounterpartID: &studentID,
			Description:   fmt.Sprintf("Sold course %s", course.Title),
		}); err != nil {
			return fmt.Errorf("failed to record credit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Course purchased",
		"student_id", studentID, "course_id", courseID, "price", course.Price)
	s.publish(ctx, SubjectCourseEnrolled, map[string]string{
		"enrollment_id": enrollment.ID.String(),
		"student_id":    studentID.String(),
		"course_id":     courseID.String(),
	})

	return &PurchaseResult{Enrollment: enrollment, Balance: newBalance}, nil
}

// AssignLicense upgrades a user to the tutor tier named by slug, debiting
// the license price if it is not free. Free licenses move no money and
// record no transaction.
func (s *Service) AssignLicense(ctx context.Context, userID uuid.UUID, slug string) (*AssignLicenseResult, error) {
	license, err := s.licenseRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, catalogDomain.ErrNotFound) {
			return nil, domain.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("failed to load license: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, identityRepo.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if license.Price > 0 && user.Balance < license.Price {
		return nil, domain.ErrInsufficientFunds
	}

	err = s.txManager.WithinTx(ctx, func(q database.Querier) error {
		if license.Price > 0 {
			if _, err := s.userRepo.DebitBalance(ctx, q, userID, license.Price); err != nil {
				if errors.Is(err, identityRepo.ErrInsufficientBalance) {
					return domain.ErrInsufficientFunds
				}
				return fmt.Errorf("failed to debit user: %w", err)
			}
			if _, err := s.txRepo.Create(ctx, q, &domain.Transaction{
				UserID:      userID,
				Type:        domain.TransactionTypeDebit,
				Category:    domain.CategoryLicense,
				Amount:      license.Price,
				RelatedID:   &license.ID,
				Description: fmt.Sprintf("Purchased %s license", license.Slug),
			}); err != nil {
				return fmt.Errorf("failed to record debit: %w", err)
			}
		}
		return s.userRepo.SetLicense(ctx, q, userID, &license.ID, identityDomain.RoleTutor)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.userRepo.GetByID(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	s.logger.InfoContext(ctx, "License assigned",
		"user_id", userID, "license", license.Slug, "price", license.Price)
	return &AssignLicenseResult{Message: "upgraded", License: license, User: updated}, nil
}

// TopUp credits a user's balance and records a single topup entry. Admin
// only; the HTTP layer enforces that.
func (s *Service) TopUp(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("topup amount must be positive")
	}

	var newBalance int64
	err := s.txManager.WithinTx(ctx, func(q database.Querier) error {
		var err error
		newBalance, err = s.userRepo.CreditBalance(ctx, q, userID, amount)
		if err != nil {
			if errors.Is(err, identityRepo.ErrUserNotFound) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("failed to credit user: %w", err)
		}
		_, err = s.txRepo.Create(ctx, q, &domain.Transaction{
			UserID:      userID,
			Type:        domain.TransactionTypeCredit,
			Category:    domain.CategoryTopup,
			Amount:      amount,
			Description: "Balance top-up",
		})
		if err != nil {
			return fmt.Errorf("failed to record topup: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Balance topped up", "user_id", userID, "amount", amount)
	return newBalance, nil
}

// ListUserTransactions returns a user's ledger entries, newest first.
func (s *Service) ListUserTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	return s.txRepo.ListByUser(ctx, s.db, userID)
}

// ListAllTransactions returns every ledger entry, newest first. Admin only.
func (s *Service) ListAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.txRepo.List(ctx, s.db)
}

// ListStudentEnrollments returns a student's enrollments, newest first.
func (s *Service) ListStudentEnrollments(ctx context.Context, studentID uuid.UUID) ([]domain.Enrollment, error) {
	return s.enrollmentRepo.ListByStudent(ctx, s.db, studentID)
}

// ListEnrollments returns every enrollment. Admin only.
func (s *Service) ListEnrollments(ctx context.Context) ([]domain.Enrollment, error) {
	return s.enrollmentRepo.List(ctx, s.db)
}

// GetEnrollment returns a single enrollment by id.
func (s *Service) GetEnrollment(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	return s.enrollmentRepo.GetByID(ctx, s.db, id)
}

// CompleteLesson marks a lesson as done on the student's enrollment.
func (s *Service) CompleteLesson(ctx context.Context, enrollmentID, lessonID uuid.UUID, completed bool) (*domain.Enrollment, error) {
	e, err := s.enrollmentRepo.GetByID(ctx, s.db, enrollmentID)
	if err != nil {
		return nil, err
	}

	progress := e.Progress
	already := false
	for _, id := range progress.CompletedLessons {
		if id == lessonID {
			already = true
			break
		}
	}
	if !already {
		progress.CompletedLessons = append(progress.CompletedLessons, lessonID)
	}
	progress.Completed = completed

	if err := s.enrollmentRepo.UpdateProgress(ctx, s.db, e.ID, progress); err != nil {
		return nil, err
	}
	e.Progress = progress
	return e, nil
}

func (s *Service) publish(ctx context.Context, subject string, payload map[string]string) {
	if s.broker == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal event payload", "subject", subject, "error", err)
		return
	}
	if err := s.broker.Publish(ctx, subject, data); err != nil {
		// Event publishing is best effort; the purchase already committed.
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
