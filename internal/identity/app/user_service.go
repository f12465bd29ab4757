package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	catalogDomain "github.com/skillforge/platform/internal/catalog/domain"
	"github.com/skillforge/platform/internal/identity/domain"
	"github.com/skillforge/platform/internal/identity/repository"
	"github.com/skillforge/platform/internal/platform/database"
)

// ErrLicenseNotFound is returned by AdminUpdate for an unknown license slug.
var ErrLicenseNotFound = errors.New("license not found")

// downgradeSlug is the pseudo-slug an admin sends to strip a tutor back to
// a plain student account.
const downgradeSlug = "student"

type ProfileUpdate struct {
	Name       *string
	AuthorName *string
	Bio        *string
}

// AdminUserUpdate is the admin-side partial update. LicenseSlug accepts any
// real license slug, or "student" to downgrade. Balance writes bypass the
// ledger on purpose and record no transaction.
type AdminUserUpdate struct {
	Balance     *int64
	IsActive    *bool
	LicenseSlug *string
	Password    *string
}

// UserService covers profile reads/updates and the admin user management
// surface.
type UserService struct {
	db          database.Querier
	userRepo    repository.UserRepository
	licenseRepo catalogDomain.LicenseRepository
	logger      *slog.Logger
}

func NewUserService(db database.Querier, userRepo repository.UserRepository, licenseRepo catalogDomain.LicenseRepository, logger *slog.Logger) *UserService {
	return &UserService{
		db:          db,
		userRepo:    userRepo,
		licenseRepo: licenseRepo,
		logger:      logger.With("service", "users"),
	}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, s.db, id)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx, s.db)
}

// UpdateProfile lets a user change their own display fields. Role, balance
// and license are untouchable here.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.AuthorName != nil {
		user.AuthorName = *upd.AuthorName
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if err := s.userRepo.Update(ctx, s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AdminUpdate applies an admin's partial update to any account.
func (s *UserService) AdminUpdate(ctx context.Context, id uuid.UUID, upd AdminUserUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if upd.Balance != nil {
		user.Balance = *upd.Balance
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	if upd.Password != nil {
		hashed, err := HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}
	if upd.LicenseSlug != nil {
		if err := s.applyLicenseSlug(ctx, user, *upd.LicenseSlug); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, s.db, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "User updated by admin", "user_id", id)
	return user, nil
}

func (s *UserService) applyLicenseSlug(ctx context.Context, user *domain.User, slug string) error {
	if slug == downgradeSlug {
		user.Role = domain.RoleStudent
		user.LicenseID = nil
		return nil
	}
	license, err := s.licenseRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, catalogDomain.ErrNotFound) {
			return ErrLicenseNotFound
		}
		return fmt.Errorf("failed to load license: %w", err)
	}
	user.Role = domain.RoleTutor
	user.LicenseID = &license.ID
	return nil
}

// Delete soft-deletes an account; the row stays for ledger history.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	user.IsDeleted = true
	user.IsActive = false
	if err := s.userRepo.Update(ctx, s.db, user); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User deleted", "user_id", id)
	return nil
}
