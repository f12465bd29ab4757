package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	catalogDomain "github.com/skillforge/platform/internal/catalog/domain"
	"github.com/skillforge/platform/internal/identity/domain"
	"github.com/skillforge/platform/internal/platform/logger"
)

func newUserService(users *MockUserRepository, licenses *MockLicenseRepository) *UserService {
	return NewUserService(nil, users, licenses, logger.Discard())
}

func TestAdminUpdate_DowngradeToStudent(t *testing.T) {
	users := new(MockUserRepository)
	svc := newUserService(users, new(MockLicenseRepository))

	userID := uuid.New()
	licenseID := uuid.New()
	users.On("GetByID", mock.Anything, nil, userID).Return(&domain.User{
		ID: userID, Role: domain.RoleTutor, LicenseID: &licenseID, Balance: 40,
	}, nil)
	users.On("Update", mock.Anything, nil, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleStudent && u.LicenseID == nil
	})).Return(nil)

	slug := "student"
	updated, err := svc.AdminUpdate(context.Background(), userID, AdminUserUpdate{LicenseSlug: &slug})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, updated.Role)
	assert.Nil(t, updated.LicenseID)
	// Downgrade leaves the balance alone; no refund, no ledger entry.
	assert.Equal(t, int64(40), updated.Balance)
	users.AssertExpectations(t)
}

func TestAdminUpdate_AssignLicenseSlug(t *testing.T) {
	users := new(MockUserRepository)
	licenses := new(MockLicenseRepository)
	svc := newUserService(users, licenses)

	userID := uuid.New()
	license := &catalogDomain.License{ID: uuid.New(), Slug: "startup", Price: 50}
	users.On("GetByID", mock.Anything, nil, userID).Return(&domain.User{ID: userID, Role: domain.RoleStudent}, nil)
	licenses.On("GetBySlug", mock.Anything, "startup").Return(license, nil)
	users.On("Update", mock.Anything, nil, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleTutor && u.LicenseID != nil && *u.LicenseID == license.ID
	})).Return(nil)

	slug := "startup"
	updated, err := svc.AdminUpdate(context.Background(), userID, AdminUserUpdate{LicenseSlug: &slug})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleTutor, updated.Role)
}

func TestAdminUpdate_UnknownSlug(t *testing.T) {
	users := new(MockUserRepository)
	licenses := new(MockLicenseRepository)
	svc := newUserService(users, licenses)

	userID := uuid.New()
	users.On("GetByID", mock.Anything, nil, userID).Return(&domain.User{ID: userID}, nil)
	licenses.On("GetBySlug", mock.Anything, "platinum").Return(nil, catalogDomain.ErrNotFound)

	slug := "platinum"
	_, err := svc.AdminUpdate(context.Background(), userID, AdminUserUpdate{LicenseSlug: &slug})

	assert.ErrorIs(t, err, ErrLicenseNotFound)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminUpdate_PasswordReset(t *testing.T) {
	users := new(MockUserRepository)
	svc := newUserService(users, new(MockLicenseRepository))

	userID := uuid.New()
	users.On("GetByID", mock.Anything, nil, userID).Return(&domain.User{ID: userID, HashedPassword: "old"}, nil)

	var saved *domain.User
	users.On("Update", mock.Anything, nil, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(2).(*domain.User)
	}).Return(nil)

	pw := "new-password"
	_, err := svc.AdminUpdate(context.Background(), userID, AdminUserUpdate{Password: &pw})

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.NotEqual(t, "old", saved.HashedPassword)
	assert.True(t, CheckPasswordHash("new-password", saved.HashedPassword))
}

func TestDelete_SoftDeletes(t *testing.T) {
	users := new(MockUserRepository)
	svc := newUserService(users, new(MockLicenseRepository))

	userID := uuid.New()
	users.On("GetByID", mock.Anything, nil, userID).Return(&domain.User{ID: userID, IsActive: true}, nil)
	users.On("Update", mock.Anything, nil, mock.MatchedBy(func(u *domain.User) bool {
		return u.IsDeleted && !u.IsActive
	})).Return(nil)

	err := svc.Delete(context.Background(), userID)

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestUpdateProfile(t *testing.T) {
	users := new(MockUserRepository)
	svc := newUserService(users, new(MockLicenseRepository))

	userID := uuid.New()
	users.On("GetByID", mock.Anything, nil, userID).Return(&domain.User{
		ID: userID, Name: "Ada", Role: domain.RoleTutor, Balance: 70,
	}, nil)
	users.On("Update", mock.Anything, nil, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "Ada L." && u.Bio == "teaches Go" && u.Balance == 70
	})).Return(nil)

	name := "Ada L."
	bio := "teaches Go"
	updated, err := svc.UpdateProfile(context.Background(), userID, ProfileUpdate{Name: &name, Bio: &bio})

	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
}
