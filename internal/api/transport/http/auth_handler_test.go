package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityApp "github.com/skillforge/platform/internal/identity/app"
	identityDomain "github.com/skillforge/platform/internal/identity/domain"
	identityRepo "github.com/skillforge/platform/internal/identity/repository"
	"github.com/skillforge/platform/internal/platform/database"
	"github.com/skillforge/platform/internal/platform/logger"
	settingsDomain "github.com/skillforge/platform/internal/settings/domain"
)

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

type stubSettings struct {
	settings settingsDomain.Settings
}

func (s *stubSettings) Get(_ context.Context) (settingsDomain.Settings, error) {
	return s.settings, nil
}

func newAuthTestRouter(users *MockUserRepository, settings identityApp.SettingsReader) chi.Router {
	tokens := identityApp.NewTokenManager("test-secret", time.Hour)
	svc := identityApp.NewAuthService(nil, users, settings, tokens, identityApp.AdminCredentials{}, nil, logger.Discard())

	r := chi.NewRouter()
	NewAuthHandler(svc, validator.New(), logger.Discard()).RegisterRoutes(r)
	return r
}

func TestHandleRegister(t *testing.T) {
	openSettings := &stubSettings{settings: settingsDomain.Settings{
		AllowRegistration: true, AllowLogin: true, DefaultCredits: 100,
	}}

	t.Run("success returns token and user", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("Create", mock.Anything, nil, mock.Anything).Return(&identityDomain.User{
			ID: uuid.New(), Name: "Ada", Email: "ada@example.com",
			Role: identityDomain.RoleStudent, Balance: 100,
		}, nil)
		router := newAuthTestRouter(users, openSettings)

		body, _ := json.Marshal(RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22!"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		var res struct {
			Token string `json:"token"`
			User  struct {
				Balance int64 `json:"balance"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, int64(100), res.User.Balance)
	})

	t.Run("short password fails validation", func(t *testing.T) {
		router := newAuthTestRouter(new(MockUserRepository), openSettings)

		body, _ := json.Marshal(RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "short"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("Create", mock.Anything, nil, mock.Anything).Return(nil, identityRepo.ErrDuplicateEmail)
		router := newAuthTestRouter(users, openSettings)

		body, _ := json.Marshal(RegisterRequest{Name: "Ada", Email: "dup@example.com", Password: "hunter22!"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body)))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("registration disabled is forbidden", func(t *testing.T) {
		closed := &stubSettings{settings: settingsDomain.Settings{AllowRegistration: false, AllowLogin: true}}
		router := newAuthTestRouter(new(MockUserRepository), closed)

		body, _ := json.Marshal(RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22!"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body)))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	openSettings := &stubSettings{settings: settingsDomain.Settings{AllowRegistration: true, AllowLogin: true}}

	hashed, err := identityApp.HashPassword("correct-horse")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", mock.Anything, nil, "ada@example.com").Return(&identityDomain.User{
			ID: uuid.New(), Email: "ada@example.com", HashedPassword: hashed,
			Role: identityDomain.RoleStudent, IsActive: true,
		}, nil)
		router := newAuthTestRouter(users, openSettings)

		body, _ := json.Marshal(LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", mock.Anything, nil, "ada@example.com").Return(&identityDomain.User{
			Email: "ada@example.com", HashedPassword: hashed, IsActive: true,
		}, nil)
		router := newAuthTestRouter(users, openSettings)

		body, _ := json.Marshal(LoginRequest{Email: "ada@example.com", Password: "wrong"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
