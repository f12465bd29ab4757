package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/skillforge/platform/internal/identity/domain"
	"github.com/skillforge/platform/internal/identity/repository"
	"github.com/skillforge/platform/internal/platform/database"
	"github.com/skillforge/platform/internal/platform/messagebroker"
	settingsDomain "github.com/skillforge/platform/internal/settings/domain"
)

// SubjectUserRegistered is published after a new account is created.
const SubjectUserRegistered = "user.registered"

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// inactive accounts alike; callers cannot tell them apart.
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrRegistrationDisabled = errors.New("registration is disabled")
	ErrLoginDisabled        = errors.New("login is disabled")
	ErrEmailTaken           = errors.New("email already registered")
)

// SettingsReader is the slice of the settings service the auth flow needs.
type SettingsReader interface {
	Get(ctx context.Context) (settingsDomain.Settings, error)
}

// AdminCredentials is the env-configured bootstrap admin pair. Login with
// key+password or email+password succeeds regardless of the login gate.
type AdminCredentials struct {
	Key      string
	Email    string
	Password string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// AsTutor requests the tutor role; anything else registers a student.
	AsTutor    bool
	AuthorName string
	Bio        string
}

// AuthResult bundles a fresh token with the authenticated user.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthService handles registration, login and token verification.
type AuthService struct {
	db       database.Querier
	userRepo repository.UserRepository
	settings SettingsReader
	tokens   *TokenManager
	admin    AdminCredentials
	broker   messagebroker.Publisher
	logger   *slog.Logger
}

func NewAuthService(
	db database.Querier,
	userRepo repository.UserRepository,
	settings SettingsReader,
	tokens *TokenManager,
	admin AdminCredentials,
	broker messagebroker.Publisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		db:       db,
		userRepo: userRepo,
		settings: settings,
		tokens:   tokens,
		admin:    admin,
		broker:   broker,
		logger:   logger.With("service", "auth"),
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plaintext password against a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a new account. The starting balance is a snapshot of the
// current default credits; later settings changes never touch it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.AllowRegistration {
		return nil, ErrRegistrationDisabled
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := domain.RoleStudent
	if in.AsTutor {
		role = domain.RoleTutor
	}

	user, err := s.userRepo.Create(ctx, s.db, &domain.User{
		Name:           in.Name,
		Email:          in.Email,
		HashedPassword: hashed,
		Role:           role,
		Balance:        settings.DefaultCredits,
		IsActive:       true,
		AuthorName:     in.AuthorName,
		Bio:            in.Bio,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	s.publish(ctx, SubjectUserRegistered, map[string]string{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
	})
	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates by email and password. The bootstrap admin pair
// bypasses the login gate; everyone else is rejected while logins are
// disabled.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if s.isAdminPair(email, password) {
		return s.adminResult()
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.AllowLogin {
		return nil, ErrLoginDisabled
	}

	user, err := s.userRepo.GetByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// AdminLogin authenticates the bootstrap admin with key+password or
// email+password. It works even while the login gate is closed.
func (s *AuthService) AdminLogin(ctx context.Context, keyOrEmail, password string) (*AuthResult, error) {
	if !s.isAdminPair(keyOrEmail, password) {
		return nil, ErrInvalidCredentials
	}
	s.logger.InfoContext(ctx, "Admin logged in")
	return s.adminResult()
}

// VerifyToken resolves a bearer token to an identity, failing closed.
func (s *AuthService) VerifyToken(token string) (domain.Identity, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) isAdminPair(keyOrEmail, password string) bool {
	if s.admin.Password == "" || password != s.admin.Password {
		return false
	}
	if s.admin.Key != "" && keyOrEmail == s.admin.Key {
		return true
	}
	return s.admin.Email != "" && keyOrEmail == s.admin.Email
}

func (s *AuthService) adminResult() (*AuthResult, error) {
	// The bootstrap admin has no user row; its identity carries uuid.Nil.
	token, err := s.tokens.Issue(domain.Identity{}.UserID, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: nil}, nil
}

func (s *AuthService) publish(ctx context.Context, subject string, payload map[string]string) {
	if s.broker == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal event payload", "subject", subject, "error", err)
		return
	}
	if err := s.broker.Publish(ctx, subject, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
