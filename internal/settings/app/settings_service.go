package app

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/skillforge/platform/internal/settings/domain"
)

// Service serves the settings singleton through a process-wide cache.
// Reads fill the cache on miss; every write invalidates it synchronously,
// so a stale read lasts at most until the next explicit invalidate.
// Multiple readers, single invalidator; the cell is an atomic pointer, no
// locking needed because invalidation only clears a reference.
type Service struct {
	repo   domain.Repository
	logger *slog.Logger
	cached atomic.Pointer[domain.Settings]
}

func NewService(repo domain.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With("service", "settings"),
	}
}

// Get returns the current settings, creating the singleton with defaults on
// first use.
func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	if cached := s.cached.Load(); cached != nil {
		return *cached, nil
	}

	stored, err := s.repo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		defaults := domain.Defaults()
		if err := s.repo.Create(ctx, defaults); err != nil {
			return domain.Settings{}, err
		}
		stored = &defaults
	} else if err != nil {
		return domain.Settings{}, err
	}

	s.cached.Store(stored)
	return *stored, nil
}

// Update applies a partial change and invalidates the cache in the same
// operation.
func (s *Service) Update(ctx context.Context, upd domain.Update) (domain.Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if upd.AllowRegistration != nil {
		current.AllowRegistration = *upd.AllowRegistration
	}
	if upd.AllowLogin != nil {
		current.AllowLogin = *upd.AllowLogin
	}
	if upd.DefaultCredits != nil {
		current.DefaultCredits = *upd.DefaultCredits
	}

	if err := s.repo.Update(ctx, current); err != nil {
		return domain.Settings{}, err
	}
	s.Invalidate()
	s.logger.InfoContext(ctx, "Settings updated",
		"allow_registration", current.AllowRegistration,
		"allow_login", current.AllowLogin,
		"default_credits", current.DefaultCredits)
	return current, nil
}

// Invalidate clears the cached settings; the next Get re-reads the store.
func (s *Service) Invalidate() {
	s.cached.Store(nil)
}
