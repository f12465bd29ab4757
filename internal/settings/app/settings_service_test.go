package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/platform/internal/platform/logger"
	"github.com/skillforge/platform/internal/settings/domain"
)

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	args := m.Called(ctx)
	if res, ok := args.Get(0).(*domain.Settings); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingsRepository) Create(ctx context.Context, s domain.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSettingsRepository) Update(ctx context.Context, s domain.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func TestGet_FillsCacheOnMiss(t *testing.T) {
	repo := new(MockSettingsRepository)
	svc := NewService(repo, logger.Discard())
	stored := &domain.Settings{AllowRegistration: true, AllowLogin: true, DefaultCredits: 50}

	// Only the first call may hit the store.
	repo.On("Get", mock.Anything).Return(stored, nil).Once()

	for i := 0; i < 3; i++ {
		got, err := svc.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(50), got.DefaultCredits)
	}
	repo.AssertExpectations(t)
}

func TestGet_CreatesDefaultsWhenMissing(t *testing.T) {
	repo := new(MockSettingsRepository)
	svc := NewService(repo, logger.Discard())

	repo.On("Get", mock.Anything).Return(nil, domain.ErrNotFound).Once()
	repo.On("Create", mock.Anything, domain.Defaults()).Return(nil).Once()

	got, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), got)
	repo.AssertExpectations(t)
}

func TestUpdate_InvalidatesSynchronously(t *testing.T) {
	repo := new(MockSettingsRepository)
	svc := NewService(repo, logger.Discard())

	initial := &domain.Settings{AllowRegistration: true, AllowLogin: true, DefaultCredits: 100}
	repo.On("Get", mock.Anything).Return(initial, nil).Once()

	_, err := svc.Get(context.Background())
	require.NoError(t, err)

	off := false
	repo.On("Update", mock.Anything, mock.MatchedBy(func(s domain.Settings) bool {
		return !s.AllowRegistration && s.AllowLogin && s.DefaultCredits == 100
	})).Return(nil).Once()

	updated, err := svc.Update(context.Background(), domain.Update{AllowRegistration: &off})
	require.NoError(t, err)
	assert.False(t, updated.AllowRegistration)

	// The very next read must go back to the store, not the stale cache.
	fresh := &domain.Settings{AllowRegistration: false, AllowLogin: true, DefaultCredits: 100}
	repo.On("Get", mock.Anything).Return(fresh, nil).Once()

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, got.AllowRegistration)
	repo.AssertExpectations(t)
}

func TestUpdate_PartialLeavesOtherFields(t *testing.T) {
	repo := new(MockSettingsRepository)
	svc := NewService(repo, logger.Discard())

	initial := &domain.Settings{AllowRegistration: true, AllowLogin: true, DefaultCredits: 100}
	repo.On("Get", mock.Anything).Return(initial, nil)

	credits := int64(250)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(s domain.Settings) bool {
		return s.AllowRegistration && s.AllowLogin && s.DefaultCredits == 250
	})).Return(nil).Once()

	updated, err := svc.Update(context.Background(), domain.Update{DefaultCredits: &credits})

	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.DefaultCredits)
	repo.AssertExpectations(t)
}
