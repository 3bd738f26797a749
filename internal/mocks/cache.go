package mocks

import (
	"context"

	"github.com/segyhp/loandesk/internal/auth"
	"github.com/segyhp/loandesk/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockCache satisfies both cache.LoanCache and cache.StatsCache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockCache) SetLoan(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockCache) InvalidateLoan(ctx context.Context, loanID string) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *MockCache) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

func (m *MockCache) SetStats(ctx context.Context, stats *domain.DashboardStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockCache) InvalidateStats(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, ac auth.Context) (string, error) {
	args := m.Called(ctx, ac)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, token string) (auth.Context, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Context), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
