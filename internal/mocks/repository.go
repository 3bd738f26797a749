package mocks

import (
	"context"
	"time"

	"github.com/segyhp/loandesk/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	return loans(args.Get(0)), args.Error(1)
}

func (m *MockLoanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	return loans(args.Get(0)), args.Error(1)
}

func (m *MockLoanRepository) Recent(ctx context.Context, limit int) ([]*domain.Loan, error) {
	args := m.Called(ctx, limit)
	return loans(args.Get(0)), args.Error(1)
}

func (m *MockLoanRepository) Search(ctx context.Context, query string) ([]*domain.Loan, error) {
	args := m.Called(ctx, query)
	return loans(args.Get(0)), args.Error(1)
}

func (m *MockLoanRepository) ListFiledBetween(ctx context.Context, start, end time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, start, end)
	return loans(args.Get(0)), args.Error(1)
}

func (m *MockLoanRepository) Close(ctx context.Context, loanID string, settlement *domain.Repayment, closedAt time.Time) error {
	args := m.Called(ctx, loanID, settlement, closedAt)
	return args.Error(0)
}

func loans(v interface{}) []*domain.Loan {
	if v == nil {
		return nil
	}
	return v.([]*domain.Loan)
}

type MockRepaymentRepository struct {
	mock.Mock
}

func (m *MockRepaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) GetByLoanID(ctx context.Context, loanID string) ([]domain.Repayment, error) {
	args := m.Called(ctx, loanID)
	return repayments(args.Get(0)), args.Error(1)
}

func (m *MockRepaymentRepository) ListAll(ctx context.Context) ([]domain.Repayment, error) {
	args := m.Called(ctx)
	return repayments(args.Get(0)), args.Error(1)
}

func (m *MockRepaymentRepository) ListBetween(ctx context.Context, start, end time.Time) ([]domain.Repayment, error) {
	args := m.Called(ctx, start, end)
	return repayments(args.Get(0)), args.Error(1)
}

func repayments(v interface{}) []domain.Repayment {
	if v == nil {
		return nil
	}
	return v.([]domain.Repayment)
}

type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	args := m.Called(ctx, agent)
	return args.Error(0)
}

func (m *MockAgentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}
