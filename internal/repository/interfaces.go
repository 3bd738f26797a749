package repository

import (
	"context"
	"errors"
	"time"

	"github.com/segyhp/loandesk/internal/domain"
)

// ErrLoanNotActive is returned when a write expects an active loan but the row is
// already closed.
var ErrLoanNotActive = errors.New("loan is not active")

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its LAN, without repayments
	GetByID(ctx context.Context, id string) (*domain.Loan, error)

	// List retrieves every loan, newest first
	List(ctx context.Context) ([]*domain.Loan, error)

	// ListActive retrieves the loans that are still open
	ListActive(ctx context.Context) ([]*domain.Loan, error)

	// Recent retrieves the most recently created loans
	Recent(ctx context.Context, limit int) ([]*domain.Loan, error)

	// Search matches LAN, applicant name or vehicle number, case-insensitively
	Search(ctx context.Context, query string) ([]*domain.Loan, error)

	// ListFiledBetween retrieves loans whose file date falls in [start, end]
	ListFiledBetween(ctx context.Context, start, end time.Time) ([]*domain.Loan, error)

	// Close records the settlement repayment and marks the loan closed atomically
	Close(ctx context.Context, loanID string, settlement *domain.Repayment, closedAt time.Time) error
}

// RepaymentRepository defines the interface for repayment data operations
type RepaymentRepository interface {
	// Create records a repayment against an active loan
	Create(ctx context.Context, repayment *domain.Repayment) error

	// GetByLoanID retrieves a loan's repayments in insertion order
	GetByLoanID(ctx context.Context, loanID string) ([]domain.Repayment, error)

	// ListAll retrieves every repayment in insertion order
	ListAll(ctx context.Context) ([]domain.Repayment, error)

	// ListBetween retrieves repayments whose payment date falls in [start, end]
	ListBetween(ctx context.Context, start, end time.Time) ([]domain.Repayment, error)
}

// AgentRepository defines the interface for executive login records
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
}
