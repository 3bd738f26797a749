package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/segyhp/loandesk/internal/cache"
	"github.com/segyhp/loandesk/internal/config"
	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/internal/mocks"
	"github.com/segyhp/loandesk/internal/repository"
	customError "github.com/segyhp/loandesk/pkg/errors"
)

var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DefaultFrequency: "Monthly",
			RecentLoansLimit: 10,
		},
		Scheduler: config.SchedulerConfig{Timezone: "UTC"},
	}
}

type loanFixture struct {
	service   *LoanService
	loanRepo  *mocks.MockLoanRepository
	repayRepo *mocks.MockRepaymentRepository
	cache     *mocks.MockCache
	logs      *observer.ObservedLogs
}

func newLoanFixture(withCache bool) *loanFixture {
	f := &loanFixture{
		loanRepo:  &mocks.MockLoanRepository{},
		repayRepo: &mocks.MockRepaymentRepository{},
	}

	core, logs := observer.New(zap.InfoLevel)
	f.logs = logs

	if withCache {
		f.cache = &mocks.MockCache{}
		f.service = NewLoanService(f.loanRepo, f.repayRepo, f.cache, f.cache, testConfig(), zap.New(core))
	} else {
		f.service = NewLoanService(f.loanRepo, f.repayRepo, nil, nil, testConfig(), zap.New(core))
	}
	f.service.now = func() time.Time { return fixedNow }
	return f
}

func (f *loanFixture) assertExpectations(t *testing.T) {
	f.loanRepo.AssertExpectations(t)
	f.repayRepo.AssertExpectations(t)
	if f.cache != nil {
		f.cache.AssertExpectations(t)
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var be *customError.BusinessError
	require.True(t, errors.As(err, &be), "expected a business error, got %v", err)
	assert.Equal(t, code, be.Code)
}

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// activeLoan is 10000 at 10% over 12 monthly installments, filed 2024-01-10 with
// the first EMI on 2024-02-10, and paid installments recorded
func activeLoan(paid int) *domain.Loan {
	emi := d(2024, 2, 10)
	loan := &domain.Loan{
		ID:                "LAN-001",
		ApplicantName:     "Ravi Kumar",
		GuarantorName:     "Suresh Kumar",
		VehicleProduct:    "Tractor",
		VehicleNumber:     "MH12AB1234",
		Frequency:         domain.FrequencyMonthly,
		FileDate:          d(2024, 1, 10),
		EMIDate:           &emi,
		LoanAmount:        decimal.NewFromInt(10000),
		NoOfInstallments:  12,
		InterestRate:      decimal.NewFromInt(10),
		InterestAmount:    decimal.NewFromInt(1000),
		TotalAmount:       decimal.NewFromInt(11000),
		InstallmentAmount: decimal.NewFromInt(917),
		Status:            domain.LoanStatusActive,
	}
	for i := 0; i < paid; i++ {
		loan.Repayments = append(loan.Repayments, domain.Repayment{
			ID:          uuid.New(),
			LoanID:      loan.ID,
			PaymentDate: emi.AddDate(0, i, 0),
			Amount:      decimal.NewFromInt(917),
			Penalty:     decimal.Zero,
			Kind:        domain.RepaymentKindInstallment,
		})
	}
	return loan
}

// expectStored splits a loan the way the repositories return it
func (f *loanFixture) expectStored(loan *domain.Loan) {
	row := *loan
	row.Repayments = nil
	f.loanRepo.On("GetByID", mock.Anything, loan.ID).Return(&row, nil).Once()
	f.repayRepo.On("GetByLoanID", mock.Anything, loan.ID).Return(loan.Repayments, nil).Once()
}

func validCreateRequest() *domain.CreateLoanRequest {
	return &domain.CreateLoanRequest{
		ID:               " LAN-001 ",
		ApplicantName:    "Ravi Kumar",
		Mobile:           "9876543210",
		Aadhar:           "123412341234",
		GuarantorName:    "Suresh Kumar",
		GuarantorMobile:  "9876543211",
		GuarantorAadhar:  "432143214321",
		VehicleProduct:   "Tractor",
		VehicleNumber:    "MH12AB1234",
		FileDate:         "2024-01-10",
		EMIDate:          "2024-02-10",
		LoanAmount:       decimal.NewFromInt(10000),
		NoOfInstallments: 12,
		InterestRate:     decimal.NewFromInt(10),
	}
}

func TestCreateLoan_Success(t *testing.T) {
	f := newLoanFixture(false)

	f.loanRepo.On("GetByID", mock.Anything, "LAN-001").Return(nil, sql.ErrNoRows)
	f.loanRepo.On("Create", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
		return loan.ID == "LAN-001" &&
			loan.Frequency == domain.FrequencyMonthly &&
			loan.Status == domain.LoanStatusActive &&
			loan.EMIDate != nil && loan.EMIDate.Equal(d(2024, 2, 10))
	})).Return(nil)

	loan, err := f.service.CreateLoan(context.Background(), validCreateRequest())

	require.NoError(t, err)
	assert.True(t, loan.InterestAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, loan.TotalAmount.Equal(decimal.NewFromInt(11000)))
	assert.True(t, loan.InstallmentAmount.Equal(decimal.NewFromInt(917)))
	assert.True(t, loan.FileDate.Equal(d(2024, 1, 10)))
	assert.Nil(t, loan.VehiclePurchaseDate)
	assert.Equal(t, fixedNow, loan.CreatedAt)

	assert.Equal(t, 1, f.logs.FilterMessage("loan created").Len())
	f.assertExpectations(t)
}

func TestCreateLoan_InvalidatesStats(t *testing.T) {
	f := newLoanFixture(true)

	f.loanRepo.On("GetByID", mock.Anything, "LAN-001").Return(nil, sql.ErrNoRows)
	f.loanRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("InvalidateStats", mock.Anything).Return(nil)

	_, err := f.service.CreateLoan(context.Background(), validCreateRequest())

	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestCreateLoan_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.CreateLoanRequest)
		code   string
	}{
		{"zero amount", func(r *domain.CreateLoanRequest) { r.LoanAmount = decimal.Zero }, customError.ErrCodeInvalidLoanAmount},
		{"negative rate", func(r *domain.CreateLoanRequest) { r.InterestRate = decimal.NewFromInt(-1) }, customError.ErrCodeInvalidInput},
		{"negative installments", func(r *domain.CreateLoanRequest) { r.NoOfInstallments = -1 }, customError.ErrCodeInvalidInput},
		{"unknown frequency", func(r *domain.CreateLoanRequest) { r.Frequency = "Weekly" }, customError.ErrCodeInvalidInput},
		{"bad file date", func(r *domain.CreateLoanRequest) { r.FileDate = "10/01/2024" }, customError.ErrCodeInvalidInput},
		{"bad emi date", func(r *domain.CreateLoanRequest) { r.EMIDate = "2024-13-01" }, customError.ErrCodeInvalidInput},
		{"blank id", func(r *domain.CreateLoanRequest) { r.ID = "   " }, customError.ErrCodeInvalidInput},
		{"id shadowed by recent route", func(r *domain.CreateLoanRequest) { r.ID = " recent" }, customError.ErrCodeInvalidInput},
		{"id shadowed by search route", func(r *domain.CreateLoanRequest) { r.ID = "search" }, customError.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture(false)
			req := validCreateRequest()
			tt.mutate(req)

			_, err := f.service.CreateLoan(context.Background(), req)

			assertCode(t, err, tt.code)
			f.loanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateLoan_Duplicate(t *testing.T) {
	f := newLoanFixture(false)
	f.loanRepo.On("GetByID", mock.Anything, "LAN-001").Return(activeLoan(0), nil)

	_, err := f.service.CreateLoan(context.Background(), validCreateRequest())

	assertCode(t, err, customError.ErrCodeLoanAlreadyExists)
	f.loanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetLoan_FromCache(t *testing.T) {
	f := newLoanFixture(true)
	f.cache.On("GetLoan", mock.Anything, "LAN-001").Return(activeLoan(2), nil)

	detail, err := f.service.GetLoan(context.Background(), "LAN-001")

	require.NoError(t, err)
	s := detail.Summary
	assert.True(t, s.TotalPaid.Equal(decimal.NewFromInt(1834)))
	assert.True(t, s.Outstanding.Equal(decimal.NewFromInt(9166)))
	assert.Equal(t, 10, s.PendingInstallments)
	assert.Equal(t, "2024-04-10", s.NextDue.String())
	assert.Equal(t, -66, s.DueDays)
	assert.True(t, s.Arrears.Equal(decimal.NewFromInt(2751)))
	assert.True(t, s.SuggestedPenalty.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.AsOf.Equal(d(2024, 6, 15)))

	f.loanRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestGetLoan_CacheMissLoadsAndFills(t *testing.T) {
	f := newLoanFixture(true)
	loan := activeLoan(1)

	f.cache.On("GetLoan", mock.Anything, "LAN-001").Return(nil, cache.ErrMiss)
	f.expectStored(loan)
	f.cache.On("SetLoan", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.ID == "LAN-001" && len(l.Repayments) == 1
	})).Return(nil)

	detail, err := f.service.GetLoan(context.Background(), "LAN-001")

	require.NoError(t, err)
	assert.Len(t, detail.Loan.Repayments, 1)
	assert.Equal(t, "2024-03-10", detail.Summary.NextDue.String())
	f.assertExpectations(t)
}

func TestGetLoan_CacheFailureFallsBack(t *testing.T) {
	f := newLoanFixture(true)
	loan := activeLoan(0)

	f.cache.On("GetLoan", mock.Anything, "LAN-001").Return(nil, errors.New("connection refused"))
	f.expectStored(loan)
	f.cache.On("SetLoan", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	detail, err := f.service.GetLoan(context.Background(), "LAN-001")

	require.NoError(t, err)
	assert.Equal(t, "LAN-001", detail.Loan.ID)
	assert.Equal(t, 2, f.logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestGetLoan_NotFound(t *testing.T) {
	f := newLoanFixture(false)
	f.loanRepo.On("GetByID", mock.Anything, "LAN-404").Return(nil, sql.ErrNoRows)

	_, err := f.service.GetLoan(context.Background(), "LAN-404")

	assertCode(t, err, customError.ErrCodeLoanNotFound)
	assert.Equal(t, 404, customError.HTTPStatus(err))
}

func TestGetLoan_DatabaseError(t *testing.T) {
	f := newLoanFixture(false)
	f.loanRepo.On("GetByID", mock.Anything, "LAN-001").Return(nil, errors.New("boom"))

	_, err := f.service.GetLoan(context.Background(), "LAN-001")

	assertCode(t, err, customError.ErrCodeDatabaseError)
}

func TestListLoans_WithRepayments(t *testing.T) {
	f := newLoanFixture(false)
	a := activeLoan(0)
	b := activeLoan(0)
	b.ID = "LAN-002"

	f.loanRepo.On("List", mock.Anything).Return([]*domain.Loan{b, a}, nil)
	f.repayRepo.On("ListAll", mock.Anything).Return([]domain.Repayment{
		{LoanID: "LAN-001", Amount: decimal.NewFromInt(917)},
		{LoanID: "LAN-002", Amount: decimal.NewFromInt(500)},
		{LoanID: "LAN-001", Amount: decimal.NewFromInt(917)},
	}, nil)

	loans, err := f.service.ListLoans(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Len(t, loans[0].Repayments, 1)
	assert.Len(t, loans[1].Repayments, 2)
	f.assertExpectations(t)
}

func TestListLoans_WithoutRepayments(t *testing.T) {
	f := newLoanFixture(false)
	f.loanRepo.On("List", mock.Anything).Return([]*domain.Loan{activeLoan(0)}, nil)

	loans, err := f.service.ListLoans(context.Background(), false)

	require.NoError(t, err)
	assert.Len(t, loans, 1)
	f.repayRepo.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestRecentAndSearch(t *testing.T) {
	f := newLoanFixture(false)
	f.loanRepo.On("Recent", mock.Anything, 10).Return([]*domain.Loan{activeLoan(0)}, nil)
	f.loanRepo.On("Recent", mock.Anything, 3).Return([]*domain.Loan{}, nil)
	f.loanRepo.On("Search", mock.Anything, "ravi").Return([]*domain.Loan{activeLoan(0)}, nil)

	recent, err := f.service.RecentLoans(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	recent, err = f.service.RecentLoans(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, recent)

	found, err := f.service.SearchLoans(context.Background(), "  ravi ")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = f.service.SearchLoans(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	f.assertExpectations(t)
}

func TestSchedule(t *testing.T) {
	f := newLoanFixture(false)
	f.expectStored(activeLoan(3))

	resp, err := f.service.Schedule(context.Background(), "LAN-001")

	require.NoError(t, err)
	require.Len(t, resp.Schedule, 12)
	assert.True(t, resp.Schedule[0].DueDate.Equal(d(2024, 2, 10)))
	assert.True(t, resp.Schedule[11].DueDate.Equal(d(2025, 1, 10)))
	assert.True(t, resp.Schedule[2].Paid)
	assert.False(t, resp.Schedule[3].Paid)
}

func TestSchedule_NoEMIDate(t *testing.T) {
	f := newLoanFixture(false)
	loan := activeLoan(0)
	loan.EMIDate = nil
	f.expectStored(loan)

	resp, err := f.service.Schedule(context.Background(), "LAN-001")

	require.NoError(t, err)
	assert.NotNil(t, resp.Schedule)
	assert.Empty(t, resp.Schedule)
}

func TestRecordRepayment_Defaults(t *testing.T) {
	f := newLoanFixture(true)
	f.expectStored(activeLoan(2))
	f.repayRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Repayment) bool {
		return r.LoanID == "LAN-001" &&
			r.Amount.Equal(decimal.NewFromInt(917)) &&
			r.Penalty.Equal(decimal.NewFromInt(100)) &&
			r.PaymentDate.Equal(d(2024, 6, 15)) &&
			r.Kind == domain.RepaymentKindInstallment
	})).Return(nil)
	f.cache.On("InvalidateLoan", mock.Anything, "LAN-001").Return(nil)
	f.cache.On("InvalidateStats", mock.Anything).Return(nil)

	resp, err := f.service.RecordRepayment(context.Background(), &domain.RepaymentRequest{LoanID: "LAN-001", BookNumber: "B7"})

	require.NoError(t, err)
	assert.Equal(t, "B7", resp.Repayment.BookNumber)
	assert.True(t, resp.Summary.Outstanding.Equal(decimal.NewFromInt(8249)))
	assert.Equal(t, 9, resp.Summary.PendingInstallments)
	assert.Equal(t, "2024-05-10", resp.Summary.NextDue.String())
	f.assertExpectations(t)
}

func TestRecordRepayment_Explicit(t *testing.T) {
	f := newLoanFixture(false)
	amount := decimal.NewFromInt(500)
	penalty := decimal.Zero

	f.expectStored(activeLoan(0))
	f.repayRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Repayment) bool {
		return r.Amount.Equal(amount) && r.Penalty.IsZero() && r.PaymentDate.Equal(d(2024, 6, 1))
	})).Return(nil)

	resp, err := f.service.RecordRepayment(context.Background(), &domain.RepaymentRequest{
		LoanID:      "LAN-001",
		PaymentDate: "2024-06-01",
		Amount:      &amount,
		Penalty:     &penalty,
	})

	require.NoError(t, err)
	assert.True(t, resp.Summary.Outstanding.Equal(decimal.NewFromInt(10500)))
	f.assertExpectations(t)
}

func TestRecordRepayment_Rejected(t *testing.T) {
	zero := decimal.Zero
	negative := decimal.NewFromInt(-5)

	t.Run("closed loan", func(t *testing.T) {
		f := newLoanFixture(false)
		loan := activeLoan(0)
		loan.Status = domain.LoanStatusClosed
		f.expectStored(loan)

		_, err := f.service.RecordRepayment(context.Background(), &domain.RepaymentRequest{LoanID: "LAN-001"})
		assertCode(t, err, customError.ErrCodeLoanAlreadyClosed)
	})

	t.Run("zero amount", func(t *testing.T) {
		f := newLoanFixture(false)
		f.expectStored(activeLoan(0))

		_, err := f.service.RecordRepayment(context.Background(), &domain.RepaymentRequest{LoanID: "LAN-001", Amount: &zero})
		assertCode(t, err, customError.ErrCodeInvalidPaymentAmount)
	})

	t.Run("negative penalty", func(t *testing.T) {
		f := newLoanFixture(false)
		f.expectStored(activeLoan(0))

		_, err := f.service.RecordRepayment(context.Background(), &domain.RepaymentRequest{LoanID: "LAN-001", Penalty: &negative})
		assertCode(t, err, customError.ErrCodeInvalidInput)
	})

	t.Run("closed concurrently", func(t *testing.T) {
		f := newLoanFixture(false)
		f.expectStored(activeLoan(0))
		f.repayRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrLoanNotActive)

		_, err := f.service.RecordRepayment(context.Background(), &domain.RepaymentRequest{LoanID: "LAN-001"})
		assertCode(t, err, customError.ErrCodeLoanAlreadyClosed)
	})

	t.Run("unknown loan", func(t *testing.T) {
		f := newLoanFixture(false)
		f.loanRepo.On("GetByID", mock.Anything, "LAN-404").Return(nil, sql.ErrNoRows)

		_, err := f.service.RecordRepayment(context.Background(), &domain.RepaymentRequest{LoanID: "LAN-404"})
		assertCode(t, err, customError.ErrCodeLoanNotFound)
	})
}

func TestCloseLoan_Success(t *testing.T) {
	f := newLoanFixture(true)
	f.expectStored(activeLoan(2))
	f.loanRepo.On("Close", mock.Anything, "LAN-001", mock.MatchedBy(func(r *domain.Repayment) bool {
		return r.Kind == domain.RepaymentKindSettlement &&
			r.Amount.Equal(decimal.RequireFromString("8665.5")) &&
			r.Discount.Equal(decimal.NewFromInt(500))
	}), fixedNow).Return(nil)
	f.cache.On("InvalidateLoan", mock.Anything, "LAN-001").Return(nil)
	f.cache.On("InvalidateStats", mock.Anything).Return(nil)

	resp, err := f.service.CloseLoan(context.Background(), &domain.CloseLoanRequest{
		LoanID:         "LAN-001",
		AmountPaid:     decimal.RequireFromString("8665.5"),
		DiscountAmount: decimal.NewFromInt(500),
	})

	require.NoError(t, err)
	s := resp.Summary
	assert.False(t, s.Active)
	assert.True(t, s.Outstanding.IsZero())
	assert.Equal(t, 0, s.PendingInstallments)
	assert.Equal(t, domain.DueLabelNotApplicable, s.NextDue.String())
	assert.True(t, s.Arrears.IsZero())
	f.assertExpectations(t)
}

func TestCloseLoan_Rejected(t *testing.T) {
	t.Run("settlement mismatch", func(t *testing.T) {
		f := newLoanFixture(false)
		f.expectStored(activeLoan(2))

		_, err := f.service.CloseLoan(context.Background(), &domain.CloseLoanRequest{
			LoanID:     "LAN-001",
			AmountPaid: decimal.NewFromInt(5000),
		})
		assertCode(t, err, customError.ErrCodeSettlementMismatch)
		assert.Equal(t, 422, customError.HTTPStatus(err))
		f.loanRepo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("off by exactly one", func(t *testing.T) {
		f := newLoanFixture(false)
		f.expectStored(activeLoan(2))

		_, err := f.service.CloseLoan(context.Background(), &domain.CloseLoanRequest{
			LoanID:     "LAN-001",
			AmountPaid: decimal.NewFromInt(9165),
		})
		assertCode(t, err, customError.ErrCodeSettlementMismatch)
	})

	t.Run("already closed", func(t *testing.T) {
		f := newLoanFixture(false)
		loan := activeLoan(0)
		loan.Status = domain.LoanStatusClosed
		f.expectStored(loan)

		_, err := f.service.CloseLoan(context.Background(), &domain.CloseLoanRequest{LoanID: "LAN-001"})
		assertCode(t, err, customError.ErrCodeLoanAlreadyClosed)
	})

	t.Run("closed concurrently", func(t *testing.T) {
		f := newLoanFixture(false)
		f.expectStored(activeLoan(0))
		f.loanRepo.On("Close", mock.Anything, "LAN-001", mock.Anything, mock.Anything).Return(repository.ErrLoanNotActive)

		_, err := f.service.CloseLoan(context.Background(), &domain.CloseLoanRequest{
			LoanID:     "LAN-001",
			AmountPaid: decimal.NewFromInt(11000),
		})
		assertCode(t, err, customError.ErrCodeLoanAlreadyClosed)
	})
}
