package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/segyhp/loandesk/internal/cache"
	"github.com/segyhp/loandesk/internal/config"
	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/internal/finance"
	"github.com/segyhp/loandesk/internal/repository"
	customError "github.com/segyhp/loandesk/pkg/errors"
	"github.com/segyhp/loandesk/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LoanService struct {
	LoanRepo      repository.LoanRepository
	RepaymentRepo repository.RepaymentRepository
	loanCache     cache.LoanCache
	statsCache    cache.StatsCache
	config        *config.Config
	logger        *zap.Logger
	now           func() time.Time
}

// NewLoanService wires the loan desk operations. Either cache may be nil, in which
// case every read goes to the repositories.
func NewLoanService(
	loanRepo repository.LoanRepository,
	repaymentRepo repository.RepaymentRepository,
	loanCache cache.LoanCache,
	statsCache cache.StatsCache,
	config *config.Config,
	logger *zap.Logger,
) *LoanService {
	return &LoanService{
		LoanRepo:      loanRepo,
		RepaymentRepo: repaymentRepo,
		loanCache:     loanCache,
		statsCache:    statsCache,
		config:        config,
		logger:        logger,
		now:           time.Now,
	}
}

// Today is the current calendar date in the business timezone
func (s *LoanService) Today() time.Time {
	return utils.DateOnly(s.now().In(s.config.Location()))
}

// reservedLoanIDs collide with fixed routes under /api/loans/
var reservedLoanIDs = map[string]bool{"recent": true, "search": true}

// CreateLoan validates the terms, derives interest, total and EMI, and stores the
// loan as active.
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	if !request.LoanAmount.IsPositive() {
		return nil, customError.WrapInvalidLoanAmount(request.LoanAmount)
	}
	if request.InterestRate.IsNegative() {
		return nil, customError.WrapInvalidInput("interest rate cannot be negative", nil)
	}
	if request.NoOfInstallments < 0 {
		return nil, customError.WrapInvalidInput("number of installments cannot be negative", nil)
	}

	frequency := request.Frequency
	if frequency == "" {
		frequency = domain.Frequency(s.config.Business.DefaultFrequency)
	}
	if !frequency.Valid() {
		return nil, customError.WrapInvalidInput("unknown frequency "+string(frequency), nil)
	}

	fileDate, err := utils.ParseDate(request.FileDate)
	if err != nil {
		return nil, customError.WrapInvalidInput("invalid file date", err)
	}
	emiDate, err := utils.ParseOptionalDate(request.EMIDate)
	if err != nil {
		return nil, customError.WrapInvalidInput("invalid EMI date", err)
	}
	purchaseDate, err := utils.ParseOptionalDate(request.VehiclePurchaseDate)
	if err != nil {
		return nil, customError.WrapInvalidInput("invalid vehicle purchase date", err)
	}

	loanID := strings.TrimSpace(request.ID)
	if loanID == "" {
		return nil, customError.WrapInvalidInput("loan id cannot be blank", nil)
	}
	if reservedLoanIDs[loanID] {
		return nil, customError.WrapInvalidInput("loan id "+loanID+" is reserved", nil)
	}
	existing, err := s.LoanRepo.GetByID(ctx, loanID)
	if err == nil && existing != nil {
		return nil, customError.WrapLoanAlreadyExists(loanID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	terms := finance.ComputeInterestSchedule(request.LoanAmount, request.NoOfInstallments, request.InterestRate)
	now := s.now().UTC()

	loan := &domain.Loan{
		ID:                   loanID,
		ApplicantName:        request.ApplicantName,
		Address:              request.Address,
		City:                 request.City,
		TownVillage:          request.TownVillage,
		Mobile:               request.Mobile,
		Aadhar:               request.Aadhar,
		GuarantorName:        request.GuarantorName,
		GuarantorAddress:     request.GuarantorAddress,
		GuarantorCity:        request.GuarantorCity,
		GuarantorTownVillage: request.GuarantorTownVillage,
		GuarantorMobile:      request.GuarantorMobile,
		GuarantorAadhar:      request.GuarantorAadhar,
		VehicleProduct:       request.VehicleProduct,
		Model:                request.Model,
		MakerCompany:         request.MakerCompany,
		EngineSerialNumber:   request.EngineSerialNumber,
		VehicleNumber:        request.VehicleNumber,
		VehiclePurchaseDate:  purchaseDate,
		Frequency:            frequency,
		FileDate:             fileDate,
		EMIDate:              emiDate,
		LoanAmount:           request.LoanAmount,
		NoOfInstallments:     request.NoOfInstallments,
		InterestRate:         request.InterestRate,
		InterestAmount:       terms.InterestAmount,
		TotalAmount:          terms.TotalAmount,
		InstallmentAmount:    terms.InstallmentAmount,
		Status:               domain.LoanStatusActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err = s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	s.invalidateStats(ctx)

	s.logger.Info("loan created",
		zap.String("loan_id", loan.ID),
		zap.String("loan_amount", loan.LoanAmount.String()),
		zap.String("total_amount", loan.TotalAmount.String()),
		zap.String("installment_amount", loan.InstallmentAmount.String()),
	)

	return loan, nil
}

// GetLoan returns the loan with its repayments and a summary as of today
func (s *LoanService) GetLoan(ctx context.Context, loanID string) (*domain.LoanDetailResponse, error) {
	loan, err := s.loadLoan(ctx, loanID, true)
	if err != nil {
		return nil, err
	}

	return &domain.LoanDetailResponse{
		Loan:    loan,
		Summary: finance.Summarize(loan, s.Today()),
	}, nil
}

// ListLoans returns every loan, newest first, optionally with repayments attached
func (s *LoanService) ListLoans(ctx context.Context, includeRepayments bool) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !includeRepayments {
		return loans, nil
	}

	if err := s.attachRepayments(ctx, loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// RecentLoans returns the latest loans. A non-positive limit uses the configured one.
func (s *LoanService) RecentLoans(ctx context.Context, limit int) ([]*domain.Loan, error) {
	if limit <= 0 {
		limit = s.config.Business.RecentLoansLimit
	}

	loans, err := s.LoanRepo.Recent(ctx, limit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// SearchLoans matches LAN, applicant name or vehicle number. A blank query
// matches nothing.
func (s *LoanService) SearchLoans(ctx context.Context, query string) ([]*domain.Loan, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.Loan{}, nil
	}

	loans, err := s.LoanRepo.Search(ctx, query)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// Schedule projects the loan's installments from its first EMI date
func (s *LoanService) Schedule(ctx context.Context, loanID string) (*domain.ScheduleResponse, error) {
	loan, err := s.loadLoan(ctx, loanID, true)
	if err != nil {
		return nil, err
	}

	schedule := finance.InstallmentSchedule(loan)
	if schedule == nil {
		schedule = []domain.Installment{}
	}
	return &domain.ScheduleResponse{LoanID: loan.ID, Schedule: schedule}, nil
}

// RecordRepayment appends a repayment to an active loan. The amount defaults to the
// EMI and the penalty to the overdue penalty as of today.
func (s *LoanService) RecordRepayment(ctx context.Context, request *domain.RepaymentRequest) (*domain.RepaymentResponse, error) {
	loan, err := s.loadLoan(ctx, request.LoanID, false)
	if err != nil {
		return nil, err
	}
	if !loan.IsActive() {
		return nil, customError.WrapLoanAlreadyClosed(loan.ID)
	}

	today := s.Today()
	paymentDate := today
	if request.PaymentDate != "" {
		if paymentDate, err = utils.ParseDate(request.PaymentDate); err != nil {
			return nil, customError.WrapInvalidInput("invalid payment date", err)
		}
	}

	amount := loan.InstallmentAmount
	if request.Amount != nil {
		amount = *request.Amount
	}
	if !amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(amount)
	}

	penalty := decimal.Zero
	if request.Penalty != nil {
		penalty = *request.Penalty
	} else if loan.EMIDate != nil {
		penalty = finance.OverduePenalty(loan.LoanAmount, *loan.EMIDate, today)
	}
	if penalty.IsNegative() {
		return nil, customError.WrapInvalidInput("penalty cannot be negative", nil)
	}

	repayment := &domain.Repayment{
		ID:            uuid.New(),
		LoanID:        loan.ID,
		PaymentDate:   paymentDate,
		Amount:        amount,
		Penalty:       penalty,
		Discount:      decimal.Zero,
		Kind:          domain.RepaymentKindInstallment,
		BookNumber:    request.BookNumber,
		VoucherNumber: request.VoucherNumber,
		Remarks:       request.Remarks,
		CreatedAt:     s.now().UTC(),
	}

	if err = s.RepaymentRepo.Create(ctx, repayment); err != nil {
		if errors.Is(err, repository.ErrLoanNotActive) {
			return nil, customError.WrapLoanAlreadyClosed(loan.ID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	s.invalidateLoan(ctx, loan.ID)

	loan.Repayments = append(loan.Repayments, *repayment)
	summary := finance.Summarize(loan, today)

	s.logger.Info("repayment recorded",
		zap.String("loan_id", loan.ID),
		zap.String("amount", amount.String()),
		zap.String("penalty", penalty.String()),
		zap.String("outstanding", summary.Outstanding.String()),
	)

	return &domain.RepaymentResponse{Repayment: repayment, Summary: summary}, nil
}

// CloseLoan settles an active loan. Amount paid plus discount must match the raw
// outstanding balance to within finance.SettlementTolerance.
func (s *LoanService) CloseLoan(ctx context.Context, request *domain.CloseLoanRequest) (*domain.RepaymentResponse, error) {
	loan, err := s.loadLoan(ctx, request.LoanID, false)
	if err != nil {
		return nil, err
	}
	if !loan.IsActive() {
		return nil, customError.WrapLoanAlreadyClosed(loan.ID)
	}

	if request.AmountPaid.IsNegative() {
		return nil, customError.WrapInvalidPaymentAmount(request.AmountPaid)
	}
	if request.DiscountAmount.IsNegative() {
		return nil, customError.WrapInvalidInput("discount cannot be negative", nil)
	}

	outstanding := finance.OutstandingBalance(loan.TotalAmount, loan.Repayments)
	if !finance.SettlementMatches(request.AmountPaid, request.DiscountAmount, outstanding) {
		return nil, customError.WrapSettlementMismatch(request.AmountPaid.Add(request.DiscountAmount), outstanding)
	}

	today := s.Today()
	paymentDate := today
	if request.PaymentDate != "" {
		if paymentDate, err = utils.ParseDate(request.PaymentDate); err != nil {
			return nil, customError.WrapInvalidInput("invalid payment date", err)
		}
	}

	now := s.now().UTC()
	settlement := &domain.Repayment{
		ID:            uuid.New(),
		LoanID:        loan.ID,
		PaymentDate:   paymentDate,
		Amount:        request.AmountPaid,
		Penalty:       decimal.Zero,
		Discount:      request.DiscountAmount,
		Kind:          domain.RepaymentKindSettlement,
		BookNumber:    request.BookNumber,
		VoucherNumber: request.VoucherNumber,
		Remarks:       request.Remarks,
		CreatedAt:     now,
	}

	if err = s.LoanRepo.Close(ctx, loan.ID, settlement, now); err != nil {
		if errors.Is(err, repository.ErrLoanNotActive) {
			return nil, customError.WrapLoanAlreadyClosed(loan.ID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	s.invalidateLoan(ctx, loan.ID)

	loan.Repayments = append(loan.Repayments, *settlement)
	loan.Status = domain.LoanStatusClosed
	loan.ClosedAt = &now
	loan.UpdatedAt = now

	s.logger.Info("loan closed",
		zap.String("loan_id", loan.ID),
		zap.String("amount_paid", request.AmountPaid.String()),
		zap.String("discount", request.DiscountAmount.String()),
		zap.String("outstanding", outstanding.String()),
	)

	return &domain.RepaymentResponse{Repayment: settlement, Summary: finance.Summarize(loan, today)}, nil
}

// loadLoan fetches a loan with its repayments. Writes pass useCache=false so they
// always decide on the stored state.
func (s *LoanService) loadLoan(ctx context.Context, loanID string, useCache bool) (*domain.Loan, error) {
	if useCache && s.loanCache != nil {
		loan, err := s.loanCache.GetLoan(ctx, loanID)
		if err == nil {
			return loan, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("loan cache read failed", zap.String("loan_id", loanID), zap.Error(err))
		}
	}

	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	repayments, err := s.RepaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	loan.Repayments = repayments

	if useCache && s.loanCache != nil {
		if err := s.loanCache.SetLoan(ctx, loan); err != nil {
			s.logger.Warn("loan cache write failed", zap.String("loan_id", loanID), zap.Error(err))
		}
	}

	return loan, nil
}

// attachRepayments fills Repayments for every loan from a single listing
func (s *LoanService) attachRepayments(ctx context.Context, loans []*domain.Loan) error {
	all, err := s.RepaymentRepo.ListAll(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	byLoan := make(map[string][]domain.Repayment, len(loans))
	for _, r := range all {
		byLoan[r.LoanID] = append(byLoan[r.LoanID], r)
	}
	for _, loan := range loans {
		loan.Repayments = byLoan[loan.ID]
	}
	return nil
}

func (s *LoanService) invalidateLoan(ctx context.Context, loanID string) {
	if s.loanCache != nil {
		if err := s.loanCache.InvalidateLoan(ctx, loanID); err != nil {
			s.logger.Warn("loan cache invalidation failed", zap.String("loan_id", loanID), zap.Error(err))
		}
	}
	s.invalidateStats(ctx)
}

func (s *LoanService) invalidateStats(ctx context.Context) {
	if s.statsCache != nil {
		if err := s.statsCache.InvalidateStats(ctx); err != nil {
			s.logger.Warn("stats cache invalidation failed", zap.Error(err))
		}
	}
}
