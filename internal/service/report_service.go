package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/segyhp/loandesk/internal/cache"
	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/internal/finance"
	customError "github.com/segyhp/loandesk/pkg/errors"
	"github.com/segyhp/loandesk/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportService builds the office reports on top of the loan desk
type ReportService struct {
	loans      *LoanService
	statsCache cache.StatsCache
	logger     *zap.Logger
}

func NewReportService(loans *LoanService, statsCache cache.StatsCache, logger *zap.Logger) *ReportService {
	return &ReportService{
		loans:      loans,
		statsCache: statsCache,
		logger:     logger,
	}
}

// LoanStatusReport lists loans matching filter and query with their figures as of
// asOf. Closed loans carry a zero balance and no pending days. An overpaid active
// loan keeps its negative balance.
func (s *ReportService) LoanStatusReport(ctx context.Context, filter, query string, asOf time.Time) (*domain.LoanStatusReport, error) {
	filter = strings.ToUpper(strings.TrimSpace(filter))
	if filter == "" {
		filter = domain.StatusFilterAll
	}
	switch filter {
	case domain.StatusFilterAll, domain.StatusFilterActive, domain.StatusFilterClosed:
	default:
		return nil, customError.WrapInvalidInput("filter must be ALL, ACTIVE or CLOSED", nil)
	}

	loans, err := s.loans.ListLoans(ctx, true)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	report := &domain.LoanStatusReport{
		Filter: filter,
		Query:  query,
		AsOf:   utils.DateOnly(asOf),
		Rows:   []domain.LoanStatusRow{},
	}
	for _, loan := range loans {
		if !matchesFilter(loan, filter) || !matchesQuery(loan, query) {
			continue
		}
		report.Rows = append(report.Rows, statusRow(loan, asOf))
	}

	return report, nil
}

func matchesFilter(loan *domain.Loan, filter string) bool {
	switch filter {
	case domain.StatusFilterActive:
		return loan.IsActive()
	case domain.StatusFilterClosed:
		return !loan.IsActive()
	default:
		return true
	}
}

func matchesQuery(loan *domain.Loan, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{loan.ID, loan.ApplicantName, loan.VehicleNumber, loan.VehicleProduct, loan.GuarantorName} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// statusRow flattens a loan for the status report. PendingDays counts to the next
// projected due date, not to the first EMI date the dashboard used, so it moves
// forward as installments are paid.
func statusRow(loan *domain.Loan, asOf time.Time) domain.LoanStatusRow {
	summary := finance.Summarize(loan, asOf)

	return domain.LoanStatusRow{
		ID:                loan.ID,
		FileDate:          loan.FileDate,
		ApplicantName:     loan.ApplicantName,
		GuarantorName:     loan.GuarantorName,
		VehicleProduct:    loan.VehicleProduct,
		Model:             loan.Model,
		VehicleNumber:     loan.VehicleNumber,
		LoanAmount:        loan.LoanAmount,
		TotalAmount:       loan.TotalAmount,
		InstallmentAmount: loan.InstallmentAmount,
		NoOfInstallments:  loan.NoOfInstallments,
		TotalPaid:         summary.TotalPaid,
		Balance:           summary.Outstanding,
		MonthsPaid:        summary.MonthsPaid,
		PendingFrom:       summary.PendingFrom,
		PendingDays:       summary.DueDays,
		Arrears:           summary.Arrears,
		Active:            summary.Active,
	}
}

// PaymentReport tallies repayments and new loans whose dates fall in [start, end]
func (s *ReportService) PaymentReport(ctx context.Context, start, end time.Time) (*domain.PaymentReport, error) {
	start, end = utils.DateOnly(start), utils.DateOnly(end)
	if end.Before(start) {
		return nil, customError.WrapInvalidInput("end date is before start date", nil)
	}

	repayments, err := s.loans.RepaymentRepo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	filed, err := s.loans.LoanRepo.ListFiledBetween(ctx, start, end)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	report := &domain.PaymentReport{
		StartDate:       start,
		EndDate:         end,
		Repayments:      repayments,
		NewLoans:        make([]domain.Loan, 0, len(filed)),
		TotalCollection: decimal.Zero,
		TotalPenalty:    decimal.Zero,
		TotalDiscount:   decimal.Zero,
		TotalDisbursed:  decimal.Zero,
	}
	if report.Repayments == nil {
		report.Repayments = []domain.Repayment{}
	}

	for _, r := range repayments {
		report.TotalCollection = report.TotalCollection.Add(r.Amount)
		report.TotalPenalty = report.TotalPenalty.Add(r.Penalty)
		report.TotalDiscount = report.TotalDiscount.Add(r.Discount)
	}
	for _, loan := range filed {
		report.NewLoans = append(report.NewLoans, *loan)
		report.TotalDisbursed = report.TotalDisbursed.Add(loan.LoanAmount)
	}
	report.NetCashFlow = report.TotalCollection.Sub(report.TotalDisbursed)

	return report, nil
}

// DashboardStats summarises the desk as of asOf. The result is served from the
// stats cache while it is fresh.
func (s *ReportService) DashboardStats(ctx context.Context, asOf time.Time) (*domain.DashboardStats, error) {
	if s.statsCache != nil {
		stats, err := s.statsCache.GetStats(ctx)
		if err == nil {
			return stats, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	stats, err := s.computeStats(ctx, asOf)
	if err != nil {
		return nil, err
	}

	if s.statsCache != nil {
		if err := s.statsCache.SetStats(ctx, stats); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// RefreshStats recomputes the dashboard figures and replaces the cached copy
func (s *ReportService) RefreshStats(ctx context.Context, asOf time.Time) (*domain.DashboardStats, error) {
	stats, err := s.computeStats(ctx, asOf)
	if err != nil {
		return nil, err
	}
	if s.statsCache != nil {
		if err := s.statsCache.SetStats(ctx, stats); err != nil {
			return nil, customError.WrapCacheError(err)
		}
	}
	return stats, nil
}

func (s *ReportService) computeStats(ctx context.Context, asOf time.Time) (*domain.DashboardStats, error) {
	today := utils.DateOnly(asOf)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	active, err := s.loans.LoanRepo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if err := s.loans.attachRepayments(ctx, active); err != nil {
		return nil, err
	}
	monthRepayments, err := s.loans.RepaymentRepo.ListBetween(ctx, monthStart, today)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	filedToday, err := s.loans.LoanRepo.ListFiledBetween(ctx, today, today)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	stats := &domain.DashboardStats{
		ActiveLoans:        len(active),
		TodaysCollection:   decimal.Zero,
		MonthlyCollection:  decimal.Zero,
		TodaysDisbursement: decimal.Zero,
		TotalOutstanding:   decimal.Zero,
	}
	for _, r := range monthRepayments {
		stats.MonthlyCollection = stats.MonthlyCollection.Add(r.Amount)
		if utils.DateOnly(r.PaymentDate).Equal(today) {
			stats.TodaysCollection = stats.TodaysCollection.Add(r.Amount)
		}
	}
	for _, loan := range filedToday {
		stats.TodaysDisbursement = stats.TodaysDisbursement.Add(loan.LoanAmount)
	}
	for _, loan := range active {
		outstanding := finance.OutstandingBalance(loan.TotalAmount, loan.Repayments)
		stats.TotalOutstanding = stats.TotalOutstanding.Add(decimal.Max(decimal.Zero, outstanding))
	}

	return stats, nil
}

// OverdueLoans lists active loans whose next due date is before asOf, most overdue
// first.
func (s *ReportService) OverdueLoans(ctx context.Context, asOf time.Time) ([]domain.OverdueLoan, error) {
	active, err := s.loans.LoanRepo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if err := s.loans.attachRepayments(ctx, active); err != nil {
		return nil, err
	}

	overdue := []domain.OverdueLoan{}
	for _, loan := range active {
		summary := finance.Summarize(loan, asOf)
		if !summary.NextDue.Scheduled() || summary.DueDays >= 0 {
			continue
		}
		overdue = append(overdue, domain.OverdueLoan{
			LoanID:           loan.ID,
			ApplicantName:    loan.ApplicantName,
			NextDue:          summary.NextDue,
			DaysOverdue:      -summary.DueDays,
			Arrears:          summary.Arrears,
			SuggestedPenalty: summary.SuggestedPenalty,
		})
	}

	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].DaysOverdue > overdue[j].DaysOverdue
	})
	return overdue, nil
}

// UpcomingDues lists active loans whose next installment falls within the next
// withinDays days of asOf, including asOf itself, soonest first.
func (s *ReportService) UpcomingDues(ctx context.Context, asOf time.Time, withinDays int) ([]domain.DueReminder, error) {
	active, err := s.loans.LoanRepo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if err := s.loans.attachRepayments(ctx, active); err != nil {
		return nil, err
	}

	due := []domain.DueReminder{}
	for _, loan := range active {
		next := finance.NextDueDate(loan)
		if !next.Scheduled() {
			continue
		}
		days := finance.DueDaysRemaining(next.Date, asOf)
		if days < 0 || days > withinDays {
			continue
		}
		due = append(due, domain.DueReminder{
			LoanID:            loan.ID,
			ApplicantName:     loan.ApplicantName,
			Mobile:            loan.Mobile,
			NextDue:           next,
			DaysLeft:          days,
			InstallmentAmount: loan.InstallmentAmount,
		})
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DaysLeft < due[j].DaysLeft
	})
	return due, nil
}
