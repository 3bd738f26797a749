package finance

import (
	"time"

	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/pkg/utils"

	"github.com/shopspring/decimal"
)

// Summarize derives every figure the desk shows for a loan as of a date. A closed
// loan reports nothing pending: no outstanding balance, no installments, no due
// date, no arrears and no penalty.
func Summarize(loan *domain.Loan, asOf time.Time) *domain.Summary {
	totalPaid := TotalPaid(loan.Repayments)

	s := &domain.Summary{
		LoanID:           loan.ID,
		AsOf:             utils.DateOnly(asOf),
		TotalPayable:     loan.TotalAmount,
		TotalPaid:        totalPaid,
		TotalPenalty:     TotalPenalty(loan.Repayments),
		Outstanding:      decimal.Zero,
		InstallmentsPaid: len(loan.Repayments),
		MonthsPaid:       MonthsPaid(totalPaid, loan.InstallmentAmount),
		NextDue:          domain.NextDue{Status: domain.DueNotApplicable},
		SuggestedPenalty: decimal.Zero,
		Arrears:          decimal.Zero,
		PendingFrom:      PendingFrom(loan),
		Active:           loan.IsActive(),
	}
	if !s.Active {
		return s
	}

	s.Outstanding = OutstandingBalance(loan.TotalAmount, loan.Repayments)
	s.PendingInstallments = PendingInstallments(loan.NoOfInstallments, loan.Repayments)
	s.NextDue = NextDueDate(loan)
	if s.NextDue.Scheduled() {
		s.DueDays = DueDaysRemaining(s.NextDue.Date, asOf)
	}
	s.Arrears = Arrears(loan.FileDate, loan.NoOfInstallments, loan.InstallmentAmount, totalPaid, asOf)
	if loan.EMIDate != nil {
		s.SuggestedPenalty = OverduePenalty(loan.LoanAmount, *loan.EMIDate, asOf)
	}

	return s
}

// InstallmentSchedule projects every installment of the loan from its first EMI
// date. Installments already covered by a recorded repayment are marked paid.
// Loans without an EMI date have no schedule.
func InstallmentSchedule(loan *domain.Loan) []domain.Installment {
	if loan.EMIDate == nil || loan.NoOfInstallments <= 0 {
		return nil
	}

	step := loan.Frequency.Months()
	paid := len(loan.Repayments)
	schedule := make([]domain.Installment, 0, loan.NoOfInstallments)
	for i := 0; i < loan.NoOfInstallments; i++ {
		schedule = append(schedule, domain.Installment{
			Number:  i + 1,
			DueDate: utils.AddMonths(*loan.EMIDate, i*step),
			Amount:  loan.InstallmentAmount,
			Paid:    i < paid,
		})
	}
	return schedule
}
