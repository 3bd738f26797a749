// Package finance derives the money figures of a loan from its terms and its
// repayment history. Every function here is pure: inputs are never mutated and
// identical inputs always give identical results, so callers may summarise many
// loans concurrently without coordination.
package finance

import (
	"time"

	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/pkg/utils"

	"github.com/shopspring/decimal"
)

var (
	monthsPerYearTimesPercent = decimal.NewFromInt(12 * 100)
	penaltyDivisor            = decimal.NewFromInt(100)

	// SettlementTolerance absorbs the drift between ceiling-rounded installments
	// and the exact outstanding balance when a loan is closed.
	SettlementTolerance = decimal.NewFromInt(1)
)

// InterestSchedule is the set of amounts derived when a loan is created
type InterestSchedule struct {
	InterestAmount    decimal.Decimal `json:"interestAmount"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
}

// ComputeInterestSchedule applies flat simple interest over the installment
// period, treating the installment count as months:
//
//	interest    = P × (T / 12) × R / 100
//	total       = P + interest
//	installment = total / T
//
// Each amount is rounded up to a whole currency unit. With no installments the
// installment amount is zero.
func ComputeInterestSchedule(principal decimal.Decimal, installments int, annualRatePercent decimal.Decimal) InterestSchedule {
	t := decimal.NewFromInt(int64(installments))
	interest := principal.Mul(t).Mul(annualRatePercent).Div(monthsPerYearTimesPercent)
	total := principal.Add(interest)

	installment := decimal.Zero
	if installments > 0 {
		installment = total.Div(t)
	}

	return InterestSchedule{
		InterestAmount:    interest.Ceil(),
		TotalAmount:       total.Ceil(),
		InstallmentAmount: installment.Ceil(),
	}
}

// TotalPaid sums repayment amounts. Penalties are not part of it.
func TotalPaid(repayments []domain.Repayment) decimal.Decimal {
	total := decimal.Zero
	for _, r := range repayments {
		total = total.Add(r.Amount)
	}
	return total
}

// TotalPenalty sums the penalties collected alongside repayments
func TotalPenalty(repayments []domain.Repayment) decimal.Decimal {
	total := decimal.Zero
	for _, r := range repayments {
		total = total.Add(r.Penalty)
	}
	return total
}

// OutstandingBalance is totalPayable minus everything repaid. It goes negative on
// overpayment; callers decide whether to floor it for display.
func OutstandingBalance(totalPayable decimal.Decimal, repayments []domain.Repayment) decimal.Decimal {
	return totalPayable.Sub(TotalPaid(repayments))
}

// PendingInstallments counts each recorded repayment as one installment paid.
func PendingInstallments(noOfInstallments int, repayments []domain.Repayment) int {
	pending := noOfInstallments - len(repayments)
	if pending < 0 {
		return 0
	}
	return pending
}

// NextDueDate projects the next installment date from the first EMI date and the
// number of repayments recorded so far.
func NextDueDate(loan *domain.Loan) domain.NextDue {
	if loan == nil || loan.EMIDate == nil || loan.EMIDate.IsZero() {
		return domain.NextDue{Status: domain.DueNotApplicable}
	}
	if !loan.IsActive() {
		return domain.NextDue{Status: domain.DueNotApplicable}
	}

	paid := len(loan.Repayments)
	if paid >= loan.NoOfInstallments {
		return domain.NextDue{Status: domain.DueCompleted}
	}

	monthsToAdd := paid * loan.Frequency.Months()
	return domain.NextDue{
		Status: domain.DueScheduled,
		Date:   utils.AddMonths(*loan.EMIDate, monthsToAdd),
	}
}

// DueDaysRemaining is the number of calendar days from asOf until due. Both sides
// are reduced to their calendar date first, so the result is stable for the whole
// day. Negative means overdue.
func DueDaysRemaining(due, asOf time.Time) int {
	return int(utils.DateOnly(due).Sub(utils.DateOnly(asOf)) / (24 * time.Hour))
}

// OverduePenalty is a flat 1% of the loan amount once asOf is strictly later than
// one calendar month after the EMI date. A zero EMI date means no penalty.
func OverduePenalty(loanAmount decimal.Decimal, emiDate, asOf time.Time) decimal.Decimal {
	if emiDate.IsZero() {
		return decimal.Zero
	}
	graceEnd := utils.AddMonths(utils.DateOnly(emiDate), 1)
	if utils.DateOnly(asOf).After(graceEnd) {
		return loanAmount.Div(penaltyDivisor)
	}
	return decimal.Zero
}

// Arrears is what should have been paid by asOf at one installment per elapsed
// month since the file date, less what was actually paid. Never negative.
func Arrears(fileDate time.Time, noOfInstallments int, installmentAmount, totalPaid decimal.Decimal, asOf time.Time) decimal.Decimal {
	if fileDate.IsZero() {
		return decimal.Zero
	}
	months := utils.MonthsBetween(fileDate, asOf)
	if months > noOfInstallments {
		months = noOfInstallments
	}
	shouldHavePaid := installmentAmount.Mul(decimal.NewFromInt(int64(months)))
	return decimal.Max(decimal.Zero, shouldHavePaid.Sub(totalPaid))
}

// SettlementMatches reports whether amountPaid plus the waived discount settles
// the outstanding balance to within SettlementTolerance.
func SettlementMatches(amountPaid, discount, outstanding decimal.Decimal) bool {
	diff := amountPaid.Add(discount).Sub(outstanding).Abs()
	return diff.LessThan(SettlementTolerance)
}

// MonthsPaid is how many whole installments the amount repaid covers
func MonthsPaid(totalPaid, installmentAmount decimal.Decimal) int {
	if !installmentAmount.IsPositive() || !totalPaid.IsPositive() {
		return 0
	}
	return int(totalPaid.Div(installmentAmount).Floor().IntPart())
}

// PendingFrom is the date of the last repayment, or the file date when nothing has
// been repaid yet. Repayments are taken in the order given.
func PendingFrom(loan *domain.Loan) time.Time {
	if n := len(loan.Repayments); n > 0 {
		return loan.Repayments[n-1].PaymentDate
	}
	return loan.FileDate
}
