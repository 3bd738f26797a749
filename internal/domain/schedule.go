package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DueStatus tells whether a loan has a projected due date
type DueStatus int

const (
	DueScheduled DueStatus = iota
	DueCompleted
	DueNotApplicable
)

const (
	DueLabelCompleted     = "Completed"
	DueLabelNotApplicable = "N/A"
)

// NextDue is either a projected date or one of the Completed / N/A sentinels.
type NextDue struct {
	Status DueStatus
	Date   time.Time
}

func (d NextDue) String() string {
	switch d.Status {
	case DueCompleted:
		return DueLabelCompleted
	case DueNotApplicable:
		return DueLabelNotApplicable
	default:
		return d.Date.Format("2006-01-02")
	}
}

// Scheduled reports whether d carries a real date
func (d NextDue) Scheduled() bool {
	return d.Status == DueScheduled
}

func (d NextDue) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Installment is one projected entry of a loan's repayment schedule
type Installment struct {
	Number  int             `json:"number"`
	DueDate time.Time       `json:"dueDate"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
}

// Summary holds every derived figure for one loan as of a given date
type Summary struct {
	LoanID              string          `json:"loanId"`
	AsOf                time.Time       `json:"asOf"`
	TotalPayable        decimal.Decimal `json:"totalPayable"`
	TotalPaid           decimal.Decimal `json:"totalPaid"`
	TotalPenalty        decimal.Decimal `json:"totalPenalty"`
	Outstanding         decimal.Decimal `json:"outstanding"`
	InstallmentsPaid    int             `json:"installmentsPaid"`
	PendingInstallments int             `json:"pendingInstallments"`
	MonthsPaid          int             `json:"monthsPaid"`
	NextDue             NextDue         `json:"nextDue"`
	DueDays             int             `json:"dueDays"`
	SuggestedPenalty    decimal.Decimal `json:"suggestedPenalty"`
	Arrears             decimal.Decimal `json:"arrears"`
	PendingFrom         time.Time       `json:"pendingFrom"`
	Active              bool            `json:"active"`
}
