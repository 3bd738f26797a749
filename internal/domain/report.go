package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status filters for the loan status report
const (
	StatusFilterAll    = "ALL"
	StatusFilterActive = "ACTIVE"
	StatusFilterClosed = "CLOSED"
)

// LoanStatusRow is one line of the loan status report
type LoanStatusRow struct {
	ID                string          `json:"id"`
	FileDate          time.Time       `json:"fileDate"`
	ApplicantName     string          `json:"applicantName"`
	GuarantorName     string          `json:"guarantorName"`
	VehicleProduct    string          `json:"vehicleProduct"`
	Model             string          `json:"model"`
	VehicleNumber     string          `json:"vehicleNumber"`
	LoanAmount        decimal.Decimal `json:"loanAmount"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
	NoOfInstallments  int             `json:"noOfInstallments"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	Balance           decimal.Decimal `json:"balance"`
	MonthsPaid        int             `json:"monthsPaid"`
	PendingFrom       time.Time       `json:"pendingFrom"`
	PendingDays       int             `json:"pendingDays"`
	Arrears           decimal.Decimal `json:"arrears"`
	Active            bool            `json:"active"`
}

type LoanStatusReport struct {
	Filter string          `json:"filter"`
	Query  string          `json:"query,omitempty"`
	AsOf   time.Time       `json:"asOf"`
	Rows   []LoanStatusRow `json:"rows"`
}

// PaymentReport is the collection/disbursement tally for a date range
type PaymentReport struct {
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	Repayments      []Repayment     `json:"repayments"`
	NewLoans        []Loan          `json:"newLoans"`
	TotalCollection decimal.Decimal `json:"totalCollection"`
	TotalPenalty    decimal.Decimal `json:"totalPenalty"`
	TotalDiscount   decimal.Decimal `json:"totalDiscount"`
	TotalDisbursed  decimal.Decimal `json:"totalDisbursed"`
	NetCashFlow     decimal.Decimal `json:"netCashFlow"`
}

type DashboardStats struct {
	ActiveLoans        int             `json:"activeLoans"`
	TodaysCollection   decimal.Decimal `json:"todaysCollection"`
	MonthlyCollection  decimal.Decimal `json:"monthlyCollection"`
	TodaysDisbursement decimal.Decimal `json:"todaysDisbursement"`
	TotalOutstanding   decimal.Decimal `json:"totalOutstanding"`
}

// OverdueLoan is an active loan whose next installment is past due
type OverdueLoan struct {
	LoanID           string          `json:"loanId"`
	ApplicantName    string          `json:"applicantName"`
	NextDue          NextDue         `json:"nextDue"`
	DaysOverdue      int             `json:"daysOverdue"`
	Arrears          decimal.Decimal `json:"arrears"`
	SuggestedPenalty decimal.Decimal `json:"suggestedPenalty"`
}

// DueReminder is an active loan whose next installment falls due soon
type DueReminder struct {
	LoanID            string          `json:"loanId"`
	ApplicantName     string          `json:"applicantName"`
	Mobile            string          `json:"mobile"`
	NextDue           NextDue         `json:"nextDue"`
	DaysLeft          int             `json:"daysLeft"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
}
