package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RepaymentKindInstallment = "installment"
	RepaymentKindSettlement  = "settlement"
)

// Repayment is a single payment recorded against a loan. A loan's repayments are
// kept in insertion order, which is treated as chronological.
type Repayment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	LoanID        string          `json:"loanId" db:"loan_id"`
	PaymentDate   time.Time       `json:"paymentDate" db:"payment_date"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Penalty       decimal.Decimal `json:"penalty" db:"penalty"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	Kind          string          `json:"kind" db:"kind"`
	BookNumber    string          `json:"bookNumber" db:"book_number"`
	VoucherNumber string          `json:"voucherNumber" db:"voucher_number"`
	Remarks       string          `json:"remarks" db:"remarks"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

type RepaymentRequest struct {
	LoanID        string           `json:"loanId" validate:"required"`
	PaymentDate   string           `json:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	Amount        *decimal.Decimal `json:"amount" validate:"omitempty,decimal_gt=0"`
	Penalty       *decimal.Decimal `json:"penalty" validate:"omitempty,decimal_gte=0"`
	BookNumber    string           `json:"bookNumber"`
	VoucherNumber string           `json:"voucherNumber"`
	Remarks       string           `json:"remarks"`
}

type CloseLoanRequest struct {
	LoanID         string          `json:"loanId" validate:"required"`
	PaymentDate    string          `json:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	AmountPaid     decimal.Decimal `json:"amountPaid" validate:"decimal_gte=0"`
	DiscountAmount decimal.Decimal `json:"discountAmount" validate:"decimal_gte=0"`
	BookNumber     string          `json:"bookNumber"`
	VoucherNumber  string          `json:"voucherNumber"`
	Remarks        string          `json:"remarks"`
}

type RepaymentResponse struct {
	Repayment *Repayment `json:"repayment"`
	Summary   *Summary   `json:"summary"`
}
