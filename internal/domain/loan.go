package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive = "active"
	LoanStatusClosed = "closed"
)

// Frequency is the repayment cadence of a loan.
type Frequency string

const (
	FrequencyMonthly    Frequency = "Monthly"
	FrequencyQuarterly  Frequency = "Quarterly"
	FrequencyHalfYearly Frequency = "Half-yearly"
	FrequencyYearly     Frequency = "Yearly"
)

// Months returns the number of calendar months between two installments.
// Unknown frequencies fall back to monthly.
func (f Frequency) Months() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencyHalfYearly:
		return 6
	case FrequencyYearly:
		return 12
	default:
		return 1
	}
}

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyHalfYearly, FrequencyYearly:
		return true
	}
	return false
}

// Loan represents a vehicle loan file identified by its LAN
type Loan struct {
	ID string `json:"id" db:"id"` // LAN

	ApplicantName string `json:"applicantName" db:"applicant_name"`
	Address       string `json:"address" db:"address"`
	City          string `json:"city" db:"city"`
	TownVillage   string `json:"townVillage" db:"town_village"`
	Mobile        string `json:"mobile" db:"mobile"`
	Aadhar        string `json:"aadhar" db:"aadhar"`

	GuarantorName        string `json:"guarantorName" db:"guarantor_name"`
	GuarantorAddress     string `json:"guarantorAddress" db:"guarantor_address"`
	GuarantorCity        string `json:"guarantorCity" db:"guarantor_city"`
	GuarantorTownVillage string `json:"guarantorTownVillage" db:"guarantor_town_village"`
	GuarantorMobile      string `json:"guarantorMobile" db:"guarantor_mobile"`
	GuarantorAadhar      string `json:"guarantorAadhar" db:"guarantor_aadhar"`

	VehicleProduct      string     `json:"vehicleProduct" db:"vehicle_product"`
	Model               string     `json:"model" db:"model"`
	MakerCompany        string     `json:"makerCompany" db:"maker_company"`
	EngineSerialNumber  string     `json:"engineSerialNumber" db:"engine_serial_number"`
	VehicleNumber       string     `json:"vehicleNumber" db:"vehicle_number"`
	VehiclePurchaseDate *time.Time `json:"vehiclePurchaseDate,omitempty" db:"vehicle_purchase_date"`

	Frequency        Frequency       `json:"frequency" db:"frequency"`
	FileDate         time.Time       `json:"fileDate" db:"file_date"`
	EMIDate          *time.Time      `json:"emiDate,omitempty" db:"emi_date"`
	LoanAmount       decimal.Decimal `json:"loanAmount" db:"loan_amount"`
	NoOfInstallments int             `json:"noOfInstallments" db:"no_of_installments"`
	InterestRate     decimal.Decimal `json:"interestRate" db:"interest_rate"`

	InterestAmount    decimal.Decimal `json:"interestAmount" db:"interest_amount"`
	TotalAmount       decimal.Decimal `json:"totalAmount" db:"total_amount"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount" db:"installment_amount"`

	Status    string     `json:"status" db:"status"`
	ClosedAt  *time.Time `json:"closedAt,omitempty" db:"closed_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`

	Repayments []Repayment `json:"repayments,omitempty" db:"-"`
}

// IsActive reports whether the loan still accepts repayments
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	ID string `json:"id" validate:"required,max=64,excludes=/,notblank"`

	ApplicantName string `json:"applicantName" validate:"required"`
	Address       string `json:"address"`
	City          string `json:"city"`
	TownVillage   string `json:"townVillage"`
	Mobile        string `json:"mobile" validate:"required,numeric,len=10"`
	Aadhar        string `json:"aadhar" validate:"required,numeric,len=12"`

	GuarantorName        string `json:"guarantorName" validate:"required"`
	GuarantorAddress     string `json:"guarantorAddress"`
	GuarantorCity        string `json:"guarantorCity"`
	GuarantorTownVillage string `json:"guarantorTownVillage"`
	GuarantorMobile      string `json:"guarantorMobile" validate:"required,numeric,len=10"`
	GuarantorAadhar      string `json:"guarantorAadhar" validate:"required,numeric,len=12"`

	VehicleProduct      string `json:"vehicleProduct"`
	Model               string `json:"model"`
	MakerCompany        string `json:"makerCompany"`
	EngineSerialNumber  string `json:"engineSerialNumber"`
	VehicleNumber       string `json:"vehicleNumber"`
	VehiclePurchaseDate string `json:"vehiclePurchaseDate" validate:"omitempty,datetime=2006-01-02"`

	Frequency        Frequency       `json:"frequency" validate:"omitempty,oneof=Monthly Quarterly Half-yearly Yearly"`
	FileDate         string          `json:"fileDate" validate:"required,datetime=2006-01-02"`
	EMIDate          string          `json:"emiDate" validate:"omitempty,datetime=2006-01-02"`
	LoanAmount       decimal.Decimal `json:"loanAmount" validate:"decimal_gt=0"`
	NoOfInstallments int             `json:"noOfInstallments" validate:"gte=0"`
	InterestRate     decimal.Decimal `json:"interestRate" validate:"decimal_gte=0"`
}

type LoanDetailResponse struct {
	Loan    *Loan    `json:"loan"`
	Summary *Summary `json:"summary"`
}

type ScheduleResponse struct {
	LoanID   string        `json:"loanId"`
	Schedule []Installment `json:"schedule"`
}
