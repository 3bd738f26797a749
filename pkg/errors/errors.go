package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrLoanNotFound         = errors.New("loan not found")
	ErrLoanAlreadyExists    = errors.New("loan already exists")
	ErrInvalidLoanAmount    = errors.New("invalid loan amount")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrLoanAlreadyClosed    = errors.New("loan is already closed")
	ErrSettlementMismatch   = errors.New("settlement does not match outstanding balance")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAgentAlreadyExists   = errors.New("agent already exists")
	ErrSessionExpired       = errors.New("session expired")
	ErrInvalidInput         = errors.New("invalid input")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyExists    = "LOAN_ALREADY_EXISTS"
	ErrCodeInvalidLoanAmount    = "INVALID_LOAN_AMOUNT"
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	ErrCodeLoanAlreadyClosed    = "LOAN_ALREADY_CLOSED"
	ErrCodeSettlementMismatch   = "SETTLEMENT_MISMATCH"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeAgentAlreadyExists   = "AGENT_ALREADY_EXISTS"
	ErrCodeSessionExpired       = "SESSION_EXPIRED"
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

var statusByCode = map[string]int{
	ErrCodeLoanNotFound:         http.StatusNotFound,
	ErrCodeLoanAlreadyExists:    http.StatusConflict,
	ErrCodeInvalidLoanAmount:    http.StatusBadRequest,
	ErrCodeInvalidPaymentAmount: http.StatusBadRequest,
	ErrCodeLoanAlreadyClosed:    http.StatusConflict,
	ErrCodeSettlementMismatch:   http.StatusUnprocessableEntity,
	ErrCodeInvalidCredentials:   http.StatusUnauthorized,
	ErrCodeAgentAlreadyExists:   http.StatusConflict,
	ErrCodeSessionExpired:       http.StatusUnauthorized,
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeDatabaseError:        http.StatusInternalServerError,
	ErrCodeCacheError:           http.StatusInternalServerError,
}

// HTTPStatus maps an error to the status code a handler should answer with.
// Anything that is not a BusinessError is a 500.
func HTTPStatus(err error) int {
	var be *BusinessError
	if errors.As(err, &be) {
		if status, ok := statusByCode[be.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyExists(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan with ID %s already exists", loanID),
		ErrLoanAlreadyExists,
	)
}

func WrapLoanAlreadyClosed(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyClosed,
		fmt.Sprintf("Loan with ID %s is already closed", loanID),
		ErrLoanAlreadyClosed,
	)
}

func WrapInvalidLoanAmount(amount decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanAmount,
		fmt.Sprintf("Invalid loan amount: %s", amount.String()),
		ErrInvalidLoanAmount,
	)
}

func WrapInvalidPaymentAmount(amount decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount.StringFixed(2)),
		ErrInvalidPaymentAmount,
	)
}

func WrapSettlementMismatch(settlement, outstanding decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeSettlementMismatch,
		fmt.Sprintf("Amount paid plus discount %s does not match outstanding %s", settlement.StringFixed(2), outstanding.StringFixed(2)),
		ErrSettlementMismatch,
	)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCredentials,
		"Invalid ID or access code",
		ErrInvalidCredentials,
	)
}

func WrapAgentAlreadyExists(agentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAgentAlreadyExists,
		fmt.Sprintf("Agent with ID %s already exists", agentID),
		ErrAgentAlreadyExists,
	)
}

func WrapSessionExpired() *BusinessError {
	return NewBusinessError(
		ErrCodeSessionExpired,
		"Session expired, please log in again",
		ErrSessionExpired,
	)
}

func WrapInvalidInput(message string, err error) *BusinessError {
	if err == nil {
		err = ErrInvalidInput
	}
	return NewBusinessError(ErrCodeInvalidInput, message, err)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
