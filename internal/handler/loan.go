package handler

import (
	"net/http"
	"strconv"

	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/internal/service"
	"github.com/segyhp/loandesk/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewLoanHandler(service *service.LoanService, validator *validator.Validate, logger *zap.Logger) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

// CreateLoan handles POST /api/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Created(w, loan)
}

// ListLoans handles GET /api/loans
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	include, _ := strconv.ParseBool(r.URL.Query().Get("includeRepayments"))

	loans, err := h.service.ListLoans(r.Context(), include)
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}
	if loans == nil {
		loans = []*domain.Loan{}
	}

	response.Success(w, loans)
}

// RecentLoans handles GET /api/loans/recent
func (h *LoanHandler) RecentLoans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, "limit must be a non-negative integer", err)
			return
		}
		limit = n
	}

	loans, err := h.service.RecentLoans(r.Context(), limit)
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}
	if loans == nil {
		loans = []*domain.Loan{}
	}

	response.Success(w, loans)
}

// SearchLoans handles GET /api/loans/search?q=
func (h *LoanHandler) SearchLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.SearchLoans(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}
	if loans == nil {
		loans = []*domain.Loan{}
	}

	response.Success(w, loans)
}

// GetLoan handles GET /api/loans/{id}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetLoan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Success(w, detail)
}

// GetSchedule handles GET /api/loans/{id}/schedule
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.service.Schedule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Success(w, schedule)
}

// RecordRepayment handles POST /api/repayments
func (h *LoanHandler) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	var req domain.RepaymentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.RecordRepayment(r.Context(), &req)
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Created(w, resp)
}

// CloseLoan handles POST /api/loans/close
func (h *LoanHandler) CloseLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CloseLoanRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.CloseLoan(r.Context(), &req)
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Success(w, resp)
}
