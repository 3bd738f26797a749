package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/segyhp/loandesk/internal/export"
	"github.com/segyhp/loandesk/internal/service"
	"github.com/segyhp/loandesk/pkg/response"
	"github.com/segyhp/loandesk/pkg/utils"

	"go.uber.org/zap"
)

type ReportHandler struct {
	reports *service.ReportService
	loans   *service.LoanService
	logger  *zap.Logger
}

func NewReportHandler(reports *service.ReportService, loans *service.LoanService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		loans:   loans,
		logger:  logger,
	}
}

// PaymentReport handles GET /api/repayments/report?startDate=&endDate=
func (h *ReportHandler) PaymentReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	report, err := h.reports.PaymentReport(r.Context(), start, end)
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Success(w, report)
}

func dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		response.BadRequest(w, "startDate and endDate are required", nil)
		return time.Time{}, time.Time{}, false
	}

	start, err := utils.ParseDate(q.Get("startDate"))
	if err != nil {
		response.BadRequest(w, "Invalid startDate", err)
		return time.Time{}, time.Time{}, false
	}
	end, err := utils.ParseDate(q.Get("endDate"))
	if err != nil {
		response.BadRequest(w, "Invalid endDate", err)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// LoanStatus handles GET /api/reports/loan-status?filter=&q=
func (h *ReportHandler) LoanStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	report, err := h.reports.LoanStatusReport(r.Context(), q.Get("filter"), q.Get("q"), h.loans.Today())
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Success(w, report)
}

// ExportLoanStatus handles GET /api/reports/loan-status/export and streams CSV
func (h *ReportHandler) ExportLoanStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	asOf := h.loans.Today()

	report, err := h.reports.LoanStatusReport(r.Context(), q.Get("filter"), q.Get("q"), asOf)
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLoanStatusCSV(&buf, report); err != nil {
		h.logger.Error("rendering loan status export", zap.Error(err))
		response.InternalServerError(w, "Failed to render export", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.LoanStatusFileName(report.Filter, asOf)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("writing loan status export", zap.Error(err))
	}
}

// Stats handles GET /api/stats
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.DashboardStats(r.Context(), h.loans.Today())
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Success(w, stats)
}
