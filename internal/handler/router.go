package handler

import (
	"net/http"

	"github.com/segyhp/loandesk/internal/auth"
	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/pkg/response"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth     *AuthHandler
	Loans    *LoanHandler
	Reports  *ReportHandler
	Health   *HealthHandler
	Sessions auth.SessionStore
	Logger   *zap.Logger
}

// NewRouter mounts the API. Login and health probes are public; everything else
// needs a session, and most routes are for the office only.
// CORS wraps the whole router so preflights are answered before routing and
// before any session check.
func NewRouter(h Handlers) http.Handler {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(h.Logger))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})

	if h.Health != nil {
		router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
		router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)

	session := api.NewRoute().Subrouter()
	session.Use(auth.Middleware(h.Sessions))

	anyone := session.NewRoute().Subrouter()
	anyone.Use(auth.RequireRole(auth.Roles...))
	anyone.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodPost)
	anyone.HandleFunc("/loans/recent", h.Loans.RecentLoans).Methods(http.MethodGet)
	anyone.HandleFunc("/loans/search", h.Loans.SearchLoans).Methods(http.MethodGet)

	office := session.NewRoute().Subrouter()
	office.Use(auth.RequireRole(domain.RoleOffice))
	office.HandleFunc("/agents", h.Auth.CreateAgent).Methods(http.MethodPost)
	office.HandleFunc("/loans", h.Loans.CreateLoan).Methods(http.MethodPost)
	office.HandleFunc("/loans", h.Loans.ListLoans).Methods(http.MethodGet)
	office.HandleFunc("/loans/close", h.Loans.CloseLoan).Methods(http.MethodPost)
	office.HandleFunc("/repayments", h.Loans.RecordRepayment).Methods(http.MethodPost)
	office.HandleFunc("/repayments/report", h.Reports.PaymentReport).Methods(http.MethodGet)
	office.HandleFunc("/reports/loan-status", h.Reports.LoanStatus).Methods(http.MethodGet)
	office.HandleFunc("/reports/loan-status/export", h.Reports.ExportLoanStatus).Methods(http.MethodGet)
	office.HandleFunc("/stats", h.Reports.Stats).Methods(http.MethodGet)

	// registered last so the fixed /loans/... paths above win
	anyone.HandleFunc("/loans/{id}", h.Loans.GetLoan).Methods(http.MethodGet)
	anyone.HandleFunc("/loans/{id}/schedule", h.Loans.GetSchedule).Methods(http.MethodGet)

	return response.CORSMiddleware(router)
}
