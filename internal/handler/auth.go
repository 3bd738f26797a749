package handler

import (
	"net/http"

	"github.com/segyhp/loandesk/internal/auth"
	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/internal/service"
	"github.com/segyhp/loandesk/pkg/response"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service   *service.AuthService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewAuthHandler(service *service.AuthService, validator *validator.Validate, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Success(w, resp)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), auth.BearerToken(r)); err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Success(w, map[string]string{"status": "logged out"})
}

// CreateAgent handles POST /api/agents
func (h *AuthHandler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAgentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	agent, err := h.service.CreateAgent(r.Context(), &req)
	if err != nil {
		fail(w, h.logger, r, err)
		return
	}

	response.Created(w, agent)
}
