package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/segyhp/loandesk/internal/auth"
	"github.com/segyhp/loandesk/internal/config"
	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/internal/repository"
	customError "github.com/segyhp/loandesk/pkg/errors"

	"go.uber.org/zap"
)

type AuthService struct {
	AgentRepo repository.AgentRepository
	sessions  auth.SessionStore
	config    *config.Config
	logger    *zap.Logger
}

func NewAuthService(agentRepo repository.AgentRepository, sessions auth.SessionStore, config *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		AgentRepo: agentRepo,
		sessions:  sessions,
		config:    config,
		logger:    logger,
	}
}

// Login checks the credentials for the requested role and opens a session.
// Office logins use the configured office credentials. Executives are looked up in
// the agents table.
func (s *AuthService) Login(ctx context.Context, request *domain.LoginRequest) (*domain.LoginResponse, error) {
	id := strings.TrimSpace(request.ID)

	switch request.Role {
	case domain.RoleOffice:
		if !s.checkOffice(id, request.Code) {
			return nil, customError.WrapInvalidCredentials()
		}
	case domain.RoleExecutive:
		agent, err := s.AgentRepo.GetByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInvalidCredentials()
		}
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		if agent.Role != domain.RoleExecutive || !auth.CheckCode(agent.CodeHash, request.Code) {
			return nil, customError.WrapInvalidCredentials()
		}
	default:
		return nil, customError.WrapInvalidInput("unknown role "+request.Role, nil)
	}

	token, err := s.sessions.Create(ctx, auth.Context{AgentID: id, Role: request.Role})
	if err != nil {
		return nil, customError.WrapCacheError(err)
	}

	s.logger.Info("login", zap.String("agent_id", id), zap.String("role", request.Role))
	return &domain.LoginResponse{Token: token, Role: request.Role}, nil
}

func (s *AuthService) checkOffice(id, code string) bool {
	if s.config.Auth.OfficeID == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(id), []byte(s.config.Auth.OfficeID)) == 1 &&
		subtle.ConstantTimeCompare([]byte(code), []byte(s.config.Auth.OfficeCode)) == 1
}

// CreateAgent registers a field executive with a hashed access code
func (s *AuthService) CreateAgent(ctx context.Context, request *domain.CreateAgentRequest) (*domain.Agent, error) {
	id := strings.TrimSpace(request.ID)

	_, err := s.AgentRepo.GetByID(ctx, id)
	if err == nil {
		return nil, customError.WrapAgentAlreadyExists(id)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	hash, err := auth.HashCode(request.Code)
	if err != nil {
		return nil, customError.WrapInvalidInput("access code cannot be hashed", err)
	}

	agent := &domain.Agent{
		ID:        id,
		Name:      request.Name,
		CodeHash:  hash,
		Role:      domain.RoleExecutive,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.AgentRepo.Create(ctx, agent); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("agent created", zap.String("agent_id", agent.ID))
	return agent, nil
}

// Logout ends the session behind token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}
