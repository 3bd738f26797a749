package repository

import (
	"context"

	"github.com/segyhp/loandesk/internal/domain"

	"github.com/jmoiron/sqlx"
)

type agentRepository struct {
	db *sqlx.DB
}

func NewAgentRepository(db *sqlx.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	query := `
		INSERT INTO agents (id, name, code_hash, role, created_at)
		VALUES (:id, :name, :code_hash, :role, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, agent)
	return err
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	query := r.db.Rebind(`SELECT id, name, code_hash, role, created_at FROM agents WHERE id = ?`)

	var agent domain.Agent
	if err := r.db.GetContext(ctx, &agent, query, id); err != nil {
		return nil, err
	}

	return &agent, nil
}
