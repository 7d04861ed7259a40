package repository

import (
	"errors"
	"time"

	"agentgraph-backend/internal/agent/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentRepository defines data access for agents.
type AgentRepository interface {
	Create(agent *domain.Agent) error
	FindByID(id string) (*domain.Agent, error)
	FindByCreator(creatorUserID string) ([]*domain.Agent, error)
}

type agentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(agent *domain.Agent) error {
	if agent.ID == "" {
		agent.ID = uuid.New().String()
	}
	agent.CreatedAt = time.Now()
	agent.UpdatedAt = time.Now()
	return r.db.Create(agent).Error
}

func (r *agentRepository) FindByID(id string) (*domain.Agent, error) {
	var agent domain.Agent
	err := r.db.Where("id = ?", id).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) FindByCreator(creatorUserID string) ([]*domain.Agent, error) {
	var agents []*domain.Agent
	err := r.db.Where("creator_user_id = ?", creatorUserID).
		Order("created_at DESC").Find(&agents).Error
	return agents, err
}
