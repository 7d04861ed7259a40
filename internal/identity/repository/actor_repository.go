package repository

import (
	"errors"
	"time"

	"agentgraph-backend/internal/identity/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// actorRepository implements ActorRepository using GORM
type actorRepository struct {
	db *gorm.DB
}

func NewActorRepository(db *gorm.DB) ActorRepository {
	return &actorRepository{db: db}
}

func (r *actorRepository) Create(actor *domain.Actor) error {
	if actor.ID == "" {
		actor.ID = uuid.New().String()
	}
	actor.CreatedAt = time.Now()
	actor.UpdatedAt = time.Now()
	return r.db.Create(actor).Error
}

func (r *actorRepository) FindByID(id string) (*domain.Actor, error) {
	var actor domain.Actor
	err := r.db.Where("id = ?", id).First(&actor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &actor, nil
}

func (r *actorRepository) FindUserActorsByOwners(owners []string) ([]*domain.Actor, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	var actors []*domain.Actor
	err := r.db.Where("type = ? AND owner_user_id IN ?", domain.ActorTypeUser, owners).
		Order("updated_at DESC").Find(&actors).Error
	return actors, err
}

func (r *actorRepository) FindAgentActor(agentID string) (*domain.Actor, error) {
	var actor domain.Actor
	err := r.db.Where("type = ? AND agent_id = ?", domain.ActorTypeAgent, agentID).
		Order("updated_at DESC").First(&actor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &actor, nil
}

func (r *actorRepository) UpdateOwner(actorID, ownerUserID string) error {
	return r.db.Model(&domain.Actor{}).Where("id = ?", actorID).
		Updates(map[string]interface{}{
			"owner_user_id": ownerUserID,
			"updated_at":    time.Now(),
		}).Error
}
