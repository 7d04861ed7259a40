package repository

import (
	"errors"
	"time"

	"agentgraph-backend/internal/relationship/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormRelationshipRepository implements RelationshipRepository using GORM
type gormRelationshipRepository struct {
	db *gorm.DB
}

func NewGormRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &gormRelationshipRepository{db: db}
}

func (r *gormRelationshipRepository) Create(rel *domain.Relationship) error {
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	rel.CreatedAt = time.Now()
	rel.UpdatedAt = time.Now()
	return r.db.Create(rel).Error
}

func (r *gormRelationshipRepository) FindByTriple(fromActorID, toActorID string, kind domain.Kind) (*domain.Relationship, error) {
	var rel domain.Relationship
	err := r.db.Where("from_actor_id = ? AND to_actor_id = ? AND kind = ?", fromActorID, toActorID, kind).
		First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rel, nil
}

func (r *gormRelationshipRepository) FindPendingFrom(fromActorID string, kind domain.Kind) ([]*domain.Relationship, error) {
	var rels []*domain.Relationship
	err := r.db.Where("from_actor_id = ? AND kind = ? AND status = ?", fromActorID, kind, domain.StatusPending).
		Find(&rels).Error
	return rels, err
}

func (r *gormRelationshipRepository) FindPendingBetween(fromActorID string, toActorIDs []string, kind domain.Kind) ([]*domain.Relationship, error) {
	if len(toActorIDs) == 0 {
		return nil, nil
	}
	var rels []*domain.Relationship
	err := r.db.Where("from_actor_id = ? AND to_actor_id IN ? AND kind = ? AND status = ?",
		fromActorID, toActorIDs, kind, domain.StatusPending).Find(&rels).Error
	return rels, err
}

func (r *gormRelationshipRepository) UpdateStatus(id string, status domain.Status) error {
	return r.db.Model(&domain.Relationship{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *gormRelationshipRepository) ListFrom(actorIDs []string, kind domain.Kind, status *domain.Status) ([]*domain.Relationship, error) {
	return r.list("from_actor_id", actorIDs, kind, status)
}

func (r *gormRelationshipRepository) ListTo(actorIDs []string, kind domain.Kind, status *domain.Status) ([]*domain.Relationship, error) {
	return r.list("to_actor_id", actorIDs, kind, status)
}

func (r *gormRelationshipRepository) list(column string, actorIDs []string, kind domain.Kind, status *domain.Status) ([]*domain.Relationship, error) {
	if len(actorIDs) == 0 {
		return nil, nil
	}
	query := r.db.Where(column+" IN ? AND kind = ?", actorIDs, kind)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rels []*domain.Relationship
	err := query.Order("created_at DESC").Find(&rels).Error
	return rels, err
}
