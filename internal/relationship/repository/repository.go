package repository

import "agentgraph-backend/internal/relationship/domain"

// RelationshipRepository defines data access for relationship edges.
type RelationshipRepository interface {
	Create(rel *domain.Relationship) error
	FindByTriple(fromActorID, toActorID string, kind domain.Kind) (*domain.Relationship, error)
	// FindPendingFrom returns pending edges of the given kind originating
	// from the actor.
	FindPendingFrom(fromActorID string, kind domain.Kind) ([]*domain.Relationship, error)
	// FindPendingBetween returns the pending edges of the given kind from
	// the actor to any of the target actors.
	FindPendingBetween(fromActorID string, toActorIDs []string, kind domain.Kind) ([]*domain.Relationship, error)
	UpdateStatus(id string, status domain.Status) error
	// ListFrom / ListTo filter edges touching any of the caller's actor
	// rows. Status nil means any status.
	ListFrom(actorIDs []string, kind domain.Kind, status *domain.Status) ([]*domain.Relationship, error)
	ListTo(actorIDs []string, kind domain.Kind, status *domain.Status) ([]*domain.Relationship, error)
}
