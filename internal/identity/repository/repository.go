package repository

import "agentgraph-backend/internal/identity/domain"

// UserRepository defines data access for users.
type UserRepository interface {
	Create(user *domain.User) error
	FindByEmail(email string) (*domain.User, error)
	FindByID(id string) (*domain.User, error)
	Update(user *domain.User) error
}

// ActorRepository defines data access for actors.
type ActorRepository interface {
	Create(actor *domain.Actor) error
	FindByID(id string) (*domain.Actor, error)
	// FindUserActorsByOwners returns all user-type actors whose owner field
	// matches any of the given references, most recently updated first.
	FindUserActorsByOwners(owners []string) ([]*domain.Actor, error)
	FindAgentActor(agentID string) (*domain.Actor, error)
	UpdateOwner(actorID, ownerUserID string) error
}
