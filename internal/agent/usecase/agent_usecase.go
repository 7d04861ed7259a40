package usecase

import (
	"fmt"

	"agentgraph-backend/internal/agent/domain"
	"agentgraph-backend/internal/agent/repository"
	identityusecase "agentgraph-backend/internal/identity/usecase"
	"agentgraph-backend/internal/shared/apperror"
)

// AgentUsecase manages agent definitions.
type AgentUsecase interface {
	Create(creatorRef, name, persona string) (*domain.Agent, error)
	Get(id string) (*domain.Agent, error)
	ListByCreator(creatorRef string) ([]*domain.Agent, error)
}

type agentUsecase struct {
	agentRepo repository.AgentRepository
	resolver  identityusecase.Resolver
}

func NewAgentUsecase(agentRepo repository.AgentRepository, resolver identityusecase.Resolver) AgentUsecase {
	return &agentUsecase{
		agentRepo: agentRepo,
		resolver:  resolver,
	}
}

func (u *agentUsecase) Create(creatorRef, name, persona string) (*domain.Agent, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: agent name is required", apperror.ErrInvalidArgument)
	}
	agent := &domain.Agent{
		Name:          name,
		Persona:       persona,
		CreatorUserID: u.resolver.Normalize(creatorRef),
	}
	if err := u.agentRepo.Create(agent); err != nil {
		return nil, err
	}
	// Materialize the graph actor eagerly so relationships can target the
	// agent right away.
	if _, err := u.resolver.ResolveAgentActor(agent.ID); err != nil {
		return nil, err
	}
	return agent, nil
}

func (u *agentUsecase) Get(id string) (*domain.Agent, error) {
	agent, err := u.agentRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, fmt.Errorf("%w: agent %s", apperror.ErrNotFound, id)
	}
	return agent, nil
}

func (u *agentUsecase) ListByCreator(creatorRef string) ([]*domain.Agent, error) {
	return u.agentRepo.FindByCreator(u.resolver.Normalize(creatorRef))
}
