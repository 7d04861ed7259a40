package usecase

import (
	"fmt"
	"log"
	"strings"

	agentrepo "agentgraph-backend/internal/agent/repository"
	"agentgraph-backend/internal/identity/domain"
	"agentgraph-backend/internal/identity/repository"
	"agentgraph-backend/internal/shared/apperror"
)

// Resolver canonicalizes user references and resolves graph actors for users
// and agents.
type Resolver interface {
	// Normalize maps a user reference (stable ID or legacy email) to the
	// canonical user ID. Unresolvable references pass through unchanged;
	// the result is best-effort, not a verified identity.
	Normalize(ref string) string

	// ResolvePrimaryActor returns the primary user actor for a reference,
	// creating one when none exists. Duplicate rows per owner are collapsed
	// on read and healed toward the canonical owner form in the background.
	ResolvePrimaryActor(ref string) (*domain.Actor, error)

	// ResolveAgentActor returns the singleton agent actor for an agent,
	// creating it lazily with the agent's creator as owner.
	ResolveAgentActor(agentID string) (*domain.Actor, error)

	// OwnedActorIDs returns every actor row ID that represents the given
	// caller, covering duplicate and legacy-owner rows.
	OwnedActorIDs(ref string) ([]string, error)

	// FindActor looks up an actor row by ID; nil when absent.
	FindActor(id string) (*domain.Actor, error)
}

type resolver struct {
	userRepo  repository.UserRepository
	actorRepo repository.ActorRepository
	agentRepo agentrepo.AgentRepository
}

func NewResolver(userRepo repository.UserRepository, actorRepo repository.ActorRepository, agentRepo agentrepo.AgentRepository) Resolver {
	return &resolver{
		userRepo:  userRepo,
		actorRepo: actorRepo,
		agentRepo: agentRepo,
	}
}

func (r *resolver) Normalize(ref string) string {
	if !strings.Contains(ref, "@") {
		return ref
	}
	user, err := r.userRepo.FindByEmail(ref)
	if err != nil || user == nil {
		// Fail soft: an unresolvable email keeps its raw form.
		return ref
	}
	return user.ID
}

// ownerRefs lists the owner values an actor row for this caller may carry:
// the canonical user ID plus any legacy email form. Both directions matter,
// since a caller arrives by stable ID while legacy rows may still be keyed by
// email.
func (r *resolver) ownerRefs(ref string) (canonical string, owners []string) {
	canonical = r.Normalize(ref)
	owners = []string{canonical}
	if ref != canonical {
		owners = append(owners, ref)
		return canonical, owners
	}
	if user, err := r.userRepo.FindByID(canonical); err == nil && user != nil && user.Email != "" {
		owners = append(owners, user.Email)
	}
	return canonical, owners
}

func (r *resolver) ResolvePrimaryActor(ref string) (*domain.Actor, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty user reference", apperror.ErrInvalidArgument)
	}

	canonical, owners := r.ownerRefs(ref)
	actors, err := r.actorRepo.FindUserActorsByOwners(owners)
	if err != nil {
		return nil, err
	}

	if len(actors) > 0 {
		// Rows arrive most recently updated first, so the first canonical
		// match is the primary; legacy-owner rows only win when no
		// canonical row exists.
		primary := actors[0]
		for _, a := range actors {
			if a.OwnerUserID == canonical {
				primary = a
				break
			}
		}
		go r.healOwners(actors, canonical)
		return primary, nil
	}

	// Two concurrent callers may both reach this point and each create a
	// row. That duplicate-row risk is accepted: the read path above
	// collapses duplicates, so correctness does not depend on exclusion.
	actor := &domain.Actor{
		Type:        domain.ActorTypeUser,
		OwnerUserID: canonical,
	}
	if err := r.actorRepo.Create(actor); err != nil {
		return nil, err
	}
	return actor, nil
}

// healOwners rewrites legacy owner references to the canonical user ID so
// that rows converge over time. Failures are logged and retried implicitly on
// the next resolve.
func (r *resolver) healOwners(actors []*domain.Actor, canonical string) {
	for _, a := range actors {
		if a.OwnerUserID == canonical {
			continue
		}
		if err := r.actorRepo.UpdateOwner(a.ID, canonical); err != nil {
			log.Printf("[Identity] Failed to heal owner for actor %s: %v", a.ID, err)
		}
	}
}

func (r *resolver) ResolveAgentActor(agentID string) (*domain.Actor, error) {
	actor, err := r.actorRepo.FindAgentActor(agentID)
	if err != nil {
		return nil, err
	}
	if actor != nil {
		return actor, nil
	}

	agent, err := r.agentRepo.FindByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, fmt.Errorf("%w: agent %s", apperror.ErrNotFound, agentID)
	}

	actor = &domain.Actor{
		Type:        domain.ActorTypeAgent,
		AgentID:     agentID,
		OwnerUserID: r.Normalize(agent.CreatorUserID),
	}
	if err := r.actorRepo.Create(actor); err != nil {
		return nil, err
	}
	return actor, nil
}

func (r *resolver) FindActor(id string) (*domain.Actor, error) {
	return r.actorRepo.FindByID(id)
}

func (r *resolver) OwnedActorIDs(ref string) ([]string, error) {
	_, owners := r.ownerRefs(ref)
	actors, err := r.actorRepo.FindUserActorsByOwners(owners)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(actors))
	for _, a := range actors {
		ids = append(ids, a.ID)
	}
	return ids, nil
}
