package usecase

import (
	"fmt"
	"log"

	agentrepo "agentgraph-backend/internal/agent/repository"
	identitydomain "agentgraph-backend/internal/identity/domain"
	identityusecase "agentgraph-backend/internal/identity/usecase"
	"agentgraph-backend/internal/relationship/domain"
	"agentgraph-backend/internal/relationship/repository"
	"agentgraph-backend/internal/shared/apperror"
)

// Direction selects which side of an edge the caller's actors are on.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// RelationshipUsecase owns the relationship approval state machine.
type RelationshipUsecase interface {
	// Create inserts an edge, deriving its initial status, or returns the
	// existing edge's status when the triple already exists.
	Create(fromActorID, toActorID string, kind domain.Kind) (domain.Status, error)

	// Approve transitions pending edges targeting the caller (or the
	// caller's agents) to accepted. For follows it also repairs the
	// reciprocal edge.
	Approve(callerRef, fromActorID string, kind domain.Kind) error

	// Reject transitions the matching pending edge to rejected. Terminal:
	// only a fresh Create can re-offer the relationship.
	Reject(callerRef, fromActorID string, kind domain.Kind) error

	List(callerRef string, direction Direction, kind domain.Kind, status *domain.Status) ([]*domain.Relationship, error)
}

type relationshipUsecase struct {
	relRepo   repository.RelationshipRepository
	resolver  identityusecase.Resolver
	agentRepo agentrepo.AgentRepository
}

func NewRelationshipUsecase(relRepo repository.RelationshipRepository, resolver identityusecase.Resolver, agentRepo agentrepo.AgentRepository) RelationshipUsecase {
	return &relationshipUsecase{
		relRepo:   relRepo,
		resolver:  resolver,
		agentRepo: agentRepo,
	}
}

func (u *relationshipUsecase) Create(fromActorID, toActorID string, kind domain.Kind) (domain.Status, error) {
	if fromActorID == toActorID {
		return "", fmt.Errorf("%w: cannot create a relationship with yourself", apperror.ErrInvalidArgument)
	}
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown relationship kind %q", apperror.ErrInvalidArgument, kind)
	}

	// Idempotency: an identical triple is never stored twice. Client
	// retries see the current status of the existing edge.
	existing, err := u.relRepo.FindByTriple(fromActorID, toActorID, kind)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.Status, nil
	}

	from, err := u.mustFindActor(fromActorID)
	if err != nil {
		return "", err
	}
	to, err := u.mustFindActor(toActorID)
	if err != nil {
		return "", err
	}

	status, err := u.deriveStatus(from, to, kind)
	if err != nil {
		return "", err
	}

	rel := &domain.Relationship{
		FromActorID: fromActorID,
		ToActorID:   toActorID,
		Kind:        kind,
		Status:      status,
	}
	if err := u.relRepo.Create(rel); err != nil {
		return "", err
	}
	return status, nil
}

func (u *relationshipUsecase) deriveStatus(from, to *identitydomain.Actor, kind domain.Kind) (domain.Status, error) {
	switch kind {
	case domain.KindAgentAccess:
		owner, err := u.agentOwner(to)
		if err != nil {
			return "", err
		}
		// The agent's owner gets access without approval.
		if u.resolver.Normalize(from.OwnerUserID) == owner {
			return domain.StatusAccepted, nil
		}
		return domain.StatusPending, nil
	case domain.KindFollow:
		// Following an agent takes effect immediately; following a human
		// awaits their approval.
		if to.Type != identitydomain.ActorTypeUser {
			return domain.StatusAccepted, nil
		}
		return domain.StatusPending, nil
	default:
		// Blocks and mutes are unilateral.
		return domain.StatusAccepted, nil
	}
}

// agentOwner resolves the canonical owner of an agent actor.
func (u *relationshipUsecase) agentOwner(actor *identitydomain.Actor) (string, error) {
	if actor.Type != identitydomain.ActorTypeAgent || actor.AgentID == "" {
		return "", fmt.Errorf("%w: actor %s is not an agent", apperror.ErrInvalidArgument, actor.ID)
	}
	agent, err := u.agentRepo.FindByID(actor.AgentID)
	if err != nil {
		return "", err
	}
	if agent == nil {
		return "", fmt.Errorf("%w: agent %s", apperror.ErrNotFound, actor.AgentID)
	}
	return u.resolver.Normalize(agent.CreatorUserID), nil
}

func (u *relationshipUsecase) Approve(callerRef, fromActorID string, kind domain.Kind) error {
	switch kind {
	case domain.KindAgentAccess:
		return u.approveAgentAccess(callerRef, fromActorID)
	case domain.KindFollow:
		return u.approveFollow(callerRef, fromActorID)
	default:
		return fmt.Errorf("%w: kind %q has no approval step", apperror.ErrInvalidArgument, kind)
	}
}

// approveAgentAccess accepts every pending access request from the actor
// that targets an agent owned by the caller. One approval can cover requests
// to several of the caller's agents.
func (u *relationshipUsecase) approveAgentAccess(callerRef, fromActorID string) error {
	caller := u.resolver.Normalize(callerRef)

	pending, err := u.relRepo.FindPendingFrom(fromActorID, domain.KindAgentAccess)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return fmt.Errorf("%w: no pending access request from actor %s", apperror.ErrNotFound, fromActorID)
	}

	approved := 0
	for _, rel := range pending {
		target, err := u.mustFindActor(rel.ToActorID)
		if err != nil {
			log.Printf("[Relationship] Skipping edge %s: %v", rel.ID, err)
			continue
		}
		owner, err := u.agentOwner(target)
		if err != nil || owner != caller {
			continue
		}
		if err := u.relRepo.UpdateStatus(rel.ID, domain.StatusAccepted); err != nil {
			return err
		}
		approved++
	}
	if approved == 0 {
		return fmt.Errorf("%w: caller does not own the requested agents", apperror.ErrForbidden)
	}
	return nil
}

// approveFollow accepts the pending follow targeting the caller and repairs
// the reciprocal edge: approved plain follows are mutual. This is the only
// place the graph actively restores symmetry.
func (u *relationshipUsecase) approveFollow(callerRef, fromActorID string) error {
	ownedIDs, err := u.resolver.OwnedActorIDs(callerRef)
	if err != nil {
		return err
	}
	pending, err := u.relRepo.FindPendingBetween(fromActorID, ownedIDs, domain.KindFollow)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return fmt.Errorf("%w: no pending follow from actor %s", apperror.ErrNotFound, fromActorID)
	}

	rel := pending[0]
	if err := u.relRepo.UpdateStatus(rel.ID, domain.StatusAccepted); err != nil {
		return err
	}

	primary, err := u.resolver.ResolvePrimaryActor(callerRef)
	if err != nil {
		return err
	}
	reciprocal, err := u.relRepo.FindByTriple(primary.ID, fromActorID, domain.KindFollow)
	if err != nil {
		return err
	}
	if reciprocal == nil {
		return u.relRepo.Create(&domain.Relationship{
			FromActorID: primary.ID,
			ToActorID:   fromActorID,
			Kind:        domain.KindFollow,
			Status:      domain.StatusAccepted,
		})
	}
	if reciprocal.Status != domain.StatusAccepted {
		return u.relRepo.UpdateStatus(reciprocal.ID, domain.StatusAccepted)
	}
	return nil
}

func (u *relationshipUsecase) Reject(callerRef, fromActorID string, kind domain.Kind) error {
	switch kind {
	case domain.KindAgentAccess:
		caller := u.resolver.Normalize(callerRef)
		pending, err := u.relRepo.FindPendingFrom(fromActorID, kind)
		if err != nil {
			return err
		}
		for _, rel := range pending {
			target, err := u.mustFindActor(rel.ToActorID)
			if err != nil {
				continue
			}
			if owner, err := u.agentOwner(target); err == nil && owner == caller {
				return u.relRepo.UpdateStatus(rel.ID, domain.StatusRejected)
			}
		}
		return fmt.Errorf("%w: no pending access request from actor %s", apperror.ErrNotFound, fromActorID)
	case domain.KindFollow:
		ownedIDs, err := u.resolver.OwnedActorIDs(callerRef)
		if err != nil {
			return err
		}
		pending, err := u.relRepo.FindPendingBetween(fromActorID, ownedIDs, kind)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return fmt.Errorf("%w: no pending follow from actor %s", apperror.ErrNotFound, fromActorID)
		}
		return u.relRepo.UpdateStatus(pending[0].ID, domain.StatusRejected)
	default:
		return fmt.Errorf("%w: kind %q has no approval step", apperror.ErrInvalidArgument, kind)
	}
}

func (u *relationshipUsecase) List(callerRef string, direction Direction, kind domain.Kind, status *domain.Status) ([]*domain.Relationship, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown relationship kind %q", apperror.ErrInvalidArgument, kind)
	}
	// A stored edge may reference any of several rows that all represent
	// this caller, so the whole owned set is resolved before filtering.
	ownedIDs, err := u.resolver.OwnedActorIDs(callerRef)
	if err != nil {
		return nil, err
	}
	switch direction {
	case DirectionOutgoing:
		return u.relRepo.ListFrom(ownedIDs, kind, status)
	case DirectionIncoming:
		return u.relRepo.ListTo(ownedIDs, kind, status)
	default:
		return nil, fmt.Errorf("%w: unknown direction %q", apperror.ErrInvalidArgument, direction)
	}
}

func (u *relationshipUsecase) mustFindActor(id string) (*identitydomain.Actor, error) {
	actor, err := u.resolver.FindActor(id)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: actor %s", apperror.ErrNotFound, id)
	}
	return actor, nil
}
