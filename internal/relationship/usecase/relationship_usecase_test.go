package usecase

import (
	"errors"
	"path/filepath"
	"testing"

	agentdomain "agentgraph-backend/internal/agent/domain"
	agentrepo "agentgraph-backend/internal/agent/repository"
	identitydomain "agentgraph-backend/internal/identity/domain"
	identityrepo "agentgraph-backend/internal/identity/repository"
	identityusecase "agentgraph-backend/internal/identity/usecase"
	"agentgraph-backend/internal/relationship/domain"
	"agentgraph-backend/internal/relationship/repository"
	"agentgraph-backend/internal/shared/apperror"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db       *gorm.DB
	uc       RelationshipUsecase
	resolver identityusecase.Resolver
	users    identityrepo.UserRepository
	actors   identityrepo.ActorRepository
	agents   agentrepo.AgentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "relationship_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&identitydomain.User{}, &identitydomain.Actor{}, &agentdomain.Agent{}, &domain.Relationship{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := identityrepo.NewUserRepository(db)
	actors := identityrepo.NewActorRepository(db)
	agents := agentrepo.NewAgentRepository(db)
	resolver := identityusecase.NewResolver(users, actors, agents)
	uc := NewRelationshipUsecase(repository.NewGormRelationshipRepository(db), resolver, agents)
	return &fixture{db: db, uc: uc, resolver: resolver, users: users, actors: actors, agents: agents}
}

func (f *fixture) newUserActor(t *testing.T, email string) (*identitydomain.User, *identitydomain.Actor) {
	t.Helper()
	user := &identitydomain.User{Email: email}
	if err := f.users.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	actor, err := f.resolver.ResolvePrimaryActor(user.ID)
	if err != nil {
		t.Fatalf("resolve actor: %v", err)
	}
	return user, actor
}

func (f *fixture) newAgentActor(t *testing.T, name, creatorID string) (*agentdomain.Agent, *identitydomain.Actor) {
	t.Helper()
	agent := &agentdomain.Agent{Name: name, CreatorUserID: creatorID}
	if err := f.agents.Create(agent); err != nil {
		t.Fatalf("create agent: %v", err)
	}
	actor, err := f.resolver.ResolveAgentActor(agent.ID)
	if err != nil {
		t.Fatalf("resolve agent actor: %v", err)
	}
	return agent, actor
}

func (f *fixture) edgeCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	f.db.Model(&domain.Relationship{}).Count(&count)
	return count
}

func TestCreateRejectsInvalidArguments(t *testing.T) {
	f := newFixture(t)
	_, a := f.newUserActor(t, "a@example.com")

	if _, err := f.uc.Create(a.ID, a.ID, domain.KindFollow); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("self-relationship should be invalid, got %v", err)
	}
	_, b := f.newUserActor(t, "b@example.com")
	if _, err := f.uc.Create(a.ID, b.ID, domain.Kind("admire")); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("unknown kind should be invalid, got %v", err)
	}
	if _, err := f.uc.Create(a.ID, "missing", domain.KindFollow); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unknown actor should be not found, got %v", err)
	}
	if got := f.edgeCount(t); got != 0 {
		t.Fatalf("no edges should exist after rejected creates, got %d", got)
	}
}

func TestRepeatedFollowCreateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	_, a := f.newUserActor(t, "a@example.com")
	_, b := f.newUserActor(t, "b@example.com")

	for i := 0; i < 3; i++ {
		status, err := f.uc.Create(a.ID, b.ID, domain.KindFollow)
		if err != nil {
			t.Fatalf("create #%d: %v", i, err)
		}
		if status != domain.StatusPending {
			t.Fatalf("follow to a user should be pending, got %s", status)
		}
	}
	if got := f.edgeCount(t); got != 1 {
		t.Fatalf("expected exactly one stored edge, got %d", got)
	}
}

func TestApproveFollowCreatesReciprocalEdge(t *testing.T) {
	f := newFixture(t)
	_, a := f.newUserActor(t, "a@example.com")
	userB, b := f.newUserActor(t, "b@example.com")

	if _, err := f.uc.Create(a.ID, b.ID, domain.KindFollow); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.uc.Approve(userB.ID, a.ID, domain.KindFollow); err != nil {
		t.Fatalf("approve: %v", err)
	}

	var forward, reverse domain.Relationship
	if err := f.db.Where("from_actor_id = ? AND to_actor_id = ?", a.ID, b.ID).First(&forward).Error; err != nil {
		t.Fatalf("forward edge missing: %v", err)
	}
	if forward.Status != domain.StatusAccepted {
		t.Fatalf("forward edge should be accepted, got %s", forward.Status)
	}
	if err := f.db.Where("from_actor_id = ? AND to_actor_id = ?", b.ID, a.ID).First(&reverse).Error; err != nil {
		t.Fatalf("reciprocal edge missing: %v", err)
	}
	if reverse.Status != domain.StatusAccepted {
		t.Fatalf("reciprocal edge should be accepted, got %s", reverse.Status)
	}
}

func TestFollowAgentAcceptedImmediately(t *testing.T) {
	f := newFixture(t)
	userA, a := f.newUserActor(t, "a@example.com")
	_, agentActor := f.newAgentActor(t, "newsbot", userA.ID)

	status, err := f.uc.Create(a.ID, agentActor.ID, domain.KindFollow)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if status != domain.StatusAccepted {
		t.Fatalf("following an agent should be accepted immediately, got %s", status)
	}
}

func TestAgentAccessOwnerIsAcceptedImmediately(t *testing.T) {
	f := newFixture(t)
	owner, ownerActor := f.newUserActor(t, "owner@example.com")
	_, agentActor := f.newAgentActor(t, "ownedbot", owner.ID)

	status, err := f.uc.Create(ownerActor.ID, agentActor.ID, domain.KindAgentAccess)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if status != domain.StatusAccepted {
		t.Fatalf("owner access should be accepted with no pending state, got %s", status)
	}
}

func TestAgentAccessApprovalFlow(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.newUserActor(t, "owner@example.com")
	_, requesterActor := f.newUserActor(t, "req@example.com")
	_, agentActor := f.newAgentActor(t, "guardedbot", owner.ID)

	status, err := f.uc.Create(requesterActor.ID, agentActor.ID, domain.KindAgentAccess)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if status != domain.StatusPending {
		t.Fatalf("non-owner access should be pending, got %s", status)
	}

	// A stranger cannot approve.
	stranger, _ := f.newUserActor(t, "stranger@example.com")
	if err := f.uc.Approve(stranger.ID, requesterActor.ID, domain.KindAgentAccess); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("stranger approval should be forbidden, got %v", err)
	}

	if err := f.uc.Approve(owner.ID, requesterActor.ID, domain.KindAgentAccess); err != nil {
		t.Fatalf("owner approve: %v", err)
	}

	// Re-requesting after approval is a no-op on the same accepted edge.
	status, err = f.uc.Create(requesterActor.ID, agentActor.ID, domain.KindAgentAccess)
	if err != nil {
		t.Fatalf("re-create: %v", err)
	}
	if status != domain.StatusAccepted {
		t.Fatalf("repeated request should report accepted, got %s", status)
	}
	if got := f.edgeCount(t); got != 1 {
		t.Fatalf("expected exactly one edge, got %d", got)
	}
}

func TestApproveCoversAllOfCallersAgents(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.newUserActor(t, "owner@example.com")
	_, requesterActor := f.newUserActor(t, "req@example.com")
	_, firstAgent := f.newAgentActor(t, "bot-one", owner.ID)
	_, secondAgent := f.newAgentActor(t, "bot-two", owner.ID)

	if _, err := f.uc.Create(requesterActor.ID, firstAgent.ID, domain.KindAgentAccess); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := f.uc.Create(requesterActor.ID, secondAgent.ID, domain.KindAgentAccess); err != nil {
		t.Fatalf("create second: %v", err)
	}

	if err := f.uc.Approve(owner.ID, requesterActor.ID, domain.KindAgentAccess); err != nil {
		t.Fatalf("approve: %v", err)
	}

	var pending int64
	f.db.Model(&domain.Relationship{}).Where("status = ?", domain.StatusPending).Count(&pending)
	if pending != 0 {
		t.Fatalf("one approval should cover both agents, %d still pending", pending)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	f := newFixture(t)
	_, a := f.newUserActor(t, "a@example.com")
	userB, b := f.newUserActor(t, "b@example.com")

	if _, err := f.uc.Create(a.ID, b.ID, domain.KindFollow); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.uc.Reject(userB.ID, a.ID, domain.KindFollow); err != nil {
		t.Fatalf("reject: %v", err)
	}

	var rel domain.Relationship
	if err := f.db.Where("from_actor_id = ?", a.ID).First(&rel).Error; err != nil {
		t.Fatalf("find edge: %v", err)
	}
	if rel.Status != domain.StatusRejected {
		t.Fatalf("edge should be rejected, got %s", rel.Status)
	}

	// Rejected edges are not pending: approving afterwards finds nothing.
	if err := f.uc.Approve(userB.ID, a.ID, domain.KindFollow); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("approve after reject should be not found, got %v", err)
	}
}

func TestListCoversLegacyActorRows(t *testing.T) {
	f := newFixture(t)
	userA, a := f.newUserActor(t, "a@example.com")
	_, b := f.newUserActor(t, "b@example.com")

	// A legacy duplicate row for user A, keyed by email, holds an old edge.
	legacy := &identitydomain.Actor{Type: identitydomain.ActorTypeUser, OwnerUserID: "a@example.com"}
	if err := f.actors.Create(legacy); err != nil {
		t.Fatalf("create legacy actor: %v", err)
	}
	if _, err := f.uc.Create(legacy.ID, b.ID, domain.KindFollow); err != nil {
		t.Fatalf("create legacy edge: %v", err)
	}
	if _, err := f.uc.Create(a.ID, b.ID, domain.KindFollow); err != nil {
		t.Fatalf("create primary edge: %v", err)
	}

	rels, err := f.uc.List(userA.ID, DirectionOutgoing, domain.KindFollow, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("expected edges from both actor rows, got %d", len(rels))
	}
}
