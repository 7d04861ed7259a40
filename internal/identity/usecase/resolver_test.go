package usecase

import (
	"path/filepath"
	"testing"

	agentdomain "agentgraph-backend/internal/agent/domain"
	agentrepo "agentgraph-backend/internal/agent/repository"
	"agentgraph-backend/internal/identity/domain"
	"agentgraph-backend/internal/identity/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "identity_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Actor{}, &agentdomain.Agent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestResolver(t *testing.T) (Resolver, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewResolver(
		repository.NewUserRepository(db),
		repository.NewActorRepository(db),
		agentrepo.NewAgentRepository(db),
	), db
}

func TestNormalizeResolvesEmailToStableID(t *testing.T) {
	res, db := newTestResolver(t)

	user := &domain.User{Email: "ana@example.com", DisplayName: "Ana"}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if got := res.Normalize("ana@example.com"); got != user.ID {
		t.Fatalf("expected email to normalize to %s, got %s", user.ID, got)
	}
	if got := res.Normalize(user.ID); got != user.ID {
		t.Fatalf("stable id should pass through, got %s", got)
	}
	// Unknown email fails soft: the raw reference passes through.
	if got := res.Normalize("ghost@example.com"); got != "ghost@example.com" {
		t.Fatalf("unresolvable ref should pass through, got %s", got)
	}
}

func TestResolvePrimaryActorCreatesThenReuses(t *testing.T) {
	res, db := newTestResolver(t)

	user := &domain.User{Email: "bo@example.com"}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	first, err := res.ResolvePrimaryActor(user.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.OwnerUserID != user.ID || first.Type != domain.ActorTypeUser {
		t.Fatalf("unexpected actor %+v", first)
	}

	// Resolving by email must land on the same actor row.
	second, err := res.ResolvePrimaryActor("bo@example.com")
	if err != nil {
		t.Fatalf("resolve by email: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected actor %s, got %s", first.ID, second.ID)
	}

	var count int64
	db.Model(&domain.Actor{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 actor row, got %d", count)
	}
}

func TestResolvePrimaryActorCollapsesDuplicatesAndHeals(t *testing.T) {
	res, db := newTestResolver(t)
	actorRepo := repository.NewActorRepository(db)

	user := &domain.User{Email: "cy@example.com"}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Legacy rows: one keyed by email, one by the stable id.
	legacy := &domain.Actor{Type: domain.ActorTypeUser, OwnerUserID: "cy@example.com"}
	if err := actorRepo.Create(legacy); err != nil {
		t.Fatalf("create legacy actor: %v", err)
	}
	canonical := &domain.Actor{Type: domain.ActorTypeUser, OwnerUserID: user.ID}
	if err := actorRepo.Create(canonical); err != nil {
		t.Fatalf("create canonical actor: %v", err)
	}

	primary, err := res.ResolvePrimaryActor("cy@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if primary.ID != canonical.ID {
		t.Fatalf("expected canonical-owner row %s as primary, got %s", canonical.ID, primary.ID)
	}

	// The heal pass rewrites legacy owner refs to the canonical id.
	res.(*resolver).healOwners([]*domain.Actor{legacy, canonical}, user.ID)
	healed, err := actorRepo.FindByID(legacy.ID)
	if err != nil {
		t.Fatalf("find healed: %v", err)
	}
	if healed.OwnerUserID != user.ID {
		t.Fatalf("expected healed owner %s, got %s", user.ID, healed.OwnerUserID)
	}
}

func TestResolveAgentActorLazySingleton(t *testing.T) {
	res, db := newTestResolver(t)

	creator := &domain.User{Email: "dee@example.com"}
	if err := repository.NewUserRepository(db).Create(creator); err != nil {
		t.Fatalf("create user: %v", err)
	}
	agent := &agentdomain.Agent{Name: "newsbot", CreatorUserID: creator.ID}
	if err := agentrepo.NewAgentRepository(db).Create(agent); err != nil {
		t.Fatalf("create agent: %v", err)
	}

	first, err := res.ResolveAgentActor(agent.ID)
	if err != nil {
		t.Fatalf("resolve agent actor: %v", err)
	}
	if first.Type != domain.ActorTypeAgent || first.AgentID != agent.ID {
		t.Fatalf("unexpected actor %+v", first)
	}
	if first.OwnerUserID != creator.ID {
		t.Fatalf("owner should default to creator %s, got %s", creator.ID, first.OwnerUserID)
	}

	second, err := res.ResolveAgentActor(agent.ID)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected singleton agent actor, got %s and %s", first.ID, second.ID)
	}

	if _, err := res.ResolveAgentActor("missing-agent"); err == nil {
		t.Fatal("expected error for unknown agent")
	}
}

func TestOwnedActorIDsCoversLegacyRows(t *testing.T) {
	res, db := newTestResolver(t)
	actorRepo := repository.NewActorRepository(db)

	user := &domain.User{Email: "ed@example.com"}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	a := &domain.Actor{Type: domain.ActorTypeUser, OwnerUserID: user.ID}
	b := &domain.Actor{Type: domain.ActorTypeUser, OwnerUserID: "ed@example.com"}
	if err := actorRepo.Create(a); err != nil {
		t.Fatalf("create actor: %v", err)
	}
	if err := actorRepo.Create(b); err != nil {
		t.Fatalf("create actor: %v", err)
	}

	ids, err := res.OwnedActorIDs("ed@example.com")
	if err != nil {
		t.Fatalf("owned actor ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected both rows, got %v", ids)
	}

	// The stable id is what authenticated callers actually arrive with; the
	// email-keyed legacy row must be visible from that direction too.
	ids, err = res.OwnedActorIDs(user.ID)
	if err != nil {
		t.Fatalf("owned actor ids by stable id: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected both rows for the stable id, got %v", ids)
	}
}

func TestResolvePrimaryActorByStableIDReusesLegacyRow(t *testing.T) {
	res, db := newTestResolver(t)
	actorRepo := repository.NewActorRepository(db)

	user := &domain.User{Email: "fay@example.com"}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	legacy := &domain.Actor{Type: domain.ActorTypeUser, OwnerUserID: "fay@example.com"}
	if err := actorRepo.Create(legacy); err != nil {
		t.Fatalf("create legacy actor: %v", err)
	}

	primary, err := res.ResolvePrimaryActor(user.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if primary.ID != legacy.ID {
		t.Fatalf("expected the legacy row %s, got %s", legacy.ID, primary.ID)
	}

	var count int64
	db.Model(&domain.Actor{}).Count(&count)
	if count != 1 {
		t.Fatalf("resolving by stable id must not mint a duplicate, got %d rows", count)
	}
}
