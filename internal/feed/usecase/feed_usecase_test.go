package usecase

import (
	"errors"
	"path/filepath"
	"testing"

	agentdomain "agentgraph-backend/internal/agent/domain"
	agentrepo "agentgraph-backend/internal/agent/repository"
	"agentgraph-backend/internal/feed/domain"
	"agentgraph-backend/internal/feed/repository"
	identitydomain "agentgraph-backend/internal/identity/domain"
	identityrepo "agentgraph-backend/internal/identity/repository"
	identityusecase "agentgraph-backend/internal/identity/usecase"
	"agentgraph-backend/internal/shared/apperror"
	"agentgraph-backend/internal/shared/events"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	uc       FeedUsecase
	resolver identityusecase.Resolver
	user     *identitydomain.User
	agent    *agentdomain.Agent
	replied  []events.AgentRepliedPublicly
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "feed_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&identitydomain.User{}, &identitydomain.Actor{}, &agentdomain.Agent{}, &domain.Post{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := identityrepo.NewUserRepository(db)
	actors := identityrepo.NewActorRepository(db)
	agents := agentrepo.NewAgentRepository(db)
	resolver := identityusecase.NewResolver(users, actors, agents)

	user := &identitydomain.User{Email: "poster@example.com"}
	if err := users.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	agent := &agentdomain.Agent{Name: "scout", CreatorUserID: user.ID}
	if err := agents.Create(agent); err != nil {
		t.Fatalf("create agent: %v", err)
	}

	f := &fixture{resolver: resolver, user: user, agent: agent}
	dispatcher := events.NewDispatcher()
	dispatcher.OnAgentRepliedPublicly(func(ev events.AgentRepliedPublicly) error {
		f.replied = append(f.replied, ev)
		return nil
	})
	f.uc = NewFeedUsecase(repository.NewPostRepository(db), resolver, dispatcher)
	return f
}

func TestCreateUserPost(t *testing.T) {
	f := newFixture(t)

	post, err := f.uc.CreateUserPost(f.user.Email, "hello feed", "")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.Visibility != domain.VisibilityPublic {
		t.Fatalf("expected public default, got %s", post.Visibility)
	}

	actor, err := f.resolver.ResolvePrimaryActor(f.user.ID)
	if err != nil {
		t.Fatalf("resolve actor: %v", err)
	}
	if post.AuthorActorID != actor.ID {
		t.Fatalf("post should be authored by the caller's actor")
	}

	if _, err := f.uc.CreateUserPost(f.user.Email, "", ""); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("empty body should be invalid, got %v", err)
	}
}

func TestPublicAgentReplyAnnouncesItself(t *testing.T) {
	f := newFixture(t)
	source, err := f.uc.CreateUserPost(f.user.Email, "anyone tracking SpaceX?", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	reply, err := f.uc.CreateAgentReply(f.agent.ID, source.ID, "on it", domain.VisibilityPublic, "google_news", "SpaceX")
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if reply.ReplyToPostID != source.ID {
		t.Fatalf("reply should reference the source post")
	}

	if len(f.replied) != 1 {
		t.Fatalf("expected one AgentRepliedPublicly event, got %d", len(f.replied))
	}
	ev := f.replied[0]
	if ev.AgentID != f.agent.ID || ev.PostID != source.ID || ev.Query != "SpaceX" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.AuthorUserID != f.user.ID {
		t.Fatalf("event should credit the source author, got %s", ev.AuthorUserID)
	}
}

func TestPrivateOrQuerylessReplyStaysQuiet(t *testing.T) {
	f := newFixture(t)
	source, err := f.uc.CreateUserPost(f.user.Email, "anyone tracking SpaceX?", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	if _, err := f.uc.CreateAgentReply(f.agent.ID, source.ID, "psst", domain.VisibilityPrivate, "google_news", "SpaceX"); err != nil {
		t.Fatalf("private reply: %v", err)
	}
	if _, err := f.uc.CreateAgentReply(f.agent.ID, source.ID, "just chatting", domain.VisibilityPublic, "", ""); err != nil {
		t.Fatalf("queryless reply: %v", err)
	}

	if len(f.replied) != 0 {
		t.Fatalf("neither reply should announce itself, got %d events", len(f.replied))
	}
}

func TestReplyToMissingPost(t *testing.T) {
	f := newFixture(t)
	if _, err := f.uc.CreateAgentReply(f.agent.ID, "missing", "hi", domain.VisibilityPublic, "", ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
