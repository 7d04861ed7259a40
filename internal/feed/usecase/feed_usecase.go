package usecase

import (
	"fmt"

	"agentgraph-backend/internal/feed/domain"
	"agentgraph-backend/internal/feed/repository"
	identitydomain "agentgraph-backend/internal/identity/domain"
	identityusecase "agentgraph-backend/internal/identity/usecase"
	"agentgraph-backend/internal/shared/apperror"
	"agentgraph-backend/internal/shared/events"
)

// FeedUsecase creates feed posts and announces public agent replies.
type FeedUsecase interface {
	// CreateUserPost publishes a post authored by the caller's primary actor.
	CreateUserPost(callerRef, body string, visibility domain.Visibility) (*domain.Post, error)

	// CreateAgentReply publishes a reply authored by an agent's actor. A
	// public reply to a user's post dispatches AgentRepliedPublicly, which
	// stands up a monitor for the replied-to post.
	CreateAgentReply(agentID, replyToPostID, body string, visibility domain.Visibility, engine, query string) (*domain.Post, error)

	GetPost(id string) (*domain.Post, error)
}

type feedUsecase struct {
	postRepo   repository.PostRepository
	resolver   identityusecase.Resolver
	dispatcher *events.Dispatcher
}

func NewFeedUsecase(postRepo repository.PostRepository, resolver identityusecase.Resolver, dispatcher *events.Dispatcher) FeedUsecase {
	return &feedUsecase{
		postRepo:   postRepo,
		resolver:   resolver,
		dispatcher: dispatcher,
	}
}

func (u *feedUsecase) CreateUserPost(callerRef, body string, visibility domain.Visibility) (*domain.Post, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: empty post body", apperror.ErrInvalidArgument)
	}
	actor, err := u.resolver.ResolvePrimaryActor(callerRef)
	if err != nil {
		return nil, err
	}
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}
	post := &domain.Post{
		AuthorActorID: actor.ID,
		Body:          body,
		Visibility:    visibility,
	}
	if err := u.postRepo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (u *feedUsecase) CreateAgentReply(agentID, replyToPostID, body string, visibility domain.Visibility, engine, query string) (*domain.Post, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: empty post body", apperror.ErrInvalidArgument)
	}
	source, err := u.postRepo.FindByID(replyToPostID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: post %s", apperror.ErrNotFound, replyToPostID)
	}

	actor, err := u.resolver.ResolveAgentActor(agentID)
	if err != nil {
		return nil, err
	}
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}
	post := &domain.Post{
		AuthorActorID: actor.ID,
		Body:          body,
		Visibility:    visibility,
		ReplyToPostID: replyToPostID,
	}
	if err := u.postRepo.Create(post); err != nil {
		return nil, err
	}

	if visibility == domain.VisibilityPublic && query != "" {
		authorUserID := ""
		if sourceAuthor, err := u.resolver.FindActor(source.AuthorActorID); err == nil && sourceAuthor != nil && sourceAuthor.Type == identitydomain.ActorTypeUser {
			authorUserID = sourceAuthor.OwnerUserID
		}
		u.dispatcher.PublishAgentRepliedPublicly(events.AgentRepliedPublicly{
			AgentID:      agentID,
			AuthorUserID: authorUserID,
			PostID:       replyToPostID,
			Engine:       engine,
			Query:        query,
		})
	}
	return post, nil
}

func (u *feedUsecase) GetPost(id string) (*domain.Post, error) {
	post, err := u.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", apperror.ErrNotFound, id)
	}
	return post, nil
}
