package notification

import (
	"context"
	"log"

	feedrepo "agentgraph-backend/internal/feed/repository"
	identitydomain "agentgraph-backend/internal/identity/domain"
	identityusecase "agentgraph-backend/internal/identity/usecase"
	"agentgraph-backend/internal/notification/domain"
	"agentgraph-backend/internal/notification/repository"
	"agentgraph-backend/internal/shared/events"
	"agentgraph-backend/pkg/broadcast"
	"agentgraph-backend/pkg/fcm"
)

// Service consumes MonitorProducedPost events: it broadcasts the feed event
// and delivers at most one inbox message (plus a best-effort push) to the
// source post's author.
type Service struct {
	inboxRepo  repository.InboxRepository
	tokenRepo  repository.DeviceTokenRepository
	postRepo   feedrepo.PostRepository
	resolver   identityusecase.Resolver
	publisher  broadcast.Publisher
	fcmClient  *fcm.Client
	inboxLimit int
}

func NewService(
	inboxRepo repository.InboxRepository,
	tokenRepo repository.DeviceTokenRepository,
	postRepo feedrepo.PostRepository,
	resolver identityusecase.Resolver,
	publisher broadcast.Publisher,
	fcmClient *fcm.Client,
) *Service {
	return &Service{
		inboxRepo:  inboxRepo,
		tokenRepo:  tokenRepo,
		postRepo:   postRepo,
		resolver:   resolver,
		publisher:  publisher,
		fcmClient:  fcmClient,
		inboxLimit: 50,
	}
}

// RegisterEventHandlers subscribes the service to monitor post events.
func (s *Service) RegisterEventHandlers(dispatcher *events.Dispatcher) {
	dispatcher.OnMonitorProducedPost(s.handleMonitorPost)
}

func (s *Service) handleMonitorPost(ev events.MonitorProducedPost) error {
	ctx := context.Background()

	agentActor, err := s.resolver.ResolveAgentActor(ev.AgentID)
	actorID := ""
	if err == nil {
		actorID = agentActor.ID
	}
	s.publisher.Publish(ctx, broadcast.Event{
		Type:         "monitor_update",
		PostID:       ev.FeedPostID,
		ActorID:      actorID,
		MonitorID:    ev.MonitorID,
		SourcePostID: ev.SourcePostID,
		Title:        ev.Title,
	})

	// Inbox delivery targets the source post's author; if the author
	// cannot be resolved to a user there is nobody to notify.
	userID, ok := s.sourceAuthorUserID(ev.SourcePostID)
	if !ok {
		return nil
	}

	delivered, err := s.inboxRepo.Deliver(&domain.InboxMessage{
		UserID:       userID,
		FeedPostID:   ev.FeedPostID,
		MonitorID:    ev.MonitorID,
		SourcePostID: ev.SourcePostID,
		Title:        ev.Title,
		Body:         ev.Body,
	})
	if err != nil {
		return err
	}
	if !delivered {
		// Already delivered for this (user, feed post) pair.
		return nil
	}

	s.pushToDevices(ctx, userID, ev)
	return nil
}

func (s *Service) sourceAuthorUserID(sourcePostID string) (string, bool) {
	post, err := s.postRepo.FindByID(sourcePostID)
	if err != nil || post == nil {
		return "", false
	}
	actor, err := s.resolver.FindActor(post.AuthorActorID)
	if err != nil || actor == nil || actor.Type != identitydomain.ActorTypeUser {
		return "", false
	}
	return s.resolver.Normalize(actor.OwnerUserID), true
}

func (s *Service) pushToDevices(ctx context.Context, userID string, ev events.MonitorProducedPost) {
	if s.fcmClient == nil {
		return
	}
	tokens, err := s.tokenRepo.GetTokensByUserID(userID)
	if err != nil {
		log.Printf("[Notification] Error getting device tokens for user %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	failedTokens, err := s.fcmClient.SendToDevices(ctx, tokens, fcm.NotificationData{
		Title: ev.Title,
		Body:  ev.Body,
		Data: map[string]string{
			"type":         "monitor_update",
			"feed_post_id": ev.FeedPostID,
			"monitor_id":   ev.MonitorID,
		},
	})
	if err != nil {
		log.Printf("[Notification] Error pushing to devices for user %s: %v", userID, err)
		return
	}
	for _, token := range failedTokens {
		s.tokenRepo.DeleteToken(token)
	}
}

// Inbox returns the user's most recent inbox messages.
func (s *Service) Inbox(userID string) ([]*domain.InboxMessage, error) {
	return s.inboxRepo.ListByUser(userID, s.inboxLimit)
}

// MarkRead marks one of the user's inbox messages as read.
func (s *Service) MarkRead(userID, id string) error {
	return s.inboxRepo.MarkRead(userID, id)
}

// RegisterDeviceToken stores an FCM token for the user.
func (s *Service) RegisterDeviceToken(userID, token string) error {
	return s.tokenRepo.Register(userID, token)
}
