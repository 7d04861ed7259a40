package main

import (
	"log"

	api "agentgraph-backend/cmd/api"
	agentdomain "agentgraph-backend/internal/agent/domain"
	agentRepo "agentgraph-backend/internal/agent/repository"
	agentUsecase "agentgraph-backend/internal/agent/usecase"
	authUsecase "agentgraph-backend/internal/auth/usecase"
	feeddomain "agentgraph-backend/internal/feed/domain"
	feedRepo "agentgraph-backend/internal/feed/repository"
	feedUsecase "agentgraph-backend/internal/feed/usecase"
	identitydomain "agentgraph-backend/internal/identity/domain"
	identityRepo "agentgraph-backend/internal/identity/repository"
	identityUsecase "agentgraph-backend/internal/identity/usecase"
	monitordomain "agentgraph-backend/internal/monitor/domain"
	monitorRepo "agentgraph-backend/internal/monitor/repository"
	monitorScheduler "agentgraph-backend/internal/monitor/scheduler"
	monitorUsecase "agentgraph-backend/internal/monitor/usecase"
	"agentgraph-backend/internal/notification"
	notifdomain "agentgraph-backend/internal/notification/domain"
	notifRepo "agentgraph-backend/internal/notification/repository"
	reldomain "agentgraph-backend/internal/relationship/domain"
	relRepo "agentgraph-backend/internal/relationship/repository"
	relUsecase "agentgraph-backend/internal/relationship/usecase"
	"agentgraph-backend/internal/shared/events"
	"agentgraph-backend/pkg/ai"
	"agentgraph-backend/pkg/broadcast"
	"agentgraph-backend/pkg/config"
	"agentgraph-backend/pkg/database"
	"agentgraph-backend/pkg/fcm"
	"agentgraph-backend/pkg/search"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&identitydomain.User{},
		&identitydomain.Actor{},
		&agentdomain.Agent{},
		&reldomain.Relationship{},
		&feeddomain.Post{},
		&monitordomain.Monitor{},
		&monitordomain.SeenItem{},
		&notifdomain.InboxMessage{},
		&notifdomain.DeviceToken{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := identityRepo.NewUserRepository(db)
	actorRepository := identityRepo.NewActorRepository(db)
	agentRepository := agentRepo.NewAgentRepository(db)
	relationshipRepository := relRepo.NewGormRelationshipRepository(db)
	postRepository := feedRepo.NewPostRepository(db)
	monitorRepository := monitorRepo.NewGormMonitorRepository(db)
	seenItemRepository := monitorRepo.NewGormSeenItemRepository(db)
	inboxRepository := notifRepo.NewInboxRepository(db)
	deviceTokenRepository := notifRepo.NewDeviceTokenRepository(db)

	// Domain event dispatcher connecting monitors, feed and notifications
	dispatcher := events.NewDispatcher()

	// Initialize external collaborators
	searchService := search.NewSerpAPIService(cfg.SerpAPIKey)

	var composer ai.ComposerService
	if cfg.GeminiAPIKey != "" {
		composer = ai.NewFallbackService(
			ai.NewGeminiService(cfg.GeminiAPIKey),
			ai.NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel),
		)
	} else {
		composer = ai.NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
		log.Println("[WARN] GEMINI_API_KEY not set, composing with Ollama only")
	}

	var publisher broadcast.Publisher = broadcast.NoopPublisher{}
	if cfg.GoogleProjectID != "" {
		pubsubPublisher, err := broadcast.NewPubSubPublisher(cfg.GoogleProjectID, cfg.FeedTopic, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize Pub/Sub publisher (broadcast disabled): %v", err)
		} else {
			publisher = pubsubPublisher
		}
	} else {
		log.Println("[WARN] GoogleProjectID not configured, feed broadcast disabled")
	}

	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		}
	}

	// Initialize use cases (dependency injection)
	resolver := identityUsecase.NewResolver(userRepository, actorRepository, agentRepository)
	agentUsecaseInstance := agentUsecase.NewAgentUsecase(agentRepository, resolver)
	relationshipUsecaseInstance := relUsecase.NewRelationshipUsecase(relationshipRepository, resolver, agentRepository)
	feedUsecaseInstance := feedUsecase.NewFeedUsecase(postRepository, resolver, dispatcher)
	monitorUsecaseInstance := monitorUsecase.NewMonitorUsecase(monitorRepository, agentRepository)
	monitorUsecaseInstance.RegisterEventHandlers(dispatcher)

	notifService := notification.NewService(inboxRepository, deviceTokenRepository, postRepository, resolver, publisher, fcmClient)
	notifService.RegisterEventHandlers(dispatcher)

	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)

	// Start the monitor scheduler (leader-gated)
	scheduler := monitorScheduler.NewMonitorScheduler(
		monitorRepository,
		seenItemRepository,
		agentRepository,
		postRepository,
		resolver,
		searchService,
		composer,
		dispatcher,
		monitorScheduler.Options{
			Leader:        cfg.SchedulerLeader,
			Tick:          cfg.SchedulerTick,
			BatchSize:     cfg.SchedulerBatchSize,
			JitterMinutes: cfg.MonitorJitterMinutes,
			ItemCap:       cfg.MonitorItemCap,
		},
	)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(
		authUsecaseInstance,
		resolver,
		agentUsecaseInstance,
		relationshipUsecaseInstance,
		feedUsecaseInstance,
		monitorUsecaseInstance,
		notifService,
	)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
