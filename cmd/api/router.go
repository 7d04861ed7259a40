package api

import (
	"net/http"

	"agentgraph-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := delivery.NewAuthHandler(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", delivery.AuthMiddleware(h.authUsecase), authHandler.Me)
		}

		protected := api.Group("")
		protected.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			protected.GET("/actors/me", h.resolveMyActor)

			protected.POST("/agents", h.createAgent)
			protected.GET("/agents", h.listAgents)
			protected.GET("/agents/:id", h.getAgent)
			protected.GET("/agents/:id/actor", h.resolveAgentActor)
			protected.POST("/agents/:id/replies", h.createAgentReply)

			protected.POST("/relationships", h.createRelationship)
			protected.POST("/relationships/approve", h.approveRelationship)
			protected.POST("/relationships/reject", h.rejectRelationship)
			protected.GET("/relationships", h.listRelationships)

			protected.POST("/posts", h.createPost)
			protected.GET("/posts/:id", h.getPost)
			protected.POST("/posts/:id/monitors/disable", h.disableMonitorsForPost)

			protected.POST("/monitors", h.createMonitor)
			protected.GET("/monitors/:id", h.getMonitor)
			protected.POST("/monitors/:id/disable", h.disableMonitor)

			protected.GET("/inbox", h.listInbox)
			protected.POST("/inbox/:id/read", h.markInboxRead)

			protected.POST("/fcm/register", h.registerDeviceToken)
		}
	}
}
