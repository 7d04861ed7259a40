package api

import (
	"errors"
	"net/http"

	agentUsecase "agentgraph-backend/internal/agent/usecase"
	authUsecase "agentgraph-backend/internal/auth/usecase"
	feeddomain "agentgraph-backend/internal/feed/domain"
	feedUsecase "agentgraph-backend/internal/feed/usecase"
	identityUsecase "agentgraph-backend/internal/identity/usecase"
	monitordomain "agentgraph-backend/internal/monitor/domain"
	monitorUsecase "agentgraph-backend/internal/monitor/usecase"
	"agentgraph-backend/internal/notification"
	reldomain "agentgraph-backend/internal/relationship/domain"
	relUsecase "agentgraph-backend/internal/relationship/usecase"
	"agentgraph-backend/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

// Handler bundles the usecases behind the HTTP surface.
type Handler struct {
	authUsecase    authUsecase.AuthUsecase
	resolver       identityUsecase.Resolver
	agentUsecase   agentUsecase.AgentUsecase
	relUsecase     relUsecase.RelationshipUsecase
	feedUsecase    feedUsecase.FeedUsecase
	monitorUsecase monitorUsecase.MonitorUsecase
	notifService   *notification.Service
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	resolver identityUsecase.Resolver,
	agentUc agentUsecase.AgentUsecase,
	relUc relUsecase.RelationshipUsecase,
	feedUc feedUsecase.FeedUsecase,
	monitorUc monitorUsecase.MonitorUsecase,
	notifService *notification.Service,
) *Handler {
	return &Handler{
		authUsecase:    authUc,
		resolver:       resolver,
		agentUsecase:   agentUc,
		relUsecase:     relUc,
		feedUsecase:    feedUc,
		monitorUsecase: monitorUc,
		notifService:   notifService,
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	SetupRoutes(r, h)
	return r.Run(addr)
}

// respondError maps usecase error classes to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperror.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperror.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) resolveMyActor(c *gin.Context) {
	actor, err := h.resolver.ResolvePrimaryActor(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actor)
}

func (h *Handler) resolveAgentActor(c *gin.Context) {
	actor, err := h.resolver.ResolveAgentActor(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actor)
}

type createAgentRequest struct {
	Name    string `json:"name" binding:"required"`
	Persona string `json:"persona"`
}

func (h *Handler) createAgent(c *gin.Context) {
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent, err := h.agentUsecase.Create(c.GetString("userID"), req.Name, req.Persona)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (h *Handler) getAgent(c *gin.Context) {
	agent, err := h.agentUsecase.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *Handler) listAgents(c *gin.Context) {
	agents, err := h.agentUsecase.ListByCreator(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agents)
}

type createRelationshipRequest struct {
	ToActorID string `json:"to_actor_id" binding:"required"`
	Kind      string `json:"kind" binding:"required"`
}

func (h *Handler) createRelationship(c *gin.Context) {
	var req createRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := h.resolver.ResolvePrimaryActor(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	status, err := h.relUsecase.Create(from.ID, req.ToActorID, reldomain.Kind(req.Kind))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

type approvalRequest struct {
	FromActorID string `json:"from_actor_id" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
}

func (h *Handler) approveRelationship(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.relUsecase.Approve(c.GetString("userID"), req.FromActorID, reldomain.Kind(req.Kind)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *Handler) rejectRelationship(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.relUsecase.Reject(c.GetString("userID"), req.FromActorID, reldomain.Kind(req.Kind)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (h *Handler) listRelationships(c *gin.Context) {
	direction := relUsecase.Direction(c.DefaultQuery("direction", string(relUsecase.DirectionOutgoing)))
	kind := reldomain.Kind(c.Query("kind"))

	var status *reldomain.Status
	if raw := c.Query("status"); raw != "" {
		s := reldomain.Status(raw)
		status = &s
	}

	rels, err := h.relUsecase.List(c.GetString("userID"), direction, kind, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rels)
}

type createPostRequest struct {
	Body       string `json:"body" binding:"required"`
	Visibility string `json:"visibility"`
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := h.feedUsecase.CreateUserPost(c.GetString("userID"), req.Body, feeddomain.Visibility(req.Visibility))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) getPost(c *gin.Context) {
	post, err := h.feedUsecase.GetPost(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

type agentReplyRequest struct {
	ReplyToPostID string `json:"reply_to_post_id" binding:"required"`
	Body          string `json:"body" binding:"required"`
	Visibility    string `json:"visibility"`
	Engine        string `json:"engine"`
	Query         string `json:"query"`
}

func (h *Handler) createAgentReply(c *gin.Context) {
	var req agentReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := h.feedUsecase.CreateAgentReply(c.Param("id"), req.ReplyToPostID, req.Body,
		feeddomain.Visibility(req.Visibility), req.Engine, req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

type createMonitorRequest struct {
	AgentID        string `json:"agent_id" binding:"required"`
	SourcePostID   string `json:"source_post_id" binding:"required"`
	Engine         string `json:"engine" binding:"required"`
	Query          string `json:"query" binding:"required"`
	Params         string `json:"params"`
	CadenceMinutes int    `json:"cadence_minutes"`
	Scope          string `json:"scope"`
}

func (h *Handler) createMonitor(c *gin.Context) {
	var req createMonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	monitor, err := h.monitorUsecase.Create(monitorUsecase.CreateMonitorInput{
		AgentID:         req.AgentID,
		CreatedByUserID: c.GetString("userID"),
		SourcePostID:    req.SourcePostID,
		Engine:          req.Engine,
		Query:           req.Query,
		Params:          req.Params,
		CadenceMinutes:  req.CadenceMinutes,
		Scope:           monitordomain.Scope(req.Scope),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, monitor)
}

func (h *Handler) getMonitor(c *gin.Context) {
	monitor, err := h.monitorUsecase.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, monitor)
}

func (h *Handler) disableMonitor(c *gin.Context) {
	if err := h.monitorUsecase.Disable(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": false})
}

func (h *Handler) disableMonitorsForPost(c *gin.Context) {
	count, err := h.monitorUsecase.DisableForPost(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disabled": count})
}

func (h *Handler) listInbox(c *gin.Context) {
	messages, err := h.notifService.Inbox(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *Handler) markInboxRead(c *gin.Context) {
	if err := h.notifService.MarkRead(c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

type registerTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *Handler) registerDeviceToken(c *gin.Context) {
	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.notifService.RegisterDeviceToken(c.GetString("userID"), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registered": true})
}
