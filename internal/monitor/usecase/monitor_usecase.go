package usecase

import (
	"fmt"
	"log"
	"time"

	agentrepo "agentgraph-backend/internal/agent/repository"
	"agentgraph-backend/internal/monitor/domain"
	"agentgraph-backend/internal/monitor/repository"
	"agentgraph-backend/internal/shared/apperror"
	"agentgraph-backend/internal/shared/events"
)

const defaultCadenceMinutes = 60

// CreateMonitorInput carries the explicit-creation parameters.
type CreateMonitorInput struct {
	AgentID         string
	CreatedByUserID string
	SourcePostID    string
	Engine          string
	Query           string
	Params          string
	CadenceMinutes  int
	Scope           domain.Scope
}

// MonitorUsecase manages the monitor registry. The scheduler owns running
// them.
type MonitorUsecase interface {
	Create(input CreateMonitorInput) (*domain.Monitor, error)
	Get(id string) (*domain.Monitor, error)
	Disable(id string) error
	DisableForPost(sourcePostID string) (int64, error)
	RegisterEventHandlers(dispatcher *events.Dispatcher)
}

type monitorUsecase struct {
	monitorRepo repository.MonitorRepository
	agentRepo   agentrepo.AgentRepository
}

func NewMonitorUsecase(monitorRepo repository.MonitorRepository, agentRepo agentrepo.AgentRepository) MonitorUsecase {
	return &monitorUsecase{
		monitorRepo: monitorRepo,
		agentRepo:   agentRepo,
	}
}

// RegisterEventHandlers subscribes the implicit-creation path: a public
// agent reply stands up a monitor for the replied-to post.
func (u *monitorUsecase) RegisterEventHandlers(dispatcher *events.Dispatcher) {
	dispatcher.OnAgentRepliedPublicly(func(ev events.AgentRepliedPublicly) error {
		engine := ev.Engine
		if engine == "" {
			engine = "google_news"
		}
		monitor, err := u.Create(CreateMonitorInput{
			AgentID:         ev.AgentID,
			CreatedByUserID: ev.AuthorUserID,
			SourcePostID:    ev.PostID,
			Engine:          engine,
			Query:           ev.Query,
			CadenceMinutes:  defaultCadenceMinutes,
			Scope:           domain.ScopePublic,
		})
		if err != nil {
			return err
		}
		log.Printf("[Monitor] Monitor %s watching %q for post %s", monitor.ID, monitor.Query, monitor.SourcePostID)
		return nil
	})
}

func (u *monitorUsecase) Create(input CreateMonitorInput) (*domain.Monitor, error) {
	if input.AgentID == "" || input.SourcePostID == "" || input.Query == "" || input.Engine == "" {
		return nil, fmt.Errorf("%w: agent, source post, engine and query are required", apperror.ErrInvalidArgument)
	}

	agent, err := u.agentRepo.FindByID(input.AgentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, fmt.Errorf("%w: agent %s", apperror.ErrNotFound, input.AgentID)
	}

	// One monitor per (agent, post); re-creation returns the existing one.
	existing, err := u.monitorRepo.FindByAgentAndPost(input.AgentID, input.SourcePostID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	cadence := input.CadenceMinutes
	if cadence <= 0 {
		cadence = defaultCadenceMinutes
	}
	scope := input.Scope
	if scope == "" {
		scope = domain.ScopePublic
	}

	monitor := &domain.Monitor{
		AgentID:         input.AgentID,
		CreatedByUserID: input.CreatedByUserID,
		SourcePostID:    input.SourcePostID,
		Engine:          input.Engine,
		Query:           input.Query,
		Params:          input.Params,
		CadenceMinutes:  cadence,
		// Due immediately: the first run only establishes the seen
		// baseline, so there is no reason to wait a full cadence.
		NextRunAt: time.Now(),
		Enabled:   true,
		Scope:     scope,
	}
	if err := u.monitorRepo.Create(monitor); err != nil {
		return nil, err
	}
	return monitor, nil
}

func (u *monitorUsecase) Get(id string) (*domain.Monitor, error) {
	monitor, err := u.monitorRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if monitor == nil {
		return nil, fmt.Errorf("%w: monitor %s", apperror.ErrNotFound, id)
	}
	return monitor, nil
}

func (u *monitorUsecase) Disable(id string) error {
	if _, err := u.Get(id); err != nil {
		return err
	}
	return u.monitorRepo.Disable(id)
}

func (u *monitorUsecase) DisableForPost(sourcePostID string) (int64, error) {
	return u.monitorRepo.DisableForPost(sourcePostID)
}
