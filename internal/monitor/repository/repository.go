package repository

import (
	"time"

	"agentgraph-backend/internal/monitor/domain"
)

// MonitorRepository defines data access for monitors.
type MonitorRepository interface {
	Create(monitor *domain.Monitor) error
	FindByID(id string) (*domain.Monitor, error)
	// FindByAgentAndPost returns an existing monitor for the pair, enabled
	// or not, so that implicit creation stays idempotent.
	FindByAgentAndPost(agentID, sourcePostID string) (*domain.Monitor, error)
	// FindDue returns enabled monitors with next_run_at <= now, oldest
	// first, capped at limit.
	FindDue(now time.Time, limit int) ([]*domain.Monitor, error)
	// MarkRun persists the schedule advance after a run, successful or not.
	MarkRun(id string, lastRunAt, nextRunAt time.Time) error
	Disable(id string) error
	DisableForPost(sourcePostID string) (int64, error)
}

// SeenItemRepository is the dedup store: a persistent fingerprint set per
// monitor with insert-or-ignore semantics.
type SeenItemRepository interface {
	Has(monitorID, itemKey string) (bool, error)
	MarkSeen(monitorID string, itemKeys []string) error
}
