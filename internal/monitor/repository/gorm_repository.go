package repository

import (
	"errors"
	"time"

	"agentgraph-backend/internal/monitor/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormMonitorRepository implements MonitorRepository using GORM
type gormMonitorRepository struct {
	db *gorm.DB
}

func NewGormMonitorRepository(db *gorm.DB) MonitorRepository {
	return &gormMonitorRepository{db: db}
}

func (r *gormMonitorRepository) Create(monitor *domain.Monitor) error {
	if monitor.ID == "" {
		monitor.ID = uuid.New().String()
	}
	monitor.CreatedAt = time.Now()
	monitor.UpdatedAt = time.Now()
	return r.db.Create(monitor).Error
}

func (r *gormMonitorRepository) FindByID(id string) (*domain.Monitor, error) {
	var monitor domain.Monitor
	err := r.db.Where("id = ?", id).First(&monitor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &monitor, nil
}

func (r *gormMonitorRepository) FindByAgentAndPost(agentID, sourcePostID string) (*domain.Monitor, error) {
	var monitor domain.Monitor
	err := r.db.Where("agent_id = ? AND source_post_id = ?", agentID, sourcePostID).
		First(&monitor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &monitor, nil
}

func (r *gormMonitorRepository) FindDue(now time.Time, limit int) ([]*domain.Monitor, error) {
	var monitors []*domain.Monitor
	err := r.db.Where("enabled = ? AND next_run_at <= ?", true, now).
		Order("next_run_at ASC").Limit(limit).Find(&monitors).Error
	return monitors, err
}

func (r *gormMonitorRepository) MarkRun(id string, lastRunAt, nextRunAt time.Time) error {
	return r.db.Model(&domain.Monitor{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_run_at": lastRunAt,
			"next_run_at": nextRunAt,
			"updated_at":  time.Now(),
		}).Error
}

func (r *gormMonitorRepository) Disable(id string) error {
	return r.db.Model(&domain.Monitor{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"enabled":    false,
			"updated_at": time.Now(),
		}).Error
}

func (r *gormMonitorRepository) DisableForPost(sourcePostID string) (int64, error) {
	result := r.db.Model(&domain.Monitor{}).
		Where("source_post_id = ? AND enabled = ?", sourcePostID, true).
		Updates(map[string]interface{}{
			"enabled":    false,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// gormSeenItemRepository implements SeenItemRepository using GORM
type gormSeenItemRepository struct {
	db *gorm.DB
}

func NewGormSeenItemRepository(db *gorm.DB) SeenItemRepository {
	return &gormSeenItemRepository{db: db}
}

func (r *gormSeenItemRepository) Has(monitorID, itemKey string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.SeenItem{}).
		Where("monitor_id = ? AND item_key = ?", monitorID, itemKey).
		Count(&count).Error
	return count > 0, err
}

// MarkSeen inserts fingerprints, ignoring keys already present. A duplicate
// insert already represents the desired state.
func (r *gormSeenItemRepository) MarkSeen(monitorID string, itemKeys []string) error {
	if len(itemKeys) == 0 {
		return nil
	}
	rows := make([]domain.SeenItem, 0, len(itemKeys))
	now := time.Now()
	for _, key := range itemKeys {
		rows = append(rows, domain.SeenItem{
			MonitorID: monitorID,
			ItemKey:   key,
			CreatedAt: now,
		})
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
