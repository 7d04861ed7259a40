package domain

import "time"

// Scope controls who sees a monitor's updates.
type Scope string

const (
	ScopePublic  Scope = "public"
	ScopePrivate Scope = "private"
)

// Monitor is a standing subscription: an agent polling an external search
// engine on behalf of a source post. Disabling is soft; the scheduler never
// deletes monitors.
type Monitor struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	AgentID         string     `json:"agent_id" gorm:"index;not null"`
	CreatedByUserID string     `json:"created_by_user_id,omitempty" gorm:"index"`
	SourcePostID    string     `json:"source_post_id" gorm:"index;not null"`
	Engine          string     `json:"engine" gorm:"not null"`
	Query           string     `json:"query" gorm:"not null"`
	Params          string     `json:"params,omitempty"`
	CadenceMinutes  int        `json:"cadence_minutes" gorm:"not null"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	NextRunAt       time.Time  `json:"next_run_at" gorm:"index;not null"`
	Enabled         bool       `json:"enabled" gorm:"default:true"`
	Scope           Scope      `json:"scope" gorm:"default:public"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SeenItem records that a monitor has surfaced (or baselined) an item. Once
// a key is present it is permanently excluded from "fresh" for that monitor.
type SeenItem struct {
	MonitorID string    `json:"monitor_id" gorm:"primaryKey"`
	ItemKey   string    `json:"item_key" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}
