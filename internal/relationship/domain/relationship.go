package domain

import "time"

// Kind is the relationship edge type.
type Kind string

const (
	KindFollow      Kind = "follow"
	KindBlock       Kind = "block"
	KindMute        Kind = "mute"
	KindAgentAccess Kind = "agent_access"
)

// Valid reports whether k is one of the enumerated kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFollow, KindBlock, KindMute, KindAgentAccess:
		return true
	}
	return false
}

// Status is the approval state of an edge.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Relationship is a directed, typed, status-bearing edge between two actors.
// An identical (from, to, kind) triple is stored at most once; repeated
// creation is a no-op returning the existing status.
type Relationship struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	FromActorID string    `json:"from_actor_id" gorm:"index;not null"`
	ToActorID   string    `json:"to_actor_id" gorm:"index;not null"`
	Kind        Kind      `json:"kind" gorm:"index;not null"`
	Status      Status    `json:"status" gorm:"default:accepted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
