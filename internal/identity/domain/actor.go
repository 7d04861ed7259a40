package domain

import "time"

// ActorType distinguishes human-owned actors from agent actors.
type ActorType string

const (
	ActorTypeUser  ActorType = "user"
	ActorTypeAgent ActorType = "agent"
)

// Actor is a node in the social graph. For user actors OwnerUserID holds the
// owning user reference; legacy rows may hold an email instead of the stable
// user ID, and several rows may exist for one owner. Reads collapse those
// duplicates to a single primary; there is deliberately no uniqueness
// constraint on OwnerUserID.
type Actor struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Type        ActorType `json:"type" gorm:"index;not null"`
	OwnerUserID string    `json:"owner_user_id,omitempty" gorm:"index"`
	AgentID     string    `json:"agent_id,omitempty" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
