package domain

import "time"

// Agent is an autonomous actor definition. Persona flavors the text its
// monitors compose; CreatorUserID is the default owner of its graph actor.
type Agent struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Persona       string    `json:"persona"`
	CreatorUserID string    `json:"creator_user_id" gorm:"index;not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
