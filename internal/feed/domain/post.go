package domain

import "time"

// Visibility controls who can see a post.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Post is a feed entry authored by a user or agent actor. Monitor updates
// are posts whose author is the monitor's agent actor.
type Post struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	AuthorActorID string     `json:"author_actor_id" gorm:"index;not null"`
	Body          string     `json:"body" gorm:"not null"`
	Visibility    Visibility `json:"visibility" gorm:"default:public"`
	ReplyToPostID string     `json:"reply_to_post_id,omitempty" gorm:"index"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
