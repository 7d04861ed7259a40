package domain

import "time"

// InboxMessage is a direct notification about a monitor update, delivered to
// the source post's author. At most one exists per (user, feed post); the
// composite unique index backs the insert-or-ignore delivery path.
type InboxMessage struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"uniqueIndex:ux_user_feed_post,priority:1;not null"`
	FeedPostID   string     `json:"feed_post_id" gorm:"uniqueIndex:ux_user_feed_post,priority:2;not null"`
	MonitorID    string     `json:"monitor_id" gorm:"index"`
	SourcePostID string     `json:"source_post_id" gorm:"index"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
}

// DeviceToken is a registered FCM push target for a user.
type DeviceToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
}
