package domain

import "time"

// User is a human account. Email is kept as an alternate historical key:
// foreign keys elsewhere may hold either the stable ID or the email, and the
// stable ID is canonical.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
