package repository

import (
	"fmt"
	"time"

	"agentgraph-backend/internal/notification/domain"
	"agentgraph-backend/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InboxRepository defines data access for inbox messages.
type InboxRepository interface {
	// Deliver inserts a message unless one already exists for the same
	// (user, feed post). Returns true when a row was written.
	Deliver(msg *domain.InboxMessage) (bool, error)
	ListByUser(userID string, limit int) ([]*domain.InboxMessage, error)
	MarkRead(userID, id string) error
}

// DeviceTokenRepository defines data access for push tokens.
type DeviceTokenRepository interface {
	Register(userID, token string) error
	GetTokensByUserID(userID string) ([]string, error)
	DeleteToken(token string) error
}

type inboxRepository struct {
	db *gorm.DB
}

func NewInboxRepository(db *gorm.DB) InboxRepository {
	return &inboxRepository{db: db}
}

func (r *inboxRepository) Deliver(msg *domain.InboxMessage) (bool, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now()
	// Duplicate delivery is skipped silently: the existing row already
	// represents the desired state.
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(msg)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *inboxRepository) ListByUser(userID string, limit int) ([]*domain.InboxMessage, error) {
	var messages []*domain.InboxMessage
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

func (r *inboxRepository) MarkRead(userID, id string) error {
	result := r.db.Model(&domain.InboxMessage{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: inbox message %s", apperror.ErrNotFound, id)
	}
	return nil
}

type deviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db}
}

func (r *deviceTokenRepository) Register(userID, token string) error {
	row := &domain.DeviceToken{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id"}),
	}).Create(row).Error
}

func (r *deviceTokenRepository) GetTokensByUserID(userID string) ([]string, error) {
	var rows []domain.DeviceToken
	if err := r.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, row.Token)
	}
	return tokens, nil
}

func (r *deviceTokenRepository) DeleteToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&domain.DeviceToken{}).Error
}
