package repository

import (
	"errors"
	"time"

	"agentgraph-backend/internal/feed/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostRepository defines data access for feed posts.
type PostRepository interface {
	Create(post *domain.Post) error
	FindByID(id string) (*domain.Post, error)
	FindByAuthor(actorID string, limit int) ([]*domain.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	return r.db.Create(post).Error
}

func (r *postRepository) FindByID(id string) (*domain.Post, error) {
	var post domain.Post
	err := r.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindByAuthor(actorID string, limit int) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := r.db.Where("author_actor_id = ?", actorID).
		Order("created_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}
