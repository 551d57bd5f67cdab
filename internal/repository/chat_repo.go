package repository

import (
	"context"
	"errors"

	"tyrehub/internal/models"

	"gorm.io/gorm"
)

type ChatSessionRepo interface {
	Create(ctx context.Context, s *models.ChatSession) error
	GetByID(ctx context.Context, id uint) (*models.ChatSession, error)
	List(ctx context.Context) ([]models.ChatSession, error)
}

type chatSessionRepo struct{ db *gorm.DB }

func NewChatSessionRepo(db *gorm.DB) ChatSessionRepo { return &chatSessionRepo{db: db} }

func (r *chatSessionRepo) Create(ctx context.Context, s *models.ChatSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *chatSessionRepo) GetByID(ctx context.Context, id uint) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *chatSessionRepo) List(ctx context.Context) ([]models.ChatSession, error) {
	var list []models.ChatSession
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

type ChatMessageRepo interface {
	Create(ctx context.Context, m *models.ChatMessage) error
	// ListBySession returns the append-only log in creation order.
	ListBySession(ctx context.Context, sessionID uint) ([]models.ChatMessage, error)
}

type chatMessageRepo struct{ db *gorm.DB }

func NewChatMessageRepo(db *gorm.DB) ChatMessageRepo { return &chatMessageRepo{db: db} }

func (r *chatMessageRepo) Create(ctx context.Context, m *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *chatMessageRepo) ListBySession(ctx context.Context, sessionID uint) ([]models.ChatMessage, error) {
	var rows []models.ChatMessage
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id ASC").Find(&rows).Error
	return rows, err
}
