package repositories

import (
	"context"
	"fmt"
	"time"

	"gnsons/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{db: db}
}

func (r *GORMMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByConversation returns the conversation oldest first.
func (r *GORMMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Order("sent_at ASC").Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation %s: %w", conversationID, err)
	}
	return msgs, nil
}

// ListAll returns every message, newest first.
func (r *GORMMessageRepository) ListAll(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.db.WithContext(ctx).Order("sent_at DESC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (r *GORMMessageRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return rowsOrNotFound(res, "message", id)
}

func (r *GORMMessageRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id)
	return rowsOrNotFound(res, "message", id)
}

func rowsOrNotFound(res *gorm.DB, kind, id string) error {
	if res.Error != nil {
		return fmt.Errorf("failed to write %s %s: %w", kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
