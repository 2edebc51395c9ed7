package repositories

import (
	"context"
	"time"

	"gnsons/internal/models"
)

// MessageRepository defines the interface for chat message storage.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
	ListAll(ctx context.Context) ([]models.Message, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
