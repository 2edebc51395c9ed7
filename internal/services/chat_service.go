package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gnsons/internal/models"
	"gnsons/internal/repositories"

	"go.uber.org/zap"
)

// SendMessageInput is a chat message to be stored.
type SendMessageInput struct {
	ConversationID string   `json:"conversationId"`
	SenderID       string   `json:"senderId"`
	SenderName     string   `json:"senderName"`
	RecipientID    string   `json:"recipientId"`
	Message        string   `json:"message" validate:"required"`
	Attachments    []string `json:"attachments"`
}

// ChatService stores customer and store messages. Delivery is by polling.
type ChatService struct {
	messages repositories.MessageRepository
	log      *zap.Logger
	now      func() time.Time
}

// NewChatService creates a new ChatService.
func NewChatService(messages repositories.MessageRepository, log *zap.Logger) *ChatService {
	return &ChatService{messages: messages, log: log, now: time.Now}
}

// Send stores a message. The conversation id defaults to "<sender>-<recipient>".
func (s *ChatService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	in.SenderID = strings.TrimSpace(in.SenderID)
	in.RecipientID = strings.TrimSpace(in.RecipientID)
	if in.SenderID == "" || in.RecipientID == "" || strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: senderId, recipientId and message are required", ErrValidation)
	}

	msg := &models.Message{
		ConversationID: strings.TrimSpace(in.ConversationID),
		SenderID:       in.SenderID,
		SenderName:     strings.TrimSpace(in.SenderName),
		RecipientID:    in.RecipientID,
		Message:        in.Message,
		Attachments:    in.Attachments,
		Timestamp:      s.now(),
	}
	if msg.ConversationID == "" {
		msg.ConversationID = in.SenderID + "-" + in.RecipientID
	}
	if msg.SenderName == "" {
		msg.SenderName = "Customer"
	}
	if msg.Attachments == nil {
		msg.Attachments = []string{}
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Conversation returns a conversation's messages, oldest first.
func (s *ChatService) Conversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	return s.messages.ListByConversation(ctx, conversationID)
}

// Conversations groups every message by conversation, most recent activity first.
func (s *ChatService) Conversations(ctx context.Context) ([]models.Conversation, error) {
	all, err := s.messages.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return groupConversations(all), nil
}

// groupConversations expects msgs newest first.
func groupConversations(msgs []models.Message) []models.Conversation {
	index := make(map[string]int)
	var convs []models.Conversation

	for _, m := range msgs {
		i, ok := index[m.ConversationID]
		if !ok {
			customerID := m.SenderID
			if customerID == models.AdminParticipantID {
				customerID = m.RecipientID
			}
			convs = append(convs, models.Conversation{
				ConversationID:  m.ConversationID,
				CustomerID:      customerID,
				LastMessage:     m.Message,
				LastMessageTime: m.Timestamp,
			})
			i = len(convs) - 1
			index[m.ConversationID] = i
		}

		c := &convs[i]
		if c.CustomerName == "" && m.SenderID != models.AdminParticipantID {
			c.CustomerName = m.SenderName
		}
		if !m.IsRead && m.RecipientID == models.AdminParticipantID {
			c.UnreadCount++
		}
		c.Messages = append(c.Messages, m)
	}

	for i := range convs {
		msgs := convs[i].Messages
		for l, r := 0, len(msgs)-1; l < r; l, r = l+1, r-1 {
			msgs[l], msgs[r] = msgs[r], msgs[l]
		}
		if convs[i].CustomerName == "" {
			convs[i].CustomerName = "Customer"
		}
	}
	sort.SliceStable(convs, func(a, b int) bool {
		return convs[a].LastMessageTime.After(convs[b].LastMessageTime)
	})
	return convs
}

// MarkRead flags a message as read.
func (s *ChatService) MarkRead(ctx context.Context, id string) error {
	return s.messages.MarkRead(ctx, id, s.now())
}

// Delete removes a message.
func (s *ChatService) Delete(ctx context.Context, id string) error {
	return s.messages.Delete(ctx, id)
}
