package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminParticipantID identifies the store side of every conversation.
const AdminParticipantID = "admin"

// Message is one chat entry between a customer and the store.
type Message struct {
	ID             string                      `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	ConversationID string                      `json:"conversationId" gorm:"type:varchar(255);index;not null" bson:"conversationId"`
	SenderID       string                      `json:"senderId" gorm:"type:varchar(255);not null" bson:"senderId"`
	SenderName     string                      `json:"senderName" bson:"senderName"`
	RecipientID    string                      `json:"recipientId" gorm:"type:varchar(255);not null" bson:"recipientId"`
	Message        string                      `json:"message" gorm:"not null" bson:"message"`
	IsRead         bool                        `json:"isRead" bson:"isRead"`
	ReadAt         *time.Time                  `json:"readAt,omitempty" bson:"readAt,omitempty"`
	Attachments    datatypes.JSONSlice[string] `json:"attachments" bson:"attachments"`
	Timestamp      time.Time                   `json:"timestamp" gorm:"column:sent_at;index" bson:"timestamp"`
}

// Conversation summarises the messages sharing a ConversationID.
type Conversation struct {
	ConversationID  string    `json:"conversationId"`
	CustomerID      string    `json:"customerId"`
	CustomerName    string    `json:"customerName"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
	Messages        []Message `json:"messages"`
}
