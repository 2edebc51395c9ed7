package models

import "time"

// ContactStatus tracks how far a contact submission has been handled.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// Valid reports whether s is a known contact status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}

// Contact is a submitted contact-form entry.
type Contact struct {
	ID        string        `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name      string        `json:"name" gorm:"not null" bson:"name"`
	Email     string        `json:"email" gorm:"type:varchar(255);not null" bson:"email"`
	Phone     string        `json:"phone,omitempty" bson:"phone,omitempty"`
	Subject   string        `json:"subject" bson:"subject"`
	Message   string        `json:"message" gorm:"not null" bson:"message"`
	Status    ContactStatus `json:"status" gorm:"type:varchar(16)" bson:"status"`
	CreatedAt time.Time     `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}
