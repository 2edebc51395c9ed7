package models

import (
	"time"

	"gorm.io/datatypes"
)

// RoleAdmin is the role marker carried by admin access tokens.
const RoleAdmin = "admin"

// PermissionAll is the single coarse grant every admin currently holds.
const PermissionAll = "all"

// Admin is a back-office account. PasswordHash is never serialised to JSON.
type Admin struct {
	ID           string                      `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Email        string                      `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" bson:"email"`
	PasswordHash string                      `json:"-" gorm:"type:varchar(255);not null" bson:"passwordHash"`
	Name         string                      `json:"name" gorm:"type:varchar(255)" bson:"name"`
	Permissions  datatypes.JSONSlice[string] `json:"permissions" bson:"permissions"`
	CreatedAt    time.Time                   `json:"createdAt" bson:"createdAt"`
	LastLogin    *time.Time                  `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
}

// AdminProfile is the public view of an Admin.
type AdminProfile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

// Profile strips credentials from the admin record.
func (a *Admin) Profile() AdminProfile {
	return AdminProfile{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Permissions: []string(a.Permissions),
		CreatedAt:   a.CreatedAt,
		LastLogin:   a.LastLogin,
	}
}
