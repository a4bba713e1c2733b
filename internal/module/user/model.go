// Package user owns accounts and authentication: email/password
// registration, Google sign-in and access tokens.
package user

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of a user account.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// User represents a registered account.
type User struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email string    `json:"email" gorm:"uniqueIndex;not null"`
	Name  string    `json:"name" gorm:"not null"`

	// OAuthProvider and OAuthID are set for Google accounts,
	// PasswordHash for email accounts. An account created via Google
	// has no password.
	OAuthProvider *string `json:"oauth_provider,omitempty" gorm:"column:oauth_provider"`
	OAuthID       *string `json:"-" gorm:"column:oauth_id"`
	PasswordHash  *string `json:"-" gorm:"column:password_hash"`

	Status Status `json:"status" gorm:"not null;default:'active'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// IsEmailUser reports whether the account registered with a password.
func (u *User) IsEmailUser() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	return u.Status == StatusActive
}
