// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Remote gravatar URL right after registration, replaced with the
	// stored location once the user uploads their own image
	AvatarURL string `json:"avatarURL"`

	// Single-use token mailed to the user. The value stays on the record
	// after consumption so a replayed link maps to "already verified"
	// instead of a plain not-found
	VerificationToken string `gorm:"index" json:"-"`
	Verified          bool   `gorm:"default:false" json:"verified"`

	// Most recently issued session token. Empty after logout, which is
	// what invalidates old bearers regardless of their embedded expiry
	Token string `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
