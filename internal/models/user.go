// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Default images applied when a user leaves them empty.
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a Warbler account.
// Username and email are unique case-insensitively through their *_key columns.
// The email is never serialized here; only Account exposes it.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"not null" json:"username"`
	UsernameKey    string    `gorm:"not null;uniqueIndex:idx_users_username_key" json:"-"`
	Email          string    `gorm:"not null" json:"-"`
	EmailKey       string    `gorm:"not null;uniqueIndex:idx_users_email_key" json:"-"`
	Password       string    `gorm:"not null" json:"-"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// Account is the owner's view of their own user, with the email included.
type Account struct {
	*User
	Email string `json:"email"`
}

// Account wraps u for responses sent to u itself.
func (u *User) Account() *Account {
	return &Account{User: u, Email: u.Email}
}

// NormalizeKey returns the case-folded form used for uniqueness and lookups.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BeforeSave keeps the lookup keys and image defaults in sync.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.UsernameKey = NormalizeKey(u.Username)
	u.EmailKey = NormalizeKey(u.Email)
	if strings.TrimSpace(u.ImageURL) == "" {
		u.ImageURL = DefaultImageURL
	}
	if strings.TrimSpace(u.HeaderImageURL) == "" {
		u.HeaderImageURL = DefaultHeaderImageURL
	}
	return nil
}

// UserStats holds the counters shown on a profile.
type UserStats struct {
	Messages  int64 `json:"messages"`
	Following int64 `json:"following"`
	Followers int64 `json:"followers"`
	Likes     int64 `json:"likes"`
}
