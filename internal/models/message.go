package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxMessageLength is the longest message text accepted, in characters.
const MaxMessageLength = 140

// Message is a short text post owned by exactly one user.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:140;not null" json:"text"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the database table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate stamps the creation time when the caller did not.
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
