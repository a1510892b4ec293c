package models

import "time"

// Like represents a user's like on a message.
// The combination of UserID and MessageID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_message" json:"user_id"`
	MessageID uint      `gorm:"not null;uniqueIndex:idx_likes_user_message;index" json:"message_id"`
	CreatedAt time.Time `json:"created_at"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message *Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the database table name for the Like model.
func (Like) TableName() string {
	return "likes"
}
