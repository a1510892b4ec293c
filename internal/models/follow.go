package models

import "time"

// Follow is a directed edge: FollowerID follows FollowedID.
// The composite primary key keeps at most one edge per ordered pair.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false;column:user_following_id" json:"user_following_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false;column:user_being_followed_id;index" json:"user_being_followed_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followed *User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the database table name for the Follow model.
func (Follow) TableName() string {
	return "follows"
}
