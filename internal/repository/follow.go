package repository

import (
	"context"

	"warbler/internal/models"

	"gorm.io/gorm"
)

// FollowRepository manages the directed follow graph.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Delete(ctx context.Context, followerID, followedID uint) (bool, error)
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts follower -> followed. A repeated edge is a conflict and a
// missing endpoint is reported as not found.
func (r *followRepository) Create(ctx context.Context, followerID, followedID uint) error {
	edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).Omit("Follower", "Followed").Create(&edge).Error
	switch {
	case err == nil:
		return nil
	case isUniqueConstraintError(err):
		return models.NewConflictError("Already following this user")
	case isForeignKeyError(err):
		return models.NewNotFoundError("User", followedID)
	default:
		return models.NewInternalError(err)
	}
}

// Delete removes the edge and reports whether one existed.
func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Following lists the users userID follows.
func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.user_being_followed_id = users.id").
		Where("follows.user_following_id = ?", userID).
		Order("users.username_key ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Followers lists the users following userID.
func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.user_following_id = users.id").
		Where("follows.user_being_followed_id = ?", userID).
		Order("users.username_key ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
