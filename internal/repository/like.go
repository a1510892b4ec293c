package repository

import (
	"context"

	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository manages the user -> message like relation.
type LikeRepository interface {
	Like(ctx context.Context, userID, messageID uint) (bool, error)
	Unlike(ctx context.Context, userID, messageID uint) (bool, error)
	Exists(ctx context.Context, userID, messageID uint) (bool, error)
	LikedMessages(ctx context.Context, userID uint) ([]models.Message, error)
	LikedMessageIDs(ctx context.Context, userID uint, messageIDs []uint) ([]uint, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Like records the like and reports whether a new row was written. Liking
// twice is a no-op.
func (r *likeRepository) Like(ctx context.Context, userID, messageID uint) (bool, error) {
	like := models.Like{UserID: userID, MessageID: messageID}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like)
	if res.Error != nil {
		if isForeignKeyError(res.Error) {
			return false, models.NewNotFoundError("Message", messageID)
		}
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Unlike removes the like and reports whether one existed.
func (r *likeRepository) Unlike(ctx context.Context, userID, messageID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, messageID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// LikedMessages returns the messages userID has liked, newest first.
func (r *likeRepository) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("messages.timestamp DESC").
		Order("messages.id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// LikedMessageIDs returns the subset of messageIDs that userID has liked.
func (r *likeRepository) LikedMessageIDs(ctx context.Context, userID uint, messageIDs []uint) ([]uint, error) {
	if userID == 0 || len(messageIDs) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND message_id IN ?", userID, messageIDs).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
