package repository

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// FeedRepository answers the home timeline query.
type FeedRepository interface {
	Feed(ctx context.Context, userID uint, limit int) ([]models.Message, error)
}

type feedRepository struct {
	db *gorm.DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

// Feed returns messages authored by userID or by anyone userID follows,
// newest first, at most limit of them. Ties on timestamp break on id.
func (r *feedRepository) Feed(ctx context.Context, userID uint, limit int) (msgs []models.Message, err error) {
	ctx, span := observability.StartSpan(ctx, "repository", "Feed",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int("feed.limit", limit),
	)
	defer func() { observability.EndSpan(span, err) }()

	followed := r.db.WithContext(ctx).Model(&models.Follow{}).
		Select("user_being_followed_id").
		Where("user_following_id = ?", userID)

	q := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Order("timestamp DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err = q.Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	span.SetAttributes(attribute.Int("feed.size", len(msgs)))
	return msgs, nil
}
