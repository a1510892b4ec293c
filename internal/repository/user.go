package repository

import (
	"context"
	"errors"

	"warbler/internal/cache"
	"warbler/internal/models"
	"warbler/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetCachedByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	DeleteCascade(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	Stats(ctx context.Context, id uint) (*models.UserStats, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID loads the full row, password digest included.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetCachedByID serves the public profile through the cache. The digest is
// never cached, so the result must not be used for credential checks.
func (r *userRepository) GetCachedByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

// GetByUsername matches case-insensitively and returns nil, nil when absent.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username_key = ?", models.NormalizeKey(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateUserWriteError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return translateUserWriteError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func translateUserWriteError(err error) error {
	if isUniqueConstraintError(err) {
		if violatedField(err) == "email" {
			return models.NewConflictError("Email already taken")
		}
		return models.NewConflictError("Username already taken")
	}
	return models.NewInternalError(err)
}

// DeleteCascade removes the user with every message, like and follow edge
// that references them, in one transaction.
func (r *userRepository) DeleteCascade(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "repository", "DeleteCascade", attribute.Int64("user.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return models.NewNotFoundError("User", id)
		}

		ownMessages := tx.Model(&models.Message{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("user_id = ? OR message_id IN (?)", id, ownMessages).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_following_id = ? OR user_being_followed_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, id)
	return nil
}

// Search returns users whose username contains query, ignoring case, ordered
// by username. An empty query matches everyone. limit <= 0 means no limit.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	pattern := "%" + escapeLike(models.NormalizeKey(query)) + "%"
	q := r.db.WithContext(ctx).
		Where(`username_key LIKE ? ESCAPE '\'`, pattern).
		Order("username_key ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Stats(ctx context.Context, id uint) (*models.UserStats, error) {
	db := r.db.WithContext(ctx)
	var stats models.UserStats
	if err := db.Model(&models.Message{}).Where("user_id = ?", id).Count(&stats.Messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Follow{}).Where("user_following_id = ?", id).Count(&stats.Following).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Follow{}).Where("user_being_followed_id = ?", id).Count(&stats.Followers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Like{}).Where("user_id = ?", id).Count(&stats.Likes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}
