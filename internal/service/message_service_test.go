package service

import (
	"context"
	"strings"
	"testing"

	"warbler/internal/authz"
	"warbler/internal/models"
	"warbler/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_Create(t *testing.T) {
	repo := noopMessageRepo()
	var created *models.Message
	repo.createFn = func(_ context.Context, m *models.Message) error {
		m.ID = 5
		created = m
		return nil
	}
	svc := NewMessageService(repo, authz.NewGuard(nil))
	ctx := context.Background()
	alice := session.Authenticated(&models.User{ID: 1, Username: "alice"})

	t.Run("anonymous is refused", func(t *testing.T) {
		_, err := svc.Create(ctx, session.Anonymous(), "hello")
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
		assert.Nil(t, created)
	})

	t.Run("blank text is invalid", func(t *testing.T) {
		_, err := svc.Create(ctx, alice, "   ")
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("text over 140 characters is invalid", func(t *testing.T) {
		_, err := svc.Create(ctx, alice, strings.Repeat("x", 141))
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("owned by the caller", func(t *testing.T) {
		m, err := svc.Create(ctx, alice, "hello world")
		require.NoError(t, err)
		assert.Equal(t, uint(5), m.ID)
		assert.Equal(t, alice.UserID, created.UserID)
		assert.Equal(t, "alice", m.User.Username)
	})
}

func TestMessageService_Get(t *testing.T) {
	repo := noopMessageRepo()
	repo.getByIDFn = existingMessages(&models.Message{ID: 3, UserID: 2, Text: "hi"})
	svc := NewMessageService(repo, authz.NewGuard(nil))

	m, err := svc.Get(context.Background(), session.Anonymous(), 3)
	require.NoError(t, err)
	assert.Equal(t, "hi", m.Text)

	_, err = svc.Get(context.Background(), session.Anonymous(), 4)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestMessageService_Delete(t *testing.T) {
	repo := noopMessageRepo()
	repo.getByIDFn = existingMessages(&models.Message{ID: 3, UserID: 2, Text: "bob's"})
	var deleted []uint
	repo.deleteFn = func(_ context.Context, id uint) error {
		deleted = append(deleted, id)
		return nil
	}
	lookups := 0
	getByID := repo.getByIDFn
	repo.getByIDFn = func(ctx context.Context, id uint) (*models.Message, error) {
		lookups++
		return getByID(ctx, id)
	}
	svc := NewMessageService(repo, authz.NewGuard(nil))
	ctx := context.Background()

	err := svc.Delete(ctx, session.Anonymous(), 3)
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	assert.Zero(t, lookups, "anonymous callers never reach storage")

	err = svc.Delete(ctx, session.Identity{UserID: 1}, 3)
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	assert.Empty(t, deleted)

	err = svc.Delete(ctx, session.Identity{UserID: 2}, 99)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	require.NoError(t, svc.Delete(ctx, session.Identity{UserID: 2}, 3))
	assert.Equal(t, []uint{3}, deleted)
}
