package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"warbler/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapBackend map[string]interface{}

func (m mapBackend) Get(key string) interface{}      { return m[key] }
func (m mapBackend) Set(key string, val interface{}) { m[key] = val }
func (m mapBackend) Delete(key string)               { delete(m, key) }

type stubLookup struct {
	GetCachedByIDFunc func(ctx context.Context, id uint) (*models.User, error)
}

func (s stubLookup) GetCachedByID(ctx context.Context, id uint) (*models.User, error) {
	return s.GetCachedByIDFunc(ctx, id)
}

func usersByID(users ...*models.User) stubLookup {
	return stubLookup{GetCachedByIDFunc: func(_ context.Context, id uint) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, models.NewNotFoundError("User", id)
	}}
}

func TestResolver(t *testing.T) {
	alice := &models.User{ID: 7, Username: "alice"}
	r := NewResolver(usersByID(alice))
	ctx := context.Background()

	t.Run("absent key is anonymous", func(t *testing.T) {
		id, err := r.Resolve(ctx, mapBackend{})
		require.NoError(t, err)
		assert.False(t, id.IsAuthenticated())
	})

	t.Run("nil backend is anonymous", func(t *testing.T) {
		id, err := r.Resolve(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, Anonymous(), id)
	})

	t.Run("login then resolve", func(t *testing.T) {
		b := mapBackend{}
		Login(b, alice.ID)
		id, err := r.Resolve(ctx, b)
		require.NoError(t, err)
		assert.True(t, id.Is(alice.ID))
		assert.Equal(t, "alice", id.User.Username)
	})

	t.Run("numeric encodings are accepted", func(t *testing.T) {
		for _, v := range []interface{}{uint(7), uint64(7), int(7), int64(7), float64(7), "7"} {
			id, err := r.Resolve(ctx, mapBackend{CurrentUserKey: v})
			require.NoError(t, err)
			assert.True(t, id.Is(7), "%T", v)
		}
	})

	t.Run("malformed key is cleared", func(t *testing.T) {
		for _, v := range []interface{}{"abc", int(-1), float64(1.5), []byte("7"), uint(0)} {
			b := mapBackend{CurrentUserKey: v}
			id, err := r.Resolve(ctx, b)
			require.NoError(t, err)
			assert.False(t, id.IsAuthenticated())
			assert.NotContains(t, b, CurrentUserKey)
		}
	})

	t.Run("deleted user is anonymous and key cleared", func(t *testing.T) {
		b := mapBackend{}
		Login(b, 99)
		id, err := r.Resolve(ctx, b)
		require.NoError(t, err)
		assert.False(t, id.IsAuthenticated())
		assert.NotContains(t, b, CurrentUserKey)
	})

	t.Run("logout clears", func(t *testing.T) {
		b := mapBackend{}
		Login(b, alice.ID)
		Logout(b)
		Logout(b)
		id, err := r.Resolve(ctx, b)
		require.NoError(t, err)
		assert.False(t, id.IsAuthenticated())
	})

	t.Run("store failure is reported", func(t *testing.T) {
		failing := NewResolver(stubLookup{GetCachedByIDFunc: func(context.Context, uint) (*models.User, error) {
			return nil, models.NewInternalError(errors.New("db down"))
		}})
		b := mapBackend{CurrentUserKey: uint(7)}
		_, err := failing.Resolve(ctx, b)
		assert.True(t, models.HasCode(err, models.CodeInternal))
		assert.Contains(t, b, CurrentUserKey)
	})
}

func TestIdentity(t *testing.T) {
	assert.False(t, Anonymous().Is(0))
	assert.Equal(t, Anonymous(), Authenticated(nil))
	id := Authenticated(&models.User{ID: 3})
	assert.True(t, id.Is(3))
	assert.False(t, id.Is(4))
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("0123456789abcdef0123456789abcdef", nil)

	token, err := m.Issue(42, "alice")
	require.NoError(t, err)

	claims, uid, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)

	_, _, err = NewTokenManager("another-secret-another-secret-xx", nil).Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = m.Parse(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expiry(t *testing.T) {
	m := NewTokenManager("0123456789abcdef0123456789abcdef", nil)
	start := time.Now()
	m.now = func() time.Time { return start }

	token, err := m.Issue(1, "alice")
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(TokenTTL + time.Minute) }
	_, _, err = m.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsForeignIssuer(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    "someone-else",
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, err = NewTokenManager(secret, nil).Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Revoke(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	m := NewTokenManager("0123456789abcdef0123456789abcdef", rdb)
	ctx := context.Background()

	token, err := m.Issue(5, "bob")
	require.NoError(t, err)
	claims, _, err := m.Parse(ctx, token)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, claims))
	assert.True(t, mr.Exists(blacklistPrefix+claims.ID))
	assert.Greater(t, mr.TTL(blacklistPrefix+claims.ID), 6*24*time.Hour)

	_, _, err = m.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_IssueWithoutSecret(t *testing.T) {
	_, err := NewTokenManager("", nil).Issue(1, "x")
	assert.Error(t, err)
}
