package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer   = "warbler-api"
	tokenAudience = "warbler-client"
	// TokenTTL is the lifetime of an issued bearer token.
	TokenTTL = 7 * 24 * time.Hour

	blacklistPrefix = "blacklist:"
)

// ErrInvalidToken covers every reason a bearer token is refused.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by a bearer token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and checks HS256 bearer tokens for API clients.
// Revoked token ids are kept in Redis until the token would have expired.
type TokenManager struct {
	secret []byte
	rdb    *redis.Client
	now    func() time.Time
}

// NewTokenManager creates a manager. rdb may be nil, in which case tokens
// cannot be revoked.
func NewTokenManager(secret string, rdb *redis.Client) *TokenManager {
	return &TokenManager{secret: []byte(secret), rdb: rdb, now: time.Now}
}

// Issue signs a token for the user.
func (m *TokenManager) Issue(userID uint, username string) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}
	now := m.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates the token and returns its claims and user id.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, uint, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, 0, ErrInvalidToken
	}

	if claims.ID != "" && m.rdb != nil {
		n, err := m.rdb.Exists(ctx, blacklistPrefix+claims.ID).Result()
		if err == nil && n > 0 {
			return nil, 0, ErrInvalidToken
		}
	}
	return claims, uint(userID), nil
}

// Revoke blacklists the token id until the token's own expiry.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := TokenTTL
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(m.now())
	}
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, blacklistPrefix+claims.ID, "1", ttl).Err()
}
