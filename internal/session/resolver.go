package session

import (
	"context"
	"strconv"

	"warbler/internal/models"
)

// CurrentUserKey is the single session key holding the logged-in user id.
const CurrentUserKey = "curr_user"

// Backend is the per-client session store. *session.Session from
// fiber's session middleware satisfies it.
type Backend interface {
	Get(key string) interface{}
	Set(key string, val interface{})
	Delete(key string)
}

// UserLookup loads a user by id, returning a NotFound AppError when absent.
type UserLookup interface {
	GetCachedByID(ctx context.Context, id uint) (*models.User, error)
}

// Resolver turns session state into an Identity.
type Resolver struct {
	users UserLookup
}

// NewResolver creates a Resolver backed by users.
func NewResolver(users UserLookup) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the anonymous identity when the key is missing, malformed,
// or points at a user that no longer exists. A stale key is cleared.
func (r *Resolver) Resolve(ctx context.Context, b Backend) (Identity, error) {
	if b == nil {
		return Anonymous(), nil
	}
	raw := b.Get(CurrentUserKey)
	if raw == nil {
		return Anonymous(), nil
	}
	userID, ok := userIDFrom(raw)
	if !ok {
		b.Delete(CurrentUserKey)
		return Anonymous(), nil
	}
	return r.ResolveID(ctx, userID, func() { b.Delete(CurrentUserKey) })
}

// ResolveID looks up userID. onMissing runs when the user no longer exists.
func (r *Resolver) ResolveID(ctx context.Context, userID uint, onMissing func()) (Identity, error) {
	if userID == 0 {
		return Anonymous(), nil
	}
	user, err := r.users.GetCachedByID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			if onMissing != nil {
				onMissing()
			}
			return Anonymous(), nil
		}
		return Anonymous(), err
	}
	return Authenticated(user), nil
}

// Login binds the session to userID.
func Login(b Backend, userID uint) {
	b.Set(CurrentUserKey, userID)
}

// Logout clears the session binding. It is safe on an anonymous session.
func Logout(b Backend) {
	b.Delete(CurrentUserKey)
}

func userIDFrom(v interface{}) (uint, bool) {
	var id uint64
	switch n := v.(type) {
	case uint:
		id = uint64(n)
	case uint32:
		id = uint64(n)
	case uint64:
		id = n
	case int:
		if n <= 0 {
			return 0, false
		}
		id = uint64(n)
	case int64:
		if n <= 0 {
			return 0, false
		}
		id = uint64(n)
	case float64:
		if n <= 0 || n != float64(uint64(n)) {
			return 0, false
		}
		id = uint64(n)
	case string:
		parsed, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, false
		}
		id = parsed
	default:
		return 0, false
	}
	if id == 0 {
		return 0, false
	}
	return uint(id), true
}
