// Package authz decides whether an identity may perform an operation on a
// resource. Decisions depend only on their arguments and the configured
// policy; callers load the resource first.
package authz

import (
	"warbler/internal/featureflags"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/session"
)

// Operation names a guarded action.
type Operation string

const (
	CreateMessage Operation = "create_message"
	DeleteMessage Operation = "delete_message"
	ViewMessage   Operation = "view_message"
	ViewFollowing Operation = "view_following"
	ViewFollowers Operation = "view_followers"
	Follow        Operation = "follow"
	Unfollow      Operation = "unfollow"
	Like          Operation = "like"
	Unlike        Operation = "unlike"
	EditProfile   Operation = "edit_profile"
	DeleteAccount Operation = "delete_account"
	ViewFeed      Operation = "view_feed"
	ViewLikes     Operation = "view_likes"
)

// Resource describes what an operation targets. OwnerID is the owner of a
// message (or of the liked message for Like/Unlike). TargetUserID is the
// user acted upon by follow, profile and account operations.
type Resource struct {
	OwnerID      uint
	TargetUserID uint
}

// Flags is the subset of featureflags.Manager the guard needs.
type Flags interface {
	Enabled(name string, userID uint) bool
}

// Guard evaluates the policy table.
type Guard struct {
	flags Flags
}

// NewGuard creates a guard. flags may be nil, which leaves every toggle off.
func NewGuard(flags Flags) *Guard {
	return &Guard{flags: flags}
}

// Check returns nil when allowed and the uniform access-denied error otherwise.
func (g *Guard) Check(id session.Identity, op Operation, res Resource) error {
	if g.Allowed(id, op, res) {
		return nil
	}
	observability.AuthzDenials.WithLabelValues(string(op)).Inc()
	return models.NewAccessDeniedError()
}

// Allowed is Check without the error.
func (g *Guard) Allowed(id session.Identity, op Operation, res Resource) bool {
	switch op {
	case ViewMessage, ViewLikes:
		return true
	case CreateMessage, ViewFollowing, ViewFollowers, ViewFeed:
		return id.IsAuthenticated()
	case DeleteMessage:
		return id.Is(res.OwnerID)
	case Follow:
		if !id.IsAuthenticated() || res.TargetUserID == 0 {
			return false
		}
		return res.TargetUserID != id.UserID || g.enabled(featureflags.SelfFollow, id.UserID)
	case Unfollow:
		return id.IsAuthenticated() && res.TargetUserID != 0
	case Like:
		if !id.IsAuthenticated() {
			return false
		}
		return res.OwnerID != id.UserID || g.enabled(featureflags.SelfLike, id.UserID)
	case Unlike:
		return id.IsAuthenticated()
	case EditProfile, DeleteAccount:
		return id.Is(res.TargetUserID)
	default:
		return false
	}
}

func (g *Guard) enabled(flag string, userID uint) bool {
	return g.flags != nil && g.flags.Enabled(flag, userID)
}
