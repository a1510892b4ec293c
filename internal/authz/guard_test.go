package authz

import (
	"testing"

	"warbler/internal/featureflags"
	"warbler/internal/models"
	"warbler/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestGuard_PolicyTable(t *testing.T) {
	anon := session.Anonymous()
	alice := session.Identity{UserID: 1}
	const bob = uint(2)

	g := NewGuard(nil)

	tests := []struct {
		name string
		id   session.Identity
		op   Operation
		res  Resource
		want bool
	}{
		{"anon create message", anon, CreateMessage, Resource{}, false},
		{"user create message", alice, CreateMessage, Resource{}, true},
		{"owner deletes message", alice, DeleteMessage, Resource{OwnerID: 1}, true},
		{"other deletes message", alice, DeleteMessage, Resource{OwnerID: bob}, false},
		{"anon deletes message", anon, DeleteMessage, Resource{OwnerID: bob}, false},
		{"anon deletes ownerless message", anon, DeleteMessage, Resource{}, false},
		{"anon views message", anon, ViewMessage, Resource{OwnerID: bob}, true},
		{"anon views following", anon, ViewFollowing, Resource{TargetUserID: bob}, false},
		{"user views followers", alice, ViewFollowers, Resource{TargetUserID: bob}, true},
		{"user follows other", alice, Follow, Resource{TargetUserID: bob}, true},
		{"user follows self", alice, Follow, Resource{TargetUserID: 1}, false},
		{"anon follows", anon, Follow, Resource{TargetUserID: bob}, false},
		{"user unfollows", alice, Unfollow, Resource{TargetUserID: bob}, true},
		{"anon unfollows", anon, Unfollow, Resource{TargetUserID: bob}, false},
		{"user likes other's message", alice, Like, Resource{OwnerID: bob}, true},
		{"user likes own message", alice, Like, Resource{OwnerID: 1}, false},
		{"anon likes", anon, Like, Resource{OwnerID: bob}, false},
		{"user unlikes own message", alice, Unlike, Resource{OwnerID: 1}, true},
		{"anon unlikes", anon, Unlike, Resource{OwnerID: bob}, false},
		{"edit own profile", alice, EditProfile, Resource{TargetUserID: 1}, true},
		{"edit other profile", alice, EditProfile, Resource{TargetUserID: bob}, false},
		{"anon edit profile", anon, EditProfile, Resource{}, false},
		{"delete own account", alice, DeleteAccount, Resource{TargetUserID: 1}, true},
		{"delete other account", alice, DeleteAccount, Resource{TargetUserID: bob}, false},
		{"anon feed", anon, ViewFeed, Resource{}, false},
		{"user feed", alice, ViewFeed, Resource{}, true},
		{"anon likes list", anon, ViewLikes, Resource{TargetUserID: bob}, true},
		{"unknown op", alice, Operation("launch"), Resource{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Allowed(tt.id, tt.op, tt.res))

			err := g.Check(tt.id, tt.op, tt.res)
			if tt.want {
				assert.NoError(t, err)
				return
			}
			assert.True(t, models.HasCode(err, models.CodeUnauthorized))
			assert.Equal(t, models.UnauthorizedMessage, err.Error())
		})
	}
}

func TestGuard_SelfToggles(t *testing.T) {
	alice := session.Identity{UserID: 1}
	g := NewGuard(featureflags.NewManager("self_follow=on,self_like=on"))

	assert.True(t, g.Allowed(alice, Follow, Resource{TargetUserID: 1}))
	assert.True(t, g.Allowed(alice, Like, Resource{OwnerID: 1}))

	g = NewGuard(featureflags.NewManager("self_follow=on"))
	assert.True(t, g.Allowed(alice, Follow, Resource{TargetUserID: 1}))
	assert.False(t, g.Allowed(alice, Like, Resource{OwnerID: 1}))
}

func TestGuard_DenialsAreUniform(t *testing.T) {
	g := NewGuard(nil)
	anon := session.Anonymous()
	alice := session.Identity{UserID: 1}

	a := g.Check(anon, DeleteMessage, Resource{OwnerID: 2})
	b := g.Check(alice, DeleteMessage, Resource{OwnerID: 2})
	c := g.Check(alice, Follow, Resource{TargetUserID: 1})
	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
}
