// Package session resolves the current user of a request, either from the
// cookie-backed session or from a bearer token.
package session

import "warbler/internal/models"

// Identity is the resolved current user of a request. The zero value is the
// anonymous identity.
type Identity struct {
	UserID uint
	User   *models.User
}

// Anonymous returns the identity of a request with no logged-in user.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns the identity of a logged-in user.
func Authenticated(user *models.User) Identity {
	if user == nil {
		return Anonymous()
	}
	return Identity{UserID: user.ID, User: user}
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0
}

// Is reports whether the identity is the given user.
func (i Identity) Is(userID uint) bool {
	return i.IsAuthenticated() && i.UserID == userID
}
