package server

import (
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	localIdentity = "identity"
	localClaims   = "tokenClaims"
)

// IdentityMiddleware resolves the caller from a bearer token when one is sent
// and from the session cookie otherwise. Every request gets an identity,
// anonymous included.
func (s *Server) IdentityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := session.Anonymous()

		if token := bearerToken(c); token != "" {
			claims, userID, err := s.tokens.Parse(ctx, token)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired token"))
			}
			id, err = s.resolver.ResolveID(ctx, userID, nil)
			if err != nil {
				return respondError(c, err)
			}
			c.Locals(localClaims, claims)
		} else {
			sess, err := s.sessions.Get(c)
			if err != nil {
				return respondError(c, models.NewInternalError(err))
			}
			bound := sess.Get(session.CurrentUserKey) != nil
			id, err = s.resolver.Resolve(ctx, sess)
			if err != nil {
				return respondError(c, err)
			}
			if bound && !id.IsAuthenticated() {
				// The stale binding was cleared; persist that.
				if err := sess.Save(); err != nil {
					return respondError(c, models.NewInternalError(err))
				}
			}
		}

		c.Locals(localIdentity, id)
		if id.IsAuthenticated() {
			middleware.WithUserID(c, id.UserID)
		}
		return c.Next()
	}
}

// currentIdentity returns the identity resolved for this request.
func currentIdentity(c *fiber.Ctx) session.Identity {
	if id, ok := c.Locals(localIdentity).(session.Identity); ok {
		return id
	}
	return session.Anonymous()
}

func tokenClaims(c *fiber.Ctx) *session.Claims {
	claims, _ := c.Locals(localClaims).(*session.Claims)
	return claims
}
