package server

import (
	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserDetailResponse is a profile as seen by the caller.
type UserDetailResponse struct {
	*service.Profile
	IsFollowing bool   `json:"is_following"`
	LikedIDs    []uint `json:"liked_ids"`
}

// SearchUsers handles GET /api/users
// @Summary Search users
// @Description Case-insensitive substring match on username; no query lists everyone
// @Tags users
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {object} object{users=[]models.User}
// @Router /users [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetUser handles GET /api/users/:id
// @Summary User profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserDetailResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()
	id := currentIdentity(c)

	profile, err := s.userService.Profile(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	following, err := s.relationshipService.IsFollowing(ctx, id.UserID, userID)
	if err != nil {
		return respondError(c, err)
	}
	liked, err := s.relationshipService.LikedAmong(ctx, id, profile.Messages)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(UserDetailResponse{Profile: profile, IsFollowing: following, LikedIDs: liked})
}

// GetFollowing handles GET /api/users/:id/following
// @Summary Users followed by a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{users=[]models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.relationshipService.Following(c.UserContext(), currentIdentity(c), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary Followers of a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{users=[]models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.relationshipService.Followers(c.UserContext(), currentIdentity(c), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetLikes handles GET /api/users/:id/likes
// @Summary Messages liked by a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{messages=[]models.Message}
// @Router /users/{id}/likes [get]
func (s *Server) GetLikes(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	msgs, err := s.relationshipService.Likes(c.UserContext(), currentIdentity(c), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// FollowUser handles POST /api/users/follow/:id
// @Summary Follow a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{following=bool}
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/follow/{id} [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.relationshipService.Follow(c.UserContext(), currentIdentity(c), targetID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": true})
}

// StopFollowing handles POST /api/users/stop-following/:id
// @Summary Unfollow a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{following=bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/stop-following/{id} [post]
func (s *Server) StopFollowing(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.relationshipService.Unfollow(c.UserContext(), currentIdentity(c), targetID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}

// ToggleLike handles POST /api/users/add_like/:id
// @Summary Like or unlike a message
// @Description Likes the message, or removes the like when it already exists
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} object{liked=bool}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/add_like/{id} [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.relationshipService.ToggleLike(c.UserContext(), currentIdentity(c), messageID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// UpdateProfile handles POST /api/users/profile
// @Summary Edit own profile
// @Description Requires the current password
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} object{user=models.Account}
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/profile [post]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.userService.UpdateProfile(c.UserContext(), currentIdentity(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user.Account()})
}

// DeleteAccount handles POST /api/users/delete
// @Summary Delete own account
// @Description Removes the account with its messages, likes and follows, then logs out
// @Tags users
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/delete [post]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteAccount(c.UserContext(), currentIdentity(c)); err != nil {
		return respondError(c, err)
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if err := sess.Destroy(); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if claims := tokenClaims(c); claims != nil {
		_ = s.tokens.Revoke(c.UserContext(), claims)
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}
