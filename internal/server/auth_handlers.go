package server

import (
	"log/slog"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string          `json:"token"`
	User  *models.Account `json:"user"`
}

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new account and log it in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Signup(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return s.completeLogin(c, fiber.StatusCreated, user)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return s.completeLogin(c, fiber.StatusOK, user)
}

// completeLogin binds a fresh session to user and issues a bearer token.
func (s *Server) completeLogin(c *fiber.Ctx, status int, user *models.User) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if err := sess.Regenerate(); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	session.Login(sess, user.ID)
	if err := sess.Save(); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(status).JSON(AuthResponse{Token: token, User: user.Account()})
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Clear the session and revoke the bearer token, if any
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	session.Logout(sess)
	if err := sess.Destroy(); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	if claims := tokenClaims(c); claims != nil {
		if err := s.tokens.Revoke(c.UserContext(), claims); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token revocation failed", slog.String("error", err.Error()))
		}
	}

	return c.JSON(fiber.Map{"message": "You have successfully logged out."})
}
