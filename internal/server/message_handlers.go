package server

import (
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FeedResponse is the home timeline.
type FeedResponse struct {
	Messages []models.Message `json:"messages"`
	LikedIDs []uint           `json:"liked_ids"`
}

// GetFeed handles GET /api/feed
// @Summary Home timeline
// @Description Newest messages by the caller and the users they follow
// @Tags messages
// @Produce json
// @Success 200 {object} FeedResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := currentIdentity(c)

	msgs, err := s.relationshipService.Feed(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	liked, err := s.relationshipService.LikedAmong(ctx, id, msgs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(FeedResponse{Messages: msgs, LikedIDs: liked})
}

// CreateMessage handles POST /api/messages/new
// @Summary Post a message
// @Tags messages
// @Accept json
// @Produce json
// @Param request body object{text=string} true "Message text, at most 140 characters"
// @Success 201 {object} object{message=models.Message}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /messages/new [post]
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.messageService.Create(c.UserContext(), currentIdentity(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

// GetMessage handles GET /api/messages/:id
// @Summary Message detail
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} object{message=models.Message}
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id} [get]
func (s *Server) GetMessage(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	msg, err := s.messageService.Get(c.UserContext(), currentIdentity(c), messageID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// DeleteMessage handles POST /api/messages/:id/delete
// @Summary Delete own message
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id}/delete [post]
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.messageService.Delete(c.UserContext(), currentIdentity(c), messageID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Message deleted"})
}

// LikeMessage handles POST /api/messages/:id/like
// @Summary Like a message
// @Description Idempotent
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} object{liked=bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /messages/{id}/like [post]
func (s *Server) LikeMessage(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.relationshipService.Like(c.UserContext(), currentIdentity(c), messageID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": true})
}

// UnlikeMessage handles DELETE /api/messages/:id/like
// @Summary Remove a like
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} object{liked=bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /messages/{id}/like [delete]
func (s *Server) UnlikeMessage(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.relationshipService.Unlike(c.UserContext(), currentIdentity(c), messageID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": false})
}
