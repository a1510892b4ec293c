package service

import (
	"context"

	"warbler/internal/authz"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/session"
	"warbler/internal/validation"
)

type MessageService struct {
	messages repository.MessageRepository
	guard    *authz.Guard
}

func NewMessageService(messages repository.MessageRepository, guard *authz.Guard) *MessageService {
	return &MessageService{messages: messages, guard: guard}
}

// Create posts text as the caller.
func (s *MessageService) Create(ctx context.Context, id session.Identity, text string) (*models.Message, error) {
	if err := s.guard.Check(id, authz.CreateMessage, authz.Resource{}); err != nil {
		return nil, err
	}
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewFieldValidationError(err.Error(), map[string]string{"text": err.Error()})
	}

	msg := &models.Message{UserID: id.UserID, Text: text}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	msg.User = id.User
	observability.MessageEvents.WithLabelValues("created").Inc()
	return msg, nil
}

func (s *MessageService) Get(ctx context.Context, id session.Identity, messageID uint) (*models.Message, error) {
	if err := s.guard.Check(id, authz.ViewMessage, authz.Resource{}); err != nil {
		return nil, err
	}
	return s.messages.GetByID(ctx, messageID)
}

// Delete removes a message owned by the caller. Anonymous callers are refused
// before the message is looked up.
func (s *MessageService) Delete(ctx context.Context, id session.Identity, messageID uint) error {
	if !id.IsAuthenticated() {
		return s.guard.Check(id, authz.DeleteMessage, authz.Resource{})
	}
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.guard.Check(id, authz.DeleteMessage, authz.Resource{OwnerID: msg.UserID}); err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return err
	}
	observability.MessageEvents.WithLabelValues("deleted").Inc()
	return nil
}
