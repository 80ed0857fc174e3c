package services

import (
	"context"

	"warbler/internal/metrics"
	"warbler/internal/models"
	"warbler/internal/repositories"
)

// MessageService handles posting, reading and deleting messages.
type MessageService struct {
	messageRepo repositories.MessageRepository
	events      EventPublisher
}

// NewMessageService creates a new MessageService. events may be nil.
func NewMessageService(messageRepo repositories.MessageRepository, events EventPublisher) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		events:      events,
	}
}

// Post stores a new message by author.
func (s *MessageService) Post(ctx context.Context, author *models.User, text string) (*models.Message, error) {
	if !models.ValidText(text) {
		return nil, models.ErrInvalidMessage
	}

	message := &models.Message{Text: text, UserID: author.ID}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	message.User = author

	metrics.MessagesPosted.Inc()
	publish(s.events, "message.posted", map[string]interface{}{
		"message_id": message.ID,
		"user_id":    author.ID,
		"timestamp":  message.Timestamp,
	})
	return message, nil
}

// Get retrieves a single message with its author.
func (s *MessageService) Get(ctx context.Context, id uint) (*models.Message, error) {
	return s.messageRepo.GetByID(ctx, id)
}

// Delete removes a message owned by actor, along with its likes.
func (s *MessageService) Delete(ctx context.Context, actor *models.User, id uint) error {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if message.UserID != actor.ID {
		return models.ErrForbidden
	}
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return err
	}

	publish(s.events, "message.deleted", map[string]interface{}{
		"message_id": id,
		"user_id":    actor.ID,
	})
	return nil
}
