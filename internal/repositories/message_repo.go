package repositories

import (
	"context"

	"warbler/internal/models"
)

// MessageRepository defines the interface for message data access.
// Lists are ordered newest first: timestamp descending, then ID descending.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	ListByIDs(ctx context.Context, ids []uint, limit int) ([]models.Message, error)
	Delete(ctx context.Context, id uint) error
}
