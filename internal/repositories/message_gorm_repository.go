package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warbler/internal/models"

	"gorm.io/gorm"
)

const recencyOrder = "posted_at DESC, id DESC"

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{
		db: db,
	}
}

// Create stores a new message. The timestamp is assigned here when unset.
func (r *GORMMessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID retrieves a single message with its author.
func (r *GORMMessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("message with ID %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get message by ID %d: %w", id, err)
	}
	return &message, nil
}

// ListByUser returns up to limit of the user's newest messages.
func (r *GORMMessageRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order(recencyOrder).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of user %d: %w", userID, err)
	}
	return messages, nil
}

// ListByIDs returns up to limit of the newest messages among ids.
func (r *GORMMessageRepository) ListByIDs(ctx context.Context, ids []uint, limit int) ([]models.Message, error) {
	if len(ids) == 0 {
		return []models.Message{}, nil
	}
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Order(recencyOrder).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages by ID: %w", err)
	}
	return messages, nil
}

// Delete removes a message and every like on it.
func (r *GORMMessageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes on message %d: %w", id, err)
		}
		res := tx.Delete(&models.Message{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete message: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("message with ID %d: %w", id, models.ErrNotFound)
		}
		return nil
	})
}
