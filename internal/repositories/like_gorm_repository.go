package repositories

import (
	"context"
	"fmt"

	"warbler/internal/models"

	"gorm.io/gorm"
)

// GORMLikeRepository is a GORM implementation of LikeRepository.
type GORMLikeRepository struct {
	db *gorm.DB
}

// NewGORMLikeRepository creates a new instance of GORMLikeRepository.
func NewGORMLikeRepository(db *gorm.DB) *GORMLikeRepository {
	return &GORMLikeRepository{
		db: db,
	}
}

// Toggle removes the (userID, messageID) edge if it exists and inserts it
// otherwise, in one transaction. A concurrent insert of the same edge fails
// with models.ErrConflictEdge.
func (r *GORMLikeRepository) Toggle(ctx context.Context, userID, messageID uint) (models.LikeState, error) {
	state := models.UnlikedNow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND message_id = ?", userID, messageID).Delete(&models.Like{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete like: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			state = models.UnlikedNow
			return nil
		}
		if err := tx.Create(&models.Like{UserID: userID, MessageID: messageID}).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("like (%d, %d): %w", userID, messageID, models.ErrConflictEdge)
			}
			return fmt.Errorf("failed to create like: %w", err)
		}
		state = models.LikedNow
		return nil
	})
	if err != nil {
		return models.UnlikedNow, err
	}
	return state, nil
}

// MessageIDsByUser returns the IDs of every message userID likes.
func (r *GORMLikeRepository) MessageIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ?", userID).
		Order("message_id").
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list likes of user %d: %w", userID, err)
	}
	return ids, nil
}

// LikedAmong returns the subset of messageIDs that userID likes.
func (r *GORMLikeRepository) LikedAmong(ctx context.Context, userID uint, messageIDs []uint) ([]uint, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND message_id IN ?", userID, messageIDs).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check likes of user %d: %w", userID, err)
	}
	return ids, nil
}

// CountByMessage returns how many users like messageID.
func (r *GORMLikeRepository) CountByMessage(ctx context.Context, messageID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count likes on message %d: %w", messageID, err)
	}
	return count, nil
}

// UsersByMessage returns the users who like messageID.
func (r *GORMLikeRepository) UsersByMessage(ctx context.Context, messageID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.message_id = ?", messageID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list likers of message %d: %w", messageID, err)
	}
	return users, nil
}
