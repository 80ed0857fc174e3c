package repositories

import (
	"context"

	"warbler/internal/models"
)

// LikeRepository defines the interface for like edge data access.
type LikeRepository interface {
	Toggle(ctx context.Context, userID, messageID uint) (models.LikeState, error)
	MessageIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	LikedAmong(ctx context.Context, userID uint, messageIDs []uint) ([]uint, error)
	CountByMessage(ctx context.Context, messageID uint) (int64, error)
	UsersByMessage(ctx context.Context, messageID uint) ([]models.User, error)
}
