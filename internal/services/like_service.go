package services

import (
	"context"

	"warbler/internal/metrics"
	"warbler/internal/models"
	"warbler/internal/repositories"
)

// LikeService manages like edges between users and messages.
type LikeService struct {
	messageRepo repositories.MessageRepository
	likeRepo    repositories.LikeRepository
	events      EventPublisher
}

// NewLikeService creates a new LikeService. events may be nil.
func NewLikeService(messageRepo repositories.MessageRepository, likeRepo repositories.LikeRepository, events EventPublisher) *LikeService {
	return &LikeService{
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		events:      events,
	}
}

// ToggleLike likes messageID for userID, or unlikes it if already liked.
func (s *LikeService) ToggleLike(ctx context.Context, userID, messageID uint) (models.LikeState, error) {
	if _, err := s.messageRepo.GetByID(ctx, messageID); err != nil {
		return models.UnlikedNow, err
	}
	state, err := s.likeRepo.Toggle(ctx, userID, messageID)
	if err != nil {
		return models.UnlikedNow, err
	}

	metrics.LikeToggles.WithLabelValues(state.String()).Inc()
	publish(s.events, "message."+state.String(), map[string]interface{}{
		"user_id":    userID,
		"message_id": messageID,
	})
	return state, nil
}

// LikedMessageIDs returns the IDs of every message userID likes.
func (s *LikeService) LikedMessageIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.likeRepo.MessageIDsByUser(ctx, userID)
}

// LikeCount returns how many users like messageID.
func (s *LikeService) LikeCount(ctx context.Context, messageID uint) (int64, error) {
	if _, err := s.messageRepo.GetByID(ctx, messageID); err != nil {
		return 0, err
	}
	return s.likeRepo.CountByMessage(ctx, messageID)
}

// Likers returns the users who like messageID.
func (s *LikeService) Likers(ctx context.Context, messageID uint) ([]models.User, error) {
	if _, err := s.messageRepo.GetByID(ctx, messageID); err != nil {
		return nil, err
	}
	return s.likeRepo.UsersByMessage(ctx, messageID)
}
