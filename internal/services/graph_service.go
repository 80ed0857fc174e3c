package services

import (
	"context"

	"warbler/internal/metrics"
	"warbler/internal/models"
	"warbler/internal/repositories"
)

// GraphService manages follow edges between users.
type GraphService struct {
	userRepo   repositories.UserRepository
	followRepo repositories.FollowRepository
	events     EventPublisher
}

// NewGraphService creates a new GraphService. events may be nil.
func NewGraphService(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, events EventPublisher) *GraphService {
	return &GraphService{
		userRepo:   userRepo,
		followRepo: followRepo,
		events:     events,
	}
}

// Follow makes followerID follow followedID. Following again is a no-op.
func (s *GraphService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.ErrSelfFollow
	}
	if _, err := s.userRepo.GetByID(ctx, followedID); err != nil {
		return err
	}
	if err := s.followRepo.Create(ctx, followerID, followedID); err != nil {
		return err
	}

	metrics.FollowChanges.WithLabelValues("follow").Inc()
	publish(s.events, "user.followed", map[string]interface{}{
		"follower_id": followerID,
		"followed_id": followedID,
	})
	return nil
}

// Unfollow removes the edge. A missing edge is a no-op.
func (s *GraphService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if err := s.followRepo.Delete(ctx, followerID, followedID); err != nil {
		return err
	}

	metrics.FollowChanges.WithLabelValues("unfollow").Inc()
	publish(s.events, "user.unfollowed", map[string]interface{}{
		"follower_id": followerID,
		"followed_id": followedID,
	})
	return nil
}

// IsFollowing reports whether a follows b.
func (s *GraphService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.followRepo.Exists(ctx, a, b)
}

// IsFollowedBy reports whether a is followed by b.
func (s *GraphService) IsFollowedBy(ctx context.Context, a, b uint) (bool, error) {
	return s.followRepo.Exists(ctx, b, a)
}

// Followers lists the users following userID.
func (s *GraphService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID)
}

// Following lists the users userID follows.
func (s *GraphService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID)
}

// FollowerCount returns how many users follow userID.
func (s *GraphService) FollowerCount(ctx context.Context, userID uint) (int64, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return 0, err
	}
	return s.followRepo.CountFollowers(ctx, userID)
}

// FollowingCount returns how many users userID follows.
func (s *GraphService) FollowingCount(ctx context.Context, userID uint) (int64, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return 0, err
	}
	return s.followRepo.CountFollowing(ctx, userID)
}
