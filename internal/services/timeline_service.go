package services

import (
	"context"

	"warbler/internal/metrics"
	"warbler/internal/models"
	"warbler/internal/repositories"
	"warbler/internal/timeline"
)

// TimelineLimit caps every timeline.
const TimelineLimit = 100

// TimelineService assembles the home, profile and liked feeds.
type TimelineService struct {
	userRepo    repositories.UserRepository
	followRepo  repositories.FollowRepository
	messageRepo repositories.MessageRepository
	likeRepo    repositories.LikeRepository
}

// NewTimelineService creates a new TimelineService.
func NewTimelineService(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, messageRepo repositories.MessageRepository, likeRepo repositories.LikeRepository) *TimelineService {
	return &TimelineService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
	}
}

// Home returns the newest messages of everyone viewer follows, newest first.
// An anonymous viewer gets an empty timeline.
func (s *TimelineService) Home(ctx context.Context, viewer *models.User) ([]models.TimelineEntry, error) {
	if viewer == nil {
		return []models.TimelineEntry{}, nil
	}

	followed, err := s.followRepo.FollowedIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	// Each followee contributes at most TimelineLimit messages, which is
	// enough for any of them to fill the whole feed.
	streams := make([][]models.Message, 0, len(followed))
	for _, id := range followed {
		messages, err := s.messageRepo.ListByUser(ctx, id, TimelineLimit)
		if err != nil {
			return nil, err
		}
		streams = append(streams, messages)
	}

	entries, err := s.annotate(ctx, viewer, timeline.Merge(streams, TimelineLimit))
	if err != nil {
		return nil, err
	}
	metrics.TimelineSize.Observe(float64(len(entries)))
	return entries, nil
}

// Profile returns userID's newest messages. viewer may be nil.
func (s *TimelineService) Profile(ctx context.Context, viewer *models.User, userID uint) ([]models.TimelineEntry, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListByUser(ctx, userID, TimelineLimit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, viewer, messages)
}

// Liked returns the messages userID likes, newest first. viewer may be nil.
func (s *TimelineService) Liked(ctx context.Context, viewer *models.User, userID uint) ([]models.TimelineEntry, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.likeRepo.MessageIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListByIDs(ctx, ids, TimelineLimit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, viewer, messages)
}

// annotate marks the messages viewer likes.
func (s *TimelineService) annotate(ctx context.Context, viewer *models.User, messages []models.Message) ([]models.TimelineEntry, error) {
	entries := make([]models.TimelineEntry, len(messages))
	for i, m := range messages {
		entries[i].Message = m
	}
	if viewer == nil || len(messages) == 0 {
		return entries, nil
	}

	ids := make([]uint, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	liked, err := s.likeRepo.LikedAmong(ctx, viewer.ID, ids)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]struct{}, len(liked))
	for _, id := range liked {
		set[id] = struct{}{}
	}
	for i := range entries {
		_, entries[i].Liked = set[entries[i].ID]
	}
	return entries, nil
}
