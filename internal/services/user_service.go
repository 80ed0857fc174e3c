package services

import (
	"context"
	"fmt"

	"warbler/internal/models"
	"warbler/internal/repositories"
)

// PasswordVerifier checks a plaintext password against a user's stored hash.
type PasswordVerifier interface {
	VerifyPassword(user *models.User, password string) error
}

// UserService handles profile reads, edits and account deletion.
type UserService struct {
	userRepo  repositories.UserRepository
	passwords PasswordVerifier
	events    EventPublisher
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(userRepo repositories.UserRepository, passwords PasswordVerifier, events EventPublisher) *UserService {
	return &UserService{
		userRepo:  userRepo,
		passwords: passwords,
		events:    events,
	}
}

// GetByID retrieves a single user.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Search lists users whose username contains q.
func (s *UserService) Search(ctx context.Context, q string) ([]models.User, error) {
	return s.userRepo.Search(ctx, q)
}

// UpdateProfile re-checks password against the actor's current hash and then
// overwrites only the fields set in update.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, update models.ProfileUpdate, password string) (*models.User, error) {
	current, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.passwords.VerifyPassword(current, password); err != nil {
		return nil, err
	}

	update.Apply(current)
	if err := s.userRepo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update profile of user %d: %w", actor.ID, err)
	}
	return current, nil
}

// Delete removes the actor's account and everything that references it.
func (s *UserService) Delete(ctx context.Context, actor *models.User) error {
	if err := s.userRepo.Delete(ctx, actor.ID); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", actor.ID, err)
	}
	publish(s.events, "user.deleted", map[string]interface{}{
		"user_id": actor.ID,
	})
	return nil
}
