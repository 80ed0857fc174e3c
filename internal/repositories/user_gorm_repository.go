package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warbler/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user. Username and email uniqueness is enforced by the
// store; a collision comes back as *models.DuplicateIdentityError.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return &models.DuplicateIdentityError{Field: r.conflictingField(ctx, err, user)}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by exact username.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with username %s: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// Search returns users whose username contains usernameSubstring, case-sensitively,
// in primary key order. An empty substring matches everyone.
func (r *GORMUserRepository) Search(ctx context.Context, usernameSubstring string) ([]models.User, error) {
	q := r.db.WithContext(ctx).Order("id")
	if usernameSubstring != "" {
		// LIKE folds case on SQLite, so match on the substring position instead.
		if r.db.Dialector.Name() == "sqlite" {
			q = q.Where("instr(username, ?) > 0", usernameSubstring)
		} else {
			q = q.Where("strpos(username, ?) > 0", usernameSubstring)
		}
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// Update writes every profile column of user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"username":         user.Username,
		"email":            user.Email,
		"password":         user.Password,
		"image_url":        user.ImageURL,
		"header_image_url": user.HeaderImageURL,
		"bio":              user.Bio,
		"location":         user.Location,
		"updated_at":       user.UpdatedAt,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return &models.DuplicateIdentityError{Field: r.conflictingField(ctx, res.Error, user)}
		}
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %d: %w", user.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes the user together with their messages, the likes on those
// messages, their own likes and every follow edge touching them.
func (r *GORMUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Message{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("message_id IN (?)", owned).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes on messages of user %d: %w", id, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes by user %d: %w", id, err)
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return fmt.Errorf("failed to delete follows of user %d: %w", id, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages of user %d: %w", id, err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user with ID %d: %w", id, models.ErrNotFound)
		}
		return nil
	})
}

// conflictingField names the column behind a unique violation. When the driver
// message does not say, the rows holding user's username or email are checked.
func (r *GORMUserRepository) conflictingField(ctx context.Context, err error, user *models.User) string {
	if field := uniqueField(err); field != "" {
		return field
	}
	var n int64
	r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", user.Username, user.ID).
		Count(&n)
	if n > 0 {
		return "username"
	}
	return "email"
}
