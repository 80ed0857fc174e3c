// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenDB returns a migrated in-memory SQLite database private to t.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.New().String())
	db, err := repositories.Open("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db))
	return db
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "HASHED_PASSWORD",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateMessage inserts a message by userID posted at ts.
func CreateMessage(t *testing.T, db *gorm.DB, userID uint, text string, ts time.Time) *models.Message {
	t.Helper()

	message := &models.Message{UserID: userID, Text: text, Timestamp: ts}
	require.NoError(t, db.Create(message).Error)
	return message
}
