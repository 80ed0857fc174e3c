package repositories_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/repositories"
	"warbler/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGORMUserRepository_CreateDuplicate(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewGORMUserRepository(db)
	ctx := context.Background()

	bob := &models.User{Username: "bob", Email: "bob@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, bob))
	assert.NotZero(t, bob.ID)

	tests := []struct {
		name  string
		user  *models.User
		field string
	}{
		{"username taken", &models.User{Username: "bob", Email: "other@example.com", Password: "hash"}, "username"},
		{"email taken", &models.User{Username: "robert", Email: "bob@example.com", Password: "hash"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrDuplicateIdentity)

			var dup *models.DuplicateIdentityError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, tt.field, dup.Field)
		})
	}

	stored, err := repo.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, stored.ID)
	assert.Equal(t, "bob@example.com", stored.Email)
}

func TestGORMUserRepository_GetNotFound(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewGORMUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGORMUserRepository_SearchIsCaseSensitive(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewGORMUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice")
	lower := testutil.CreateUser(t, db, "alice")
	malice := testutil.CreateUser(t, db, "malice")
	testutil.CreateUser(t, db, "bob")

	users, err := repo.Search(ctx, "lice")
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID, lower.ID, malice.ID}, userIDs(users))

	users, err = repo.Search(ctx, "Ali")
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, userIDs(users))

	users, err = repo.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 4)
}

func TestGORMUserRepository_Update(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewGORMUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	alice.Bio = "hello"
	alice.Location = "Lisbon"
	require.NoError(t, repo.Update(ctx, alice))

	stored, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Bio)
	assert.Equal(t, "Lisbon", stored.Location)

	alice.Username = "bob"
	err = repo.Update(ctx, alice)
	var dup *models.DuplicateIdentityError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	err = repo.Update(ctx, &models.User{ID: 999, Username: "nobody", Email: "nobody@example.com"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGORMUserRepository_DeleteCascades(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewGORMUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	aliceMsg := testutil.CreateMessage(t, db, alice.ID, "from alice", now)
	bobMsg := testutil.CreateMessage(t, db, bob.ID, "from bob", now)

	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FollowedID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: bob.ID, FollowedID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: bob.ID, FollowedID: carol.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: alice.ID, MessageID: bobMsg.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: carol.ID, MessageID: aliceMsg.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: carol.ID, MessageID: bobMsg.ID}).Error)

	require.NoError(t, repo.Delete(ctx, alice.ID))

	_, err := repo.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, int64(0), count(t, db, &models.Message{}, "user_id = ?", alice.ID))
	assert.Equal(t, int64(0), count(t, db, &models.Follow{}, "follower_id = ? OR followed_id = ?", alice.ID, alice.ID))
	assert.Equal(t, int64(0), count(t, db, &models.Like{}, "user_id = ? OR message_id = ?", alice.ID, aliceMsg.ID))

	// Edges between the remaining users survive.
	assert.Equal(t, int64(1), count(t, db, &models.Follow{}, "follower_id = ? AND followed_id = ?", bob.ID, carol.ID))
	assert.Equal(t, int64(1), count(t, db, &models.Like{}, "user_id = ? AND message_id = ?", carol.ID, bobMsg.ID))

	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), models.ErrNotFound)
}

func TestGORMUserRepository_CreateDuplicateOnPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	repo := repositories.NewGORMUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err = repo.Create(context.Background(), &models.User{Username: "bob", Email: "bob@example.com", Password: "hash"})

	var dup *models.DuplicateIdentityError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func userIDs(users []models.User) []uint {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
