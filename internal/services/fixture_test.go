package services_test

import (
	"context"
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/repositories"
	"warbler/internal/services"
	"warbler/internal/testutil"
	"warbler/pkg/session"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "secret123"

// fixture wires every service over one in-memory database.
type fixture struct {
	db        *gorm.DB
	auth      *services.AuthService
	users     *services.UserService
	graph     *services.GraphService
	likes     *services.LikeService
	messages  *services.MessageService
	timelines *services.TimelineService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	messageRepo := repositories.NewGORMMessageRepository(db)
	followRepo := repositories.NewGORMFollowRepository(db)
	likeRepo := repositories.NewGORMLikeRepository(db)

	auth := services.NewAuthService(userRepo, session.NewMemoryStore(), testJWTSecret, services.WithBcryptCost(bcrypt.MinCost))
	return &fixture{
		db:        db,
		auth:      auth,
		users:     services.NewUserService(userRepo, auth, nil),
		graph:     services.NewGraphService(userRepo, followRepo, nil),
		likes:     services.NewLikeService(messageRepo, likeRepo, nil),
		messages:  services.NewMessageService(messageRepo, nil),
		timelines: services.NewTimelineService(userRepo, followRepo, messageRepo, likeRepo),
	}
}

func (f *fixture) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), services.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) post(t *testing.T, author *models.User, text string, at time.Time) *models.Message {
	t.Helper()
	return testutil.CreateMessage(t, f.db, author.ID, text, at.UTC())
}

func texts(entries []models.TimelineEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Text)
	}
	return out
}
