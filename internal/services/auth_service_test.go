package services_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/services"
	"warbler/pkg/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, q string) ([]models.User, error) {
	args := m.Called(q)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, payload interface{}) error {
	args := m.Called(routingKey, payload)
	return args.Error(0)
}

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	code := m.Run()
	os.Exit(code)
}

func newAuthService(repo *MockUserRepository) *services.AuthService {
	return services.NewAuthService(repo, session.NewMemoryStore(), testJWTSecret, services.WithBcryptCost(bcrypt.MinCost))
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := new(MockPublisher)
	authService := services.NewAuthService(mockRepo, session.NewMemoryStore(), testJWTSecret,
		services.WithBcryptCost(bcrypt.MinCost), services.WithAuthEvents(publisher))
	ctx := context.Background()

	// Test successful registration
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = 1
	}).Return(nil).Once()
	publisher.On("Publish", "user.registered", mock.Anything).Return(nil).Once()

	user, err := authService.Register(ctx, services.RegisterInput{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
		ImageURL: "/static/images/default-pic.png",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	assert.Equal(t, "/static/images/default-pic.png", user.ImageURL)
	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)

	// Test username already taken
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(&models.DuplicateIdentityError{Field: "username"}).Once()
	_, err = authService.Register(ctx, services.RegisterInput{Username: "testuser", Email: "x@example.com", Password: "pw"})
	assert.ErrorIs(t, err, models.ErrDuplicateIdentity)
	assert.Contains(t, err.Error(), "username already taken")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterPasswordLength(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)
	ctx := context.Background()

	// bcrypt cannot hash more than 72 bytes; the store is never reached.
	_, err := authService.Register(ctx, services.RegisterInput{
		Username: "longpass",
		Email:    "long@example.com",
		Password: strings.Repeat("a", models.MaxPasswordBytes+1),
	})
	assert.ErrorIs(t, err, models.ErrPasswordTooLong)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)

	// Multi-byte characters count in bytes, not characters.
	_, err = authService.Register(ctx, services.RegisterInput{
		Username: "longpass",
		Email:    "long@example.com",
		Password: strings.Repeat("é", 37),
	})
	assert.ErrorIs(t, err, models.ErrPasswordTooLong)

	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	_, err = authService.Register(ctx, services.RegisterInput{
		Username: "longpass",
		Email:    "long@example.com",
		Password: strings.Repeat("a", models.MaxPasswordBytes),
	})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{ID: 7, Username: "testuser", Email: "test@example.com", Password: string(hashedPassword)}

	// Test successful login
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	got, err := authService.Authenticate(ctx, "testuser", "password123")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	got, err = authService.Authenticate(ctx, "testuser", "wrongpassword")
	assert.ErrorIs(t, err, models.ErrAuthMismatch)
	assert.Nil(t, got)

	// Test invalid credentials (user not found) gives the same result
	mockRepo.On("GetByUsername", "nonexistentuser").Return(nil, fmt.Errorf("user with username nonexistentuser: %w", models.ErrNotFound)).Once()
	got, err = authService.Authenticate(ctx, "nonexistentuser", "password123")
	assert.ErrorIs(t, err, models.ErrAuthMismatch)
	assert.Equal(t, models.ErrAuthMismatch.Error(), err.Error())
	assert.Nil(t, got)

	// Store failures are not reported as bad credentials
	mockRepo.On("GetByUsername", "broken").Return(nil, fmt.Errorf("connection refused")).Once()
	_, err = authService.Authenticate(ctx, "broken", "password123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrAuthMismatch)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_SessionLifecycle(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)
	ctx := context.Background()
	user := &models.User{ID: 42, Username: "testuser"}

	token, err := authService.EstablishSession(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])
	assert.NotEmpty(t, claims["jti"])

	mockRepo.On("GetByID", uint(42)).Return(user, nil).Once()
	resolved, err := authService.ResolveSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user, resolved)

	require.NoError(t, authService.EndSession(ctx, token))
	_, err = authService.ResolveSession(ctx, token)
	assert.ErrorIs(t, err, models.ErrAuthMismatch)

	// Ending a garbage token is a no-op
	assert.NoError(t, authService.EndSession(ctx, "invalid.token.string"))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ResolveSessionOfDeletedUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)
	ctx := context.Background()

	token, err := authService.EstablishSession(ctx, &models.User{ID: 5, Username: "gone"})
	require.NoError(t, err)

	mockRepo.On("GetByID", uint(5)).Return(nil, fmt.Errorf("user with ID 5: %w", models.ErrNotFound)).Once()
	_, err = authService.ResolveSession(ctx, token)
	assert.ErrorIs(t, err, models.ErrAuthMismatch)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  1,
		"username": "testuser",
		"jti":      "abc",
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	// Test valid token
	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test token signed with another secret
	forged, _ := token.SignedString([]byte("other_secret"))
	_, err = authService.ValidateToken(forged)
	assert.Error(t, err)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  1,
		"username": "testuser",
		"exp":      jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	_, err = authService.ResolveSession(context.Background(), expiredTokenString)
	assert.ErrorIs(t, err, models.ErrAuthMismatch)
}
