package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"warbler/internal/metrics"
	"warbler/internal/models"
	"warbler/internal/repositories"
	"warbler/pkg/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used for new password hashes.
const DefaultBcryptCost = 12

// AuthService hashes and verifies passwords and issues, resolves and ends sessions.
type AuthService struct {
	userRepo   repositories.UserRepository
	sessions   session.Store
	events     EventPublisher
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which a session token is valid
	bcryptCost int
	dummyHash  []byte // compared against when the username is unknown
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithBcryptCost overrides DefaultBcryptCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.bcryptCost = cost }
}

// WithSessionTTL overrides the 24h session lifetime.
func WithSessionTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) { s.tokenDurat = ttl }
}

// WithAuthEvents publishes user.registered events to p.
func WithAuthEvents(p EventPublisher) AuthOption {
	return func(s *AuthService) { s.events = p }
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessions session.Store, jwtSecret string, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:   userRepo,
		sessions:   sessions,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
		bcryptCost: DefaultBcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("warbler-dummy-password"), s.bcryptCost)
	return s
}

// RegisterInput holds signup fields. ImageURL and HeaderImageURL arrive with
// defaults already applied.
type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	ImageURL       string
	HeaderImageURL string
}

// Register hashes the password and stores a new user. A taken username or
// email is reported by the store as *models.DuplicateIdentityError. Passwords
// over models.MaxPasswordBytes yield models.ErrPasswordTooLong.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) > models.MaxPasswordBytes {
		return nil, models.ErrPasswordTooLong
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, models.ErrPasswordTooLong
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       string(hashedPassword),
		ImageURL:       in.ImageURL,
		HeaderImageURL: in.HeaderImageURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	metrics.Signups.Inc()
	publish(s.events, "user.registered", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

// Authenticate returns the user whose username and password match. Unknown
// usernames and wrong passwords both yield models.ErrAuthMismatch.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		// Spend the same time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, models.ErrAuthMismatch
	}

	if err := s.VerifyPassword(user, password); err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return user, nil
}

// VerifyPassword checks password against the user's stored hash.
func (s *AuthService) VerifyPassword(user *models.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.ErrAuthMismatch
	}
	return nil
}

// EstablishSession issues a signed session token naming the user.
func (s *AuthService) EstablishSession(_ context.Context, user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"jti":      uuid.New().String(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenDurat).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// EndSession revokes the token until it expires. Tokens that no longer
// validate are already unusable, so they are ignored.
func (s *AuthService) EndSession(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil
	}
	jti, _ := claims["jti"].(string)
	exp, _ := claims["exp"].(float64)
	if jti == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, jti, time.Unix(int64(exp), 0)); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// ResolveSession returns the user a live session token belongs to.
func (s *AuthService) ResolveSession(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAuthMismatch, err)
	}

	jti, _ := claims["jti"].(string)
	revoked, err := s.sessions.IsRevoked(ctx, jti)
	if err != nil {
		return nil, err
	}
	if jti == "" || revoked {
		return nil, fmt.Errorf("%w: session ended", models.ErrAuthMismatch)
	}

	id, ok := claims["user_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: token has no user", models.ErrAuthMismatch)
	}
	user, err := s.userRepo.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", models.ErrAuthMismatch)
		}
		return nil, err
	}
	return user, nil
}

// ValidateToken parses and validates a session token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		slog.Debug("token validation failed", "error", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
