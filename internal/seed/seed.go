// Package seed fills an empty database with demo users, messages, follows and
// likes. It is meant for development only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"warbler/internal/models"
	"warbler/internal/repositories"
	"warbler/internal/services"

	"github.com/brianvoe/gofakeit/v6"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// Options controls how much demo data is generated.
type Options struct {
	Users           int
	MessagesPerUser int
	FollowsPerUser  int
	LikesPerUser    int
	MaxDays         int   // messages are spread over this many past days
	Seed            int64 // 0 picks a time-based seed
}

// DefaultOptions returns a small but lively data set.
func DefaultOptions() Options {
	return Options{
		Users:           20,
		MessagesPerUser: 10,
		FollowsPerUser:  5,
		LikesPerUser:    8,
		MaxDays:         30,
	}
}

// Result summarizes what a run created.
type Result struct {
	Users    []*models.User
	Messages []*models.Message
	Follows  int // new edges only
	Likes    int // edges left after all toggles
}

// Seeder creates demo data through the same services the API uses.
type Seeder struct {
	auth     *services.AuthService
	graph    *services.GraphService
	likes    *services.LikeService
	messages repositories.MessageRepository
	defaults RegisterDefaults
	faker    *gofakeit.Faker
	opts     Options
}

// RegisterDefaults are the profile images given to seeded accounts.
type RegisterDefaults struct {
	ImageURL       string
	HeaderImageURL string
}

// New creates a Seeder. Messages are written through the repository so their
// timestamps can be backdated.
func New(auth *services.AuthService, graph *services.GraphService, likes *services.LikeService, messages repositories.MessageRepository, defaults RegisterDefaults, opts Options) *Seeder {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Seeder{
		auth:     auth,
		graph:    graph,
		likes:    likes,
		messages: messages,
		defaults: defaults,
		faker:    gofakeit.New(seed),
		opts:     opts,
	}
}

// Run generates the demo data.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	for i := 0; i < s.opts.Users; i++ {
		user, err := s.createUser(ctx)
		if err != nil {
			return res, err
		}
		res.Users = append(res.Users, user)
	}

	now := time.Now().UTC()
	for _, user := range res.Users {
		for i := 0; i < s.opts.MessagesPerUser; i++ {
			message := &models.Message{
				UserID:    user.ID,
				Text:      truncate(s.faker.Sentence(s.faker.Number(4, 20)), models.MaxMessageLength),
				Timestamp: now.Add(-s.backdate()),
			}
			if err := s.messages.Create(ctx, message); err != nil {
				return res, fmt.Errorf("failed to seed message: %w", err)
			}
			res.Messages = append(res.Messages, message)
		}
	}

	if len(res.Users) > 1 {
		for _, user := range res.Users {
			for i := 0; i < s.opts.FollowsPerUser; i++ {
				other := res.Users[s.faker.Number(0, len(res.Users)-1)]
				if other.ID == user.ID {
					continue
				}
				exists, err := s.graph.IsFollowing(ctx, user.ID, other.ID)
				if err != nil {
					return res, fmt.Errorf("failed to check follow: %w", err)
				}
				if exists {
					continue
				}
				if err := s.graph.Follow(ctx, user.ID, other.ID); err != nil {
					return res, fmt.Errorf("failed to seed follow: %w", err)
				}
				res.Follows++
			}
		}
	}

	if len(res.Messages) > 0 {
		for _, user := range res.Users {
			for i := 0; i < s.opts.LikesPerUser; i++ {
				message := res.Messages[s.faker.Number(0, len(res.Messages)-1)]
				state, err := s.likes.ToggleLike(ctx, user.ID, message.ID)
				if err != nil {
					return res, fmt.Errorf("failed to seed like: %w", err)
				}
				if state == models.LikedNow {
					res.Likes++
				} else {
					res.Likes--
				}
			}
		}
	}

	slog.Info("seeded demo data",
		"users", len(res.Users),
		"messages", len(res.Messages),
		"follows", res.Follows,
		"likes", res.Likes,
	)
	return res, nil
}

// createUser registers a fake account, retrying on username or email collisions.
func (s *Seeder) createUser(ctx context.Context) (*models.User, error) {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		user, err := s.auth.Register(ctx, services.RegisterInput{
			Username:       fmt.Sprintf("%s%d", s.faker.Username(), s.faker.Number(100, 999)),
			Email:          s.faker.Email(),
			Password:       DemoPassword,
			ImageURL:       s.defaults.ImageURL,
			HeaderImageURL: s.defaults.HeaderImageURL,
		})
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, models.ErrDuplicateIdentity) {
			return nil, fmt.Errorf("failed to seed user: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to seed user after retries: %w", lastErr)
}

func (s *Seeder) backdate() time.Duration {
	days := s.faker.Number(0, s.opts.MaxDays-1)
	minutes := s.faker.Number(0, 24*60-1)
	return time.Duration(days)*24*time.Hour + time.Duration(minutes)*time.Minute
}

// truncate cuts text to at most n characters.
func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
