package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"warbler/internal/credentials"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every synthetic user.
const DefaultPassword = "password123"

// Options size a synthetic social graph.
type Options struct {
	Users           int
	MessagesPerUser int
	FollowsPerUser  int
	LikesPerUser    int
	// MaxDays spreads message timestamps over this many past days.
	MaxDays int
}

// Factory builds users and messages with gofakeit data and persists them.
type Factory struct {
	db     *gorm.DB
	faker  *gofakeit.Faker
	digest string
	seq    int
}

// NewFactory returns a Factory. A zero seed gives a random sequence.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed)}
}

func (f *Factory) passwordDigest() (string, error) {
	if f.digest == "" {
		digest, err := credentials.Hash(DefaultPassword)
		if err != nil {
			return "", err
		}
		f.digest = digest
	}
	return f.digest, nil
}

func (f *Factory) username() string {
	f.seq++
	base := strings.Map(func(r rune) rune {
		if r < 128 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, f.faker.Username())
	if len(base) > 20 {
		base = base[:20]
	}
	return fmt.Sprintf("%s%d", strings.ToLower(base), f.seq)
}

// BuildUser returns an unsaved user with fake profile data.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	digest, err := f.passwordDigest()
	if err != nil {
		return nil, err
	}
	username := f.username()
	user := &models.User{
		Username: username,
		Email:    username + "@" + f.faker.DomainName(),
		Password: digest,
		ImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Bio:      truncate(f.faker.Sentence(10), 500),
		Location: f.faker.City(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := validation.ValidateUsername(user.Username); err != nil {
		return nil, fmt.Errorf("generated username %q: %w", user.Username, err)
	}
	return user, nil
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildMessage returns an unsaved message by user, timestamped within the
// last maxDays days.
func (f *Factory) BuildMessage(user *models.User, maxDays int, overrides ...func(*models.Message)) *models.Message {
	if maxDays <= 0 {
		maxDays = 90
	}
	now := time.Now().UTC()
	msg := &models.Message{
		Text:      truncate(f.faker.Sentence(f.faker.Number(4, 16)), models.MaxMessageLength),
		Timestamp: f.faker.DateRange(now.AddDate(0, 0, -maxDays), now),
		UserID:    user.ID,
	}
	for _, override := range overrides {
		override(msg)
	}
	return msg
}

// CreateMessage builds and persists a message by user.
func (f *Factory) CreateMessage(ctx context.Context, user *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	msg := f.BuildMessage(user, 0, overrides...)
	if err := f.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// SeedSocialGraph creates users with messages, then random follow and like
// edges between them. Nobody follows themselves or likes their own messages.
func (f *Factory) SeedSocialGraph(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{}
	if opts.Users <= 0 {
		return summary, nil
	}

	users := make([]*models.User, 0, opts.Users)
	for range opts.Users {
		u, err := f.BuildUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(users, batchSize).Error; err != nil {
			return fmt.Errorf("insert users: %w", err)
		}
		summary.Users = len(users)

		var messages []*models.Message
		for _, u := range users {
			for range opts.MessagesPerUser {
				messages = append(messages, f.BuildMessage(u, opts.MaxDays))
			}
		}
		if len(messages) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(messages, batchSize).Error; err != nil {
				return fmt.Errorf("insert messages: %w", err)
			}
		}
		summary.Messages = len(messages)

		follows := f.follows(users, opts.FollowsPerUser)
		if len(follows) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(follows, batchSize).Error; err != nil {
				return fmt.Errorf("insert follows: %w", err)
			}
		}
		summary.Follows = len(follows)

		likes := f.likes(users, messages, opts.LikesPerUser)
		if len(likes) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(likes, batchSize).Error; err != nil {
				return fmt.Errorf("insert likes: %w", err)
			}
		}
		summary.Likes = len(likes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "synthetic seed loaded",
		slog.Int("users", summary.Users),
		slog.Int("messages", summary.Messages),
		slog.Int("follows", summary.Follows),
		slog.Int("likes", summary.Likes),
	)
	return summary, nil
}

// follows picks up to perUser distinct targets for every user.
func (f *Factory) follows(users []*models.User, perUser int) []*models.Follow {
	var out []*models.Follow
	for i, u := range users {
		for _, j := range f.pick(len(users), perUser, i) {
			out = append(out, &models.Follow{FollowerID: u.ID, FollowedID: users[j].ID})
		}
	}
	return out
}

// likes picks up to perUser distinct messages for every user, skipping the
// user's own.
func (f *Factory) likes(users []*models.User, messages []*models.Message, perUser int) []*models.Like {
	var out []*models.Like
	if len(messages) == 0 {
		return out
	}
	for _, u := range users {
		order := f.perm(len(messages))
		n := 0
		for _, idx := range order {
			if n >= perUser {
				break
			}
			if messages[idx].UserID == u.ID {
				continue
			}
			out = append(out, &models.Like{UserID: u.ID, MessageID: messages[idx].ID})
			n++
		}
	}
	return out
}

// pick returns up to k distinct indexes in [0, n) other than skip.
func (f *Factory) pick(n, k, skip int) []int {
	var out []int
	for _, idx := range f.perm(n) {
		if len(out) >= k {
			break
		}
		if idx != skip {
			out = append(out, idx)
		}
	}
	return out
}

func (f *Factory) perm(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	f.faker.ShuffleInts(idx)
	return idx
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
