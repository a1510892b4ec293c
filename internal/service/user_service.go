// Package service holds the application operations. Every operation takes the
// caller's identity explicitly and checks it with the authorization guard
// before touching storage.
package service

import (
	"context"
	"log/slog"
	"strings"

	"warbler/internal/authz"
	"warbler/internal/credentials"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/session"
	"warbler/internal/validation"
)

// ProfileMessageLimit caps the messages shown on a user's profile.
const ProfileMessageLimit = 100

// InvalidCredentialsMessage is returned for every failed login.
const InvalidCredentialsMessage = "Invalid credentials."

type UserService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	guard    *authz.Guard
}

func NewUserService(users repository.UserRepository, messages repository.MessageRepository, guard *authz.Guard) *UserService {
	return &UserService{users: users, messages: messages, guard: guard}
}

// SignupInput is the signup form.
type SignupInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
	ImageURL string `json:"image_url" validate:"omitempty,imageurl"`
}

// UpdateProfileInput is the profile form. Password is the current password
// and is required to apply any change.
type UpdateProfileInput struct {
	Username       string `json:"username" validate:"omitempty,username"`
	Email          string `json:"email" validate:"omitempty,email,max=254"`
	ImageURL       string `json:"image_url" validate:"omitempty,imageurl"`
	HeaderImageURL string `json:"header_image_url" validate:"omitempty,imageurl"`
	Bio            string `json:"bio" validate:"max=500"`
	Location       string `json:"location" validate:"max=100"`
	Password       string `json:"password" validate:"required"`
}

// Profile is the public view of a user.
type Profile struct {
	User     *models.User     `json:"user"`
	Messages []models.Message `json:"messages"`
	Stats    models.UserStats `json:"stats"`
}

// BuildUser validates the form and returns an unsaved user with the
// password hashed.
func BuildUser(in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	digest, err := credentials.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: digest,
		ImageURL: in.ImageURL,
	}, nil
}

// Signup builds and stores a new user. Taken usernames or emails are reported
// as conflicts.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	user, err := BuildUser(in)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user signed up", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// Authenticate returns the user when username and password match. Unknown
// usernames and wrong passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		credentials.Burn(password)
		observability.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, models.NewUnauthorizedError(InvalidCredentialsMessage)
	}
	if !credentials.Verify(password, user.Password) {
		observability.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, models.NewUnauthorizedError(InvalidCredentialsMessage)
	}
	observability.AuthAttempts.WithLabelValues("success").Inc()
	return user, nil
}

// UpdateProfile edits the caller's own profile after re-checking their
// password. Empty image fields fall back to the defaults.
func (s *UserService) UpdateProfile(ctx context.Context, id session.Identity, in UpdateProfileInput) (*models.User, error) {
	if err := s.guard.Check(id, authz.EditProfile, authz.Resource{TargetUserID: id.UserID}); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if !credentials.Verify(in.Password, user.Password) {
		observability.AuthzDenials.WithLabelValues(string(authz.EditProfile)).Inc()
		return nil, models.NewAccessDeniedError()
	}

	if v := strings.TrimSpace(in.Username); v != "" {
		user.Username = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		user.Email = v
	}
	user.ImageURL = strings.TrimSpace(in.ImageURL)
	if user.ImageURL == "" {
		user.ImageURL = models.DefaultImageURL
	}
	user.HeaderImageURL = strings.TrimSpace(in.HeaderImageURL)
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = models.DefaultHeaderImageURL
	}
	user.Bio = in.Bio
	user.Location = in.Location

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the caller with everything they own.
func (s *UserService) DeleteAccount(ctx context.Context, id session.Identity) error {
	if err := s.guard.Check(id, authz.DeleteAccount, authz.Resource{TargetUserID: id.UserID}); err != nil {
		return err
	}
	if err := s.users.DeleteCascade(ctx, id.UserID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "account deleted", slog.Uint64("user_id", uint64(id.UserID)))
	return nil
}

// Search lists users whose username contains query.
func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	return s.users.Search(ctx, strings.TrimSpace(query), 0)
}

// Profile returns a user with their newest messages and counters.
func (s *UserService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.users.GetCachedByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByUser(ctx, userID, ProfileMessageLimit)
	if err != nil {
		return nil, err
	}
	stats, err := s.users.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Messages: msgs, Stats: *stats}, nil
}
