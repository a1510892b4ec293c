package validation

import (
	"errors"
	"strings"
	"testing"

	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "goodpassword", false},
		{"Exactly Min Length", "abcdef", false},
		{"Too Short", "abcde", true},
		{"Exactly Max Bytes", strings.Repeat("a", 72), false},
		{"Too Long", strings.Repeat("a", 73), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Dotted", "jane.doe", false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("u", 31), true},
		{"Illegal Chars", "user@123", true},
		{"Starts Dash", "-user", true},
		{"Ends Underscore", "user_", true},
		{"Ends Dot", "user.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMessageText(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateMessageText("hello"))
	assert.NoError(t, ValidateMessageText(strings.Repeat("é", models.MaxMessageLength)))
	assert.Error(t, ValidateMessageText(""))
	assert.Error(t, ValidateMessageText("   \n\t"))
	assert.Error(t, ValidateMessageText(strings.Repeat("a", models.MaxMessageLength+1)))
}

func TestValidateImageURL(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateImageURL(""))
	assert.NoError(t, ValidateImageURL("/static/images/default-pic.png"))
	assert.NoError(t, ValidateImageURL("https://example.com/a.png"))
	assert.Error(t, ValidateImageURL("javascript:alert(1)"))
}

type signupPayload struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

func TestStructReportsFieldDetails(t *testing.T) {
	err := Struct(signupPayload{Username: "-x", Email: "nope", Password: "123"})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "username")
	assert.Equal(t, "must be a valid email address", appErr.Fields["email"])
	assert.Contains(t, appErr.Fields["password"], "at least 6")
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(signupPayload{Username: "alice", Email: "alice@example.com", Password: "goodpassword"}))
}

type profilePayload struct {
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	ImageURL string `json:"image_url" validate:"omitempty,imageurl"`
}

func TestStructCustomValidatorsShareValidator(t *testing.T) {
	t.Parallel()
	require.NotNil(t, validate)

	assert.NoError(t, Struct(profilePayload{ImageURL: "/static/images/default-pic.png"}))
	assert.NoError(t, Struct(profilePayload{Email: "a@example.com", ImageURL: "https://example.com/a.png"}))

	err := Struct(profilePayload{Email: "nope", ImageURL: "ftp://example.com/a.png"})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "must be a URL or an absolute path", appErr.Fields["image_url"])
	assert.Equal(t, "must be a valid email address", appErr.Fields["email"])
}
