// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"warbler/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	validate      *validator.Validate
)

// The custom validators read validate, so it is assigned in init.
func init() {
	validate = newValidator()
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
		return ValidateImageURL(fl.Field().String()) == nil
	})
	return v
}

// Struct validates a request payload against its `validate` tags. The result
// is a validation AppError listing one message per offending field.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		details := ToDetails(err)
		return models.NewFieldValidationError(summarize(details), details)
	}
	return nil
}

// ToDetails converts validator errors into a map[field]message.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "username":
		if err := ValidateUsername(fmt.Sprint(fe.Value())); err != nil {
			return err.Error()
		}
	case "password":
		if err := ValidatePassword(fmt.Sprint(fe.Value())); err != nil {
			return err.Error()
		}
	case "imageurl":
		return "must be a URL or an absolute path"
	}
	return "is invalid"
}

func summarize(details map[string]string) string {
	if len(details) == 1 {
		for field, msg := range details {
			return field + " " + msg
		}
	}
	return "Invalid input"
}

// ValidatePassword checks the accepted password length range.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", maxPasswordBytes)
	}
	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, dots, underscores, and hyphens")
	}

	first, last := username[0], username[len(username)-1]
	if strings.ContainsRune("._-", rune(first)) || strings.ContainsRune("._-", rune(last)) {
		return fmt.Errorf("username cannot start or end with a dot, underscore or hyphen")
	}

	return nil
}

// ValidateMessageText requires non-blank text of at most MaxMessageLength characters.
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message text is required")
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return fmt.Errorf("message text must not exceed %d characters", models.MaxMessageLength)
	}
	return nil
}

// ValidateImageURL accepts an empty value, an absolute path or an http(s) URL.
func ValidateImageURL(raw string) error {
	if raw == "" || strings.HasPrefix(raw, "/") {
		return nil
	}
	if err := validate.Var(raw, "http_url"); err != nil {
		return fmt.Errorf("image url must be an http(s) URL or an absolute path")
	}
	return nil
}
