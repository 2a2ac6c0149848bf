package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/indranuj17/FeedlinerX/internal/common"
)

const (
	minUsernameLen = 2
	maxUsernameLen = 20
	minPasswordLen = 6
	maxContentLen  = 300
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^.+@.+\..+$`)
	codePattern     = regexp.MustCompile(`^[0-9]{6}$`)
)

// NormalizeUsername trims surrounding whitespace.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUsername checks a normalized username.
func ValidateUsername(username string) error {
	switch {
	case len(username) < minUsernameLen:
		return common.Invalid("username", "Username must be at least 2 characters")
	case len(username) > maxUsernameLen:
		return common.Invalid("username", "Username must be no more than 20 characters")
	case !usernamePattern.MatchString(username):
		return common.Invalid("username", "Username must not contain special characters")
	}
	return nil
}

// ValidateEmail checks a normalized address.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return common.Invalid("email", "Invalid email address")
	}
	return nil
}

// ValidatePassword checks password length.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return common.Invalid("password", "Password must be at least 6 characters")
	}
	return nil
}

// ValidateCode checks that code is six digits.
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return common.Invalid("code", "Code must be of 6 digits")
	}
	return nil
}

// ValidateContent checks a message body.
func ValidateContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return common.Invalid("content", "Message content must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxContentLen {
		return common.Invalid("content", "Message content must be no longer than 300 characters")
	}
	return nil
}
