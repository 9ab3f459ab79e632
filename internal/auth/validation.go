package auth

import (
	"fmt"
	"strings"
)

// ValidationError is returned for user-correctable input problems; its
// message is safe to echo back in the response body.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

func validationErrorf(format string, args ...interface{}) error {
	return ValidationError(fmt.Sprintf(format, args...))
}

// ValidateUsername checks signup username requirements.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return validationErrorf("username must be at least 3 characters")
	}
	if len(username) > 80 {
		return validationErrorf("username must be at most 80 characters")
	}
	return nil
}

// ValidatePassword checks the password against the configured minimum length.
func ValidatePassword(password string, minLength int) error {
	if minLength == 0 {
		minLength = 6
	}
	if len(password) < minLength {
		return validationErrorf("password must be at least %d characters", minLength)
	}
	// Cap length to bound hashing cost
	if len(password) > 128 {
		return validationErrorf("password must be at most 128 characters")
	}
	return nil
}

// ValidateEmail performs the same shallow shape check the signup flow has
// always used; real deliverability is only known at send time.
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return validationErrorf("invalid email format")
	}
	return nil
}
