package models

import (
	"errors"
	"regexp"
	"strings"
)

// TypeUser is the document type of users.
const TypeUser = "user"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User represents a registered, verified account.
type User struct {
	// ID is the document ID (UUID format).
	ID string `json:"_id,omitempty"`

	// Username is used to log in.
	Username string `json:"username"`

	// Email is the user's email address (unique).
	// Used for invitations and verification.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string `json:"password"`

	// IsVerified is set once the email address has been confirmed.
	IsVerified bool `json:"isVerified"`
}

// Validate checks the fields required of a stored user.
func (u *User) Validate() error {
	switch {
	case u.ID == "":
		return errors.New("user: missing _id")
	case u.Username == "":
		return errors.New("user: missing username")
	case u.Email == "":
		return errors.New("user: missing email")
	case u.PasswordHash == "":
		return errors.New("user: missing password")
	}
	return nil
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeEmail trims and lower-cases an address for comparison.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
