package auth

import (
	"context"

	"github.com/mmynk/kakeibo/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different credential schemes
// without changing the workflow code.
type Authenticator interface {
	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	// HashCredential turns a credential into the form stored on the user document.
	HashCredential(credential string) (string, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
