package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/kakeibo/internal/auth"
)

// Error categories. Every error returned by the Ledger wraps one of them.
var (
	// ErrValidation is returned for bad input, before any remote call.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller may not perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrAuth is returned when no user is signed in or credentials are wrong.
	ErrAuth = errors.New("authentication required")
	// ErrRemote is returned when a document store call fails.
	ErrRemote = errors.New("remote call failed")
	// ErrConflict is returned when the action would duplicate existing data.
	ErrConflict = errors.New("conflict")
)

var (
	ErrEmptyGroupName    = fmt.Errorf("%w: group name required", ErrValidation)
	ErrReservedGroupName = fmt.Errorf("%w: group name is reserved", ErrValidation)
	ErrEmptyUsername     = fmt.Errorf("%w: username required", ErrValidation)
	ErrInvalidEmail      = fmt.Errorf("%w: invalid email address", ErrValidation)
	ErrWeakPassword      = fmt.Errorf("%w: %w", ErrValidation, auth.ErrWeakPassword)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidToken      = fmt.Errorf("%w: invalid verification token", ErrValidation)
	ErrEmailMismatch     = fmt.Errorf("%w: verification email does not match the pending signup", ErrValidation)

	ErrGroupNotFound       = fmt.Errorf("%w: group", ErrNotFound)
	ErrInvitationNotFound  = fmt.Errorf("%w: invitation", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("%w: transaction", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
	ErrInviteeNotFound     = fmt.Errorf("%w: no verified user has that email address", ErrNotFound)
	ErrNoPendingSignup     = fmt.Errorf("%w: no pending signup", ErrNotFound)

	ErrPrivateGroup      = fmt.Errorf("%w: private groups cannot be shared", ErrForbidden)
	ErrLeavePrivateGroup = fmt.Errorf("%w: cannot leave private group", ErrForbidden)
	ErrRenamePrivate     = fmt.Errorf("%w: private group cannot be renamed", ErrForbidden)
	ErrNotMember         = fmt.Errorf("%w: not a member of the group", ErrForbidden)
	ErrNotOwner          = fmt.Errorf("%w: only the owner can do that", ErrForbidden)
	ErrNotInvitee        = fmt.Errorf("%w: invitation is addressed to another user", ErrForbidden)

	ErrNotSignedIn        = fmt.Errorf("%w: not signed in", ErrAuth)
	ErrInvalidCredentials = fmt.Errorf("%w: %w", ErrAuth, auth.ErrInvalidCredentials)
	ErrUnverified         = fmt.Errorf("%w: %w", ErrAuth, auth.ErrUnverified)

	ErrAlreadyMember = fmt.Errorf("%w: already a member of the group", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email address already registered", ErrConflict)
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", ErrConflict)

	ErrMailFailed = fmt.Errorf("%w: failed to send verification email", ErrRemote)
)

// remote logs a failed store call and wraps it in ErrRemote.
func (l *Ledger) remote(op string, err error, args ...any) error {
	l.logger.Error(op+" failed", append(args, "error", err)...)
	return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
