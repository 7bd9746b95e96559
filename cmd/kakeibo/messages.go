package main

import (
	"errors"
	"fmt"

	"github.com/mmynk/kakeibo/internal/i18n"
	"github.com/mmynk/kakeibo/internal/ledger"
)

// errorMessages maps workflow errors to message keys, most specific first.
var errorMessages = []struct {
	err error
	key string
}{
	{ledger.ErrEmptyGroupName, i18n.ErrEmptyGroupName},
	{ledger.ErrReservedGroupName, i18n.ErrReservedGroupName},
	{ledger.ErrEmptyUsername, i18n.ErrEmptyUsername},
	{ledger.ErrInvalidEmail, i18n.ErrInvalidEmail},
	{ledger.ErrWeakPassword, i18n.ErrWeakPassword},
	{ledger.ErrInvalidAmount, i18n.ErrInvalidAmount},
	{ledger.ErrInvalidToken, i18n.ErrInvalidToken},
	{ledger.ErrEmailMismatch, i18n.ErrEmailMismatch},
	{ledger.ErrUnsupportedLanguage, i18n.ErrUnsupportedLang},
	{ledger.ErrGroupNotFound, i18n.ErrGroupNotFound},
	{ledger.ErrInvitationNotFound, i18n.ErrInvitationMissing},
	{ledger.ErrTransactionNotFound, i18n.ErrTransactionGone},
	{ledger.ErrInviteeNotFound, i18n.ErrInviteeNotFound},
	{ledger.ErrUserNotFound, i18n.ErrUserNotFound},
	{ledger.ErrNoPendingSignup, i18n.ErrNoPendingSignup},
	{ledger.ErrPrivateGroup, i18n.ErrPrivateGroup},
	{ledger.ErrLeavePrivateGroup, i18n.ErrLeavePrivate},
	{ledger.ErrRenamePrivate, i18n.ErrRenamePrivate},
	{ledger.ErrNotMember, i18n.ErrNotMember},
	{ledger.ErrNotOwner, i18n.ErrNotOwner},
	{ledger.ErrNotInvitee, i18n.ErrNotInvitee},
	{ledger.ErrNotSignedIn, i18n.ErrNotSignedIn},
	{ledger.ErrInvalidCredentials, i18n.ErrBadCredentials},
	{ledger.ErrUnverified, i18n.ErrUnverified},
	{ledger.ErrAlreadyMember, i18n.ErrAlreadyMember},
	{ledger.ErrEmailTaken, i18n.ErrEmailTaken},
	{ledger.ErrUsernameTaken, i18n.ErrUsernameTaken},
	{ledger.ErrMailFailed, i18n.ErrMailFailed},
}

func errorKey(err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.key
		}
	}
	return i18n.ErrGeneric
}

// ok prints a localized outcome.
func (a *app) ok(key string, args ...any) error {
	fmt.Fprintln(a.stdout, a.p.Sprintf(key, args...))
	return nil
}

// fail prints the localized failure of an operation, followed by the
// reason, and reports err to the caller.
func (a *app) fail(opKey string, err error) error {
	reason := a.p.Sprintf(errorKey(err))
	if opKey != "" {
		reason = a.p.Sprintf(opKey) + ": " + reason
	}
	fmt.Fprintln(a.stderr, reason)
	return fmt.Errorf("%w: %w", errReported, err)
}
