package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/kakeibo/internal/auth"
	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/session"
	"github.com/mmynk/kakeibo/internal/storage"
)

// Signup validates a new account, stores it locally as pending, and mails
// a verification token. The user document is only created by Verify.
func (l *Ledger) Signup(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = models.NormalizeEmail(email)
	if username == "" {
		return ErrEmptyUsername
	}
	if !models.ValidEmail(email) {
		return ErrInvalidEmail
	}
	if err := l.auth.ValidateCredential(password); err != nil {
		return ErrWeakPassword
	}

	if err := l.checkAvailable(ctx, "", username, email); err != nil {
		return err
	}

	hash, err := l.auth.HashCredential(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	pending := &session.PendingSignup{Username: username, Email: email, PasswordHash: hash}
	if err := l.session.SetPendingSignup(ctx, pending); err != nil {
		return fmt.Errorf("store pending signup: %w", err)
	}
	return l.sendVerification(ctx, email)
}

// ResendVerification mails a fresh token for the pending signup.
func (l *Ledger) ResendVerification(ctx context.Context) error {
	pending, err := l.session.PendingSignup(ctx)
	if err != nil {
		return fmt.Errorf("read pending signup: %w", err)
	}
	if pending == nil {
		return ErrNoPendingSignup
	}
	return l.sendVerification(ctx, pending.Email)
}

// Verify checks a verification token against the pending signup, creates
// the verified user and its private group, and drops the pending signup.
// The user still has to log in.
func (l *Ledger) Verify(ctx context.Context, token string) (*models.User, error) {
	email, err := l.tokens.ValidateVerificationToken(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	pending, err := l.session.PendingSignup(ctx)
	if err != nil {
		return nil, fmt.Errorf("read pending signup: %w", err)
	}
	if pending == nil {
		return nil, ErrNoPendingSignup
	}
	if models.NormalizeEmail(pending.Email) != models.NormalizeEmail(email) {
		return nil, ErrEmailMismatch
	}

	if err := l.checkAvailable(ctx, "", pending.Username, pending.Email); err != nil {
		return nil, err
	}

	user, err := l.repo.Users.Create(ctx, &models.User{
		Username:     pending.Username,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		IsVerified:   true,
	})
	if err != nil {
		return nil, l.remote("create user", err, "username", pending.Username)
	}
	if _, err := l.EnsurePrivateGroup(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := l.session.ClearPendingSignup(ctx); err != nil {
		return nil, fmt.Errorf("clear pending signup: %w", err)
	}
	l.logger.Info("User verified", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials, stores the session, and resolves the
// selected group. When the selection cannot be resolved the session is
// cleared again, so a failed login leaves the user signed out.
func (l *Ledger) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	user, err := l.auth.Authenticate(ctx, username, password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return nil, ErrInvalidCredentials
	case errors.Is(err, auth.ErrUnverified):
		return nil, ErrUnverified
	case err != nil:
		return nil, l.remote("authenticate", err, "username", username)
	}

	if err := l.session.SignIn(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	l.state.SetUser(user)
	if _, err := l.InitializeSelection(ctx); err != nil {
		if lerr := l.session.Logout(ctx); lerr != nil {
			l.logger.Warn("Failed to clear session after login failure", "user_id", user.ID, "error", lerr)
		}
		return nil, err
	}
	l.logger.Info("User logged in", "user_id", user.ID)
	return user, nil
}

// Logout clears the session and the shared state. The language preference is kept.
func (l *Ledger) Logout(ctx context.Context) error {
	if err := l.session.Logout(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Profile returns the signed-in user.
func (l *Ledger) Profile(ctx context.Context) (*models.User, error) {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := l.repo.Users.Get(ctx, userID)
	if err != nil {
		return nil, l.notFoundOr("get user", err, ErrUserNotFound, "user_id", userID)
	}
	l.state.SetUser(user)
	return user, nil
}

// ProfileUpdate lists the profile fields to change. Empty fields are left as they are.
type ProfileUpdate struct {
	Username string
	Email    string
	Password string
}

// UpdateProfile changes the signed-in user's username, email or password.
func (l *Ledger) UpdateProfile(ctx context.Context, u ProfileUpdate) (*models.User, error) {
	username := strings.TrimSpace(u.Username)
	email := models.NormalizeEmail(u.Email)
	if email != "" && !models.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if u.Password != "" {
		if err := l.auth.ValidateCredential(u.Password); err != nil {
			return nil, ErrWeakPassword
		}
	}
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	current, err := l.repo.Users.Get(ctx, userID)
	if err != nil {
		return nil, l.notFoundOr("get user", err, ErrUserNotFound, "user_id", userID)
	}

	p := storage.NewPatch()
	if username != "" && username != current.Username {
		p.SetField("username", username)
	} else {
		username = ""
	}
	if email != "" && email != current.Email {
		p.SetField("email", email)
	} else {
		email = ""
	}
	if err := l.checkAvailable(ctx, userID, username, email); err != nil {
		return nil, err
	}
	if u.Password != "" {
		hash, err := l.auth.HashCredential(u.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		p.SetField("password", hash)
	}
	if p.Empty() {
		return current, nil
	}

	user, err := l.repo.Users.Update(ctx, userID, p)
	if err != nil {
		return nil, l.notFoundOr("update user", err, ErrUserNotFound, "user_id", userID)
	}
	l.state.SetUser(user)
	return user, nil
}

// DeleteAccount removes the signed-in user from every group, deleting the
// groups they own alone (private group included) with their transactions,
// then deletes the user's pending invitations, the user, and the session.
// Transactions the user recorded in groups that live on are kept.
//
// A failure stops before the user document is deleted; repeating the call
// picks up where it stopped.
func (l *Ledger) DeleteAccount(ctx context.Context) error {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	groups, err := l.repo.Groups.ListAccessible(ctx, userID)
	if err != nil {
		return l.remote("list groups", err, "user_id", userID)
	}
	for _, g := range groups {
		if err := l.depart(ctx, g, userID, deletingAccount); err != nil && !errors.Is(err, ErrGroupNotFound) {
			return err
		}
	}

	invs, err := l.repo.Invitations.ListForInvitee(ctx, userID)
	if err != nil {
		return l.remote("list invitations", err, "user_id", userID)
	}
	for _, inv := range invs {
		if err := l.deleteInvitation(ctx, inv.ID); err != nil {
			return err
		}
	}

	if err := l.repo.Users.Delete(ctx, userID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return l.remote("delete user", err, "user_id", userID)
	}
	if err := l.session.Logout(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	l.logger.Info("Account deleted", "user_id", userID, "groups", len(groups))
	return nil
}

// checkAvailable rejects a username or email already used by a user other
// than self. Empty values are not checked.
func (l *Ledger) checkAvailable(ctx context.Context, self, username, email string) error {
	if email != "" {
		u, err := l.repo.Users.FindByEmail(ctx, email)
		if err != nil {
			return l.remote("find user by email", err)
		}
		if u != nil && u.ID != self {
			return ErrEmailTaken
		}
	}
	if username != "" {
		u, err := l.repo.Users.FindByUsername(ctx, username)
		if err != nil {
			return l.remote("find user by username", err)
		}
		if u != nil && u.ID != self {
			return ErrUsernameTaken
		}
	}
	return nil
}

func (l *Ledger) sendVerification(ctx context.Context, email string) error {
	token, err := l.tokens.GenerateVerificationToken(email)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	if err := l.mailer.Send(ctx, email, token); err != nil {
		l.logger.Error("Verification email failed", "error", err)
		return fmt.Errorf("%w: %v", ErrMailFailed, err)
	}
	return nil
}
