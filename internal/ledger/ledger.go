// Package ledger implements the client-side workflow of the expense ledger:
// accounts, groups, invitations, membership changes and transactions.
//
// The document store offers no multi-document transactions. Each operation
// is a sequence of single-document calls, ordered so that every
// intermediate state is valid and a retry of a failed operation converges.
// Calls are issued sequentially; a Ledger is meant to serve one user action
// at a time.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/kakeibo/internal/auth"
	"github.com/mmynk/kakeibo/internal/mail"
	"github.com/mmynk/kakeibo/internal/repository"
	"github.com/mmynk/kakeibo/internal/session"
	"github.com/mmynk/kakeibo/internal/state"
)

// VerificationTokens issues and checks e-mail verification tokens.
// *auth.JWTManager implements it.
type VerificationTokens interface {
	GenerateVerificationToken(email string) (string, error)
	ValidateVerificationToken(token string) (string, error)
}

// Ledger runs the workflow for the signed-in user.
type Ledger struct {
	repo    *repository.Repository
	session *session.Session
	state   *state.State
	auth    auth.Authenticator
	tokens  VerificationTokens
	mailer  mail.Sender
	logger  *slog.Logger

	now      func() time.Time
	location *time.Location
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the time zone used to bucket summaries by day.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.location = loc }
}

// New creates a Ledger.
func New(
	repo *repository.Repository,
	sess *session.Session,
	authenticator auth.Authenticator,
	tokens VerificationTokens,
	mailer mail.Sender,
	logger *slog.Logger,
	opts ...Option,
) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{
		repo:     repo,
		session:  sess,
		state:    sess.State(),
		auth:     authenticator,
		tokens:   tokens,
		mailer:   mailer,
		logger:   logger,
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the shared state the ledger writes to.
func (l *Ledger) State() *state.State {
	return l.state
}

// CurrentUserID returns the signed-in user's ID.
// Returns ErrNotSignedIn without touching the store when there is none.
func (l *Ledger) CurrentUserID(ctx context.Context) (string, error) {
	id, err := l.session.CurrentUserID(ctx)
	if errors.Is(err, session.ErrNotSignedIn) {
		return "", ErrNotSignedIn
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return id, nil
}
