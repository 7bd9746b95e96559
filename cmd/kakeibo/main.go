// Command kakeibo is the command-line client of the shared expense ledger.
//
// Usage:
//
//	kakeibo signup -username NAME -email ADDRESS
//	kakeibo verify TOKEN
//	kakeibo login -username NAME
//	kakeibo group create Trip
//	kakeibo tx add -title Lunch 1200
//
// Run "kakeibo help" for every command.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/text/message"

	"github.com/mmynk/kakeibo/internal/auth"
	"github.com/mmynk/kakeibo/internal/config"
	"github.com/mmynk/kakeibo/internal/i18n"
	"github.com/mmynk/kakeibo/internal/kv"
	"github.com/mmynk/kakeibo/internal/ledger"
	"github.com/mmynk/kakeibo/internal/mail"
	"github.com/mmynk/kakeibo/internal/repository"
	"github.com/mmynk/kakeibo/internal/session"
	"github.com/mmynk/kakeibo/internal/state"
	"github.com/mmynk/kakeibo/internal/storage/backend"
	"github.com/mmynk/kakeibo/pkg/logging"
)

// errReported marks an error whose message was already written for the user.
var errReported = errors.New("reported")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errReported):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is one invocation of the client.
type app struct {
	ledger *ledger.Ledger
	p      *message.Printer
	stdin  io.Reader
	in     *bufio.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return nil
	}

	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.LoadClient(nil)
	if err != nil {
		return err
	}

	l, closeFn, err := open(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	a := &app{
		ledger: l,
		p:      i18n.Printer(l.Language(ctx)),
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
	}
	return a.dispatch(ctx, args)
}

// open wires the ledger to the configured store, local state and mailer.
func open(ctx context.Context, cfg config.Client, stderr io.Writer) (*ledger.Ledger, func(), error) {
	logger := logging.New(stderr, logging.Options{Level: cfg.LogLevel})

	store, err := backend.Open(ctx, cfg.StoreURL, backend.Options{Token: cfg.APIToken})
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	statePath, err := cfg.StateFile()
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	local, err := kv.Open(statePath)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open local state: %w", err)
	}
	mailer, err := newMailer(cfg, stderr)
	if err != nil {
		local.Close()
		store.Close()
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		local.Close()
		store.Close()
		return nil, nil, err
	}

	repo := repository.New(store, logger)
	l := ledger.New(
		repo,
		session.New(local, state.New()),
		auth.NewPasswordAuthenticator(repo.Users),
		auth.NewJWTManager(cfg.VerificationSecret, cfg.VerificationTTL),
		mailer,
		logger,
		ledger.WithLocation(loc),
	)
	return l, func() {
		local.Close()
		store.Close()
	}, nil
}

// newMailer sends through SendGrid when a key is configured, and otherwise
// prints the verification link to stderr.
func newMailer(cfg config.Client, stderr io.Writer) (mail.Sender, error) {
	if cfg.SendGridAPIKey == "" {
		return mail.LogSender{
			Logger:   slog.New(slog.NewTextHandler(stderr, nil)),
			LinkBase: cfg.VerifyLinkBase,
		}, nil
	}
	return mail.NewSendGridSender(mail.SendGridConfig{
		APIKey:   cfg.SendGridAPIKey,
		From:     cfg.MailFrom,
		URL:      cfg.SendGridURL,
		LinkBase: cfg.VerifyLinkBase,
	})
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: kakeibo <command> [arguments]

Account:
  signup -username NAME -email ADDRESS   create an account (password is prompted)
  resend                                 resend the verification e-mail
  verify TOKEN                           confirm the e-mail address
  login -username NAME                   sign in (password is prompted)
  logout                                 sign out
  profile                                show the signed-in user
  profile update [-username NAME] [-email ADDRESS] [-password]
  account delete [-yes]                  delete the account

Groups:
  group list
  group create NAME
  group rename GROUP_ID NAME
  group select GROUP_ID
  group leave [-yes] GROUP_ID

Invitations:
  invite list
  invite send GROUP_ID EMAIL
  invite accept INVITATION_ID
  invite decline INVITATION_ID

Transactions (selected group):
  tx add [-title TITLE] AMOUNT
  tx list [-cached]
  tx delete TRANSACTION_ID
  summary [today|daily|monthly|balances]

Settings:
  lang [en|ja]

Environment: KAKEIBO_STORE_URL, KAKEIBO_API_TOKEN, KAKEIBO_STATE_PATH,
KAKEIBO_VERIFICATION_SECRET, SENDGRID_API_KEY, KAKEIBO_MAIL_FROM,
KAKEIBO_VERIFY_LINK_BASE, KAKEIBO_TIME_ZONE, LOG_LEVEL.
`)
}
