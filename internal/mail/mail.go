// Package mail sends verification e-mails.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// DefaultSendGridURL is the SendGrid v3 send endpoint.
const DefaultSendGridURL = "https://api.sendgrid.com/v3/mail/send"

// Sender delivers a verification token to an address.
type Sender interface {
	Send(ctx context.Context, to, token string) error
}

// VerificationLink builds the link mailed to the user. base receives the
// token as its "token" query parameter.
func VerificationLink(base, token string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return token
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// SendGridConfig configures SendGridSender.
type SendGridConfig struct {
	APIKey   string
	From     string
	URL      string
	LinkBase string
	Timeout  time.Duration
}

// SendGridSender sends mail through the SendGrid v3 API.
type SendGridSender struct {
	cfg SendGridConfig
}

// NewSendGridSender validates cfg and fills in defaults.
func NewSendGridSender(cfg SendGridConfig) (*SendGridSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if cfg.URL == "" {
		cfg.URL = DefaultSendGridURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SendGridSender{cfg: cfg}, nil
}

// Send posts a verification message to SendGrid.
func (s *SendGridSender) Send(ctx context.Context, to, token string) error {
	link := VerificationLink(s.cfg.LinkBase, token)
	message := sgmail.NewV3MailInit(
		sgmail.NewEmail("", s.cfg.From),
		"メールアドレス確認",
		sgmail.NewEmail("", to),
		sgmail.NewContent("text/plain", "こちらのリンクをクリックしてメールアドレスを確認してください: "+link),
	)

	// The client carries the request body, so each send gets its own.
	client := sendgrid.NewSendClient(s.cfg.APIKey)
	client.Request.BaseURL = s.cfg.URL

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	res, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send request failed: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("send request status %d: %s", res.StatusCode, strings.TrimSpace(res.Body))
	}
	return nil
}

// LogSender writes the verification link to the log instead of mailing it.
// Used when no SendGrid key is configured.
type LogSender struct {
	Logger   *slog.Logger
	LinkBase string
}

// Send logs the link.
func (s LogSender) Send(_ context.Context, to, token string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Verification email", "to", to, "link", VerificationLink(s.LinkBase, token))
	return nil
}
