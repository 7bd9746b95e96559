// Package config loads process configuration from the environment.
//
// Values come from environment variables, optionally seeded from .env
// files. Field tags name the variables and their defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 16

// Log configures pkg/logging.
type Log struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Server configures the document service.
type Server struct {
	Addr            string        `env:"KAKEIBO_ADDR"             envDefault:":8080"`
	DatabaseURL     string        `env:"KAKEIBO_DATABASE_URL"     envDefault:"sqlite://./data/kakeibo.db"`
	JWTSecret       string        `env:"KAKEIBO_JWT_SECRET,required"`
	ShutdownTimeout time.Duration `env:"KAKEIBO_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Log             Log
}

// Validate reports configuration the server cannot start with.
func (s Server) Validate() error {
	if len(s.JWTSecret) < MinSecretLength {
		return fmt.Errorf("KAKEIBO_JWT_SECRET must be at least %d characters", MinSecretLength)
	}
	if s.DatabaseURL == "" {
		return errors.New("KAKEIBO_DATABASE_URL is required")
	}
	return nil
}

// Client configures the command-line client.
type Client struct {
	// StoreURL selects the document store: the service URL, or a database
	// URL for running against a local store.
	StoreURL string `env:"KAKEIBO_STORE_URL" envDefault:"http://localhost:8080"`
	APIToken string `env:"KAKEIBO_API_TOKEN"`

	// StatePath is the local key-value database. Defaults to a file in the
	// user's config directory.
	StatePath string `env:"KAKEIBO_STATE_PATH"`

	// VerificationSecret signs e-mail verification tokens.
	VerificationSecret string        `env:"KAKEIBO_VERIFICATION_SECRET,required"`
	VerificationTTL    time.Duration `env:"KAKEIBO_VERIFICATION_TTL" envDefault:"24h"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	SendGridURL    string `env:"SENDGRID_URL"           envDefault:"https://api.sendgrid.com/v3/mail/send"`
	MailFrom       string `env:"KAKEIBO_MAIL_FROM"`
	VerifyLinkBase string `env:"KAKEIBO_VERIFY_LINK_BASE"`

	TimeZone string `env:"KAKEIBO_TIME_ZONE"`

	// LogLevel is quieter than the server's so log lines do not drown the output.
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
}

// Validate reports configuration the client cannot start with.
func (c Client) Validate() error {
	if len(c.VerificationSecret) < MinSecretLength {
		return fmt.Errorf("KAKEIBO_VERIFICATION_SECRET must be at least %d characters", MinSecretLength)
	}
	if c.SendGridAPIKey != "" && c.MailFrom == "" {
		return errors.New("KAKEIBO_MAIL_FROM is required with SENDGRID_API_KEY")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// StateFile returns the local state database path.
func (c Client) StateFile() (string, error) {
	if c.StatePath != "" {
		return c.StatePath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "kakeibo", "state.db"), nil
}

// Location returns the time zone summaries are bucketed in.
func (c Client) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("KAKEIBO_TIME_ZONE: %w", err)
	}
	return loc, nil
}

// LoadDotenv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Parse fills target from the process environment, or from environ when
// it is non-nil.
func Parse(target any, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServer reads and validates the server configuration.
func LoadServer(environ map[string]string) (Server, error) {
	var cfg Server
	if err := Parse(&cfg, environ); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadClient reads and validates the client configuration.
func LoadClient(environ map[string]string) (Client, error) {
	var cfg Client
	if err := Parse(&cfg, environ); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
