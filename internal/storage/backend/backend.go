// Package backend opens a storage.Store from a URL.
//
//	sqlite:///var/lib/kakeibo.db   local SQLite file
//	sqlite://:memory:              in-memory SQLite
//	postgres://user@host/db        PostgreSQL
//	http://host:8080               remote document service
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/postgres"
	"github.com/mmynk/kakeibo/internal/storage/sqlite"
	"github.com/mmynk/kakeibo/pkg/docrpc"
)

// ErrUnsupported is returned for URLs with an unknown scheme.
var ErrUnsupported = errors.New("unsupported store URL")

// requestTimeout bounds each call to a remote document service.
const requestTimeout = 30 * time.Second

// Options configures Open.
type Options struct {
	// Token authenticates calls to a remote document service.
	Token string
	// HTTPClient overrides the client used for remote services.
	HTTPClient connect.HTTPClient
}

// Open returns the store named by rawURL.
func Open(ctx context.Context, rawURL string, opts Options) (storage.Store, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, rawURL)
	}

	switch strings.ToLower(scheme) {
	case "sqlite":
		if rest == "" {
			return nil, fmt.Errorf("%w: sqlite URL needs a path", ErrUnsupported)
		}
		return sqlite.New(rest)
	case "postgres", "postgresql":
		return postgres.New(ctx, rawURL)
	case "http", "https":
		httpClient := opts.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: requestTimeout}
		}
		return docrpc.NewClient(httpClient, rawURL, connect.WithInterceptors(docrpc.BearerToken(opts.Token))), nil
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupported, scheme)
	}
}
