// Command server runs the kakeibo document service: a Connect API over a
// SQLite or PostgreSQL document store.
//
// Usage:
//
//	server                          serve on KAKEIBO_ADDR
//	server -issue-token laptop      print an API token for a client and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/kakeibo/internal/auth"
	"github.com/mmynk/kakeibo/internal/config"
	"github.com/mmynk/kakeibo/internal/storage/backend"
	"github.com/mmynk/kakeibo/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	issueToken := fs.String("issue-token", "", "print an API token for `subject` and exit")
	tokenTTL := fs.Duration("token-ttl", 0, "lifetime of an issued token (0 = no expiry)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.LoadServer(nil)
	if err != nil {
		return err
	}
	logger := logging.SetupWith(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	tokens := auth.NewJWTManager(cfg.JWTSecret, 0)
	if *issueToken != "" {
		token, err := tokens.GenerateAPIToken(*issueToken, *tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, token)
		return nil
	}

	store, err := backend.Open(ctx, cfg.DatabaseURL, backend.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", redact(cfg.DatabaseURL))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(newRouter(store, tokens, reg, logger), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
