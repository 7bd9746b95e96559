package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/kakeibo/internal/auth"
	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/sqlite"
	"github.com/mmynk/kakeibo/pkg/docrpc"
)

func setupRouter(t *testing.T) (*httptest.Server, *auth.JWTManager) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens := auth.NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	server := httptest.NewServer(newRouter(store, tokens, prometheus.NewRegistry(), slog.New(slog.DiscardHandler)))
	t.Cleanup(server.Close)
	return server, tokens
}

func TestHealthz(t *testing.T) {
	server, _ := setupRouter(t)
	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestDocumentServiceAndMetrics(t *testing.T) {
	ctx := context.Background()
	server, tokens := setupRouter(t)

	token, err := tokens.GenerateAPIToken("cli", 0)
	if err != nil {
		t.Fatalf("GenerateAPIToken failed: %v", err)
	}
	client := docrpc.NewClient(server.Client(), server.URL, connect.WithInterceptors(docrpc.BearerToken(token)))

	doc, _ := storage.NewDocument("group", map[string]any{"name": "Trip"})
	created, err := client.Create(ctx, doc)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := client.Get(ctx, created.ID()); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	anonymous := docrpc.NewClient(server.Client(), server.URL)
	if _, err := anonymous.Get(ctx, created.ID()); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("anonymous Get error = %v, want unauthenticated", err)
	}

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`kakeibo_docstore_requests_total{code="ok",procedure="/kakeibo.docstore.v1.DocumentService/Create"} 1`,
		`code="unauthenticated"`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestRedact(t *testing.T) {
	if got := redact("postgres://kakeibo:secret@db/kakeibo"); strings.Contains(got, "secret") {
		t.Errorf("redact leaked password: %s", got)
	}
	if got := redact("sqlite://./data/kakeibo.db"); got != "sqlite://./data/kakeibo.db" {
		t.Errorf("redact(sqlite) = %s", got)
	}
}
