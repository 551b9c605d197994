package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/memoir/pkg/config"
	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/fakeapi"
	"tableflip.dev/memoir/pkg/gateway"
	"tableflip.dev/memoir/pkg/session"
	"tableflip.dev/memoir/pkg/stats"
	"tableflip.dev/memoir/pkg/store"
)

func newTestApp(t *testing.T) (*App, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.API = srv.APIURL()
	cfg.Path = t.TempDir()
	a, err := New(cfg, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, srv
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.API = "localhost:8000"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected invalid api url to be rejected")
	}
	if _, err := New(nil); err == nil {
		t.Fatal("expected nil config to be rejected")
	}
}

func TestAppsAreIsolated(t *testing.T) {
	a, srv := newTestApp(t)
	b, _ := newTestApp(t)
	srv.AddUser("alice", "x")

	if err := a.Session.Login(context.Background(), "alice", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !a.Session.IsAuthenticated() {
		t.Fatal("expected a to be signed in")
	}
	if b.Session.IsAuthenticated() {
		t.Fatal("b must not see a's session")
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()
	srv.AddUser("alice", "x")
	cfg := config.Default()
	cfg.API = srv.APIURL()
	cfg.Path = t.TempDir()

	first, err := New(cfg, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := first.Session.Login(context.Background(), "alice", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := New(cfg, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if second.Session.State() != session.Authenticated {
		t.Fatalf("expected restored session, got %s", second.Session.State())
	}
	if second.Session.Username() != "alice" {
		t.Fatalf("expected alice, got %q", second.Session.Username())
	}
}

func TestRequireSession(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.RequireSession()
	if gateway.KindOf(err) != gateway.AuthExpired {
		t.Fatalf("expected AuthExpired kind, got %v", err)
	}
	if _, err := a.Report(context.Background(), stats.RangeAll, time.Now()); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestReport(t *testing.T) {
	a, srv := newTestApp(t)
	srv.AddUser("alice", "x")
	now := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	srv.Seed("alice",
		entry.Memory{Title: "a", Emotion: emotion.Joy, CreatedAt: entry.Timestamp{Time: now.Add(-time.Hour)}},
		entry.Memory{Title: "b", Emotion: emotion.Joy, CreatedAt: entry.Timestamp{Time: now.AddDate(0, 0, -1)}},
		entry.Memory{Title: "c", Emotion: emotion.Fear, CreatedAt: entry.Timestamp{Time: now.AddDate(0, 0, -40)}},
	)
	if err := a.Session.Login(context.Background(), "alice", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}

	r, err := a.Report(context.Background(), stats.RangeMonth, now)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.Overview.Total != 3 || r.Overview.Today != 1 || r.Overview.Dominant != emotion.Joy {
		t.Fatalf("unexpected overview %+v", r.Overview)
	}
	if r.Distribution[emotion.Joy] != 2 || r.Distribution[emotion.Fear] != 1 {
		t.Fatalf("unexpected distribution %v", r.Distribution)
	}
	if len(r.Timeline) != 2 {
		t.Fatalf("expected the 40 day old memory outside the month window, got %d days", len(r.Timeline))
	}
	if r.Insights.ActiveDays != 2 {
		t.Fatalf("unexpected insights %+v", r.Insights)
	}
}

func TestWatchIgnoresUnwatchableStore(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()
	cfg := config.Default()
	cfg.API = srv.APIURL()
	a, err := New(cfg, WithCredentials(store.NewMemory()), WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Watch(context.Background()); err != nil {
		t.Fatalf("watch: %v", err)
	}
}

func TestMetricsRegistered(t *testing.T) {
	a, _ := newTestApp(t)
	_, _ = a.Gateway.ListMemories(context.Background(), nil)

	families, err := a.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "memoir_gateway_requests_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected gateway request counter in the registry")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(config.LogConfig{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("json logger: %v", err)
	}
	if _, err := NewLogger(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected unknown level to fail")
	}
	if _, err := NewLogger(config.LogConfig{Format: "xml"}); err == nil {
		t.Fatal("expected unknown format to fail")
	}
}
