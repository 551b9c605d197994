package session_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/memoir/pkg/fakeapi"
	"tableflip.dev/memoir/pkg/gateway"
	"tableflip.dev/memoir/pkg/session"
	"tableflip.dev/memoir/pkg/store"
)

type fixture struct {
	srv   *fakeapi.Server
	creds *store.Memory
	gw    *gateway.Client
	mgr   *session.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	creds := store.NewMemory()
	gw := gateway.New(srv.APIURL(), creds)
	return &fixture{srv: srv, creds: creds, gw: gw, mgr: session.New(creds, gw)}
}

func nextEvent(t *testing.T, m *session.Manager) session.Event {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for session event")
	}
	return session.Event{}
}

func TestLoginStoresCredential(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "x")

	require.Equal(t, session.Anonymous, f.mgr.State())
	require.NoError(t, f.mgr.Login(context.Background(), "alice", "x"))

	assert.Equal(t, session.Authenticated, f.mgr.State())
	assert.True(t, f.mgr.IsAuthenticated())
	cred, ok := f.creds.Get()
	require.True(t, ok)
	assert.Equal(t, store.Credential{Username: "alice", AccessToken: "A1", RefreshToken: "R1"}, cred)
	assert.Equal(t, session.Event{Type: session.LoggedIn, Username: "alice"}, nextEvent(t, f.mgr))
}

func TestLoginFailureLeavesStoreEmpty(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "x")

	err := f.mgr.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No active account")
	assert.Equal(t, session.Anonymous, f.mgr.State())
	_, ok := f.creds.Get()
	assert.False(t, ok)

	err = f.mgr.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, gateway.ErrClient)
}

func TestLoginWhileAuthenticating(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "x")
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	f.srv.Intercept(func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path == "/api/token/" {
			once.Do(func() { close(entered) })
			<-release
		}
		return false
	})

	done := make(chan error, 1)
	go func() { done <- f.mgr.Login(context.Background(), "alice", "x") }()
	<-entered

	assert.Equal(t, session.Authenticating, f.mgr.State())
	assert.True(t, f.mgr.IsAuthenticated(), "authenticating is not anonymous")
	assert.ErrorIs(t, f.mgr.Login(context.Background(), "alice", "x"), session.ErrInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, session.Authenticated, f.mgr.State())
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	err := f.mgr.Register(context.Background(), session.Profile{Username: "bob", Email: "not-an-email", Password: "pw"})
	var gerr *gateway.Error
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Fields, "email")
	assert.Empty(t, f.srv.Requests(), "invalid profiles are never sent")

	require.NoError(t, f.mgr.Register(context.Background(), session.Profile{Username: "bob", Email: "bob@example.com", Password: "pw"}))
	assert.Equal(t, "bob", f.mgr.Username())

	f.mgr.Logout()
	err = f.mgr.Register(context.Background(), session.Profile{Username: "bob", Email: "bob@example.com", Password: "pw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, session.Anonymous, f.mgr.State())
}

func TestLogoutOmitsAuthorization(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "x")
	require.NoError(t, f.mgr.Login(context.Background(), "alice", "x"))

	f.mgr.Logout()
	f.mgr.Logout()
	assert.Equal(t, session.Anonymous, f.mgr.State())
	_, ok := f.creds.Get()
	assert.False(t, ok)

	_, _ = f.gw.ListMemories(context.Background(), nil)
	req, ok := f.srv.LastRequest()
	require.True(t, ok)
	assert.Empty(t, req.Authorization)
}

func TestAuthExpiredSignal(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "x")
	require.NoError(t, f.mgr.Login(context.Background(), "alice", "x"))
	nextEvent(t, f.mgr)
	f.srv.Revoke("A1")

	_, err := f.gw.ListMemories(context.Background(), nil)
	assert.Equal(t, gateway.AuthExpired, gateway.KindOf(err))
	assert.Equal(t, session.Anonymous, f.mgr.State())
	assert.Equal(t, session.Expired, nextEvent(t, f.mgr).Type)
}

func TestRestoresExistingCredential(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()
	creds := store.NewMemory()
	require.NoError(t, creds.Set(store.Credential{Username: "alice", AccessToken: "A9", RefreshToken: "R9"}))

	mgr := session.New(creds, gateway.New(srv.APIURL(), creds))
	assert.Equal(t, session.Authenticated, mgr.State())
	assert.Equal(t, "alice", mgr.Username())
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.mgr.Refresh(context.Background()), session.ErrNoSession)

	f.srv.AddUser("alice", "x")
	require.NoError(t, f.mgr.Login(context.Background(), "alice", "x"))
	require.NoError(t, f.mgr.Refresh(context.Background()))

	cred, ok := f.mgr.Credential()
	require.True(t, ok)
	assert.NotEqual(t, "A1", cred.AccessToken)
	assert.Equal(t, "R1", cred.RefreshToken, "refresh token is kept when not rotated")
}

type fakeWatcher struct {
	ch chan store.Event
}

func (w *fakeWatcher) Watch(context.Context) (<-chan store.Event, error) {
	return w.ch, nil
}

func TestWatchReconciles(t *testing.T) {
	f := newFixture(t)
	w := &fakeWatcher{ch: make(chan store.Event)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.mgr.Watch(ctx, w) }()

	require.NoError(t, f.creds.Set(store.Credential{Username: "carol", AccessToken: "a", RefreshToken: "r"}))
	w.ch <- store.Event{Type: store.EventCredentialChanged}
	assert.Equal(t, session.Event{Type: session.Restored, Username: "carol"}, nextEvent(t, f.mgr))
	assert.Equal(t, session.Authenticated, f.mgr.State())

	require.NoError(t, f.creds.Clear())
	w.ch <- store.Event{Type: store.EventCredentialChanged}
	assert.Equal(t, session.LoggedOut, nextEvent(t, f.mgr).Type)
	assert.Equal(t, session.Anonymous, f.mgr.State())
}
