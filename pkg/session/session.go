// Package session tracks whether the user is signed in to the remote journal
// service and owns every write to the credential store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/gateway"
	"tableflip.dev/memoir/pkg/store"
)

// State of the session state machine.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventType names a transition worth telling observers about.
type EventType int

const (
	LoggedIn EventType = iota
	LoggedOut
	Expired
	Restored
)

func (t EventType) String() string {
	switch t {
	case LoggedIn:
		return "logged-in"
	case LoggedOut:
		return "logged-out"
	case Expired:
		return "expired"
	case Restored:
		return "restored"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is emitted on Events after the transition it describes.
type Event struct {
	Type     EventType
	Username string
}

// ErrInProgress is returned when Login or Register is called while another
// attempt has not finished.
var ErrInProgress = errors.New("session: authentication already in progress")

// ErrNoSession is returned by Refresh when nobody is signed in.
var ErrNoSession = errors.New("session: not signed in")

// Profile is what Register submits.
type Profile struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Gateway is the subset of the gateway client the session needs.
type Gateway interface {
	ObtainToken(ctx context.Context, username, password string) (gateway.TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (gateway.TokenPair, error)
	Register(ctx context.Context, username, email, password string) (gateway.TokenPair, error)
	OnAuthExpired(fn func(context.Context))
}

// Watcher streams credential store changes made outside this process.
type Watcher interface {
	Watch(ctx context.Context) (<-chan store.Event, error)
}

// Manager is the session state machine. It is safe for concurrent use.
type Manager struct {
	creds store.Credentials
	gw    Gateway
	log   *zap.Logger

	mu    sync.Mutex
	state State

	events chan Event
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l.Named("session")
		}
	}
}

// New builds a Manager over creds and registers its expiry handler on gw.
// A credential already in the store restores the Authenticated state.
func New(creds store.Credentials, gw Gateway, opts ...Option) *Manager {
	m := &Manager{
		creds:  creds,
		gw:     gw,
		log:    zap.NewNop(),
		events: make(chan Event, 64),
	}
	for _, opt := range opts {
		opt(m)
	}
	if cred, ok := creds.Get(); ok {
		m.state = Authenticated
		m.log.Debug("session restored", zap.String("username", cred.Username))
	}
	gw.OnAuthExpired(m.expired)
	return m
}

// Events delivers transitions. Slow readers miss events rather than block
// the session.
func (m *Manager) Events() <-chan Event {
	return m.events
}

func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports state != Anonymous.
func (m *Manager) IsAuthenticated() bool {
	return m.State() != Anonymous
}

// Username of the signed in user, or "".
func (m *Manager) Username() string {
	cred, _ := m.creds.Get()
	return cred.Username
}

// Credential returns the stored credential, if any.
func (m *Manager) Credential() (store.Credential, bool) {
	return m.creds.Get()
}

// begin moves to Authenticating and returns the state to roll back to.
func (m *Manager) begin() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Authenticating {
		return m.state, ErrInProgress
	}
	prior := m.state
	m.state = Authenticating
	return prior, nil
}

func (m *Manager) finish(prior State, username string, tp gateway.TokenPair, err error) error {
	if err == nil {
		err = m.creds.Set(store.Credential{
			Username:     username,
			AccessToken:  tp.Access,
			RefreshToken: tp.Refresh,
		})
		if err != nil {
			err = fmt.Errorf("session: store credential: %w", err)
		}
	}

	m.mu.Lock()
	if err != nil {
		// A 401 during login has already cleared the store; the prior
		// Authenticated state would no longer be backed by a credential.
		if _, ok := m.creds.Get(); !ok {
			prior = Anonymous
		}
		m.state = prior
		m.mu.Unlock()
		m.log.Info("authentication failed", zap.String("username", username), zap.Error(err))
		return err
	}
	m.state = Authenticated
	m.mu.Unlock()

	m.log.Info("authenticated", zap.String("username", username))
	m.emit(Event{Type: LoggedIn, Username: username})
	return nil
}

// Login exchanges username and password for a credential. On failure the
// store is left as it was and the returned error carries the reason.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return gateway.Invalid(map[string][]string{
			"credentials": {"username and password are required"},
		}, "username and password are required")
	}
	prior, err := m.begin()
	if err != nil {
		return err
	}
	tp, err := m.gw.ObtainToken(ctx, username, password)
	if err != nil {
		err = loginFailed(err)
	}
	return m.finish(prior, username, tp, err)
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, p Profile) error {
	if err := entry.Validate(p); err != nil {
		var verr *entry.ValidationError
		if errors.As(err, &verr) {
			return gateway.Invalid(verr.Fields, verr.Error())
		}
		return err
	}
	prior, err := m.begin()
	if err != nil {
		return err
	}
	tp, err := m.gw.Register(ctx, p.Username, p.Email, p.Password)
	return m.finish(prior, p.Username, tp, err)
}

// loginFailed gives a rejected login a readable reason when the service sent
// none.
func loginFailed(err error) error {
	var gerr *gateway.Error
	if errors.As(err, &gerr) && gerr.Kind == gateway.AuthExpired && gerr.Message == "" {
		gerr.Message = "login failed"
	}
	return err
}

// Logout clears the credential and returns to Anonymous. It never fails and
// may be called any number of times.
func (m *Manager) Logout() {
	if err := m.creds.Clear(); err != nil {
		m.log.Error("clear credential", zap.Error(err))
	}
	m.mu.Lock()
	was := m.state
	m.state = Anonymous
	m.mu.Unlock()

	if was != Anonymous {
		m.log.Info("logged out")
		m.emit(Event{Type: LoggedOut})
	}
}

// expired is the gateway's 401 signal. The store is already cleared.
func (m *Manager) expired(context.Context) {
	m.mu.Lock()
	if m.state != Authenticated {
		m.mu.Unlock()
		return
	}
	m.state = Anonymous
	m.mu.Unlock()

	m.log.Info("session expired")
	m.emit(Event{Type: Expired})
}

// Refresh trades the stored refresh token for a new access token. It is only
// ever called explicitly.
func (m *Manager) Refresh(ctx context.Context) error {
	cred, ok := m.creds.Get()
	if !ok {
		return ErrNoSession
	}
	tp, err := m.gw.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		return err
	}
	cred.AccessToken = tp.Access
	if tp.Refresh != "" {
		cred.RefreshToken = tp.Refresh
	}
	if err := m.creds.Set(cred); err != nil {
		return fmt.Errorf("session: store refreshed credential: %w", err)
	}
	m.log.Debug("access token refreshed", zap.String("username", cred.Username))
	return nil
}

// Watch reconciles the state with credential changes made by other
// processes until ctx is done.
func (m *Manager) Watch(ctx context.Context, w Watcher) error {
	ch, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if ev.Type == store.EventWatchError {
				m.log.Warn("credential watch error", zap.Error(ev.Err))
			}
			m.reconcile()
		}
	}
}

func (m *Manager) reconcile() {
	cred, ok := m.creds.Get()

	m.mu.Lock()
	switch {
	case m.state == Authenticating:
		m.mu.Unlock()
		return
	case ok && m.state == Anonymous:
		m.state = Authenticated
		m.mu.Unlock()
		m.log.Info("session restored from store", zap.String("username", cred.Username))
		m.emit(Event{Type: Restored, Username: cred.Username})
	case !ok && m.state == Authenticated:
		m.state = Anonymous
		m.mu.Unlock()
		m.log.Info("session removed from store")
		m.emit(Event{Type: LoggedOut})
	default:
		m.mu.Unlock()
	}
}
