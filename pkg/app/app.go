// Package app wires one memoir client together: credential store, gateway,
// session, collection and stats. Every piece is owned by the App value, so
// separate Apps never share state.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tableflip.dev/memoir/pkg/collection"
	"tableflip.dev/memoir/pkg/config"
	"tableflip.dev/memoir/pkg/gateway"
	"tableflip.dev/memoir/pkg/session"
	"tableflip.dev/memoir/pkg/stats"
	"tableflip.dev/memoir/pkg/store"
)

// ErrNotSignedIn is returned by operations that need a session when there is
// none. It carries the same kind a 401 would.
var ErrNotSignedIn = &gateway.Error{Kind: gateway.AuthExpired, Message: "not signed in, run `memoir login`"}

// App is the service layer shared by the CLI runners.
type App struct {
	Config      *config.Config
	Log         *zap.Logger
	Credentials store.Credentials
	Gateway     *gateway.Client
	Session     *session.Manager
	Collection  *collection.Store
	Stats       *stats.Aggregator
	Registry    *prometheus.Registry
}

type options struct {
	creds      store.Credentials
	log        *zap.Logger
	httpClient *http.Client
}

// Option customises New.
type Option func(*options)

// WithCredentials replaces the disk-backed credential store.
func WithCredentials(c store.Credentials) Option {
	return func(o *options) {
		o.creds = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithHTTPClient sets the transport used by the gateway.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New builds an App from cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		l, err := NewLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		o.log = l
	}
	if o.creds == nil {
		disk, err := store.Load(cfg)
		if err != nil {
			return nil, fmt.Errorf("app: open credential store: %w", err)
		}
		o.creds = disk
	}

	reg := prometheus.NewRegistry()
	metrics, err := gateway.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("app: register metrics: %w", err)
	}

	gwOpts := []gateway.Option{
		gateway.WithHTTPClient(o.httpClient),
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithLogger(o.log),
		gateway.WithMetrics(metrics),
	}
	if cfg.RateLimit.RPS > 0 {
		gwOpts = append(gwOpts, gateway.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)))
	}
	if cfg.Breaker.Enabled {
		gwOpts = append(gwOpts, gateway.WithBreaker(cfg.Breaker.Failures, cfg.Breaker.Cooldown))
	}
	gw := gateway.New(cfg.API, o.creds, gwOpts...)

	coll := collection.New(gw, collection.WithLogger(o.log))
	return &App{
		Config:      cfg,
		Log:         o.log,
		Credentials: o.creds,
		Gateway:     gw,
		Session:     session.New(o.creds, gw, session.WithLogger(o.log)),
		Collection:  coll,
		Stats:       stats.NewAggregator(coll, gw),
		Registry:    reg,
	}, nil
}

// RequireSession fails fast when there is no credential to send.
func (a *App) RequireSession() error {
	if !a.Session.IsAuthenticated() {
		return ErrNotSignedIn
	}
	return nil
}

// Watch keeps the session in step with credential changes made by other
// processes. It is a no-op for stores that cannot be watched.
func (a *App) Watch(ctx context.Context) error {
	w, ok := a.Credentials.(session.Watcher)
	if !ok {
		return nil
	}
	return a.Session.Watch(ctx, w)
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Log.Sync()
}
