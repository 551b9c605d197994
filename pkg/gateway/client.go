// Package gateway is the single choke point for calls to the remote journal
// service. It decorates every request with the session credential, classifies
// every exchange into one Kind, and tears the credential down on 401.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tableflip.dev/memoir/pkg/store"
)

const (
	HeaderRequestedWith = "X-Requested-With"
	HeaderRequestID     = "X-Request-ID"
)

// Request describes one logical call. Path is relative to the base URL and
// keeps the service's trailing slash, e.g. "/memories/".
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Outcome is the classified result of an exchange that produced a response.
type Outcome struct {
	Kind   Kind
	Status int
	Body   []byte
}

// OK reports a 2xx outcome.
func (o Outcome) OK() bool {
	return o.Kind == Success
}

// Err converts a non-success outcome into an *Error; nil on success.
func (o Outcome) Err() error {
	if o.Kind == Success {
		return nil
	}
	return errorFromPayload(o.Kind, o.Status, o.Body)
}

// Decode unmarshals a success payload into v.
func (o Outcome) Decode(v interface{}) error {
	if err := json.Unmarshal(o.Body, v); err != nil {
		return &Error{Kind: ServerError, Status: o.Status, Message: "decode response: " + err.Error(), Err: err}
	}
	return nil
}

// Client performs exchanges against one remote service.
type Client struct {
	baseURL string
	creds   store.Credentials
	http    *http.Client
	log     *zap.Logger
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *Metrics

	mu        sync.RWMutex
	onExpired []func(context.Context)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each exchange; zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l.Named("gateway")
		}
	}
}

// WithLimiter makes every call wait for a token before dispatch.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithBreaker trips after failures consecutive server or transport failures
// and rejects calls for cooldown without dispatching them.
func WithBreaker(failures uint32, cooldown time.Duration) Option {
	return func(c *Client) {
		if failures == 0 {
			return
		}
		st := gobreaker.Settings{
			Name:    "memoir-gateway",
			Timeout: cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		}
		st.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
			c.log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		}
		c.breaker = gobreaker.NewCircuitBreaker(st)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a Client for baseURL (e.g. "https://host/api") that reads the
// bearer token from creds.
func New(baseURL string, creds store.Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnAuthExpired registers fn to run after a 401 has cleared the credential.
// Handlers run synchronously on the goroutine that observed the 401.
func (c *Client) OnAuthExpired(fn func(context.Context)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = append(c.onExpired, fn)
}

// errServerOutcome marks 5xx outcomes as failures for the breaker.
var errServerOutcome = errors.New("gateway: server error outcome")

// Do dispatches r at most once. Classified HTTP outcomes (including 401, 4xx
// and 5xx) return a nil error; only a TransportError, where no response
// reached the caller, returns a non-nil *Error.
func (c *Client) Do(ctx context.Context, r Request) (Outcome, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := c.log.With(
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.String("request_id", requestID),
	)

	out, err := c.dispatch(ctx, r, requestID)
	c.metrics.observe(r.Method, out.Kind, time.Since(start))
	if err != nil {
		log.Warn("gateway transport failure", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return out, err
	}

	log.Debug("gateway exchange",
		zap.Int("status", out.Status),
		zap.String("kind", string(out.Kind)),
		zap.Duration("duration", time.Since(start)))

	if out.Kind == AuthExpired {
		c.expire(ctx)
	}
	return out, nil
}

func (c *Client) dispatch(ctx context.Context, r Request, requestID string) (Outcome, error) {
	failed := Outcome{Kind: TransportError}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return failed, transportError(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	req, err := c.build(ctx, r, requestID)
	if err != nil {
		return failed, transportError(err)
	}

	if c.breaker == nil {
		return c.exchange(req)
	}

	var out Outcome
	_, err = c.breaker.Execute(func() (interface{}, error) {
		var xerr error
		out, xerr = c.exchange(req)
		if xerr != nil {
			return nil, xerr
		}
		if out.Kind == ServerError {
			return nil, errServerOutcome
		}
		return nil, nil
	})
	switch {
	case err == nil, errors.Is(err, errServerOutcome):
		return out, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return failed, transportError(fmt.Errorf("circuit breaker: %w", err))
	default:
		return failed, err
	}
}

func (c *Client) build(ctx context.Context, r Request, requestID string) (*http.Request, error) {
	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestedWith, "XMLHttpRequest")
	req.Header.Set(HeaderRequestID, requestID)
	if c.creds != nil {
		if cred, ok := c.creds.Get(); ok {
			req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
		}
	}
	return req, nil
}

func (c *Client) exchange(req *http.Request) (Outcome, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return Outcome{Kind: TransportError}, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Kind: TransportError, Status: resp.StatusCode}, transportError(fmt.Errorf("read response body: %w", err))
	}
	return Outcome{Kind: classify(resp.StatusCode), Status: resp.StatusCode, Body: body}, nil
}

func (c *Client) expire(ctx context.Context) {
	if c.creds != nil {
		if err := c.creds.Clear(); err != nil {
			c.log.Error("clear credential after 401", zap.Error(err))
		}
	}
	c.mu.RLock()
	handlers := make([]func(context.Context), len(c.onExpired))
	copy(handlers, c.onExpired)
	c.mu.RUnlock()

	c.log.Info("session expired", zap.Int("handlers", len(handlers)))
	for _, fn := range handlers {
		fn(ctx)
	}
}
