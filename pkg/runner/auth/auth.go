// Package auth provides the runners that open, inspect and close a session.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/printers"
	"tableflip.dev/memoir/pkg/session"
)

// Status is the structured form of the session state.
type Status struct {
	Authenticated bool       `json:"authenticated"`
	State         string     `json:"state"`
	Username      string     `json:"username,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Expired       bool       `json:"expired,omitempty"`
}

func status(a *app.App, now time.Time) Status {
	s := Status{
		Authenticated: a.Session.IsAuthenticated(),
		State:         a.Session.State().String(),
		Username:      a.Session.Username(),
	}
	if c, ok := a.Session.Credential(); ok {
		if claims, err := c.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt.Local()
			s.ExpiresAt = &exp
			s.Expired = c.Expired(now)
		}
	}
	return s
}

// Login exchanges a username and password for a session.
type Login struct {
	App      *app.App
	Username string
	Password string
	Output   printers.Output
}

func (n *Login) Do(ctx context.Context) error {
	if err := n.App.Session.Login(ctx, n.Username, n.Password); err != nil {
		return err
	}
	return n.Output.Print(status(n.App, time.Now()), func() {
		_, _ = fmt.Fprintf(color.Output, "Signed in as %s.\n", color.New(color.Bold).Sprint(n.App.Session.Username()))
	})
}

// Register creates an account. It does not sign in.
type Register struct {
	App      *app.App
	Username string
	Email    string
	Password string
	Output   printers.Output
}

func (n *Register) Do(ctx context.Context) error {
	p := session.Profile{Username: n.Username, Email: n.Email, Password: n.Password}
	if err := n.App.Session.Register(ctx, p); err != nil {
		return err
	}
	data := map[string]string{"username": n.Username, "email": n.Email}
	return n.Output.Print(data, func() {
		_, _ = fmt.Fprintf(color.Output, "Registered %s, run `memoir login` to sign in.\n", n.Username)
	})
}

// Logout drops the session. Logging out twice is fine.
type Logout struct {
	App    *app.App
	Output printers.Output
}

func (n *Logout) Do(_ context.Context) error {
	n.App.Session.Logout()
	return n.Output.Print(status(n.App, time.Now()), func() {
		_, _ = fmt.Fprintln(color.Output, "Signed out.")
	})
}

// Whoami prints the current session. With Follow it keeps printing as other
// processes sign in or out, until ctx is done.
type Whoami struct {
	App    *app.App
	Output printers.Output
	Follow bool
	Now    func() time.Time
}

func (n *Whoami) Do(ctx context.Context) error {
	if err := n.print(); err != nil {
		return err
	}
	if !n.Follow {
		return nil
	}

	errc := make(chan error, 1)
	go func() { errc <- n.App.Watch(ctx) }()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case ev := <-n.App.Session.Events():
			n.App.Log.Debug("session event", zap.String("event", ev.Type.String()))
			if err := n.print(); err != nil {
				return err
			}
		}
	}
}

func (n *Whoami) print() error {
	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}
	s := status(n.App, now)
	return n.Output.Print(s, func() {
		if !s.Authenticated {
			_, _ = fmt.Fprintln(color.Output, "Not signed in.")
			return
		}
		_, _ = fmt.Fprintf(color.Output, "Signed in as %s.\n", color.New(color.Bold).Sprint(s.Username))
		if s.ExpiresAt != nil {
			f := color.New(color.Faint)
			if s.Expired {
				_, _ = f.Fprintf(color.Output, "Access token expired %s.\n", s.ExpiresAt.Format(time.RFC1123))
			} else {
				_, _ = f.Fprintf(color.Output, "Access token valid until %s.\n", s.ExpiresAt.Format(time.RFC1123))
			}
		}
	})
}

// Refresh trades the refresh token for a new access token.
type Refresh struct {
	App    *app.App
	Output printers.Output
}

func (n *Refresh) Do(ctx context.Context) error {
	if err := n.App.RequireSession(); err != nil {
		return err
	}
	if err := n.App.Session.Refresh(ctx); err != nil {
		return err
	}
	return n.Output.Print(status(n.App, time.Now()), func() {
		_, _ = fmt.Fprintln(color.Output, "Session refreshed.")
	})
}
