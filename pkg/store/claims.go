package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can learn from the access token without the
// server's signing key.
type Claims struct {
	Subject   string
	UserID    string
	ExpiresAt time.Time
}

// Claims decodes the access token payload. The signature is not verified; the
// values are for display and expiry hints only.
func (c Credential) Claims() (Claims, error) {
	if c.AccessToken == "" {
		return Claims{}, errors.New("store: no access token")
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, mc); err != nil {
		return Claims{}, fmt.Errorf("store: decode access token: %w", err)
	}
	out := Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	switch v := mc["user_id"].(type) {
	case string:
		out.UserID = v
	case float64:
		out.UserID = fmt.Sprintf("%.0f", v)
	}
	return out, nil
}

// Expired reports whether the access token's exp claim is before now. Tokens
// without a readable exp claim are never reported expired; the server decides.
func (c Credential) Expired(now time.Time) bool {
	claims, err := c.Claims()
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
