package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string {
	return t.path
}

func stores(t *testing.T) map[string]Credentials {
	d, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return map[string]Credentials{
		"disk":   d,
		"memory": NewMemory(),
	}
}

func TestCredentialsLifecycle(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok := s.Get(); ok {
				t.Fatalf("expected no credential on a fresh store")
			}
			want := Credential{Username: "alice", AccessToken: "A1", RefreshToken: "R1"}
			if err := s.Set(want); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, ok := s.Get()
			if !ok {
				t.Fatalf("expected credential after set")
			}
			if got != want {
				t.Fatalf("expected %+v, got %+v", want, got)
			}
			if err := s.Clear(); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if _, ok := s.Get(); ok {
				t.Fatalf("expected no credential after clear")
			}
			if err := s.Clear(); err != nil {
				t.Fatalf("second clear should be a no-op: %v", err)
			}
		})
	}
}

func TestSetRejectsPartialCredential(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set(Credential{Username: "alice", AccessToken: "A1"}); err == nil {
				t.Fatalf("expected error for missing refresh token")
			}
			if _, ok := s.Get(); ok {
				t.Fatalf("partial credential must not be readable")
			}
		})
	}
}

func TestDiskGetWithMissingKey(t *testing.T) {
	base := t.TempDir()
	s, err := Load(testConfig{path: base})
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if err := s.Set(Credential{Username: "alice", AccessToken: "A1", RefreshToken: "R1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := os.Remove(filepath.Join(base, KeyRefreshToken)); err != nil {
		t.Fatalf("remove refresh token: %v", err)
	}
	if _, ok := s.Get(); ok {
		t.Fatalf("expected no credential when a key is missing")
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear after partial removal: %v", err)
	}
}

func TestDiskSurvivesReload(t *testing.T) {
	base := t.TempDir()
	first, err := Load(testConfig{path: base})
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if err := first.Set(Credential{Username: "bob", AccessToken: "A2", RefreshToken: "R2"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	second, err := Load(testConfig{path: base})
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}
	got, ok := second.Get()
	if !ok || got.Username != "bob" {
		t.Fatalf("expected persisted credential, got %+v (ok=%v)", got, ok)
	}
}

func TestCredentialClaims(t *testing.T) {
	exp := time.Now().Add(-time.Minute).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c := Credential{Username: "alice", AccessToken: signed, RefreshToken: "R1"}
	claims, err := c.Claims()
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if claims.UserID != "7" {
		t.Fatalf("expected user 7, got %q", claims.UserID)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Fatalf("expected exp %v, got %v", exp, claims.ExpiresAt)
	}
	if !c.Expired(time.Now()) {
		t.Fatalf("expected token to be expired")
	}

	opaque := Credential{Username: "alice", AccessToken: "A1", RefreshToken: "R1"}
	if opaque.Expired(time.Now()) {
		t.Fatalf("opaque tokens are never reported expired: %+v", opaque)
	}
}
