// Package store persists the session credential across process restarts.
package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// Fixed key names for the three persisted fields.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUsername     = "username"
)

var credentialKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUsername}

// Credential identifies an authenticated session.
type Credential struct {
	Username     string `json:"username"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}

// Complete reports whether every field is populated.
func (c Credential) Complete() bool {
	return c.Username != "" && c.AccessToken != "" && c.RefreshToken != ""
}

// Credentials is the process-wide holder of the current credential. Get never
// fails: anything missing or unreadable reads as "no credential".
type Credentials interface {
	Get() (Credential, bool)
	Set(c Credential) error
	Clear() error
}

// Config locates the durable store.
type Config interface {
	BasePath() string
}

// Load creates the diskv backed credential store rooted at cfg.BasePath().
func Load(cfg Config) (*Disk, error) {
	if cfg == nil {
		return nil, errors.New("store: config required")
	}
	basePath := strings.TrimSpace(cfg.BasePath())
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Disk{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    flatTransform,
		CacheSizeMax: 0, // another process may log in or out underneath us
		PathPerm:     0o700,
		FilePerm:     0o600,
	}), basePath: basePath}, nil
}

// Disk keeps the credential as three files under a base directory.
type Disk struct {
	d        *diskv.Diskv
	basePath string
}

var _ Credentials = (*Disk)(nil)

func flatTransform(string) []string {
	return []string{}
}

// BasePath is the directory holding the credential files.
func (s *Disk) BasePath() string {
	return s.basePath
}

func (s *Disk) read(key string) string {
	if !s.d.Has(key) {
		return ""
	}
	val, err := s.d.Read(key)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(val))
}

func (s *Disk) Get() (Credential, bool) {
	c := Credential{
		AccessToken:  s.read(KeyAccessToken),
		RefreshToken: s.read(KeyRefreshToken),
		Username:     s.read(KeyUsername),
	}
	if !c.Complete() {
		return Credential{}, false
	}
	return c, true
}

// Set writes all three keys. If any write fails the keys already written are
// erased again so Set never leaves a partial credential behind.
func (s *Disk) Set(c Credential) error {
	if !c.Complete() {
		return errors.New("store: credential requires username, access and refresh token")
	}
	values := map[string]string{
		KeyAccessToken:  c.AccessToken,
		KeyRefreshToken: c.RefreshToken,
		KeyUsername:     c.Username,
	}
	written := make([]string, 0, len(credentialKeys))
	for _, key := range credentialKeys {
		if err := s.d.Write(key, []byte(values[key])); err != nil {
			for _, w := range written {
				_ = s.d.Erase(w)
			}
			return fmt.Errorf("store: write %s: %w", key, err)
		}
		written = append(written, key)
	}
	return nil
}

// Clear erases all three keys, attempting every key even if one fails.
func (s *Disk) Clear() error {
	var errs []error
	for _, key := range credentialKeys {
		if !s.d.Has(key) {
			continue
		}
		if err := s.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("store: erase %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
