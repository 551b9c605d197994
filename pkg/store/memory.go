package store

import (
	"errors"
	"sync"
)

// Memory is a Credentials implementation that lives only as long as the
// process. It backs tests and the --ephemeral CLI flag.
type Memory struct {
	mu   sync.RWMutex
	cred *Credential
}

var _ Credentials = (*Memory)(nil)

// NewMemory returns an empty in-process credential store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get() (Credential, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil || !m.cred.Complete() {
		return Credential{}, false
	}
	return *m.cred, true
}

func (m *Memory) Set(c Credential) error {
	if !c.Complete() {
		return errors.New("store: credential requires username, access and refresh token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &c
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}
