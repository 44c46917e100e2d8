package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the credential in process memory. It backs tests and
// sessions started with an in-memory profile.
type MemoryStore struct {
	mu   sync.RWMutex
	cred *Credential
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ context.Context) (Credential, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return Credential{}, false, nil
	}
	return Credential{Token: m.cred.Token, User: m.cred.User.Clone()}, true, nil
}

func (m *MemoryStore) Set(_ context.Context, cred Credential) error {
	if err := validate(cred); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &Credential{Token: cred.Token, User: cred.User.Clone()}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}
