package session

import (
	"context"
	"sync"
)

// Storage keys for the three persisted entries. They are independent values
// cleared together on logout.
const (
	storeKeyAccessToken  = "access_token"
	storeKeyRefreshToken = "refresh_token"
	storeKeyIdentity     = "identity"
)

// MemoryStore is a CredentialStore kept in process memory. It satisfies the
// store contract for tests and for hosts that do not want persistence
// across restarts.
type MemoryStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

var _ CredentialStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save overwrites any prior snapshot.
func (m *MemoryStore) Save(_ context.Context, creds Credentials, identity Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &Snapshot{Credentials: creds, Identity: identity}
	return nil
}

// Load returns the stored snapshot, or (nil, nil) when the store is empty.
func (m *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, nil
	}
	snap := *m.snap
	return &snap, nil
}

// Clear empties the store. Clearing an already-empty store is a no-op.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}
