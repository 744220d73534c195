package currency

import "sync"

// PreferenceKey names the client-local slot holding the preferred code.
const PreferenceKey = "preferred-currency"

// Store is a client-scoped key/value slot. Implementations never share state
// across clients.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemoryStore keeps values in process memory; one instance represents one client.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

// Get implements Store.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set implements Store.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}
