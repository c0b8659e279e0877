package gate

import "sync"

// SessionStore is the key-value contract for session-scoped state. The gate
// only ever keeps its unlock marker here; what "session" means is the
// store's business.
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemorySession keeps values for the lifetime of the process, which is the
// session scope of a desktop run. View rebuilds re-read it; a fresh process
// starts empty.
type MemorySession struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySession returns an empty session store.
func NewMemorySession() *MemorySession {
	return &MemorySession{values: make(map[string]string)}
}

// Get returns the stored value and whether the key exists.
func (s *MemorySession) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *MemorySession) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
