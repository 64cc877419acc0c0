package session

import (
	"context"
	"sync"
	"time"
)

// memoryEntry is a stored principal with its absolute expiry.
type memoryEntry struct {
	principal Principal
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. It backs development and
// tests; a janitor goroutine sweeps expired entries so an idle process does
// not accumulate dead sessions. Get also checks expiry itself, so the sweep
// interval never affects correctness.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a MemoryStore with the given session TTL and starts
// its janitor.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Create stores the principal under a freshly minted token.
func (s *MemoryStore) Create(_ context.Context, p *Principal) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.entries[token] = memoryEntry{principal: *p, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

// Get resolves a token, treating an expired entry the same as a missing one.
func (s *MemoryStore) Get(_ context.Context, token string) (*Principal, error) {
	s.mu.RLock()
	entry, ok := s.entries[token]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	p := entry.principal
	return &p, nil
}

// Destroy removes the session.
func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
	return nil
}

// Close stops the janitor goroutine. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// janitor periodically drops expired sessions until Close is called.
func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, entry := range s.entries {
				if now.After(entry.expiresAt) {
					delete(s.entries, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
