package server

import (
	"sync"
	"time"

	"github.com/ginjaninja78/vendor-price-comparison/internal/analysis"
)

// SessionStore keeps analysis results available for a while after the
// upload, so a client can fetch and export them. It is safe for concurrent
// use.
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]session
}

type session struct {
	result  *analysis.Result
	expires time.Time
}

// NewSessionStore creates a store. A ttl <= 0 keeps results for an hour.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{ttl: ttl, now: time.Now, entries: make(map[string]session)}
}

// Put stores a result under its ID.
func (s *SessionStore) Put(res *analysis.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[res.ID] = session{result: res, expires: s.now().Add(s.ttl)}
}

// Get returns a live result.
func (s *SessionStore) Get(id string) (*analysis.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, id)
		return nil, false
	}
	return e.result, true
}

// Delete removes a result. It reports whether a live result was removed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	delete(s.entries, id)
	return s.now().Before(e.expires)
}

// Sweep drops expired results and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of stored results, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
