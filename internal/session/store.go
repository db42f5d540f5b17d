package session

import (
	"sync"
	"time"

	"github.com/ytget/leech-bot/internal/metrics"
	"github.com/ytget/leech-bot/internal/model"
)

// Store owns the process-wide mapping from user identity to live session.
// Each session carries its own lock so users never contend with each other.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   Clock
}

type entry struct {
	mu   sync.Mutex
	sess *model.Session
}

// NewStore creates an empty session store
func NewStore(clock Clock) *Store {
	return &Store{
		entries: make(map[string]*entry),
		clock:   clock,
	}
}

// Create adds a fresh session for the user. Returns ErrSessionExists if the
// user already has a live session.
func (s *Store) Create(userID string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[userID]; exists {
		return nil, ErrSessionExists
	}

	sess := model.NewSession(userID, s.clock.Now())
	s.entries[userID] = &entry{sess: sess}
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	return sess, nil
}

// Acquire locks the user's session for one transition. It never blocks: a
// second message arriving while a transition is in flight gets
// ErrSessionBusy instead of interleaving. The returned release function must
// be called once the transition is done.
func (s *Store) Acquire(userID string) (*model.Session, func(), error) {
	e, ok := s.lookup(userID)
	if !ok {
		return nil, nil, ErrNoSession
	}
	if !e.mu.TryLock() {
		return nil, nil, ErrSessionBusy
	}
	return s.confirm(userID, e)
}

// AcquireWait is the blocking variant used by internal completion paths
// (dispatch results), which must not be dropped just because the user is
// mid-reply.
func (s *Store) AcquireWait(userID string) (*model.Session, func(), error) {
	e, ok := s.lookup(userID)
	if !ok {
		return nil, nil, ErrNoSession
	}
	e.mu.Lock()
	return s.confirm(userID, e)
}

// confirm re-checks the entry is still mapped after its lock was taken; a
// cancel or sweep may have removed it in between.
func (s *Store) confirm(userID string, e *entry) (*model.Session, func(), error) {
	s.mu.Lock()
	current, ok := s.entries[userID]
	s.mu.Unlock()
	if !ok || current != e {
		e.mu.Unlock()
		return nil, nil, ErrNoSession
	}
	return e.sess, func() { e.mu.Unlock() }, nil
}

func (s *Store) lookup(userID string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	return e, ok
}

// Delete removes the user's session. Idempotent. The caller is expected to
// hold the session lock when deleting mid-transition.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	metrics.ActiveSessions.Set(float64(len(s.entries)))
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes sessions idle for maxIdle or longer and returns them so the
// caller can notify their users. Sessions whose lock is held are skipped (an
// active transition is by definition not idle); dispatching sessions are
// skipped too, since their lifetime is owned by the dispatch completion path.
func (s *Store) Sweep(maxIdle time.Duration) []*model.Session {
	now := s.clock.Now()

	s.mu.Lock()
	candidates := make(map[string]*entry, len(s.entries))
	for userID, e := range s.entries {
		candidates[userID] = e
	}
	s.mu.Unlock()

	var expired []*model.Session
	for userID, e := range candidates {
		if !e.mu.TryLock() {
			continue
		}
		if e.sess.State.IsDispatching() || e.sess.IdleFor(now) < maxIdle {
			e.mu.Unlock()
			continue
		}

		s.mu.Lock()
		if current, ok := s.entries[userID]; ok && current == e {
			delete(s.entries, userID)
			expired = append(expired, e.sess)
		}
		metrics.ActiveSessions.Set(float64(len(s.entries)))
		s.mu.Unlock()

		e.mu.Unlock()
	}
	return expired
}
