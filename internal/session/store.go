package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Store keeps sessions in memory and expires idle ones.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	onEvict  func(*Session)

	// sweepMu guards started and the cron lifecycle; Sweep does not take it.
	sweepMu sync.Mutex
	cron    *cron.Cron
	started bool
}

// NewStore returns a store whose sessions expire after ttl without a
// request; ttl <= 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// OnEvict registers a callback run for every expired or deleted session.
func (st *Store) OnEvict(fn func(*Session)) { st.onEvict = fn }

// New creates a session with a fresh random ID.
func (st *Store) New() *Session {
	s := newSession(uuid.NewString(), st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session for id and marks it as seen.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if ok {
		s.touch(st.now())
	}
	return s, ok
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}
	return st.New(), true
}

// Delete removes a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok && st.onEvict != nil {
		st.onEvict(s)
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)
	var expired []*Session
	st.mu.Lock()
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()
	for _, s := range expired {
		if st.onEvict != nil {
			st.onEvict(s)
		}
	}
	return len(expired)
}

// StartSweeper runs Sweep every minute until StopSweeper.
func (st *Store) StartSweeper() error {
	st.sweepMu.Lock()
	defer st.sweepMu.Unlock()
	if st.started {
		return fmt.Errorf("session sweeper already started")
	}
	st.cron = cron.New()
	_, err := st.cron.AddFunc("@every 1m", func() {
		if n := st.Sweep(); n > 0 {
			slog.Info("expired idle sessions", "count", n, "remaining", st.Len())
		}
	})
	if err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	st.cron.Start()
	st.started = true
	slog.Info("session sweeper started", "ttl", st.ttl.String())
	return nil
}

// StopSweeper stops the schedule and waits for a running sweep to finish.
func (st *Store) StopSweeper() {
	st.sweepMu.Lock()
	defer st.sweepMu.Unlock()
	if !st.started {
		return
	}
	<-st.cron.Stop().Done()
	st.started = false
}
