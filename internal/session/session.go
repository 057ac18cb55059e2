// Package session holds per-visitor input state and resolves it to a dataset.
package session

import (
	"sync"
	"time"
)

// State is where a session stands in choosing its input.
type State int

const (
	AwaitingInput State = iota
	HasUploadedData
	HasExampleData
)

func (s State) String() string {
	switch s {
	case HasUploadedData:
		return "has_uploaded_data"
	case HasExampleData:
		return "has_example_data"
	default:
		return "awaiting_input"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Upload is the last file accepted for a session.
type Upload struct {
	Name string
	// Hash is the content hash; Key adds the file name and identifies the
	// parsed dataset.
	Hash string
	Key  string
	Size int
	data []byte
}

// Session is one visitor's input state. Handlers for the same session are
// serialized by its mutex.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	state    State
	upload   *Upload
	flash    string
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, Created: now, lastSeen: now}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Upload returns the accepted upload, if any.
func (s *Session) Upload() (Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upload == nil {
		return Upload{}, false
	}
	return *s.upload, true
}

// SetFlash records a message to show on the next page view.
func (s *Session) SetFlash(msg string) {
	s.mu.Lock()
	s.flash = msg
	s.mu.Unlock()
}

// TakeFlash returns and clears the pending message.
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen is the time of the last request for this session.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
