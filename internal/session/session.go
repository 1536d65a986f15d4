// Package session keeps the ranked candidate list of every active search, keyed by requester.
package session

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/vkinder/internal/profile"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrExhausted = errors.New("no more candidates")
)

// Session pages through one ranked list. It is safe for concurrent use.
type Session struct {
	ID          string
	RequesterID int64
	StartedAt   time.Time

	mu         sync.Mutex
	candidates []*profile.Profile
	pos        int
	updatedAt  time.Time
	now        func() time.Time
}

// Current returns the candidate on display.
func (s *Session) Current() (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current()
}

// Next advances to the following candidate and returns it.
func (s *Session) Next() (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos < len(s.candidates) {
		s.pos++
	}
	s.updatedAt = s.now()
	return s.current()
}

func (s *Session) current() (*profile.Profile, error) {
	if s.pos >= len(s.candidates) {
		return nil, ErrExhausted
	}
	return s.candidates[s.pos], nil
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.candidates)
}

// Position is the zero-based index of the current candidate.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pos
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return max(len(s.candidates)-s.pos, 0)
}

func (s *Session) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updatedAt
}

// Store holds at most one session per requester.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Start replaces any session of the requester with a new one over candidates.
func (st *Store) Start(requesterID int64, candidates []*profile.Profile) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	s := &Session{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		StartedAt:   now,
		candidates:  slices.Clone(candidates),
		updatedAt:   now,
		now:         st.now,
	}
	st.sessions[requesterID] = s
	return s
}

func (st *Store) Get(requesterID int64) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[requesterID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Finish drops the session of the requester.
func (st *Store) Finish(requesterID int64) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[requesterID]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, requesterID)
	return nil
}

// Sweep drops sessions idle for longer than ttl and returns their requesters.
func (st *Store) Sweep(ttl time.Duration) []int64 {
	st.mu.Lock()
	defer st.mu.Unlock()

	var dropped []int64
	deadline := st.now().Add(-ttl)
	for id, s := range st.sessions {
		if s.lastActive().Before(deadline) {
			delete(st.sessions, id)
			dropped = append(dropped, id)
		}
	}
	slices.Sort(dropped)
	return dropped
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}
