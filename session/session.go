// Package session holds the per-user conversation state: a wake flag and a
// bounded transcript of recent turns. Sessions live only in memory; a process
// restart or an explicit reset discards them.
package session

import (
	"sync"
	"sync/atomic"
)

// HistoryCap is the maximum number of turns retained per session. Once the
// transcript exceeds it, the oldest turns are evicted first.
const HistoryCap = 8

// Speaker identifies who produced a turn.
type Speaker int

const (
	User Speaker = iota
	Assistant
)

func (s Speaker) String() string {
	if s == Assistant {
		return "assistant"
	}
	return "user"
}

// Turn is one message in a transcript. Turns are appended, never edited.
type Turn struct {
	Speaker Speaker
	Content string
}

// Session is the state bundle for a single user. The turn mutex serializes
// whole request turns for the same user; the awake flag is atomic so status
// reads never wait behind an in-flight generation.
type Session struct {
	mu      sync.Mutex
	awake   atomic.Bool
	history []Turn
}

// Lock acquires the session's turn lock. Callers hold it for the full
// read-gate-append cycle of one turn.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Awake reports whether the session has been woken.
func (s *Session) Awake() bool { return s.awake.Load() }

// Wake marks the session awake. There is no transition back to asleep; a
// reset discards the session entirely.
func (s *Session) Wake() { s.awake.Store(true) }

// Append adds a turn to the transcript, evicting from the front once the
// cap is exceeded. Callers must hold the turn lock.
func (s *Session) Append(t Turn) {
	s.history = append(s.history, t)
	if n := len(s.history); n > HistoryCap {
		s.history = append(s.history[:0], s.history[n-HistoryCap:]...)
	}
}

// History returns a copy of the transcript. Callers must hold the turn lock.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of retained turns. Callers must hold the turn lock.
func (s *Session) Len() int { return len(s.history) }

// Manager owns the session table. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for userID, creating it asleep and empty if absent.
func (m *Manager) Get(userID string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s = &Session{}
	m.sessions[userID] = s
	return s
}

// Remove discards the session for userID. Removing an unknown user is a no-op.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// AwakeCount returns the number of sessions currently awake.
func (m *Manager) AwakeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.sessions {
		if s.Awake() {
			n++
		}
	}
	return n
}
