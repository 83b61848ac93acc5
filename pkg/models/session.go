package models

import (
	"sync"

	"github.com/google/uuid"
)

// Session holds the per-session mutable state the pipeline produces: the
// append-only result history and the debug log. It replaces ambient global
// state; callers pass it explicitly through the caller-facing API.
// Safe for concurrent use.
type Session struct {
	ID uuid.UUID

	mu      sync.Mutex
	history []*QueryResult
	debug   []*DebugRecord
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{ID: uuid.New()}
}

// AppendHistory records a completed query result.
func (s *Session) AppendHistory(result *QueryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, result)
}

// History returns a copy of the result history, oldest first.
func (s *Session) History() []*QueryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*QueryResult, len(s.history))
	copy(out, s.history)
	return out
}

// AppendDebug records a debug entry.
func (s *Session) AppendDebug(record *DebugRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = append(s.debug, record)
}

// DebugLog returns a copy of the debug log, oldest first.
func (s *Session) DebugLog() []*DebugRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*DebugRecord, len(s.debug))
	copy(out, s.debug)
	return out
}
