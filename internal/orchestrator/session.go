package orchestrator

import (
	"sync"

	"github.com/google/uuid"

	"sanjeevani/internal/logging"
)

// Message is one turn fragment of a conversation.
type Message struct {
	Role string `json:"role"` // user or system
	Text string `json:"text"`
}

// session serializes history updates for one conversation thread. Two
// queries sharing a session identifier may run concurrently; only the
// final history append is ordered.
type session struct {
	mu       sync.Mutex
	messages []Message
}

// SessionStore keeps per-session conversation history in memory.
// Sessions are created on first use and live for the process lifetime.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	limit    int
}

// NewSessionStore creates a store keeping at most limit messages per
// session (0 means unbounded).
func NewSessionStore(limit int) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		limit:    limit,
	}
}

// NewSessionID mints an identifier for callers that do not bring their
// own.
func (s *SessionStore) NewSessionID() string {
	id := uuid.NewString()
	logging.SessionDebug("minted session %s", id)
	return id
}

// History returns a copy of the session's messages, oldest first. An
// unknown identifier yields an empty history.
func (s *SessionStore) History(id string) []Message {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// AppendTurn records one question/answer exchange, trimming the oldest
// messages past the limit.
func (s *SessionStore) AppendTurn(id, question, answer string) {
	sess := s.get(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.messages = append(sess.messages,
		Message{Role: "user", Text: question},
		Message{Role: "system", Text: answer},
	)
	if s.limit > 0 && len(sess.messages) > s.limit {
		trimmed := make([]Message, s.limit)
		copy(trimmed, sess.messages[len(sess.messages)-s.limit:])
		sess.messages = trimmed
	}
	logging.Session("session %s: %d message(s)", id, len(sess.messages))
}

func (s *SessionStore) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}
