package memory

import (
	"context"
	"sync"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// DefaultMaxMessages bounds a session's history when no explicit cap is
// configured.
const DefaultMaxMessages = 20

// sessionEntry owns one session's bounded history. Each entry has its
// own lock so mutation is serialized per session id and cross-session
// operations never contend.
type sessionEntry struct {
	mu       sync.Mutex
	messages []domain.Message
}

// SessionStore is the in-process SessionMemory: a capacity-bounded,
// oldest-evicted-first message list per session.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[domain.SessionID]*sessionEntry
	maxMessages int
}

func NewSessionStore(maxMessages int) *SessionStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &SessionStore{
		sessions:    make(map[domain.SessionID]*sessionEntry),
		maxMessages: maxMessages,
	}
}

func (s *SessionStore) entry(sessionID domain.SessionID) *sessionEntry {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok = s.sessions[sessionID]; ok {
		return entry
	}
	entry = &sessionEntry{}
	s.sessions[sessionID] = entry
	return entry
}

// AppendMessage adds a message to the session, evicting the oldest
// message once the cap is reached. Sessions are created on first
// append.
func (s *SessionStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	entry := s.entry(msg.SessionID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.messages = append(entry.messages, *msg)
	if len(entry.messages) > s.maxMessages {
		entry.messages = entry.messages[len(entry.messages)-s.maxMessages:]
	}
	return nil
}

// History returns up to limit most recent messages, oldest first. An
// unknown session yields ErrSessionNotFound.
func (s *SessionStore) History(ctx context.Context, sessionID domain.SessionID, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	msgs := entry.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
