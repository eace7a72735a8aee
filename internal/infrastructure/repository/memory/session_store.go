package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medassist-app/medassist/internal/core/domain"
)

// SessionStore is the default in-process session store: sessions live for
// the lifetime of the service and are discarded on restart.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
}

type sessionState struct {
	session  domain.Session
	turn     int
	messages []domain.ChatMessage
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*sessionState)}
}

func (s *SessionStore) EnsureSession(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		now := time.Now().UTC()
		state = &sessionState{
			session: domain.Session{
				ID:        id,
				Language:  domain.LanguageEnglish,
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
		s.sessions[id] = state
	}
	session := state.session
	return &session, nil
}

func (s *SessionStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", fmt.Errorf("session %s", id))
	}
	session := state.session
	return &session, nil
}

func (s *SessionStore) SetLanguage(_ context.Context, id, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "set language", fmt.Errorf("session %s", id))
	}
	state.session.Language = code
	state.session.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *SessionStore) NextTurn(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return 0, domain.WrapError(domain.ErrSessionNotFound, "next turn", fmt.Errorf("session %s", id))
	}
	state.turn++
	state.session.UpdatedAt = time.Now().UTC()
	return state.turn, nil
}

func (s *SessionStore) AppendMessage(_ context.Context, message domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[message.SessionID]
	if !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "append message", fmt.Errorf("session %s", message.SessionID))
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	state.messages = append(state.messages, message)
	return nil
}

func (s *SessionStore) ListMessages(_ context.Context, id string) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "list messages", fmt.Errorf("session %s", id))
	}
	out := make([]domain.ChatMessage, len(state.messages))
	copy(out, state.messages)
	return out, nil
}
