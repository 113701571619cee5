package services

import (
	"sync"
	"time"

	"sales-chat-api/pkg/models"

	"github.com/google/uuid"
)

// historyWindow is how many recent turns are kept per session and shared
// with the external assistant.
const historyWindow = 10

type session struct {
	context  models.ConversationContext
	history  []models.ChatHistoryEntry
	inFlight bool
}

// ContextService owns per-session conversation state: the single-slot
// context consulted by follow-up queries, the recent-turn history, and the
// in-flight flag that serializes chat calls within one session.
type ContextService struct {
	mu       sync.Mutex
	sessions map[string]*session
}

// NewContextService creates a new context service
func NewContextService() *ContextService {
	return &ContextService{sessions: make(map[string]*session)}
}

// EnsureSession returns the session ID, generating one when empty.
func (s *ContextService) EnsureSession(sessionID string) string {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.sessions[sessionID] = &session{}
	}
	return sessionID
}

// Context returns a copy of the session's conversation context.
func (s *ContextService) Context(sessionID string) models.ConversationContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess.context
	}
	return models.ConversationContext{}
}

// SetContext replaces the session's context (replace-on-success semantics).
func (s *ContextService) SetContext(sessionID string, ctx models.ConversationContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.context = ctx
	}
}

// AppendHistory records one turn, trimming to the history window.
func (s *ContextService) AppendHistory(sessionID, role, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	now := time.Now()
	sess.history = append(sess.history, models.ChatHistoryEntry{
		Role:      role,
		Message:   msg,
		Timestamp: now.Format(time.RFC3339),
		CreatedAt: now,
	})
	if len(sess.history) > historyWindow {
		sess.history = sess.history[len(sess.history)-historyWindow:]
	}
}

// History returns a copy of the session's recent turns.
func (s *ContextService) History(sessionID string) []models.ChatHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]models.ChatHistoryEntry, len(sess.history))
	copy(out, sess.history)
	return out
}

// BeginTurn marks the session busy. It reports false when a call is already
// outstanding, so two assistant calls can never interleave context writes.
func (s *ContextService) BeginTurn(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	if sess.inFlight {
		return false
	}
	sess.inFlight = true
	return true
}

// EndTurn clears the in-flight flag.
func (s *ContextService) EndTurn(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.inFlight = false
	}
}
