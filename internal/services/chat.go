package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"gemini-chat/internal/models"
)

const thinkingStatus = "Bot is thinking..."

type sessionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
}

type replySender interface {
	Send(ctx context.Context, message string) (string, error)
}

// EventPublisher pushes live session updates to connected browser tabs.
type EventPublisher interface {
	Publish(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage)
}

// ChatService runs the submit/clear flow for one session at a time.
type ChatService struct {
	sessions sessionRepository
	gemini   replySender
	events   EventPublisher

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sessionLock
}

// sessionLock is dropped from ChatService.locks once no caller holds or waits
// on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatService(sessions sessionRepository, gemini replySender, events EventPublisher) *ChatService {
	return &ChatService{
		sessions: sessions,
		gemini:   gemini,
		events:   events,
		locks:    make(map[uuid.UUID]*sessionLock),
	}
}

// lock serializes actions within one session; different sessions proceed in
// parallel.
func (s *ChatService) lock(id uuid.UUID) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

func (s *ChatService) lockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func (s *ChatService) publish(ctx context.Context, id uuid.UUID, msgType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, id, models.WSMessage{Type: msgType, Payload: payload})
}

// Submit takes the pending input for a session and, when it is non-empty,
// appends the user message, asks Gemini, appends the bot reply and clears the
// pending input. Empty input leaves the session untouched.
//
// If the exchange fails at the transport level the user message is left
// unanswered and the pending input is kept.
func (s *ChatService) Submit(ctx context.Context, sessionID uuid.UUID, input string) (*models.Session, string, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	// The submission runs to completion even if the browser goes away.
	ctx = context.WithoutCancel(ctx)

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load session: %w", err)
	}

	if input == "" {
		return sess, "", nil
	}

	sess.SetPending(input)
	userMsg := sess.AppendUser(input)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("failed to save session: %w", err)
	}
	s.publish(ctx, sessionID, models.EventMessage, userMsg)
	s.publish(ctx, sessionID, models.EventThinking, models.StatusUpdate{SessionID: sessionID, Status: thinkingStatus})

	reply, err := s.gemini.Send(ctx, input)
	if err != nil {
		return sess, "", fmt.Errorf("gemini exchange failed: %w", err)
	}

	botMsg := sess.AppendBot(reply)
	sess.SetPending("")
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("failed to save session: %w", err)
	}
	s.publish(ctx, sessionID, models.EventMessage, botMsg)

	return sess, reply, nil
}

// Clear empties the session's message list.
func (s *ChatService) Clear(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess.Clear()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.publish(ctx, sessionID, models.EventCleared, models.StatusUpdate{SessionID: sessionID, Status: "cleared"})

	return sess, nil
}

// History returns a snapshot of the session without taking the session lock,
// so a page load never waits on an in-flight exchange.
func (s *ChatService) History(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}
