package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"tyrehub/internal/models"
	"tyrehub/internal/repository"

	"go.uber.org/zap"
)

// FallbackReply is returned when the agent fails or is not configured, so a
// user message is never left unanswered in the log.
const FallbackReply = "I'm sorry, I encountered an error processing your request. Please try again."

const titleMaxRunes = 40

type chatService struct {
	repo    *repository.Repository
	agent   Agent // nil means no agent configured, fallback only
	timeout time.Duration
	log     *zap.Logger

	// Per-session locks keep each session's log strictly alternating when
	// clients send concurrently. Entries are refcounted and evicted once
	// uncontended, so the map tracks in-flight sessions, not history.
	mu    sync.Mutex
	locks map[uint]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatService(repo *repository.Repository, agent Agent, timeout time.Duration, log *zap.Logger) ChatService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &chatService{
		repo:    repo,
		agent:   agent,
		timeout: timeout,
		log:     log,
		locks:   map[uint]*sessionLock{},
	}
}

func (s *chatService) lockSession(id uint) *sessionLock {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return l
}

func (s *chatService) unlockSession(id uint, l *sessionLock) {
	l.mu.Unlock()

	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
	s.mu.Unlock()
}

func (s *chatService) SendMessage(ctx context.Context, sessionID uint, message string) (*ChatExchange, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, validationf("message must not be empty")
	}

	var session *models.ChatSession
	if sessionID == 0 {
		session = &models.ChatSession{Title: deriveTitle(message)}
		if err := s.repo.Sessions.Create(ctx, session); err != nil {
			return nil, err
		}
		s.log.Info("chat session created", zap.Uint("id", session.ID), zap.String("title", session.Title))
	} else {
		var err error
		session, err = s.repo.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
	}

	lock := s.lockSession(session.ID)
	defer s.unlockSession(session.ID, lock)

	// History before the current message: the agent sees the conversation as
	// it stood when the user hit send.
	prior, err := s.repo.Messages.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	userMsg := models.ChatMessage{
		SessionID: session.ID,
		Sender:    models.SenderUser,
		Text:      message,
	}
	if err := s.repo.Messages.Create(ctx, &userMsg); err != nil {
		return nil, err
	}

	reply := s.respond(ctx, message, prior, session.ID)

	agentMsg := models.ChatMessage{
		SessionID: session.ID,
		Sender:    models.SenderAgent,
		Text:      reply,
	}
	if err := s.repo.Messages.Create(ctx, &agentMsg); err != nil {
		return nil, err
	}

	return &ChatExchange{
		SessionID:    session.ID,
		UserMessage:  userMsg,
		AgentMessage: agentMsg,
	}, nil
}

func (s *chatService) respond(ctx context.Context, message string, prior []models.ChatMessage, sessionID uint) string {
	if s.agent == nil {
		return FallbackReply
	}
	history := make([]AgentTurn, 0, len(prior))
	for _, m := range prior {
		history = append(history, AgentTurn{Sender: m.Sender, Text: m.Text})
	}
	actx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	reply, err := s.agent.Respond(actx, message, history)
	if err != nil {
		s.log.Warn("agent failed, using fallback",
			zap.Uint("session_id", sessionID),
			zap.Error(err),
		)
		return FallbackReply
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return FallbackReply
	}
	return reply
}

func (s *chatService) GetSession(ctx context.Context, id uint) (*models.ChatSession, []models.ChatMessage, error) {
	session, err := s.repo.Sessions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	msgs, err := s.repo.Messages.ListBySession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return session, msgs, nil
}

func (s *chatService) ListSessions(ctx context.Context) ([]models.ChatSession, error) {
	return s.repo.Sessions.List(ctx)
}

// deriveTitle trims the first message to at most 40 runes, breaking at a word
// boundary where one exists, and marks truncation with an ellipsis.
func deriveTitle(message string) string {
	if utf8.RuneCountInString(message) <= titleMaxRunes {
		return message
	}
	runes := []rune(message)
	cut := titleMaxRunes
	for i := titleMaxRunes; i > 0; i-- {
		if runes[i-1] == ' ' {
			cut = i - 1
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
