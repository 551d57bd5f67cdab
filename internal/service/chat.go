package service

import (
	"context"

	"tyrehub/internal/models"
)

// AgentTurn is one prior message handed to the agent as conversation context.
type AgentTurn struct {
	Sender models.ChatSender
	Text   string
}

// Agent produces the assistant reply for a user message. Implementations wrap
// failures with ErrAgentUnavailable; the chat service substitutes a canned
// apology so the conversation log stays well-formed.
type Agent interface {
	Respond(ctx context.Context, message string, history []AgentTurn) (string, error)
}

// ChatExchange is the outcome of one SendMessage round trip.
type ChatExchange struct {
	SessionID    uint               `json:"session_id"`
	UserMessage  models.ChatMessage `json:"user_message"`
	AgentMessage models.ChatMessage `json:"agent_message"`
}

type ChatService interface {
	// SendMessage appends the user message, obtains the agent reply and
	// appends it too. A zero sessionID starts a new session titled from the
	// message.
	SendMessage(ctx context.Context, sessionID uint, message string) (*ChatExchange, error)
	GetSession(ctx context.Context, id uint) (*models.ChatSession, []models.ChatMessage, error)
	ListSessions(ctx context.Context) ([]models.ChatSession, error)
}
