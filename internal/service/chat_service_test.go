package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"tyrehub/internal/models"
	"tyrehub/internal/repository"
	"tyrehub/internal/service"
	"tyrehub/internal/testdb"

	"go.uber.org/zap"
)

type fakeAgent struct {
	reply string
	err   error
	// captured from the last call
	lastMessage string
	lastHistory []service.AgentTurn
}

func (f *fakeAgent) Respond(_ context.Context, message string, history []service.AgentTurn) (string, error) {
	f.lastMessage = message
	f.lastHistory = history
	return f.reply, f.err
}

func newChat(t *testing.T, agent service.Agent) (service.ChatService, *repository.Repository) {
	t.Helper()
	db := testdb.Open(t)
	repo := repository.New(db)
	return service.NewChatService(repo, agent, 5*time.Second, zap.NewNop()), repo
}

func TestSendMessageNewSession(t *testing.T) {
	agent := &fakeAgent{reply: "We stock the Pilot Sport 4 in that size."}
	svc, _ := newChat(t, agent)
	ctx := context.Background()

	ex, err := svc.SendMessage(ctx, 0, "Do you have 225/45R17 tyres?")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if ex.SessionID == 0 {
		t.Fatal("expected a new session id")
	}
	if ex.UserMessage.Sender != models.SenderUser || ex.AgentMessage.Sender != models.SenderAgent {
		t.Fatalf("unexpected senders: %s / %s", ex.UserMessage.Sender, ex.AgentMessage.Sender)
	}
	if ex.AgentMessage.Text != agent.reply {
		t.Fatalf("unexpected agent text %q", ex.AgentMessage.Text)
	}
	if len(agent.lastHistory) != 0 {
		t.Fatalf("expected empty history on first turn, got %d", len(agent.lastHistory))
	}

	session, msgs, err := svc.GetSession(ctx, ex.SessionID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if session.Title != "Do you have 225/45R17 tyres?" {
		t.Fatalf("unexpected title %q", session.Title)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
}

func TestSendMessageSessionReuse(t *testing.T) {
	agent := &fakeAgent{reply: "ok"}
	svc, _ := newChat(t, agent)
	ctx := context.Background()

	ex, err := svc.SendMessage(ctx, 0, "first question")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := svc.SendMessage(ctx, ex.SessionID, "second question"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	// agent saw the first exchange as history, not the new message
	if len(agent.lastHistory) != 2 {
		t.Fatalf("expected 2 history turns, got %d", len(agent.lastHistory))
	}
	if agent.lastHistory[0].Text != "first question" || agent.lastHistory[0].Sender != models.SenderUser {
		t.Fatalf("unexpected first turn: %+v", agent.lastHistory[0])
	}
	if agent.lastMessage != "second question" {
		t.Fatalf("unexpected message %q", agent.lastMessage)
	}

	_, msgs, err := svc.GetSession(ctx, ex.SessionID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	// strict user/agent alternation in creation order
	for i, m := range msgs {
		want := models.SenderUser
		if i%2 == 1 {
			want = models.SenderAgent
		}
		if m.Sender != want {
			t.Fatalf("message %d: expected sender %s, got %s", i, want, m.Sender)
		}
	}
}

func TestSendMessageAgentFailure(t *testing.T) {
	agent := &fakeAgent{err: fmt.Errorf("%w: quota exhausted", service.ErrAgentUnavailable)}
	svc, _ := newChat(t, agent)
	ctx := context.Background()

	ex, err := svc.SendMessage(ctx, 0, "anything in 205/55R16?")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if ex.AgentMessage.Text != service.FallbackReply {
		t.Fatalf("expected fallback reply, got %q", ex.AgentMessage.Text)
	}

	// the user message is still on record
	_, msgs, err := svc.GetSession(ctx, ex.SessionID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected both messages persisted, got %d", len(msgs))
	}
}

func TestSendMessageNoAgentConfigured(t *testing.T) {
	svc, _ := newChat(t, nil)

	ex, err := svc.SendMessage(context.Background(), 0, "hello")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if ex.AgentMessage.Text != service.FallbackReply {
		t.Fatalf("expected fallback reply, got %q", ex.AgentMessage.Text)
	}
}

func TestSendMessageValidation(t *testing.T) {
	svc, _ := newChat(t, &fakeAgent{reply: "ok"})
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, 0, "   "); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, 9999, "hi"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, _, err := svc.GetSession(ctx, 9999); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTitleDerivation(t *testing.T) {
	svc, _ := newChat(t, &fakeAgent{reply: "ok"})
	ctx := context.Background()

	long := "I need a full set of winter tyres for my 2020 Toyota Corolla before the season starts"
	ex, err := svc.SendMessage(ctx, 0, long)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	session, _, err := svc.GetSession(ctx, ex.SessionID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if !strings.HasSuffix(session.Title, "…") {
		t.Fatalf("expected truncated title, got %q", session.Title)
	}
	if len([]rune(strings.TrimSuffix(session.Title, "…"))) > 40 {
		t.Fatalf("title too long: %q", session.Title)
	}
	// truncation lands on a word boundary, never mid-word
	if strings.HasSuffix(strings.TrimSuffix(session.Title, "…"), " ") {
		t.Fatalf("title ends with space: %q", session.Title)
	}
	if !strings.HasPrefix(long, strings.TrimSuffix(session.Title, "…")) {
		t.Fatalf("title %q is not a prefix of the message", session.Title)
	}
}

func TestConcurrentSendsStayAlternating(t *testing.T) {
	agent := &fakeAgent{reply: "ok"}
	svc, _ := newChat(t, agent)
	ctx := context.Background()

	ex, err := svc.SendMessage(ctx, 0, "opening message")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := svc.SendMessage(ctx, ex.SessionID, fmt.Sprintf("concurrent message %d", n)); err != nil {
				t.Errorf("send failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	_, msgs, err := svc.GetSession(ctx, ex.SessionID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if len(msgs) != 18 {
		t.Fatalf("expected 18 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		want := models.SenderUser
		if i%2 == 1 {
			want = models.SenderAgent
		}
		if m.Sender != want {
			t.Fatalf("message %d: expected sender %s, got %s", i, want, m.Sender)
		}
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	svc, repo := newChat(t, &fakeAgent{reply: "ok"})
	ctx := context.Background()

	// distinct created_at values so ordering is deterministic
	older := models.ChatSession{Title: "older", CreatedAt: time.Now().Add(-time.Hour)}
	if err := repo.Sessions.Create(ctx, &older); err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	newer := models.ChatSession{Title: "newer", CreatedAt: time.Now()}
	if err := repo.Sessions.Create(ctx, &newer); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 2 || sessions[0].Title != "newer" {
		t.Fatalf("unexpected order: %+v", sessions)
	}
}
