package cmds

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/users"
	"digiseller/internal/stories/wallet"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

type fakeDecideUsers struct {
	byChat map[int64]*users.User
	byID   map[int64]*users.User
}

func (f *fakeDecideUsers) GetByChatID(_ context.Context, chatID int64) (*users.User, error) {
	return f.byChat[chatID], nil
}

func (f *fakeDecideUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	return f.byID[id], nil
}

type fakeDecideAgents struct {
	byAdmin  map[int64]*agents.Agent
	requests map[int64]*agents.Request

	resolved []int64
}

func (f *fakeDecideAgents) GetByAdminUserID(_ context.Context, userID int64) (*agents.Agent, error) {
	return f.byAdmin[userID], nil
}

func (f *fakeDecideAgents) GetRequest(_ context.Context, requestID int64) (*agents.Request, error) {
	req, ok := f.requests[requestID]
	if !ok {
		return nil, apperr.NotFound("درخواستی یافت نشد")
	}
	return req, nil
}

func (f *fakeDecideAgents) ResolveRequest(_ context.Context, requestID int64, accept bool) (*agents.Agent, error) {
	f.resolved = append(f.resolved, requestID)
	return &agents.Agent{ID: 99, AgentCode: 12345}, nil
}

type fakeDecideWallet struct {
	transactions map[int64]*wallet.Transaction

	decided []int64
}

func (f *fakeDecideWallet) Get(_ context.Context, transactionID int64) (*wallet.Transaction, error) {
	t, ok := f.transactions[transactionID]
	if !ok {
		return nil, apperr.NotFound("تراکنشی با این شناسه یافت نشد")
	}
	return t, nil
}

func (f *fakeDecideWallet) Decide(_ context.Context, transactionID int64, accept bool) (*wallet.Transaction, error) {
	f.decided = append(f.decided, transactionID)
	return f.transactions[transactionID], nil
}

func TestDecideTransactionRejectsNonAgentCaller(t *testing.T) {
	w := &fakeDecideWallet{transactions: map[int64]*wallet.Transaction{
		7: {ID: 7, UserID: 10, Amount: 50000},
	}}
	us := &fakeDecideUsers{
		byChat: map[int64]*users.User{1000: {ID: 10, ChatID: 1000, AgentID: 2}},
		byID:   map[int64]*users.User{10: {ID: 10, ChatID: 1000, AgentID: 2}},
	}
	// The caller administers no agent; approving their own waiting top-up
	// must fail.
	cmd := NewDecideTransactionCommand(&fakeBot{}, us, &fakeDecideAgents{byAdmin: map[int64]*agents.Agent{}}, w)

	err := cmd.Execute(context.Background(), 1000, 7, true)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if len(w.decided) != 0 {
		t.Errorf("transaction decided by non-agent: %v", w.decided)
	}
}

func TestDecideTransactionRejectsForeignUser(t *testing.T) {
	w := &fakeDecideWallet{transactions: map[int64]*wallet.Transaction{
		7: {ID: 7, UserID: 50, Amount: 50000},
	}}
	us := &fakeDecideUsers{
		byChat: map[int64]*users.User{1000: {ID: 10, ChatID: 1000}},
		byID:   map[int64]*users.User{50: {ID: 50, AgentID: 3}},
	}
	ag := &fakeDecideAgents{byAdmin: map[int64]*agents.Agent{
		10: {ID: 2, AdminUserID: 10},
	}}
	cmd := NewDecideTransactionCommand(&fakeBot{}, us, ag, w)

	// Transaction 7 belongs to agent 3's user, the caller runs agent 2.
	err := cmd.Execute(context.Background(), 1000, 7, true)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if len(w.decided) != 0 {
		t.Errorf("foreign transaction decided: %v", w.decided)
	}
}

func TestDecideTransactionApprovesOwnUser(t *testing.T) {
	w := &fakeDecideWallet{transactions: map[int64]*wallet.Transaction{
		7: {ID: 7, UserID: 50, Amount: 50000},
	}}
	us := &fakeDecideUsers{
		byChat: map[int64]*users.User{1000: {ID: 10, ChatID: 1000}},
		byID:   map[int64]*users.User{50: {ID: 50, AgentID: 2}},
	}
	ag := &fakeDecideAgents{byAdmin: map[int64]*agents.Agent{
		10: {ID: 2, AdminUserID: 10},
	}}
	bot := &fakeBot{}
	cmd := NewDecideTransactionCommand(bot, us, ag, w)

	if err := cmd.Execute(context.Background(), 1000, 7, true); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(w.decided) != 1 || w.decided[0] != 7 {
		t.Errorf("decided = %v, want [7]", w.decided)
	}
	if len(bot.sent) != 1 {
		t.Errorf("confirmations sent = %d, want 1", len(bot.sent))
	}
}

func TestDecideAgentRequestRejectsForeignParent(t *testing.T) {
	us := &fakeDecideUsers{
		byChat: map[int64]*users.User{1000: {ID: 10, ChatID: 1000}},
	}
	ag := &fakeDecideAgents{
		byAdmin:  map[int64]*agents.Agent{10: {ID: 2, AdminUserID: 10}},
		requests: map[int64]*agents.Request{4: {ID: 4, ParentAgentID: 3}},
	}
	cmd := NewDecideAgentRequestCommand(&fakeBot{}, us, ag)

	err := cmd.Execute(context.Background(), 1000, 4, true)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if len(ag.resolved) != 0 {
		t.Errorf("foreign request resolved: %v", ag.resolved)
	}
}

func TestDecideAgentRequestResolvesOwnRequest(t *testing.T) {
	us := &fakeDecideUsers{
		byChat: map[int64]*users.User{1000: {ID: 10, ChatID: 1000}},
	}
	ag := &fakeDecideAgents{
		byAdmin:  map[int64]*agents.Agent{10: {ID: 2, AdminUserID: 10}},
		requests: map[int64]*agents.Request{4: {ID: 4, ParentAgentID: 2}},
	}
	cmd := NewDecideAgentRequestCommand(&fakeBot{}, us, ag)

	if err := cmd.Execute(context.Background(), 1000, 4, true); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(ag.resolved) != 1 || ag.resolved[0] != 4 {
		t.Errorf("resolved = %v, want [4]", ag.resolved)
	}
}
