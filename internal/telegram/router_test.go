package telegram

import (
	"context"
	"log/slog"
	"testing"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/callbacks"
)

type fakeUserService struct {
	byChat map[int64]*users.User
	byID   map[int64]*users.User
}

func (f *fakeUserService) GetOrCreateByChatID(_ context.Context, chatID, _ int64, _, _, _ string) (*users.User, error) {
	return f.byChat[chatID], nil
}

func (f *fakeUserService) GetByChatID(_ context.Context, chatID int64) (*users.User, error) {
	return f.byChat[chatID], nil
}

func (f *fakeUserService) GetByID(_ context.Context, id int64) (*users.User, error) {
	return f.byID[id], nil
}

type fakeAgentService struct {
	byAdmin map[int64]*agents.Agent
}

func (f *fakeAgentService) GetByCode(_ context.Context, _ int64) (*agents.Agent, error) {
	return nil, nil
}

func (f *fakeAgentService) GetByAdminUserID(_ context.Context, userID int64) (*agents.Agent, error) {
	return f.byAdmin[userID], nil
}

func TestNewRouterBuildsCommandTable(t *testing.T) {
	r := NewRouter(Deps{Logger: slog.Default()})

	for _, name := range []string{
		"main_menu", "buy_vpn", "buy_confirm", "topup",
		"accept_transaction", "accept_agent_request",
		"agent_tree", "manage_agent", "pct_user", "lim_user_min",
		"adj_inc", "usr_message",
	} {
		if _, ok := r.callbacks[name]; !ok {
			t.Errorf("callback %q not registered", name)
		}
	}
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	r := &Router{callbacks: make(map[string]callbackHandler)}
	noop := func(context.Context, *users.User, int64, callbacks.Callback) error { return nil }

	r.register("dup", false, noop)

	defer func() {
		if recover() == nil {
			t.Fatal("second registration of the same command must panic")
		}
	}()
	r.register("dup", false, noop)
}

func TestEnsureOwnsUserWithoutAgentRow(t *testing.T) {
	r := NewRouter(Deps{
		Logger: slog.Default(),
		Users: &fakeUserService{byID: map[int64]*users.User{
			50: {ID: 50, AgentID: 2},
		}},
		Agents: &fakeAgentService{byAdmin: map[int64]*agents.Agent{}},
	})

	// The caller has no agent row at all; the check must refuse instead of
	// touching a nil agent.
	err := r.ensureOwnsUser(context.Background(), 10, 50)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestEnsureOwnsUserAcceptsDirectChild(t *testing.T) {
	r := NewRouter(Deps{
		Logger: slog.Default(),
		Users: &fakeUserService{byID: map[int64]*users.User{
			50: {ID: 50, AgentID: 2},
		}},
		Agents: &fakeAgentService{byAdmin: map[int64]*agents.Agent{
			10: {ID: 2, AdminUserID: 10},
		}},
	})

	if err := r.ensureOwnsUser(context.Background(), 10, 50); err != nil {
		t.Fatalf("ensureOwnsUser: %v", err)
	}
}
