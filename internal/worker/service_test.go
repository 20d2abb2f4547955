package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/config"
	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
)

type fakeAgents struct {
	overs []*agents.Agent
	armed []*agents.Agent

	started  []int64
	cleared  []int64
	disabled []int64

	disableCount int
}

func (f *fakeAgents) AgentsReachedNegativeLimit(context.Context) ([]*agents.Agent, error) {
	return f.overs, nil
}

func (f *fakeAgents) AgentsWithArmedCountdown(context.Context) ([]*agents.Agent, error) {
	return f.armed, nil
}

func (f *fakeAgents) StartDisableCountdown(_ context.Context, agentID int64) (time.Time, error) {
	f.started = append(f.started, agentID)
	return time.Now().Add(24 * time.Hour), nil
}

func (f *fakeAgents) ClearDisableCountdown(_ context.Context, agentID int64) error {
	f.cleared = append(f.cleared, agentID)
	return nil
}

func (f *fakeAgents) DisableAllUserAccounts(_ context.Context, agentID int64) (int, error) {
	f.disabled = append(f.disabled, agentID)
	return f.disableCount, nil
}

type fakeUsers struct {
	byID    map[int64]*users.User
	byAgent map[int64][]*users.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) ListByAgent(_ context.Context, agentID int64) ([]*users.User, error) {
	return f.byAgent[agentID], nil
}

type fakeSubs struct {
	disabledUsers []int64
}

func (f *fakeSubs) DisableAllForUser(_ context.Context, userID int64) error {
	f.disabledUsers = append(f.disabledUsers, userID)
	return nil
}

type fakeOutbox struct {
	enqueued []notify.Notification
	pending  []*notify.Notification
	sent     []int64
	failed   []int64
}

func (f *fakeOutbox) Enqueue(_ context.Context, n notify.Notification) error {
	f.enqueued = append(f.enqueued, n)
	return nil
}

func (f *fakeOutbox) Pending(context.Context, int) ([]*notify.Notification, error) {
	return f.pending, nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, id int64) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id int64) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeBot struct {
	sent    []tgbotapi.Chattable
	failFor int64
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ChatID == f.failFor {
		return tgbotapi.Message{}, errors.New("chat not found")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

type fakeLocalizer struct{}

func (fakeLocalizer) Get(key string, _ map[string]interface{}) string { return key }

func newTestService(fa *fakeAgents, fu *fakeUsers, fs *fakeSubs, fo *fakeOutbox, fb *fakeBot) *Service {
	return NewService(fa, fu, fs, fo, fb, fakeLocalizer{},
		slog.Default(),
		config.WorkerConfig{OutboxBatch: 50})
}

func TestSweepArmsCountdownAndWarnsOnce(t *testing.T) {
	fa := &fakeAgents{
		overs: []*agents.Agent{{ID: 5, AdminUserID: 50, AllowNegative: true}},
	}
	fu := &fakeUsers{byID: map[int64]*users.User{50: {ID: 50, ChatID: 500}}}
	fo := &fakeOutbox{}
	s := newTestService(fa, fu, &fakeSubs{}, fo, &fakeBot{})

	if err := s.RunNegativeSweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if len(fa.started) != 1 || fa.started[0] != 5 {
		t.Errorf("expected countdown armed for agent 5, got %v", fa.started)
	}
	if len(fa.disabled) != 0 {
		t.Errorf("no accounts should be disabled before the deadline, got %v", fa.disabled)
	}
	if len(fo.enqueued) != 1 || fo.enqueued[0].ChatID != 500 {
		t.Fatalf("expected one warning to chat 500, got %+v", fo.enqueued)
	}
	if fo.enqueued[0].Message != "sweep.negative_warning" {
		t.Errorf("unexpected message key %q", fo.enqueued[0].Message)
	}
}

func TestSweepDisablesAfterDeadline(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	fa := &fakeAgents{
		overs: []*agents.Agent{
			{ID: 5, AdminUserID: 50, AllowNegative: true, DisabledAccountAt: &past},
		},
		disableCount: 2,
	}
	fu := &fakeUsers{
		byID: map[int64]*users.User{50: {ID: 50, ChatID: 500}},
		byAgent: map[int64][]*users.User{
			5: {{ID: 70}, {ID: 71}},
		},
	}
	fs := &fakeSubs{}
	fo := &fakeOutbox{}
	s := newTestService(fa, fu, fs, fo, &fakeBot{})

	if err := s.RunNegativeSweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if len(fa.disabled) != 1 || fa.disabled[0] != 5 {
		t.Errorf("expected agent 5 disabled, got %v", fa.disabled)
	}
	if len(fs.disabledUsers) != 2 {
		t.Errorf("expected both users' services disabled, got %v", fs.disabledUsers)
	}
	if len(fo.enqueued) != 1 || fo.enqueued[0].Message != "sweep.accounts_disabled" {
		t.Fatalf("expected one disable notification, got %+v", fo.enqueued)
	}

	// Second run finds nothing left to block and stays silent.
	fa.disableCount = 0
	fo.enqueued = nil
	if err := s.RunNegativeSweep(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(fo.enqueued) != 0 {
		t.Errorf("repeated sweep must not re-notify, got %+v", fo.enqueued)
	}
}

func TestSweepClearsCountdownAfterSettling(t *testing.T) {
	deadline := time.Now().Add(12 * time.Hour)
	fa := &fakeAgents{
		armed: []*agents.Agent{
			{ID: 9, AdminUserID: 90, DisabledAccountAt: &deadline},
		},
	}
	fu := &fakeUsers{byID: map[int64]*users.User{90: {ID: 90, ChatID: 900}}}
	fo := &fakeOutbox{}
	s := newTestService(fa, fu, &fakeSubs{}, fo, &fakeBot{})

	if err := s.RunNegativeSweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if len(fa.cleared) != 1 || fa.cleared[0] != 9 {
		t.Errorf("expected countdown cleared for agent 9, got %v", fa.cleared)
	}
	if len(fo.enqueued) != 1 || fo.enqueued[0].Message != "sweep.countdown_cleared" {
		t.Fatalf("expected clear notification, got %+v", fo.enqueued)
	}
}

func TestFlushOutboxMarksFailedAndContinues(t *testing.T) {
	fo := &fakeOutbox{
		pending: []*notify.Notification{
			{ID: 1, ChatID: 100, Message: "اول"},
			{ID: 2, ChatID: 666, Message: "دوم"},
			{ID: 3, ChatID: 100, Message: "سوم", Buttons: [][]notify.Button{{
				{Text: "تایید", CallbackData: "accept_transaction?id=4"},
			}}},
		},
	}
	fb := &fakeBot{failFor: 666}
	s := newTestService(&fakeAgents{}, &fakeUsers{}, &fakeSubs{}, fo, fb)

	if err := s.FlushOutbox(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if len(fo.sent) != 2 {
		t.Errorf("expected 2 sent, got %v", fo.sent)
	}
	if len(fo.failed) != 1 || fo.failed[0] != 2 {
		t.Errorf("expected notification 2 marked failed, got %v", fo.failed)
	}
	if len(fb.sent) != 2 {
		t.Errorf("expected 2 deliveries, got %d", len(fb.sent))
	}
}
