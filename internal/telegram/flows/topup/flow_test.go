package topup

import (
	"context"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
	"digiseller/internal/stories/wallet"
	"digiseller/internal/telegram/states"
)

const testChatID int64 = 20

type fakeBot struct {
	sent []tgbotapi.Chattable
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

type fakeAgents struct {
	agent *agents.Agent
}

func (f *fakeAgents) GetByID(ctx context.Context, id int64) (*agents.Agent, error) {
	return f.agent, nil
}

type fakeUsers struct{}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*users.User, error) {
	return &users.User{ID: id, ChatID: 900}, nil
}

type fakeWallet struct {
	topups []int64
}

func (f *fakeWallet) CreateTopup(ctx context.Context, userID, amount int64, receiptFileID string) (*wallet.Transaction, error) {
	f.topups = append(f.topups, amount)
	return &wallet.Transaction{ID: 1, Amount: amount}, nil
}

type fakeOutbox struct {
	queued []notify.Notification
}

func (f *fakeOutbox) Enqueue(ctx context.Context, n notify.Notification) error {
	f.queued = append(f.queued, n)
	return nil
}

func newTestHandler() (*Handler, *states.Manager, *fakeWallet, *fakeOutbox) {
	sm := states.NewManager()
	w := &fakeWallet{}
	ob := &fakeOutbox{}
	ag := &fakeAgents{agent: &agents.Agent{
		ID:                 1,
		AdminUserID:        1,
		CardNumber:         "6037000000000000",
		CardHolderName:     "ali",
		CardPaymentEnabled: true,
		UserMinTopup:       10000,
		UserMaxTopup:       500000,
		AgentMinTopup:      50000,
		AgentMaxTopup:      5000000,
	}}

	h := NewHandler(&fakeBot{}, sm, ag, &fakeUsers{}, w, ob, slog.Default())
	return h, sm, w, ob
}

func textUpdate(text string) *tgbotapi.Update {
	return &tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: testChatID},
		},
	}
}

func photoUpdate(fileID string) *tgbotapi.Update {
	return &tgbotapi.Update{
		Message: &tgbotapi.Message{
			Photo: []tgbotapi.PhotoSize{{FileID: fileID}},
			Chat:  &tgbotapi.Chat{ID: testChatID},
		},
	}
}

func testUser() *users.User {
	return &users.User{ID: 5, ChatID: testChatID, AgentID: 1}
}

func TestAmountInBoundsAdvancesToReceipt(t *testing.T) {
	h, sm, _, _ := newTestHandler()
	ctx := context.Background()

	if err := h.Start(ctx, testUser(), testChatID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("50000"), states.TopupWaitAmount); err != nil {
		t.Fatalf("handle amount: %v", err)
	}

	if got := sm.GetState(testChatID); got != states.TopupWaitReceipt {
		t.Errorf("state = %q, want %q", got, states.TopupWaitReceipt)
	}
}

func TestAmountOutOfBoundsKeepsState(t *testing.T) {
	h, sm, w, _ := newTestHandler()
	ctx := context.Background()

	if err := h.Start(ctx, testUser(), testChatID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("5000"), states.TopupWaitAmount); err != nil {
		t.Fatalf("handle amount: %v", err)
	}

	if got := sm.GetState(testChatID); got != states.TopupWaitAmount {
		t.Errorf("state = %q, want %q", got, states.TopupWaitAmount)
	}
	if len(w.topups) != 0 {
		t.Errorf("topups created = %d, want 0", len(w.topups))
	}
}

func TestReceiptPhotoCreatesTopupAndNotifiesSeller(t *testing.T) {
	h, sm, w, ob := newTestHandler()
	ctx := context.Background()

	if err := h.Start(ctx, testUser(), testChatID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("50000"), states.TopupWaitAmount); err != nil {
		t.Fatalf("handle amount: %v", err)
	}
	if err := h.Handle(ctx, testUser(), photoUpdate("file-1"), states.TopupWaitReceipt); err != nil {
		t.Fatalf("handle receipt: %v", err)
	}

	if len(w.topups) != 1 || w.topups[0] != 50000 {
		t.Fatalf("topups = %v, want [50000]", w.topups)
	}
	if len(ob.queued) != 1 {
		t.Fatalf("notifications queued = %d, want 1", len(ob.queued))
	}
	if ob.queued[0].ChatID != 900 {
		t.Errorf("notification chat = %d, want seller admin 900", ob.queued[0].ChatID)
	}
	if len(ob.queued[0].Buttons) != 1 || len(ob.queued[0].Buttons[0]) != 2 {
		t.Errorf("notification should carry accept and reject buttons")
	}
	if got := sm.GetState(testChatID); got != states.StateNone {
		t.Errorf("state after receipt = %q, want %q", got, states.StateNone)
	}
}

func TestTextInsteadOfPhotoKeepsReceiptState(t *testing.T) {
	h, sm, w, _ := newTestHandler()
	ctx := context.Background()

	if err := h.Start(ctx, testUser(), testChatID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("50000"), states.TopupWaitAmount); err != nil {
		t.Fatalf("handle amount: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("paid!"), states.TopupWaitReceipt); err != nil {
		t.Fatalf("handle text: %v", err)
	}

	if got := sm.GetState(testChatID); got != states.TopupWaitReceipt {
		t.Errorf("state = %q, want %q", got, states.TopupWaitReceipt)
	}
	if len(w.topups) != 0 {
		t.Errorf("topups created = %d, want 0", len(w.topups))
	}
}
