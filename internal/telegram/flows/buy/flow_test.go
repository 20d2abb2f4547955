package buy

import (
	"context"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/pricing"
	"digiseller/internal/stories/subs"
	"digiseller/internal/stories/users"
	"digiseller/internal/stories/vpns"
	"digiseller/internal/telegram/states"
)

const testChatID int64 = 10

func newTestHandler(purchases *MockPurchaseService) (*Handler, *states.Manager, *MockBotApi) {
	bot := &MockBotApi{}
	sm := states.NewManager()
	vpnSvc := &MockVpnService{
		VPNs: []*vpns.VPN{{
			ID: 1, Name: "pro", IsActive: true,
			GbMin: 1, GbMax: 100, DayMin: 7, DayMax: 180,
			GbPrice: 1000, DayPrice: 500,
		}},
	}

	h := NewHandler(bot, sm, vpnSvc, purchases, slog.Default())
	return h, sm, bot
}

func textUpdate(text string) *tgbotapi.Update {
	return &tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: testChatID},
		},
	}
}

func testUser() *users.User {
	return &users.User{ID: 5, ChatID: testChatID, AgentID: 1}
}

func TestGbInputAdvancesToDays(t *testing.T) {
	h, sm, _ := newTestHandler(&MockPurchaseService{})
	ctx := context.Background()

	if err := h.StartCustom(ctx, testChatID, 1); err != nil {
		t.Fatalf("start custom: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("50"), states.UserBuyWaitGb); err != nil {
		t.Fatalf("handle gb input: %v", err)
	}

	if got := sm.GetState(testChatID); got != states.UserBuyWaitDays {
		t.Errorf("state = %q, want %q", got, states.UserBuyWaitDays)
	}

	data, err := sm.GetBuyData(testChatID)
	if err != nil {
		t.Fatalf("get buy data: %v", err)
	}
	if data.Gb != 50 {
		t.Errorf("recorded gb = %d, want 50", data.Gb)
	}
}

func TestNonNumericGbKeepsState(t *testing.T) {
	h, sm, _ := newTestHandler(&MockPurchaseService{})
	ctx := context.Background()

	if err := h.StartCustom(ctx, testChatID, 1); err != nil {
		t.Fatalf("start custom: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("fifty"), states.UserBuyWaitGb); err != nil {
		t.Fatalf("handle bad input: %v", err)
	}

	if got := sm.GetState(testChatID); got != states.UserBuyWaitGb {
		t.Errorf("state after bad input = %q, want %q", got, states.UserBuyWaitGb)
	}
}

func TestDaysInputShowsConfirmation(t *testing.T) {
	purchases := &MockPurchaseService{
		FactorResult: &pricing.Factor{BasePrice: 65000, FinalPrice: 78000},
	}
	h, sm, _ := newTestHandler(purchases)
	ctx := context.Background()

	if err := h.StartCustom(ctx, testChatID, 1); err != nil {
		t.Fatalf("start custom: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("50"), states.UserBuyWaitGb); err != nil {
		t.Fatalf("handle gb: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("30"), states.UserBuyWaitDays); err != nil {
		t.Fatalf("handle days: %v", err)
	}

	if got := sm.GetState(testChatID); got != states.UserBuyWaitConfirm {
		t.Errorf("state = %q, want %q", got, states.UserBuyWaitConfirm)
	}

	data, err := sm.GetBuyData(testChatID)
	if err != nil {
		t.Fatalf("get buy data: %v", err)
	}
	if data.IdempotencyKey == "" {
		t.Error("confirmation should pin an idempotency key")
	}
	if len(purchases.BuyCalls) != 0 {
		t.Errorf("quote step executed %d purchases, want 0", len(purchases.BuyCalls))
	}
}

func TestOutOfRangeGbRepromptsWithoutAdvancing(t *testing.T) {
	purchases := &MockPurchaseService{}
	h, sm, _ := newTestHandler(purchases)
	ctx := context.Background()

	if err := h.StartCustom(ctx, testChatID, 1); err != nil {
		t.Fatalf("start custom: %v", err)
	}
	// GbMax is 100; 500 must re-prompt on the same step with nothing recorded.
	if err := h.Handle(ctx, testUser(), textUpdate("500"), states.UserBuyWaitGb); err != nil {
		t.Fatalf("handle gb: %v", err)
	}

	if got := sm.GetState(testChatID); got != states.UserBuyWaitGb {
		t.Errorf("state = %q, want %q", got, states.UserBuyWaitGb)
	}
	data, err := sm.GetBuyData(testChatID)
	if err != nil {
		t.Fatalf("get buy data: %v", err)
	}
	if data.Gb != 0 {
		t.Errorf("out-of-range gb recorded: %d", data.Gb)
	}
	if len(purchases.FactorCalls) != 0 || len(purchases.BuyCalls) != 0 {
		t.Errorf("purchase service reached with invalid gb: factor=%d buy=%d",
			len(purchases.FactorCalls), len(purchases.BuyCalls))
	}
}

func TestOutOfRangeDaysRepromptsWithoutQuoting(t *testing.T) {
	purchases := &MockPurchaseService{}
	h, sm, _ := newTestHandler(purchases)
	ctx := context.Background()

	if err := h.StartCustom(ctx, testChatID, 1); err != nil {
		t.Fatalf("start custom: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("50"), states.UserBuyWaitGb); err != nil {
		t.Fatalf("handle gb: %v", err)
	}
	// DayMax is 180.
	if err := h.Handle(ctx, testUser(), textUpdate("365"), states.UserBuyWaitDays); err != nil {
		t.Fatalf("handle days: %v", err)
	}

	if got := sm.GetState(testChatID); got != states.UserBuyWaitDays {
		t.Errorf("state = %q, want %q", got, states.UserBuyWaitDays)
	}
	if len(purchases.FactorCalls) != 0 || len(purchases.BuyCalls) != 0 {
		t.Errorf("purchase service reached with invalid days: factor=%d buy=%d",
			len(purchases.FactorCalls), len(purchases.BuyCalls))
	}
}

func TestConfirmExecutesPurchaseWithPinnedKey(t *testing.T) {
	purchases := &MockPurchaseService{
		FactorResult: &pricing.Factor{BasePrice: 65000, FinalPrice: 78000},
		BuyReceipt: &subs.Receipt{
			Subscription: &subs.Subscription{ID: 3, SubscriptionURL: "https://panel.example/sub/abc"},
			FinalPrice:   78000,
		},
	}
	h, sm, _ := newTestHandler(purchases)
	ctx := context.Background()

	if err := h.StartCustom(ctx, testChatID, 1); err != nil {
		t.Fatalf("start custom: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("50"), states.UserBuyWaitGb); err != nil {
		t.Fatalf("handle gb: %v", err)
	}
	if err := h.Handle(ctx, testUser(), textUpdate("30"), states.UserBuyWaitDays); err != nil {
		t.Fatalf("handle days: %v", err)
	}

	data, err := sm.GetBuyData(testChatID)
	if err != nil {
		t.Fatalf("get buy data: %v", err)
	}
	pinnedKey := data.IdempotencyKey

	if err := h.Confirm(ctx, testUser(), testChatID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if len(purchases.BuyCalls) != 1 {
		t.Fatalf("purchases executed = %d, want 1", len(purchases.BuyCalls))
	}
	if purchases.BuyCalls[0].IdempotencyKey != pinnedKey {
		t.Errorf("purchase key = %q, want pinned %q", purchases.BuyCalls[0].IdempotencyKey, pinnedKey)
	}
	if got := sm.GetState(testChatID); got != states.StateNone {
		t.Errorf("state after purchase = %q, want %q", got, states.StateNone)
	}
}
