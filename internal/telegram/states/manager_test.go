package states

import (
	"sync"
	"testing"

	"digiseller/internal/telegram/flows"
)

func TestManagerDefaultsToNone(t *testing.T) {
	m := NewManager()

	if state := m.GetState(42); state != StateNone {
		t.Errorf("state of unknown chat = %q, want %q", state, StateNone)
	}
}

func TestManagerKeepsDataAcrossStateChanges(t *testing.T) {
	m := NewManager()

	m.SetState(1, UserBuyWaitGb, &flows.BuyFlowData{VpnID: 7})

	// Moving to the next step without data must not drop what the flow
	// already collected.
	m.SetState(1, UserBuyWaitDays, nil)

	data, err := m.GetBuyData(1)
	if err != nil {
		t.Fatalf("get buy data: %v", err)
	}
	if data.VpnID != 7 {
		t.Errorf("VpnID = %d, want 7", data.VpnID)
	}
	if m.GetState(1) != UserBuyWaitDays {
		t.Errorf("state = %q, want %q", m.GetState(1), UserBuyWaitDays)
	}
}

func TestManagerRejectsWrongDataType(t *testing.T) {
	m := NewManager()

	m.SetState(1, TopupWaitAmount, &flows.TopupFlowData{})

	if _, err := m.GetBuyData(1); err == nil {
		t.Error("reading topup data as buy data should fail")
	}
}

func TestManagerClear(t *testing.T) {
	m := NewManager()

	m.SetState(1, UserBuyWaitGb, &flows.BuyFlowData{})
	m.Clear(1)

	if m.GetState(1) != StateNone {
		t.Errorf("state after clear = %q, want %q", m.GetState(1), StateNone)
	}
	if _, err := m.GetBuyData(1); err == nil {
		t.Error("data should be gone after clear")
	}
}

func TestManagerIsolatesChats(t *testing.T) {
	m := NewManager()

	m.SetState(1, UserBuyWaitGb, &flows.BuyFlowData{VpnID: 1})
	m.SetState(2, TopupWaitAmount, &flows.TopupFlowData{Amount: 500})

	if m.GetState(1) != UserBuyWaitGb || m.GetState(2) != TopupWaitAmount {
		t.Error("chats should not share state")
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			m.SetState(chatID, UserBuyWaitGb, &flows.BuyFlowData{VpnID: chatID})
			_ = m.GetState(chatID)
			_, _ = m.GetBuyData(chatID)
			m.Clear(chatID)
		}(int64(i))
	}
	wg.Wait()
}
