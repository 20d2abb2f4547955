package states

import (
	"fmt"
	"sync"

	"digiseller/internal/telegram/flows"
)

// Manager keeps per-chat conversation state in memory. State survives until
// the flow finishes, a command interrupts it, or the process restarts.
type Manager struct {
	mu         sync.RWMutex
	chatStates map[int64]State
	chatData   map[int64]any
}

func NewManager() *Manager {
	return &Manager{
		chatStates: make(map[int64]State),
		chatData:   make(map[int64]any),
	}
}

func (m *Manager) GetState(chatID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.chatStates[chatID]
	if !exists {
		return StateNone
	}
	return state
}

// SetState moves the chat to a new state. Passing nil data keeps whatever
// the flow stored before, so a multi-step flow carries its data forward.
func (m *Manager) SetState(chatID int64, state State, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chatStates[chatID] = state
	if data != nil {
		m.chatData[chatID] = data
	}
}

func (m *Manager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.chatStates, chatID)
	delete(m.chatData, chatID)
}

func getData[T any](m *Manager, chatID int64) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.chatData[chatID]
	if !exists {
		return nil, fmt.Errorf("no data for chat %d", chatID)
	}

	flowData, ok := data.(*T)
	if !ok {
		return nil, fmt.Errorf("invalid data type for chat %d", chatID)
	}

	return flowData, nil
}

func (m *Manager) GetBuyData(chatID int64) (*flows.BuyFlowData, error) {
	return getData[flows.BuyFlowData](m, chatID)
}

func (m *Manager) GetTopupData(chatID int64) (*flows.TopupFlowData, error) {
	return getData[flows.TopupFlowData](m, chatID)
}

func (m *Manager) GetAgentRequestData(chatID int64) (*flows.AgentRequestFlowData, error) {
	return getData[flows.AgentRequestFlowData](m, chatID)
}

func (m *Manager) GetPercentData(chatID int64) (*flows.PercentFlowData, error) {
	return getData[flows.PercentFlowData](m, chatID)
}

func (m *Manager) GetLimitsData(chatID int64) (*flows.LimitsFlowData, error) {
	return getData[flows.LimitsFlowData](m, chatID)
}

func (m *Manager) GetAdjustData(chatID int64) (*flows.AdjustFlowData, error) {
	return getData[flows.AdjustFlowData](m, chatID)
}

func (m *Manager) GetUserSearchData(chatID int64) (*flows.UserSearchFlowData, error) {
	return getData[flows.UserSearchFlowData](m, chatID)
}

func (m *Manager) GetCardData(chatID int64) (*flows.CardFlowData, error) {
	return getData[flows.CardFlowData](m, chatID)
}
