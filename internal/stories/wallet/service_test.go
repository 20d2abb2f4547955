package wallet

import (
	"context"
	"testing"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
)

type fakeStorage struct {
	charges []ChargeOp
	nextID  int64
}

func (f *fakeStorage) InsertTransaction(_ context.Context, t Transaction) (*Transaction, error) {
	f.nextID++
	t.ID = f.nextID
	return &t, nil
}

func (f *fakeStorage) GetTransaction(_ context.Context, _ GetCriteria) (*Transaction, error) {
	return nil, nil
}

func (f *fakeStorage) ListTransactions(_ context.Context, _ ListCriteria) ([]*Transaction, error) {
	return nil, nil
}

func (f *fakeStorage) DecideTransactionTx(_ context.Context, id int64, _ bool) (*Transaction, bool, error) {
	return &Transaction{ID: id}, true, nil
}

func (f *fakeStorage) ChargeTx(_ context.Context, op ChargeOp) (*Transaction, error) {
	f.charges = append(f.charges, op)
	f.nextID++
	return &Transaction{ID: f.nextID, UserID: op.UserID, Amount: op.Amount, Kind: op.Kind}, nil
}

type fakeUserStorage struct {
	byID map[int64]*users.User
}

func (f *fakeUserStorage) GetUser(_ context.Context, criteria users.GetCriteria) (*users.User, error) {
	if criteria.ID == nil {
		return nil, nil
	}
	return f.byID[*criteria.ID], nil
}

type fakeAgentStorage struct {
	byID map[int64]*agents.Agent
}

func (f *fakeAgentStorage) GetAgent(_ context.Context, criteria agents.GetCriteria) (*agents.Agent, error) {
	if criteria.ID == nil {
		return nil, nil
	}
	return f.byID[*criteria.ID], nil
}

type fakeOutbox struct {
	queued []notify.Notification
}

func (f *fakeOutbox) Enqueue(_ context.Context, n notify.Notification) error {
	f.queued = append(f.queued, n)
	return nil
}

func newAdjustService(agent *agents.Agent) (*Service, *fakeStorage, *fakeOutbox) {
	store := &fakeStorage{}
	outbox := &fakeOutbox{}
	us := &fakeUserStorage{byID: map[int64]*users.User{
		50: {ID: 50, ChatID: 5000, AgentID: agent.ID},
	}}
	ag := &fakeAgentStorage{byID: map[int64]*agents.Agent{agent.ID: agent}}
	return NewService(store, us, ag, outbox), store, outbox
}

func TestManualAdjustRejectsAmountOutsideAgentLimits(t *testing.T) {
	agent := &agents.Agent{ID: 2, UserMinTopup: 10000, UserMaxTopup: 500000}

	tests := []struct {
		name   string
		amount int64
	}{
		{"below minimum", 5000},
		{"above maximum", 600000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newAdjustService(agent)

			_, err := svc.ManualAdjust(context.Background(), 50, tt.amount, true, "test")
			if !apperr.IsBusinessRule(err) {
				t.Fatalf("expected BusinessRule, got %v", err)
			}
			if len(store.charges) != 0 {
				t.Errorf("ledger written for out-of-limit amount: %+v", store.charges)
			}
		})
	}
}

func TestManualAdjustDecreaseFloorFollowsAllowNegative(t *testing.T) {
	tests := []struct {
		name          string
		allowNegative bool
		ceiling       int64
		wantFloor     int64
	}{
		{"negative forbidden", false, 100000, 0},
		{"negative allowed down to ceiling", true, 100000, -100000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := &agents.Agent{
				ID:                    2,
				UserMinTopup:          10000,
				UserMaxTopup:          500000,
				AllowNegative:         tt.allowNegative,
				NegativeChargeCeiling: tt.ceiling,
			}
			svc, store, outbox := newAdjustService(agent)

			if _, err := svc.ManualAdjust(context.Background(), 50, 20000, false, "اصلاح دستی"); err != nil {
				t.Fatalf("ManualAdjust: %v", err)
			}
			if len(store.charges) != 1 {
				t.Fatalf("charges = %d, want 1", len(store.charges))
			}
			op := store.charges[0]
			if op.MinBalance != tt.wantFloor {
				t.Errorf("MinBalance = %d, want %d", op.MinBalance, tt.wantFloor)
			}
			if op.Kind != KindManualDecrease {
				t.Errorf("Kind = %s, want %s", op.Kind, KindManualDecrease)
			}
			if len(outbox.queued) != 1 {
				t.Errorf("notifications = %d, want 1", len(outbox.queued))
			}
		})
	}
}

func TestManualAdjustIncreaseKeepsZeroFloor(t *testing.T) {
	agent := &agents.Agent{
		ID:            2,
		UserMinTopup:  10000,
		UserMaxTopup:  500000,
		AllowNegative: true, NegativeChargeCeiling: 100000,
	}
	svc, store, _ := newAdjustService(agent)

	if _, err := svc.ManualAdjust(context.Background(), 50, 20000, true, "شارژ دستی"); err != nil {
		t.Fatalf("ManualAdjust: %v", err)
	}
	op := store.charges[0]
	if op.Kind != KindManualIncrease {
		t.Errorf("Kind = %s, want %s", op.Kind, KindManualIncrease)
	}
	if op.MinBalance != 0 {
		t.Errorf("MinBalance = %d, want 0", op.MinBalance)
	}
}
