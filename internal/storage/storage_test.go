package storage

import (
	"context"
	"testing"

	"digiseller/internal/infra/sqlite3"
	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/users"
	"digiseller/internal/stories/wallet"
)

func newTestStorage(t *testing.T) *storageImpl {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite3.New(ctx, sqlite3.WithDSN(":memory:"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := New(db, sqlite3.WithTx(db, nil))
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func createTestUser(t *testing.T, s *storageImpl, chatID int64) *users.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), users.User{
		ChatID:  chatID,
		AgentID: agents.RootAgentID,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestCreateAgentTxAssignsPathFromGeneratedID(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	u := createTestUser(t, s, 100)

	agent, err := s.CreateAgentTx(ctx, agents.CreateAgentOp{
		Agent: agents.Agent{
			AdminUserID:  u.ID,
			AgentCode:    12345,
			BrandName:    "acme",
			AgentPercent: 20,
			UserPercent:  30,
		},
		ParentPath:    agents.RootPath,
		ParentAgentID: agents.RootAgentID,
	})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}

	want := agents.RootPath.Child(agent.ID)
	if agent.Path != want {
		t.Errorf("agent path = %q, want %q", agent.Path, want)
	}
	if agent.Level() != 2 {
		t.Errorf("agent level = %d, want 2", agent.Level())
	}

	admin, err := s.GetUser(ctx, users.GetCriteria{ID: &u.ID})
	if err != nil {
		t.Fatalf("get admin user: %v", err)
	}
	if !admin.IsAgent {
		t.Error("admin user should be flagged as agent")
	}
}

func TestCreateAgentTxRollsBackOnDuplicateAdmin(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	u := createTestUser(t, s, 100)

	op := agents.CreateAgentOp{
		Agent:         agents.Agent{AdminUserID: u.ID, AgentCode: 11111},
		ParentPath:    agents.RootPath,
		ParentAgentID: agents.RootAgentID,
	}
	if _, err := s.CreateAgentTx(ctx, op); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// admin_user_id is unique, the second insert must fail and leave
	// exactly two agents behind (root plus the first).
	if _, err := s.CreateAgentTx(ctx, op); err == nil {
		t.Fatal("second create with the same admin should fail")
	}

	all, err := s.ListAgents(ctx)
	if err != nil {
		t.Fatalf("list agents: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("agent count after rollback = %d, want 2", len(all))
	}
}

func TestCreateAgentTxRollsBackWhenPathWriteFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	u := createTestUser(t, s, 100)

	// Abort the second write of the transaction, after the agent row is
	// already inserted, to prove the insert does not survive alone.
	if _, err := s.db.ExecContext(ctx,
		`CREATE TRIGGER abort_path_write BEFORE UPDATE OF path ON agents
		 BEGIN SELECT RAISE(ABORT, 'path write failed'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	_, err := s.CreateAgentTx(ctx, agents.CreateAgentOp{
		Agent:         agents.Agent{AdminUserID: u.ID, AgentCode: 11111},
		ParentPath:    agents.RootPath,
		ParentAgentID: agents.RootAgentID,
	})
	if err == nil {
		t.Fatal("create should fail when the path write fails")
	}

	all, err := s.ListAgents(ctx)
	if err != nil {
		t.Fatalf("list agents: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("agent count after failed create = %d, want just the root", len(all))
	}
	if all[0].ID != agents.RootAgentID {
		t.Errorf("orphan agent row survived rollback: %+v", all[0])
	}
}

func TestListDescendantsByPathPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	u1 := createTestUser(t, s, 100)
	u2 := createTestUser(t, s, 200)

	a1, err := s.CreateAgentTx(ctx, agents.CreateAgentOp{
		Agent:         agents.Agent{AdminUserID: u1.ID, AgentCode: 11111},
		ParentPath:    agents.RootPath,
		ParentAgentID: agents.RootAgentID,
	})
	if err != nil {
		t.Fatalf("create level-2 agent: %v", err)
	}

	a2, err := s.CreateAgentTx(ctx, agents.CreateAgentOp{
		Agent:         agents.Agent{AdminUserID: u2.ID, AgentCode: 22222},
		ParentPath:    a1.Path,
		ParentAgentID: a1.ID,
	})
	if err != nil {
		t.Fatalf("create level-3 agent: %v", err)
	}

	under, err := s.ListDescendants(ctx, a1.Path)
	if err != nil {
		t.Fatalf("list descendants: %v", err)
	}
	if len(under) != 2 {
		t.Fatalf("descendants of %q = %d agents, want 2", a1.Path, len(under))
	}
	if under[0].ID != a1.ID || under[1].ID != a2.ID {
		t.Errorf("descendants = [%d %d], want [%d %d]", under[0].ID, under[1].ID, a1.ID, a2.ID)
	}

	all, err := s.ListDescendants(ctx, agents.RootPath)
	if err != nil {
		t.Fatalf("list from root: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("descendants of root = %d agents, want 3", len(all))
	}
}

func TestChargeTxRespectsMinBalance(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	u := createTestUser(t, s, 100)

	_, err := s.ChargeTx(ctx, wallet.ChargeOp{
		UserID:         u.ID,
		Amount:         500,
		Kind:           wallet.KindDecrease,
		IdempotencyKey: "k1",
		MinBalance:     0,
	})
	if !apperr.IsBusinessRule(err) {
		t.Fatalf("charge below floor: err = %v, want business rule", err)
	}

	got, err := s.GetUser(ctx, users.GetCriteria{ID: &u.ID})
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Balance != 0 {
		t.Errorf("balance after failed charge = %d, want 0", got.Balance)
	}

	// The same charge passes once the floor allows owing.
	tx, err := s.ChargeTx(ctx, wallet.ChargeOp{
		UserID:         u.ID,
		Amount:         500,
		Kind:           wallet.KindDecrease,
		IdempotencyKey: "k2",
		MinBalance:     -1000,
	})
	if err != nil {
		t.Fatalf("charge with negative floor: %v", err)
	}
	if tx.Status != wallet.StatusAccepted {
		t.Errorf("charge status = %q, want accepted", tx.Status)
	}

	got, err = s.GetUser(ctx, users.GetCriteria{ID: &u.ID})
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Balance != -500 {
		t.Errorf("balance after charge = %d, want -500", got.Balance)
	}
}

func TestDecideTransactionTxIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	u := createTestUser(t, s, 100)

	waiting, err := s.InsertTransaction(ctx, wallet.Transaction{
		UserID:         u.ID,
		Amount:         700,
		Kind:           wallet.KindIncrease,
		Status:         wallet.StatusWaiting,
		IdempotencyKey: "k1",
	})
	if err != nil {
		t.Fatalf("insert transaction: %v", err)
	}

	_, changed, err := s.DecideTransactionTx(ctx, waiting.ID, true)
	if err != nil {
		t.Fatalf("first decide: %v", err)
	}
	if !changed {
		t.Fatal("first decide should report changed")
	}

	_, changed, err = s.DecideTransactionTx(ctx, waiting.ID, true)
	if err != nil {
		t.Fatalf("second decide: %v", err)
	}
	if changed {
		t.Error("second decide should be a no-op")
	}

	got, err := s.GetUser(ctx, users.GetCriteria{ID: &u.ID})
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Balance != 700 {
		t.Errorf("balance after repeated accepts = %d, want 700", got.Balance)
	}
}
