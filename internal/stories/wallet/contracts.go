package wallet

import (
	"context"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
)

type Storage interface {
	InsertTransaction(ctx context.Context, t Transaction) (*Transaction, error)
	GetTransaction(ctx context.Context, criteria GetCriteria) (*Transaction, error)
	ListTransactions(ctx context.Context, criteria ListCriteria) ([]*Transaction, error)

	// DecideTransactionTx flips a waiting transaction to accepted/rejected
	// and, on acceptance, posts the balance change — both in one DB
	// transaction. changed is false when the transaction was already decided,
	// which makes repeated decisions no-ops.
	DecideTransactionTx(ctx context.Context, id int64, accept bool) (t *Transaction, changed bool, err error)

	// ChargeTx inserts an accepted transaction and moves the balance in one
	// DB transaction, failing without any write when the resulting balance
	// would cross op.MinBalance.
	ChargeTx(ctx context.Context, op ChargeOp) (*Transaction, error)
}

type UserStorage interface {
	GetUser(ctx context.Context, criteria users.GetCriteria) (*users.User, error)
}

type AgentStorage interface {
	GetAgent(ctx context.Context, criteria agents.GetCriteria) (*agents.Agent, error)
}

type Outbox interface {
	Enqueue(ctx context.Context, n notify.Notification) error
}
