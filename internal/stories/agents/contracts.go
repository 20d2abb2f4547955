package agents

import (
	"context"
	"time"

	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
)

type Storage interface {
	GetAgent(ctx context.Context, criteria GetCriteria) (*Agent, error)
	ListAgents(ctx context.Context) ([]*Agent, error)
	ListAgentsByIDs(ctx context.Context, ids []int64) ([]*Agent, error)
	ListDescendants(ctx context.Context, prefix Path) ([]*Agent, error)
	UpdateAgentPercents(ctx context.Context, agentID int64, params UpdatePercentParams) error
	UpdateAgentLimits(ctx context.Context, agentID int64, params UpdateLimitsParams) error
	UpdateAgentCard(ctx context.Context, agentID int64, params UpdateCardParams) error
	SetDisabledAccountAt(ctx context.Context, agentID int64, at *time.Time) error
	ListAgentsOverNegativeCeiling(ctx context.Context) ([]*Agent, error)
	ListAgentsWithCountdown(ctx context.Context) ([]*Agent, error)
	CountUsersByAgent(ctx context.Context, agentID int64) (int, error)
	BlockUsersByAgent(ctx context.Context, agentID int64) (int, error)

	InsertRequest(ctx context.Context, req Request) (*Request, error)
	GetRequest(ctx context.Context, id int64) (*Request, error)
	GetPendingRequestByUser(ctx context.Context, userID int64) (*Request, error)
	ListRequestsByParent(ctx context.Context, parentAgentID int64) ([]*Request, error)
	MarkRequest(ctx context.Context, id int64, status RequestStatus) error

	InsertIncomeDetails(ctx context.Context, details []IncomeDetail) error
	ListIncomesByAgent(ctx context.Context, agentID int64) ([]*IncomeDetail, error)
	SumProfitByAgent(ctx context.Context, agentID int64) (int64, error)

	// CreateAgentTx runs the two-phase agent creation inside one DB
	// transaction: insert the row, set path from the generated id, move the
	// admin user under the parent and flip its agent flag, optionally mark
	// the originating request as decided. Any failure rolls everything back.
	CreateAgentTx(ctx context.Context, op CreateAgentOp) (*Agent, error)
}

// CreateAgentOp carries everything CreateAgentTx writes.
type CreateAgentOp struct {
	Agent         Agent // Path left empty, assigned from the parent inside the tx
	ParentPath    Path
	ParentAgentID int64
	RequestID     *int64 // when the creation resolves an agent request
}

type UserStorage interface {
	GetUser(ctx context.Context, criteria users.GetCriteria) (*users.User, error)
}

type Outbox interface {
	Enqueue(ctx context.Context, n notify.Notification) error
}
