package subs

import (
	"context"

	"digiseller/internal/marzban"
	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/pricing"
	"digiseller/internal/stories/users"
	"digiseller/internal/stories/vpns"
	"digiseller/internal/stories/wallet"
)

type Storage interface {
	CreateSubscription(ctx context.Context, sub Subscription) (*Subscription, error)
	GetSubscription(ctx context.Context, criteria GetCriteria) (*Subscription, error)
	ListSubscriptions(ctx context.Context, criteria ListCriteria) ([]*Subscription, error)
	UpdateSubscription(ctx context.Context, id int64, params UpdateParams) (*Subscription, error)
}

type Provisioner interface {
	CreateUser(ctx context.Context, req marzban.CreateUserRequest) (*marzban.Credentials, error)
	Renew(ctx context.Context, req marzban.ModifyUserRequest) (*marzban.Credentials, error)
	AppendTraffic(ctx context.Context, username string, gb int64) error
	AppendDays(ctx context.Context, username string, days int64) error
	ChangeStatus(ctx context.Context, username string, status marzban.UserStatus) error
	Delete(ctx context.Context, username string) error
	Revoke(ctx context.Context, username string) (string, error)
}

type Quoter interface {
	QuoteForAgent(ctx context.Context, agentID int64, base int64, payerIsAgent bool) (*pricing.Factor, error)
}

type Wallet interface {
	Charge(ctx context.Context, userID, amount int64, description, idempotencyKey string, minBalance int64) (*wallet.Transaction, error)
}

type AgentService interface {
	GetByID(ctx context.Context, id int64) (*agents.Agent, error)
	AddIncomeDetails(ctx context.Context, details []agents.IncomeDetail) error
}

type UserService interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

type VpnService interface {
	GetByID(ctx context.Context, id int64) (*vpns.VPN, error)
	GetTemplate(ctx context.Context, id int64) (*vpns.Template, error)
	ValidateGb(vpn *vpns.VPN, gb int64) error
	ValidateDays(vpn *vpns.VPN, days int64) error
}
