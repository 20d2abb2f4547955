package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/users"
	"digiseller/internal/stories/wallet"
	"digiseller/internal/telegram/messages"
)

type DecideTransactionCommand struct {
	bot    botApi
	users  decideUserService
	agents decideAgentService
	wallet decideWalletService
}

type decideWalletService interface {
	Get(ctx context.Context, transactionID int64) (*wallet.Transaction, error)
	Decide(ctx context.Context, transactionID int64, accept bool) (*wallet.Transaction, error)
}

type decideUserService interface {
	GetByChatID(ctx context.Context, chatID int64) (*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

type decideAgentService interface {
	GetByAdminUserID(ctx context.Context, userID int64) (*agents.Agent, error)
}

func NewDecideTransactionCommand(bot botApi, users decideUserService, agents decideAgentService, wallet decideWalletService) *DecideTransactionCommand {
	return &DecideTransactionCommand{
		bot:    bot,
		users:  users,
		agents: agents,
		wallet: wallet,
	}
}

// Execute settles a waiting top-up. The transaction id arrives in forgeable
// callback data, so the caller must administer the agent that owns the
// transaction's user before anything is posted.
func (c *DecideTransactionCommand) Execute(ctx context.Context, chatID, transactionID int64, accept bool) error {
	caller, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return err
	}
	agent, err := c.agents.GetByAdminUserID(ctx, caller.ID)
	if err != nil {
		return err
	}
	if agent == nil {
		return apperr.NotFound(messages.NothingFound)
	}

	t, err := c.wallet.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	owner, err := c.users.GetByID(ctx, t.UserID)
	if err != nil {
		return err
	}
	if owner == nil || owner.AgentID != agent.ID {
		return apperr.NotFound(messages.NothingFound)
	}

	t, err = c.wallet.Decide(ctx, transactionID, accept)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("✅ تراکنش #%d به مبلغ %d تومان تایید شد.", t.ID, t.Amount)
	if !accept {
		text = fmt.Sprintf("❌ تراکنش #%d به مبلغ %d تومان رد شد.", t.ID, t.Amount)
	}
	_, err = c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
