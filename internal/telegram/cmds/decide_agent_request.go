package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/telegram/messages"
)

type DecideAgentRequestCommand struct {
	bot    botApi
	users  chatUserService
	agents resolveRequestService
}

type resolveRequestService interface {
	GetByAdminUserID(ctx context.Context, userID int64) (*agents.Agent, error)
	GetRequest(ctx context.Context, requestID int64) (*agents.Request, error)
	ResolveRequest(ctx context.Context, requestID int64, accept bool) (*agents.Agent, error)
}

func NewDecideAgentRequestCommand(bot botApi, users chatUserService, agents resolveRequestService) *DecideAgentRequestCommand {
	return &DecideAgentRequestCommand{
		bot:    bot,
		users:  users,
		agents: agents,
	}
}

// Execute resolves a promotion request. Only the admin of the request's
// parent agent may decide it; the id comes from forgeable callback data.
func (c *DecideAgentRequestCommand) Execute(ctx context.Context, chatID, requestID int64, accept bool) error {
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

	req, err := c.agents.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ParentAgentID != agent.ID {
		return apperr.NotFound(messages.NothingFound)
	}

	created, err := c.agents.ResolveRequest(ctx, requestID, accept)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("❌ درخواست #%d رد شد.", requestID)
	if accept {
		text = fmt.Sprintf("✅ درخواست #%d تایید شد. کد نمایندگی: %d", requestID, created.AgentCode)
	}
	_, err = c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
