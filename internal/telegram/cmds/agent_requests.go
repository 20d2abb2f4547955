package cmds

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/telegram/callbacks"
	"digiseller/internal/telegram/messages"
)

type AgentRequestsCommand struct {
	bot    botApi
	users  chatUserService
	agents agentRequestsService
}

type agentRequestsService interface {
	ListRequests(ctx context.Context, adminUserID int64) ([]*agents.Request, error)
}

func NewAgentRequestsCommand(bot botApi, users chatUserService, agents agentRequestsService) *AgentRequestsCommand {
	return &AgentRequestsCommand{
		bot:    bot,
		users:  users,
		agents: agents,
	}
}

func (c *AgentRequestsCommand) Execute(ctx context.Context, chatID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	requests, err := c.agents.ListRequests(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list agent requests: %w", err)
	}
	if len(requests) == 0 {
		_, err = c.bot.Send(tgbotapi.NewMessage(chatID, messages.NothingFound))
		return err
	}

	for _, req := range requests {
		text := fmt.Sprintf("📨 درخواست نمایندگی #%d\n\nبرند: %s (%s)\nکارت: %s\nدارنده کارت: %s\n\n%s",
			req.ID, req.PersianBrandName, req.BrandName, req.CardNumber, req.CardHolderName, req.Description)

		id := strconv.FormatInt(req.ID, 10)
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonAccept, callbacks.Data("accept_agent_request", "id", id)),
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonReject, callbacks.Data("reject_agent_request", "id", id)),
			),
		)
		if _, err = c.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}
