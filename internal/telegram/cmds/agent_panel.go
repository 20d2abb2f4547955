package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/telegram/callbacks"
	"digiseller/internal/telegram/messages"
)

type AgentPanelCommand struct {
	bot   botApi
	users chatUserService
}

func NewAgentPanelCommand(bot botApi, users chatUserService) *AgentPanelCommand {
	return &AgentPanelCommand{
		bot:   bot,
		users: users,
	}
}

func (c *AgentPanelCommand) Execute(ctx context.Context, chatID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if !user.IsAgent {
		_, err = c.bot.Send(tgbotapi.NewMessage(chatID, messages.AccessDenied))
		return err
	}

	msg := tgbotapi.NewMessage(chatID, messages.ButtonAgentPanel)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonAgentInfo, callbacks.Data("agent_info")),
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonAgentTree, callbacks.Data("agent_tree")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonAgentRequests, callbacks.Data("agent_requests")),
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonSearchUser, callbacks.Data("user_search")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonInviteLink, callbacks.Data("invite_link")),
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonEditCard, callbacks.Data("card_edit")),
		),
	)
	_, err = c.bot.Send(msg)
	return err
}
