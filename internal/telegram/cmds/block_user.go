package cmds

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/telegram/messages"
)

type BlockUserCommand struct {
	bot   botApi
	users blockUserService
}

type blockUserService interface {
	SetBlocked(ctx context.Context, userID int64, blocked bool) error
}

func NewBlockUserCommand(bot botApi, users blockUserService) *BlockUserCommand {
	return &BlockUserCommand{
		bot:   bot,
		users: users,
	}
}

// Execute blocks or unblocks a user; the router has already verified the
// target belongs to the acting agent.
func (c *BlockUserCommand) Execute(ctx context.Context, chatID, targetUserID int64, blocked bool) error {
	if err := c.users.SetBlocked(ctx, targetUserID, blocked); err != nil {
		return err
	}

	confirmation := messages.UserUnblocked
	if blocked {
		confirmation = messages.UserBlocked
	}
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, confirmation))
	return err
}
