package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/subs"
	"digiseller/internal/telegram/messages"
)

type DeleteServiceCommand struct {
	bot   botApi
	users chatUserService
	subs  deleteSubService
}

type deleteSubService interface {
	Get(ctx context.Context, subID int64) (*subs.Subscription, error)
	Delete(ctx context.Context, subID int64) error
}

func NewDeleteServiceCommand(bot botApi, users chatUserService, subs deleteSubService) *DeleteServiceCommand {
	return &DeleteServiceCommand{
		bot:   bot,
		users: users,
		subs:  subs,
	}
}

// Execute removes a service the caller owns from the panel and the bot.
func (c *DeleteServiceCommand) Execute(ctx context.Context, chatID, subID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	sub, err := c.subs.Get(ctx, subID)
	if err != nil {
		return err
	}
	if sub.UserID != user.ID {
		return apperr.NotFound("سرویسی با این شناسه یافت نشد")
	}

	if err := c.subs.Delete(ctx, subID); err != nil {
		return err
	}

	_, err = c.bot.Send(tgbotapi.NewMessage(chatID, messages.ServiceDeleted))
	return err
}
