package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/subs"
	"digiseller/internal/telegram/messages"
)

type ToggleServiceCommand struct {
	bot   botApi
	users chatUserService
	subs  toggleSubService
}

type toggleSubService interface {
	Get(ctx context.Context, subID int64) (*subs.Subscription, error)
	ChangeStatus(ctx context.Context, subID int64, status subs.Status) (*subs.Subscription, error)
}

func NewToggleServiceCommand(bot botApi, users chatUserService, subs toggleSubService) *ToggleServiceCommand {
	return &ToggleServiceCommand{
		bot:   bot,
		users: users,
		subs:  subs,
	}
}

// Execute flips a service the caller owns between active and disabled.
func (c *ToggleServiceCommand) Execute(ctx context.Context, chatID, subID int64) error {
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

	next := subs.StatusDisabled
	confirmation := messages.ServiceDisabled
	if sub.Status == subs.StatusDisabled {
		next = subs.StatusActive
		confirmation = messages.ServiceEnabled
	}

	if _, err := c.subs.ChangeStatus(ctx, subID, next); err != nil {
		return err
	}

	_, err = c.bot.Send(tgbotapi.NewMessage(chatID, confirmation))
	return err
}
