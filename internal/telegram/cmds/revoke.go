package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/subs"
	"digiseller/internal/telegram/messages"
)

type RevokeCommand struct {
	bot   botApi
	users chatUserService
	subs  revokeSubService
}

type revokeSubService interface {
	Get(ctx context.Context, subID int64) (*subs.Subscription, error)
	Revoke(ctx context.Context, subID int64) (string, error)
}

func NewRevokeCommand(bot botApi, users chatUserService, subs revokeSubService) *RevokeCommand {
	return &RevokeCommand{
		bot:   bot,
		users: users,
		subs:  subs,
	}
}

// Execute rotates the subscription link of a service the caller owns.
func (c *RevokeCommand) Execute(ctx context.Context, chatID, subID int64) error {
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

	link, err := c.subs.Revoke(ctx, subID)
	if err != nil {
		return err
	}

	_, err = c.bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("%s\n\n%s", messages.LinkRevoked, link)))
	return err
}
