package cmds

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/users"
)

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type chatUserService interface {
	GetByChatID(ctx context.Context, chatID int64) (*users.User, error)
}
