package ticket

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/states"
)

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type stateManager interface {
	SetState(chatID int64, state states.State, data any)
	Clear(chatID int64)
}

type userService interface {
	GetByChatID(ctx context.Context, chatID int64) (*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

type agentService interface {
	GetByID(ctx context.Context, id int64) (*agents.Agent, error)
}

type outbox interface {
	Enqueue(ctx context.Context, n notify.Notification) error
}
