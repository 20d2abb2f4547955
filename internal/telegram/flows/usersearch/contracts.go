package usersearch

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/states"
)

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type stateManager interface {
	SetState(chatID int64, state states.State, data any)
	GetUserSearchData(chatID int64) (*flows.UserSearchFlowData, error)
	Clear(chatID int64)
}

type userService interface {
	GetByChatID(ctx context.Context, chatID int64) (*users.User, error)
}

type agentService interface {
	GetByAdminUserID(ctx context.Context, userID int64) (*agents.Agent, error)
}

type outbox interface {
	Enqueue(ctx context.Context, n notify.Notification) error
}
