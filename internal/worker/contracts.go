package worker

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
)

type (
	agentService interface {
		AgentsReachedNegativeLimit(ctx context.Context) ([]*agents.Agent, error)
		AgentsWithArmedCountdown(ctx context.Context) ([]*agents.Agent, error)
		StartDisableCountdown(ctx context.Context, agentID int64) (time.Time, error)
		ClearDisableCountdown(ctx context.Context, agentID int64) error
		DisableAllUserAccounts(ctx context.Context, agentID int64) (int, error)
	}

	userService interface {
		GetByID(ctx context.Context, id int64) (*users.User, error)
		ListByAgent(ctx context.Context, agentID int64) ([]*users.User, error)
	}

	subService interface {
		DisableAllForUser(ctx context.Context, userID int64) error
	}

	outbox interface {
		Enqueue(ctx context.Context, n notify.Notification) error
		Pending(ctx context.Context, limit int) ([]*notify.Notification, error)
		MarkSent(ctx context.Context, id int64) error
		MarkFailed(ctx context.Context, id int64) error
	}

	telegramBot interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	}

	localizer interface {
		Get(key string, params map[string]interface{}) string
	}
)
