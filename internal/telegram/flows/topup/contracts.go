package topup

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
	"digiseller/internal/stories/wallet"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	}

	stateManager interface {
		SetState(chatID int64, state states.State, data any)
		GetTopupData(chatID int64) (*flows.TopupFlowData, error)
		Clear(chatID int64)
	}

	agentService interface {
		GetByID(ctx context.Context, id int64) (*agents.Agent, error)
	}

	userService interface {
		GetByID(ctx context.Context, id int64) (*users.User, error)
	}

	walletService interface {
		CreateTopup(ctx context.Context, userID, amount int64, receiptFileID string) (*wallet.Transaction, error)
	}

	outbox interface {
		Enqueue(ctx context.Context, n notify.Notification) error
	}
)
