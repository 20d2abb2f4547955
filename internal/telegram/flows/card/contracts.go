package card

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	}

	stateManager interface {
		SetState(chatID int64, state states.State, data any)
		GetCardData(chatID int64) (*flows.CardFlowData, error)
		Clear(chatID int64)
	}

	userService interface {
		GetByChatID(ctx context.Context, chatID int64) (*users.User, error)
	}

	agentService interface {
		GetByAdminUserID(ctx context.Context, userID int64) (*agents.Agent, error)
		UpdateCard(ctx context.Context, agentID int64, params agents.UpdateCardParams) error
	}
)
