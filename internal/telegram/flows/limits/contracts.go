package limits

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	}

	stateManager interface {
		SetState(chatID int64, state states.State, data any)
		GetLimitsData(chatID int64) (*flows.LimitsFlowData, error)
		Clear(chatID int64)
	}

	agentService interface {
		UpdateLimits(ctx context.Context, agentID int64, params agents.UpdateLimitsParams) error
	}
)
