package percent

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
		GetPercentData(chatID int64) (*flows.PercentFlowData, error)
		Clear(chatID int64)
	}

	agentService interface {
		UpdatePercents(ctx context.Context, callerAdminUserID, agentID int64, params agents.UpdatePercentParams) error
	}
)
