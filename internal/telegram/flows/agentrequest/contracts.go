package agentrequest

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
		GetAgentRequestData(chatID int64) (*flows.AgentRequestFlowData, error)
		Clear(chatID int64)
	}

	agentService interface {
		SubmitRequest(ctx context.Context, userID int64, req agents.Request) (*agents.Request, error)
	}
)
