package adjust

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/wallet"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/states"
)

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type stateManager interface {
	SetState(chatID int64, state states.State, data any)
	GetAdjustData(chatID int64) (*flows.AdjustFlowData, error)
	Clear(chatID int64)
}

type walletService interface {
	ManualAdjust(ctx context.Context, targetUserID, amount int64, increase bool, description string) (*wallet.Transaction, error)
}
