package flows

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/telegram/messages"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type clearer interface {
	Clear(chatID int64)
}

// Fail turns a service error into a chat reply. Validation errors keep the
// conversation state so the user can retry the same input; every other kind
// resets the flow. Unclassified errors are propagated for logging after the
// generic apology is sent.
func Fail(bot sender, sm clearer, chatID int64, err error) error {
	text := apperr.Message(err)
	if text == "" {
		text = messages.Error
	}

	if !apperr.IsValidation(err) {
		sm.Clear(chatID)
	}

	_, sendErr := bot.Send(tgbotapi.NewMessage(chatID, text))
	if apperr.KindOf(err) != 0 {
		return sendErr
	}
	return err
}
