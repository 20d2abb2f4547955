package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/telegram/messages"
)

type MainMenuCommand struct {
	bot   botApi
	users chatUserService
}

func NewMainMenuCommand(bot botApi, users chatUserService) *MainMenuCommand {
	return &MainMenuCommand{
		bot:   bot,
		users: users,
	}
}

// Execute shows the persistent reply keyboard. Agents get an extra row for
// the agency panel; plain users get the agent request entry instead.
func (c *MainMenuCommand) Execute(ctx context.Context, chatID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(messages.ButtonBuyService),
			tgbotapi.NewKeyboardButton(messages.ButtonMyServices),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(messages.ButtonWallet),
			tgbotapi.NewKeyboardButton(messages.ButtonSupport),
		),
	}
	if user.IsAgent {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(messages.ButtonAgentPanel),
		))
	} else {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(messages.ButtonAgentRequest),
		))
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, messages.MainMenu)
	msg.ReplyMarkup = keyboard
	_, err = c.bot.Send(msg)
	return err
}
