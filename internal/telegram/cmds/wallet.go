package cmds

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/wallet"
	"digiseller/internal/telegram/callbacks"
	"digiseller/internal/telegram/messages"
)

const walletHistoryLimit = 10

type WalletCommand struct {
	bot    botApi
	users  chatUserService
	wallet walletService
}

type walletService interface {
	History(ctx context.Context, userID int64, limit int) ([]*wallet.Transaction, error)
}

func NewWalletCommand(bot botApi, users chatUserService, wallet walletService) *WalletCommand {
	return &WalletCommand{
		bot:    bot,
		users:  users,
		wallet: wallet,
	}
}

func (c *WalletCommand) Execute(ctx context.Context, chatID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	history, err := c.wallet.History(ctx, user.ID, walletHistoryLimit)
	if err != nil {
		return fmt.Errorf("wallet history: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👛 موجودی شما: %d تومان\n", user.Balance)
	if len(history) > 0 {
		sb.WriteString("\nآخرین تراکنش‌ها:\n")
	}
	for _, t := range history {
		fmt.Fprintf(&sb, "%s %d تومان — %s (%s)\n",
			kindMark(t.Kind), t.Amount, statusLabel(t.Status), t.CreatedAt.Format("2006-01-02"))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonTopup, callbacks.Data("topup")),
		),
	)
	_, err = c.bot.Send(msg)
	return err
}

func kindMark(k wallet.Kind) string {
	switch k {
	case wallet.KindDecrease, wallet.KindManualDecrease:
		return "➖"
	default:
		return "➕"
	}
}

func statusLabel(s wallet.Status) string {
	switch s {
	case wallet.StatusWaiting:
		return "در انتظار بررسی"
	case wallet.StatusRejected:
		return "رد شده"
	default:
		return "تایید شده"
	}
}
