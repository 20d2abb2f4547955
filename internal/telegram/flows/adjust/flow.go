package adjust

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/messages"
	"digiseller/internal/telegram/states"
)

// Handler runs the manual balance adjustment form an agent fills in for
// one of their users.
type Handler struct {
	bot    botApi
	sm     stateManager
	wallet walletService
	logger *slog.Logger
}

func NewHandler(bot botApi, sm stateManager, wallet walletService, logger *slog.Logger) *Handler {
	return &Handler{
		bot:    bot,
		sm:     sm,
		wallet: wallet,
		logger: logger,
	}
}

// Start begins an increase or decrease for the target user.
func (h *Handler) Start(chatID, targetUserID int64, increase bool) error {
	h.sm.SetState(chatID, states.AdjustWaitAmount, &flows.AdjustFlowData{
		TargetUserID: targetUserID,
		Increase:     increase,
	})

	msg := tgbotapi.NewMessage(chatID, messages.AskAdjustAmount)
	msg.ReplyMarkup = cancelRow()
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	chatID := extractChatID(update)

	switch state {
	case states.AdjustWaitAmount:
		return h.handleAmount(chatID, update)
	case states.AdjustWaitDescription:
		return h.handleDescription(ctx, chatID, update)
	default:
		h.sm.Clear(chatID)
		return nil
	}
}

func (h *Handler) handleAmount(chatID int64, update *tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(update.Message.Text), 10, 64)
	if err != nil || amount <= 0 {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}

	data, err := h.sm.GetAdjustData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	data.Amount = amount
	h.sm.SetState(chatID, states.AdjustWaitDescription, data)

	msg := tgbotapi.NewMessage(chatID, messages.AskAdjustDescription)
	msg.ReplyMarkup = cancelRow()
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) handleDescription(ctx context.Context, chatID int64, update *tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidText))
	}

	data, err := h.sm.GetAdjustData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	t, err := h.wallet.ManualAdjust(ctx, data.TargetUserID, data.Amount, data.Increase, update.Message.Text)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.Clear(chatID)
	h.logger.Info("manual adjustment posted",
		slog.Int64("transaction_id", t.ID),
		slog.Int64("target_user_id", data.TargetUserID),
		slog.Int64("amount", data.Amount),
		slog.Bool("increase", data.Increase))

	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, messages.AdjustDone))
	return err
}

func cancelRow() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonCancel, "cancel"),
		),
	)
}

func extractChatID(update *tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
