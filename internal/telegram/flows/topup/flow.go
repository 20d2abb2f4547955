package topup

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/callbacks"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/messages"
	"digiseller/internal/telegram/states"
)

type Handler struct {
	bot    botApi
	sm     stateManager
	agents agentService
	users  userService
	wallet walletService
	outbox outbox
	logger *slog.Logger
}

func NewHandler(
	bot botApi,
	sm stateManager,
	agents agentService,
	users userService,
	wallet walletService,
	outbox outbox,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:    bot,
		sm:     sm,
		agents: agents,
		users:  users,
		wallet: wallet,
		outbox: outbox,
		logger: logger,
	}
}

// Start asks for the card-to-card amount. The allowed range comes from the
// user's direct agent and differs for agents and end-users.
func (h *Handler) Start(ctx context.Context, user *users.User, chatID int64) error {
	agent, err := h.agents.GetByID(ctx, user.AgentID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	if !agent.CardPaymentEnabled || agent.CardNumber == "" {
		return flows.Fail(h.bot, h.sm, chatID,
			apperr.BusinessRule("پرداخت کارت به کارت برای فروشنده شما فعال نیست"))
	}

	min, max := h.bounds(user, agent)
	h.sm.SetState(chatID, states.TopupWaitAmount, &flows.TopupFlowData{})

	text := fmt.Sprintf("%s\n(بین %d تا %d تومان)", messages.AskTopupAmount, min, max)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = cancelKeyboard()
	_, err = h.bot.Send(msg)
	return err
}

// Handle consumes input for the active topup state.
func (h *Handler) Handle(ctx context.Context, user *users.User, update *tgbotapi.Update, state states.State) error {
	chatID := extractChatID(update)

	switch state {
	case states.TopupWaitAmount:
		return h.handleAmount(ctx, user, chatID, update)
	case states.TopupWaitReceipt:
		return h.handleReceipt(ctx, user, chatID, update)
	default:
		return fmt.Errorf("unknown topup state: %s", state)
	}
}

func (h *Handler) handleAmount(ctx context.Context, user *users.User, chatID int64, update *tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(update.Message.Text), 10, 64)
	if err != nil || amount <= 0 {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}

	agent, err := h.agents.GetByID(ctx, user.AgentID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	min, max := h.bounds(user, agent)
	if amount < min || amount > max {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.TopupOutOfBounds))
	}

	h.sm.SetState(chatID, states.TopupWaitReceipt, &flows.TopupFlowData{Amount: amount})

	text := fmt.Sprintf("مبلغ %d تومان را به کارت زیر واریز کنید:\n\n💳 %s\n👤 %s\n\n%s",
		amount, agent.CardNumber, agent.CardHolderName, messages.AskReceiptPhoto)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = cancelKeyboard()
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) handleReceipt(ctx context.Context, user *users.User, chatID int64, update *tgbotapi.Update) error {
	if update.Message == nil || len(update.Message.Photo) == 0 {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidPhoto))
	}

	data, err := h.sm.GetTopupData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	// Largest photo size is last.
	fileID := update.Message.Photo[len(update.Message.Photo)-1].FileID

	t, err := h.wallet.CreateTopup(ctx, user.ID, data.Amount, fileID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	if err := h.notifySeller(ctx, user, t.ID, data.Amount, fileID); err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.Clear(chatID)
	h.logger.Info("topup submitted",
		slog.Int64("user_id", user.ID),
		slog.Int64("transaction_id", t.ID),
		slog.Int64("amount", data.Amount))

	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, messages.TopupSubmitted))
	return err
}

// notifySeller queues the receipt for the seller's admin with decision
// buttons.
func (h *Handler) notifySeller(ctx context.Context, user *users.User, transactionID, amount int64, fileID string) error {
	agent, err := h.agents.GetByID(ctx, user.AgentID)
	if err != nil {
		return err
	}
	admin, err := h.users.GetByID(ctx, agent.AdminUserID)
	if err != nil {
		return err
	}

	idArg := strconv.FormatInt(transactionID, 10)
	return h.outbox.Enqueue(ctx, notify.Notification{
		ChatID: admin.ChatID,
		Message: fmt.Sprintf("درخواست افزایش موجودی\n\n👤 %s (%d)\n💰 مبلغ: %d تومان",
			user.FullName(), user.ChatID, amount),
		FileID: fileID,
		Buttons: [][]notify.Button{{
			{Text: messages.ButtonAccept, CallbackData: callbacks.Data("accept_transaction", "id", idArg)},
			{Text: messages.ButtonReject, CallbackData: callbacks.Data("reject_transaction", "id", idArg)},
		}},
	})
}

func (h *Handler) bounds(user *users.User, agent *agents.Agent) (int64, int64) {
	if user.IsAgent {
		return agent.AgentMinTopup, agent.AgentMaxTopup
	}
	return agent.UserMinTopup, agent.UserMaxTopup
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
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
