package usersearch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/callbacks"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/messages"
	"digiseller/internal/telegram/states"
)

// Handler lets an agent look up one of their users by chat id, then
// adjust the balance or send a direct message.
type Handler struct {
	bot    botApi
	sm     stateManager
	users  userService
	agents agentService
	outbox outbox
	logger *slog.Logger
}

func NewHandler(bot botApi, sm stateManager, users userService, agents agentService, outbox outbox, logger *slog.Logger) *Handler {
	return &Handler{
		bot:    bot,
		sm:     sm,
		users:  users,
		agents: agents,
		outbox: outbox,
		logger: logger,
	}
}

func (h *Handler) Start(chatID int64) error {
	h.sm.SetState(chatID, states.UserSearchWaitChatID, &flows.UserSearchFlowData{})

	msg := tgbotapi.NewMessage(chatID, messages.AskSearchChatID)
	msg.ReplyMarkup = cancelRow()
	_, err := h.bot.Send(msg)
	return err
}

// StartMessage begins composing a direct message to a user already found.
func (h *Handler) StartMessage(chatID, targetChatID int64) error {
	h.sm.SetState(chatID, states.UserSearchWaitMessage, &flows.UserSearchFlowData{TargetChatID: targetChatID})

	msg := tgbotapi.NewMessage(chatID, messages.AskMessageForUser)
	msg.ReplyMarkup = cancelRow()
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	chatID := extractChatID(update)

	switch state {
	case states.UserSearchWaitChatID:
		return h.handleChatID(ctx, chatID, update)
	case states.UserSearchWaitMessage:
		return h.handleMessage(ctx, chatID, update)
	default:
		h.sm.Clear(chatID)
		return nil
	}
}

func (h *Handler) handleChatID(ctx context.Context, chatID int64, update *tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}
	targetChatID, err := strconv.ParseInt(strings.TrimSpace(update.Message.Text), 10, 64)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}

	caller, err := h.users.GetByChatID(ctx, chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	agent, err := h.agents.GetByAdminUserID(ctx, caller.ID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	target, err := h.users.GetByChatID(ctx, targetChatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	if target == nil || target.AgentID != agent.ID {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.NothingFound))
	}

	h.sm.Clear(chatID)
	h.logger.Info("user found",
		slog.Int64("agent_id", agent.ID),
		slog.Int64("target_user_id", target.ID))

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 %s\n", target.FullName())
	fmt.Fprintf(&sb, "شناسه: %d\n", target.ChatID)
	fmt.Fprintf(&sb, "موجودی: %d تومان\n", target.Balance)
	if target.IsBlocked {
		sb.WriteString("وضعیت: مسدود\n")
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonIncrease,
				callbacks.Data("adj_inc", "user", strconv.FormatInt(target.ID, 10))),
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonDecrease,
				callbacks.Data("adj_dec", "user", strconv.FormatInt(target.ID, 10))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonSendMessage,
				callbacks.Data("usr_message", "chat", strconv.FormatInt(target.ChatID, 10))),
			blockButton(target),
		),
	)
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) handleMessage(ctx context.Context, chatID int64, update *tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidText))
	}

	data, err := h.sm.GetUserSearchData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	err = h.outbox.Enqueue(ctx, notify.Notification{
		ChatID:  data.TargetChatID,
		Message: update.Message.Text,
	})
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.Clear(chatID)
	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, messages.MessageDelivered))
	return err
}

// blockButton offers the opposite of the user's current blocked state.
func blockButton(target *users.User) tgbotapi.InlineKeyboardButton {
	id := strconv.FormatInt(target.ID, 10)
	if target.IsBlocked {
		return tgbotapi.NewInlineKeyboardButtonData(messages.ButtonUnblockUser,
			callbacks.Data("usr_block", "user", id, "to", "0"))
	}
	return tgbotapi.NewInlineKeyboardButtonData(messages.ButtonBlockUser,
		callbacks.Data("usr_block", "user", id, "to", "1"))
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
