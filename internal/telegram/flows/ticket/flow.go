package ticket

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/notify"
	"digiseller/internal/telegram/callbacks"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/messages"
	"digiseller/internal/telegram/states"
)

// Handler forwards a support message from a user to the admin of the
// agent the user belongs to.
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
	h.sm.SetState(chatID, states.TicketWaitMessage, nil)

	msg := tgbotapi.NewMessage(chatID, messages.AskTicketMessage)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonCancel, "cancel"),
		),
	)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, _ states.State) error {
	chatID := extractChatID(update)

	if update.Message == nil || update.Message.Text == "" {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidText))
	}

	user, err := h.users.GetByChatID(ctx, chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	agent, err := h.agents.GetByID(ctx, user.AgentID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	admin, err := h.users.GetByID(ctx, agent.AdminUserID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	text := fmt.Sprintf("📨 پیام پشتیبانی از %s (%d):\n\n%s",
		user.FullName(), user.ChatID, update.Message.Text)

	err = h.outbox.Enqueue(ctx, notify.Notification{
		ChatID:  admin.ChatID,
		Message: text,
		Buttons: [][]notify.Button{{
			{
				Text:         messages.ButtonSendMessage,
				CallbackData: callbacks.Data("usr_message", "chat", fmt.Sprintf("%d", user.ChatID)),
			},
		}},
	})
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.Clear(chatID)
	h.logger.Info("support ticket forwarded",
		slog.Int64("user_id", user.ID),
		slog.Int64("agent_id", agent.ID))

	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, messages.TicketSubmitted))
	return err
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
