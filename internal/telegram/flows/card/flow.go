package card

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/messages"
	"digiseller/internal/telegram/states"
)

// Handler updates the payment card an agent shows to its users for
// card-to-card top-ups.
type Handler struct {
	bot    botApi
	sm     stateManager
	users  userService
	agents agentService
	logger *slog.Logger
}

func NewHandler(bot botApi, sm stateManager, users userService, agents agentService, logger *slog.Logger) *Handler {
	return &Handler{
		bot:    bot,
		sm:     sm,
		users:  users,
		agents: agents,
		logger: logger,
	}
}

func (h *Handler) Start(ctx context.Context, chatID int64) error {
	caller, err := h.users.GetByChatID(ctx, chatID)
	if err != nil {
		return err
	}
	agent, err := h.agents.GetByAdminUserID(ctx, caller.ID)
	if err != nil {
		return err
	}

	h.sm.SetState(chatID, states.CardWaitNumber, &flows.CardFlowData{AgentID: agent.ID})

	msg := tgbotapi.NewMessage(chatID, messages.AskCardNumber)
	msg.ReplyMarkup = cancelRow()
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	chatID := extractChatID(update)

	switch state {
	case states.CardWaitNumber:
		return h.handleNumber(chatID, update)
	case states.CardWaitHolder:
		return h.handleHolder(ctx, chatID, update)
	default:
		h.sm.Clear(chatID)
		return nil
	}
}

func (h *Handler) handleNumber(chatID int64, update *tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidText))
	}
	number := strings.ReplaceAll(strings.TrimSpace(update.Message.Text), " ", "")
	if len(number) < 16 {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}

	data, err := h.sm.GetCardData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	data.CardNumber = number
	h.sm.SetState(chatID, states.CardWaitHolder, data)

	msg := tgbotapi.NewMessage(chatID, messages.AskCardHolderName)
	msg.ReplyMarkup = cancelRow()
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) handleHolder(ctx context.Context, chatID int64, update *tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidText))
	}
	holder := strings.TrimSpace(update.Message.Text)

	data, err := h.sm.GetCardData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	err = h.agents.UpdateCard(ctx, data.AgentID, agents.UpdateCardParams{
		CardNumber:     &data.CardNumber,
		CardHolderName: &holder,
	})
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.Clear(chatID)
	h.logger.Info("agent card updated", slog.Int64("agent_id", data.AgentID))

	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, messages.CardUpdated))
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
