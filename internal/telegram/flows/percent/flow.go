package percent

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/messages"
	"digiseller/internal/telegram/states"
)

// Handler edits the markup percents of an agent row. The target may be the
// caller's own agent or one of its sub-agents; permission checks live in the
// agents service.
type Handler struct {
	bot    botApi
	sm     stateManager
	agents agentService
	logger *slog.Logger
}

func NewHandler(bot botApi, sm stateManager, agents agentService, logger *slog.Logger) *Handler {
	return &Handler{
		bot:    bot,
		sm:     sm,
		agents: agents,
		logger: logger,
	}
}

// Start asks for a new value of one percent field of the target agent.
func (h *Handler) Start(chatID, targetAgentID int64, state states.State) error {
	h.sm.SetState(chatID, state, &flows.PercentFlowData{TargetAgentID: targetAgentID})

	prompt := map[states.State]string{
		states.PercentWaitUser:    messages.AskUserPercent,
		states.PercentWaitAgent:   messages.AskAgentPercent,
		states.PercentWaitSpecial: messages.AskSpecialPercent,
	}[state]

	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonCancel, "cancel"),
		),
	)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) Handle(ctx context.Context, user *users.User, update *tgbotapi.Update, state states.State) error {
	chatID := extractChatID(update)

	if update.Message == nil || update.Message.Text == "" {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}
	value, err := strconv.ParseInt(strings.TrimSpace(update.Message.Text), 10, 64)
	if err != nil || value < 0 {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}

	data, err := h.sm.GetPercentData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	var params agents.UpdatePercentParams
	switch state {
	case states.PercentWaitUser:
		params.UserPercent = &value
	case states.PercentWaitAgent:
		params.AgentPercent = &value
	case states.PercentWaitSpecial:
		params.SpecialPercent = &value
	default:
		return fmt.Errorf("unknown percent state: %s", state)
	}

	if err := h.agents.UpdatePercents(ctx, user.ID, data.TargetAgentID, params); err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.Clear(chatID)
	h.logger.Info("percent updated",
		slog.Int64("caller_user_id", user.ID),
		slog.Int64("target_agent_id", data.TargetAgentID),
		slog.String("state", string(state)),
		slog.Int64("value", value))

	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, messages.PercentsUpdated))
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
