package agentrequest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/messages"
	"digiseller/internal/telegram/states"
)

// Handler walks a user through the reseller application form. The answers
// land in a pending request that the parent agent decides on.
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

func (h *Handler) Start(chatID int64) error {
	h.sm.SetState(chatID, states.AgentRequestWaitPersianBrand, &flows.AgentRequestFlowData{})
	return h.ask(chatID, messages.AskPersianBrandName)
}

func (h *Handler) Handle(ctx context.Context, user *users.User, update *tgbotapi.Update, state states.State) error {
	chatID := extractChatID(update)

	text, ok := extractText(update)
	if !ok {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidText))
	}

	data, err := h.sm.GetAgentRequestData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	switch state {
	case states.AgentRequestWaitPersianBrand:
		data.PersianBrandName = text
		h.sm.SetState(chatID, states.AgentRequestWaitEnglishBrand, data)
		return h.ask(chatID, messages.AskEnglishBrandName)

	case states.AgentRequestWaitEnglishBrand:
		data.BrandName = text
		h.sm.SetState(chatID, states.AgentRequestWaitCardNumber, data)
		return h.ask(chatID, messages.AskCardNumber)

	case states.AgentRequestWaitCardNumber:
		if !isCardNumber(text) {
			return flows.Fail(h.bot, h.sm, chatID, apperr.Validation("❌ شماره کارت باید ۱۶ رقم باشد"))
		}
		data.CardNumber = text
		h.sm.SetState(chatID, states.AgentRequestWaitCardHolder, data)
		return h.ask(chatID, messages.AskCardHolderName)

	case states.AgentRequestWaitCardHolder:
		data.CardHolderName = text
		h.sm.SetState(chatID, states.AgentRequestWaitPhone, data)
		return h.ask(chatID, messages.AskPhone)

	case states.AgentRequestWaitPhone:
		data.Phone = text
		h.sm.SetState(chatID, states.AgentRequestWaitDescription, data)
		return h.ask(chatID, messages.AskAgentDescription)

	case states.AgentRequestWaitDescription:
		data.Description = text
		return h.submit(ctx, user, chatID, data)

	default:
		return fmt.Errorf("unknown agent request state: %s", state)
	}
}

func (h *Handler) submit(ctx context.Context, user *users.User, chatID int64, data *flows.AgentRequestFlowData) error {
	req, err := h.agents.SubmitRequest(ctx, user.ID, agents.Request{
		ParentAgentID:    user.AgentID,
		BrandName:        data.BrandName,
		PersianBrandName: data.PersianBrandName,
		CardNumber:       data.CardNumber,
		CardHolderName:   data.CardHolderName,
		Description:      fmt.Sprintf("تلفن: %s\n%s", data.Phone, data.Description),
	})
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.Clear(chatID)
	h.logger.Info("agent request submitted",
		slog.Int64("user_id", user.ID),
		slog.Int64("request_id", req.ID))

	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, messages.AgentRequestQueued))
	return err
}

func (h *Handler) ask(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonCancel, "cancel"),
		),
	)
	_, err := h.bot.Send(msg)
	return err
}

func isCardNumber(s string) bool {
	if len(s) != 16 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func extractText(update *tgbotapi.Update) (string, bool) {
	if update.Message == nil {
		return "", false
	}
	text := strings.TrimSpace(update.Message.Text)
	return text, text != ""
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
