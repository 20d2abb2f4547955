package buy

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/subs"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/callbacks"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/messages"
	"digiseller/internal/telegram/states"
)

type Handler struct {
	bot       botApi
	sm        stateManager
	vpns      vpnService
	purchases purchaseService
	logger    *slog.Logger
}

func NewHandler(bot botApi, sm stateManager, vpns vpnService, purchases purchaseService, logger *slog.Logger) *Handler {
	return &Handler{
		bot:       bot,
		sm:        sm,
		vpns:      vpns,
		purchases: purchases,
		logger:    logger,
	}
}

// Start lists the purchasable VPNs.
func (h *Handler) Start(ctx context.Context, chatID int64) error {
	list, err := h.vpns.ListActive(ctx)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	if len(list) == 0 {
		_, err := h.bot.Send(tgbotapi.NewMessage(chatID, messages.NothingFound))
		return err
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, vpn := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(vpn.Name, callbacks.Data("buy_vpn", "id", strconv.FormatInt(vpn.ID, 10))),
		))
	}
	rows = append(rows, cancelRow())

	msg := tgbotapi.NewMessage(chatID, "سرویس مورد نظر را انتخاب کنید:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = h.bot.Send(msg)
	return err
}

// SelectVpn shows the predefined bundles of one VPN plus the custom and
// trial entries.
func (h *Handler) SelectVpn(ctx context.Context, chatID, vpnID int64) error {
	vpn, err := h.vpns.GetByID(ctx, vpnID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	templates, err := h.vpns.ActiveTemplates(ctx, vpnID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	vpnArg := strconv.FormatInt(vpnID, 10)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, tpl := range templates {
		title := fmt.Sprintf("%s | %d گیگ | %d روز | %d تومان", tpl.Title, tpl.Gb, tpl.Days, tpl.Price)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title,
				callbacks.Data("buy_tpl", "vpn", vpnArg, "id", strconv.FormatInt(tpl.ID, 10))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(messages.ButtonCustomBundle, callbacks.Data("buy_custom", "vpn", vpnArg)),
	))
	if vpn.TestEnabled {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonTestAccount, callbacks.Data("buy_test", "vpn", vpnArg)),
		))
	}
	rows = append(rows, cancelRow())

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("بسته‌های %s:", vpn.Name))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = h.bot.Send(msg)
	return err
}

// SelectTemplate prices one predefined bundle and asks for confirmation.
// A renewal started earlier keeps its target service.
func (h *Handler) SelectTemplate(ctx context.Context, user *users.User, chatID, vpnID, templateID int64) error {
	data, err := h.sm.GetBuyData(chatID)
	if err != nil {
		data = &flows.BuyFlowData{}
	}
	data.VpnID = vpnID
	data.TemplateID = &templateID
	data.Gb, data.Days = 0, 0

	return h.showConfirmation(ctx, user, chatID, data)
}

// StartCustom begins the free-form bundle conversation.
func (h *Handler) StartCustom(ctx context.Context, chatID, vpnID int64) error {
	data := &flows.BuyFlowData{VpnID: vpnID}
	h.sm.SetState(chatID, states.UserBuyWaitGb, data)

	vpn, err := h.vpns.GetByID(ctx, vpnID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	text := fmt.Sprintf("%s\n(بین %d تا %d گیگابایت)", messages.AskGb, vpn.GbMin, vpn.GbMax)
	return h.ask(chatID, text)
}

// StartRenew begins a renewal of an existing service.
func (h *Handler) StartRenew(ctx context.Context, chatID, subID int64) error {
	sub, err := h.purchases.Get(ctx, subID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.SetState(chatID, states.UserBuyWaitConfirm, &flows.BuyFlowData{
		VpnID:      sub.VpnID,
		RenewSubID: &sub.ID,
	})
	return h.SelectVpn(ctx, chatID, sub.VpnID)
}

// StartAppendGb begins buying extra volume for an existing service.
func (h *Handler) StartAppendGb(chatID, subID int64) error {
	h.sm.SetState(chatID, states.UserBuyWaitAppendGb, &flows.BuyFlowData{AppendSubID: subID})
	return h.ask(chatID, messages.AskGb)
}

// StartAppendDays begins buying extra duration for an existing service.
func (h *Handler) StartAppendDays(chatID, subID int64) error {
	h.sm.SetState(chatID, states.UserBuyWaitAppendDays, &flows.BuyFlowData{AppendSubID: subID})
	return h.ask(chatID, messages.AskDays)
}

// Test provisions the free trial account of a VPN.
func (h *Handler) Test(ctx context.Context, user *users.User, chatID, vpnID int64) error {
	sub, err := h.purchases.CreateTest(ctx, user.ID, vpnID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	text := fmt.Sprintf("%s\n\n%s", messages.TestCreated, sub.SubscriptionURL)
	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Handle consumes text input for the active buy state.
func (h *Handler) Handle(ctx context.Context, user *users.User, update *tgbotapi.Update, state states.State) error {
	chatID := extractChatID(update)

	switch state {
	case states.UserBuyWaitGb:
		return h.handleGbInput(ctx, chatID, update)
	case states.UserBuyWaitDays:
		return h.handleDaysInput(ctx, user, chatID, update)
	case states.UserBuyWaitAppendGb:
		return h.handleAppendInput(ctx, user, chatID, update, true)
	case states.UserBuyWaitAppendDays:
		return h.handleAppendInput(ctx, user, chatID, update, false)
	case states.UserBuyWaitConfirm:
		_, err := h.bot.Send(tgbotapi.NewMessage(chatID, messages.FlowUseButtons))
		return err
	default:
		return fmt.Errorf("unknown buy state: %s", state)
	}
}

func (h *Handler) handleGbInput(ctx context.Context, chatID int64, update *tgbotapi.Update) error {
	gb, ok := parseNumber(update)
	if !ok {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}

	data, err := h.sm.GetBuyData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	vpn, err := h.vpns.GetByID(ctx, data.VpnID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	// An out-of-range volume re-prompts here; the session stays on the Gb
	// step and nothing is recorded.
	if err := h.vpns.ValidateGb(vpn, gb); err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	data.Gb = gb
	h.sm.SetState(chatID, states.UserBuyWaitDays, data)

	text := fmt.Sprintf("%s\n(بین %d تا %d روز)", messages.AskDays, vpn.DayMin, vpn.DayMax)
	return h.ask(chatID, text)
}

func (h *Handler) handleDaysInput(ctx context.Context, user *users.User, chatID int64, update *tgbotapi.Update) error {
	days, ok := parseNumber(update)
	if !ok {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}

	data, err := h.sm.GetBuyData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	vpn, err := h.vpns.GetByID(ctx, data.VpnID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}
	if err := h.vpns.ValidateDays(vpn, days); err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	data.Days = days

	return h.showConfirmation(ctx, user, chatID, data)
}

func (h *Handler) handleAppendInput(ctx context.Context, user *users.User, chatID int64, update *tgbotapi.Update, traffic bool) error {
	amount, ok := parseNumber(update)
	if !ok {
		return flows.Fail(h.bot, h.sm, chatID, apperr.Validation(messages.InvalidNumber))
	}

	data, err := h.sm.GetBuyData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	var price int64
	if traffic {
		price, err = h.purchases.AppendTraffic(ctx, user.ID, data.AppendSubID, amount, uuid.NewString())
	} else {
		price, err = h.purchases.AppendDays(ctx, user.ID, data.AppendSubID, amount, uuid.NewString())
	}
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.Clear(chatID)
	text := fmt.Sprintf("✅ انجام شد. مبلغ %d تومان از کیف پول شما کسر شد.", price)
	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// showConfirmation quotes the final price and waits for the confirm button.
func (h *Handler) showConfirmation(ctx context.Context, user *users.User, chatID int64, data *flows.BuyFlowData) error {
	factor, gb, days, err := h.purchases.Factor(ctx, h.buildRequest(user, data))
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	if data.IdempotencyKey == "" {
		data.IdempotencyKey = uuid.NewString()
	}
	h.sm.SetState(chatID, states.UserBuyWaitConfirm, data)

	action := "خرید"
	if data.RenewSubID != nil {
		action = "تمدید"
	}
	text := fmt.Sprintf("%s سرویس:\n\n📦 حجم: %d گیگابایت\n⏱ مدت: %d روز\n💰 مبلغ قابل پرداخت: %d تومان\n\nآیا تایید می‌کنید؟",
		action, gb, days, factor.FinalPrice)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonConfirm, "buy_confirm"),
			tgbotapi.NewInlineKeyboardButtonData(messages.ButtonCancel, "cancel"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err = h.bot.Send(msg)
	return err
}

// Confirm executes the purchase the user just approved.
func (h *Handler) Confirm(ctx context.Context, user *users.User, chatID int64) error {
	data, err := h.sm.GetBuyData(chatID)
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	receipt, err := h.purchases.Buy(ctx, h.buildRequest(user, data))
	if err != nil {
		return flows.Fail(h.bot, h.sm, chatID, err)
	}

	h.sm.Clear(chatID)
	h.logger.Info("purchase completed",
		slog.Int64("user_id", user.ID),
		slog.Int64("subscription_id", receipt.Subscription.ID),
		slog.Int64("price", receipt.FinalPrice))

	done := messages.PurchaseDone
	if data.RenewSubID != nil {
		done = messages.RenewDone
	}
	text := fmt.Sprintf("%s\n\n🔗 لینک اشتراک شما:\n%s", done, receipt.Subscription.SubscriptionURL)
	_, err = h.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (h *Handler) buildRequest(user *users.User, data *flows.BuyFlowData) subs.BuyRequest {
	return subs.BuyRequest{
		UserID:         user.ID,
		VpnID:          data.VpnID,
		TemplateID:     data.TemplateID,
		Gb:             data.Gb,
		Days:           data.Days,
		RenewSubID:     data.RenewSubID,
		IdempotencyKey: data.IdempotencyKey,
	}
}

func (h *Handler) ask(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(cancelRow())
	_, err := h.bot.Send(msg)
	return err
}

func cancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(messages.ButtonCancel, "cancel"),
	)
}

func parseNumber(update *tgbotapi.Update) (int64, bool) {
	if update.Message == nil || update.Message.Text == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(update.Message.Text), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
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
