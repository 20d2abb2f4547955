package cmds

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/subs"
	"digiseller/internal/telegram/callbacks"
	"digiseller/internal/telegram/messages"
)

type MyServicesCommand struct {
	bot   botApi
	users chatUserService
	subs  myServicesSubService
}

type myServicesSubService interface {
	List(ctx context.Context, userID int64) ([]*subs.Subscription, error)
}

func NewMyServicesCommand(bot botApi, users chatUserService, subs myServicesSubService) *MyServicesCommand {
	return &MyServicesCommand{
		bot:   bot,
		users: users,
		subs:  subs,
	}
}

func (c *MyServicesCommand) Execute(ctx context.Context, chatID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	list, err := c.subs.List(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	if len(list) == 0 {
		_, err = c.bot.Send(tgbotapi.NewMessage(chatID, messages.NothingFound))
		return err
	}

	for _, sub := range list {
		msg := tgbotapi.NewMessage(chatID, renderSubscription(sub))
		if markup, ok := serviceKeyboard(sub); ok {
			msg.ReplyMarkup = markup
		}
		if _, err = c.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// serviceKeyboard builds the per-service action buttons. Test accounts get
// none, disabled services only re-enable and delete.
func serviceKeyboard(sub *subs.Subscription) (tgbotapi.InlineKeyboardMarkup, bool) {
	if sub.IsTest {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	id := strconv.FormatInt(sub.ID, 10)

	switch sub.Status {
	case subs.StatusActive:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonRenew, callbacks.Data("buy_renew", "id", id)),
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonRevokeLink, callbacks.Data("revoke", "id", id)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonAppendGb, callbacks.Data("append_gb", "id", id)),
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonAppendDays, callbacks.Data("append_days", "id", id)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonDisable, callbacks.Data("svc_toggle", "id", id)),
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonDeleteService, callbacks.Data("svc_delete", "id", id)),
			),
		), true
	case subs.StatusDisabled:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonEnable, callbacks.Data("svc_toggle", "id", id)),
				tgbotapi.NewInlineKeyboardButtonData(messages.ButtonDeleteService, callbacks.Data("svc_delete", "id", id)),
			),
		), true
	default:
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
}

func renderSubscription(sub *subs.Subscription) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🌐 %s\n", sub.MarzbanUsername)
	fmt.Fprintf(&sb, "حجم: %d گیگابایت\n", sub.Gb)
	fmt.Fprintf(&sb, "انقضا: %s\n", sub.ExpiresAt.Format("2006-01-02"))
	fmt.Fprintf(&sb, "وضعیت: %s\n", subStatusLabel(sub.Status))
	if sub.SubscriptionURL != "" {
		fmt.Fprintf(&sb, "\n%s", sub.SubscriptionURL)
	}
	return sb.String()
}

func subStatusLabel(s subs.Status) string {
	switch s {
	case subs.StatusActive:
		return "فعال"
	case subs.StatusDisabled:
		return "غیرفعال"
	default:
		return "حذف شده"
	}
}
