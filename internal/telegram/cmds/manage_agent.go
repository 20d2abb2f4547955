package cmds

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/telegram/callbacks"
)

type ManageAgentCommand struct {
	bot    botApi
	users  chatUserService
	agents manageAgentService
}

type manageAgentService interface {
	GetByID(ctx context.Context, id int64) (*agents.Agent, error)
	GetByAdminUserID(ctx context.Context, userID int64) (*agents.Agent, error)
}

func NewManageAgentCommand(bot botApi, users chatUserService, agents manageAgentService) *ManageAgentCommand {
	return &ManageAgentCommand{
		bot:    bot,
		users:  users,
		agents: agents,
	}
}

// Execute shows the management card of a sub-agent: current percents and
// limits with buttons to edit each field.
func (c *ManageAgentCommand) Execute(ctx context.Context, chatID, targetAgentID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	caller, err := c.agents.GetByAdminUserID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get caller agent: %w", err)
	}

	target, err := c.agents.GetByID(ctx, targetAgentID)
	if err != nil {
		return err
	}
	if !caller.Path.Contains(target.Path) || caller.ID == target.ID {
		return apperr.NotFound("نماینده‌ای با این شناسه یافت نشد")
	}

	text := fmt.Sprintf(
		"⚙️ %s (%s)\n\nدرصد کاربر: %d٪\nدرصد نماینده: %d٪\nدرصد ویژه: %d٪\n\nشارژ کاربر: %d تا %d\nشارژ نماینده: %d تا %d",
		target.PersianBrandName, target.BrandName,
		target.UserPercent, target.AgentPercent, target.SpecialPercent,
		target.UserMinTopup, target.UserMaxTopup,
		target.AgentMinTopup, target.AgentMaxTopup)

	id := strconv.FormatInt(target.ID, 10)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("٪ کاربر", callbacks.Data("pct_user", "agent", id)),
			tgbotapi.NewInlineKeyboardButtonData("٪ نماینده", callbacks.Data("pct_agent", "agent", id)),
			tgbotapi.NewInlineKeyboardButtonData("٪ ویژه", callbacks.Data("pct_special", "agent", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("حداقل شارژ کاربر", callbacks.Data("lim_user_min", "agent", id)),
			tgbotapi.NewInlineKeyboardButtonData("حداکثر شارژ کاربر", callbacks.Data("lim_user_max", "agent", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("حداقل شارژ نماینده", callbacks.Data("lim_agent_min", "agent", id)),
			tgbotapi.NewInlineKeyboardButtonData("حداکثر شارژ نماینده", callbacks.Data("lim_agent_max", "agent", id)),
		),
	)
	_, err = c.bot.Send(msg)
	return err
}

// Manages reports whether the admin identified by userID controls the
// target agent (the target sits strictly below the caller in the tree).
func (c *ManageAgentCommand) Manages(ctx context.Context, userID, targetAgentID int64) (bool, error) {
	caller, err := c.agents.GetByAdminUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	target, err := c.agents.GetByID(ctx, targetAgentID)
	if err != nil {
		return false, err
	}
	return caller.Path.Contains(target.Path) && caller.ID != target.ID, nil
}
