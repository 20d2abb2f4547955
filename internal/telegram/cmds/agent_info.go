package cmds

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
)

type AgentInfoCommand struct {
	bot    botApi
	users  chatUserService
	agents agentInfoService
}

type agentInfoService interface {
	Info(ctx context.Context, adminUserID int64) (*agents.Info, error)
}

func NewAgentInfoCommand(bot botApi, users chatUserService, agents agentInfoService) *AgentInfoCommand {
	return &AgentInfoCommand{
		bot:    bot,
		users:  users,
		agents: agents,
	}
}

func (c *AgentInfoCommand) Execute(ctx context.Context, chatID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	info, err := c.agents.Info(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("agent info: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s\n\n", info.Agent.PersianBrandName)
	fmt.Fprintf(&sb, "کد نمایندگی: %d\n", info.Agent.AgentCode)
	fmt.Fprintf(&sb, "تعداد کاربران: %d\n", info.UserCount)
	fmt.Fprintf(&sb, "نمایندگان سطح یک: %d\n", info.CountAgentLevel1)
	fmt.Fprintf(&sb, "نمایندگان سطح دو: %d\n", info.CountAgentLevel2)
	fmt.Fprintf(&sb, "سود کل: %d تومان\n", info.Profit)
	fmt.Fprintf(&sb, "\nدرصد فروش به کاربر: %d٪\n", info.Agent.UserPercent)
	fmt.Fprintf(&sb, "درصد فروش به نماینده: %d٪\n", info.Agent.AgentPercent)

	_, err = c.bot.Send(tgbotapi.NewMessage(chatID, sb.String()))
	return err
}
