package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
)

type InviteLinkCommand struct {
	bot     botApi
	users   chatUserService
	agents  inviteAgentService
	botName string
}

type inviteAgentService interface {
	GetByAdminUserID(ctx context.Context, userID int64) (*agents.Agent, error)
}

func NewInviteLinkCommand(bot botApi, users chatUserService, agents inviteAgentService, botName string) *InviteLinkCommand {
	return &InviteLinkCommand{
		bot:     bot,
		users:   users,
		agents:  agents,
		botName: botName,
	}
}

// Execute sends the deep link that attributes new users to the agent.
func (c *InviteLinkCommand) Execute(ctx context.Context, chatID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	agent, err := c.agents.GetByAdminUserID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get agent: %w", err)
	}

	text := fmt.Sprintf("🔗 لینک دعوت شما:\n\nhttps://t.me/%s?start=%d", c.botName, agent.AgentCode)
	_, err = c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
