package cmds

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/telegram/callbacks"
)

type AgentTreeCommand struct {
	bot    botApi
	users  chatUserService
	agents agentTreeService
}

type agentTreeService interface {
	GetByAdminUserID(ctx context.Context, userID int64) (*agents.Agent, error)
	Tree(ctx context.Context, agentID int64) (*agents.Node, error)
}

func NewAgentTreeCommand(bot botApi, users chatUserService, agents agentTreeService) *AgentTreeCommand {
	return &AgentTreeCommand{
		bot:    bot,
		users:  users,
		agents: agents,
	}
}

func (c *AgentTreeCommand) Execute(ctx context.Context, chatID int64) error {
	user, err := c.users.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	agent, err := c.agents.GetByAdminUserID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get agent: %w", err)
	}

	root, err := c.agents.Tree(ctx, agent.ID)
	if err != nil {
		return fmt.Errorf("agent tree: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("🌳 زیرمجموعه‌های شما:\n\n")
	writeNode(&sb, root, 0)

	msg := tgbotapi.NewMessage(chatID, sb.String())
	if rows := manageRows(root.SubAgents); len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	_, err = c.bot.Send(msg)
	return err
}

// manageRows builds one management button per direct sub-agent.
func manageRows(children []*agents.Node) [][]tgbotapi.InlineKeyboardButton {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(children))
	for _, child := range children {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"⚙️ "+child.Agent.PersianBrandName,
				callbacks.Data("manage_agent", "id", strconv.FormatInt(child.Agent.ID, 10)),
			),
		))
	}
	return rows
}

func writeNode(sb *strings.Builder, node *agents.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s• %s (%s) — کد %d\n",
		indent, node.Agent.PersianBrandName, node.AdminName, node.Agent.AgentCode)
	for _, child := range node.SubAgents {
		writeNode(sb, child, depth+1)
	}
}
