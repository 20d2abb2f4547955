package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"digiseller/internal/config"
	"digiseller/internal/stories/notify"
)

type Service struct {
	agents    agentService
	users     userService
	subs      subService
	outbox    outbox
	bot       telegramBot
	localizer localizer
	logger    *slog.Logger
	cfg       config.WorkerConfig
	cron      *cron.Cron
	now       func() time.Time
}

func NewService(
	agents agentService,
	users userService,
	subs subService,
	outbox outbox,
	bot telegramBot,
	localizer localizer,
	logger *slog.Logger,
	cfg config.WorkerConfig,
) *Service {
	return &Service{
		agents:    agents,
		users:     users,
		subs:      subs,
		outbox:    outbox,
		bot:       bot,
		localizer: localizer,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(),
		now:       time.Now,
	}
}

func (s *Service) Start() error {
	s.logger.Info("starting worker service")

	_, err := s.cron.AddFunc(s.cfg.NegativeSweepSpec, func() {
		ctx := context.Background()
		if err := s.RunNegativeSweep(ctx); err != nil {
			s.logger.Error("negative balance sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("add negative sweep job: %w", err)
	}

	_, err = s.cron.AddFunc(s.cfg.OutboxSpec, func() {
		ctx := context.Background()
		if err := s.FlushOutbox(ctx); err != nil {
			s.logger.Error("outbox flush failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("add outbox job: %w", err)
	}

	s.cron.Start()
	return nil
}

func (s *Service) Stop() {
	s.logger.Info("stopping worker service")
	<-s.cron.Stop().Done()
}

// RunNegativeSweep walks agents that owe past their negative ceiling. The
// first pass arms a grace countdown and warns the admin; once the deadline
// passes, the agent's users are blocked and their services shut down. Agents
// that settled up get their countdown cleared.
func (s *Service) RunNegativeSweep(ctx context.Context) error {
	overs, err := s.agents.AgentsReachedNegativeLimit(ctx)
	if err != nil {
		return fmt.Errorf("list agents over ceiling: %w", err)
	}

	overIDs := make(map[int64]bool, len(overs))
	for _, agent := range overs {
		overIDs[agent.ID] = true

		if agent.DisabledAccountAt == nil {
			deadline, err := s.agents.StartDisableCountdown(ctx, agent.ID)
			if err != nil {
				return fmt.Errorf("arm countdown for agent %d: %w", agent.ID, err)
			}
			s.logger.Info("disable countdown armed",
				slog.Int64("agent_id", agent.ID),
				slog.Time("deadline", deadline))

			if err := s.notifyAdmin(ctx, agent.AdminUserID, "sweep.negative_warning", map[string]interface{}{
				"deadline": deadline.Format("2006-01-02 15:04"),
			}); err != nil {
				return err
			}
			continue
		}

		if s.now().Before(*agent.DisabledAccountAt) {
			continue
		}

		count, err := s.agents.DisableAllUserAccounts(ctx, agent.ID)
		if err != nil {
			return fmt.Errorf("disable users of agent %d: %w", agent.ID, err)
		}
		if count == 0 {
			// Already swept on a previous run.
			continue
		}

		enrolled, err := s.users.ListByAgent(ctx, agent.ID)
		if err != nil {
			return fmt.Errorf("list users of agent %d: %w", agent.ID, err)
		}
		for _, u := range enrolled {
			if err := s.subs.DisableAllForUser(ctx, u.ID); err != nil {
				return fmt.Errorf("disable services of user %d: %w", u.ID, err)
			}
		}

		s.logger.Info("agent users disabled",
			slog.Int64("agent_id", agent.ID),
			slog.Int("count", count))

		if err := s.notifyAdmin(ctx, agent.AdminUserID, "sweep.accounts_disabled", map[string]interface{}{
			"count": count,
		}); err != nil {
			return err
		}
	}

	armed, err := s.agents.AgentsWithArmedCountdown(ctx)
	if err != nil {
		return fmt.Errorf("list armed countdowns: %w", err)
	}
	for _, agent := range armed {
		if overIDs[agent.ID] {
			continue
		}
		if err := s.agents.ClearDisableCountdown(ctx, agent.ID); err != nil {
			return fmt.Errorf("clear countdown for agent %d: %w", agent.ID, err)
		}
		s.logger.Info("disable countdown cleared", slog.Int64("agent_id", agent.ID))

		if err := s.notifyAdmin(ctx, agent.AdminUserID, "sweep.countdown_cleared", nil); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) notifyAdmin(ctx context.Context, adminUserID int64, key string, params map[string]interface{}) error {
	admin, err := s.users.GetByID(ctx, adminUserID)
	if err != nil {
		return fmt.Errorf("get admin user %d: %w", adminUserID, err)
	}
	if admin == nil {
		return nil
	}
	return s.outbox.Enqueue(ctx, notify.Notification{
		ChatID:  admin.ChatID,
		Message: s.localizer.Get(key, params),
	})
}

// FlushOutbox delivers pending notifications oldest first. A delivery
// failure marks the row failed and moves on rather than blocking the batch.
func (s *Service) FlushOutbox(ctx context.Context) error {
	pending, err := s.outbox.Pending(ctx, s.cfg.OutboxBatch)
	if err != nil {
		return fmt.Errorf("list pending notifications: %w", err)
	}

	for _, n := range pending {
		if err := s.deliver(n); err != nil {
			s.logger.Error("notification delivery failed",
				slog.Int64("notification_id", n.ID),
				slog.Any("error", err))
			if err := s.outbox.MarkFailed(ctx, n.ID); err != nil {
				return fmt.Errorf("mark notification %d failed: %w", n.ID, err)
			}
			continue
		}
		if err := s.outbox.MarkSent(ctx, n.ID); err != nil {
			return fmt.Errorf("mark notification %d sent: %w", n.ID, err)
		}
	}
	return nil
}

func (s *Service) deliver(n *notify.Notification) error {
	markup := buildMarkup(n.Buttons)

	if n.FileID != "" {
		photo := tgbotapi.NewPhoto(n.ChatID, tgbotapi.FileID(n.FileID))
		photo.Caption = n.Message
		if markup != nil {
			photo.ReplyMarkup = *markup
		}
		_, err := s.bot.Send(photo)
		return err
	}

	msg := tgbotapi.NewMessage(n.ChatID, n.Message)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := s.bot.Send(msg)
	return err
}

func buildMarkup(rows [][]notify.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}

	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.CallbackData))
		}
		keyboard = append(keyboard, buttons)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	return &markup
}
