package environment

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"digiseller/internal/config"
	"digiseller/internal/infra/sqlite3"
	"digiseller/internal/localization"
	"digiseller/internal/marzban"
	"digiseller/internal/storage"
	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/pricing"
	"digiseller/internal/stories/subs"
	"digiseller/internal/stories/users"
	"digiseller/internal/stories/vpns"
	"digiseller/internal/stories/wallet"
	"digiseller/internal/telegram"
	"digiseller/internal/telegram/cmds"
	"digiseller/internal/telegram/flows/adjust"
	"digiseller/internal/telegram/flows/agentrequest"
	"digiseller/internal/telegram/flows/buy"
	"digiseller/internal/telegram/flows/card"
	"digiseller/internal/telegram/flows/limits"
	"digiseller/internal/telegram/flows/percent"
	"digiseller/internal/telegram/flows/ticket"
	"digiseller/internal/telegram/flows/topup"
	"digiseller/internal/telegram/flows/usersearch"
	"digiseller/internal/telegram/states"
	"digiseller/internal/worker"
)

type Services struct {
	TelegramRouter *telegram.Router
	WorkerService  *worker.Service
}

func newServices(ctx context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	store := storage.New(clients.DB, sqlite3.WithTx(clients.DB, nil))
	if err := store.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "run migrations")
	}

	userService := users.NewService(store)
	notifyService := notify.NewService(store)
	agentService := agents.NewService(store, store, notifyService)
	vpnService := vpns.NewService(store)
	pricingService := pricing.NewService(agentService)
	walletService := wallet.NewService(store, store, store, notifyService)
	provisioner := marzban.NewService(clients.Marzban)
	subService := subs.NewService(
		store,
		provisioner,
		pricingService,
		walletService,
		agentService,
		userService,
		vpnService,
	)

	localizer, err := localization.NewService()
	if err != nil {
		return nil, errors.Wrap(err, "load translations")
	}

	sm := states.NewManager()
	bot := clients.TelegramBot

	buyFlow := buy.NewHandler(bot, sm, vpnService, subService, logger)
	topupFlow := topup.NewHandler(bot, sm, agentService, userService, walletService, notifyService, logger)
	agentRequestFlow := agentrequest.NewHandler(bot, sm, agentService, logger)
	percentFlow := percent.NewHandler(bot, sm, agentService, logger)
	limitsFlow := limits.NewHandler(bot, sm, agentService, logger)
	adjustFlow := adjust.NewHandler(bot, sm, walletService, logger)
	userSearchFlow := usersearch.NewHandler(bot, sm, userService, agentService, notifyService, logger)
	ticketFlow := ticket.NewHandler(bot, sm, userService, agentService, notifyService, logger)
	cardFlow := card.NewHandler(bot, sm, userService, agentService, logger)

	botName := cfg.Telegram.BotName
	if botName == "" {
		botName = bot.BotName()
	}

	router := telegram.NewRouter(telegram.Deps{
		Bot:          bot,
		StateManager: sm,
		Users:        userService,
		Agents:       agentService,
		Logger:       logger,

		BuyFlow:          buyFlow,
		TopupFlow:        topupFlow,
		AgentRequestFlow: agentRequestFlow,
		PercentFlow:      percentFlow,
		LimitsFlow:       limitsFlow,
		AdjustFlow:       adjustFlow,
		UserSearchFlow:   userSearchFlow,
		TicketFlow:       ticketFlow,
		CardFlow:         cardFlow,

		MainMenu:           cmds.NewMainMenuCommand(bot, userService),
		AgentPanel:         cmds.NewAgentPanelCommand(bot, userService),
		Wallet:             cmds.NewWalletCommand(bot, userService, walletService),
		MyServices:         cmds.NewMyServicesCommand(bot, userService, subService),
		AgentTree:          cmds.NewAgentTreeCommand(bot, userService, agentService),
		AgentInfo:          cmds.NewAgentInfoCommand(bot, userService, agentService),
		AgentRequests:      cmds.NewAgentRequestsCommand(bot, userService, agentService),
		ManageAgent:        cmds.NewManageAgentCommand(bot, userService, agentService),
		InviteLink:         cmds.NewInviteLinkCommand(bot, userService, agentService, botName),
		Revoke:             cmds.NewRevokeCommand(bot, userService, subService),
		DeleteService:      cmds.NewDeleteServiceCommand(bot, userService, subService),
		ToggleService:      cmds.NewToggleServiceCommand(bot, userService, subService),
		BlockUser:          cmds.NewBlockUserCommand(bot, userService),
		DecideTransaction:  cmds.NewDecideTransactionCommand(bot, userService, agentService, walletService),
		DecideAgentRequest: cmds.NewDecideAgentRequestCommand(bot, userService, agentService),
	})

	workerService := worker.NewService(
		agentService,
		userService,
		subService,
		notifyService,
		bot,
		localizer,
		logger.WithGroup("worker"),
		cfg.Worker,
	)

	return &Services{
		TelegramRouter: router,
		WorkerService:  workerService,
	}, nil
}
