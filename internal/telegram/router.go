package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/users"
	"digiseller/internal/telegram/callbacks"
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
	"digiseller/internal/telegram/messages"
	"digiseller/internal/telegram/states"
)

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type stateManager interface {
	GetState(chatID int64) states.State
	Clear(chatID int64)
}

type userService interface {
	GetOrCreateByChatID(ctx context.Context, chatID, agentID int64, username, firstName, lastName string) (*users.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

type agentService interface {
	GetByCode(ctx context.Context, code int64) (*agents.Agent, error)
	GetByAdminUserID(ctx context.Context, userID int64) (*agents.Agent, error)
}

// Deps carries everything the router dispatches to.
type Deps struct {
	Bot          botApi
	StateManager stateManager
	Users        userService
	Agents       agentService
	Logger       *slog.Logger

	BuyFlow          *buy.Handler
	TopupFlow        *topup.Handler
	AgentRequestFlow *agentrequest.Handler
	PercentFlow      *percent.Handler
	LimitsFlow       *limits.Handler
	AdjustFlow       *adjust.Handler
	UserSearchFlow   *usersearch.Handler
	TicketFlow       *ticket.Handler
	CardFlow         *card.Handler

	MainMenu           *cmds.MainMenuCommand
	AgentPanel         *cmds.AgentPanelCommand
	Wallet             *cmds.WalletCommand
	MyServices         *cmds.MyServicesCommand
	AgentTree          *cmds.AgentTreeCommand
	AgentInfo          *cmds.AgentInfoCommand
	AgentRequests      *cmds.AgentRequestsCommand
	ManageAgent        *cmds.ManageAgentCommand
	InviteLink         *cmds.InviteLinkCommand
	Revoke             *cmds.RevokeCommand
	DeleteService      *cmds.DeleteServiceCommand
	ToggleService      *cmds.ToggleServiceCommand
	BlockUser          *cmds.BlockUserCommand
	DecideTransaction  *cmds.DecideTransactionCommand
	DecideAgentRequest *cmds.DecideAgentRequestCommand
}

// callbackHandler processes one inline-button command. agentOnly entries are
// rejected with AccessDenied for plain users before the handler runs.
type callbackHandler struct {
	agentOnly bool
	fn        func(ctx context.Context, user *users.User, chatID int64, cb callbacks.Callback) error
}

type Router struct {
	deps      Deps
	callbacks map[string]callbackHandler
}

func NewRouter(deps Deps) *Router {
	r := &Router{
		deps:      deps,
		callbacks: make(map[string]callbackHandler),
	}
	r.registerCallbacks()
	return r
}

// register panics on a duplicate name: two handlers claiming one command is a
// wiring bug that must fail at startup, not silently shadow at runtime.
func (r *Router) register(name string, agentOnly bool, fn func(ctx context.Context, user *users.User, chatID int64, cb callbacks.Callback) error) {
	if _, exists := r.callbacks[name]; exists {
		panic("duplicate callback handler: " + name)
	}
	r.callbacks[name] = callbackHandler{agentOnly: agentOnly, fn: fn}
}

func (r *Router) Route(ctx context.Context, update *tgbotapi.Update) (err error) {
	chatID := extractChatID(update)
	if chatID == 0 {
		return nil
	}

	// The transport always acks updates, so a panicking handler must not take
	// the process down with it.
	defer func() {
		if rec := recover(); rec != nil {
			r.deps.Logger.Error("handler panic",
				slog.Int64("chat_id", chatID),
				slog.Any("panic", rec))
			err = r.sendError(chatID)
		}
	}()

	user, err := r.resolveUser(ctx, update, chatID)
	if err != nil {
		_ = r.sendError(chatID)
		return err
	}
	if user.IsBlocked {
		_, err = r.deps.Bot.Send(tgbotapi.NewMessage(chatID, messages.BlockedAccount))
		return err
	}

	// Commands cancel whatever flow is in progress.
	if update.Message != nil && update.Message.IsCommand() {
		r.deps.StateManager.Clear(chatID)
		// /start (with or without a deep link payload) and anything unknown
		// both land on the main menu.
		return r.deps.MainMenu.Execute(ctx, chatID)
	}

	if update.CallbackQuery != nil {
		return r.handleCallback(ctx, update, user, chatID)
	}

	// Main menu buttons also cancel the active flow.
	if update.Message != nil {
		if handled, err := r.handleMenuText(ctx, user, chatID, update.Message.Text); handled {
			return err
		}
	}

	state := r.deps.StateManager.GetState(chatID)
	switch {
	case strings.HasPrefix(string(state), "ubs_"):
		return r.deps.BuyFlow.Handle(ctx, user, update, state)
	case strings.HasPrefix(string(state), "top_"):
		return r.deps.TopupFlow.Handle(ctx, user, update, state)
	case strings.HasPrefix(string(state), "agr_"):
		return r.deps.AgentRequestFlow.Handle(ctx, user, update, state)
	case strings.HasPrefix(string(state), "pct_"):
		return r.deps.PercentFlow.Handle(ctx, user, update, state)
	case strings.HasPrefix(string(state), "lim_"):
		return r.deps.LimitsFlow.Handle(ctx, update, state)
	case strings.HasPrefix(string(state), "adj_"):
		return r.deps.AdjustFlow.Handle(ctx, update, state)
	case strings.HasPrefix(string(state), "usr_"):
		return r.deps.UserSearchFlow.Handle(ctx, update, state)
	case strings.HasPrefix(string(state), "tkt_"):
		return r.deps.TicketFlow.Handle(ctx, update, state)
	case strings.HasPrefix(string(state), "crd_"):
		return r.deps.CardFlow.Handle(ctx, update, state)
	}

	return r.deps.MainMenu.Execute(ctx, chatID)
}

// resolveUser loads or creates the sender. A /start deep link payload carries
// the agent code that attributes the new user to a seller; without one the
// user falls under the platform root.
func (r *Router) resolveUser(ctx context.Context, update *tgbotapi.Update, chatID int64) (*users.User, error) {
	from := extractFrom(update)
	if from == nil {
		return nil, apperr.NotFound("فرستنده پیام مشخص نیست")
	}

	agentID := agents.RootAgentID
	if update.Message != nil && update.Message.IsCommand() && update.Message.Command() == "start" {
		if code, err := strconv.ParseInt(strings.TrimSpace(update.Message.CommandArguments()), 10, 64); err == nil {
			if agent, err := r.deps.Agents.GetByCode(ctx, code); err == nil && agent != nil {
				agentID = agent.ID
			}
		}
	}

	return r.deps.Users.GetOrCreateByChatID(ctx, chatID, agentID, from.UserName, from.FirstName, from.LastName)
}

func (r *Router) handleMenuText(ctx context.Context, user *users.User, chatID int64, text string) (bool, error) {
	clear := func() { r.deps.StateManager.Clear(chatID) }

	switch text {
	case messages.ButtonBuyService:
		clear()
		return true, r.deps.BuyFlow.Start(ctx, chatID)
	case messages.ButtonMyServices:
		clear()
		return true, r.deps.MyServices.Execute(ctx, chatID)
	case messages.ButtonWallet:
		clear()
		return true, r.deps.Wallet.Execute(ctx, chatID)
	case messages.ButtonTopup:
		clear()
		return true, r.report(chatID, r.deps.TopupFlow.Start(ctx, user, chatID))
	case messages.ButtonSupport:
		clear()
		return true, r.deps.TicketFlow.Start(chatID)
	case messages.ButtonAgentRequest:
		clear()
		return true, r.deps.AgentRequestFlow.Start(chatID)
	case messages.ButtonAgentPanel:
		clear()
		return true, r.deps.AgentPanel.Execute(ctx, chatID)
	}
	return false, nil
}

// registerCallbacks builds the command table once at startup. Dispatch is
// state-independent: a button press runs its handler no matter which flow the
// chat is in.
func (r *Router) registerCallbacks() {
	const userLevel, agentLevel = false, true

	r.register("cancel", userLevel, r.cbMainMenu)
	r.register("main_menu", userLevel, r.cbMainMenu)

	// Purchase flow.
	r.register("buy_vpn", userLevel, func(ctx context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.BuyFlow.SelectVpn(ctx, chatID, cb.Int64Arg("id")))
	})
	r.register("buy_tpl", userLevel, func(ctx context.Context, user *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.BuyFlow.SelectTemplate(ctx, user, chatID, cb.Int64Arg("vpn"), cb.Int64Arg("id")))
	})
	r.register("buy_custom", userLevel, func(ctx context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.BuyFlow.StartCustom(ctx, chatID, cb.Int64Arg("vpn")))
	})
	r.register("buy_test", userLevel, func(ctx context.Context, user *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.BuyFlow.Test(ctx, user, chatID, cb.Int64Arg("vpn")))
	})
	r.register("buy_confirm", userLevel, func(ctx context.Context, user *users.User, chatID int64, _ callbacks.Callback) error {
		return r.report(chatID, r.deps.BuyFlow.Confirm(ctx, user, chatID))
	})
	r.register("buy_renew", userLevel, func(ctx context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.BuyFlow.StartRenew(ctx, chatID, cb.Int64Arg("id")))
	})
	r.register("append_gb", userLevel, func(_ context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.BuyFlow.StartAppendGb(chatID, cb.Int64Arg("id")))
	})
	r.register("append_days", userLevel, func(_ context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.BuyFlow.StartAppendDays(chatID, cb.Int64Arg("id")))
	})
	r.register("revoke", userLevel, func(ctx context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.Revoke.Execute(ctx, chatID, cb.Int64Arg("id")))
	})
	r.register("svc_delete", userLevel, func(ctx context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.DeleteService.Execute(ctx, chatID, cb.Int64Arg("id")))
	})
	r.register("svc_toggle", userLevel, func(ctx context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.ToggleService.Execute(ctx, chatID, cb.Int64Arg("id")))
	})

	// Wallet.
	r.register("topup", userLevel, func(ctx context.Context, user *users.User, chatID int64, _ callbacks.Callback) error {
		return r.report(chatID, r.deps.TopupFlow.Start(ctx, user, chatID))
	})
	// Decision callbacks carry forgeable ids; the commands verify the caller
	// administers the owning agent on top of the agent gate here.
	r.register("accept_transaction", agentLevel, r.cbDecideTransaction(true))
	r.register("reject_transaction", agentLevel, r.cbDecideTransaction(false))

	// Agent requests.
	r.register("accept_agent_request", agentLevel, r.cbDecideAgentRequest(true))
	r.register("reject_agent_request", agentLevel, r.cbDecideAgentRequest(false))

	// Agency panel.
	r.register("agent_info", agentLevel, func(ctx context.Context, _ *users.User, chatID int64, _ callbacks.Callback) error {
		return r.report(chatID, r.deps.AgentInfo.Execute(ctx, chatID))
	})
	r.register("agent_tree", agentLevel, func(ctx context.Context, _ *users.User, chatID int64, _ callbacks.Callback) error {
		return r.report(chatID, r.deps.AgentTree.Execute(ctx, chatID))
	})
	r.register("agent_requests", agentLevel, func(ctx context.Context, _ *users.User, chatID int64, _ callbacks.Callback) error {
		return r.report(chatID, r.deps.AgentRequests.Execute(ctx, chatID))
	})
	r.register("invite_link", agentLevel, func(ctx context.Context, _ *users.User, chatID int64, _ callbacks.Callback) error {
		return r.report(chatID, r.deps.InviteLink.Execute(ctx, chatID))
	})
	r.register("user_search", agentLevel, func(_ context.Context, _ *users.User, chatID int64, _ callbacks.Callback) error {
		return r.deps.UserSearchFlow.Start(chatID)
	})
	r.register("manage_agent", agentLevel, func(ctx context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.ManageAgent.Execute(ctx, chatID, cb.Int64Arg("id")))
	})

	r.register("pct_user", agentLevel, r.cbPercent(states.PercentWaitUser))
	r.register("pct_agent", agentLevel, r.cbPercent(states.PercentWaitAgent))
	r.register("pct_special", agentLevel, r.cbPercent(states.PercentWaitSpecial))

	r.register("lim_user_min", agentLevel, r.cbLimit(states.LimitWaitUserMin))
	r.register("lim_user_max", agentLevel, r.cbLimit(states.LimitWaitUserMax))
	r.register("lim_agent_min", agentLevel, r.cbLimit(states.LimitWaitAgentMin))
	r.register("lim_agent_max", agentLevel, r.cbLimit(states.LimitWaitAgentMax))

	r.register("adj_inc", agentLevel, r.cbAdjust(true))
	r.register("adj_dec", agentLevel, r.cbAdjust(false))
	r.register("usr_message", agentLevel, r.cbUserMessage)
	r.register("usr_block", agentLevel, r.cbBlockUser)
	r.register("card_edit", agentLevel, func(ctx context.Context, _ *users.User, chatID int64, _ callbacks.Callback) error {
		return r.report(chatID, r.deps.CardFlow.Start(ctx, chatID))
	})
}

func (r *Router) handleCallback(ctx context.Context, update *tgbotapi.Update, user *users.User, chatID int64) error {
	cb, err := callbacks.Parse(update.CallbackQuery.Data)
	if err != nil {
		r.deps.Logger.Warn("malformed callback data",
			slog.String("data", update.CallbackQuery.Data))
		return nil
	}

	answer := messages.Cancel
	if cb.Name != "cancel" && cb.Name != "main_menu" {
		answer = ""
	}
	_, _ = r.deps.Bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, answer))

	handler, known := r.callbacks[cb.Name]
	if !known {
		r.deps.Logger.Warn("unknown callback", slog.String("name", cb.Name))
		return nil
	}
	if handler.agentOnly && !user.IsAgent {
		_, err := r.deps.Bot.Send(tgbotapi.NewMessage(chatID, messages.AccessDenied))
		return err
	}
	return handler.fn(ctx, user, chatID, cb)
}

func (r *Router) cbMainMenu(ctx context.Context, _ *users.User, chatID int64, _ callbacks.Callback) error {
	r.deps.StateManager.Clear(chatID)
	return r.deps.MainMenu.Execute(ctx, chatID)
}

func (r *Router) cbDecideTransaction(accept bool) func(context.Context, *users.User, int64, callbacks.Callback) error {
	return func(ctx context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.DecideTransaction.Execute(ctx, chatID, cb.Int64Arg("id"), accept))
	}
}

func (r *Router) cbDecideAgentRequest(accept bool) func(context.Context, *users.User, int64, callbacks.Callback) error {
	return func(ctx context.Context, _ *users.User, chatID int64, cb callbacks.Callback) error {
		return r.report(chatID, r.deps.DecideAgentRequest.Execute(ctx, chatID, cb.Int64Arg("id"), accept))
	}
}

// cbPercent and cbLimit re-check ownership on every press: callback payloads
// come back from the client and a forged agent id must not grant access.
func (r *Router) cbPercent(state states.State) func(context.Context, *users.User, int64, callbacks.Callback) error {
	return func(ctx context.Context, user *users.User, chatID int64, cb callbacks.Callback) error {
		target := cb.Int64Arg("agent")
		if err := r.ensureManages(ctx, user.ID, target); err != nil {
			return r.report(chatID, err)
		}
		return r.deps.PercentFlow.Start(chatID, target, state)
	}
}

func (r *Router) cbLimit(state states.State) func(context.Context, *users.User, int64, callbacks.Callback) error {
	return func(ctx context.Context, user *users.User, chatID int64, cb callbacks.Callback) error {
		target := cb.Int64Arg("agent")
		if err := r.ensureManages(ctx, user.ID, target); err != nil {
			return r.report(chatID, err)
		}
		return r.deps.LimitsFlow.Start(chatID, target, state)
	}
}

func (r *Router) cbAdjust(increase bool) func(context.Context, *users.User, int64, callbacks.Callback) error {
	return func(ctx context.Context, user *users.User, chatID int64, cb callbacks.Callback) error {
		target := cb.Int64Arg("user")
		if err := r.ensureOwnsUser(ctx, user.ID, target); err != nil {
			return r.report(chatID, err)
		}
		return r.deps.AdjustFlow.Start(chatID, target, increase)
	}
}

func (r *Router) cbBlockUser(ctx context.Context, user *users.User, chatID int64, cb callbacks.Callback) error {
	target := cb.Int64Arg("user")
	if err := r.ensureOwnsUser(ctx, user.ID, target); err != nil {
		return r.report(chatID, err)
	}
	return r.report(chatID, r.deps.BlockUser.Execute(ctx, chatID, target, cb.Int64Arg("to") == 1))
}

func (r *Router) cbUserMessage(ctx context.Context, user *users.User, chatID int64, cb callbacks.Callback) error {
	targetChat := cb.Int64Arg("chat")
	targetUser, err := r.deps.Users.GetByChatID(ctx, targetChat)
	if err != nil {
		return r.report(chatID, err)
	}
	if targetUser == nil {
		return r.report(chatID, apperr.NotFound(messages.NothingFound))
	}
	if err := r.ensureOwnsUser(ctx, user.ID, targetUser.ID); err != nil {
		return r.report(chatID, err)
	}
	return r.deps.UserSearchFlow.StartMessage(chatID, targetChat)
}

// ensureManages verifies that targetAgentID sits strictly below the agent
// administered by adminUserID.
func (r *Router) ensureManages(ctx context.Context, adminUserID, targetAgentID int64) error {
	ok, err := r.deps.ManageAgent.Manages(ctx, adminUserID, targetAgentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound(messages.NothingFound)
	}
	return nil
}

// ensureOwnsUser verifies that the target user belongs directly to the agent
// administered by adminUserID.
func (r *Router) ensureOwnsUser(ctx context.Context, adminUserID, targetUserID int64) error {
	agent, err := r.deps.Agents.GetByAdminUserID(ctx, adminUserID)
	if err != nil {
		return err
	}
	if agent == nil {
		return apperr.NotFound(messages.NothingFound)
	}
	target, err := r.deps.Users.GetByID(ctx, targetUserID)
	if err != nil {
		return err
	}
	if target == nil || target.AgentID != agent.ID {
		return apperr.NotFound(messages.NothingFound)
	}
	return nil
}

// report sends the user-facing text of a classified error and swallows it;
// anything unclassified propagates to the update loop for logging.
func (r *Router) report(chatID int64, err error) error {
	if err == nil {
		return nil
	}
	if msg := apperr.Message(err); msg != "" {
		_, sendErr := r.deps.Bot.Send(tgbotapi.NewMessage(chatID, msg))
		return sendErr
	}
	_ = r.sendError(chatID)
	return err
}

func (r *Router) sendError(chatID int64) error {
	_, err := r.deps.Bot.Send(tgbotapi.NewMessage(chatID, messages.Error))
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

func extractFrom(update *tgbotapi.Update) *tgbotapi.User {
	if update.Message != nil {
		return update.Message.From
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From
	}
	return nil
}
