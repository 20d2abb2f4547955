package buy

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/pricing"
	"digiseller/internal/stories/subs"
	"digiseller/internal/stories/vpns"
	"digiseller/internal/telegram/flows"
	"digiseller/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	stateManager interface {
		SetState(chatID int64, state states.State, data any)
		GetBuyData(chatID int64) (*flows.BuyFlowData, error)
		Clear(chatID int64)
	}

	vpnService interface {
		ListActive(ctx context.Context) ([]*vpns.VPN, error)
		GetByID(ctx context.Context, id int64) (*vpns.VPN, error)
		ActiveTemplates(ctx context.Context, vpnID int64) ([]*vpns.Template, error)
		ValidateGb(vpn *vpns.VPN, gb int64) error
		ValidateDays(vpn *vpns.VPN, days int64) error
	}

	purchaseService interface {
		Factor(ctx context.Context, req subs.BuyRequest) (*pricing.Factor, int64, int64, error)
		Buy(ctx context.Context, req subs.BuyRequest) (*subs.Receipt, error)
		AppendTraffic(ctx context.Context, userID, subID, gb int64, idempotencyKey string) (int64, error)
		AppendDays(ctx context.Context, userID, subID, days int64, idempotencyKey string) (int64, error)
		CreateTest(ctx context.Context, userID, vpnID int64) (*subs.Subscription, error)
		Get(ctx context.Context, subID int64) (*subs.Subscription, error)
	}
)
