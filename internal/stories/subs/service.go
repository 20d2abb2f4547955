package subs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"digiseller/internal/marzban"
	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/pricing"
)

type Service struct {
	storage     Storage
	provisioner Provisioner
	quoter      Quoter
	wallet      Wallet
	agents      AgentService
	userService UserService
	vpnService  VpnService
	now         func() time.Time
}

func NewService(
	storage Storage,
	provisioner Provisioner,
	quoter Quoter,
	wallet Wallet,
	agentService AgentService,
	userService UserService,
	vpnService VpnService,
) *Service {
	return &Service{
		storage:     storage,
		provisioner: provisioner,
		quoter:      quoter,
		wallet:      wallet,
		agents:      agentService,
		userService: userService,
		vpnService:  vpnService,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Factor quotes the buyer-facing price for a purchase without committing
// anything; the bot shows it on the confirmation step.
func (s *Service) Factor(ctx context.Context, req BuyRequest) (*pricing.Factor, int64, int64, error) {
	user, err := s.userService.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, 0, 0, err
	}

	vpn, err := s.vpnService.GetByID(ctx, req.VpnID)
	if err != nil {
		return nil, 0, 0, err
	}

	gb, days := req.Gb, req.Days
	var base int64
	if req.TemplateID != nil {
		tpl, err := s.vpnService.GetTemplate(ctx, *req.TemplateID)
		if err != nil {
			return nil, 0, 0, err
		}
		gb, days, base = tpl.Gb, tpl.Days, tpl.Price
	} else {
		if err := s.vpnService.ValidateGb(vpn, gb); err != nil {
			return nil, 0, 0, err
		}
		if err := s.vpnService.ValidateDays(vpn, days); err != nil {
			return nil, 0, 0, err
		}
		base = vpn.BasePrice(gb, days)
	}

	factor, err := s.quoter.QuoteForAgent(ctx, user.AgentID, base, user.IsAgent)
	if err != nil {
		return nil, 0, 0, err
	}
	return factor, gb, days, nil
}

// Buy executes a confirmed purchase: bounds are re-validated, the price
// quoted, the panel account provisioned, and only after provisioning
// succeeds is the wallet debited and the commission posted. An adapter
// failure therefore never leaves a partial ledger mutation.
func (s *Service) Buy(ctx context.Context, req BuyRequest) (*Receipt, error) {
	user, err := s.userService.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, apperr.BusinessRule("حساب کاربری شما غیرفعال است")
	}

	factor, gb, days, err := s.Factor(ctx, req)
	if err != nil {
		return nil, err
	}

	minBalance, err := s.chargeFloor(ctx, user.AgentID, user.IsAgent)
	if err != nil {
		return nil, err
	}
	if user.Balance-factor.FinalPrice < minBalance {
		return nil, apperr.BusinessRule("موجودی کیف پول شما کافی نیست")
	}

	var sub *Subscription
	if req.RenewSubID != nil {
		sub, err = s.renew(ctx, *req.RenewSubID, gb, days)
	} else {
		sub, err = s.provision(ctx, req.UserID, req.VpnID, gb, days)
	}
	if err != nil {
		return nil, err
	}

	if err := s.settle(ctx, user.ID, sub.ID, factor, req.IdempotencyKey, minBalance); err != nil {
		return nil, err
	}

	return &Receipt{Subscription: sub, FinalPrice: factor.FinalPrice}, nil
}

func (s *Service) provision(ctx context.Context, userID, vpnID, gb, days int64) (*Subscription, error) {
	expiresAt := s.now().AddDate(0, 0, int(days))
	username := fmt.Sprintf("u%d_%s", userID, uuid.NewString()[:8])

	creds, err := s.provisioner.CreateUser(ctx, marzban.CreateUserRequest{
		Username:       username,
		TrafficLimitGB: gb,
		ExpiresAt:      expiresAt,
	})
	if err != nil {
		return nil, err
	}

	return s.storage.CreateSubscription(ctx, Subscription{
		UserID:          userID,
		VpnID:           vpnID,
		MarzbanUsername: creds.Username,
		SubscriptionURL: creds.SubscriptionURL,
		Status:          StatusActive,
		Gb:              gb,
		Days:            days,
		ExpiresAt:       expiresAt,
	})
}

func (s *Service) renew(ctx context.Context, subID, gb, days int64) (*Subscription, error) {
	sub, err := s.getOwned(ctx, subID)
	if err != nil {
		return nil, err
	}

	base := sub.ExpiresAt
	if now := s.now(); base.Before(now) {
		base = now
	}
	expiresAt := base.AddDate(0, 0, int(days))

	_, err = s.provisioner.Renew(ctx, marzban.ModifyUserRequest{
		Username:        sub.MarzbanUsername,
		AddTrafficGB:    gb,
		ExtendExpiresTo: &expiresAt,
	})
	if err != nil {
		return nil, err
	}

	return s.storage.UpdateSubscription(ctx, sub.ID, UpdateParams{
		Status:    lo.ToPtr(StatusActive),
		AddGb:     &gb,
		AddDays:   &days,
		ExpiresAt: &expiresAt,
	})
}

// settle debits the buyer and books the per-agent commission postings.
func (s *Service) settle(ctx context.Context, userID, subID int64, factor *pricing.Factor, idempotencyKey string, minBalance int64) error {
	if _, err := s.wallet.Charge(ctx, userID, factor.FinalPrice,
		"خرید سرویس", idempotencyKey, minBalance); err != nil {
		return err
	}

	details := lo.FilterMap(factor.Postings, func(p pricing.Posting, _ int) (agents.IncomeDetail, bool) {
		if p.Profit == 0 {
			return agents.IncomeDetail{}, false
		}
		return agents.IncomeDetail{
			AgentID:        p.AgentID,
			SubscriptionID: subID,
			Profit:         p.Profit,
			BasePrice:      factor.BasePrice,
		}, true
	})
	return s.agents.AddIncomeDetails(ctx, details)
}

// chargeFloor is the lowest balance a purchase may leave behind: zero for
// end-users, the configured negative ceiling for agents allowed to owe.
func (s *Service) chargeFloor(ctx context.Context, agentID int64, isAgent bool) (int64, error) {
	if !isAgent {
		return 0, nil
	}
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return 0, err
	}
	if agent.AllowNegative {
		return -agent.NegativeChargeCeiling, nil
	}
	return 0, nil
}

// AppendTraffic buys extra volume for an existing service at unit price.
func (s *Service) AppendTraffic(ctx context.Context, userID, subID, gb int64, idempotencyKey string) (int64, error) {
	user, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	sub, err := s.getOwned(ctx, subID)
	if err != nil {
		return 0, err
	}
	if sub.UserID != userID {
		return 0, apperr.NotFound("سرویسی با این شناسه یافت نشد")
	}

	vpn, err := s.vpnService.GetByID(ctx, sub.VpnID)
	if err != nil {
		return 0, err
	}
	if err := s.vpnService.ValidateGb(vpn, gb); err != nil {
		return 0, err
	}

	factor, err := s.quoter.QuoteForAgent(ctx, user.AgentID, gb*vpn.GbPrice, user.IsAgent)
	if err != nil {
		return 0, err
	}

	minBalance, err := s.chargeFloor(ctx, user.AgentID, user.IsAgent)
	if err != nil {
		return 0, err
	}
	if user.Balance-factor.FinalPrice < minBalance {
		return 0, apperr.BusinessRule("موجودی کیف پول شما کافی نیست")
	}

	if err := s.provisioner.AppendTraffic(ctx, sub.MarzbanUsername, gb); err != nil {
		return 0, err
	}

	if _, err := s.storage.UpdateSubscription(ctx, sub.ID, UpdateParams{AddGb: &gb}); err != nil {
		return 0, err
	}
	return factor.FinalPrice, s.settle(ctx, userID, sub.ID, factor, idempotencyKey, minBalance)
}

// AppendDays buys extra duration for an existing service at unit price.
func (s *Service) AppendDays(ctx context.Context, userID, subID, days int64, idempotencyKey string) (int64, error) {
	user, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	sub, err := s.getOwned(ctx, subID)
	if err != nil {
		return 0, err
	}
	if sub.UserID != userID {
		return 0, apperr.NotFound("سرویسی با این شناسه یافت نشد")
	}

	vpn, err := s.vpnService.GetByID(ctx, sub.VpnID)
	if err != nil {
		return 0, err
	}
	if err := s.vpnService.ValidateDays(vpn, days); err != nil {
		return 0, err
	}

	factor, err := s.quoter.QuoteForAgent(ctx, user.AgentID, days*vpn.DayPrice, user.IsAgent)
	if err != nil {
		return 0, err
	}

	minBalance, err := s.chargeFloor(ctx, user.AgentID, user.IsAgent)
	if err != nil {
		return 0, err
	}
	if user.Balance-factor.FinalPrice < minBalance {
		return 0, apperr.BusinessRule("موجودی کیف پول شما کافی نیست")
	}

	if err := s.provisioner.AppendDays(ctx, sub.MarzbanUsername, days); err != nil {
		return 0, err
	}

	expiresAt := sub.ExpiresAt.AddDate(0, 0, int(days))
	if _, err := s.storage.UpdateSubscription(ctx, sub.ID, UpdateParams{AddDays: &days, ExpiresAt: &expiresAt}); err != nil {
		return 0, err
	}
	return factor.FinalPrice, s.settle(ctx, userID, sub.ID, factor, idempotencyKey, minBalance)
}

// CreateTest provisions the free trial account of a VPN, once per user.
func (s *Service) CreateTest(ctx context.Context, userID, vpnID int64) (*Subscription, error) {
	vpn, err := s.vpnService.GetByID(ctx, vpnID)
	if err != nil {
		return nil, err
	}
	if !vpn.TestEnabled {
		return nil, apperr.BusinessRule("اکانت تست برای این سرویس فعال نیست")
	}

	existing, err := s.storage.ListSubscriptions(ctx, ListCriteria{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if lo.ContainsBy(existing, func(sub *Subscription) bool { return sub.IsTest && sub.VpnID == vpnID }) {
		return nil, apperr.BusinessRule("شما قبلا اکانت تست دریافت کرده‌اید")
	}

	expiresAt := s.now().AddDate(0, 0, int(vpn.TestDays))
	username := fmt.Sprintf("t%d_%s", userID, uuid.NewString()[:8])

	creds, err := s.provisioner.CreateUser(ctx, marzban.CreateUserRequest{
		Username:       username,
		TrafficLimitGB: vpn.TestGb,
		ExpiresAt:      expiresAt,
	})
	if err != nil {
		return nil, err
	}

	return s.storage.CreateSubscription(ctx, Subscription{
		UserID:          userID,
		VpnID:           vpnID,
		MarzbanUsername: creds.Username,
		SubscriptionURL: creds.SubscriptionURL,
		Status:          StatusActive,
		Gb:              vpn.TestGb,
		Days:            vpn.TestDays,
		IsTest:          true,
		ExpiresAt:       expiresAt,
	})
}

func (s *Service) List(ctx context.Context, userID int64) ([]*Subscription, error) {
	return s.storage.ListSubscriptions(ctx, ListCriteria{UserID: &userID})
}

func (s *Service) Get(ctx context.Context, subID int64) (*Subscription, error) {
	return s.getOwned(ctx, subID)
}

// ChangeStatus toggles a service on the panel and mirrors it locally.
func (s *Service) ChangeStatus(ctx context.Context, subID int64, status Status) (*Subscription, error) {
	sub, err := s.getOwned(ctx, subID)
	if err != nil {
		return nil, err
	}

	panelStatus := marzban.StatusActive
	if status == StatusDisabled {
		panelStatus = marzban.StatusDisabled
	}
	if err := s.provisioner.ChangeStatus(ctx, sub.MarzbanUsername, panelStatus); err != nil {
		return nil, err
	}

	return s.storage.UpdateSubscription(ctx, sub.ID, UpdateParams{Status: &status})
}

// Delete removes a service from the panel and tombstones the row.
func (s *Service) Delete(ctx context.Context, subID int64) error {
	sub, err := s.getOwned(ctx, subID)
	if err != nil {
		return err
	}

	if err := s.provisioner.Delete(ctx, sub.MarzbanUsername); err != nil {
		return err
	}

	_, err = s.storage.UpdateSubscription(ctx, sub.ID, UpdateParams{Status: lo.ToPtr(StatusDeleted)})
	return err
}

// Revoke rotates a service's subscription link.
func (s *Service) Revoke(ctx context.Context, subID int64) (string, error) {
	sub, err := s.getOwned(ctx, subID)
	if err != nil {
		return "", err
	}

	link, err := s.provisioner.Revoke(ctx, sub.MarzbanUsername)
	if err != nil {
		return "", err
	}

	if _, err := s.storage.UpdateSubscription(ctx, sub.ID, UpdateParams{SubscriptionURL: &link}); err != nil {
		return "", err
	}
	return link, nil
}

// DisableAllForUser shuts down every active service of a user (used by the
// negative-balance sweep).
func (s *Service) DisableAllForUser(ctx context.Context, userID int64) error {
	active, err := s.storage.ListSubscriptions(ctx, ListCriteria{
		UserID: &userID,
		Status: lo.ToPtr(StatusActive),
	})
	if err != nil {
		return err
	}

	for _, sub := range active {
		if err := s.provisioner.ChangeStatus(ctx, sub.MarzbanUsername, marzban.StatusDisabled); err != nil {
			return err
		}
		if _, err := s.storage.UpdateSubscription(ctx, sub.ID, UpdateParams{Status: lo.ToPtr(StatusDisabled)}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) getOwned(ctx context.Context, subID int64) (*Subscription, error) {
	sub, err := s.storage.GetSubscription(ctx, GetCriteria{ID: &subID})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("سرویسی با این شناسه یافت نشد")
	}
	return sub, nil
}
