package buy

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/pricing"
	"digiseller/internal/stories/subs"
	"digiseller/internal/stories/vpns"
)

type MockBotApi struct {
	SentMessages []tgbotapi.Chattable
}

func (m *MockBotApi) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.SentMessages = append(m.SentMessages, c)
	return tgbotapi.Message{MessageID: len(m.SentMessages)}, nil
}

func (m *MockBotApi) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type MockVpnService struct {
	VPNs      []*vpns.VPN
	Templates []*vpns.Template
}

func (m *MockVpnService) ListActive(ctx context.Context) ([]*vpns.VPN, error) {
	return m.VPNs, nil
}

func (m *MockVpnService) GetByID(ctx context.Context, id int64) (*vpns.VPN, error) {
	for _, v := range m.VPNs {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (m *MockVpnService) ActiveTemplates(ctx context.Context, vpnID int64) ([]*vpns.Template, error) {
	return m.Templates, nil
}

func (m *MockVpnService) ValidateGb(vpn *vpns.VPN, gb int64) error {
	if gb < vpn.GbMin || gb > vpn.GbMax {
		return apperr.Validation("حجم خارج از محدوده است")
	}
	return nil
}

func (m *MockVpnService) ValidateDays(vpn *vpns.VPN, days int64) error {
	if days < vpn.DayMin || days > vpn.DayMax {
		return apperr.Validation("مدت خارج از محدوده است")
	}
	return nil
}

type MockPurchaseService struct {
	FactorResult *pricing.Factor
	FactorErr    error
	BuyReceipt   *subs.Receipt
	BuyErr       error

	FactorCalls []subs.BuyRequest
	BuyCalls    []subs.BuyRequest
}

func (m *MockPurchaseService) Factor(ctx context.Context, req subs.BuyRequest) (*pricing.Factor, int64, int64, error) {
	m.FactorCalls = append(m.FactorCalls, req)
	if m.FactorErr != nil {
		return nil, 0, 0, m.FactorErr
	}
	return m.FactorResult, req.Gb, req.Days, nil
}

func (m *MockPurchaseService) Buy(ctx context.Context, req subs.BuyRequest) (*subs.Receipt, error) {
	m.BuyCalls = append(m.BuyCalls, req)
	if m.BuyErr != nil {
		return nil, m.BuyErr
	}
	return m.BuyReceipt, nil
}

func (m *MockPurchaseService) AppendTraffic(ctx context.Context, userID, subID, gb int64, idempotencyKey string) (int64, error) {
	return 0, nil
}

func (m *MockPurchaseService) AppendDays(ctx context.Context, userID, subID, days int64, idempotencyKey string) (int64, error) {
	return 0, nil
}

func (m *MockPurchaseService) CreateTest(ctx context.Context, userID, vpnID int64) (*subs.Subscription, error) {
	return &subs.Subscription{SubscriptionURL: "https://panel.example/sub/test"}, nil
}

func (m *MockPurchaseService) Get(ctx context.Context, subID int64) (*subs.Subscription, error) {
	return &subs.Subscription{ID: subID, VpnID: 1}, nil
}
