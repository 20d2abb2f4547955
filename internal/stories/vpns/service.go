package vpns

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"digiseller/internal/stories/apperr"
)

type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

func (s *Service) ListActive(ctx context.Context) ([]*VPN, error) {
	return s.storage.ListVPNs(ctx, GetCriteria{IsActive: lo.ToPtr(true)})
}

func (s *Service) GetByID(ctx context.Context, id int64) (*VPN, error) {
	vpn, err := s.storage.GetVPN(ctx, GetCriteria{ID: &id})
	if err != nil {
		return nil, err
	}
	if vpn == nil {
		return nil, apperr.NotFound("سرویس مورد نظر یافت نشد")
	}
	return vpn, nil
}

func (s *Service) ActiveTemplates(ctx context.Context, vpnID int64) ([]*Template, error) {
	return s.storage.ListTemplates(ctx, TemplateCriteria{
		VpnID:    &vpnID,
		IsActive: lo.ToPtr(true),
	})
}

func (s *Service) GetTemplate(ctx context.Context, id int64) (*Template, error) {
	tpl, err := s.storage.GetTemplate(ctx, TemplateCriteria{ID: &id})
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, apperr.NotFound("بسته مورد نظر یافت نشد")
	}
	return tpl, nil
}

// ValidateGb checks a custom volume against the product bounds.
func (s *Service) ValidateGb(vpn *VPN, gb int64) error {
	if gb < vpn.GbMin || gb > vpn.GbMax {
		return apperr.Validation(fmt.Sprintf("حجم باید بین %d تا %d گیگابایت باشد", vpn.GbMin, vpn.GbMax))
	}
	return nil
}

// ValidateDays checks a custom duration against the product bounds.
func (s *Service) ValidateDays(vpn *VPN, days int64) error {
	if days < vpn.DayMin || days > vpn.DayMax {
		return apperr.Validation(fmt.Sprintf("مدت باید بین %d تا %d روز باشد", vpn.DayMin, vpn.DayMax))
	}
	return nil
}
