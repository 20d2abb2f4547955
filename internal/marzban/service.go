package marzban

import (
	"context"
	"time"

	"digiseller/internal/stories/apperr"
)

// Service adapts the raw panel API to the provisioning operations the
// subscription story consumes.
type Service struct {
	client api
}

func NewService(client api) *Service {
	return &Service{client: client}
}

// CreateUser provisions a fresh account and returns its credentials.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*Credentials, error) {
	payload := userPayload{
		Username: req.Username,
		Proxies:  map[string]struct{}{"vless": {}},
		Expire:   req.ExpiresAt.Unix(),
	}
	if req.TrafficLimitGB > 0 {
		payload.DataLimit = req.TrafficLimitGB * bytesPerGB
	}

	user, err := s.client.AddUser(ctx, payload)
	if err != nil {
		return nil, apperr.Adapter("خطا در ساخت سرویس، لطفا بعدا تلاش کنید", err)
	}
	return credentials(user), nil
}

// Renew extends an account's expiry and traffic allotment.
func (s *Service) Renew(ctx context.Context, req ModifyUserRequest) (*Credentials, error) {
	current, err := s.client.GetUser(ctx, req.Username)
	if err != nil {
		return nil, apperr.Adapter("سرویس مورد نظر در پنل یافت نشد", err)
	}

	payload := userPayload{Username: req.Username}
	if req.AddTrafficGB > 0 {
		payload.DataLimit = current.DataLimit + req.AddTrafficGB*bytesPerGB
	}
	if req.ExtendExpiresTo != nil {
		payload.Expire = req.ExtendExpiresTo.Unix()
	}

	user, err := s.client.ModifyUser(ctx, req.Username, payload)
	if err != nil {
		return nil, apperr.Adapter("خطا در تمدید سرویس", err)
	}
	return credentials(user), nil
}

// AppendTraffic adds gb to an account's data limit without touching expiry.
func (s *Service) AppendTraffic(ctx context.Context, username string, gb int64) error {
	_, err := s.Renew(ctx, ModifyUserRequest{Username: username, AddTrafficGB: gb})
	return err
}

// AppendDays pushes an account's expiry forward by days.
func (s *Service) AppendDays(ctx context.Context, username string, days int64) error {
	current, err := s.client.GetUser(ctx, username)
	if err != nil {
		return apperr.Adapter("سرویس مورد نظر در پنل یافت نشد", err)
	}

	base := time.Unix(current.Expire, 0)
	if now := time.Now(); base.Before(now) {
		base = now
	}
	extended := base.AddDate(0, 0, int(days))

	_, err = s.client.ModifyUser(ctx, username, userPayload{
		Username: username,
		Expire:   extended.Unix(),
	})
	if err != nil {
		return apperr.Adapter("خطا در تمدید سرویس", err)
	}
	return nil
}

// ChangeStatus enables or disables an account.
func (s *Service) ChangeStatus(ctx context.Context, username string, status UserStatus) error {
	_, err := s.client.ModifyUser(ctx, username, userPayload{
		Username: username,
		Status:   string(status),
	})
	if err != nil {
		return apperr.Adapter("خطا در تغییر وضعیت سرویس", err)
	}
	return nil
}

// Delete removes an account from the panel.
func (s *Service) Delete(ctx context.Context, username string) error {
	if err := s.client.RemoveUser(ctx, username); err != nil {
		return apperr.Adapter("خطا در حذف سرویس", err)
	}
	return nil
}

// Revoke rotates the subscription link and returns the fresh one.
func (s *Service) Revoke(ctx context.Context, username string) (string, error) {
	user, err := s.client.RevokeSubscription(ctx, username)
	if err != nil {
		return "", apperr.Adapter("خطا در ساخت لینک جدید", err)
	}
	return user.SubscriptionURL, nil
}

func credentials(user *userResponse) *Credentials {
	return &Credentials{
		Username:        user.Username,
		SubscriptionURL: user.SubscriptionURL,
		Links:           user.Links,
	}
}
