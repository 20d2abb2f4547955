package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"digiseller/internal/stories/subs"
)

const subscriptionsTable = "subscriptions"

var subscriptionRowFields = fields(subscriptionRow{})

type subscriptionRow struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	VpnID           int64     `db:"vpn_id"`
	MarzbanUsername string    `db:"marzban_username"`
	SubscriptionURL string    `db:"subscription_url"`
	Status          string    `db:"status"`
	Gb              int64     `db:"gb"`
	Days            int64     `db:"days"`
	IsTest          bool      `db:"is_test"`
	ExpiresAt       time.Time `db:"expires_at"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r subscriptionRow) ToModel() *subs.Subscription {
	return &subs.Subscription{
		ID:              r.ID,
		UserID:          r.UserID,
		VpnID:           r.VpnID,
		MarzbanUsername: r.MarzbanUsername,
		SubscriptionURL: r.SubscriptionURL,
		Status:          subs.Status(r.Status),
		Gb:              r.Gb,
		Days:            r.Days,
		IsTest:          r.IsTest,
		ExpiresAt:       r.ExpiresAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (s *storageImpl) CreateSubscription(ctx context.Context, sub subs.Subscription) (*subs.Subscription, error) {
	now := s.now()

	params := map[string]interface{}{
		"user_id":          sub.UserID,
		"vpn_id":           sub.VpnID,
		"marzban_username": sub.MarzbanUsername,
		"subscription_url": sub.SubscriptionURL,
		"status":           string(sub.Status),
		"gb":               sub.Gb,
		"days":             sub.Days,
		"is_test":          sub.IsTest,
		"expires_at":       sub.ExpiresAt,
		"created_at":       now,
		"updated_at":       now,
	}

	q, args, err := s.stmpBuilder().
		Insert(subscriptionsTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetSubscription(ctx, subs.GetCriteria{ID: &id})
}

func (s *storageImpl) GetSubscription(ctx context.Context, criteria subs.GetCriteria) (*subs.Subscription, error) {
	query := s.stmpBuilder().
		Select(subscriptionRowFields).
		From(subscriptionsTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.UserID != nil {
		query = query.Where(sq.Eq{"user_id": *criteria.UserID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var sub subscriptionRow
	err = s.db.GetContext(ctx, &sub, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return sub.ToModel(), nil
}

func (s *storageImpl) ListSubscriptions(ctx context.Context, criteria subs.ListCriteria) ([]*subs.Subscription, error) {
	query := s.stmpBuilder().
		Select(subscriptionRowFields).
		From(subscriptionsTable).
		OrderBy("created_at DESC")

	if criteria.UserID != nil {
		query = query.Where(sq.Eq{"user_id": *criteria.UserID})
	}
	if criteria.Status != nil {
		query = query.Where(sq.Eq{"status": string(*criteria.Status)})
	}
	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		query = query.Offset(uint64(criteria.Offset))
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []subscriptionRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*subs.Subscription
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

func (s *storageImpl) UpdateSubscription(ctx context.Context, id int64, params subs.UpdateParams) (*subs.Subscription, error) {
	query := s.stmpBuilder().
		Update(subscriptionsTable).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id})

	if params.Status != nil {
		query = query.Set("status", string(*params.Status))
	}
	if params.SubscriptionURL != nil {
		query = query.Set("subscription_url", *params.SubscriptionURL)
	}
	if params.AddGb != nil {
		query = query.Set("gb", sq.Expr("gb + ?", *params.AddGb))
	}
	if params.AddDays != nil {
		query = query.Set("days", sq.Expr("days + ?", *params.AddDays))
	}
	if params.ExpiresAt != nil {
		query = query.Set("expires_at", *params.ExpiresAt)
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetSubscription(ctx, subs.GetCriteria{ID: &id})
}
