package subs

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
	StatusDeleted  Status = "deleted"
)

type Subscription struct {
	ID              int64
	UserID          int64
	VpnID           int64
	MarzbanUsername string
	SubscriptionURL string
	Status          Status
	Gb              int64
	Days            int64
	IsTest          bool
	ExpiresAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type GetCriteria struct {
	ID     *int64
	UserID *int64
}

type ListCriteria struct {
	UserID *int64
	Status *Status
	Limit  int
	Offset int
}

type UpdateParams struct {
	Status          *Status
	SubscriptionURL *string
	AddGb           *int64
	AddDays         *int64
	ExpiresAt       *time.Time
}

// BuyRequest is a confirmed purchase ready for provisioning. Exactly one of
// TemplateID or the custom (Gb, Days) pair is meaningful; RenewSubID turns
// the purchase into a renewal of an existing service.
type BuyRequest struct {
	UserID         int64
	VpnID          int64
	TemplateID     *int64
	Gb             int64
	Days           int64
	RenewSubID     *int64
	IdempotencyKey string
}

// Receipt is the outcome of a completed purchase.
type Receipt struct {
	Subscription *Subscription
	FinalPrice   int64
}
