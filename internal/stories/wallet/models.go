package wallet

import "time"

type Kind string

const (
	KindIncrease       Kind = "increase"
	KindDecrease       Kind = "decrease"
	KindManualIncrease Kind = "manual_increase"
	KindManualDecrease Kind = "manual_decrease"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Transaction is one balance-affecting ledger event. IdempotencyKey makes the
// record safe under at-least-once webhook delivery: a retried handler reuses
// the key instead of posting twice.
type Transaction struct {
	ID             int64
	UserID         int64
	Amount         int64
	Kind           Kind
	Status         Status
	Description    string
	ReceiptFileID  string
	IdempotencyKey string
	CreatedAt      time.Time
	DecidedAt      *time.Time
}

// Signed returns the amount with the sign its kind applies to the balance.
func (t *Transaction) Signed() int64 {
	switch t.Kind {
	case KindDecrease, KindManualDecrease:
		return -t.Amount
	default:
		return t.Amount
	}
}

type GetCriteria struct {
	ID             *int64
	IdempotencyKey *string
}

type ListCriteria struct {
	UserID *int64
	Status *Status
	Limit  int
	Offset int
}

// ChargeOp is an immediate, pre-accepted posting (purchases and manual
// adjustments). MinBalance is the floor the balance may not cross; zero for
// regular users, the negative ceiling for agents allowed to owe.
type ChargeOp struct {
	UserID         int64
	Amount         int64
	Kind           Kind
	Description    string
	IdempotencyKey string
	MinBalance     int64
}
