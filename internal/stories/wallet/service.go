package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
)

func notifyTo(chatID int64, msg string) notify.Notification {
	return notify.Notification{ChatID: chatID, Message: msg}
}

type Service struct {
	storage      Storage
	userStorage  UserStorage
	agentStorage AgentStorage
	outbox       Outbox
}

func NewService(storage Storage, userStorage UserStorage, agentStorage AgentStorage, outbox Outbox) *Service {
	return &Service{
		storage:      storage,
		userStorage:  userStorage,
		agentStorage: agentStorage,
		outbox:       outbox,
	}
}

// CreateTopup records a waiting increase carrying the payment receipt. The
// balance does not move until an admin accepts it.
func (s *Service) CreateTopup(ctx context.Context, userID, amount int64, receiptFileID string) (*Transaction, error) {
	if amount <= 0 {
		return nil, apperr.Validation("مبلغ واریز معتبر نیست")
	}

	return s.storage.InsertTransaction(ctx, Transaction{
		UserID:         userID,
		Amount:         amount,
		Kind:           KindIncrease,
		Status:         StatusWaiting,
		Description:    "افزایش موجودی کیف پول",
		ReceiptFileID:  receiptFileID,
		IdempotencyKey: uuid.NewString(),
	})
}

// Get returns one transaction by id.
func (s *Service) Get(ctx context.Context, transactionID int64) (*Transaction, error) {
	t, err := s.storage.GetTransaction(ctx, GetCriteria{ID: &transactionID})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("تراکنشی با این شناسه یافت نشد")
	}
	return t, nil
}

// Decide accepts or rejects a waiting transaction. Acceptance posts the
// balance change exactly once: a transaction that is no longer waiting is
// left untouched and reported as a business error.
func (s *Service) Decide(ctx context.Context, transactionID int64, accept bool) (*Transaction, error) {
	t, changed, err := s.storage.DecideTransactionTx(ctx, transactionID, accept)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("تراکنشی با این شناسه یافت نشد")
	}
	if !changed {
		return nil, apperr.BusinessRule("این تراکنش قبلا بررسی شده است")
	}

	user, err := s.userStorage.GetUser(ctx, users.GetCriteria{ID: &t.UserID})
	if err != nil {
		return nil, err
	}
	if user != nil {
		msg := fmt.Sprintf("تراکنش شما به مبلغ %d تومان تایید شد ✅", t.Amount)
		if !accept {
			msg = fmt.Sprintf("تراکنش شما به مبلغ %d تومان رد شد ❌", t.Amount)
		}
		if err := s.outbox.Enqueue(ctx, notifyTo(user.ChatID, msg)); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Charge debits a purchase from the buyer's wallet. No write happens when
// the balance cannot cover it.
func (s *Service) Charge(ctx context.Context, userID, amount int64, description, idempotencyKey string, minBalance int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, apperr.Validation("مبلغ معتبر نیست")
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	// A retried webhook reuses its idempotency key; the charge it carries has
	// already been posted.
	if existing, err := s.storage.GetTransaction(ctx, GetCriteria{IdempotencyKey: &idempotencyKey}); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	t, err := s.storage.ChargeTx(ctx, ChargeOp{
		UserID:         userID,
		Amount:         amount,
		Kind:           KindDecrease,
		Description:    description,
		IdempotencyKey: idempotencyKey,
		MinBalance:     minBalance,
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ManualAdjust posts an immediate increase or decrease made by an agent on
// one of its users. The amount must stay inside the owning agent's topup
// limits, and a decrease may only take the balance below zero when the
// agent is allowed to run negative, down to its ceiling.
func (s *Service) ManualAdjust(ctx context.Context, targetUserID, amount int64, increase bool, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, apperr.Validation("مبلغ معتبر نیست")
	}

	user, err := s.userStorage.GetUser(ctx, users.GetCriteria{ID: &targetUserID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("کاربری با این شناسه یافت نشد")
	}

	agent, err := s.agentStorage.GetAgent(ctx, agents.GetCriteria{ID: &user.AgentID})
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, apperr.NotFound("نماینده این کاربر یافت نشد")
	}
	if amount < agent.UserMinTopup || amount > agent.UserMaxTopup {
		return nil, apperr.BusinessRule("مبلغ خارج از محدوده مجاز نماینده است")
	}

	kind := KindManualIncrease
	minBalance := int64(0)
	if !increase {
		kind = KindManualDecrease
		if agent.AllowNegative {
			minBalance = -agent.NegativeChargeCeiling
		}
	}

	t, err := s.storage.ChargeTx(ctx, ChargeOp{
		UserID:         targetUserID,
		Amount:         amount,
		Kind:           kind,
		Description:    description,
		IdempotencyKey: uuid.NewString(),
		MinBalance:     minBalance,
	})
	if err != nil {
		return nil, err
	}

	verb := "افزایش"
	if !increase {
		verb = "کاهش"
	}
	msg := fmt.Sprintf("موجودی شما %s یافت: %d تومان\n%s", verb, amount, description)
	if err := s.outbox.Enqueue(ctx, notifyTo(user.ChatID, msg)); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	return s.storage.ListTransactions(ctx, ListCriteria{UserID: &userID, Limit: limit})
}
