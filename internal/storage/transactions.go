package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/wallet"
)

const transactionsTable = "transactions"

var transactionRowFields = fields(transactionRow{})

type transactionRow struct {
	ID             int64      `db:"id"`
	UserID         int64      `db:"user_id"`
	Amount         int64      `db:"amount"`
	Kind           string     `db:"kind"`
	Status         string     `db:"status"`
	Description    string     `db:"description"`
	ReceiptFileID  string     `db:"receipt_file_id"`
	IdempotencyKey string     `db:"idempotency_key"`
	CreatedAt      time.Time  `db:"created_at"`
	DecidedAt      *time.Time `db:"decided_at"`
}

func (t transactionRow) ToModel() *wallet.Transaction {
	return &wallet.Transaction{
		ID:             t.ID,
		UserID:         t.UserID,
		Amount:         t.Amount,
		Kind:           wallet.Kind(t.Kind),
		Status:         wallet.Status(t.Status),
		Description:    t.Description,
		ReceiptFileID:  t.ReceiptFileID,
		IdempotencyKey: t.IdempotencyKey,
		CreatedAt:      t.CreatedAt,
		DecidedAt:      t.DecidedAt,
	}
}

func (s *storageImpl) InsertTransaction(ctx context.Context, t wallet.Transaction) (*wallet.Transaction, error) {
	params := map[string]interface{}{
		"user_id":         t.UserID,
		"amount":          t.Amount,
		"kind":            string(t.Kind),
		"status":          string(t.Status),
		"description":     t.Description,
		"receipt_file_id": t.ReceiptFileID,
		"idempotency_key": t.IdempotencyKey,
		"created_at":      s.now(),
	}

	q, args, err := s.stmpBuilder().
		Insert(transactionsTable).
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

	return s.GetTransaction(ctx, wallet.GetCriteria{ID: &id})
}

func (s *storageImpl) GetTransaction(ctx context.Context, criteria wallet.GetCriteria) (*wallet.Transaction, error) {
	query := s.stmpBuilder().
		Select(transactionRowFields).
		From(transactionsTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.IdempotencyKey != nil {
		query = query.Where(sq.Eq{"idempotency_key": *criteria.IdempotencyKey})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var t transactionRow
	err = s.db.GetContext(ctx, &t, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return t.ToModel(), nil
}

func (s *storageImpl) ListTransactions(ctx context.Context, criteria wallet.ListCriteria) ([]*wallet.Transaction, error) {
	query := s.stmpBuilder().
		Select(transactionRowFields).
		From(transactionsTable).
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

	var rows []transactionRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*wallet.Transaction
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

// DecideTransactionTx settles a waiting transaction. The status flip is
// guarded by the waiting condition, so a second decision on the same row
// affects nothing and reports changed=false.
func (s *storageImpl) DecideTransactionTx(ctx context.Context, id int64, accept bool) (*wallet.Transaction, bool, error) {
	var changed bool

	err := s.txm(ctx, func(tx *sqlx.Tx) error {
		status := wallet.StatusAccepted
		if !accept {
			status = wallet.StatusRejected
		}

		q, args, err := s.stmpBuilder().
			Update(transactionsTable).
			Set("status", string(status)).
			Set("decided_at", s.now()).
			Where(sq.Eq{"id": id, "status": string(wallet.StatusWaiting)}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}

		result, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("result.RowsAffected: %w", err)
		}
		changed = affected > 0

		if !changed || !accept {
			return nil
		}

		return s.applyBalance(ctx, tx, id)
	})
	if err != nil {
		return nil, false, err
	}

	t, err := s.GetTransaction(ctx, wallet.GetCriteria{ID: &id})
	if err != nil {
		return nil, false, err
	}

	return t, changed, nil
}

// ChargeTx inserts an accepted transaction and moves the balance in one
// transaction. The whole write fails when the balance would cross op.MinBalance.
func (s *storageImpl) ChargeTx(ctx context.Context, op wallet.ChargeOp) (*wallet.Transaction, error) {
	var transactionID int64

	err := s.txm(ctx, func(tx *sqlx.Tx) error {
		now := s.now()

		params := map[string]interface{}{
			"user_id":         op.UserID,
			"amount":          op.Amount,
			"kind":            string(op.Kind),
			"status":          string(wallet.StatusAccepted),
			"description":     op.Description,
			"receipt_file_id": "",
			"idempotency_key": op.IdempotencyKey,
			"created_at":      now,
			"decided_at":      now,
		}

		q, args, err := s.stmpBuilder().
			Insert(transactionsTable).
			SetMap(params).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}

		result, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		transactionID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("result.LastInsertId: %w", err)
		}

		delta := (&wallet.Transaction{Amount: op.Amount, Kind: op.Kind}).Signed()
		if delta < 0 {
			var balance int64
			q, args, err := s.stmpBuilder().
				Select("balance").
				From(usersTable).
				Where(sq.Eq{"id": op.UserID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build sql query: %w", err)
			}
			if err := tx.GetContext(ctx, &balance, q, args...); err != nil {
				return fmt.Errorf("tx.GetContext: %w", err)
			}
			if balance+delta < op.MinBalance {
				return apperr.BusinessRule("موجودی کیف پول کافی نیست")
			}
		}

		return s.moveBalance(ctx, tx, op.UserID, delta)
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransaction(ctx, wallet.GetCriteria{ID: &transactionID})
}

// applyBalance posts the signed amount of an already-updated transaction row.
func (s *storageImpl) applyBalance(ctx context.Context, tx *sqlx.Tx, transactionID int64) error {
	q, args, err := s.stmpBuilder().
		Select(transactionRowFields).
		From(transactionsTable).
		Where(sq.Eq{"id": transactionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	var row transactionRow
	if err := tx.GetContext(ctx, &row, q, args...); err != nil {
		return fmt.Errorf("tx.GetContext: %w", err)
	}

	return s.moveBalance(ctx, tx, row.UserID, row.ToModel().Signed())
}

func (s *storageImpl) moveBalance(ctx context.Context, tx *sqlx.Tx, userID, delta int64) error {
	q, args, err := s.stmpBuilder().
		Update(usersTable).
		Set("balance", sq.Expr("balance + ?", delta)).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("tx.ExecContext: %w", err)
	}

	return nil
}
