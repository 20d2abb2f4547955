package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"digiseller/internal/stories/notify"
)

const notificationsTable = "notifications"

var notificationRowFields = fields(notificationRow{})

type notificationRow struct {
	ID        int64      `db:"id"`
	ChatID    int64      `db:"chat_id"`
	Message   string     `db:"message"`
	Buttons   string     `db:"buttons"`
	FileID    string     `db:"file_id"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	SentAt    *time.Time `db:"sent_at"`
}

func (n notificationRow) ToModel() (*notify.Notification, error) {
	var buttons [][]notify.Button
	if n.Buttons != "" {
		if err := json.Unmarshal([]byte(n.Buttons), &buttons); err != nil {
			return nil, fmt.Errorf("unmarshal buttons: %w", err)
		}
	}

	return &notify.Notification{
		ID:        n.ID,
		ChatID:    n.ChatID,
		Message:   n.Message,
		Buttons:   buttons,
		FileID:    n.FileID,
		Status:    notify.Status(n.Status),
		CreatedAt: n.CreatedAt,
		SentAt:    n.SentAt,
	}, nil
}

func (s *storageImpl) InsertNotification(ctx context.Context, n notify.Notification) (*notify.Notification, error) {
	buttons, err := json.Marshal(n.Buttons)
	if err != nil {
		return nil, fmt.Errorf("marshal buttons: %w", err)
	}

	params := map[string]interface{}{
		"chat_id":    n.ChatID,
		"message":    n.Message,
		"buttons":    string(buttons),
		"file_id":    n.FileID,
		"status":     string(n.Status),
		"created_at": s.now(),
	}

	q, args, err := s.stmpBuilder().
		Insert(notificationsTable).
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

	return s.getNotification(ctx, id)
}

func (s *storageImpl) getNotification(ctx context.Context, id int64) (*notify.Notification, error) {
	q, args, err := s.stmpBuilder().
		Select(notificationRowFields).
		From(notificationsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var n notificationRow
	err = s.db.GetContext(ctx, &n, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return n.ToModel()
}

func (s *storageImpl) ListNotifications(ctx context.Context, criteria notify.ListCriteria) ([]*notify.Notification, error) {
	query := s.stmpBuilder().
		Select(notificationRowFields).
		From(notificationsTable).
		OrderBy("created_at")

	if criteria.Status != nil {
		query = query.Where(sq.Eq{"status": string(*criteria.Status)})
	}
	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []notificationRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*notify.Notification
	for _, row := range rows {
		n, err := row.ToModel()
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}

	return result, nil
}

func (s *storageImpl) MarkNotification(ctx context.Context, id int64, status notify.Status) error {
	query := s.stmpBuilder().
		Update(notificationsTable).
		Set("status", string(status)).
		Set("sent_at", s.now()).
		Where(sq.Eq{"id": id})

	return s.exec(ctx, query)
}
