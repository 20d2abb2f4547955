package notify

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// maxButtonsPerRow is the transport limit the outbox guarantees to delivery.
const maxButtonsPerRow = 2

type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Enqueue stores a notification for asynchronous delivery. Button rows wider
// than the transport limit are re-chunked rather than rejected.
func (s *Service) Enqueue(ctx context.Context, n Notification) error {
	n.Status = StatusPending
	n.Buttons = normalizeRows(n.Buttons)

	if _, err := s.storage.InsertNotification(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// Pending returns up to limit undelivered notifications, oldest first.
func (s *Service) Pending(ctx context.Context, limit int) ([]*Notification, error) {
	return s.storage.ListNotifications(ctx, ListCriteria{
		Status: lo.ToPtr(StatusPending),
		Limit:  limit,
	})
}

func (s *Service) MarkSent(ctx context.Context, id int64) error {
	return s.storage.MarkNotification(ctx, id, StatusSent)
}

func (s *Service) MarkFailed(ctx context.Context, id int64) error {
	return s.storage.MarkNotification(ctx, id, StatusFailed)
}

func normalizeRows(rows [][]Button) [][]Button {
	var out [][]Button
	for _, row := range rows {
		if len(row) <= maxButtonsPerRow {
			if len(row) > 0 {
				out = append(out, row)
			}
			continue
		}
		out = append(out, lo.Chunk(row, maxButtonsPerRow)...)
	}
	return out
}
