package notify

import "context"

type Storage interface {
	InsertNotification(ctx context.Context, n Notification) (*Notification, error)
	ListNotifications(ctx context.Context, criteria ListCriteria) ([]*Notification, error)
	MarkNotification(ctx context.Context, id int64, status Status) error
}
