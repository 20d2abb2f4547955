package notify

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Button is one inline keyboard button of an outbound notification.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Notification is a pre-formatted outbound message waiting in the outbox.
// Buttons are stored row by row; a row never holds more than two buttons.
type Notification struct {
	ID        int64
	ChatID    int64
	Message   string
	Buttons   [][]Button
	FileID    string
	Status    Status
	CreatedAt time.Time
	SentAt    *time.Time
}

type ListCriteria struct {
	Status *Status
	Limit  int
}
