package users

import "time"

type User struct {
	ID               int64
	ChatID           int64
	TelegramUsername string
	FirstName        string
	LastName         string
	AgentID          int64
	Balance          int64
	IsAgent          bool
	IsBlocked        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.TelegramUsername
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

type GetCriteria struct {
	ID     *int64
	ChatID *int64
}

type ListCriteria struct {
	AgentID *int64
	Limit   int
	Offset  int
}

type UpdateParams struct {
	AgentID          *int64
	IsAgent          *bool
	IsBlocked        *bool
	TelegramUsername *string
	FirstName        *string
	LastName         *string
}
