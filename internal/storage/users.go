package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"digiseller/internal/stories/users"
)

const usersTable = "users"

var userRowFields = fields(userRow{})

type userRow struct {
	ID               int64     `db:"id"`
	ChatID           int64     `db:"chat_id"`
	TelegramUsername string    `db:"telegram_username"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	AgentID          int64     `db:"agent_id"`
	Balance          int64     `db:"balance"`
	IsAgent          bool      `db:"is_agent"`
	IsBlocked        bool      `db:"is_blocked"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (u userRow) ToModel() *users.User {
	return &users.User{
		ID:               u.ID,
		ChatID:           u.ChatID,
		TelegramUsername: u.TelegramUsername,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		AgentID:          u.AgentID,
		Balance:          u.Balance,
		IsAgent:          u.IsAgent,
		IsBlocked:        u.IsBlocked,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (s *storageImpl) CreateUser(ctx context.Context, user users.User) (*users.User, error) {
	now := s.now()

	params := map[string]interface{}{
		"chat_id":           user.ChatID,
		"telegram_username": user.TelegramUsername,
		"first_name":        user.FirstName,
		"last_name":         user.LastName,
		"agent_id":          user.AgentID,
		"balance":           user.Balance,
		"is_agent":          user.IsAgent,
		"is_blocked":        user.IsBlocked,
		"created_at":        now,
		"updated_at":        now,
	}

	q, args, err := s.stmpBuilder().
		Insert(usersTable).
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

	return s.GetUser(ctx, users.GetCriteria{ID: &id})
}

func (s *storageImpl) GetUser(ctx context.Context, criteria users.GetCriteria) (*users.User, error) {
	query := s.stmpBuilder().
		Select(userRowFields).
		From(usersTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.ChatID != nil {
		query = query.Where(sq.Eq{"chat_id": *criteria.ChatID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var u userRow
	err = s.db.GetContext(ctx, &u, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return u.ToModel(), nil
}

func (s *storageImpl) ListUsers(ctx context.Context, criteria users.ListCriteria) ([]*users.User, error) {
	query := s.stmpBuilder().
		Select(userRowFields).
		From(usersTable).
		OrderBy("created_at DESC")

	if criteria.AgentID != nil {
		query = query.Where(sq.Eq{"agent_id": *criteria.AgentID})
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

	var rows []userRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*users.User
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

func (s *storageImpl) UpdateUser(ctx context.Context, criteria users.GetCriteria, params users.UpdateParams) (*users.User, error) {
	query := s.stmpBuilder().
		Update(usersTable).
		Set("updated_at", s.now())

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.ChatID != nil {
		query = query.Where(sq.Eq{"chat_id": *criteria.ChatID})
	}

	if params.AgentID != nil {
		query = query.Set("agent_id", *params.AgentID)
	}
	if params.IsAgent != nil {
		query = query.Set("is_agent", *params.IsAgent)
	}
	if params.IsBlocked != nil {
		query = query.Set("is_blocked", *params.IsBlocked)
	}
	if params.TelegramUsername != nil {
		query = query.Set("telegram_username", *params.TelegramUsername)
	}
	if params.FirstName != nil {
		query = query.Set("first_name", *params.FirstName)
	}
	if params.LastName != nil {
		query = query.Set("last_name", *params.LastName)
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetUser(ctx, criteria)
}
