package users

import (
	"context"

	"github.com/samber/lo"

	"digiseller/internal/stories/apperr"
)

// Service provides business logic for user accounts.
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// GetOrCreateByChatID returns the user enrolled for this chat, creating a
// fresh account under the given agent on first contact.
func (s *Service) GetOrCreateByChatID(ctx context.Context, chatID int64, agentID int64, username, firstName, lastName string) (*User, error) {
	existing, err := s.storage.GetUser(ctx, GetCriteria{ChatID: &chatID})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	return s.storage.CreateUser(ctx, User{
		ChatID:           chatID,
		TelegramUsername: username,
		FirstName:        firstName,
		LastName:         lastName,
		AgentID:          agentID,
	})
}

func (s *Service) GetByChatID(ctx context.Context, chatID int64) (*User, error) {
	user, err := s.storage.GetUser(ctx, GetCriteria{ChatID: &chatID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("کاربری با این شناسه یافت نشد")
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.storage.GetUser(ctx, GetCriteria{ID: &id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("کاربری با این شناسه یافت نشد")
	}
	return user, nil
}

func (s *Service) ListByAgent(ctx context.Context, agentID int64) ([]*User, error) {
	return s.storage.ListUsers(ctx, ListCriteria{AgentID: &agentID})
}

func (s *Service) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	_, err := s.storage.UpdateUser(ctx, GetCriteria{ID: &userID}, UpdateParams{
		IsBlocked: lo.ToPtr(blocked),
	})
	return err
}
