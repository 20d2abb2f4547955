package marzban

import "context"

// api is the slice of the panel client the adapter needs; tests substitute a
// fake.
type api interface {
	AddUser(ctx context.Context, payload userPayload) (*userResponse, error)
	GetUser(ctx context.Context, username string) (*userResponse, error)
	ModifyUser(ctx context.Context, username string, payload userPayload) (*userResponse, error)
	RemoveUser(ctx context.Context, username string) error
	RevokeSubscription(ctx context.Context, username string) (*userResponse, error)
}
