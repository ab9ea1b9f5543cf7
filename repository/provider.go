package repository

import "context"

// Provider resolves repositories scoped to one user's partition. Task and
// user documents live in per-user stores, so a repository only exists
// relative to an opened store handle.
type Provider interface {
	Users(ctx context.Context, userID string) (UserRepository, error)
	Tasks(ctx context.Context, userID string) (TaskRepository, error)
}
