package repository

import (
	"context"

	"github.com/planpin/backend/domain"
)

type UserRepository interface {
	// Upsert creates or refreshes the user document. Logging in again with
	// the same name must not duplicate anything.
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
