package bolt

import (
	"context"

	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/internal/infrastructure/docstore"
	"github.com/planpin/backend/repository"
)

type userRepository struct {
	store *docstore.Store
}

// NewUserRepository returns a bolt-backed UserRepository bound to one user's
// store.
func NewUserRepository(store *docstore.Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.PutUser(user)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.store.GetUser(id)
}
