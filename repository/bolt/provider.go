package bolt

import (
	"context"

	"github.com/planpin/backend/internal/infrastructure/docstore"
	"github.com/planpin/backend/repository"
)

type provider struct {
	stores *docstore.Manager
}

// NewProvider returns a repository.Provider that resolves each user's
// repositories through the per-user store manager.
func NewProvider(stores *docstore.Manager) repository.Provider {
	return &provider{stores: stores}
}

func (p *provider) Users(ctx context.Context, userID string) (repository.UserRepository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	store, err := p.stores.Open(userID)
	if err != nil {
		return nil, err
	}
	return NewUserRepository(store), nil
}

func (p *provider) Tasks(ctx context.Context, userID string) (repository.TaskRepository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	store, err := p.stores.Open(userID)
	if err != nil {
		return nil, err
	}
	return NewTaskRepository(store), nil
}
