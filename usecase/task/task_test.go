package task

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/internal/infrastructure/docstore"
	"github.com/planpin/backend/repository"
	boltRepo "github.com/planpin/backend/repository/bolt"
)

func newTestUseCase(t *testing.T) *UseCase {
	t.Helper()
	stores, err := docstore.NewManager(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return New(boltRepo.NewProvider(stores), zap.NewNop())
}

// failingProvider simulates an unreachable document store.
type failingProvider struct{}

func (failingProvider) Users(context.Context, string) (repository.UserRepository, error) {
	return nil, domain.ErrStoreUnavailable
}

func (failingProvider) Tasks(context.Context, string) (repository.TaskRepository, error) {
	return nil, domain.ErrStoreUnavailable
}

func TestCreateAndList(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{UserID: "alice", XPct: 10, YPct: 20})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.DefaultTitle, created.Title)

	tasks, err := uc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	projected, ok := uc.Projected("alice", created.ID)
	require.True(t, ok)
	assert.Equal(t, created.ID, projected.ID)
}

func TestCreateRollsBackProjectionOnFailure(t *testing.T) {
	uc := New(failingProvider{}, zap.NewNop())
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{UserID: "alice", XPct: 10, YPct: 20})
	require.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	// The optimistic entry must not survive a failed durable write.
	uc.projection.mu.RLock()
	partition := uc.projection.byUser["alice"]
	uc.projection.mu.RUnlock()
	assert.Empty(t, partition)
}

func TestUpdatePositionRollsBackOnFailure(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{UserID: "alice", XPct: 10, YPct: 20})
	require.NoError(t, err)

	// Invalid coordinates are rejected by the store; the projection must
	// still show the prior position afterwards.
	_, err = uc.UpdatePosition(ctx, "alice", created.ID, 150, 20)
	require.Error(t, err)

	projected, ok := uc.Projected("alice", created.ID)
	require.True(t, ok)
	assert.Equal(t, 10.0, projected.XPct)
}

func TestUpdateTitleDoesNotTouchSiblings(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{UserID: "alice", XPct: 10, YPct: 20})
	require.NoError(t, err)

	updated, err := uc.UpdateTitle(ctx, "alice", created.ID, "Pour foundation")
	require.NoError(t, err)
	assert.Equal(t, "Pour foundation", updated.Title)
	assert.Equal(t, 10.0, updated.XPct)
	assert.Greater(t, updated.UpdatedAt, created.UpdatedAt)
}

// checklistFailProvider delegates to a real provider but fails every
// checklist append, leaving the rest of the repository working.
type checklistFailProvider struct {
	inner repository.Provider
}

type checklistFailRepo struct {
	repository.TaskRepository
}

func (checklistFailRepo) AddChecklistItem(context.Context, string, string) (*domain.ChecklistItem, error) {
	return nil, domain.ErrStoreUnavailable
}

func (p checklistFailProvider) Users(ctx context.Context, userID string) (repository.UserRepository, error) {
	return p.inner.Users(ctx, userID)
}

func (p checklistFailProvider) Tasks(ctx context.Context, userID string) (repository.TaskRepository, error) {
	repo, err := p.inner.Tasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return checklistFailRepo{repo}, nil
}

func TestAddChecklistItemRollsBackOnFailure(t *testing.T) {
	stores, err := docstore.NewManager(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	uc := New(checklistFailProvider{inner: boltRepo.NewProvider(stores)}, zap.NewNop())
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{UserID: "alice", XPct: 10, YPct: 20})
	require.NoError(t, err)

	_, err = uc.AddChecklistItem(ctx, "alice", created.ID, "Check pipes")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	// The optimistic entry must not survive the failed write.
	projected, ok := uc.Projected("alice", created.ID)
	require.True(t, ok)
	assert.Empty(t, projected.Checklist)
}

func TestChecklistFlow(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{UserID: "alice", XPct: 10, YPct: 20})
	require.NoError(t, err)

	item, err := uc.AddChecklistItem(ctx, "alice", created.ID, "Check pipes")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, item.Status)

	// The projection carries the stored item, not the optimistic stand-in.
	projected, ok := uc.Projected("alice", created.ID)
	require.True(t, ok)
	require.Len(t, projected.Checklist, 1)
	assert.Equal(t, item.ID, projected.Checklist[0].ID)

	updated, err := uc.UpdateChecklistStatus(ctx, "alice", created.ID, item.ID, domain.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, updated.Checklist[0].Status)

	_, err = uc.UpdateChecklistStatus(ctx, "alice", created.ID, "missing", domain.StatusDone)
	assert.ErrorIs(t, err, domain.ErrChecklistItemNotFound)
}

func TestDelete(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{UserID: "alice", XPct: 10, YPct: 20})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, "alice", created.ID))

	_, ok := uc.Projected("alice", created.ID)
	assert.False(t, ok)

	err = uc.Delete(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestConcurrentUpdatesToSameTaskSerialize(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Task{UserID: "alice", XPct: 10, YPct: 20})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.UpdatePosition(ctx, "alice", created.ID, float64(i), float64(i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Every write landed; the timestamp advanced once per update.
	final, ok := uc.Projected("alice", created.ID)
	require.True(t, ok)
	assert.GreaterOrEqual(t, final.UpdatedAt, created.UpdatedAt+16)
}
