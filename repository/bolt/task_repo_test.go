package bolt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/internal/infrastructure/docstore"
	"github.com/planpin/backend/repository"
)

func newTestRepos(t *testing.T, userID string) (repository.TaskRepository, repository.UserRepository) {
	t.Helper()
	m, err := docstore.NewManager(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	store, err := m.Open(userID)
	require.NoError(t, err)
	return NewTaskRepository(store), NewUserRepository(store)
}

func createTask(t *testing.T, repo repository.TaskRepository, userID string) *domain.Task {
	t.Helper()
	task, err := repo.Create(context.Background(), &domain.Task{
		UserID: userID,
		XPct:   30,
		YPct:   40,
	})
	require.NoError(t, err)
	return task
}

func TestCreateAssignsDefaults(t *testing.T) {
	repo, _ := newTestRepos(t, "alice")

	task := createTask(t, repo, "alice")

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, domain.DefaultTitle, task.Title)
	assert.NotNil(t, task.Checklist)
	assert.Empty(t, task.Checklist)
	assert.Positive(t, task.UpdatedAt)

	// The document is durable before Create returns.
	listed, err := repo.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, task.ID, listed[0].ID)
}

func TestCreateRejectsOutOfRangePosition(t *testing.T) {
	repo, _ := newTestRepos(t, "alice")

	_, err := repo.Create(context.Background(), &domain.Task{UserID: "alice", XPct: 101})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestUpdatePositionLeavesSiblingFields(t *testing.T) {
	repo, _ := newTestRepos(t, "alice")
	task := createTask(t, repo, "alice")

	item, err := repo.AddChecklistItem(context.Background(), task.ID, "Check drainage")
	require.NoError(t, err)

	updated, err := repo.UpdatePosition(context.Background(), task.ID, 60, 70)
	require.NoError(t, err)

	assert.Equal(t, 60.0, updated.XPct)
	assert.Equal(t, 70.0, updated.YPct)
	assert.Equal(t, domain.DefaultTitle, updated.Title)
	require.Len(t, updated.Checklist, 1)
	assert.Equal(t, item.ID, updated.Checklist[0].ID)
}

func TestUpdateTitleLeavesPosition(t *testing.T) {
	repo, _ := newTestRepos(t, "alice")
	task := createTask(t, repo, "alice")

	updated, err := repo.UpdateTitle(context.Background(), task.ID, "Fit windows")
	require.NoError(t, err)

	assert.Equal(t, "Fit windows", updated.Title)
	assert.Equal(t, 30.0, updated.XPct)
	assert.Equal(t, 40.0, updated.YPct)
}

func TestUpdatedAtStrictlyIncreases(t *testing.T) {
	repo, _ := newTestRepos(t, "alice")
	task := createTask(t, repo, "alice")

	prev := task.UpdatedAt
	for i := 0; i < 5; i++ {
		updated, err := repo.UpdateTitle(context.Background(), task.ID, "rename")
		require.NoError(t, err)
		assert.Greater(t, updated.UpdatedAt, prev)
		prev = updated.UpdatedAt
	}
}

func TestDeleteIsFailSecondTime(t *testing.T) {
	repo, _ := newTestRepos(t, "alice")
	keep := createTask(t, repo, "alice")
	doomed := createTask(t, repo, "alice")

	require.NoError(t, repo.Delete(context.Background(), doomed.ID))
	assert.ErrorIs(t, repo.Delete(context.Background(), doomed.ID), domain.ErrTaskNotFound)

	listed, err := repo.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, keep.ID, listed[0].ID)
}

func TestAddChecklistItemAppendsInOrder(t *testing.T) {
	repo, _ := newTestRepos(t, "alice")
	task := createTask(t, repo, "alice")

	first, err := repo.AddChecklistItem(context.Background(), task.ID, "Measure area")
	require.NoError(t, err)
	second, err := repo.AddChecklistItem(context.Background(), task.ID, "Order concrete")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNotStarted, first.Status)
	assert.NotEqual(t, first.ID, second.ID)

	listed, err := repo.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, listed[0].Checklist, 2)
	assert.Equal(t, "Measure area", listed[0].Checklist[0].Text)
	assert.Equal(t, "Order concrete", listed[0].Checklist[1].Text)
}

func TestUpdateChecklistStatus(t *testing.T) {
	repo, _ := newTestRepos(t, "alice")
	task := createTask(t, repo, "alice")

	item, err := repo.AddChecklistItem(context.Background(), task.ID, "Measure area")
	require.NoError(t, err)

	updated, err := repo.UpdateChecklistStatus(context.Background(), task.ID, item.ID, domain.StatusBlocked)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, updated.Checklist[0].Status)

	// Text is immutable; only the status changed.
	assert.Equal(t, "Measure area", updated.Checklist[0].Text)

	_, err = repo.UpdateChecklistStatus(context.Background(), task.ID, "missing", domain.StatusDone)
	assert.ErrorIs(t, err, domain.ErrChecklistItemNotFound)

	_, err = repo.UpdateChecklistStatus(context.Background(), task.ID, item.ID, "paused")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestPartitionIsolation(t *testing.T) {
	m, err := docstore.NewManager(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	provider := NewProvider(m)
	ctx := context.Background()

	aliceRepo, err := provider.Tasks(ctx, "alice")
	require.NoError(t, err)
	bobRepo, err := provider.Tasks(ctx, "bob")
	require.NoError(t, err)

	_, err = aliceRepo.Create(ctx, &domain.Task{UserID: "alice", XPct: 1, YPct: 1})
	require.NoError(t, err)

	bobTasks, err := bobRepo.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobTasks)
}

func TestUserRepositoryPreservesDocument(t *testing.T) {
	_, users := newTestRepos(t, "alice")
	ctx := context.Background()

	_, err := users.GetByID(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, users.Upsert(ctx, &domain.User{ID: "alice", CreatedAt: 7}))
	user, err := users.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.CreatedAt)
}

func TestContextCancellation(t *testing.T) {
	repo, _ := newTestRepos(t, "alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.List(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}
