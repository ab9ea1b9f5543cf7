// Package task wraps the task repository with the optimistic update policy:
// every mutation lands in the in-memory projection first, then the durable
// write runs, and a failed write rolls the projection back. Writes to the
// same task are serialized through a pending-operation lock per task id.
package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/repository"
)

type UseCase struct {
	repos      repository.Provider
	projection *projection
	pending    *taskLocks
	logger     *zap.Logger
}

func New(repos repository.Provider, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repos:      repos,
		projection: newProjection(),
		pending:    newTaskLocks(),
		logger:     logger,
	}
}

// List loads the user's tasks from the store and refreshes the projection.
func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Task, error) {
	repo, err := uc.repos.Tasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	uc.projection.replace(userID, tasks)
	return tasks, nil
}

// Create persists a new task. The id is assigned up front so the optimistic
// projection entry and the stored document agree.
func (uc *UseCase) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Title == "" {
		task.Title = domain.DefaultTitle
	}
	if task.Checklist == nil {
		task.Checklist = []domain.ChecklistItem{}
	}
	task.Touch(time.Now().UnixMilli())
	userID, taskID := task.UserID, task.ID

	uc.projection.put(userID, *task)

	repo, err := uc.repos.Tasks(ctx, userID)
	if err == nil {
		task, err = repo.Create(ctx, task)
	}
	if err != nil {
		uc.projection.remove(userID, taskID)
		return nil, err
	}
	uc.projection.put(userID, *task)
	return task, nil
}

// UpdatePosition moves a marker. Sibling fields are untouched.
func (uc *UseCase) UpdatePosition(ctx context.Context, userID, taskID string, xPct, yPct float64) (*domain.Task, error) {
	return uc.mutate(ctx, userID, taskID,
		func(t *domain.Task) {
			t.XPct = xPct
			t.YPct = yPct
		},
		func(repo repository.TaskRepository) (*domain.Task, error) {
			return repo.UpdatePosition(ctx, taskID, xPct, yPct)
		})
}

// UpdateTitle renames a task. Sibling fields are untouched.
func (uc *UseCase) UpdateTitle(ctx context.Context, userID, taskID, title string) (*domain.Task, error) {
	return uc.mutate(ctx, userID, taskID,
		func(t *domain.Task) {
			t.Title = title
		},
		func(repo repository.TaskRepository) (*domain.Task, error) {
			return repo.UpdateTitle(ctx, taskID, title)
		})
}

// AddChecklistItem appends a not-started checklist entry and returns it.
// Two-phase like every other mutation: an optimistic entry lands in the
// projection first and is swapped for the stored item once the write lands,
// or rolled back when it fails.
func (uc *UseCase) AddChecklistItem(ctx context.Context, userID, taskID, text string) (*domain.ChecklistItem, error) {
	release := uc.pending.acquire(taskID)
	defer release()

	prior, hadProjection := uc.projection.get(userID, taskID)
	optimistic := domain.ChecklistItem{
		ID:     uuid.NewString(),
		Text:   text,
		Status: domain.StatusNotStarted,
	}
	if hadProjection {
		patched := prior
		patched.Checklist = append(append([]domain.ChecklistItem(nil), prior.Checklist...), optimistic)
		uc.projection.put(userID, patched)
	}

	rollback := func() {
		if hadProjection {
			uc.projection.put(userID, prior)
		}
	}

	repo, err := uc.repos.Tasks(ctx, userID)
	if err != nil {
		rollback()
		return nil, err
	}
	item, err := repo.AddChecklistItem(ctx, taskID, text)
	if err != nil {
		rollback()
		return nil, err
	}

	// Reconcile the optimistic entry with the stored item's id.
	if projected, ok := uc.projection.get(userID, taskID); ok {
		for i := range projected.Checklist {
			if projected.Checklist[i].ID == optimistic.ID {
				projected.Checklist[i] = *item
			}
		}
		uc.projection.put(userID, projected)
	}
	return item, nil
}

// UpdateChecklistStatus replaces one item's status. An absent item id is an
// explicit domain.ErrChecklistItemNotFound, not a silent no-op.
func (uc *UseCase) UpdateChecklistStatus(ctx context.Context, userID, taskID, itemID string, status domain.ChecklistStatus) (*domain.Task, error) {
	return uc.mutate(ctx, userID, taskID,
		func(t *domain.Task) {
			if item := t.Item(itemID); item != nil {
				item.Status = status
			}
		},
		func(repo repository.TaskRepository) (*domain.Task, error) {
			return repo.UpdateChecklistStatus(ctx, taskID, itemID, status)
		})
}

// Delete removes a task and its checklist. Deleting again fails with
// NotFound and leaves the remaining tasks intact.
func (uc *UseCase) Delete(ctx context.Context, userID, taskID string) error {
	release := uc.pending.acquire(taskID)
	defer release()

	prior, hadProjection := uc.projection.get(userID, taskID)
	uc.projection.remove(userID, taskID)

	repo, err := uc.repos.Tasks(ctx, userID)
	if err == nil {
		err = repo.Delete(ctx, taskID)
	}
	if err != nil {
		if hadProjection && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.projection.put(userID, prior)
		}
		return err
	}
	return nil
}

// Projected returns the optimistic in-memory copy of a task, when present.
func (uc *UseCase) Projected(userID, taskID string) (domain.Task, bool) {
	return uc.projection.get(userID, taskID)
}

// mutate is the two-phase update for single-task writes: take the per-task
// lock, patch the projection copy, run the durable write, then reconcile
// with the stored document or roll back.
func (uc *UseCase) mutate(ctx context.Context, userID, taskID string, patch func(*domain.Task), write func(repository.TaskRepository) (*domain.Task, error)) (*domain.Task, error) {
	release := uc.pending.acquire(taskID)
	defer release()

	prior, hadProjection := uc.projection.get(userID, taskID)
	if hadProjection {
		optimistic := prior
		optimistic.Checklist = append([]domain.ChecklistItem(nil), prior.Checklist...)
		patch(&optimistic)
		uc.projection.put(userID, optimistic)
	}

	rollback := func() {
		if hadProjection {
			uc.projection.put(userID, prior)
		}
	}

	repo, err := uc.repos.Tasks(ctx, userID)
	if err != nil {
		rollback()
		return nil, err
	}
	updated, err := write(repo)
	if err != nil {
		rollback()
		return nil, err
	}
	uc.projection.put(userID, *updated)
	return updated, nil
}
