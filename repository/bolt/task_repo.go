package bolt

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/internal/infrastructure/docstore"
	"github.com/planpin/backend/repository"
)

type taskRepository struct {
	store *docstore.Store
}

// NewTaskRepository returns a bolt-backed TaskRepository bound to one user's
// store. Every mutation is a read-modify-write inside a single bolt Update
// transaction.
func NewTaskRepository(store *docstore.Store) repository.TaskRepository {
	return &taskRepository{store: store}
}

func (r *taskRepository) List(ctx context.Context, userID string) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.store.ListTasks(userID)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
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
	if task.UpdatedAt == 0 {
		task.Touch(time.Now().UnixMilli())
	}
	if err := r.store.PutTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) UpdatePosition(ctx context.Context, id string, xPct, yPct float64) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.store.MutateTask(id, func(t *domain.Task) error {
		t.XPct = xPct
		t.YPct = yPct
		t.Touch(time.Now().UnixMilli())
		return nil
	})
}

func (r *taskRepository) UpdateTitle(ctx context.Context, id, title string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.store.MutateTask(id, func(t *domain.Task) error {
		t.Title = title
		t.Touch(time.Now().UnixMilli())
		return nil
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.DeleteTask(id)
}

func (r *taskRepository) AddChecklistItem(ctx context.Context, id, text string) (*domain.ChecklistItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item := domain.ChecklistItem{
		ID:     uuid.NewString(),
		Text:   text,
		Status: domain.StatusNotStarted,
	}
	if _, err := r.store.MutateTask(id, func(t *domain.Task) error {
		t.Checklist = append(t.Checklist, item)
		t.Touch(time.Now().UnixMilli())
		return nil
	}); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *taskRepository) UpdateChecklistStatus(ctx context.Context, id, itemID string, status domain.ChecklistStatus) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown checklist status")
	}
	return r.store.MutateTask(id, func(t *domain.Task) error {
		item := t.Item(itemID)
		if item == nil {
			return domain.ErrChecklistItemNotFound
		}
		item.Status = status
		t.Touch(time.Now().UnixMilli())
		return nil
	})
}
