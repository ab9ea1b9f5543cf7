package repository

import (
	"context"

	"github.com/planpin/backend/domain"
)

// TaskRepository is the sole mutation and query path for task documents.
// Implementations must perform every mutation as an atomic read-modify-write
// against the single task document, so sibling fields survive back-to-back
// partial updates.
type TaskRepository interface {
	// List returns all tasks in the user's partition; empty when none.
	// Order is unspecified.
	List(ctx context.Context, userID string) ([]domain.Task, error)
	// Create assigns a fresh id and updatedAt when missing and persists the
	// task before returning it.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// UpdatePosition moves the marker, leaving every other field untouched.
	UpdatePosition(ctx context.Context, id string, xPct, yPct float64) (*domain.Task, error)
	// UpdateTitle renames the task, leaving every other field untouched.
	UpdateTitle(ctx context.Context, id, title string) (*domain.Task, error)
	// Delete removes the task document and its embedded checklist.
	Delete(ctx context.Context, id string) error
	// AddChecklistItem appends a not-started item and returns it.
	AddChecklistItem(ctx context.Context, id, text string) (*domain.ChecklistItem, error)
	// UpdateChecklistStatus replaces the status of the matching item only.
	// An absent item id fails with domain.ErrChecklistItemNotFound.
	UpdateChecklistStatus(ctx context.Context, id, itemID string, status domain.ChecklistStatus) (*domain.Task, error)
}
