package task

import (
	"sync"

	"github.com/planpin/backend/domain"
)

// projection is the in-memory view of each user's task list. Mutations are
// applied here first for immediate reads, then reconciled against the store
// result: confirmed with the stored document, or rolled back to the prior
// value when the write fails.
type projection struct {
	mu     sync.RWMutex
	byUser map[string]map[string]domain.Task
}

func newProjection() *projection {
	return &projection{byUser: make(map[string]map[string]domain.Task)}
}

func (p *projection) replace(userID string, tasks []domain.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	partition := make(map[string]domain.Task, len(tasks))
	for _, t := range tasks {
		partition[t.ID] = t
	}
	p.byUser[userID] = partition
}

// get returns a copy of the projected task and whether it exists.
func (p *projection) get(userID, taskID string) (domain.Task, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	partition, ok := p.byUser[userID]
	if !ok {
		return domain.Task{}, false
	}
	t, ok := partition[taskID]
	return t, ok
}

func (p *projection) put(userID string, task domain.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	partition, ok := p.byUser[userID]
	if !ok {
		partition = make(map[string]domain.Task)
		p.byUser[userID] = partition
	}
	partition[task.ID] = task
}

func (p *projection) remove(userID, taskID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if partition, ok := p.byUser[userID]; ok {
		delete(partition, taskID)
	}
}

// taskLocks serializes writes per task id. Rapid successive updates to the
// same marker (a drag emitting position updates) queue behind each other
// instead of interleaving their read-modify-write cycles.
type taskLocks struct {
	mu    sync.Mutex
	locks map[string]*taskLock
}

type taskLock struct {
	mu   sync.Mutex
	refs int
}

func newTaskLocks() *taskLocks {
	return &taskLocks{locks: make(map[string]*taskLock)}
}

// acquire blocks until the caller holds the lock for id and returns the
// release func.
func (l *taskLocks) acquire(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &taskLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
