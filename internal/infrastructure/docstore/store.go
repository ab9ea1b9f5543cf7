// Package docstore manages the per-user embedded document databases. Each
// user gets an isolated bbolt file holding two schema-validated buckets,
// users and tasks. Every mutation runs inside a single bolt Update
// transaction, which is the atomic read-modify-write primitive the task
// repository relies on.
package docstore

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/planpin/backend/domain"
)

var (
	bucketUsers = []byte("users")
	bucketTasks = []byte("tasks")
)

// Store is one user's opened document database.
type Store struct {
	db     *bolt.DB
	path   string
	logger *zap.Logger
}

// Open opens (or creates) the database at path and ensures both collections
// exist. A database left behind by a previous run must open cleanly; if the
// first attempt fails the open is retried with a longer file-lock timeout,
// and as a last resort the file is destroyed and recreated. That final
// fallback loses data and is logged at error level, never silently.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		logger.Warn("store open failed, retrying with extended lock timeout",
			zap.String("path", path), zap.Error(err))
		db, err = bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	}
	if err != nil {
		logger.Error("store unreadable, destroying and recreating (data loss)",
			zap.String("path", path), zap.Error(err))
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrCodeUnavailable, "failed to recreate store", rmErr)
		}
		db, err = bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeUnavailable, "failed to open store", err)
		}
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketUsers); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketTasks)
		return err
	}); err != nil {
		db.Close()
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "failed to create collections", err)
	}

	return &Store{db: db, path: path, logger: logger}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutUser validates and upserts a user document.
func (s *Store) PutUser(user *domain.User) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	if err := user.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUsers).Put([]byte(user.ID), payload)
	})
}

// GetUser loads a user document by id.
func (s *Store) GetUser(id string) (*domain.User, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	var user *domain.User
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketUsers).Get([]byte(id))
		if raw == nil {
			return domain.ErrUserNotFound
		}
		user = &domain.User{}
		return json.Unmarshal(raw, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// PutTask validates and writes a task document.
func (s *Store) PutTask(task *domain.Task) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	if err := task.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).Put([]byte(task.ID), payload)
	})
}

// MutateTask applies fn to the stored task inside one Update transaction:
// read, modify, validate, write. An error from fn aborts the transaction
// and leaves the document untouched.
func (s *Store) MutateTask(id string, fn func(*domain.Task) error) (*domain.Task, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	var updated *domain.Task
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		var task domain.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return err
		}
		if err := fn(&task); err != nil {
			return err
		}
		if err := task.Validate(); err != nil {
			return err
		}
		payload, err := json.Marshal(&task)
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte(id), payload); err != nil {
			return err
		}
		updated = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask removes the task document, checklist and all.
func (s *Store) DeleteTask(id string) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrTaskNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

// ListTasks returns every task in the given user's partition. Order is
// unspecified.
func (s *Store) ListTasks(userID string) ([]domain.Task, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	tasks := make([]domain.Task, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTasks).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				s.logger.Warn("skipping undecodable task document", zap.ByteString("key", k), zap.Error(err))
				continue
			}
			if task.UserID == userID {
				tasks = append(tasks, task)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// TaskCount reports the number of task documents, for monitoring.
func (s *Store) TaskCount() (int, error) {
	if s == nil || s.db == nil {
		return 0, domain.ErrStoreUnavailable
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketTasks).Stats().KeyN
		return nil
	})
	return count, err
}
