// Package storetest provides in-memory repositories with the same contracts
// as the postgres and mongo stores, for use in tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pomotrack/apiserver/internal/store"
	"github.com/pomotrack/apiserver/types"
)

// Users is an in-memory user repository.
type Users struct {
	mu    sync.Mutex
	users []types.User
}

func NewUsers() *Users {
	return &Users{}
}

func (u *Users) GetByID(_ context.Context, id string) (types.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (u *Users) GetByName(_ context.Context, name string) (types.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.Name == name {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (u *Users) Create(_ context.Context, user types.User) (types.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.users {
		if existing.Name == user.Name {
			return types.User{}, store.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = store.NewID()
	}
	user.CreatedAt = time.Now().UTC()
	u.users = append(u.users, user)
	return user, nil
}

// Tasks is an in-memory task repository. Lists are sorted the way the
// database stores sort them: by creation time, then id.
type Tasks struct {
	mu    sync.Mutex
	tasks []types.Task
	now   func() time.Time
}

func NewTasks() *Tasks {
	return &Tasks{now: time.Now}
}

// NewTasksWithClock returns a Tasks whose creation timestamps come from now.
func NewTasksWithClock(now func() time.Time) *Tasks {
	return &Tasks{now: now}
}

func (s *Tasks) ListByUser(_ context.Context, userID string) ([]types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Task, 0)
	for _, task := range s.tasks {
		if task.UserID == userID {
			out = append(out, task)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Tasks) Create(_ context.Context, task types.Task) (types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID == "" {
		task.ID = store.NewID()
	}
	task.CreatedAt = s.now().UTC()
	s.tasks = append(s.tasks, task)
	return task, nil
}

func (s *Tasks) UpdateCompleted(_ context.Context, userID, taskID string, completed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == taskID && s.tasks[i].UserID == userID {
			s.tasks[i].CompletedCount = completed
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Tasks) Delete(_ context.Context, userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, task := range s.tasks {
		if task.ID == taskID && task.UserID == userID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Tasks) DeleteAllByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	var removed int64
	for _, task := range s.tasks {
		if task.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, task)
	}
	s.tasks = kept
	return removed, nil
}

// Records is an in-memory record repository.
type Records struct {
	mu      sync.Mutex
	records []types.Record
}

func NewRecords() *Records {
	return &Records{}
}

func (s *Records) Create(_ context.Context, record types.Record) (types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = store.NewID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, record)
	return record, nil
}

func (s *Records) CreatedSince(_ context.Context, userID string, since time.Time) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Time
	for _, record := range s.records {
		if record.UserID == userID && !record.CreatedAt.Before(since) {
			out = append(out, record.CreatedAt)
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *Records) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
