package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/pomotrack/apiserver/types"
)

const (
	// DefaultTargetCount is used when a task is added without a usable count.
	DefaultTargetCount = 1

	// MaxCount bounds num and finish to the INTEGER columns that store them.
	MaxCount = math.MaxInt32
)

// TaskRepository defines persistence operations for tasks. Every method is
// scoped to the owning user.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID string) ([]types.Task, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	UpdateCompleted(ctx context.Context, userID, taskID string, completed int) error
	Delete(ctx context.Context, userID, taskID string) error
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
}

// TaskService encapsulates task use-cases. Every mutation returns the
// owner's full task list read back after the write.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) List(ctx context.Context, userID string) ([]types.Task, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []types.Task{}
	}
	return tasks, nil
}

// Add creates a task. A target of 0 means "not given" and becomes
// DefaultTargetCount.
func (s *TaskService) Add(ctx context.Context, userID, name string, target int) ([]types.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("task name is required")
	}
	if target < 0 || target > MaxCount {
		return nil, invalidInput("num must be a positive integer up to %d", MaxCount)
	}
	if target == 0 {
		target = DefaultTargetCount
	}

	if _, err := s.repo.Create(ctx, types.Task{
		UserID:      userID,
		Name:        name,
		TargetCount: target,
	}); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return s.List(ctx, userID)
}

// UpdateFinish sets the completed count of one of the user's tasks.
func (s *TaskService) UpdateFinish(ctx context.Context, userID, taskID string, finish int) ([]types.Task, error) {
	taskID, err := normalizeTaskID(taskID)
	if err != nil {
		return nil, err
	}
	if finish < 0 || finish > MaxCount {
		return nil, invalidInput("finish must be a non-negative integer up to %d", MaxCount)
	}
	if err := s.repo.UpdateCompleted(ctx, userID, taskID, finish); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.List(ctx, userID)
}

func (s *TaskService) Remove(ctx context.Context, userID, taskID string) ([]types.Task, error) {
	taskID, err := normalizeTaskID(taskID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID, taskID); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return s.List(ctx, userID)
}

// RemoveAll deletes every task of the user. It succeeds on an empty list.
func (s *TaskService) RemoveAll(ctx context.Context, userID string) ([]types.Task, error) {
	if _, err := s.repo.DeleteAllByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete tasks: %w", err)
	}
	return s.List(ctx, userID)
}

func normalizeTaskID(taskID string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(taskID))
	if err != nil {
		return "", invalidInput("invalid task id")
	}
	return id.String(), nil
}
