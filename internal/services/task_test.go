package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pomotrack/apiserver/internal/store/storetest"
	"github.com/pomotrack/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService_AddKeepsOrder(t *testing.T) {
	svc := NewTaskService(storetest.NewTasks())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "write report", 4)
	require.NoError(t, err)
	tasks, err := svc.Add(ctx, "u1", "review", 0)
	require.NoError(t, err)

	require.Len(t, tasks, 2)
	assert.Equal(t, "write report", tasks[0].Name)
	assert.Equal(t, 4, tasks[0].TargetCount)
	assert.Equal(t, "review", tasks[1].Name)
	assert.Equal(t, DefaultTargetCount, tasks[1].TargetCount)
	assert.Zero(t, tasks[1].CompletedCount)
}

func TestTaskService_AddValidation(t *testing.T) {
	svc := NewTaskService(storetest.NewTasks())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "   ", 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Add(ctx, "u1", "task", -2)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskService_ListEmpty(t *testing.T) {
	svc := NewTaskService(storetest.NewTasks())

	tasks, err := svc.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskService_UpdateFinish(t *testing.T) {
	svc := NewTaskService(storetest.NewTasks())
	ctx := context.Background()

	tasks, err := svc.Add(ctx, "u1", "focus", 3)
	require.NoError(t, err)
	id := tasks[0].ID

	tasks, err = svc.UpdateFinish(ctx, "u1", id, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, tasks[0].CompletedCount)

	_, err = svc.UpdateFinish(ctx, "u1", id, -1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateFinish(ctx, "u1", "not-a-uuid", 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateFinish(ctx, "u1", uuid.NewString(), 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTaskService_OwnerScoping(t *testing.T) {
	svc := NewTaskService(storetest.NewTasks())
	ctx := context.Background()

	aliceTasks, err := svc.Add(ctx, "alice", "mine", 1)
	require.NoError(t, err)
	id := aliceTasks[0].ID

	_, err = svc.UpdateFinish(ctx, "bob", id, 5)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Remove(ctx, "bob", id)
	require.ErrorIs(t, err, ErrNotFound)

	bobTasks, err := svc.RemoveAll(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobTasks)

	aliceTasks, err = svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceTasks, 1)
	assert.Zero(t, aliceTasks[0].CompletedCount)
}

func TestTaskService_Remove(t *testing.T) {
	svc := NewTaskService(storetest.NewTasks())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "a", 1)
	require.NoError(t, err)
	tasks, err := svc.Add(ctx, "u1", "b", 1)
	require.NoError(t, err)

	tasks, err = svc.Remove(ctx, "u1", tasks[0].ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].Name)

	tasks, err = svc.RemoveAll(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = svc.RemoveAll(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskService_AddSameTimestampKeepsOrder(t *testing.T) {
	frozen := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	svc := NewTaskService(storetest.NewTasksWithClock(func() time.Time { return frozen }))
	ctx := context.Background()

	var tasks []types.Task
	for i := 0; i < 50; i++ {
		var err error
		tasks, err = svc.Add(ctx, "u1", fmt.Sprintf("task-%02d", i), 1)
		require.NoError(t, err)
	}

	require.Len(t, tasks, 50)
	for i, task := range tasks {
		assert.Equal(t, fmt.Sprintf("task-%02d", i), task.Name)
	}
}

func TestTaskService_CountUpperBound(t *testing.T) {
	svc := NewTaskService(storetest.NewTasks())
	ctx := context.Background()

	tasks, err := svc.Add(ctx, "u1", "at limit", MaxCount)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, tasks[0].TargetCount)

	_, err = svc.Add(ctx, "u1", "too many", MaxCount+1)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Add(ctx, "u1", "way too many", 3000000000)
	require.ErrorIs(t, err, ErrInvalidInput)

	id := tasks[0].ID
	tasks, err = svc.UpdateFinish(ctx, "u1", id, MaxCount)
	require.NoError(t, err)
	assert.Equal(t, MaxCount, tasks[0].CompletedCount)

	_, err = svc.UpdateFinish(ctx, "u1", id, 3000000000)
	require.ErrorIs(t, err, ErrInvalidInput)

	tasks, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, MaxCount, tasks[0].CompletedCount)
}
