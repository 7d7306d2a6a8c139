package service

import (
	"context"
	"testing"

	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/types"
	"github.com/stretchr/testify/require"
)

type fakeTaskStore struct {
	repository.TaskRepository

	hasAccess bool
	task      *repository.Task

	createCalls int
	statusCalls int
	lastStatus  string
}

func (f *fakeTaskStore) HasAccess(ctx context.Context, taskID, userID string) (bool, error) {
	return f.hasAccess, nil
}

func (f *fakeTaskStore) FindByID(ctx context.Context, id string) (*repository.Task, error) {
	return f.task, nil
}

func (f *fakeTaskStore) Create(ctx context.Context, task *repository.Task) error {
	f.createCalls++
	task.ID = "task-1"
	return nil
}

func (f *fakeTaskStore) UpdateStatus(ctx context.Context, id, status string) error {
	f.statusCalls++
	f.lastStatus = status
	return nil
}

func TestTaskCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("blank title is rejected before lookups", func(t *testing.T) {
		taskRepo := &fakeTaskStore{}
		projRepo := &fakeProjectRepo{project: ownedProject(), isMember: true}
		svc := NewTaskService(taskRepo, projRepo, nil, nil, nil)

		_, err := svc.Create(ctx, "website-redesign-a1b2c3", "user-1", TaskInput{Title: "  "})
		require.ErrorIs(t, err, ErrInvalidInput)
		require.Zero(t, projRepo.findByURLCalls)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		svc := NewTaskService(&fakeTaskStore{}, &fakeProjectRepo{project: ownedProject(), isMember: true}, nil, nil, nil)

		_, err := svc.Create(ctx, "website-redesign-a1b2c3", "user-1", TaskInput{Title: "Task", Status: "blocked"})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("non-member cannot create tasks", func(t *testing.T) {
		taskRepo := &fakeTaskStore{}
		svc := NewTaskService(taskRepo, &fakeProjectRepo{project: ownedProject(), isMember: false}, nil, nil, nil)

		_, err := svc.Create(ctx, "website-redesign-a1b2c3", "outsider", TaskInput{Title: "Task"})
		require.ErrorIs(t, err, ErrForbidden)
		require.Zero(t, taskRepo.createCalls)
	})

	t.Run("defaults apply when status and priority are omitted", func(t *testing.T) {
		taskRepo := &fakeTaskStore{}
		svc := NewTaskService(taskRepo, &fakeProjectRepo{project: ownedProject(), isMember: true}, nil, nil, nil)

		task, err := svc.Create(ctx, "website-redesign-a1b2c3", "user-1", TaskInput{Title: "New task"})
		require.NoError(t, err)
		require.Equal(t, types.StatusTodo, task.Status)
		require.Equal(t, types.PriorityMedium, task.Priority)
		require.Equal(t, "proj-1", task.ProjectID)
	})
}

func TestTaskUpdateStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalid status fails before the access check", func(t *testing.T) {
		svc := NewTaskService(&fakeTaskStore{}, &fakeProjectRepo{}, nil, nil, nil)

		_, err := svc.UpdateStatus(ctx, "task-1", "user-1", "parked")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("no access is forbidden", func(t *testing.T) {
		svc := NewTaskService(&fakeTaskStore{hasAccess: false}, &fakeProjectRepo{}, nil, nil, nil)

		_, err := svc.UpdateStatus(ctx, "task-1", "outsider", types.StatusDone)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		taskRepo := &fakeTaskStore{hasAccess: true, task: &repository.Task{ID: "task-1", Status: types.StatusDone}}
		svc := NewTaskService(taskRepo, &fakeProjectRepo{}, nil, nil, nil)

		task, err := svc.UpdateStatus(ctx, "task-1", "user-1", types.StatusDone)
		require.NoError(t, err)
		require.Equal(t, types.StatusDone, task.Status)
		require.Zero(t, taskRepo.statusCalls)
	})

	t.Run("status change persists", func(t *testing.T) {
		taskRepo := &fakeTaskStore{hasAccess: true, task: &repository.Task{ID: "task-1", ProjectID: "proj-1", Status: types.StatusTodo}}
		svc := NewTaskService(taskRepo, &fakeProjectRepo{}, nil, nil, nil)

		task, err := svc.UpdateStatus(ctx, "task-1", "user-1", types.StatusInProgress)
		require.NoError(t, err)
		require.Equal(t, types.StatusInProgress, task.Status)
		require.Equal(t, 1, taskRepo.statusCalls)
		require.Equal(t, types.StatusInProgress, taskRepo.lastStatus)
	})
}
