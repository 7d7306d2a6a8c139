package service

import (
	"context"
	"testing"

	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

type fakeTaskRepo struct {
	repository.TaskRepository

	hasAccess bool
	task      *repository.Task

	accessCalls int
	findCalls   int
}

func (f *fakeTaskRepo) HasAccess(ctx context.Context, taskID, userID string) (bool, error) {
	f.accessCalls++
	return f.hasAccess, nil
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, id string) (*repository.Task, error) {
	f.findCalls++
	return f.task, nil
}

type fakeCommentRepo struct {
	repository.CommentRepository

	comments []*repository.Comment
	byID     *repository.Comment

	createCalls int
	listCalls   int
	updateCalls int
	deleteCalls int
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *repository.Comment) error {
	f.createCalls++
	comment.ID = "comment-1"
	f.byID = &repository.Comment{
		ID:      comment.ID,
		TaskID:  comment.TaskID,
		UserID:  comment.UserID,
		Content: comment.Content,
		Author:  &repository.User{ID: comment.UserID, FirstName: "Dana", LastName: "Reyes"},
	}
	return nil
}

func (f *fakeCommentRepo) FindByID(ctx context.Context, id string) (*repository.Comment, error) {
	return f.byID, nil
}

func (f *fakeCommentRepo) FindByTaskID(ctx context.Context, taskID string) ([]*repository.Comment, error) {
	f.listCalls++
	return f.comments, nil
}

func (f *fakeCommentRepo) Update(ctx context.Context, comment *repository.Comment) error {
	f.updateCalls++
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	f.deleteCalls++
	return nil
}

func TestCommentCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("blank content fails before any database call", func(t *testing.T) {
		commentRepo := &fakeCommentRepo{}
		taskRepo := &fakeTaskRepo{hasAccess: true}
		svc := NewCommentService(commentRepo, taskRepo, nil, nil)

		_, err := svc.Create(ctx, "task-1", "user-1", "   \t ")
		require.ErrorIs(t, err, ErrInvalidInput)
		require.Zero(t, taskRepo.accessCalls)
		require.Zero(t, commentRepo.createCalls)
	})

	t.Run("no project access short-circuits before the insert", func(t *testing.T) {
		commentRepo := &fakeCommentRepo{}
		taskRepo := &fakeTaskRepo{hasAccess: false}
		svc := NewCommentService(commentRepo, taskRepo, nil, nil)

		_, err := svc.Create(ctx, "task-1", "outsider", "looks good")
		require.ErrorIs(t, err, ErrForbidden)
		require.Equal(t, 1, taskRepo.accessCalls)
		require.Zero(t, commentRepo.createCalls)
	})

	t.Run("success returns the hydrated comment with author name", func(t *testing.T) {
		commentRepo := &fakeCommentRepo{}
		taskRepo := &fakeTaskRepo{hasAccess: true, task: &repository.Task{
			ID:        "task-1",
			ProjectID: "proj-1",
			Title:     "Audit existing landing page",
		}}
		svc := NewCommentService(commentRepo, taskRepo, nil, nil)

		comment, err := svc.Create(ctx, "task-1", "user-1", "  looks good  ")
		require.NoError(t, err)
		require.Equal(t, "comment-1", comment.ID)
		require.Equal(t, "looks good", comment.Content)
		require.NotNil(t, comment.Author)
		require.Equal(t, "Dana Reyes", comment.Author.DisplayName())
	})
}

func TestCommentListByTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no access blocks the listing query", func(t *testing.T) {
		commentRepo := &fakeCommentRepo{}
		taskRepo := &fakeTaskRepo{hasAccess: false}
		svc := NewCommentService(commentRepo, taskRepo, nil, nil)

		_, err := svc.ListByTask(ctx, "task-1", "outsider")
		require.ErrorIs(t, err, ErrForbidden)
		require.Zero(t, commentRepo.listCalls)
	})

	t.Run("members get the comments", func(t *testing.T) {
		commentRepo := &fakeCommentRepo{comments: []*repository.Comment{
			{ID: "c1", Content: "first"},
			{ID: "c2", Content: "second"},
		}}
		taskRepo := &fakeTaskRepo{hasAccess: true}
		svc := NewCommentService(commentRepo, taskRepo, nil, nil)

		comments, err := svc.ListByTask(ctx, "task-1", "user-1")
		require.NoError(t, err)
		require.Len(t, comments, 2)
	})
}

func TestCommentUpdateAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("only the author can edit", func(t *testing.T) {
		commentRepo := &fakeCommentRepo{byID: &repository.Comment{ID: "c1", UserID: "author-1", Content: "old"}}
		svc := NewCommentService(commentRepo, &fakeTaskRepo{hasAccess: true}, nil, nil)

		_, err := svc.Update(ctx, "c1", "someone-else", "new text")
		require.ErrorIs(t, err, ErrForbidden)
		require.Zero(t, commentRepo.updateCalls)
	})

	t.Run("missing comment is not found", func(t *testing.T) {
		svc := NewCommentService(&fakeCommentRepo{}, &fakeTaskRepo{hasAccess: true}, nil, nil)

		err := svc.Delete(ctx, "ghost", "user-1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("author deletes their comment", func(t *testing.T) {
		commentRepo := &fakeCommentRepo{byID: &repository.Comment{ID: "c1", UserID: "author-1", TaskID: "task-1"}}
		svc := NewCommentService(commentRepo, &fakeTaskRepo{hasAccess: true}, nil, nil)

		err := svc.Delete(ctx, "c1", "author-1")
		require.NoError(t, err)
		require.Equal(t, 1, commentRepo.deleteCalls)
	})
}
