package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/EshwarReddy13/tassot-backend/internal/notification"
	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/socket"
)

// ============================================
// Comment Service
// ============================================

type CommentService interface {
	ListByTask(ctx context.Context, taskID, userID string) ([]*repository.Comment, error)
	Create(ctx context.Context, taskID, userID, content string) (*repository.Comment, error)
	Update(ctx context.Context, commentID, userID, content string) (*repository.Comment, error)
	Delete(ctx context.Context, commentID, userID string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	taskRepo repository.TaskRepository,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
	}
}

// requireTaskAccess checks project membership before touching comments.
// Callers without access get a forbidden error and no further queries run.
func (s *commentService) requireTaskAccess(ctx context.Context, taskID, userID string) error {
	hasAccess, err := s.taskRepo.HasAccess(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if !hasAccess {
		return forbidden("you do not have access to this task")
	}
	return nil
}

func (s *commentService) ListByTask(ctx context.Context, taskID, userID string) ([]*repository.Comment, error) {
	if err := s.requireTaskAccess(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.commentRepo.FindByTaskID(ctx, taskID)
}

func (s *commentService) Create(ctx context.Context, taskID, userID, content string) (*repository.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalidf("comment content is required")
	}

	if err := s.requireTaskAccess(ctx, taskID, userID); err != nil {
		return nil, err
	}

	comment := &repository.Comment{
		TaskID:  taskID,
		UserID:  userID,
		Content: strings.TrimSpace(content),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	// Re-fetch so the response carries the author's name.
	hydrated, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created comment: %w", err)
	}
	if hydrated == nil {
		return nil, fmt.Errorf("created comment %s not found", comment.ID)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err == nil && task != nil {
		if s.broadcaster != nil {
			s.broadcaster.BroadcastCommentAdded(task.ProjectID, commentPayload(hydrated), userID)
		}
		if s.notifSvc != nil && task.AssigneeID != nil && *task.AssigneeID != userID {
			commenterName := ""
			if hydrated.Author != nil {
				commenterName = hydrated.Author.DisplayName()
			}
			if err := s.notifSvc.SendTaskCommented(ctx, *task.AssigneeID, commenterName, task.Title, task.ID, task.ProjectID); err != nil {
				log.Printf("[Comment] failed to notify assignee for task %s: %v", taskID, err)
			}
		}
	}

	return hydrated, nil
}

func (s *commentService) Update(ctx context.Context, commentID, userID, content string) (*repository.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalidf("comment content is required")
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, notFound("comment not found")
	}
	if comment.UserID != userID {
		return nil, forbidden("only the comment author can edit it")
	}

	comment.Content = strings.TrimSpace(content)
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, commentID, userID string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return notFound("comment not found")
	}
	if comment.UserID != userID {
		return forbidden("only the comment author can delete it")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}

	if s.broadcaster != nil {
		if task, err := s.taskRepo.FindByID(ctx, comment.TaskID); err == nil && task != nil {
			s.broadcaster.BroadcastCommentDeleted(task.ProjectID, comment.TaskID, commentID, userID)
		}
	}
	return nil
}

func commentPayload(comment *repository.Comment) map[string]interface{} {
	payload := map[string]interface{}{
		"id":         comment.ID,
		"task_id":    comment.TaskID,
		"user_id":    comment.UserID,
		"content":    comment.Content,
		"created_at": comment.CreatedAt.Format(time.RFC3339),
	}
	if comment.Author != nil {
		payload["author_name"] = comment.Author.DisplayName()
	}
	return payload
}
