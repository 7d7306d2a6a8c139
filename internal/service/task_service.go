package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/EshwarReddy13/tassot-backend/internal/db"
	"github.com/EshwarReddy13/tassot-backend/internal/notification"
	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/socket"
	"github.com/EshwarReddy13/tassot-backend/internal/types"
)

// ============================================
// Task Service
// ============================================

type TaskInput struct {
	Title       string
	Description *string
	Status      string
	Priority    string
	AssigneeID  *string
	DueDate     *time.Time
}

type TaskService interface {
	Create(ctx context.Context, projectURL, creatorID string, input TaskInput) (*repository.Task, error)
	GetByID(ctx context.Context, taskID, userID string) (*repository.Task, error)
	ListByProject(ctx context.Context, projectURL, userID string) ([]*repository.Task, error)
	Update(ctx context.Context, taskID, userID string, input TaskInput) (*repository.Task, error)
	UpdateStatus(ctx context.Context, taskID, userID, status string) (*repository.Task, error)
	Assign(ctx context.Context, taskID, userID string, assigneeID *string) (*repository.Task, error)
	Delete(ctx context.Context, taskID, userID string) error
}

type taskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
	redis       *db.RedisDB
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
	redis *db.RedisDB,
) TaskService {
	return &taskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
		redis:       redis,
	}
}

// requireMemberProject resolves a project URL and checks membership.
func (s *taskService) requireMemberProject(ctx context.Context, projectURL, userID string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByURL(ctx, projectURL)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, notFound("project not found")
	}

	isMember, err := s.projectRepo.IsMember(ctx, project.ID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, forbidden("you do not have access to this project")
	}
	return project, nil
}

// requireTaskAccess loads a task and checks the user belongs to its project.
func (s *taskService) requireTaskAccess(ctx context.Context, taskID, userID string) (*repository.Task, error) {
	hasAccess, err := s.taskRepo.HasAccess(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, forbidden("you do not have access to this task")
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFound("task not found")
	}
	return task, nil
}

func validateTaskInput(input TaskInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return invalidf("task title is required")
	}
	if input.Status != "" && !types.IsValidTaskStatus(input.Status) {
		return invalidf("invalid task status")
	}
	if input.Priority != "" && !types.IsValidPriority(input.Priority) {
		return invalidf("invalid task priority")
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, projectURL, creatorID string, input TaskInput) (*repository.Task, error) {
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}

	project, err := s.requireMemberProject(ctx, projectURL, creatorID)
	if err != nil {
		return nil, err
	}

	if input.AssigneeID != nil {
		isMember, err := s.projectRepo.IsMember(ctx, project.ID, *input.AssigneeID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, invalidf("assignee is not a member of this project")
		}
	}

	status := input.Status
	if status == "" {
		status = types.StatusTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}

	task := &repository.Task{
		ProjectID:   project.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
		CreatedBy:   creatorID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.invalidateStats(ctx, project.ID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTaskCreated(project.ID, taskPayload(task), creatorID)
	}

	if task.AssigneeID != nil && *task.AssigneeID != creatorID && s.notifSvc != nil {
		if err := s.notifSvc.SendTaskAssigned(ctx, *task.AssigneeID, task.Title, task.ID, project.ID); err != nil {
			log.Printf("[Task] failed to notify assignee for task %s: %v", task.ID, err)
		}
	}

	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, taskID, userID string) (*repository.Task, error) {
	return s.requireTaskAccess(ctx, taskID, userID)
}

func (s *taskService) ListByProject(ctx context.Context, projectURL, userID string) ([]*repository.Task, error) {
	project, err := s.requireMemberProject(ctx, projectURL, userID)
	if err != nil {
		return nil, err
	}
	return s.taskRepo.FindByProjectID(ctx, project.ID)
}

func (s *taskService) Update(ctx context.Context, taskID, userID string, input TaskInput) (*repository.Task, error) {
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}

	task, err := s.requireTaskAccess(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	task.Title = strings.TrimSpace(input.Title)
	task.Description = input.Description
	if input.Status != "" {
		task.Status = input.Status
	}
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	task.AssigneeID = input.AssigneeID
	task.DueDate = input.DueDate

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	if oldStatus != task.Status {
		s.invalidateStats(ctx, task.ProjectID)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTaskUpdated(task.ProjectID, taskPayload(task), userID)
	}

	return task, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, taskID, userID, status string) (*repository.Task, error) {
	if !types.IsValidTaskStatus(status) {
		return nil, invalidf("invalid task status")
	}

	task, err := s.requireTaskAccess(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	if oldStatus == status {
		return task, nil
	}

	if err := s.taskRepo.UpdateStatus(ctx, taskID, status); err != nil {
		return nil, err
	}
	task.Status = status

	s.invalidateStats(ctx, task.ProjectID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTaskStatusChanged(task.ProjectID, taskID, oldStatus, status, userID)
	}

	return task, nil
}

func (s *taskService) Assign(ctx context.Context, taskID, userID string, assigneeID *string) (*repository.Task, error) {
	task, err := s.requireTaskAccess(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		isMember, err := s.projectRepo.IsMember(ctx, task.ProjectID, *assigneeID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, invalidf("assignee is not a member of this project")
		}
	}

	if err := s.taskRepo.UpdateAssignee(ctx, taskID, assigneeID); err != nil {
		return nil, err
	}
	task.AssigneeID = assigneeID

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTaskUpdated(task.ProjectID, taskPayload(task), userID)
	}

	if assigneeID != nil && *assigneeID != userID && s.notifSvc != nil {
		if err := s.notifSvc.SendTaskAssigned(ctx, *assigneeID, task.Title, task.ID, task.ProjectID); err != nil {
			log.Printf("[Task] failed to notify assignee for task %s: %v", task.ID, err)
		}
	}

	return task, nil
}

func (s *taskService) Delete(ctx context.Context, taskID, userID string) error {
	task, err := s.requireTaskAccess(ctx, taskID, userID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}

	s.invalidateStats(ctx, task.ProjectID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTaskDeleted(task.ProjectID, taskID, userID)
	}
	return nil
}

func (s *taskService) invalidateStats(ctx context.Context, projectID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.DeleteCache(ctx, statsCacheKey(projectID)); err != nil {
		log.Printf("[Cache] failed to invalidate stats for project %s: %v", projectID, err)
	}
}

func taskPayload(task *repository.Task) map[string]interface{} {
	payload := map[string]interface{}{
		"id":         task.ID,
		"project_id": task.ProjectID,
		"title":      task.Title,
		"status":     task.Status,
		"priority":   task.Priority,
		"created_by": task.CreatedBy,
	}
	if task.Description != nil {
		payload["description"] = *task.Description
	}
	if task.AssigneeID != nil {
		payload["assignee_id"] = *task.AssigneeID
	}
	if task.DueDate != nil {
		payload["due_date"] = task.DueDate.Format(time.RFC3339)
	}
	return payload
}
