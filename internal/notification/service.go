package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/socket"
	"github.com/EshwarReddy13/tassot-backend/internal/types"
)

// Service persists notifications and pushes them to connected clients.
type Service struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

func NewService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

// SetBroadcaster wires the WebSocket broadcaster after the hub is running.
func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

func (s *Service) push(n *repository.Notification) {
	if s.broadcaster == nil {
		return
	}
	payload := map[string]interface{}{
		"id":         n.ID,
		"type":       n.Type,
		"message":    n.Message,
		"is_read":    n.IsRead,
		"created_at": n.CreatedAt,
	}
	if n.ProjectID != nil {
		payload["project_id"] = *n.ProjectID
	}
	if n.TaskID != nil {
		payload["task_id"] = *n.TaskID
	}
	s.broadcaster.SendNotification(n.UserID, payload)
}

// SendTaskAssigned notifies a user that a task was assigned to them.
func (s *Service) SendTaskAssigned(ctx context.Context, userID, taskTitle, taskID, projectID string) error {
	n := &repository.Notification{
		UserID:    userID,
		Type:      types.NotificationTaskAssigned,
		Message:   fmt.Sprintf("You were assigned to task %q", taskTitle),
		ProjectID: &projectID,
		TaskID:    &taskID,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("[Notification] failed to save task_assigned for user %s: %v", userID, err)
		return err
	}
	s.push(n)
	return nil
}

// SendTaskCommented notifies a user that someone commented on their task.
func (s *Service) SendTaskCommented(ctx context.Context, userID, commenterName, taskTitle, taskID, projectID string) error {
	n := &repository.Notification{
		UserID:    userID,
		Type:      types.NotificationTaskCommented,
		Message:   fmt.Sprintf("%s commented on task %q", commenterName, taskTitle),
		ProjectID: &projectID,
		TaskID:    &taskID,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("[Notification] failed to save task_commented for user %s: %v", userID, err)
		return err
	}
	s.push(n)
	return nil
}

// SendMemberJoined notifies project members that someone accepted an invitation.
func (s *Service) SendMemberJoined(ctx context.Context, userIDs []string, memberName, projectName, projectID string) error {
	for _, userID := range userIDs {
		n := &repository.Notification{
			UserID:    userID,
			Type:      types.NotificationMemberJoined,
			Message:   fmt.Sprintf("%s joined project %q", memberName, projectName),
			ProjectID: &projectID,
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			log.Printf("[Notification] failed to save member_joined for user %s: %v", userID, err)
			continue
		}
		s.push(n)
	}
	return nil
}
