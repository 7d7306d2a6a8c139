package socket

import "fmt"

// Broadcaster provides high-level methods for broadcasting events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func projectRoom(projectID string) string {
	return fmt.Sprintf("project:%s", projectID)
}

// SendNotification sends a notification to a specific user
func (b *Broadcaster) SendNotification(userID string, notification map[string]interface{}) {
	b.hub.SendToUser(userID, MessageNotification, notification)
}

// BroadcastTaskCreated broadcasts task creation to project members
func (b *Broadcaster) BroadcastTaskCreated(projectID string, task map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(projectRoom(projectID), MessageTaskCreated, task, excludeUserID)
}

// BroadcastTaskUpdated broadcasts task updates to project members
func (b *Broadcaster) BroadcastTaskUpdated(projectID string, task map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(projectRoom(projectID), MessageTaskUpdated, task, excludeUserID)
}

// BroadcastTaskDeleted broadcasts task deletion to project members
func (b *Broadcaster) BroadcastTaskDeleted(projectID, taskID string, excludeUserID string) {
	b.hub.SendToRoom(projectRoom(projectID), MessageTaskDeleted, map[string]interface{}{
		"taskId": taskID,
	}, excludeUserID)
}

// BroadcastTaskStatusChanged broadcasts a kanban column move to project members
func (b *Broadcaster) BroadcastTaskStatusChanged(projectID, taskID, oldStatus, newStatus string, excludeUserID string) {
	b.hub.SendToRoom(projectRoom(projectID), MessageTaskStatusChanged, map[string]interface{}{
		"taskId":    taskID,
		"oldStatus": oldStatus,
		"newStatus": newStatus,
	}, excludeUserID)
}

// BroadcastCommentAdded broadcasts a new comment to project members
func (b *Broadcaster) BroadcastCommentAdded(projectID string, comment map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(projectRoom(projectID), MessageCommentAdded, comment, excludeUserID)
}

// BroadcastCommentDeleted broadcasts comment deletion to project members
func (b *Broadcaster) BroadcastCommentDeleted(projectID, taskID, commentID string, excludeUserID string) {
	b.hub.SendToRoom(projectRoom(projectID), MessageCommentDeleted, map[string]interface{}{
		"taskId":    taskID,
		"commentId": commentID,
	}, excludeUserID)
}

// BroadcastMemberJoined announces a newly accepted member to the project room
func (b *Broadcaster) BroadcastMemberJoined(projectID string, member map[string]interface{}) {
	b.hub.SendToRoom(projectRoom(projectID), MessageMemberJoined, member, "")
}

// BroadcastMemberRemoved announces a member removal to the project room
func (b *Broadcaster) BroadcastMemberRemoved(projectID, userID string) {
	b.hub.SendToRoom(projectRoom(projectID), MessageMemberRemoved, map[string]interface{}{
		"userId": userID,
	}, "")
}

// BroadcastProjectUpdated broadcasts project settings changes to project members
func (b *Broadcaster) BroadcastProjectUpdated(projectID string, project map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(projectRoom(projectID), MessageProjectUpdated, project, excludeUserID)
}
