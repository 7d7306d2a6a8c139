package types

// Task Status values (kanban board columns)
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusInReview   = "in_review"
	StatusDone       = "done"
)

// Task Priority values
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
	PriorityNone   = "none"
)

// Project Member Roles
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Invitation Status values
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
)

// Notification types
const (
	NotificationTaskAssigned  = "task_assigned"
	NotificationTaskCommented = "task_commented"
	NotificationMemberJoined  = "member_joined"
)

// Valid values for validation
var ValidTaskStatuses = []string{
	StatusTodo, StatusInProgress, StatusInReview, StatusDone,
}

var ValidPriorities = []string{
	PriorityUrgent, PriorityHigh, PriorityMedium,
	PriorityLow, PriorityNone,
}

var ValidMemberRoles = []string{RoleOwner, RoleMember}

// Helper functions for validation
func IsValidTaskStatus(status string) bool {
	for _, s := range ValidTaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidPriority(priority string) bool {
	for _, p := range ValidPriorities {
		if p == priority {
			return true
		}
	}
	return false
}

func IsValidMemberRole(role string) bool {
	for _, r := range ValidMemberRoles {
		if r == role {
			return true
		}
	}
	return false
}
