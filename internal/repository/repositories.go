package repository

type Repositories struct {
	UserRepo         UserRepository
	ProjectRepo      ProjectRepository
	InvitationRepo   InvitationRepository
	TaskRepo         TaskRepository
	CommentRepo      CommentRepository
	NotificationRepo NotificationRepository
}

func NewRepositories(db DB) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(db),
		ProjectRepo:      NewProjectRepository(db),
		InvitationRepo:   NewInvitationRepository(db),
		TaskRepo:         NewTaskRepository(db),
		CommentRepo:      NewCommentRepository(db),
		NotificationRepo: NewNotificationRepository(db),
	}
}
