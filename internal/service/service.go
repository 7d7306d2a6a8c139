package service

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/EshwarReddy13/tassot-backend/internal/config"
	"github.com/EshwarReddy13/tassot-backend/internal/db"
	"github.com/EshwarReddy13/tassot-backend/internal/email"
	"github.com/EshwarReddy13/tassot-backend/internal/notification"
	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/socket"
)

// Error kinds. Handlers map these to HTTP statuses; anything that does
// not wrap one of them is treated as an internal failure.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
)

// Error carries a user-facing message tagged with one of the error kinds.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func invalidf(msg string) error  { return &Error{Kind: ErrInvalidInput, Message: msg} }
func forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }
func notFound(msg string) error  { return &Error{Kind: ErrNotFound, Message: msg} }
func conflict(msg string) error  { return &Error{Kind: ErrConflict, Message: msg} }

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func isValidEmail(e string) bool {
	_, err := mail.ParseAddress(e)
	return err == nil
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	User         UserService
	Project      ProjectService
	Task         TaskService
	Comment      CommentService
	Invitation   InvitationService
	Notification NotificationService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
	Redis       *db.RedisDB
}

func NewServices(deps *ServiceDeps) *Services {
	return &Services{
		Auth: NewAuthService(deps.Config, deps.Repos.UserRepo),
		User: NewUserService(deps.Repos.UserRepo),
		Project: NewProjectService(
			deps.Repos.ProjectRepo,
			deps.Repos.TaskRepo,
			deps.Repos.UserRepo,
			deps.Broadcaster,
			deps.Redis,
		),
		Task: NewTaskService(
			deps.Repos.TaskRepo,
			deps.Repos.ProjectRepo,
			deps.NotifSvc,
			deps.Broadcaster,
			deps.Redis,
		),
		Comment: NewCommentService(
			deps.Repos.CommentRepo,
			deps.Repos.TaskRepo,
			deps.NotifSvc,
			deps.Broadcaster,
		),
		Invitation: NewInvitationService(
			deps.Config,
			deps.Repos.InvitationRepo,
			deps.Repos.ProjectRepo,
			deps.Repos.UserRepo,
			deps.NotifSvc,
			deps.EmailSvc,
			deps.Broadcaster,
		),
		Notification: NewNotificationService(deps.Repos.NotificationRepo),
	}
}
