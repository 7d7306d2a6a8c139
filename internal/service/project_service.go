package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/EshwarReddy13/tassot-backend/internal/db"
	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/socket"
	"github.com/EshwarReddy13/tassot-backend/internal/types"
)

// ============================================
// Project Service
// ============================================

type ProjectService interface {
	Create(ctx context.Context, ownerID, name string) (*repository.Project, error)
	GetByURL(ctx context.Context, projectURL, userID string) (*repository.Project, error)
	ListByUser(ctx context.Context, userID string) ([]*repository.Project, error)
	Update(ctx context.Context, projectURL, userID string, name *string) (*repository.Project, error)
	Delete(ctx context.Context, projectURL, userID string) error
	ListMembers(ctx context.Context, projectURL, userID string) ([]*repository.ProjectMember, error)
	RemoveMember(ctx context.Context, projectURL, actorID, memberID string) error
	GetStats(ctx context.Context, projectURL, userID string) ([]*repository.StatusCount, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	broadcaster *socket.Broadcaster
	redis       *db.RedisDB
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	broadcaster *socket.Broadcaster,
	redis *db.RedisDB,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		broadcaster: broadcaster,
		redis:       redis,
	}
}

// slugify turns a project name into a URL segment. A random suffix keeps
// slugs unique across projects with the same name.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "project"
	}

	suffix := make([]byte, 3)
	rand.Read(suffix)
	return slug + "-" + hex.EncodeToString(suffix)
}

func (s *projectService) Create(ctx context.Context, ownerID, name string) (*repository.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidf("project name is required")
	}

	project := &repository.Project{
		ProjectURL:  slugify(name),
		ProjectName: strings.TrimSpace(name),
		OwnerID:     ownerID,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	member := &repository.ProjectMember{
		ProjectID: project.ID,
		UserID:    ownerID,
		Role:      types.RoleOwner,
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	return project, nil
}

// requireMember loads the project by URL and checks the user belongs to it.
func (s *projectService) requireMember(ctx context.Context, projectURL, userID string) (*repository.Project, error) {
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

func (s *projectService) GetByURL(ctx context.Context, projectURL, userID string) (*repository.Project, error) {
	return s.requireMember(ctx, projectURL, userID)
}

func (s *projectService) ListByUser(ctx context.Context, userID string) ([]*repository.Project, error) {
	return s.projectRepo.FindByUserID(ctx, userID)
}

func (s *projectService) Update(ctx context.Context, projectURL, userID string, name *string) (*repository.Project, error) {
	project, err := s.requireMember(ctx, projectURL, userID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, forbidden("only the project owner can update the project")
	}

	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, invalidf("project name cannot be empty")
		}
		project.ProjectName = strings.TrimSpace(*name)
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastProjectUpdated(project.ID, map[string]interface{}{
			"id":           project.ID,
			"project_url":  project.ProjectURL,
			"project_name": project.ProjectName,
		}, userID)
	}

	return project, nil
}

func (s *projectService) Delete(ctx context.Context, projectURL, userID string) error {
	project, err := s.requireMember(ctx, projectURL, userID)
	if err != nil {
		return err
	}
	if project.OwnerID != userID {
		return forbidden("only the project owner can delete the project")
	}

	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		return err
	}

	s.invalidateStats(ctx, project.ID)
	return nil
}

func (s *projectService) ListMembers(ctx context.Context, projectURL, userID string) ([]*repository.ProjectMember, error) {
	project, err := s.requireMember(ctx, projectURL, userID)
	if err != nil {
		return nil, err
	}
	return s.projectRepo.FindMembers(ctx, project.ID)
}

func (s *projectService) RemoveMember(ctx context.Context, projectURL, actorID, memberID string) error {
	project, err := s.requireMember(ctx, projectURL, actorID)
	if err != nil {
		return err
	}
	if project.OwnerID != actorID {
		return forbidden("only the project owner can remove members")
	}
	if memberID == project.OwnerID {
		return invalidf("the project owner cannot be removed")
	}

	if err := s.projectRepo.RemoveMember(ctx, project.ID, memberID); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberRemoved(project.ID, memberID)
	}
	return nil
}

func statsCacheKey(projectID string) string {
	return "project:stats:" + projectID
}

func (s *projectService) GetStats(ctx context.Context, projectURL, userID string) ([]*repository.StatusCount, error) {
	project, err := s.requireMember(ctx, projectURL, userID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		var cached []*repository.StatusCount
		if err := s.redis.GetCache(ctx, statsCacheKey(project.ID), &cached); err == nil {
			return cached, nil
		}
	}

	counts, err := s.taskRepo.CountByStatus(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.SetCache(ctx, statsCacheKey(project.ID), counts, 5*time.Minute); err != nil {
			log.Printf("[Cache] failed to cache stats for project %s: %v", project.ID, err)
		}
	}

	return counts, nil
}

func (s *projectService) invalidateStats(ctx context.Context, projectID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.DeleteCache(ctx, statsCacheKey(projectID)); err != nil {
		log.Printf("[Cache] failed to invalidate stats for project %s: %v", projectID, err)
	}
}
