package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/types"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^[a-z0-9-]+-[0-9a-f]{6}$`)

	tests := []struct {
		name   string
		input  string
		prefix string
	}{
		{"plain name", "Website Redesign", "website-redesign-"},
		{"punctuation stripped", "Q3 Launch! (v2)", "q3-launch-v2-"},
		{"only symbols falls back", "!!!", "project-"},
		{"underscores become dashes", "my_cool_project", "my-cool-project-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug := slugify(tt.input)
			require.True(t, pattern.MatchString(slug), "slug %q", slug)
			require.Contains(t, slug, tt.prefix)
		})
	}

	t.Run("same name gives distinct slugs", func(t *testing.T) {
		require.NotEqual(t, slugify("Website Redesign"), slugify("Website Redesign"))
	})
}

type fakeCreateProjectRepo struct {
	repository.ProjectRepository

	created *repository.Project
	member  *repository.ProjectMember
}

func (f *fakeCreateProjectRepo) Create(ctx context.Context, project *repository.Project) error {
	project.ID = "proj-1"
	f.created = project
	return nil
}

func (f *fakeCreateProjectRepo) AddMember(ctx context.Context, member *repository.ProjectMember) error {
	f.member = member
	return nil
}

func TestProjectCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("blank name is rejected", func(t *testing.T) {
		svc := NewProjectService(&fakeCreateProjectRepo{}, nil, nil, nil, nil)

		_, err := svc.Create(ctx, "owner-1", "   ")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("creator becomes the owner member", func(t *testing.T) {
		repo := &fakeCreateProjectRepo{}
		svc := NewProjectService(repo, nil, nil, nil, nil)

		project, err := svc.Create(ctx, "owner-1", "  Website Redesign ")
		require.NoError(t, err)
		require.Equal(t, "Website Redesign", project.ProjectName)
		require.Equal(t, "owner-1", project.OwnerID)
		require.NotEmpty(t, project.ProjectURL)

		require.NotNil(t, repo.member)
		require.Equal(t, "proj-1", repo.member.ProjectID)
		require.Equal(t, "owner-1", repo.member.UserID)
		require.Equal(t, types.RoleOwner, repo.member.Role)
	})
}

func TestProjectOwnerOnlyOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("member cannot update the project", func(t *testing.T) {
		projRepo := &fakeProjectRepo{project: ownedProject(), isMember: true}
		svc := NewProjectService(projRepo, nil, nil, nil, nil)

		name := "New Name"
		_, err := svc.Update(ctx, "website-redesign-a1b2c3", "member-2", &name)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("non-member cannot even read it", func(t *testing.T) {
		projRepo := &fakeProjectRepo{project: ownedProject(), isMember: false}
		svc := NewProjectService(projRepo, nil, nil, nil, nil)

		_, err := svc.GetByURL(ctx, "website-redesign-a1b2c3", "outsider")
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("owner cannot be removed from their own project", func(t *testing.T) {
		projRepo := &fakeProjectRepo{project: ownedProject(), isMember: true}
		svc := NewProjectService(projRepo, nil, nil, nil, nil)

		err := svc.RemoveMember(ctx, "website-redesign-a1b2c3", "owner-1", "owner-1")
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}
