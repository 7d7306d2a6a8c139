package seed

import (
	"context"
	"log"
	"time"

	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// SeedData creates a small development dataset: three users, one project
// with two members, a handful of tasks, and a pending invitation.
func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	existing, err := repos.UserRepo.FindByEmail(ctx, "eshwar@tassot.app")
	if err != nil {
		log.Printf("[Seed] Skipping, database not reachable: %v", err)
		return
	}
	if existing != nil {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] Creating development data...")

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	eshwar := &repository.User{
		Email:        "eshwar@tassot.app",
		PasswordHash: string(password),
		FirstName:    "Eshwar",
		LastName:     "Reddy",
	}
	repos.UserRepo.Create(ctx, eshwar)

	priya := &repository.User{
		Email:        "priya@tassot.app",
		PasswordHash: string(password),
		FirstName:    "Priya",
		LastName:     "Sharma",
	}
	repos.UserRepo.Create(ctx, priya)

	marcus := &repository.User{
		Email:        "marcus@tassot.app",
		PasswordHash: string(password),
		FirstName:    "Marcus",
		LastName:     "Webb",
	}
	repos.UserRepo.Create(ctx, marcus)

	project := &repository.Project{
		ProjectURL:  "website-redesign-a1b2c3",
		ProjectName: "Website Redesign",
		OwnerID:     eshwar.ID,
	}
	repos.ProjectRepo.Create(ctx, project)

	repos.ProjectRepo.AddMember(ctx, &repository.ProjectMember{
		ProjectID: project.ID,
		UserID:    eshwar.ID,
		Role:      types.RoleOwner,
	})
	repos.ProjectRepo.AddMember(ctx, &repository.ProjectMember{
		ProjectID: project.ID,
		UserID:    priya.ID,
		Role:      types.RoleMember,
	})

	desc := "Audit the current landing page and list everything that needs replacing."
	tasks := []*repository.Task{
		{
			ProjectID:   project.ID,
			Title:       "Audit existing landing page",
			Description: &desc,
			Status:      types.StatusDone,
			Priority:    types.PriorityHigh,
			AssigneeID:  &priya.ID,
			CreatedBy:   eshwar.ID,
		},
		{
			ProjectID: project.ID,
			Title:     "Draft new color palette",
			Status:    types.StatusInProgress,
			Priority:  types.PriorityMedium,
			CreatedBy: eshwar.ID,
		},
		{
			ProjectID: project.ID,
			Title:     "Set up staging environment",
			Status:    types.StatusTodo,
			Priority:  types.PriorityUrgent,
			CreatedBy: priya.ID,
		},
	}
	for _, t := range tasks {
		repos.TaskRepo.Create(ctx, t)
	}

	repos.CommentRepo.Create(ctx, &repository.Comment{
		TaskID:  tasks[0].ID,
		UserID:  priya.ID,
		Content: "Audit finished, notes are in the shared doc.",
	})

	repos.InvitationRepo.Create(ctx, &repository.Invitation{
		ProjectID:    project.ID,
		InviteeEmail: marcus.Email,
		InviterID:    eshwar.ID,
		ExpiresAt:    time.Now().Add(14 * 24 * time.Hour),
	})

	log.Println("[Seed] Development data created")
}
