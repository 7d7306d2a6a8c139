package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/EshwarReddy13/tassot-backend/internal/config"
	"github.com/EshwarReddy13/tassot-backend/internal/email"
	"github.com/EshwarReddy13/tassot-backend/internal/notification"
	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/socket"
)

// ============================================
// Invitation Service
// ============================================

type InvitationService interface {
	Create(ctx context.Context, projectURL, inviterID, inviteeEmail string) (*repository.Invitation, error)
	Verify(ctx context.Context, token string) (*repository.InvitationDetails, error)
	Accept(ctx context.Context, token, userID, userEmail string) (*repository.AcceptedInvitation, error)
	ListPending(ctx context.Context, projectURL, userID string) ([]*repository.Invitation, error)
	Cancel(ctx context.Context, projectURL, invitationID, userID string) error
}

type invitationService struct {
	cfg         *config.Config
	invRepo     repository.InvitationRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	notifSvc    *notification.Service
	emailSvc    *email.Service
	broadcaster *socket.Broadcaster
}

func NewInvitationService(
	cfg *config.Config,
	invRepo repository.InvitationRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
) InvitationService {
	return &invitationService{
		cfg:         cfg,
		invRepo:     invRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifSvc:    notifSvc,
		emailSvc:    emailSvc,
		broadcaster: broadcaster,
	}
}

// requireOwner loads the project by URL and checks the user owns it.
func (s *invitationService) requireOwner(ctx context.Context, projectURL, userID string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByURL(ctx, projectURL)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, notFound("project not found")
	}
	if project.OwnerID != userID {
		return nil, forbidden("only the project owner can manage invitations")
	}
	return project, nil
}

func (s *invitationService) Create(ctx context.Context, projectURL, inviterID, inviteeEmail string) (*repository.Invitation, error) {
	inviteeEmail = normalizeEmail(inviteeEmail)
	if inviteeEmail == "" {
		return nil, invalidf("invitee email is required")
	}
	if !isValidEmail(inviteeEmail) {
		return nil, invalidf("invitee email is not a valid email address")
	}

	project, err := s.requireOwner(ctx, projectURL, inviterID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.projectRepo.IsMemberByEmail(ctx, project.ID, inviteeEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return nil, conflict("this user is already a member of the project")
	}

	hasPending, err := s.invRepo.ExistsPending(ctx, project.ID, inviteeEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if hasPending {
		return nil, conflict("an invitation is already pending for this email")
	}

	invitation := &repository.Invitation{
		ProjectID:    project.ID,
		InviteeEmail: inviteeEmail,
		InviterID:    inviterID,
		ExpiresAt:    time.Now().Add(time.Hour * 24 * time.Duration(s.cfg.InvitationTTL)),
	}
	if err := s.invRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	if s.emailSvc != nil {
		inviter, err := s.userRepo.FindByID(ctx, inviterID)
		inviterName := "A teammate"
		if err == nil && inviter != nil {
			inviterName = inviter.DisplayName()
		}
		inviteURL := fmt.Sprintf("%s/invitations/%s", s.cfg.FrontendURL, invitation.Token)

		go func() {
			data := email.InvitationEmailData{
				ProjectName: project.ProjectName,
				InvitedBy:   inviterName,
				InviteURL:   inviteURL,
			}
			if err := s.emailSvc.SendInvitation(invitation.InviteeEmail, data); err != nil {
				log.Printf("[Invitation] failed to send email to %s: %v", invitation.InviteeEmail, err)
			}
		}()
	}

	return invitation, nil
}

func (s *invitationService) Verify(ctx context.Context, token string) (*repository.InvitationDetails, error) {
	if token == "" {
		return nil, invalidf("invitation token is required")
	}

	details, err := s.invRepo.FindDetailsByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}
	if details == nil {
		return nil, notFound("invitation not found, expired, or already accepted")
	}
	return details, nil
}

func (s *invitationService) Accept(ctx context.Context, token, userID, userEmail string) (*repository.AcceptedInvitation, error) {
	if token == "" {
		return nil, invalidf("invitation token is required")
	}

	accepted, err := s.invRepo.AcceptByToken(ctx, token, userID, userEmail)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvitationInvalid):
			return nil, invalidf("invitation is invalid or has expired")
		case errors.Is(err, repository.ErrEmailMismatch):
			return nil, invalidf("this invitation was sent to a different email address")
		default:
			return nil, fmt.Errorf("failed to accept invitation: %w", err)
		}
	}

	s.announceMemberJoined(ctx, accepted, userID)

	return accepted, nil
}

// announceMemberJoined notifies existing members and pushes the join event.
// Failures here never fail the acceptance itself.
func (s *invitationService) announceMemberJoined(ctx context.Context, accepted *repository.AcceptedInvitation, userID string) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		return
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberJoined(accepted.ProjectID, map[string]interface{}{
			"user_id": user.ID,
			"name":    user.DisplayName(),
			"email":   user.Email,
		})
	}

	if s.notifSvc == nil {
		return
	}
	members, err := s.projectRepo.FindMembers(ctx, accepted.ProjectID)
	if err != nil {
		log.Printf("[Invitation] failed to list members of project %s: %v", accepted.ProjectID, err)
		return
	}
	var recipients []string
	for _, m := range members {
		if m.UserID != userID {
			recipients = append(recipients, m.UserID)
		}
	}
	if len(recipients) > 0 {
		s.notifSvc.SendMemberJoined(ctx, recipients, user.DisplayName(), accepted.ProjectName, accepted.ProjectID)
	}
}

func (s *invitationService) ListPending(ctx context.Context, projectURL, userID string) ([]*repository.Invitation, error) {
	project, err := s.requireOwner(ctx, projectURL, userID)
	if err != nil {
		return nil, err
	}
	return s.invRepo.FindPendingByProject(ctx, project.ID)
}

func (s *invitationService) Cancel(ctx context.Context, projectURL, invitationID, userID string) error {
	project, err := s.requireOwner(ctx, projectURL, userID)
	if err != nil {
		return err
	}

	invitation, err := s.invRepo.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if invitation == nil || invitation.ProjectID != project.ID {
		return notFound("invitation not found")
	}

	return s.invRepo.Delete(ctx, invitationID)
}
