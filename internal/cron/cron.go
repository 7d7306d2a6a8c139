package cron

import (
	"context"
	"log"
	"time"

	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/robfig/cron/v3"
)

// Scheduler handles scheduled maintenance tasks
type Scheduler struct {
	cron             *cron.Cron
	invitationRepo   repository.InvitationRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// NewScheduler creates a new scheduler
func NewScheduler(repos *repository.Repositories) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		invitationRepo:   repos.InvitationRepo,
		userRepo:         repos.UserRepo,
		notificationRepo: repos.NotificationRepo,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every hour - delete expired invitations
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running expired invitation cleanup...")
		s.cleanupExpiredInvitations()
	})

	// Run every day at 3 AM - delete expired refresh tokens
	s.cron.AddFunc("0 3 * * *", func() {
		log.Println("[Cron] Running expired refresh token cleanup...")
		s.cleanupExpiredRefreshTokens()
	})

	// Run every Sunday at midnight - delete old read notifications
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running notification cleanup...")
		s.cleanupOldNotifications()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

func (s *Scheduler) cleanupExpiredInvitations() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.invitationRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("[Cron] Failed to delete expired invitations: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] Deleted %d expired invitations", deleted)
	}
}

func (s *Scheduler) cleanupExpiredRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.userRepo.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		log.Printf("[Cron] Failed to delete expired refresh tokens: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] Deleted %d expired refresh tokens", deleted)
	}
}

func (s *Scheduler) cleanupOldNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -30)
	deleted, err := s.notificationRepo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[Cron] Failed to delete old notifications: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] Deleted %d old notifications", deleted)
	}
}
