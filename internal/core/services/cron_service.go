package services

import (
	"context"
	"log"
	"time"

	"librahub/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled background jobs: a daily due-soon reminder
// sweep and an overdue sweep, plus refresh token cleanup.
type CronService struct {
	cron          *cron.Cron
	ticketRepo    repositories.BorrowTicketRepository
	refreshRepo   repositories.RefreshTokenRepository
	notifyService *NotificationService
}

// NewCronService creates a new cron service
func NewCronService(
	ticketRepo repositories.BorrowTicketRepository,
	refreshRepo repositories.RefreshTokenRepository,
	notifyService *NotificationService,
) *CronService {
	return &CronService{
		cron:          cron.New(),
		ticketRepo:    ticketRepo,
		refreshRepo:   refreshRepo,
		notifyService: notifyService,
	}
}

// Start registers and launches all scheduled jobs
func (s *CronService) Start() {
	// Daily at 08:00: remind loans due within the next day and nag
	// the overdue ones.
	s.cron.AddFunc("0 8 * * *", s.sendReturnReminders)

	// Daily at 03:00: purge expired refresh tokens.
	s.cron.AddFunc("0 3 * * *", s.cleanupExpiredTokens)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) sendReturnReminders() {
	ctx := context.Background()
	now := time.Now()

	// Due within the next 24 hours.
	dueSoon, err := s.ticketRepo.ListApprovedDueBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		log.Printf("❌ Reminder sweep (due soon) error: %v", err)
	} else {
		for _, ticket := range dueSoon {
			title := ""
			if ticket.Book != nil {
				title = ticket.Book.Title
			}
			s.notifyService.NotifyReturnDue(ctx, ticket, title, false)
		}
		if len(dueSoon) > 0 {
			log.Printf("📅 Sent %d due-soon reminders", len(dueSoon))
		}
	}

	// Already past due.
	overdue, err := s.ticketRepo.ListApprovedOverdue(ctx, now)
	if err != nil {
		log.Printf("❌ Reminder sweep (overdue) error: %v", err)
		return
	}
	for _, ticket := range overdue {
		title := ""
		if ticket.Book != nil {
			title = ticket.Book.Title
		}
		s.notifyService.NotifyReturnDue(ctx, ticket, title, true)
	}
	if len(overdue) > 0 {
		log.Printf("📅 Sent %d overdue reminders", len(overdue))
	}
}

func (s *CronService) cleanupExpiredTokens() {
	if err := s.refreshRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Refresh token cleanup error: %v", err)
		return
	}
	log.Println("🧹 Expired refresh tokens purged")
}
