package services

import (
	"context"
	"errors"
	"log"
	"time"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/core/domain"

	"gorm.io/gorm"
)

// RegistrationService handles pre-loan borrow requests
type RegistrationService struct {
	db               *gorm.DB
	registrationRepo repositories.RegistrationRepository
	ticketRepo       repositories.BorrowTicketRepository
	bookRepo         repositories.BookRepository
	notifyService    *NotificationService
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	db *gorm.DB,
	registrationRepo repositories.RegistrationRepository,
	ticketRepo repositories.BorrowTicketRepository,
	bookRepo repositories.BookRepository,
	notifyService *NotificationService,
) *RegistrationService {
	return &RegistrationService{
		db:               db,
		registrationRepo: registrationRepo,
		ticketRepo:       ticketRepo,
		bookRepo:         bookRepo,
		notifyService:    notifyService,
	}
}

// CreateRegistrationInput represents create registration input
type CreateRegistrationInput struct {
	BookID            uint      `json:"book_id" validate:"required"`
	DesiredBorrowDate time.Time `json:"desired_borrow_date" validate:"required"`
	Note              string    `json:"note"`
}

// ProcessRegistrationInput represents approve/reject input
type ProcessRegistrationInput struct {
	Note string `json:"note"`
}

// Create files a new borrow request. Stock is not checked here: the
// request queues regardless and availability is settled at approval.
func (s *RegistrationService) Create(ctx context.Context, userID uint, input *CreateRegistrationInput) (*models.Registration, error) {
	book, err := s.bookRepo.GetByID(ctx, input.BookID)
	if err != nil {
		return nil, err
	}

	if input.DesiredBorrowDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	registration := &models.Registration{
		UserID:            userID,
		BookID:            input.BookID,
		RequestDate:       time.Now(),
		DesiredBorrowDate: input.DesiredBorrowDate,
		Status:            models.RegistrationStatusPending,
		Note:              input.Note,
	}

	if err := s.registrationRepo.Create(ctx, registration); err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		userName := ""
		if full, err := s.registrationRepo.GetByID(ctx, registration.ID); err == nil && full.User != nil {
			userName = full.User.FullName
		}
		s.notifyService.NotifyNewRegistration(ctx, registration, userName, book.Title)
	}

	log.Printf("✅ Registration %d created for book %d by user %d", registration.ID, input.BookID, userID)
	return registration, nil
}

// Get returns one registration. Plain users only see their own.
func (s *RegistrationService) Get(ctx context.Context, id, requesterID uint, requesterRole domain.Role) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requesterRole.IsStaff() && registration.UserID != requesterID {
		return nil, domain.ErrNotOwner
	}
	return registration, nil
}

// List lists registrations. Plain users are pinned to their own rows.
func (s *RegistrationService) List(ctx context.Context, requesterID uint, requesterRole domain.Role, filter *repositories.RegistrationFilter, offset, limit int) ([]*models.Registration, int64, error) {
	if filter == nil {
		filter = &repositories.RegistrationFilter{}
	}
	if !requesterRole.IsStaff() {
		filter.UserID = &requesterID
	}
	return s.registrationRepo.List(ctx, filter, offset, limit)
}

// Approve grants a pending request: one copy is reserved and an
// already-approved borrow ticket is created and linked, all in one
// transaction. When the shelf is empty the registration stays pending
// so staff can retry once stock returns.
func (s *RegistrationService) Approve(ctx context.Context, id, staffID uint, input *ProcessRegistrationInput) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if registration.Status != models.RegistrationStatusPending {
		return nil, domain.ErrInvalidState
	}

	now := time.Now()
	var ticket *models.BorrowTicket

	err = s.db.Transaction(func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		ticketRepo := s.ticketRepo.WithTx(tx)
		registrationRepo := s.registrationRepo.WithTx(tx)

		if err := bookRepo.ReserveOne(ctx, registration.BookID); err != nil {
			return err
		}

		dueDate := registration.DesiredBorrowDate.Add(domain.BorrowPeriod)
		ticket = &models.BorrowTicket{
			UserID:     registration.UserID,
			BookID:     registration.BookID,
			BorrowDate: registration.DesiredBorrowDate,
			DueDate:    &dueDate,
			Status:     models.TicketStatusApproved,
			Note:       registration.Note,
			ApprovedBy: &staffID,
			ApprovedAt: &now,
		}
		if err := ticketRepo.Create(ctx, ticket); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":           models.RegistrationStatusApproved,
			"processed_by":     staffID,
			"processed_at":     now,
			"borrow_ticket_id": ticket.ID,
		}
		if input != nil && input.Note != "" {
			updates["note"] = input.Note
		}
		won, err := registrationRepo.UpdateIfPending(ctx, id, updates)
		if err != nil {
			return err
		}
		if !won {
			// Another staff decided first; roll everything back.
			return domain.ErrInvalidState
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrBookOutOfStock) {
			log.Printf("⚠️ Registration %d approval blocked: book %d out of stock", id, registration.BookID)
		}
		return nil, err
	}

	registration, err = s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		title := ""
		if registration.Book != nil {
			title = registration.Book.Title
		}
		s.notifyService.NotifyRegistrationProcessed(ctx, registration, title, true)
	}

	log.Printf("✅ Registration %d approved by staff %d (ticket %d)", id, staffID, ticket.ID)
	return registration, nil
}

// Reject declines a pending request
func (s *RegistrationService) Reject(ctx context.Context, id, staffID uint, input *ProcessRegistrationInput) (*models.Registration, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.RegistrationStatusRejected,
		"processed_by": staffID,
		"processed_at": now,
	}
	if input != nil && input.Note != "" {
		updates["note"] = input.Note
	}

	won, err := s.registrationRepo.UpdateIfPending(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if !won {
		// Pending guard lost: either missing or already decided.
		if _, err := s.registrationRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidState
	}

	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		title := ""
		if registration.Book != nil {
			title = registration.Book.Title
		}
		s.notifyService.NotifyRegistrationProcessed(ctx, registration, title, false)
	}

	log.Printf("✅ Registration %d rejected by staff %d", id, staffID)
	return registration, nil
}

// Cancel lets the owner withdraw a still-pending request
func (s *RegistrationService) Cancel(ctx context.Context, id, userID uint, note string) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if registration.UserID != userID {
		return nil, domain.ErrNotOwner
	}

	if note == "" {
		note = "Người dùng hủy yêu cầu"
	}

	won, err := s.registrationRepo.UpdateIfPending(ctx, id, map[string]interface{}{
		"status": models.RegistrationStatusCancelled,
		"note":   note,
	})
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.ErrInvalidState
	}

	log.Printf("✅ Registration %d cancelled by user %d", id, userID)
	return s.registrationRepo.GetByID(ctx, id)
}
