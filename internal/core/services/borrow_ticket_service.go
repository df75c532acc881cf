package services

import (
	"context"
	"log"
	"time"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/core/domain"

	"gorm.io/gorm"
)

// BorrowTicketService handles the loan lifecycle up to the return
type BorrowTicketService struct {
	db            *gorm.DB
	ticketRepo    repositories.BorrowTicketRepository
	bookRepo      repositories.BookRepository
	notifyService *NotificationService
}

// NewBorrowTicketService creates a new borrow ticket service
func NewBorrowTicketService(
	db *gorm.DB,
	ticketRepo repositories.BorrowTicketRepository,
	bookRepo repositories.BookRepository,
	notifyService *NotificationService,
) *BorrowTicketService {
	return &BorrowTicketService{
		db:            db,
		ticketRepo:    ticketRepo,
		bookRepo:      bookRepo,
		notifyService: notifyService,
	}
}

// CreateTicketInput represents create borrow ticket input
type CreateTicketInput struct {
	BookID     uint      `json:"book_id" validate:"required"`
	BorrowDate time.Time `json:"borrow_date"`
	Note       string    `json:"note"`
}

// ProcessTicketInput represents approve/reject input
type ProcessTicketInput struct {
	Note string `json:"note"`
}

// Create opens a direct borrow ticket in pending state. Stock is only
// checked for a friendlier early error; the binding reservation happens
// at approval.
func (s *BorrowTicketService) Create(ctx context.Context, userID uint, input *CreateTicketInput) (*models.BorrowTicket, error) {
	book, err := s.bookRepo.GetByID(ctx, input.BookID)
	if err != nil {
		return nil, err
	}
	if !book.CanBorrow() {
		return nil, domain.ErrBookOutOfStock
	}

	active, err := s.ticketRepo.HasActiveBorrow(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, domain.ErrDuplicateBorrow
	}

	borrowDate := input.BorrowDate
	if borrowDate.IsZero() {
		borrowDate = time.Now()
	}

	ticket := &models.BorrowTicket{
		UserID:     userID,
		BookID:     input.BookID,
		BorrowDate: borrowDate,
		Status:     models.TicketStatusPending,
		Note:       input.Note,
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		userName := ""
		if full, err := s.ticketRepo.GetByID(ctx, ticket.ID); err == nil && full.User != nil {
			userName = full.User.FullName
		}
		s.notifyService.NotifyNewBorrowTicket(ctx, ticket, userName, book.Title)
	}

	log.Printf("✅ Borrow ticket %d created for book %d by user %d", ticket.ID, input.BookID, userID)
	return ticket, nil
}

// Get returns one borrow ticket. Plain users only see their own.
func (s *BorrowTicketService) Get(ctx context.Context, id, requesterID uint, requesterRole domain.Role) (*models.BorrowTicket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requesterRole.IsStaff() && ticket.UserID != requesterID {
		return nil, domain.ErrNotOwner
	}
	return ticket, nil
}

// List lists borrow tickets. Plain users are pinned to their own rows.
func (s *BorrowTicketService) List(ctx context.Context, requesterID uint, requesterRole domain.Role, filter *repositories.TicketFilter, offset, limit int) ([]*models.BorrowTicket, int64, error) {
	if filter == nil {
		filter = &repositories.TicketFilter{}
	}
	if !requesterRole.IsStaff() {
		filter.UserID = &requesterID
	}
	return s.ticketRepo.List(ctx, filter, offset, limit)
}

// Approve reserves a copy and activates the loan in one transaction.
// The due date is fixed here: borrow date plus the loan window.
func (s *BorrowTicketService) Approve(ctx context.Context, id, staffID uint, input *ProcessTicketInput) (*models.BorrowTicket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketStatusPending {
		return nil, domain.ErrInvalidState
	}

	now := time.Now()
	dueDate := ticket.BorrowDate.Add(domain.BorrowPeriod)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		ticketRepo := s.ticketRepo.WithTx(tx)

		if err := bookRepo.ReserveOne(ctx, ticket.BookID); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":      models.TicketStatusApproved,
			"due_date":    dueDate,
			"approved_by": staffID,
			"approved_at": now,
		}
		if input != nil && input.Note != "" {
			updates["note"] = input.Note
		}
		won, err := ticketRepo.UpdateIfPending(ctx, id, updates)
		if err != nil {
			return err
		}
		if !won {
			return domain.ErrInvalidState
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ticket, err = s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		title := ""
		if ticket.Book != nil {
			title = ticket.Book.Title
		}
		s.notifyService.NotifyTicketProcessed(ctx, ticket, title, true)
	}

	log.Printf("✅ Borrow ticket %d approved by staff %d, due %s", id, staffID, dueDate.Format("2006-01-02"))
	return ticket, nil
}

// Reject declines a pending borrow ticket. No stock moves.
func (s *BorrowTicketService) Reject(ctx context.Context, id, staffID uint, input *ProcessTicketInput) (*models.BorrowTicket, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      models.TicketStatusRejected,
		"approved_by": staffID,
		"approved_at": now,
	}
	if input != nil && input.Note != "" {
		updates["note"] = input.Note
	}

	won, err := s.ticketRepo.UpdateIfPending(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if !won {
		if _, err := s.ticketRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidState
	}

	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		title := ""
		if ticket.Book != nil {
			title = ticket.Book.Title
		}
		s.notifyService.NotifyTicketProcessed(ctx, ticket, title, false)
	}

	log.Printf("✅ Borrow ticket %d rejected by staff %d", id, staffID)
	return ticket, nil
}
