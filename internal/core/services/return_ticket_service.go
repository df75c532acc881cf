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

// ReturnTicketService closes loans and settles fines
type ReturnTicketService struct {
	db            *gorm.DB
	returnRepo    repositories.ReturnTicketRepository
	ticketRepo    repositories.BorrowTicketRepository
	bookRepo      repositories.BookRepository
	notifyService *NotificationService
}

// NewReturnTicketService creates a new return ticket service
func NewReturnTicketService(
	db *gorm.DB,
	returnRepo repositories.ReturnTicketRepository,
	ticketRepo repositories.BorrowTicketRepository,
	bookRepo repositories.BookRepository,
	notifyService *NotificationService,
) *ReturnTicketService {
	return &ReturnTicketService{
		db:            db,
		returnRepo:    returnRepo,
		ticketRepo:    ticketRepo,
		bookRepo:      bookRepo,
		notifyService: notifyService,
	}
}

// CreateReturnInput represents process-return input
type CreateReturnInput struct {
	BorrowTicketID uint      `json:"borrow_ticket_id" validate:"required"`
	Condition      string    `json:"condition" validate:"required,oneof=good damaged lost"`
	ReturnDate     time.Time `json:"return_date"`
	Note           string    `json:"note"`
}

// Create processes a physical return. In one transaction the borrow
// ticket flips to returned, the fine is assessed and recorded, and the
// copy goes back on the shelf. A lost copy is not restocked.
func (s *ReturnTicketService) Create(ctx context.Context, staffID uint, input *CreateReturnInput) (*models.ReturnTicket, error) {
	if !models.ValidCondition(input.Condition) {
		return nil, domain.ErrInvalidInput
	}

	ticket, err := s.ticketRepo.GetByID(ctx, input.BorrowTicketID)
	if err != nil {
		return nil, err
	}

	switch ticket.Status {
	case models.TicketStatusApproved:
		// returnable
	case models.TicketStatusReturned:
		return nil, domain.ErrAlreadyReturned
	default:
		return nil, domain.ErrTicketNotReturnable
	}

	returnDate := input.ReturnDate
	if returnDate.IsZero() {
		returnDate = time.Now()
	}

	rentalPrice := int64(0)
	if ticket.Book != nil {
		rentalPrice = ticket.Book.RentalPrice
	}
	fine := ComputeFine(rentalPrice, input.Condition, ticket.DueDate, returnDate)

	var returnTicket *models.ReturnTicket

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ticketRepo := s.ticketRepo.WithTx(tx)
		returnRepo := s.returnRepo.WithTx(tx)
		bookRepo := s.bookRepo.WithTx(tx)

		won, err := ticketRepo.MarkReturned(ctx, ticket.ID, returnDate)
		if err != nil {
			return err
		}
		if !won {
			return domain.ErrAlreadyReturned
		}

		returnTicket = &models.ReturnTicket{
			BorrowTicketID: ticket.ID,
			ReturnDate:     returnDate,
			Condition:      input.Condition,
			FineAmount:     fine.Amount,
			FineReason:     fine.Reason,
			FinePaid:       false,
			ProcessedBy:    staffID,
			Note:           input.Note,
		}
		if err := returnRepo.Create(ctx, returnTicket); err != nil {
			return err
		}

		// A lost copy never comes back to the shelf.
		if input.Condition != models.ConditionLost {
			if err := bookRepo.ReleaseOne(ctx, ticket.BookID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		title := ""
		if ticket.Book != nil {
			title = ticket.Book.Title
		}
		s.notifyService.NotifyReturnProcessed(ctx, returnTicket, ticket.UserID, title)
	}

	log.Printf("✅ Return ticket %d created for borrow ticket %d (condition: %s, fine: %d)",
		returnTicket.ID, ticket.ID, input.Condition, fine.Amount)
	return returnTicket, nil
}

// Get returns one return ticket. Plain users only see returns of their
// own loans.
func (s *ReturnTicketService) Get(ctx context.Context, id, requesterID uint, requesterRole domain.Role) (*models.ReturnTicket, error) {
	returnTicket, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requesterRole.IsStaff() {
		if returnTicket.BorrowTicket == nil || returnTicket.BorrowTicket.UserID != requesterID {
			return nil, domain.ErrNotOwner
		}
	}
	return returnTicket, nil
}

// List lists return tickets. Plain users are pinned to their own rows.
func (s *ReturnTicketService) List(ctx context.Context, requesterID uint, requesterRole domain.Role, filter *repositories.ReturnFilter, offset, limit int) ([]*models.ReturnTicket, int64, error) {
	if filter == nil {
		filter = &repositories.ReturnFilter{}
	}
	if !requesterRole.IsStaff() {
		filter.UserID = &requesterID
	}
	return s.returnRepo.List(ctx, filter, offset, limit)
}

// PayFine settles the fine on a return ticket. The conditional update
// flips fine_paid exactly once; losers get told why they lost.
func (s *ReturnTicketService) PayFine(ctx context.Context, id uint) (*models.ReturnTicket, error) {
	won, err := s.returnRepo.MarkFinePaid(ctx, id)
	if err != nil {
		return nil, err
	}

	returnTicket, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !won {
		if returnTicket.FineAmount <= 0 {
			return nil, domain.ErrNoFine
		}
		return nil, domain.ErrFineAlreadyPaid
	}

	if s.notifyService != nil && returnTicket.BorrowTicket != nil {
		s.notifyService.NotifyFinePaid(ctx, returnTicket, returnTicket.BorrowTicket.UserID)
	}

	log.Printf("✅ Fine paid on return ticket %d (%d VND)", id, returnTicket.FineAmount)
	return returnTicket, nil
}

// Stats aggregates processed returns for the staff dashboard
func (s *ReturnTicketService) Stats(ctx context.Context) (*repositories.ReturnStats, error) {
	return s.returnRepo.Stats(ctx)
}
