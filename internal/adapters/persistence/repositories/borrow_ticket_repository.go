package repositories

import (
	"context"
	"errors"
	"time"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/core/domain"

	"gorm.io/gorm"
)

// borrowTicketRepository implements BorrowTicketRepository
type borrowTicketRepository struct {
	db *gorm.DB
}

// NewBorrowTicketRepository creates a new borrow ticket repository
func NewBorrowTicketRepository(db *gorm.DB) BorrowTicketRepository {
	return &borrowTicketRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *borrowTicketRepository) WithTx(tx *gorm.DB) BorrowTicketRepository {
	return &borrowTicketRepository{db: tx}
}

// Create creates a new borrow ticket
func (r *borrowTicketRepository) Create(ctx context.Context, ticket *models.BorrowTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

// GetByID gets a borrow ticket by ID with relations
func (r *borrowTicketRepository) GetByID(ctx context.Context, id uint) (*models.BorrowTicket, error) {
	var ticket models.BorrowTicket
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Preload("Book.Category").
		Preload("Approver").
		First(&ticket, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// List lists borrow tickets with optional filters and pagination
func (r *borrowTicketRepository) List(ctx context.Context, filter *TicketFilter, offset, limit int) ([]*models.BorrowTicket, int64, error) {
	var tickets []*models.BorrowTicket
	var total int64

	query := r.db.WithContext(ctx).Model(&models.BorrowTicket{})
	if filter != nil {
		if filter.UserID != nil {
			query = query.Where("user_id = ?", *filter.UserID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Preload("Book").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tickets).Error

	return tickets, total, err
}

// HasActiveBorrow reports whether the user already holds a pending or
// approved ticket for the book.
func (r *borrowTicketRepository) HasActiveBorrow(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowTicket{}).
		Where("user_id = ? AND book_id = ? AND status IN ?",
			userID, bookID,
			[]string{models.TicketStatusPending, models.TicketStatusApproved}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateIfPending applies updates only while the ticket is pending and
// reports whether it won the race.
func (r *borrowTicketRepository) UpdateIfPending(ctx context.Context, id uint, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BorrowTicket{}).
		Where("id = ? AND status = ?", id, models.TicketStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkReturned flips an approved ticket to returned. The status guard in
// the WHERE clause is what makes a double return lose cleanly.
func (r *borrowTicketRepository) MarkReturned(ctx context.Context, id uint, returnDate time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BorrowTicket{}).
		Where("id = ? AND status = ?", id, models.TicketStatusApproved).
		Updates(map[string]interface{}{
			"status":      models.TicketStatusReturned,
			"return_date": returnDate,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListApprovedDueBetween lists open loans whose due date falls in [from, to)
func (r *borrowTicketRepository) ListApprovedDueBetween(ctx context.Context, from, to time.Time) ([]*models.BorrowTicket, error) {
	var tickets []*models.BorrowTicket
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Where("status = ? AND due_date >= ? AND due_date < ?", models.TicketStatusApproved, from, to).
		Find(&tickets).Error
	return tickets, err
}

// ListApprovedOverdue lists open loans already past their due date
func (r *borrowTicketRepository) ListApprovedOverdue(ctx context.Context, asOf time.Time) ([]*models.BorrowTicket, error) {
	var tickets []*models.BorrowTicket
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Where("status = ? AND due_date < ?", models.TicketStatusApproved, asOf).
		Find(&tickets).Error
	return tickets, err
}
