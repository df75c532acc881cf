package repositories

import (
	"context"
	"errors"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/core/domain"

	"gorm.io/gorm"
)

// returnTicketRepository implements ReturnTicketRepository
type returnTicketRepository struct {
	db *gorm.DB
}

// NewReturnTicketRepository creates a new return ticket repository
func NewReturnTicketRepository(db *gorm.DB) ReturnTicketRepository {
	return &returnTicketRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *returnTicketRepository) WithTx(tx *gorm.DB) ReturnTicketRepository {
	return &returnTicketRepository{db: tx}
}

// Create creates a new return ticket. The unique index on
// borrow_ticket_id turns a concurrent double return into a duplicate
// key error here rather than two rows.
func (r *returnTicketRepository) Create(ctx context.Context, ticket *models.ReturnTicket) error {
	err := r.db.WithContext(ctx).Create(ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyReturned
		}
		return err
	}
	return nil
}

// GetByID gets a return ticket by ID with relations
func (r *returnTicketRepository) GetByID(ctx context.Context, id uint) (*models.ReturnTicket, error) {
	var ticket models.ReturnTicket
	err := r.db.WithContext(ctx).
		Preload("BorrowTicket").
		Preload("BorrowTicket.User").
		Preload("BorrowTicket.Book").
		Preload("Processor").
		First(&ticket, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReturnTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// GetByBorrowTicketID gets the return ticket closing a borrow ticket
func (r *returnTicketRepository) GetByBorrowTicketID(ctx context.Context, borrowTicketID uint) (*models.ReturnTicket, error) {
	var ticket models.ReturnTicket
	err := r.db.WithContext(ctx).
		Where("borrow_ticket_id = ?", borrowTicketID).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReturnTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// List lists return tickets with optional filters and pagination.
// Filtering by user goes through the owning borrow ticket.
func (r *returnTicketRepository) List(ctx context.Context, filter *ReturnFilter, offset, limit int) ([]*models.ReturnTicket, int64, error) {
	var tickets []*models.ReturnTicket
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ReturnTicket{})
	if filter != nil {
		if filter.Condition != "" {
			query = query.Where("return_tickets.condition = ?", filter.Condition)
		}
		if filter.UserID != nil {
			query = query.
				Joins("JOIN borrow_tickets ON borrow_tickets.id = return_tickets.borrow_ticket_id").
				Where("borrow_tickets.user_id = ?", *filter.UserID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("BorrowTicket").
		Preload("BorrowTicket.User").
		Preload("BorrowTicket.Book").
		Order("return_tickets.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tickets).Error

	return tickets, total, err
}

// MarkFinePaid flips fine_paid only when a positive unpaid fine exists
func (r *returnTicketRepository) MarkFinePaid(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReturnTicket{}).
		Where("id = ? AND fine_amount > 0 AND fine_paid = ?", id, false).
		Update("fine_paid", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Stats aggregates processed returns for the staff dashboard
func (r *returnTicketRepository) Stats(ctx context.Context) (*ReturnStats, error) {
	stats := &ReturnStats{}
	db := r.db.WithContext(ctx).Model(&models.ReturnTicket{})

	type row struct {
		Condition string
		Count     int64
	}
	var rows []row
	if err := db.Session(&gorm.Session{}).
		Select("`condition`, COUNT(*) as count").
		Group("`condition`").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.Total += r.Count
		switch r.Condition {
		case models.ConditionGood:
			stats.Good = r.Count
		case models.ConditionDamaged:
			stats.Damaged = r.Count
		case models.ConditionLost:
			stats.Lost = r.Count
		}
	}

	type fineRow struct {
		FineTotal   int64
		FineUnpaid  int64
		UnpaidCount int64
	}
	var fr fineRow
	if err := db.Session(&gorm.Session{}).
		Select(
			"COALESCE(SUM(fine_amount), 0) as fine_total, " +
				"COALESCE(SUM(CASE WHEN fine_paid = false THEN fine_amount ELSE 0 END), 0) as fine_unpaid, " +
				"COALESCE(SUM(CASE WHEN fine_paid = false AND fine_amount > 0 THEN 1 ELSE 0 END), 0) as unpaid_count").
		Scan(&fr).Error; err != nil {
		return nil, err
	}
	stats.FineTotal = fr.FineTotal
	stats.FineUnpaid = fr.FineUnpaid
	stats.UnpaidCount = fr.UnpaidCount

	return stats, nil
}
