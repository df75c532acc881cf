package repositories

import (
	"context"
	"errors"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/core/domain"

	"gorm.io/gorm"
)

// bookRepository implements BookRepository
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *bookRepository) WithTx(tx *gorm.DB) BookRepository {
	return &bookRepository{db: tx}
}

// Create creates a new book
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book by ID with its category
func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// List lists books with optional filters and pagination
func (r *bookRepository) List(ctx context.Context, filter *BookFilter, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Book{})
	if filter != nil {
		if filter.CategoryID != nil {
			query = query.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.IsHot != nil {
			query = query.Where("is_hot = ?", *filter.IsHot)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			query = query.Where("title LIKE ? OR author LIKE ?", like, like)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Category").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// Update updates a book
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// Delete soft deletes a book
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// UpdateStock sets quantity and/or the availability flag directly.
// Catalog management only; lifecycle transitions go through
// ReserveOne/ReleaseOne.
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, quantity *int, available *bool) error {
	updates := map[string]interface{}{}
	if quantity != nil {
		updates["quantity"] = *quantity
	}
	if available != nil {
		updates["available"] = *available
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// ReserveOne takes one copy out of stock. The check and the decrement
// are a single conditional UPDATE, so two reservations racing on the
// last copy can never both win and quantity can never go negative.
func (r *bookRepository) ReserveOne(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND available = ? AND quantity > 0", id, true).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Zero rows: distinguish a missing book from an empty shelf.
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrBookNotFound
	}
	return domain.ErrBookOutOfStock
}

// ReleaseOne puts one copy back on the shelf. There is no upper-bound
// check: the model has no "total copies owned" figure to cap against.
func (r *bookRepository) ReleaseOne(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}
