package repositories

import (
	"context"
	"errors"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/core/domain"

	"gorm.io/gorm"
)

// registrationRepository implements RegistrationRepository
type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *registrationRepository) WithTx(tx *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: tx}
}

// Create creates a new registration
func (r *registrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

// GetByID gets a registration by ID with relations
func (r *registrationRepository) GetByID(ctx context.Context, id uint) (*models.Registration, error) {
	var registration models.Registration
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Preload("Book.Category").
		Preload("Processor").
		First(&registration, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, err
	}
	return &registration, nil
}

// List lists registrations with optional filters and pagination
func (r *registrationRepository) List(ctx context.Context, filter *RegistrationFilter, offset, limit int) ([]*models.Registration, int64, error) {
	var registrations []*models.Registration
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Registration{})
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
		Find(&registrations).Error

	return registrations, total, err
}

// UpdateIfPending applies updates only while the registration is still
// pending. Two staff racing on the same request means one of them sees
// false and reports the conflict instead of overwriting the decision.
func (r *registrationRepository) UpdateIfPending(ctx context.Context, id uint, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND status = ?", id, models.RegistrationStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
