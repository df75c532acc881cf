package repositories

import (
	"context"
	"time"

	"librahub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListIDsByRoles(ctx context.Context, roles ...string) ([]uint, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// CategoryRepository defines category repository interface
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

// BookFilter narrows book listings
type BookFilter struct {
	CategoryID *uint
	IsHot      *bool
	Search     string
}

// BookRepository owns the catalog and the inventory ledger. ReserveOne
// and ReleaseOne are the only paths that may change Quantity once a copy
// enters the borrow lifecycle.
type BookRepository interface {
	WithTx(tx *gorm.DB) BookRepository
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	List(ctx context.Context, filter *BookFilter, offset, limit int) ([]*models.Book, int64, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	UpdateStock(ctx context.Context, id uint, quantity *int, available *bool) error

	// ReserveOne atomically decrements quantity when the book exists,
	// is available and has stock. Returns domain.ErrBookNotFound or
	// domain.ErrBookOutOfStock otherwise.
	ReserveOne(ctx context.Context, id uint) error
	// ReleaseOne increments quantity unconditionally.
	ReleaseOne(ctx context.Context, id uint) error
}

// RegistrationFilter narrows registration listings
type RegistrationFilter struct {
	UserID *uint
	Status string
}

// RegistrationRepository defines registration repository interface
type RegistrationRepository interface {
	WithTx(tx *gorm.DB) RegistrationRepository
	Create(ctx context.Context, registration *models.Registration) error
	GetByID(ctx context.Context, id uint) (*models.Registration, error)
	List(ctx context.Context, filter *RegistrationFilter, offset, limit int) ([]*models.Registration, int64, error)

	// UpdateIfPending applies updates only when the row is still pending
	// and reports whether it won the race.
	UpdateIfPending(ctx context.Context, id uint, updates map[string]interface{}) (bool, error)
}

// TicketFilter narrows borrow ticket listings
type TicketFilter struct {
	UserID *uint
	Status string
}

// BorrowTicketRepository defines borrow ticket repository interface
type BorrowTicketRepository interface {
	WithTx(tx *gorm.DB) BorrowTicketRepository
	Create(ctx context.Context, ticket *models.BorrowTicket) error
	GetByID(ctx context.Context, id uint) (*models.BorrowTicket, error)
	List(ctx context.Context, filter *TicketFilter, offset, limit int) ([]*models.BorrowTicket, int64, error)
	HasActiveBorrow(ctx context.Context, userID, bookID uint) (bool, error)

	// UpdateIfPending applies updates only while the ticket is pending.
	UpdateIfPending(ctx context.Context, id uint, updates map[string]interface{}) (bool, error)
	// MarkReturned flips approved → returned; reports whether it did.
	MarkReturned(ctx context.Context, id uint, returnDate time.Time) (bool, error)

	ListApprovedDueBetween(ctx context.Context, from, to time.Time) ([]*models.BorrowTicket, error)
	ListApprovedOverdue(ctx context.Context, asOf time.Time) ([]*models.BorrowTicket, error)
}

// ReturnFilter narrows return ticket listings
type ReturnFilter struct {
	Condition string
	UserID    *uint
}

// ReturnStats summarises processed returns for the staff dashboard
type ReturnStats struct {
	Total       int64 `json:"total"`
	Good        int64 `json:"good"`
	Damaged     int64 `json:"damaged"`
	Lost        int64 `json:"lost"`
	FineTotal   int64 `json:"fine_total"`
	FineUnpaid  int64 `json:"fine_unpaid"`
	UnpaidCount int64 `json:"unpaid_count"`
}

// ReturnTicketRepository defines return ticket repository interface
type ReturnTicketRepository interface {
	WithTx(tx *gorm.DB) ReturnTicketRepository
	Create(ctx context.Context, ticket *models.ReturnTicket) error
	GetByID(ctx context.Context, id uint) (*models.ReturnTicket, error)
	GetByBorrowTicketID(ctx context.Context, borrowTicketID uint) (*models.ReturnTicket, error)
	List(ctx context.Context, filter *ReturnFilter, offset, limit int) ([]*models.ReturnTicket, int64, error)

	// MarkFinePaid flips fine_paid only when a positive unpaid fine
	// exists; reports whether it did.
	MarkFinePaid(ctx context.Context, id uint) (bool, error)

	Stats(ctx context.Context) (*ReturnStats, error)
}

// NotificationRepository defines notification repository interface
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]*models.Notification, error)
	GetByIDForUser(ctx context.Context, id, userID uint) (*models.Notification, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, id, userID uint) error
	DeleteRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}
