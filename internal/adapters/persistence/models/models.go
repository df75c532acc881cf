package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Users & Auth
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	FullName  string         `gorm:"size:100;not null" json:"fullname"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'USER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullname"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog
// ============================================================

// Category groups books
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// Book is the inventory-bearing catalog record. Quantity is mutated
// only through BookRepository.ReserveOne/ReleaseOne once a copy enters
// the borrow lifecycle; Available is a catalog flag independent of it.
type Book struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null;index" json:"title"`
	Author      string         `gorm:"size:255;not null" json:"author"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	RentalPrice int64          `gorm:"not null" json:"rental_price"`
	Publisher   string         `gorm:"size:255" json:"publisher"`
	Quantity    int            `gorm:"not null;default:0" json:"quantity"`
	Image       string         `gorm:"size:500" json:"image"`
	IsHot       bool           `gorm:"default:false" json:"is_hot"`
	Description string         `gorm:"type:text" json:"description"`
	PublishYear int            `json:"publish_year"`
	Available   bool           `gorm:"default:true" json:"available"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// CanBorrow reports whether the book currently passes the reservation
// preconditions. The authoritative check is the conditional decrement in
// BookRepository.ReserveOne; this is for early, friendlier failures.
func (b *Book) CanBorrow() bool {
	return b.Available && b.Quantity > 0
}

// ============================================================
// Registrations
// ============================================================

// Registration statuses. Expired is declared for forward compatibility
// with a request-timeout policy; nothing transitions into it yet.
const (
	RegistrationStatusPending   = "pending"
	RegistrationStatusApproved  = "approved"
	RegistrationStatusRejected  = "rejected"
	RegistrationStatusCancelled = "cancelled"
	RegistrationStatusExpired   = "expired"
)

// Registration is a user's pre-loan request for a book. Terminal states
// are retained for audit; rows are never deleted.
type Registration struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;index" json:"user_id"`
	BookID            uint       `gorm:"not null;index" json:"book_id"`
	RequestDate       time.Time  `gorm:"not null" json:"request_date"`
	DesiredBorrowDate time.Time  `gorm:"not null" json:"desired_borrow_date"`
	Status            string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Note              string     `gorm:"type:text" json:"note"`
	ProcessedBy       *uint      `json:"processed_by"`
	ProcessedAt       *time.Time `json:"processed_at"`
	BorrowTicketID    *uint      `gorm:"index" json:"borrow_ticket_id"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book         *Book         `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Processor    *User         `gorm:"foreignKey:ProcessedBy" json:"processor,omitempty"`
	BorrowTicket *BorrowTicket `gorm:"foreignKey:BorrowTicketID" json:"borrow_ticket,omitempty"`
}

func (Registration) TableName() string {
	return "registrations"
}

// ============================================================
// Borrow tickets
// ============================================================

// Borrow ticket statuses
const (
	TicketStatusPending  = "pending"
	TicketStatusApproved = "approved"
	TicketStatusRejected = "rejected"
	TicketStatusReturned = "returned"
)

// BorrowTicket is the authoritative loan record. DueDate is fixed at
// approval time (borrow date + 14 days) and nil while pending.
type BorrowTicket struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	BookID     uint       `gorm:"not null;index" json:"book_id"`
	BorrowDate time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate    *time.Time `json:"due_date"`
	Status     string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Note       string     `gorm:"type:text" json:"note"`
	ApprovedBy *uint      `json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at"`
	ReturnDate *time.Time `json:"return_date"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User     *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book     *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Approver *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

func (BorrowTicket) TableName() string {
	return "borrow_tickets"
}

// ============================================================
// Return tickets
// ============================================================

// Book conditions on return
const (
	ConditionGood    = "good"
	ConditionDamaged = "damaged"
	ConditionLost    = "lost"
)

// ValidCondition reports whether c is a recognised return condition.
func ValidCondition(c string) bool {
	return c == ConditionGood || c == ConditionDamaged || c == ConditionLost
}

// ReturnTicket closes exactly one borrow ticket. The unique index on
// BorrowTicketID makes double returns lose the race at the database.
// The row is immutable after creation except for FinePaid.
type ReturnTicket struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BorrowTicketID uint      `gorm:"not null;uniqueIndex" json:"borrow_ticket_id"`
	ReturnDate     time.Time `gorm:"not null" json:"return_date"`
	Condition      string    `gorm:"size:20;not null;default:'good';index" json:"condition"`
	FineAmount     int64     `gorm:"not null;default:0" json:"fine_amount"`
	FineReason     string    `gorm:"type:text" json:"fine_reason"`
	FinePaid       bool      `gorm:"not null;default:false" json:"fine_paid"`
	ProcessedBy    uint      `gorm:"not null" json:"processed_by"`
	Note           string    `gorm:"type:text" json:"note"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	BorrowTicket *BorrowTicket `gorm:"foreignKey:BorrowTicketID" json:"borrow_ticket,omitempty"`
	Processor    *User         `gorm:"foreignKey:ProcessedBy" json:"processor,omitempty"`
}

func (ReturnTicket) TableName() string {
	return "return_tickets"
}

// ============================================================
// Notifications
// ============================================================

// Notification types
const (
	NotificationTypeBorrowRequest  = "borrow_request"
	NotificationTypeReturnTicket   = "return_ticket"
	NotificationTypeFinePayment    = "fine_payment"
	NotificationTypeReturnReminder = "return_reminder"
	NotificationTypeSystem         = "system"
	NotificationTypeOther          = "other"
)

// Related model names for notifications
const (
	RelatedModelBook         = "Book"
	RelatedModelRegistration = "Registration"
	RelatedModelBorrowTicket = "BorrowTicket"
	RelatedModelReturnTicket = "ReturnTicket"
)

// Notification is a persisted in-app message for a single user.
type Notification struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Message        string     `gorm:"type:text;not null" json:"message"`
	Type           string     `gorm:"size:30;not null" json:"type"`
	RelatedModel   string     `gorm:"size:30" json:"related_model"`
	RelatedID      uint       `json:"related_id"`
	IsRead         bool       `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Category{},
		&Book{},
		&Registration{},
		&BorrowTicket{},
		&ReturnTicket{},
		&Notification{},
	)
}
