package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "USER"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// IsStaff reports whether the role may process tickets and registrations.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User represents a user in the domain layer
type User struct {
	ID        uint
	Username  string
	FullName  string
	Email     string
	Password  string // Hashed
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefreshToken represents a refresh token in the domain
type RefreshToken struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Fine is the penalty attached to a return ticket.
// Amount is in the smallest currency unit (VND).
type Fine struct {
	Amount int64
	Reason string
	Paid   bool
}

// BorrowPeriod is the loan window granted at approval time.
const BorrowPeriod = 14 * 24 * time.Hour

// LateFeePerDay is charged per calendar day past the due date (VND).
const LateFeePerDay int64 = 10000
