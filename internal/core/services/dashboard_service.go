package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// User Statistics
	TotalUsers   int64 `json:"total_users"`
	TotalAdmins  int64 `json:"total_admins"`
	TotalStaff   int64 `json:"total_staff"`
	TotalReaders int64 `json:"total_readers"`

	// Catalog Statistics
	TotalBooks      int64 `json:"total_books"`
	TotalCategories int64 `json:"total_categories"`
	CopiesOnShelf   int64 `json:"copies_on_shelf"`

	// Lifecycle Statistics
	PendingRegistrations int64 `json:"pending_registrations"`
	PendingTickets       int64 `json:"pending_tickets"`
	ActiveLoans          int64 `json:"active_loans"`
	OverdueLoans         int64 `json:"overdue_loans"`
	ReturnsThisMonth     int64 `json:"returns_this_month"`

	// Fine Statistics
	FineTotal  int64 `json:"fine_total"`
	FineUnpaid int64 `json:"fine_unpaid"`

	// Recent Activity
	RecentLoans []LoanSummary `json:"recent_loans"`
}

// LoanSummary represents a recent loan line on the dashboard
type LoanSummary struct {
	ID         uint       `json:"id"`
	Username   string     `json:"username"`
	BookTitle  string     `json:"book_title"`
	Status     string     `json:"status"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    *time.Time `json:"due_date"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	// User counts by role
	s.db.WithContext(ctx).Table("users").Where("deleted_at IS NULL").Count(&data.TotalUsers)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "ADMIN").Count(&data.TotalAdmins)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "STAFF").Count(&data.TotalStaff)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "USER").Count(&data.TotalReaders)

	// Catalog counts
	s.db.WithContext(ctx).Table("books").Where("deleted_at IS NULL").Count(&data.TotalBooks)
	s.db.WithContext(ctx).Table("categories").Where("deleted_at IS NULL").Count(&data.TotalCategories)
	s.db.WithContext(ctx).Table("books").
		Where("deleted_at IS NULL").
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&data.CopiesOnShelf)

	// Lifecycle counts
	s.db.WithContext(ctx).Table("registrations").Where("status = ?", "pending").Count(&data.PendingRegistrations)
	s.db.WithContext(ctx).Table("borrow_tickets").Where("status = ?", "pending").Count(&data.PendingTickets)
	s.db.WithContext(ctx).Table("borrow_tickets").Where("status = ?", "approved").Count(&data.ActiveLoans)
	s.db.WithContext(ctx).Table("borrow_tickets").
		Where("status = ? AND due_date < ?", "approved", time.Now()).
		Count(&data.OverdueLoans)

	monthStart := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.Local)
	s.db.WithContext(ctx).Table("return_tickets").
		Where("return_date >= ?", monthStart).
		Count(&data.ReturnsThisMonth)

	// Fines
	s.db.WithContext(ctx).Table("return_tickets").
		Select("COALESCE(SUM(fine_amount), 0)").
		Scan(&data.FineTotal)
	s.db.WithContext(ctx).Table("return_tickets").
		Where("fine_paid = ?", false).
		Select("COALESCE(SUM(fine_amount), 0)").
		Scan(&data.FineUnpaid)

	// Recent loans
	s.db.WithContext(ctx).Table("borrow_tickets").
		Joins("JOIN users ON users.id = borrow_tickets.user_id").
		Joins("JOIN books ON books.id = borrow_tickets.book_id").
		Select("borrow_tickets.id, users.username, books.title AS book_title, borrow_tickets.status, borrow_tickets.borrow_date, borrow_tickets.due_date").
		Order("borrow_tickets.created_at DESC").
		Limit(10).
		Scan(&data.RecentLoans)

	return data, nil
}
