package services

import (
	"context"
	"testing"
	"time"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicketService(f *lifecycleFixture) *BorrowTicketService {
	return NewBorrowTicketService(
		f.db,
		repositories.NewBorrowTicketRepository(f.db),
		repositories.NewBookRepository(f.db),
		nil,
	)
}

func TestTicketCreateIsPendingAndReservesNothing(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newTicketService(f)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, f.user.ID, &CreateTicketInput{BookID: f.book.ID})
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusPending, ticket.Status)
	assert.Nil(t, ticket.DueDate)
	assert.Equal(t, 1, f.bookQuantity(t))
}

func TestTicketCreateRejectsDuplicateActiveBorrow(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newTicketService(f)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.user.ID, &CreateTicketInput{BookID: f.book.ID})
	require.NoError(t, err)

	_, err = svc.Create(ctx, f.user.ID, &CreateTicketInput{BookID: f.book.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicateBorrow)

	// Another reader is not blocked.
	other := &models.User{Username: "other2", FullName: "Người khác", Email: "other2@example.com", Password: "x", Role: "USER", IsActive: true}
	require.NoError(t, f.db.Create(other).Error)
	_, err = svc.Create(ctx, other.ID, &CreateTicketInput{BookID: f.book.ID})
	require.NoError(t, err)
}

func TestTicketCreateRejectsEmptyShelfEarly(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newTicketService(f)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&models.Book{}).Where("id = ?", f.book.ID).Update("quantity", 0).Error)

	_, err := svc.Create(ctx, f.user.ID, &CreateTicketInput{BookID: f.book.ID})
	assert.ErrorIs(t, err, domain.ErrBookOutOfStock)
}

func TestTicketApproveFixesDueDateAndReservesCopy(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newTicketService(f)
	ctx := context.Background()

	borrowDate := time.Now().Add(2 * time.Hour)
	ticket, err := svc.Create(ctx, f.user.ID, &CreateTicketInput{BookID: f.book.ID, BorrowDate: borrowDate})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, ticket.ID, f.staff.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusApproved, approved.Status)
	require.NotNil(t, approved.DueDate)
	assert.WithinDuration(t, borrowDate.Add(domain.BorrowPeriod), *approved.DueDate, time.Second)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.staff.ID, *approved.ApprovedBy)

	assert.Equal(t, 0, f.bookQuantity(t))

	// Already decided; the second approval loses.
	_, err = svc.Approve(ctx, ticket.ID, f.staff.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTicketApproveLastCopyRace(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newTicketService(f)
	ctx := context.Background()

	other := &models.User{Username: "other3", FullName: "Người khác", Email: "other3@example.com", Password: "x", Role: "USER", IsActive: true}
	require.NoError(t, f.db.Create(other).Error)

	first, err := svc.Create(ctx, f.user.ID, &CreateTicketInput{BookID: f.book.ID})
	require.NoError(t, err)
	second, err := svc.Create(ctx, other.ID, &CreateTicketInput{BookID: f.book.ID})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, first.ID, f.staff.ID, nil)
	require.NoError(t, err)

	// Only one copy existed; the second approval must not go negative.
	_, err = svc.Approve(ctx, second.ID, f.staff.ID, nil)
	assert.ErrorIs(t, err, domain.ErrBookOutOfStock)
	assert.Equal(t, 0, f.bookQuantity(t))

	var got models.BorrowTicket
	require.NoError(t, f.db.First(&got, second.ID).Error)
	assert.Equal(t, models.TicketStatusPending, got.Status)
}

func TestTicketRejectLeavesStockAlone(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newTicketService(f)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, f.user.ID, &CreateTicketInput{BookID: f.book.ID})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, ticket.ID, f.staff.ID, &ProcessTicketInput{Note: "Thẻ thư viện hết hạn"})
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusRejected, rejected.Status)
	assert.Equal(t, 1, f.bookQuantity(t))

	_, err = svc.Reject(ctx, ticket.ID, f.staff.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTicketGetEnforcesOwnership(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newTicketService(f)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, f.user.ID, &CreateTicketInput{BookID: f.book.ID})
	require.NoError(t, err)

	_, err = svc.Get(ctx, ticket.ID, f.user.ID, domain.RoleUser)
	require.NoError(t, err)
	_, err = svc.Get(ctx, ticket.ID, f.user.ID+100, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = svc.Get(ctx, ticket.ID, f.staff.ID, domain.RoleAdmin)
	require.NoError(t, err)
}
