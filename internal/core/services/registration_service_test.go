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

func newRegistrationService(f *lifecycleFixture) *RegistrationService {
	return NewRegistrationService(
		f.db,
		repositories.NewRegistrationRepository(f.db),
		repositories.NewBorrowTicketRepository(f.db),
		repositories.NewBookRepository(f.db),
		nil,
	)
}

func TestRegistrationApproveCreatesLinkedLoan(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newRegistrationService(f)
	ctx := context.Background()

	desired := time.Now().Add(24 * time.Hour)
	registration, err := svc.Create(ctx, f.user.ID, &CreateRegistrationInput{
		BookID:            f.book.ID,
		DesiredBorrowDate: desired,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusPending, registration.Status)

	// Filing the request reserves nothing.
	assert.Equal(t, 1, f.bookQuantity(t))

	approved, err := svc.Approve(ctx, registration.ID, f.staff.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusApproved, approved.Status)
	require.NotNil(t, approved.BorrowTicketID)
	require.NotNil(t, approved.ProcessedBy)
	assert.Equal(t, f.staff.ID, *approved.ProcessedBy)

	// Approval reserves the copy and opens an already-active loan.
	assert.Equal(t, 0, f.bookQuantity(t))

	var ticket models.BorrowTicket
	require.NoError(t, f.db.First(&ticket, *approved.BorrowTicketID).Error)
	assert.Equal(t, models.TicketStatusApproved, ticket.Status)
	assert.Equal(t, f.user.ID, ticket.UserID)
	require.NotNil(t, ticket.DueDate)
	assert.WithinDuration(t, desired.Add(domain.BorrowPeriod), *ticket.DueDate, time.Second)
}

func TestRegistrationApproveOutOfStockStaysPending(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newRegistrationService(f)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&models.Book{}).Where("id = ?", f.book.ID).Update("quantity", 0).Error)

	registration, err := svc.Create(ctx, f.user.ID, &CreateRegistrationInput{
		BookID:            f.book.ID,
		DesiredBorrowDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, registration.ID, f.staff.ID, nil)
	assert.ErrorIs(t, err, domain.ErrBookOutOfStock)

	// The request survives the failed approval so staff can retry.
	var got models.Registration
	require.NoError(t, f.db.First(&got, registration.ID).Error)
	assert.Equal(t, models.RegistrationStatusPending, got.Status)
	assert.Nil(t, got.BorrowTicketID)

	// No orphan loan either.
	var count int64
	require.NoError(t, f.db.Model(&models.BorrowTicket{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRegistrationApproveTwiceFails(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newRegistrationService(f)
	ctx := context.Background()

	registration, err := svc.Create(ctx, f.user.ID, &CreateRegistrationInput{
		BookID:            f.book.ID,
		DesiredBorrowDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, registration.ID, f.staff.ID, nil)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, registration.ID, f.staff.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRegistrationRejectKeepsStock(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newRegistrationService(f)
	ctx := context.Background()

	registration, err := svc.Create(ctx, f.user.ID, &CreateRegistrationInput{
		BookID:            f.book.ID,
		DesiredBorrowDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, registration.ID, f.staff.ID, &ProcessRegistrationInput{Note: "Sách đang bảo trì"})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusRejected, rejected.Status)
	assert.Equal(t, "Sách đang bảo trì", rejected.Note)
	assert.Equal(t, 1, f.bookQuantity(t))
}

func TestRegistrationCancelOnlyByOwnerWhilePending(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newRegistrationService(f)
	ctx := context.Background()

	registration, err := svc.Create(ctx, f.user.ID, &CreateRegistrationInput{
		BookID:            f.book.ID,
		DesiredBorrowDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, registration.ID, f.staff.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	cancelled, err := svc.Cancel(ctx, registration.ID, f.user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusCancelled, cancelled.Status)
	assert.Equal(t, "Người dùng hủy yêu cầu", cancelled.Note)

	// A decided request cannot be cancelled again.
	_, err = svc.Cancel(ctx, registration.ID, f.user.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRegistrationListPinsPlainUsersToOwnRows(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newRegistrationService(f)
	ctx := context.Background()

	other := &models.User{Username: "other", FullName: "Người khác", Email: "other@example.com", Password: "x", Role: "USER", IsActive: true}
	require.NoError(t, f.db.Create(other).Error)

	_, err := svc.Create(ctx, f.user.ID, &CreateRegistrationInput{BookID: f.book.ID, DesiredBorrowDate: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, other.ID, &CreateRegistrationInput{BookID: f.book.ID, DesiredBorrowDate: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	rows, total, err := svc.List(ctx, f.user.ID, domain.RoleUser, nil, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, f.user.ID, rows[0].UserID)

	_, total, err = svc.List(ctx, f.staff.ID, domain.RoleStaff, nil, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
