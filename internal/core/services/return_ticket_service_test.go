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

func newReturnService(f *lifecycleFixture) *ReturnTicketService {
	return NewReturnTicketService(
		f.db,
		repositories.NewReturnTicketRepository(f.db),
		repositories.NewBorrowTicketRepository(f.db),
		repositories.NewBookRepository(f.db),
		nil,
	)
}

func activeLoan(t *testing.T, f *lifecycleFixture, due time.Time) *models.BorrowTicket {
	t.Helper()
	ticket := &models.BorrowTicket{
		UserID:     f.user.ID,
		BookID:     f.book.ID,
		BorrowDate: due.Add(-domain.BorrowPeriod),
		DueDate:    &due,
		Status:     models.TicketStatusApproved,
	}
	require.NoError(t, f.db.Create(ticket).Error)
	// The copy left the shelf when the loan was approved.
	require.NoError(t, f.db.Model(&models.Book{}).Where("id = ?", f.book.ID).
		Update("quantity", f.bookQuantity(t)-1).Error)
	return ticket
}

func TestReturnGoodOnTimeRestocksWithoutFine(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newReturnService(f)
	ctx := context.Background()
	ticket := activeLoan(t, f, time.Now().Add(24*time.Hour))

	returnTicket, err := svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: ticket.ID,
		Condition:      models.ConditionGood,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, returnTicket.FineAmount)
	assert.Empty(t, returnTicket.FineReason)
	assert.Equal(t, f.staff.ID, returnTicket.ProcessedBy)

	assert.Equal(t, 1, f.bookQuantity(t))

	var got models.BorrowTicket
	require.NoError(t, f.db.First(&got, ticket.ID).Error)
	assert.Equal(t, models.TicketStatusReturned, got.Status)
	require.NotNil(t, got.ReturnDate)
}

func TestReturnLostChargesDoubleAndKeepsCopyOffShelf(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newReturnService(f)
	ctx := context.Background()
	ticket := activeLoan(t, f, time.Now().Add(24*time.Hour))

	returnTicket, err := svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: ticket.ID,
		Condition:      models.ConditionLost,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 100000, returnTicket.FineAmount)
	assert.Equal(t, "Sách bị mất", returnTicket.FineReason)

	// A lost copy never comes back.
	assert.Equal(t, 0, f.bookQuantity(t))
}

func TestReturnLateDamagedCombinesFine(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newReturnService(f)
	ctx := context.Background()
	ticket := activeLoan(t, f, time.Now().Add(-3*24*time.Hour))

	returnTicket, err := svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: ticket.ID,
		Condition:      models.ConditionDamaged,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 25000+3*domain.LateFeePerDay, returnTicket.FineAmount)
	assert.Equal(t, "Sách bị hư hỏng và Trả sách trễ 3 ngày", returnTicket.FineReason)
}

func TestReturnTwiceFails(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newReturnService(f)
	ctx := context.Background()
	ticket := activeLoan(t, f, time.Now().Add(24*time.Hour))

	_, err := svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: ticket.ID,
		Condition:      models.ConditionGood,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: ticket.ID,
		Condition:      models.ConditionGood,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyReturned)

	// The shelf got exactly one copy back.
	assert.Equal(t, 1, f.bookQuantity(t))
}

func TestReturnRejectsUnknownConditionAndPendingTicket(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newReturnService(f)
	ctx := context.Background()

	pending := &models.BorrowTicket{
		UserID:     f.user.ID,
		BookID:     f.book.ID,
		BorrowDate: time.Now(),
		Status:     models.TicketStatusPending,
	}
	require.NoError(t, f.db.Create(pending).Error)

	_, err := svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: pending.ID,
		Condition:      "shredded",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: pending.ID,
		Condition:      models.ConditionGood,
	})
	assert.ErrorIs(t, err, domain.ErrTicketNotReturnable)
}

func TestPayFineLifecycle(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newReturnService(f)
	ctx := context.Background()
	ticket := activeLoan(t, f, time.Now().Add(24*time.Hour))

	returnTicket, err := svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: ticket.ID,
		Condition:      models.ConditionDamaged,
	})
	require.NoError(t, err)
	require.Positive(t, returnTicket.FineAmount)

	paid, err := svc.PayFine(ctx, returnTicket.ID)
	require.NoError(t, err)
	assert.True(t, paid.FinePaid)

	_, err = svc.PayFine(ctx, returnTicket.ID)
	assert.ErrorIs(t, err, domain.ErrFineAlreadyPaid)
}

func TestPayFineWithoutFine(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newReturnService(f)
	ctx := context.Background()
	ticket := activeLoan(t, f, time.Now().Add(24*time.Hour))

	returnTicket, err := svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: ticket.ID,
		Condition:      models.ConditionGood,
	})
	require.NoError(t, err)

	_, err = svc.PayFine(ctx, returnTicket.ID)
	assert.ErrorIs(t, err, domain.ErrNoFine)
}

func TestReturnVisibilityForPlainUsers(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newReturnService(f)
	ctx := context.Background()
	ticket := activeLoan(t, f, time.Now().Add(24*time.Hour))

	returnTicket, err := svc.Create(ctx, f.staff.ID, &CreateReturnInput{
		BorrowTicketID: ticket.ID,
		Condition:      models.ConditionGood,
	})
	require.NoError(t, err)

	// Owner and staff can read it, a stranger cannot.
	_, err = svc.Get(ctx, returnTicket.ID, f.user.ID, domain.RoleUser)
	require.NoError(t, err)
	_, err = svc.Get(ctx, returnTicket.ID, f.staff.ID, domain.RoleStaff)
	require.NoError(t, err)
	_, err = svc.Get(ctx, returnTicket.ID, f.user.ID+100, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}
