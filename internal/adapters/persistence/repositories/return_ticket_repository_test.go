package repositories

import (
	"context"
	"testing"
	"time"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedApprovedTicket(t *testing.T, ticketRepo BorrowTicketRepository, userID, bookID uint) *models.BorrowTicket {
	t.Helper()
	due := time.Now().Add(14 * 24 * time.Hour)
	ticket := &models.BorrowTicket{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: time.Now(),
		DueDate:    &due,
		Status:     models.TicketStatusApproved,
	}
	require.NoError(t, ticketRepo.Create(context.Background(), ticket))
	return ticket
}

func TestCreateRejectsSecondReturnForSameTicket(t *testing.T) {
	db := setupTestDB(t)
	ticketRepo := NewBorrowTicketRepository(db)
	repo := NewReturnTicketRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "reader10", "USER")
	staff := seedUser(t, db, "staff10", "STAFF")
	book := seedBook(t, db, 1, true)
	ticket := seedApprovedTicket(t, ticketRepo, user.ID, book.ID)

	first := &models.ReturnTicket{
		BorrowTicketID: ticket.ID,
		ReturnDate:     time.Now(),
		Condition:      models.ConditionGood,
		ProcessedBy:    staff.ID,
	}
	require.NoError(t, repo.Create(ctx, first))

	// The unique index on borrow_ticket_id makes the second insert lose.
	second := &models.ReturnTicket{
		BorrowTicketID: ticket.ID,
		ReturnDate:     time.Now(),
		Condition:      models.ConditionDamaged,
		ProcessedBy:    staff.ID,
	}
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, domain.ErrAlreadyReturned)
}

func TestMarkFinePaidOnlyOnceAndOnlyWithFine(t *testing.T) {
	db := setupTestDB(t)
	ticketRepo := NewBorrowTicketRepository(db)
	repo := NewReturnTicketRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "reader11", "USER")
	staff := seedUser(t, db, "staff11", "STAFF")
	book := seedBook(t, db, 2, true)

	fined := seedApprovedTicket(t, ticketRepo, user.ID, book.ID)
	finedReturn := &models.ReturnTicket{
		BorrowTicketID: fined.ID,
		ReturnDate:     time.Now(),
		Condition:      models.ConditionDamaged,
		FineAmount:     25000,
		FineReason:     "Sách bị hư hỏng",
		ProcessedBy:    staff.ID,
	}
	require.NoError(t, repo.Create(ctx, finedReturn))

	won, err := repo.MarkFinePaid(ctx, finedReturn.ID)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkFinePaid(ctx, finedReturn.ID)
	require.NoError(t, err)
	assert.False(t, won)

	clean := seedApprovedTicket(t, ticketRepo, user.ID, book.ID)
	cleanReturn := &models.ReturnTicket{
		BorrowTicketID: clean.ID,
		ReturnDate:     time.Now(),
		Condition:      models.ConditionGood,
		ProcessedBy:    staff.ID,
	}
	require.NoError(t, repo.Create(ctx, cleanReturn))

	won, err = repo.MarkFinePaid(ctx, cleanReturn.ID)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestListFiltersByLoanOwner(t *testing.T) {
	db := setupTestDB(t)
	ticketRepo := NewBorrowTicketRepository(db)
	repo := NewReturnTicketRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice", "USER")
	bob := seedUser(t, db, "bob", "USER")
	staff := seedUser(t, db, "staff12", "STAFF")
	book := seedBook(t, db, 2, true)

	aliceTicket := seedApprovedTicket(t, ticketRepo, alice.ID, book.ID)
	bobTicket := seedApprovedTicket(t, ticketRepo, bob.ID, book.ID)

	require.NoError(t, repo.Create(ctx, &models.ReturnTicket{
		BorrowTicketID: aliceTicket.ID,
		ReturnDate:     time.Now(),
		Condition:      models.ConditionGood,
		ProcessedBy:    staff.ID,
	}))
	require.NoError(t, repo.Create(ctx, &models.ReturnTicket{
		BorrowTicketID: bobTicket.ID,
		ReturnDate:     time.Now(),
		Condition:      models.ConditionLost,
		ProcessedBy:    staff.ID,
	}))

	returns, total, err := repo.List(ctx, &ReturnFilter{UserID: &alice.ID}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, returns, 1)
	assert.Equal(t, aliceTicket.ID, returns[0].BorrowTicketID)

	returns, total, err = repo.List(ctx, &ReturnFilter{Condition: models.ConditionLost}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, returns, 1)
	assert.Equal(t, bobTicket.ID, returns[0].BorrowTicketID)
}

func TestStatsAggregatesConditionsAndFines(t *testing.T) {
	db := setupTestDB(t)
	ticketRepo := NewBorrowTicketRepository(db)
	repo := NewReturnTicketRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "reader13", "USER")
	staff := seedUser(t, db, "staff13", "STAFF")
	book := seedBook(t, db, 5, true)

	mkReturn := func(condition string, fine int64, paid bool) {
		ticket := seedApprovedTicket(t, ticketRepo, user.ID, book.ID)
		require.NoError(t, repo.Create(ctx, &models.ReturnTicket{
			BorrowTicketID: ticket.ID,
			ReturnDate:     time.Now(),
			Condition:      condition,
			FineAmount:     fine,
			FinePaid:       paid,
			ProcessedBy:    staff.ID,
		}))
	}

	mkReturn(models.ConditionGood, 0, false)
	mkReturn(models.ConditionGood, 10000, true)
	mkReturn(models.ConditionDamaged, 25000, false)
	mkReturn(models.ConditionLost, 100000, false)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 2, stats.Good)
	assert.EqualValues(t, 1, stats.Damaged)
	assert.EqualValues(t, 1, stats.Lost)
	assert.EqualValues(t, 135000, stats.FineTotal)
	assert.EqualValues(t, 125000, stats.FineUnpaid)
	assert.EqualValues(t, 2, stats.UnpaidCount)
}
