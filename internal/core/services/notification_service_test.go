package services

import (
	"context"
	"testing"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationService(f *lifecycleFixture) *NotificationService {
	return NewNotificationService(
		repositories.NewNotificationRepository(f.db),
		repositories.NewUserRepository(f.db),
	)
}

func TestNewRegistrationFansOutToStaff(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newNotificationService(f)
	ctx := context.Background()

	admin := &models.User{Username: "boss", FullName: "Quản trị", Email: "boss@example.com", Password: "x", Role: "ADMIN", IsActive: true}
	require.NoError(t, f.db.Create(admin).Error)

	registration := &models.Registration{ID: 7, UserID: f.user.ID, BookID: f.book.ID}
	svc.NotifyNewRegistration(ctx, registration, "Độc giả", "Nhà Giả Kim")

	// Staff and admin each got one copy, the reader got none.
	for _, staffID := range []uint{f.staff.ID, admin.ID} {
		count, err := svc.CountUnread(ctx, staffID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count, "user %d", staffID)
	}
	count, err := svc.CountUnread(ctx, f.user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	notifications, _, err := svc.ListForUser(ctx, f.staff.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeBorrowRequest, notifications[0].Type)
	assert.Equal(t, models.RelatedModelRegistration, notifications[0].RelatedModel)
	assert.EqualValues(t, 7, notifications[0].RelatedID)
	assert.Contains(t, notifications[0].Message, "Nhà Giả Kim")
}

func TestMarkReadAndDeleteReadLifecycle(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newNotificationService(f)
	ctx := context.Background()

	registration := &models.Registration{ID: 1, UserID: f.user.ID, BookID: f.book.ID}
	svc.NotifyRegistrationProcessed(ctx, registration, "Nhà Giả Kim", true)
	svc.NotifyRegistrationProcessed(ctx, registration, "Nhà Giả Kim", false)

	notifications, unread, err := svc.ListForUser(ctx, f.user.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.EqualValues(t, 2, unread)

	require.NoError(t, svc.MarkRead(ctx, notifications[0].ID, f.user.ID))

	_, unread, err = svc.ListForUser(ctx, f.user.ID, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	// Another user cannot touch someone else's notification.
	err = svc.MarkRead(ctx, notifications[1].ID, f.staff.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.DeleteRead(ctx, f.user.ID))

	notifications, unread, err = svc.ListForUser(ctx, f.user.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.EqualValues(t, 1, unread)
	assert.False(t, notifications[0].IsRead)
}

func TestBroadcastReachesEveryoneWhenUnaddressed(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newNotificationService(f)
	ctx := context.Background()

	sent, err := svc.Broadcast(ctx, nil, "Bảo trì hệ thống", "Thư viện đóng cửa ngày 02/09")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	for _, id := range []uint{f.user.ID, f.staff.ID} {
		count, err := svc.CountUnread(ctx, id)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	}

	sent, err = svc.Broadcast(ctx, []uint{f.user.ID}, "Riêng bạn", "Thẻ sắp hết hạn")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	_, err = svc.Broadcast(ctx, nil, "", "thiếu tiêu đề")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarkAllRead(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newNotificationService(f)
	ctx := context.Background()

	returnTicket := &models.ReturnTicket{ID: 3, FineAmount: 25000, FineReason: "Sách bị hư hỏng"}
	svc.NotifyReturnProcessed(ctx, returnTicket, f.user.ID, "Nhà Giả Kim")
	svc.NotifyFinePaid(ctx, returnTicket, f.user.ID)

	require.NoError(t, svc.MarkAllRead(ctx, f.user.ID))

	count, err := svc.CountUnread(ctx, f.user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
