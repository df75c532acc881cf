package services

import (
	"context"
	"fmt"
	"log"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/core/domain"
)

// NotificationService handles persisted in-app notifications.
// The Notify* helpers are fire-and-forget: a failed insert is logged
// and swallowed so it can never fail the business operation behind it.
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

// ListForUser lists the newest notifications of a user
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, limit int) ([]*models.Notification, int64, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

// MarkRead marks one notification of the user as read
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every unread notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// Delete deletes one notification of the user
func (s *NotificationService) Delete(ctx context.Context, id, userID uint) error {
	return s.notificationRepo.Delete(ctx, id, userID)
}

// DeleteRead clears all read notifications of the user
func (s *NotificationService) DeleteRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.DeleteRead(ctx, userID)
}

// CountUnread counts unread notifications of the user
func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// Broadcast sends an announcement to the given users, or to every
// active account when userIDs is empty. Unlike the notify* helpers this
// is a direct admin operation, so failures are returned.
func (s *NotificationService) Broadcast(ctx context.Context, userIDs []uint, title, message string) (int, error) {
	if title == "" || message == "" {
		return 0, domain.ErrInvalidInput
	}

	if len(userIDs) == 0 {
		ids, err := s.userRepo.ListIDsByRoles(ctx,
			string(domain.RoleUser), string(domain.RoleStaff), string(domain.RoleAdmin))
		if err != nil {
			return 0, err
		}
		userIDs = ids
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	notifications := make([]*models.Notification, len(userIDs))
	for i, id := range userIDs {
		notifications[i] = &models.Notification{
			UserID:  id,
			Title:   title,
			Message: message,
			Type:    models.NotificationTypeSystem,
		}
	}
	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		return 0, err
	}

	log.Printf("✅ Broadcast notification sent to %d users", len(userIDs))
	return len(userIDs), nil
}

// notify inserts one notification, logging failures instead of
// returning them.
func (s *NotificationService) notify(ctx context.Context, n *models.Notification) {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("❌ Failed to create notification for user %d: %v", n.UserID, err)
	}
}

// notifyStaff fans one message out to every active staff and admin user.
func (s *NotificationService) notifyStaff(ctx context.Context, title, message, nType, relatedModel string, relatedID uint) {
	ids, err := s.userRepo.ListIDsByRoles(ctx, string(domain.RoleStaff), string(domain.RoleAdmin))
	if err != nil {
		log.Printf("❌ Failed to resolve staff audience: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	notifications := make([]*models.Notification, len(ids))
	for i, id := range ids {
		notifications[i] = &models.Notification{
			UserID:       id,
			Title:        title,
			Message:      message,
			Type:         nType,
			RelatedModel: relatedModel,
			RelatedID:    relatedID,
		}
	}
	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		log.Printf("❌ Failed to create staff notifications: %v", err)
	}
}

// NotifyNewRegistration tells the staff desk about a new borrow request
func (s *NotificationService) NotifyNewRegistration(ctx context.Context, registration *models.Registration, userName, bookTitle string) {
	s.notifyStaff(ctx,
		"Yêu cầu mượn sách mới",
		fmt.Sprintf("%s đã đăng ký mượn sách \"%s\"", userName, bookTitle),
		models.NotificationTypeBorrowRequest,
		models.RelatedModelRegistration,
		registration.ID,
	)
}

// NotifyRegistrationProcessed tells the reader their request was decided
func (s *NotificationService) NotifyRegistrationProcessed(ctx context.Context, registration *models.Registration, bookTitle string, approved bool) {
	title := "Yêu cầu mượn sách bị từ chối"
	message := fmt.Sprintf("Yêu cầu mượn sách \"%s\" của bạn đã bị từ chối", bookTitle)
	if approved {
		title = "Yêu cầu mượn sách được duyệt"
		message = fmt.Sprintf("Yêu cầu mượn sách \"%s\" của bạn đã được duyệt", bookTitle)
	}
	s.notify(ctx, &models.Notification{
		UserID:       registration.UserID,
		Title:        title,
		Message:      message,
		Type:         models.NotificationTypeBorrowRequest,
		RelatedModel: models.RelatedModelRegistration,
		RelatedID:    registration.ID,
	})
}

// NotifyNewBorrowTicket tells the staff desk about a direct borrow request
func (s *NotificationService) NotifyNewBorrowTicket(ctx context.Context, ticket *models.BorrowTicket, userName, bookTitle string) {
	s.notifyStaff(ctx,
		"Phiếu mượn sách mới",
		fmt.Sprintf("%s đã tạo phiếu mượn sách \"%s\"", userName, bookTitle),
		models.NotificationTypeBorrowRequest,
		models.RelatedModelBorrowTicket,
		ticket.ID,
	)
}

// NotifyTicketProcessed tells the reader their borrow ticket was decided
func (s *NotificationService) NotifyTicketProcessed(ctx context.Context, ticket *models.BorrowTicket, bookTitle string, approved bool) {
	title := "Phiếu mượn sách bị từ chối"
	message := fmt.Sprintf("Phiếu mượn sách \"%s\" của bạn đã bị từ chối", bookTitle)
	if approved {
		title = "Phiếu mượn sách được duyệt"
		message = fmt.Sprintf("Phiếu mượn sách \"%s\" của bạn đã được duyệt, hạn trả %s",
			bookTitle, ticket.DueDate.Format("02/01/2006"))
	}
	s.notify(ctx, &models.Notification{
		UserID:       ticket.UserID,
		Title:        title,
		Message:      message,
		Type:         models.NotificationTypeBorrowRequest,
		RelatedModel: models.RelatedModelBorrowTicket,
		RelatedID:    ticket.ID,
	})
}

// NotifyReturnProcessed tells the reader their return was recorded,
// including the fine when one was assessed.
func (s *NotificationService) NotifyReturnProcessed(ctx context.Context, returnTicket *models.ReturnTicket, userID uint, bookTitle string) {
	message := fmt.Sprintf("Bạn đã trả sách \"%s\" thành công", bookTitle)
	if returnTicket.FineAmount > 0 {
		message = fmt.Sprintf("Bạn đã trả sách \"%s\". Phí phạt: %d VND (%s)",
			bookTitle, returnTicket.FineAmount, returnTicket.FineReason)
	}
	s.notify(ctx, &models.Notification{
		UserID:       userID,
		Title:        "Trả sách thành công",
		Message:      message,
		Type:         models.NotificationTypeReturnTicket,
		RelatedModel: models.RelatedModelReturnTicket,
		RelatedID:    returnTicket.ID,
	})
}

// NotifyFinePaid tells the reader their fine payment was recorded
func (s *NotificationService) NotifyFinePaid(ctx context.Context, returnTicket *models.ReturnTicket, userID uint) {
	s.notify(ctx, &models.Notification{
		UserID:       userID,
		Title:        "Thanh toán phí phạt",
		Message:      fmt.Sprintf("Bạn đã thanh toán phí phạt %d VND", returnTicket.FineAmount),
		Type:         models.NotificationTypeFinePayment,
		RelatedModel: models.RelatedModelReturnTicket,
		RelatedID:    returnTicket.ID,
	})
}

// NotifyReturnDue reminds the reader their loan is due soon or overdue
func (s *NotificationService) NotifyReturnDue(ctx context.Context, ticket *models.BorrowTicket, bookTitle string, overdue bool) {
	title := "Nhắc nhở trả sách"
	message := fmt.Sprintf("Sách \"%s\" sắp đến hạn trả (%s)",
		bookTitle, ticket.DueDate.Format("02/01/2006"))
	if overdue {
		title = "Sách quá hạn"
		message = fmt.Sprintf("Sách \"%s\" đã quá hạn trả (%s), vui lòng trả sách sớm",
			bookTitle, ticket.DueDate.Format("02/01/2006"))
	}
	s.notify(ctx, &models.Notification{
		UserID:       ticket.UserID,
		Title:        title,
		Message:      message,
		Type:         models.NotificationTypeReturnReminder,
		RelatedModel: models.RelatedModelBorrowTicket,
		RelatedID:    ticket.ID,
	})
}
