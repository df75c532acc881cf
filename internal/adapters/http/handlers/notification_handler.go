package handlers

import (
	"errors"
	"strconv"

	"librahub/internal/core/domain"
	"librahub/internal/core/services"
	"librahub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notifyService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifyService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifyService: notifyService}
}

// ListNotifications lists the caller's notifications
// @Summary List notifications
// @Description List your newest notifications with unread count
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max items (default 50)"
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	notifications, unread, err := h.notifyService.ListForUser(c.Context(), userID, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list notifications")
	}

	return response.Success(c, "Notifications retrieved successfully", fiber.Map{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// UnreadCount returns the caller's unread notification count
// @Summary Unread count
// @Description Count your unread notifications
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	count, err := h.notifyService.CountUnread(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count notifications")
	}

	return response.Success(c, "Unread count retrieved successfully", fiber.Map{
		"unread_count": count,
	})
}

// BroadcastRequest represents bulk notification request
type BroadcastRequest struct {
	UserIDs []uint `json:"user_ids"`
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Broadcast sends an announcement to many users
// @Summary Broadcast notification
// @Description Send a system announcement to the given users, or everyone when user_ids is empty (Admin only)
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BroadcastRequest true "Announcement"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /notifications/bulk [post]
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	var req BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	sent, err := h.notifyService.Broadcast(c.Context(), req.UserIDs, req.Title, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Title and message are required")
		}
		return response.InternalServerError(c, "Failed to send notifications")
	}

	return response.Created(c, "Notifications sent successfully", fiber.Map{
		"sent": sent,
	})
}

// MarkRead marks one notification as read
// @Summary Mark notification read
// @Description Mark one of your notifications as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.notifyService.MarkRead(c.Context(), uint(id), userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to mark notification as read")
	}

	return response.Success(c, "Notification marked as read", nil)
}

// MarkAllRead marks all the caller's notifications as read
// @Summary Mark all read
// @Description Mark all of your notifications as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.notifyService.MarkAllRead(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to mark notifications as read")
	}

	return response.Success(c, "All notifications marked as read", nil)
}

// DeleteNotification deletes one notification
// @Summary Delete notification
// @Description Delete one of your notifications
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.notifyService.Delete(c.Context(), uint(id), userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to delete notification")
	}

	return response.Success(c, "Notification deleted successfully", nil)
}

// DeleteRead clears all read notifications
// @Summary Delete read notifications
// @Description Delete all of your read notifications
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/read [delete]
func (h *NotificationHandler) DeleteRead(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.notifyService.DeleteRead(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to delete notifications")
	}

	return response.Success(c, "Read notifications deleted successfully", nil)
}
