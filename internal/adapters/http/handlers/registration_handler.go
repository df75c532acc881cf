package handlers

import (
	"errors"
	"strconv"
	"time"

	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/core/domain"
	"librahub/internal/core/services"
	"librahub/internal/pkg/pagination"
	"librahub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RegistrationHandler handles borrow registration endpoints
type RegistrationHandler struct {
	registrationService *services.RegistrationService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationService *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// CreateRegistrationRequest represents create registration request
type CreateRegistrationRequest struct {
	BookID            uint   `json:"book_id"`
	DesiredBorrowDate string `json:"desired_borrow_date"` // RFC 3339 or YYYY-MM-DD
	Note              string `json:"note"`
}

// parseDate accepts RFC 3339 timestamps and plain dates
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

// CreateRegistration files a new borrow request
// @Summary Create borrow registration
// @Description Register a request to borrow a book
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRegistrationRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /registrations [post]
func (h *RegistrationHandler) CreateRegistration(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}
	if req.DesiredBorrowDate == "" {
		return response.BadRequest(c, "Desired borrow date is required")
	}

	desiredDate, err := parseDate(req.DesiredBorrowDate)
	if err != nil {
		return response.BadRequest(c, "Invalid desired borrow date")
	}

	registration, err := h.registrationService.Create(c.Context(), userID, &services.CreateRegistrationInput{
		BookID:            req.BookID,
		DesiredBorrowDate: desiredDate,
		Note:              req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid registration data")
		default:
			return response.InternalServerError(c, "Failed to create registration")
		}
	}

	return response.Created(c, "Registration created successfully", fiber.Map{
		"registration": registration,
	})
}

// ListRegistrations lists registrations
// @Summary List registrations
// @Description List borrow registrations (users see their own, staff see all)
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Param user_id query int false "Filter by user (staff only)"
// @Success 200 {object} response.Response
// @Router /registrations [get]
func (h *RegistrationHandler) ListRegistrations(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	filter := &repositories.RegistrationFilter{
		Status: c.Query("status"),
	}
	if raw := c.Query("user_id"); raw != "" && role.IsStaff() {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filterUserID := uint(id)
			filter.UserID = &filterUserID
		}
	}

	registrations, total, err := h.registrationService.List(c.Context(), userID, role, filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list registrations")
	}

	return response.Success(c, "Registrations retrieved successfully", pagination.NewResponse(registrations, params, total))
}

// GetRegistration gets one registration
// @Summary Get registration
// @Description Get a registration by ID (owner or staff)
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) GetRegistration(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	registration, err := h.registrationService.Get(c.Context(), uint(id), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRegistrationNotFound):
			return response.NotFound(c, "Registration not found")
		case errors.Is(err, domain.ErrNotOwner):
			return response.Forbidden(c, "You can only view your own registrations")
		default:
			return response.InternalServerError(c, "Failed to get registration")
		}
	}

	return response.Success(c, "Registration retrieved successfully", fiber.Map{
		"registration": registration,
	})
}

// ProcessRegistrationRequest represents approve/reject/cancel request
type ProcessRegistrationRequest struct {
	Note string `json:"note"`
}

// ApproveRegistration approves a pending registration
// @Summary Approve registration
// @Description Approve a pending registration, reserving a copy and opening an approved borrow ticket (Staff/Admin only)
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Param body body ProcessRegistrationRequest false "Optional note"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /registrations/{id}/approve [post]
func (h *RegistrationHandler) ApproveRegistration(c *fiber.Ctx) error {
	staffID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req ProcessRegistrationRequest
	_ = c.BodyParser(&req)

	registration, err := h.registrationService.Approve(c.Context(), uint(id), staffID, &services.ProcessRegistrationInput{Note: req.Note})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRegistrationNotFound):
			return response.NotFound(c, "Registration not found")
		case errors.Is(err, domain.ErrInvalidState):
			return response.Conflict(c, "Registration has already been processed")
		case errors.Is(err, domain.ErrBookOutOfStock):
			return response.UnprocessableEntity(c, "Book is out of stock, registration stays pending")
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		default:
			return response.InternalServerError(c, "Failed to approve registration")
		}
	}

	return response.Success(c, "Registration approved successfully", fiber.Map{
		"registration": registration,
	})
}

// RejectRegistration rejects a pending registration
// @Summary Reject registration
// @Description Reject a pending registration (Staff/Admin only)
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Param body body ProcessRegistrationRequest false "Optional note"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /registrations/{id}/reject [post]
func (h *RegistrationHandler) RejectRegistration(c *fiber.Ctx) error {
	staffID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req ProcessRegistrationRequest
	_ = c.BodyParser(&req)

	registration, err := h.registrationService.Reject(c.Context(), uint(id), staffID, &services.ProcessRegistrationInput{Note: req.Note})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRegistrationNotFound):
			return response.NotFound(c, "Registration not found")
		case errors.Is(err, domain.ErrInvalidState):
			return response.Conflict(c, "Registration has already been processed")
		default:
			return response.InternalServerError(c, "Failed to reject registration")
		}
	}

	return response.Success(c, "Registration rejected successfully", fiber.Map{
		"registration": registration,
	})
}

// CancelRegistration cancels the caller's own pending registration
// @Summary Cancel registration
// @Description Cancel your own pending registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Param body body ProcessRegistrationRequest false "Optional note"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /registrations/{id}/cancel [post]
func (h *RegistrationHandler) CancelRegistration(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req ProcessRegistrationRequest
	_ = c.BodyParser(&req)

	registration, err := h.registrationService.Cancel(c.Context(), uint(id), userID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRegistrationNotFound):
			return response.NotFound(c, "Registration not found")
		case errors.Is(err, domain.ErrNotOwner):
			return response.Forbidden(c, "You can only cancel your own registrations")
		case errors.Is(err, domain.ErrInvalidState):
			return response.Conflict(c, "Registration has already been processed")
		default:
			return response.InternalServerError(c, "Failed to cancel registration")
		}
	}

	return response.Success(c, "Registration cancelled successfully", fiber.Map{
		"registration": registration,
	})
}
