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

// BorrowTicketHandler handles borrow ticket endpoints
type BorrowTicketHandler struct {
	ticketService *services.BorrowTicketService
}

// NewBorrowTicketHandler creates a new borrow ticket handler
func NewBorrowTicketHandler(ticketService *services.BorrowTicketService) *BorrowTicketHandler {
	return &BorrowTicketHandler{ticketService: ticketService}
}

// CreateTicketRequest represents create borrow ticket request
type CreateTicketRequest struct {
	BookID     uint   `json:"book_id"`
	BorrowDate string `json:"borrow_date"` // optional, defaults to now
	Note       string `json:"note"`
}

// CreateTicket opens a direct borrow ticket
// @Summary Create borrow ticket
// @Description Open a direct borrow ticket without a prior registration
// @Tags BorrowTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTicketRequest true "Ticket data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /borrow-tickets [post]
func (h *BorrowTicketHandler) CreateTicket(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}

	var borrowDate time.Time
	if req.BorrowDate != "" {
		parsed, err := parseDate(req.BorrowDate)
		if err != nil {
			return response.BadRequest(c, "Invalid borrow date")
		}
		borrowDate = parsed
	}

	ticket, err := h.ticketService.Create(c.Context(), userID, &services.CreateTicketInput{
		BookID:     req.BookID,
		BorrowDate: borrowDate,
		Note:       req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrBookOutOfStock):
			return response.UnprocessableEntity(c, "Book is not available for borrowing")
		case errors.Is(err, domain.ErrDuplicateBorrow):
			return response.Conflict(c, "You already have an active borrow for this book")
		default:
			return response.InternalServerError(c, "Failed to create borrow ticket")
		}
	}

	return response.Created(c, "Borrow ticket created successfully", fiber.Map{
		"ticket": ticket,
	})
}

// ListTickets lists borrow tickets
// @Summary List borrow tickets
// @Description List borrow tickets (users see their own, staff see all)
// @Tags BorrowTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Param user_id query int false "Filter by user (staff only)"
// @Success 200 {object} response.Response
// @Router /borrow-tickets [get]
func (h *BorrowTicketHandler) ListTickets(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	filter := &repositories.TicketFilter{
		Status: c.Query("status"),
	}
	if raw := c.Query("user_id"); raw != "" && role.IsStaff() {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filterUserID := uint(id)
			filter.UserID = &filterUserID
		}
	}

	tickets, total, err := h.ticketService.List(c.Context(), userID, role, filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list borrow tickets")
	}

	return response.Success(c, "Borrow tickets retrieved successfully", pagination.NewResponse(tickets, params, total))
}

// GetTicket gets one borrow ticket
// @Summary Get borrow ticket
// @Description Get a borrow ticket by ID (owner or staff)
// @Tags BorrowTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /borrow-tickets/{id} [get]
func (h *BorrowTicketHandler) GetTicket(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	ticket, err := h.ticketService.Get(c.Context(), uint(id), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound):
			return response.NotFound(c, "Borrow ticket not found")
		case errors.Is(err, domain.ErrNotOwner):
			return response.Forbidden(c, "You can only view your own borrow tickets")
		default:
			return response.InternalServerError(c, "Failed to get borrow ticket")
		}
	}

	return response.Success(c, "Borrow ticket retrieved successfully", fiber.Map{
		"ticket": ticket,
	})
}

// ProcessTicketRequest represents approve/reject request
type ProcessTicketRequest struct {
	Note string `json:"note"`
}

// ApproveTicket approves a pending borrow ticket
// @Summary Approve borrow ticket
// @Description Approve a pending ticket, reserving a copy and fixing the due date (Staff/Admin only)
// @Tags BorrowTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param body body ProcessTicketRequest false "Optional note"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /borrow-tickets/{id}/approve [post]
func (h *BorrowTicketHandler) ApproveTicket(c *fiber.Ctx) error {
	staffID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req ProcessTicketRequest
	_ = c.BodyParser(&req)

	ticket, err := h.ticketService.Approve(c.Context(), uint(id), staffID, &services.ProcessTicketInput{Note: req.Note})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound):
			return response.NotFound(c, "Borrow ticket not found")
		case errors.Is(err, domain.ErrInvalidState):
			return response.Conflict(c, "Borrow ticket has already been processed")
		case errors.Is(err, domain.ErrBookOutOfStock):
			return response.UnprocessableEntity(c, "Book is out of stock")
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		default:
			return response.InternalServerError(c, "Failed to approve borrow ticket")
		}
	}

	return response.Success(c, "Borrow ticket approved successfully", fiber.Map{
		"ticket": ticket,
	})
}

// RejectTicket rejects a pending borrow ticket
// @Summary Reject borrow ticket
// @Description Reject a pending borrow ticket (Staff/Admin only)
// @Tags BorrowTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param body body ProcessTicketRequest false "Optional note"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrow-tickets/{id}/reject [post]
func (h *BorrowTicketHandler) RejectTicket(c *fiber.Ctx) error {
	staffID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req ProcessTicketRequest
	_ = c.BodyParser(&req)

	ticket, err := h.ticketService.Reject(c.Context(), uint(id), staffID, &services.ProcessTicketInput{Note: req.Note})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound):
			return response.NotFound(c, "Borrow ticket not found")
		case errors.Is(err, domain.ErrInvalidState):
			return response.Conflict(c, "Borrow ticket has already been processed")
		default:
			return response.InternalServerError(c, "Failed to reject borrow ticket")
		}
	}

	return response.Success(c, "Borrow ticket rejected successfully", fiber.Map{
		"ticket": ticket,
	})
}
