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

// ReturnTicketHandler handles return ticket endpoints
type ReturnTicketHandler struct {
	returnService *services.ReturnTicketService
}

// NewReturnTicketHandler creates a new return ticket handler
func NewReturnTicketHandler(returnService *services.ReturnTicketService) *ReturnTicketHandler {
	return &ReturnTicketHandler{returnService: returnService}
}

// CreateReturnRequest represents process-return request
type CreateReturnRequest struct {
	BorrowTicketID uint   `json:"borrow_ticket_id"`
	Condition      string `json:"condition"`
	ReturnDate     string `json:"return_date"` // optional, defaults to now
	Note           string `json:"note"`
}

// CreateReturn processes a physical book return
// @Summary Process return
// @Description Close a borrow ticket, assess the fine and restock the copy (Staff/Admin only)
// @Tags ReturnTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateReturnRequest true "Return data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /return-tickets [post]
func (h *ReturnTicketHandler) CreateReturn(c *fiber.Ctx) error {
	staffID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BorrowTicketID == 0 {
		return response.BadRequest(c, "Borrow ticket ID is required")
	}
	if req.Condition == "" {
		return response.BadRequest(c, "Condition is required")
	}

	var returnDate time.Time
	if req.ReturnDate != "" {
		parsed, err := parseDate(req.ReturnDate)
		if err != nil {
			return response.BadRequest(c, "Invalid return date")
		}
		returnDate = parsed
	}

	returnTicket, err := h.returnService.Create(c.Context(), staffID, &services.CreateReturnInput{
		BorrowTicketID: req.BorrowTicketID,
		Condition:      req.Condition,
		ReturnDate:     returnDate,
		Note:           req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Condition must be good, damaged or lost")
		case errors.Is(err, domain.ErrTicketNotFound):
			return response.NotFound(c, "Borrow ticket not found")
		case errors.Is(err, domain.ErrAlreadyReturned):
			return response.Conflict(c, "Borrow ticket has already been returned")
		case errors.Is(err, domain.ErrTicketNotReturnable):
			return response.UnprocessableEntity(c, "Borrow ticket is not in a returnable state")
		default:
			return response.InternalServerError(c, "Failed to process return")
		}
	}

	return response.Created(c, "Return processed successfully", fiber.Map{
		"return_ticket": returnTicket,
	})
}

// ListReturns lists return tickets
// @Summary List return tickets
// @Description List return tickets (users see their own, staff see all)
// @Tags ReturnTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param condition query string false "Filter by condition"
// @Param user_id query int false "Filter by user (staff only)"
// @Success 200 {object} response.Response
// @Router /return-tickets [get]
func (h *ReturnTicketHandler) ListReturns(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	filter := &repositories.ReturnFilter{
		Condition: c.Query("condition"),
	}
	if raw := c.Query("user_id"); raw != "" && role.IsStaff() {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filterUserID := uint(id)
			filter.UserID = &filterUserID
		}
	}

	returns, total, err := h.returnService.List(c.Context(), userID, role, filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list return tickets")
	}

	return response.Success(c, "Return tickets retrieved successfully", pagination.NewResponse(returns, params, total))
}

// GetReturn gets one return ticket
// @Summary Get return ticket
// @Description Get a return ticket by ID (loan owner or staff)
// @Tags ReturnTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Return ticket ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /return-tickets/{id} [get]
func (h *ReturnTicketHandler) GetReturn(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	returnTicket, err := h.returnService.Get(c.Context(), uint(id), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReturnTicketNotFound):
			return response.NotFound(c, "Return ticket not found")
		case errors.Is(err, domain.ErrNotOwner):
			return response.Forbidden(c, "You can only view returns of your own loans")
		default:
			return response.InternalServerError(c, "Failed to get return ticket")
		}
	}

	return response.Success(c, "Return ticket retrieved successfully", fiber.Map{
		"return_ticket": returnTicket,
	})
}

// PayFine settles the fine on a return ticket
// @Summary Pay fine
// @Description Record the fine payment on a return ticket (Staff/Admin only)
// @Tags ReturnTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Return ticket ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /return-tickets/{id}/pay-fine [post]
func (h *ReturnTicketHandler) PayFine(c *fiber.Ctx) error {
	_, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	returnTicket, err := h.returnService.PayFine(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReturnTicketNotFound):
			return response.NotFound(c, "Return ticket not found")
		case errors.Is(err, domain.ErrNoFine):
			return response.UnprocessableEntity(c, "Return ticket has no fine")
		case errors.Is(err, domain.ErrFineAlreadyPaid):
			return response.Conflict(c, "Fine has already been paid")
		default:
			return response.InternalServerError(c, "Failed to pay fine")
		}
	}

	return response.Success(c, "Fine paid successfully", fiber.Map{
		"return_ticket": returnTicket,
	})
}

// GetStats returns aggregate return statistics
// @Summary Return statistics
// @Description Aggregate counts and fine totals over processed returns (Staff/Admin only)
// @Tags ReturnTickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /return-tickets/stats [get]
func (h *ReturnTicketHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.returnService.Stats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute return statistics")
	}

	return response.Success(c, "Return statistics retrieved successfully", fiber.Map{
		"stats": stats,
	})
}
