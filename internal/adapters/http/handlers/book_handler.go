package handlers

import (
	"errors"
	"strconv"
	"strings"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/core/domain"
	"librahub/internal/pkg/pagination"
	"librahub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles book catalog endpoints
type BookHandler struct {
	bookRepo     repositories.BookRepository
	categoryRepo repositories.CategoryRepository
}

// NewBookHandler creates a new book handler
func NewBookHandler(
	bookRepo repositories.BookRepository,
	categoryRepo repositories.CategoryRepository,
) *BookHandler {
	return &BookHandler{
		bookRepo:     bookRepo,
		categoryRepo: categoryRepo,
	}
}

// ListBooks lists books with filters
// @Summary List books
// @Description List books with optional category, hot and search filters
// @Tags Books
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param category_id query int false "Filter by category"
// @Param is_hot query bool false "Filter hot books"
// @Param search query string false "Search in title and author"
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) ListBooks(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := &repositories.BookFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
	}
	if raw := c.Query("is_hot"); raw != "" {
		isHot := raw == "true"
		filter.IsHot = &isHot
	}

	books, total, err := h.bookRepo.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(books, params, total))
}

// GetBook gets a book by ID
// @Summary Get book
// @Description Get a book by ID with its category
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) GetBook(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	book, err := h.bookRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", fiber.Map{
		"book": book,
	})
}

// CreateBookRequest represents create book request
type CreateBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	CategoryID  uint   `json:"category_id"`
	RentalPrice int64  `json:"rental_price"`
	Publisher   string `json:"publisher"`
	Quantity    int    `json:"quantity"`
	Image       string `json:"image"`
	IsHot       bool   `json:"is_hot"`
	Description string `json:"description"`
	PublishYear int    `json:"publish_year"`
}

// CreateBook creates a new book
// @Summary Create book
// @Description Add a new book to the catalog (Staff/Admin only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBookRequest true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /books [post]
func (h *BookHandler) CreateBook(c *fiber.Ctx) error {
	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if req.Author == "" {
		return response.BadRequest(c, "Author is required")
	}
	if req.RentalPrice < 0 {
		return response.BadRequest(c, "Rental price must not be negative")
	}
	if req.Quantity < 0 {
		return response.BadRequest(c, "Quantity must not be negative")
	}

	// Category must exist
	if _, err := h.categoryRepo.GetByID(c.Context(), req.CategoryID); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return response.BadRequest(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to verify category")
	}

	book := &models.Book{
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		CategoryID:  req.CategoryID,
		RentalPrice: req.RentalPrice,
		Publisher:   req.Publisher,
		Quantity:    req.Quantity,
		Image:       req.Image,
		IsHot:       req.IsHot,
		Description: req.Description,
		PublishYear: req.PublishYear,
		Available:   true,
	}

	if err := h.bookRepo.Create(c.Context(), book); err != nil {
		return response.InternalServerError(c, "Failed to create book")
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book,
	})
}

// UpdateBookRequest represents update book request
type UpdateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	CategoryID  *uint   `json:"category_id"`
	RentalPrice *int64  `json:"rental_price"`
	Publisher   *string `json:"publisher"`
	Image       *string `json:"image"`
	IsHot       *bool   `json:"is_hot"`
	Description *string `json:"description"`
	PublishYear *int    `json:"publish_year"`
}

// UpdateBook updates catalog fields of a book
// @Summary Update book
// @Description Update book catalog fields (Staff/Admin only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body UpdateBookRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBook(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req UpdateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	if req.Title != nil && *req.Title != "" {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil && *req.Author != "" {
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.CategoryID != nil {
		if _, err := h.categoryRepo.GetByID(c.Context(), *req.CategoryID); err != nil {
			return response.BadRequest(c, "Category not found")
		}
		book.CategoryID = *req.CategoryID
	}
	if req.RentalPrice != nil {
		if *req.RentalPrice < 0 {
			return response.BadRequest(c, "Rental price must not be negative")
		}
		book.RentalPrice = *req.RentalPrice
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.Image != nil {
		book.Image = *req.Image
	}
	if req.IsHot != nil {
		book.IsHot = *req.IsHot
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.PublishYear != nil {
		book.PublishYear = *req.PublishYear
	}

	if err := h.bookRepo.Update(c.Context(), book); err != nil {
		return response.InternalServerError(c, "Failed to update book")
	}

	return response.Success(c, "Book updated successfully", fiber.Map{
		"book": book,
	})
}

// UpdateStockRequest represents stock adjustment request
type UpdateStockRequest struct {
	Quantity  *int  `json:"quantity"`
	Available *bool `json:"available"`
}

// UpdateStock adjusts quantity and availability directly
// @Summary Update book stock
// @Description Set book quantity and availability flag (Staff/Admin only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body UpdateStockRequest true "Stock data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id}/stock [patch]
func (h *BookHandler) UpdateStock(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req UpdateStockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Quantity == nil && req.Available == nil {
		return response.BadRequest(c, "Nothing to update")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return response.BadRequest(c, "Quantity must not be negative")
	}

	if err := h.bookRepo.UpdateStock(c.Context(), uint(id), req.Quantity, req.Available); err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to update stock")
	}

	book, err := h.bookRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "Stock updated successfully", fiber.Map{
		"book": book,
	})
}

// DeleteBook soft deletes a book
// @Summary Delete book
// @Description Remove a book from the catalog (Admin only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.bookRepo.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to delete book")
	}

	return response.Success(c, "Book deleted successfully", nil)
}
