package handlers

import (
	"errors"
	"strconv"
	"strings"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/core/domain"
	"librahub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	categoryRepo repositories.CategoryRepository
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryRepo repositories.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categoryRepo: categoryRepo}
}

// ListCategories lists all categories
// @Summary List categories
// @Description Get all book categories
// @Tags Categories
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categoryRepo.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list categories")
	}

	return response.Success(c, "Categories retrieved successfully", fiber.Map{
		"categories": categories,
	})
}

// GetCategory gets a category by ID
// @Summary Get category
// @Description Get a category by ID
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	category, err := h.categoryRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to get category")
	}

	return response.Success(c, "Category retrieved successfully", fiber.Map{
		"category": category,
	})
}

// CategoryRequest represents create/update category request
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateCategory creates a new category
// @Summary Create category
// @Description Create a new book category (Staff/Admin only)
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CategoryRequest true "Category data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return response.BadRequest(c, "Name is required")
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}

	if err := h.categoryRepo.Create(c.Context(), category); err != nil {
		return response.InternalServerError(c, "Failed to create category")
	}

	return response.Created(c, "Category created successfully", fiber.Map{
		"category": category,
	})
}

// UpdateCategory updates a category
// @Summary Update category
// @Description Update a category (Staff/Admin only)
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param body body CategoryRequest true "Category data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	category, err := h.categoryRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to get category")
	}

	if strings.TrimSpace(req.Name) != "" {
		category.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		category.Description = req.Description
	}

	if err := h.categoryRepo.Update(c.Context(), category); err != nil {
		return response.InternalServerError(c, "Failed to update category")
	}

	return response.Success(c, "Category updated successfully", fiber.Map{
		"category": category,
	})
}

// DeleteCategory deletes a category
// @Summary Delete category
// @Description Delete a category (Admin only)
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.categoryRepo.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to delete category")
	}

	return response.Success(c, "Category deleted successfully", nil)
}
