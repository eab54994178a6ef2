// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/middleware"
	businessflow "github.com/kaitkan/kaitkan-api/business_flow"
)

// LinkGroupHandlerInterface defines the contract for link group handlers
type LinkGroupHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// LinkGroupHandler handles titled link section requests
type LinkGroupHandler struct {
	linkGroupFlow businessflow.LinkGroupFlow
	validator     *validator.Validate
}

func (h *LinkGroupHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LinkGroupHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewLinkGroupHandler creates a new link group handler
func NewLinkGroupHandler(linkGroupFlow businessflow.LinkGroupFlow) *LinkGroupHandler {
	return &LinkGroupHandler{
		linkGroupFlow: linkGroupFlow,
		validator:     validator.New(),
	}
}

// List returns every link group of the owner's catalog
func (h *LinkGroupHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.linkGroupFlow.List(h.createRequestContext(c, "/api/v1/link-groups"), userID)
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("List link groups failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load link groups", "LIST_LINK_GROUPS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link groups loaded", result)
}

// Create adds a titled link section
func (h *LinkGroupHandler) Create(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateLinkGroupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.linkGroupFlow.Create(h.createRequestContext(c, "/api/v1/link-groups"), userID, &req)
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Create link group failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create link group", "CREATE_LINK_GROUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Link group created", result)
}

// Update renames an existing link group
func (h *LinkGroupHandler) Update(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link group id", "INVALID_LINK_GROUP_ID", nil)
	}

	var req dto.UpdateLinkGroupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.linkGroupFlow.Update(h.createRequestContext(c, "/api/v1/link-groups/:id"), userID, uint(id), &req)
	if err != nil {
		if businessflow.IsLinkGroupNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link group not found", "LINK_GROUP_NOT_FOUND", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Update link group failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update link group", "UPDATE_LINK_GROUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link group updated", result)
}

// Delete removes a link group; its links fall back to the ungrouped list
func (h *LinkGroupHandler) Delete(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link group id", "INVALID_LINK_GROUP_ID", nil)
	}

	if err := h.linkGroupFlow.Delete(h.createRequestContext(c, "/api/v1/link-groups/:id"), userID, uint(id)); err != nil {
		if businessflow.IsLinkGroupNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link group not found", "LINK_GROUP_NOT_FOUND", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Delete link group failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete link group", "DELETE_LINK_GROUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link group deleted", nil)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *LinkGroupHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *LinkGroupHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "timeout", timeout)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
