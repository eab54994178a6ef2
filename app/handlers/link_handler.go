// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/middleware"
	businessflow "github.com/kaitkan/kaitkan-api/business_flow"
)

// LinkHandlerInterface defines the contract for link handlers
type LinkHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Reorder(c fiber.Ctx) error
	UploadThumbnail(c fiber.Ctx) error
}

// LinkHandler handles the owner's link management requests
type LinkHandler struct {
	linkFlow  businessflow.LinkFlow
	validator *validator.Validate
}

func (h *LinkHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LinkHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(linkFlow businessflow.LinkFlow) *LinkHandler {
	return &LinkHandler{
		linkFlow:  linkFlow,
		validator: validator.New(),
	}
}

// List returns every link of the owner's catalog
func (h *LinkHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.linkFlow.List(h.createRequestContext(c, "/api/v1/links"), userID)
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("List links failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load links", "LIST_LINKS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Links loaded", result)
}

// Create adds a link to the owner's catalog
func (h *LinkHandler) Create(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateLinkRequest
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

	result, err := h.linkFlow.Create(h.createRequestContext(c, "/api/v1/links"), userID, &req)
	if err != nil {
		if businessflow.IsLinkGroupNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Link group not found", "LINK_GROUP_NOT_FOUND", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Create link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create link", "CREATE_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Link created", result)
}

// Update changes an existing link
func (h *LinkHandler) Update(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link id", "INVALID_LINK_ID", nil)
	}

	var req dto.UpdateLinkRequest
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

	result, err := h.linkFlow.Update(h.createRequestContext(c, "/api/v1/links/:id"), userID, uint(id), &req)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsLinkGroupNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Link group not found", "LINK_GROUP_NOT_FOUND", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Update link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update link", "UPDATE_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link updated", result)
}

// Delete removes a link from the owner's catalog
func (h *LinkHandler) Delete(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link id", "INVALID_LINK_ID", nil)
	}

	if err := h.linkFlow.Delete(h.createRequestContext(c, "/api/v1/links/:id"), userID, uint(id)); err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Delete link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete link", "DELETE_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link deleted", nil)
}

// Reorder rewrites the display order of the owner's links
func (h *LinkHandler) Reorder(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.ReorderRequest
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

	if err := h.linkFlow.Reorder(h.createRequestContext(c, "/api/v1/links/reorder"), userID, &req); err != nil {
		if businessflow.IsReorderIDsIncomplete(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Reorder must include every link exactly once", "REORDER_IDS_INCOMPLETE", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Reorder links failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reorder links", "REORDER_LINKS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Links reordered", nil)
}

// UploadThumbnail stores a new thumbnail image for a link
func (h *LinkHandler) UploadThumbnail(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link id", "INVALID_LINK_ID", nil)
	}

	fileHeader, err := c.FormFile("thumbnail")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "thumbnail file is required", "INVALID_FILE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}

	result, err := h.linkFlow.UploadThumbnail(h.createRequestContext(c, "/api/v1/links/:id/thumbnail"), userID, uint(id), data, fileHeader.Filename)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsImageInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Uploaded image is invalid", "IMAGE_INVALID", nil)
		}
		if businessflow.IsImageTooLarge(err) {
			return h.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "Uploaded image is too large", "IMAGE_TOO_LARGE", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Upload link thumbnail failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to upload thumbnail", "UPLOAD_THUMBNAIL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Thumbnail uploaded", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *LinkHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *LinkHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "timeout", timeout)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
