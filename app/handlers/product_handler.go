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

// ProductHandlerInterface defines the contract for product handlers
type ProductHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Reorder(c fiber.Ctx) error
	UploadImage(c fiber.Ctx) error
}

// ProductHandler handles the owner's product card requests
type ProductHandler struct {
	productFlow businessflow.ProductFlow
	validator   *validator.Validate
}

func (h *ProductHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ProductHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewProductHandler creates a new product handler
func NewProductHandler(productFlow businessflow.ProductFlow) *ProductHandler {
	return &ProductHandler{
		productFlow: productFlow,
		validator:   validator.New(),
	}
}

// List returns every product of the owner's catalog
func (h *ProductHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.productFlow.List(h.createRequestContext(c, "/api/v1/products"), userID)
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("List products failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load products", "LIST_PRODUCTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Products loaded", result)
}

// Create adds a product card to the owner's catalog
func (h *ProductHandler) Create(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateProductRequest
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

	result, err := h.productFlow.Create(h.createRequestContext(c, "/api/v1/products"), userID, &req)
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Create product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create product", "CREATE_PRODUCT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Product created", result)
}

// Update changes an existing product
func (h *ProductHandler) Update(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product id", "INVALID_PRODUCT_ID", nil)
	}

	var req dto.UpdateProductRequest
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

	result, err := h.productFlow.Update(h.createRequestContext(c, "/api/v1/products/:id"), userID, uint(id), &req)
	if err != nil {
		if businessflow.IsProductNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Update product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update product", "UPDATE_PRODUCT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Product updated", result)
}

// Delete removes a product from the owner's catalog
func (h *ProductHandler) Delete(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product id", "INVALID_PRODUCT_ID", nil)
	}

	if err := h.productFlow.Delete(h.createRequestContext(c, "/api/v1/products/:id"), userID, uint(id)); err != nil {
		if businessflow.IsProductNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Delete product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete product", "DELETE_PRODUCT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Product deleted", nil)
}

// Reorder rewrites the display order of the owner's products
func (h *ProductHandler) Reorder(c fiber.Ctx) error {
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

	if err := h.productFlow.Reorder(h.createRequestContext(c, "/api/v1/products/reorder"), userID, &req); err != nil {
		if businessflow.IsReorderIDsIncomplete(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Reorder must include every product exactly once", "REORDER_IDS_INCOMPLETE", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Reorder products failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reorder products", "REORDER_PRODUCTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Products reordered", nil)
}

// UploadImage stores a new image for a product card
func (h *ProductHandler) UploadImage(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product id", "INVALID_PRODUCT_ID", nil)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "image file is required", "INVALID_FILE", nil)
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

	result, err := h.productFlow.UploadImage(h.createRequestContext(c, "/api/v1/products/:id/image"), userID, uint(id), data, fileHeader.Filename)
	if err != nil {
		if businessflow.IsProductNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
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

		log.Println("Upload product image failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to upload image", "UPLOAD_IMAGE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Image uploaded", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ProductHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *ProductHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "timeout", timeout)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
