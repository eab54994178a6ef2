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

// PublicHandlerInterface defines the contract for unauthenticated storefront handlers
type PublicHandlerInterface interface {
	GetCatalog(c fiber.Ctx) error
	RecordVisit(c fiber.Ctx) error
	RecordLinkClick(c fiber.Ctx) error
	RecordProductClick(c fiber.Ctx) error
}

// PublicHandler serves the public storefront page and its tracking endpoints
type PublicHandler struct {
	catalogFlow   businessflow.CatalogFlow
	analyticsFlow businessflow.AnalyticsFlow
	validator     *validator.Validate
}

func (h *PublicHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PublicHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewPublicHandler creates a new public storefront handler
func NewPublicHandler(catalogFlow businessflow.CatalogFlow, analyticsFlow businessflow.AnalyticsFlow) *PublicHandler {
	return &PublicHandler{
		catalogFlow:   catalogFlow,
		analyticsFlow: analyticsFlow,
		validator:     validator.New(),
	}
}

// GetCatalog serves the published storefront page by username
func (h *PublicHandler) GetCatalog(c fiber.Ctx) error {
	username := c.Params("username")

	result, err := h.catalogFlow.PublicCatalog(h.createRequestContext(c, "/api/v1/c/:username"), username)
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Public catalog failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load catalog", "CATALOG_LOAD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Catalog loaded", result)
}

// RecordVisit records one storefront page view. Bot and duplicate hits are
// accepted silently so the page script never has to branch on the outcome.
func (h *PublicHandler) RecordVisit(c fiber.Ctx) error {
	var req dto.RecordVisitRequest
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

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.Referrer = c.Get("Referer")

	if err := h.analyticsFlow.RecordVisit(h.createRequestContext(c, "/api/v1/analytics/visit"), &req, metadata); err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Record visit failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record visit", "RECORD_VISIT_FAILED", nil)
	}

	middleware.CountVisit()
	return h.SuccessResponse(c, fiber.StatusOK, "Visit recorded", nil)
}

// RecordLinkClick records a click on a storefront link
func (h *PublicHandler) RecordLinkClick(c fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link id", "INVALID_LINK_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.Referrer = c.Get("Referer")

	if err := h.analyticsFlow.RecordLinkClick(h.createRequestContext(c, "/api/v1/clicks/link/:id"), uint(id), metadata); err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}

		log.Println("Record link click failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record click", "RECORD_CLICK_FAILED", nil)
	}

	middleware.CountClick("link")
	return h.SuccessResponse(c, fiber.StatusOK, "Click recorded", nil)
}

// RecordProductClick records a buy-button tap on a product card
func (h *PublicHandler) RecordProductClick(c fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("productId"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product id", "INVALID_PRODUCT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.Referrer = c.Get("Referer")

	if err := h.analyticsFlow.RecordProductClick(h.createRequestContext(c, "/api/v1/clicks/:productId"), uint(id), metadata); err != nil {
		if businessflow.IsProductNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}

		log.Println("Record product click failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record click", "RECORD_CLICK_FAILED", nil)
	}

	middleware.CountClick("product")
	return h.SuccessResponse(c, fiber.StatusOK, "Click recorded", nil)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *PublicHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *PublicHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "timeout", timeout)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
