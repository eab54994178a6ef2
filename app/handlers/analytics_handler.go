// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/middleware"
	businessflow "github.com/kaitkan/kaitkan-api/business_flow"
)

// AnalyticsHandlerInterface defines the contract for analytics dashboard handlers
type AnalyticsHandlerInterface interface {
	Summary(c fiber.Ctx) error
	TopLinks(c fiber.Ctx) error
	TopProducts(c fiber.Ctx) error
	ExportCSV(c fiber.Ctx) error
	ExportXLSX(c fiber.Ctx) error
}

// AnalyticsHandler handles the owner's analytics dashboard requests
type AnalyticsHandler struct {
	analyticsFlow businessflow.AnalyticsFlow
	exportFlow    businessflow.AnalyticsExportFlow
	validator     *validator.Validate
}

func (h *AnalyticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AnalyticsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsFlow businessflow.AnalyticsFlow, exportFlow businessflow.AnalyticsExportFlow) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsFlow: analyticsFlow,
		exportFlow:    exportFlow,
		validator:     validator.New(),
	}
}

// Summary returns totals, the daily series and the source/device breakdown
func (h *AnalyticsHandler) Summary(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.analyticsFlow.Summary(h.createRequestContext(c, "/api/v1/analytics/summary"), userID, c.Query("range", "7d"))
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Analytics summary failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load summary", "SUMMARY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Summary loaded", result)
}

// TopLinks returns the most-clicked links for the range
func (h *AnalyticsHandler) TopLinks(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.analyticsFlow.TopLinks(h.createRequestContext(c, "/api/v1/analytics/top-links"), userID, c.Query("range", "7d"))
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Top links failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load top links", "TOP_LINKS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Top links loaded", result)
}

// TopProducts returns the most-clicked products for the range
func (h *AnalyticsHandler) TopProducts(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.analyticsFlow.TopProducts(h.createRequestContext(c, "/api/v1/analytics/top-products"), userID, c.Query("range", "7d"))
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Top products failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load top products", "TOP_PRODUCTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Top products loaded", result)
}

// ExportCSV streams one report as a CSV attachment
func (h *AnalyticsHandler) ExportCSV(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	report := c.Params("report")

	filename, data, err := h.exportFlow.ExportCSV(h.createRequestContext(c, "/api/v1/analytics/export/:report"), userID, report, c.Query("range", "7d"))
	if err != nil {
		if businessflow.IsInvalidExport(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Unknown export report", "INVALID_EXPORT", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Export CSV failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export report", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "text/csv; charset=UTF-8")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// ExportXLSX streams the full dashboard as a workbook attachment
func (h *AnalyticsHandler) ExportXLSX(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	filename, data, err := h.exportFlow.ExportXLSX(h.createRequestContext(c, "/api/v1/analytics/export-xlsx"), userID, c.Query("range", "7d"))
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Export XLSX failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export report", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *AnalyticsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *AnalyticsHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "timeout", timeout)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
