// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/middleware"
	businessflow "github.com/kaitkan/kaitkan-api/business_flow"
)

// ProfileHandlerInterface defines the contract for profile handlers
type ProfileHandlerInterface interface {
	GetProfile(c fiber.Ctx) error
	UpdateProfile(c fiber.Ctx) error
	CompleteOnboarding(c fiber.Ctx) error
	UploadAvatar(c fiber.Ctx) error
	ListThemes(c fiber.Ctx) error
}

// ProfileHandler handles storefront identity and onboarding requests
type ProfileHandler struct {
	profileFlow businessflow.ProfileFlow
	validator   *validator.Validate
}

func (h *ProfileHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ProfileHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileFlow businessflow.ProfileFlow) *ProfileHandler {
	handler := &ProfileHandler{
		profileFlow: profileFlow,
		validator:   validator.New(),
	}

	handler.setupCustomValidations()

	return handler
}

// GetProfile returns the owner's storefront
func (h *ProfileHandler) GetProfile(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.profileFlow.GetProfile(h.createRequestContext(c, "/api/v1/profile"), userID)
	if err != nil {
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Get profile failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load profile", "GET_PROFILE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Profile loaded", result)
}

// UpdateProfile applies partial edits to the storefront identity
func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateProfileRequest
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

	result, err := h.profileFlow.UpdateProfile(h.createRequestContext(c, "/api/v1/profile"), userID, &req)
	if err != nil {
		if businessflow.IsUsernameInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Username format is invalid", "USERNAME_INVALID", nil)
		}
		if businessflow.IsUsernameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Username already taken", "USERNAME_TAKEN", nil)
		}
		if businessflow.IsThemeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Theme not found", "THEME_NOT_FOUND", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Update profile failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update profile", "UPDATE_PROFILE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Profile updated", result)
}

// CompleteOnboarding performs the first-run setup and publishes the storefront
func (h *ProfileHandler) CompleteOnboarding(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.OnboardingRequest
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

	result, err := h.profileFlow.CompleteOnboarding(h.createRequestContext(c, "/api/v1/profile/onboarding"), userID, &req)
	if err != nil {
		if businessflow.IsUsernameInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Username format is invalid", "USERNAME_INVALID", nil)
		}
		if businessflow.IsUsernameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Username already taken", "USERNAME_TAKEN", nil)
		}
		if businessflow.IsThemeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Theme not found", "THEME_NOT_FOUND", nil)
		}
		if businessflow.IsUserNotFound(err) || businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "NOT_FOUND", nil)
		}

		log.Println("Onboarding failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to complete onboarding", "ONBOARDING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Onboarding completed", result)
}

// UploadAvatar stores a new avatar image for the storefront
func (h *ProfileHandler) UploadAvatar(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "avatar file is required", "INVALID_FILE", nil)
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

	result, err := h.profileFlow.UploadAvatar(h.createRequestContext(c, "/api/v1/profile/avatar"), userID, data, fileHeader.Filename)
	if err != nil {
		if businessflow.IsImageInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Uploaded image is invalid", "IMAGE_INVALID", nil)
		}
		if businessflow.IsImageTooLarge(err) {
			return h.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "Uploaded image is too large", "IMAGE_TOO_LARGE", nil)
		}
		if businessflow.IsCatalogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Catalog not found", "CATALOG_NOT_FOUND", nil)
		}

		log.Println("Upload avatar failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to upload avatar", "UPLOAD_AVATAR_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Avatar uploaded", result)
}

// ListThemes returns every selectable theme
func (h *ProfileHandler) ListThemes(c fiber.Ctx) error {
	result, err := h.profileFlow.ListThemes(h.createRequestContext(c, "/api/v1/themes"))
	if err != nil {
		log.Println("List themes failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load themes", "LIST_THEMES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Themes loaded", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ProfileHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *ProfileHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "timeout", timeout)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}

// Custom validation setup
func (h *ProfileHandler) setupCustomValidations() {
	h.validator.RegisterValidation("username_format", func(fl validator.FieldLevel) bool {
		return businessflow.UsernamePattern.MatchString(fl.Field().String())
	})
}
