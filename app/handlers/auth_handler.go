// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/middleware"
	businessflow "github.com/kaitkan/kaitkan-api/business_flow"
	"github.com/kaitkan/kaitkan-api/utils"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	SendOTP(c fiber.Ctx) error
	VerifyOTP(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	LoginWithPIN(c fiber.Ctx) error
	SetPIN(c fiber.Ctx) error
	ResetPIN(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	GetUser(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	otpFlow   businessflow.OTPFlow
	authFlow  businessflow.AuthFlow
	validator *validator.Validate
}

func (h *AuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(otpFlow businessflow.OTPFlow, authFlow businessflow.AuthFlow) *AuthHandler {
	handler := &AuthHandler{
		otpFlow:   otpFlow,
		authFlow:  authFlow,
		validator: validator.New(),
	}

	handler.setupCustomValidations()

	return handler
}

// SendOTP issues a WhatsApp verification code
func (h *AuthHandler) SendOTP(c fiber.Ctx) error {
	var req dto.SendOTPRequest
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

	result, err := h.otpFlow.SendOTP(h.createRequestContext(c, "/api/v1/auth/send-otp"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidWhatsAppInput(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "WhatsApp number format is invalid", "INVALID_WHATSAPP", nil)
		}
		if businessflow.IsOTPRateLimited(err) {
			return h.ErrorResponse(c, fiber.StatusTooManyRequests, "Too many verification codes requested. Try again later", "OTP_RATE_LIMITED", nil)
		}

		log.Println("Send OTP failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send verification code", "SEND_OTP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Verification code sent", result)
}

// VerifyOTP consumes a verification code and registers a new account
func (h *AuthHandler) VerifyOTP(c fiber.Ctx) error {
	var req dto.VerifyOTPRequest
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

	result, err := h.authFlow.VerifyOTP(h.createRequestContext(c, "/api/v1/auth/verify-otp"), &req, metadata)
	if err != nil {
		if businessflow.IsOTPInvalidOrExpired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Verification code is invalid or expired", "OTP_INVALID", nil)
		}
		if businessflow.IsWhatsAppAlreadyRegistered(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "WhatsApp number is already registered", "WHATSAPP_ALREADY_REGISTERED", nil)
		}

		log.Println("OTP verification failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Registration failed", "REGISTRATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Account created", result)
}

// Login authenticates with the account password
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
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

	result, err := h.authFlow.Login(h.createRequestContext(c, "/api/v1/auth/login"), &req, metadata)
	if err != nil {
		if businessflow.IsIncorrectPassword(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "WhatsApp number or password is incorrect", "INCORRECT_CREDENTIALS", nil)
		}
		if businessflow.IsAccountUnverified(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Account has not been verified", "ACCOUNT_UNVERIFIED", nil)
		}

		log.Println("Login failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// LoginWithPIN authenticates with the 6-digit account PIN
func (h *AuthHandler) LoginWithPIN(c fiber.Ctx) error {
	var req dto.LoginPINRequest
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

	result, err := h.authFlow.LoginWithPIN(h.createRequestContext(c, "/api/v1/auth/login-pin"), &req, metadata)
	if err != nil {
		if businessflow.IsIncorrectPIN(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "WhatsApp number or PIN is incorrect", "INCORRECT_PIN", nil)
		}
		if businessflow.IsAccountUnverified(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Account has not been verified", "ACCOUNT_UNVERIFIED", nil)
		}

		log.Println("PIN login failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// SetPIN sets or replaces the account PIN for the authenticated user
func (h *AuthHandler) SetPIN(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.SetPINRequest
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

	if err := h.authFlow.SetPIN(h.createRequestContext(c, "/api/v1/auth/set-pin"), userID, &req); err != nil {
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("Set PIN failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to set PIN", "SET_PIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "PIN saved", nil)
}

// ResetPIN replaces the PIN after OTP verification and signs the caller in
func (h *AuthHandler) ResetPIN(c fiber.Ctx) error {
	var req dto.ResetPINRequest
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

	result, err := h.authFlow.ResetPIN(h.createRequestContext(c, "/api/v1/auth/reset-pin"), &req, metadata)
	if err != nil {
		if businessflow.IsOTPInvalidOrExpired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Verification code is invalid or expired", "OTP_INVALID", nil)
		}
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "USER_NOT_FOUND", nil)
		}

		log.Println("Reset PIN failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset PIN", "RESET_PIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "PIN reset successful", result)
}

// Logout revokes the presented access token
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if token == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Access token is required", "MISSING_ACCESS_TOKEN", nil)
	}

	if err := h.authFlow.Logout(h.createRequestContext(c, "/api/v1/auth/logout"), token); err != nil {
		log.Println("Logout failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Logout failed", "LOGOUT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Logged out", nil)
}

// GetUser returns the authenticated user's profile
func (h *AuthHandler) GetUser(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.authFlow.CurrentUser(h.createRequestContext(c, "/api/v1/auth/user"), userID)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("Get user failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load user", "GET_USER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "User loaded", result)
}

// Health handles health check requests
func (h *AuthHandler) Health(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Service is healthy", fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *AuthHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *AuthHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
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
func (h *AuthHandler) setupCustomValidations() {
	h.validator.RegisterValidation("whatsapp_format", func(fl validator.FieldLevel) bool {
		return utils.IsValidWhatsApp(fl.Field().String())
	})

	h.validator.RegisterValidation("numeric", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, char := range value {
			if char < '0' || char > '9' {
				return false
			}
		}
		return true
	})
}
